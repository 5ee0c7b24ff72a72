package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown to the registry.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrParticipantNotFound is returned when a user acts on a session they never joined.
	ErrParticipantNotFound = errors.New("participant not found in quiz")
	// ErrAlreadyJoined is returned when a participant joins the same session twice.
	ErrAlreadyJoined = errors.New("participant already joined quiz")
	// ErrAlreadyRegistered is returned when a participant identity connects twice.
	ErrAlreadyRegistered = errors.New("participant already registered")
	// ErrAlreadyStarted is returned when START is issued to a session past WAITING.
	ErrAlreadyStarted = errors.New("quiz already started")
	// ErrNoActiveQuestion indicates the session has no question in progress.
	ErrNoActiveQuestion = errors.New("no question in progress")
	// ErrAlreadyAnswered indicates the participant already answered the current question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrDeckNotFound indicates a stored question deck could not be loaded.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrInvalidQuestion indicates a question with no options or an out-of-range answer.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrMalformedEvent indicates an inbound message could not be decoded.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUnknownEvent indicates an inbound message carried an unrecognized type.
	ErrUnknownEvent = errors.New("unknown event type")
)
