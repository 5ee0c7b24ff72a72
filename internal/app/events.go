package app

import (
	"encoding/json"
	"fmt"

	"live-quiz-service/internal/domain"
)

// Inbound message types.
const (
	TypeCreateGame     = "CREATE_GAME"
	TypeJoinGame       = "JOIN_GAME"
	TypeStartGame      = "START_GAME"
	TypeAnswerQuestion = "ANSWER_QUESTION"
	TypeNextQuestion   = "NEXT_QUESTION"
)

// Event is one inbound protocol event. The set of implementations is closed.
type Event interface {
	Type() string
	isEvent()
}

// CreateGame creates a session. Questions are taken inline, or from a stored deck when
// DeckID is set and no questions are given.
type CreateGame struct {
	QuizName  string
	Questions []domain.Question
	DeckID    string
}

type JoinGame struct {
	QuizID string
}

type StartGame struct {
	QuizID string
}

// AnswerQuestion carries the selected option index and the client-reported elapsed time
// in seconds.
type AnswerQuestion struct {
	QuizID    string
	Answer    int
	TimeTaken float64
}

type NextQuestion struct {
	QuizID string
}

func (CreateGame) Type() string     { return TypeCreateGame }
func (JoinGame) Type() string       { return TypeJoinGame }
func (StartGame) Type() string      { return TypeStartGame }
func (AnswerQuestion) Type() string { return TypeAnswerQuestion }
func (NextQuestion) Type() string   { return TypeNextQuestion }

func (CreateGame) isEvent()     {}
func (JoinGame) isEvent()       {}
func (StartGame) isEvent()      {}
func (AnswerQuestion) isEvent() {}
func (NextQuestion) isEvent()   {}

type wireEvent struct {
	Type      string            `json:"type"`
	QuizName  string            `json:"quizName"`
	Questions []domain.Question `json:"questions"`
	DeckID    string            `json:"deckId"`
	QuizID    string            `json:"quizId"`
	Answer    *int              `json:"answer"`
	TimeTaken *float64          `json:"timeTaken"`
}

// DecodeEvent parses one flat JSON message into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	switch w.Type {
	case TypeCreateGame:
		for _, q := range w.Questions {
			if err := q.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrMalformedEvent, err)
			}
		}
		return CreateGame{QuizName: w.QuizName, Questions: w.Questions, DeckID: w.DeckID}, nil
	case TypeJoinGame:
		if w.QuizID == "" {
			return nil, fmt.Errorf("%w: %s requires quizId", domain.ErrMalformedEvent, w.Type)
		}
		return JoinGame{QuizID: w.QuizID}, nil
	case TypeStartGame:
		if w.QuizID == "" {
			return nil, fmt.Errorf("%w: %s requires quizId", domain.ErrMalformedEvent, w.Type)
		}
		return StartGame{QuizID: w.QuizID}, nil
	case TypeAnswerQuestion:
		if w.QuizID == "" || w.Answer == nil || w.TimeTaken == nil {
			return nil, fmt.Errorf("%w: %s requires quizId, answer and timeTaken", domain.ErrMalformedEvent, w.Type)
		}
		return AnswerQuestion{QuizID: w.QuizID, Answer: *w.Answer, TimeTaken: *w.TimeTaken}, nil
	case TypeNextQuestion:
		if w.QuizID == "" {
			return nil, fmt.Errorf("%w: %s requires quizId", domain.ErrMalformedEvent, w.Type)
		}
		return NextQuestion{QuizID: w.QuizID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, w.Type)
	}
}
