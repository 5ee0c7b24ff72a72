package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/observability"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-mirrored).
type SessionRepository interface {
	Add(ctx context.Context, session *Session) error
	Get(sessionID string) (*Session, bool)
	// List returns sessions in creation order.
	List() []*Session
	// Save is called after every mutation of a session, under its dispatch lock.
	Save(ctx context.Context, session *Session)
	// Delete reports whether the session was present.
	Delete(ctx context.Context, sessionID string) bool
}

// DeckRepository loads stored question decks.
type DeckRepository interface {
	GetDeck(ctx context.Context, deckID string) (domain.Deck, error)
}

// Directory maps participants to their connections and broadcast groups.
// Delivery is best-effort; implementations must not block on slow connections.
type Directory interface {
	Send(participantID string, msg any)
	AddToGroup(participantID, sessionID string)
	Broadcast(sessionID string, msg any)
	Remove(participantID string)
}

type Config struct {
	Sessions  SessionRepository
	Decks     DeckRepository // optional
	Directory Directory
	Logger    zerolog.Logger
	// NewID generates session ids; defaults to UUIDv4 strings.
	NewID func() string
}

// Registry owns the live sessions and routes inbound events to them.
type Registry struct {
	sessions SessionRepository
	decks    DeckRepository
	dir      Directory
	log      zerolog.Logger
	newID    func() string

	mu    sync.RWMutex
	users map[string]domain.Participant
}

func NewRegistry(c Config) *Registry {
	newID := c.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Registry{
		sessions: c.Sessions,
		decks:    c.Decks,
		dir:      c.Directory,
		log:      c.Logger.With().Str("component", "registry").Logger(),
		newID:    newID,
		users:    make(map[string]domain.Participant),
	}
}

// ListSessions returns a detailed snapshot of every session.
func (r *Registry) ListSessions() []domain.GameSummary {
	return r.snapshot(true)
}

// Session returns a live session by id.
func (r *Registry) Session(sessionID string) (*Session, bool) {
	return r.sessions.Get(sessionID)
}

// Connect registers a participant and sends it the current sessions. A duplicate
// identity is logged and ignored.
func (r *Registry) Connect(p domain.Participant) error {
	r.mu.Lock()
	if _, ok := r.users[p.ID]; ok {
		r.mu.Unlock()
		r.log.Error().Str("user_id", p.ID).Msg("participant already registered")
		return domain.ErrAlreadyRegistered
	}
	r.users[p.ID] = p
	r.mu.Unlock()

	observability.ConnectedParticipants.Inc()
	r.log.Info().Str("user_id", p.ID).Str("name", p.Name).Msg("participant connected")
	r.dir.Send(p.ID, UserConnectedMessage{
		Type:      TypeUserConnected,
		UserID:    p.ID,
		Name:      p.Name,
		GameState: r.snapshot(false),
	})
	return nil
}

// Disconnect deregisters a participant. Session rosters are left untouched.
func (r *Registry) Disconnect(participantID string) {
	r.mu.Lock()
	_, ok := r.users[participantID]
	delete(r.users, participantID)
	r.mu.Unlock()

	if !ok {
		r.log.Warn().Str("user_id", participantID).Msg("disconnect of unknown participant")
		return
	}
	observability.ConnectedParticipants.Dec()
	r.dir.Remove(participantID)
	r.log.Info().Str("user_id", participantID).Msg("participant disconnected")
}

// RemoveSession deletes a session without notifying its participants.
func (r *Registry) RemoveSession(ctx context.Context, sessionID string) error {
	if !r.sessions.Delete(ctx, sessionID) {
		return domain.ErrSessionNotFound
	}
	observability.ActiveSessions.Dec()
	r.log.Info().Str("quiz_id", sessionID).Msg("session removed")
	return nil
}

// Dispatch applies one inbound event issued by participantID. Errors are non-fatal and
// have already been reported to the issuer or logged when returned.
func (r *Registry) Dispatch(ctx context.Context, participantID string, ev Event) error {
	if ev == nil {
		return domain.ErrMalformedEvent
	}
	p, ok := r.participant(participantID)
	if !ok {
		r.log.Error().Str("user_id", participantID).Str("event", ev.Type()).Msg("event from unregistered participant")
		return domain.ErrParticipantNotFound
	}

	var err error
	switch ev := ev.(type) {
	case CreateGame:
		err = r.create(ctx, p, ev)
	case JoinGame:
		err = r.join(ctx, p, ev)
	case StartGame:
		err = r.start(ctx, p, ev)
	case AnswerQuestion:
		err = r.answer(ctx, p, ev)
	case NextQuestion:
		err = r.next(ctx, p, ev)
	default:
		err = fmt.Errorf("%w: %T", domain.ErrUnknownEvent, ev)
	}
	observability.EventsTotal.WithLabelValues(ev.Type(), outcome(err)).Inc()
	return err
}

func (r *Registry) create(ctx context.Context, p domain.Participant, ev CreateGame) error {
	name, questions := ev.QuizName, ev.Questions
	if len(questions) == 0 && ev.DeckID != "" {
		deck, err := r.loadDeck(ctx, ev.DeckID)
		if err != nil {
			r.log.Warn().Err(err).Str("deck_id", ev.DeckID).Msg("create game: deck unavailable")
			r.dir.Send(p.ID, DeckNotFoundMessage{Type: TypeDeckNotFound, DeckID: ev.DeckID})
			return err
		}
		questions = deck.Questions
		if name == "" {
			name = deck.Name
		}
	}

	session := NewSession(r.newID(), name)
	if err := session.AddQuestions(questions...); err != nil {
		r.log.Warn().Err(err).Str("user_id", p.ID).Msg("create game: invalid questions")
		return err
	}
	if err := session.Join(p); err != nil {
		return err
	}
	// Held from Add so events on the new session queue behind GAME_ADDED.
	return session.Exclusive(func() error {
		if err := r.sessions.Add(ctx, session); err != nil {
			r.log.Error().Err(err).Str("quiz_id", session.ID()).Msg("create game: store session")
			return err
		}
		observability.ActiveSessions.Inc()
		r.dir.AddToGroup(p.ID, session.ID())

		r.log.Info().Str("quiz_id", session.ID()).Str("user_id", p.ID).Int("questions", len(questions)).Msg("game created")
		r.dir.Broadcast(session.ID(), GameAddedMessage{
			Type:      TypeGameAdded,
			QuizID:    session.ID(),
			GameState: r.snapshot(true),
		})
		return nil
	})
}

func (r *Registry) loadDeck(ctx context.Context, deckID string) (domain.Deck, error) {
	if r.decks == nil {
		return domain.Deck{}, domain.ErrDeckNotFound
	}
	deck, err := r.decks.GetDeck(ctx, deckID)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("%w: %v", domain.ErrDeckNotFound, err)
	}
	return deck, nil
}

func (r *Registry) join(ctx context.Context, p domain.Participant, ev JoinGame) error {
	session, ok := r.sessions.Get(ev.QuizID)
	if !ok {
		r.log.Warn().Str("quiz_id", ev.QuizID).Str("user_id", p.ID).Msg("join: quiz not found")
		r.dir.Send(p.ID, QuizStateMessage{Type: TypeQuizNotFound, QuizID: ev.QuizID, GameState: r.snapshot(false)})
		return domain.ErrSessionNotFound
	}

	return session.Exclusive(func() error {
		if err := session.Join(p); err != nil {
			r.log.Warn().Str("quiz_id", ev.QuizID).Str("user_id", p.ID).Msg("join: already joined")
			r.dir.Send(p.ID, QuizStateMessage{Type: TypeAlreadyJoined, QuizID: ev.QuizID, GameState: r.snapshot(false)})
			return err
		}
		r.dir.AddToGroup(p.ID, session.ID())
		r.sessions.Save(ctx, session)

		r.dir.Broadcast(session.ID(), UserJoinedMessage{
			Type:      TypeUserJoined,
			UserID:    p.ID,
			Name:      p.Name,
			QuizID:    session.ID(),
			GameState: r.snapshot(true),
		})
		return nil
	})
}

func (r *Registry) start(ctx context.Context, p domain.Participant, ev StartGame) error {
	session, ok := r.sessions.Get(ev.QuizID)
	if !ok {
		r.log.Warn().Str("quiz_id", ev.QuizID).Msg("start: quiz not found")
		return domain.ErrSessionNotFound
	}

	return session.Exclusive(func() error {
		first, err := session.Start()
		if err != nil {
			r.log.Warn().Err(err).Str("quiz_id", ev.QuizID).Str("status", string(session.Status())).Msg("start ignored")
			return err
		}
		r.sessions.Save(ctx, session)
		r.log.Info().Str("quiz_id", ev.QuizID).Str("user_id", p.ID).Msg("game started")

		// The snapshot is announced as USER_JOINED; clients refresh their state from it.
		r.dir.Broadcast(session.ID(), UserJoinedMessage{
			Type:      TypeUserJoined,
			UserID:    p.ID,
			Name:      p.Name,
			QuizID:    session.ID(),
			GameState: r.snapshot(true),
		})
		if first != nil {
			r.dir.Broadcast(session.ID(), NewQuestionMessage{
				Type:     TypeNewQuestion,
				QuizID:   session.ID(),
				Question: first.Public(),
			})
		}
		return nil
	})
}

func (r *Registry) answer(ctx context.Context, p domain.Participant, ev AnswerQuestion) error {
	session, ok := r.sessions.Get(ev.QuizID)
	if !ok {
		r.log.Warn().Str("quiz_id", ev.QuizID).Msg("answer: quiz not found")
		return domain.ErrSessionNotFound
	}

	return session.Exclusive(func() error {
		res, err := session.Answer(p.ID, ev.Answer, ev.TimeTaken)
		if err != nil {
			r.log.Warn().Err(err).Str("quiz_id", ev.QuizID).Str("user_id", p.ID).Msg("answer ignored")
			return err
		}
		r.sessions.Save(ctx, session)

		r.dir.Broadcast(session.ID(), AnswerResultMessage{
			Type:       TypeAnswerResult,
			UserID:     res.UserID,
			Name:       res.Name,
			IsCorrect:  res.Correct,
			Score:      res.Awarded,
			TotalScore: res.Total,
		})
		return nil
	})
}

func (r *Registry) next(ctx context.Context, p domain.Participant, ev NextQuestion) error {
	session, ok := r.sessions.Get(ev.QuizID)
	if !ok {
		r.log.Warn().Str("quiz_id", ev.QuizID).Msg("next: quiz not found")
		return domain.ErrSessionNotFound
	}

	return session.Exclusive(func() error {
		q, ended, scores, err := session.Next()
		if err != nil {
			r.log.Warn().Err(err).Str("quiz_id", ev.QuizID).Str("user_id", p.ID).Msg("next ignored")
			return err
		}
		r.sessions.Save(ctx, session)

		if ended {
			r.log.Info().Str("quiz_id", ev.QuizID).Msg("game over")
			r.dir.Broadcast(session.ID(), GameOverMessage{Type: TypeGameOver, QuizID: session.ID(), Scores: scores})
			return nil
		}
		r.dir.Broadcast(session.ID(), NewQuestionMessage{
			Type:     TypeNewQuestion,
			QuizID:   session.ID(),
			Question: q.Public(),
		})
		return nil
	})
}

func (r *Registry) participant(id string) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.users[id]
	return p, ok
}

func (r *Registry) snapshot(detailed bool) []domain.GameSummary {
	sessions := r.sessions.List()
	state := make([]domain.GameSummary, 0, len(sessions))
	for _, s := range sessions {
		state = append(state, s.Summary(detailed))
	}
	return state
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrDeckNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}
