package app

import (
	"sort"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// Session is one quiz instance: roster, question deck, cursor and status.
// All mutations and snapshots go through mu. Event handling is serialized by dispatch,
// which is held across a mutation and the writes and broadcasts that publish it.
type Session struct {
	id   string
	name string
	now  func() time.Time

	dispatch sync.Mutex

	mu        sync.RWMutex
	status    domain.Status
	questions []domain.Question
	cursor    int // -1 until started
	startedAt time.Time
	players   []*player
	index     map[string]*player
	answers   []AnswerRecord
}

type player struct {
	participant domain.Participant
	score       int
	answered    map[int]struct{}
}

// AnswerRecord is the audit entry of one accepted answer.
type AnswerRecord struct {
	UserID     string
	QuestionID string
	Answer     int
	Correct    bool
	Awarded    int
	TimeTaken  float64
	Elapsed    time.Duration
}

// NewSession creates a WAITING session.
func NewSession(id, name string) *Session {
	return NewSessionWithClock(id, name, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, name string, now func() time.Time) *Session {
	return &Session{
		id:     id,
		name:   name,
		now:    now,
		status: domain.StatusWaiting,
		cursor: -1,
		index:  make(map[string]*player),
	}
}

func (s *Session) ID() string { return s.id }

// Exclusive runs fn while holding the session's dispatch lock.
func (s *Session) Exclusive(fn func() error) error {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	return fn()
}

// Status returns the current lifecycle state.
func (s *Session) Status() domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// AddQuestions appends to the deck. Questions are frozen once the session starts, and
// an invalid question rejects the whole batch.
func (s *Session) AddQuestions(questions ...domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusWaiting {
		return domain.ErrAlreadyStarted
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	s.questions = append(s.questions, questions...)
	return nil
}

// Join appends a participant to the roster.
func (s *Session) Join(p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[p.ID]; ok {
		return domain.ErrAlreadyJoined
	}
	pl := &player{participant: p, answered: make(map[int]struct{})}
	s.players = append(s.players, pl)
	s.index[p.ID] = pl
	return nil
}

// Start moves the session to IN_PROGRESS and returns the first question, if the deck
// has one.
func (s *Session) Start() (*domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusWaiting {
		return nil, domain.ErrAlreadyStarted
	}
	s.status = domain.StatusInProgress
	s.cursor = 0
	s.startedAt = s.now()
	return s.currentLocked(), nil
}

// CurrentQuestion returns the question in progress, or nil.
func (s *Session) CurrentQuestion() *domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() *domain.Question {
	if s.status != domain.StatusInProgress || s.cursor < 0 || s.cursor >= len(s.questions) {
		return nil
	}
	q := s.questions[s.cursor]
	return &q
}

// Answer scores one answer against the current question and adds the award to the
// participant's running total.
func (s *Session) Answer(participantID string, answer int, timeTaken float64) (domain.AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.currentLocked()
	if q == nil {
		return domain.AnswerOutcome{}, domain.ErrNoActiveQuestion
	}
	pl, ok := s.index[participantID]
	if !ok {
		return domain.AnswerOutcome{}, domain.ErrParticipantNotFound
	}
	if _, done := pl.answered[s.cursor]; done {
		return domain.AnswerOutcome{}, domain.ErrAlreadyAnswered
	}

	correct := answer == q.CorrectAnswer
	awarded := Score(correct, timeTaken, q.Limit())
	pl.score += awarded
	pl.answered[s.cursor] = struct{}{}
	s.answers = append(s.answers, AnswerRecord{
		UserID:     participantID,
		QuestionID: q.ID,
		Answer:     answer,
		Correct:    correct,
		Awarded:    awarded,
		TimeTaken:  timeTaken,
		Elapsed:    s.now().Sub(s.startedAt),
	})

	return domain.AnswerOutcome{
		UserID:  participantID,
		Name:    pl.participant.Name,
		Correct: correct,
		Awarded: awarded,
		Total:   pl.score,
	}, nil
}

// Next advances the cursor. It returns the new question, or ended=true with the final
// leaderboard once the deck is exhausted.
func (s *Session) Next() (next *domain.Question, ended bool, scores []domain.ScoreEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusInProgress {
		return nil, false, nil, domain.ErrNoActiveQuestion
	}
	if s.cursor+1 < len(s.questions) {
		s.cursor++
		s.startedAt = s.now()
		return s.currentLocked(), false, nil, nil
	}
	s.status = domain.StatusEnded
	return nil, true, s.leaderboardLocked(), nil
}

// Leaderboard returns the roster sorted by score, ties kept in join order.
func (s *Session) Leaderboard() []domain.ScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboardLocked()
}

func (s *Session) leaderboardLocked() []domain.ScoreEntry {
	entries := make([]domain.ScoreEntry, 0, len(s.players))
	for _, pl := range s.players {
		entries = append(entries, domain.ScoreEntry{
			UserID: pl.participant.ID,
			Name:   pl.participant.Name,
			Score:  pl.score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Answers returns a copy of the audit log.
func (s *Session) Answers() []AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AnswerRecord(nil), s.answers...)
}

// Summary returns a consistent snapshot of the session.
func (s *Session) Summary(detailed bool) domain.GameSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaryLocked(detailed)
}

// Projection returns the summary and the leaderboard of the same state.
func (s *Session) Projection() (domain.GameSummary, []domain.ScoreEntry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaryLocked(false), s.leaderboardLocked()
}

func (s *Session) summaryLocked(detailed bool) domain.GameSummary {
	players := make([]domain.PlayerSummary, 0, len(s.players))
	for _, pl := range s.players {
		players = append(players, domain.PlayerSummary{
			Name:   pl.participant.Name,
			UserID: pl.participant.ID,
			Avatar: pl.participant.Avatar,
		})
	}
	summary := domain.GameSummary{
		QuizID:   s.id,
		QuizName: s.name,
		Status:   s.status,
		Players:  players,
	}
	if !detailed {
		return summary
	}
	summary.Questions = make([]domain.PublicQuestion, 0, len(s.questions))
	for _, q := range s.questions {
		summary.Questions = append(summary.Questions, q.Public())
	}
	if q := s.currentLocked(); q != nil {
		pub := q.Public()
		summary.CurrentQuestion = &pub
	}
	return summary
}
