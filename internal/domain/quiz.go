package domain

import "fmt"

// DefaultTimeLimit is applied to questions that do not carry a time limit (seconds).
const DefaultTimeLimit = 30

// Status is the lifecycle state of a quiz session.
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusEnded      Status = "ENDED"
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
	TimeLimit     int      `json:"timeLimit,omitempty" yaml:"timeLimit"` // seconds, defaults to 30 if zero
}

// Limit returns the effective time limit in seconds.
func (q Question) Limit() int {
	if q.TimeLimit <= 0 {
		return DefaultTimeLimit
	}
	return q.TimeLimit
}

// Validate checks that the question has options and its correct answer indexes one.
func (q Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: %q has no options", ErrInvalidQuestion, q.ID)
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("%w: %q correct answer %d out of range", ErrInvalidQuestion, q.ID, q.CorrectAnswer)
	}
	return nil
}

// Public strips the correct answer so the question can be sent to players.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:        q.ID,
		Text:      q.Text,
		Options:   append([]string(nil), q.Options...),
		TimeLimit: q.Limit(),
	}
}

// PublicQuestion is the client-facing form of a Question.
type PublicQuestion struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"timeLimit"`
}

// Deck is a stored, reusable set of questions.
type Deck struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// GameSummary is the snapshot of one session. Questions and CurrentQuestion are only
// populated for detailed snapshots.
type GameSummary struct {
	QuizID          string           `json:"quizId"`
	QuizName        string           `json:"quizName"`
	Status          Status           `json:"status,omitempty"`
	Questions       []PublicQuestion `json:"questions,omitempty"`
	CurrentQuestion *PublicQuestion  `json:"currentQuestion,omitempty"`
	Players         []PlayerSummary  `json:"players"`
}
