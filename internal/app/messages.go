package app

import "live-quiz-service/internal/domain"

// Outbound message types.
const (
	TypeUserConnected = "USER_CONNECTED"
	TypeGameAdded     = "GAME_ADDED"
	TypeQuizNotFound  = "QUIZ_NOT_FOUND"
	TypeAlreadyJoined = "ALREADY_JOINED"
	TypeUserJoined    = "USER_JOINED"
	TypeAnswerResult  = "ANSWER_RESULT"
	TypeNewQuestion   = "NEW_QUESTION"
	TypeGameOver      = "GAME_OVER"
	TypeDeckNotFound  = "DECK_NOT_FOUND"
)

type UserConnectedMessage struct {
	Type      string               `json:"type"`
	UserID    string               `json:"userId"`
	Name      string               `json:"name"`
	GameState []domain.GameSummary `json:"gameState"`
}

type GameAddedMessage struct {
	Type      string               `json:"type"`
	QuizID    string               `json:"quizId"`
	GameState []domain.GameSummary `json:"gameState"`
}

// QuizStateMessage is used for QUIZ_NOT_FOUND and ALREADY_JOINED replies.
type QuizStateMessage struct {
	Type      string               `json:"type"`
	QuizID    string               `json:"quizId"`
	GameState []domain.GameSummary `json:"gameState"`
}

type UserJoinedMessage struct {
	Type      string               `json:"type"`
	UserID    string               `json:"userId"`
	Name      string               `json:"name"`
	QuizID    string               `json:"quizId"`
	GameState []domain.GameSummary `json:"gameState"`
}

type AnswerResultMessage struct {
	Type       string `json:"type"`
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	IsCorrect  bool   `json:"isCorrect"`
	Score      int    `json:"score"`
	TotalScore int    `json:"totalScore"`
}

type NewQuestionMessage struct {
	Type     string                `json:"type"`
	QuizID   string                `json:"quizId"`
	Question domain.PublicQuestion `json:"question"`
}

type GameOverMessage struct {
	Type   string              `json:"type"`
	QuizID string              `json:"quizId"`
	Scores []domain.ScoreEntry `json:"scores"`
}

type DeckNotFoundMessage struct {
	Type   string `json:"type"`
	DeckID string `json:"deckId"`
}
