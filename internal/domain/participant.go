package domain

// Participant is a connected user as issued by the connection layer.
type Participant struct {
	ID     string
	Name   string
	Avatar string
}

// PlayerSummary is the roster view sent to clients.
type PlayerSummary struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Avatar string `json:"avatar"`
}

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// AnswerOutcome summarizes the result of one answer for one participant.
type AnswerOutcome struct {
	UserID  string
	Name    string
	Correct bool
	Awarded int
	Total   int
}
