package domain

// Phase is the stage a session is currently in.
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseQuestion    Phase = "question"
	PhaseLeaderboard Phase = "leaderboard"
	PhaseEnded       Phase = "ended"
)

// Question is a single timed multiple-choice question.
type Question struct {
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	TimeLimit int      `json:"timeLimit"` // seconds; defaults to 20 if zero
}

// Quiz is an ordered list of questions owned by a user.
type Quiz struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Questions []Question `json:"questions"`
}

// LeaderboardEntry is a snapshot-friendly view of a player's standing.
type LeaderboardEntry struct {
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// GameStats is the completion report handed to the stats recorder once a
// session reaches the ended phase. Anonymous guests carry no user identity
// and are excluded before this struct is built.
type GameStats struct {
	QuizID    string   `json:"quizId"`
	Code      string   `json:"code"`
	PlayerIDs []string `json:"playerIds"`
	WinnerIDs []string `json:"winnerIds"`
}
