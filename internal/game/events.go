package game

import (
	"time"

	"trivia-session-service/internal/domain"
)

// EventType identifies a push event fanned out to a session's connections.
type EventType string

const (
	EventLobby           EventType = "lobby"
	EventQuestionStarted EventType = "questionStarted"
	EventQuestionEnded   EventType = "questionEnded"
	EventGameEnded       EventType = "gameEnded"
)

// Event is a single push notification delivered to every subscriber of a
// session. Payloads are JSON-ready so the transport can forward them as-is.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// RosterEntry is one connected participant as shown in the lobby.
type RosterEntry struct {
	DisplayName string `json:"displayName"`
	IsHost      bool   `json:"isHost"`
}

// LobbyPayload carries the current roster after a join or leave.
type LobbyPayload struct {
	Code   string        `json:"code"`
	Phase  domain.Phase  `json:"phase"`
	Roster []RosterEntry `json:"roster"`
}

// QuestionStartedPayload opens a question. The correct option is withheld.
type QuestionStartedPayload struct {
	Index   int       `json:"index"`
	Prompt  string    `json:"prompt"`
	Options []string  `json:"options"`
	EndsAt  time.Time `json:"endsAt"`
}

// ParticipantResult is one player's outcome for a finished question.
type ParticipantResult struct {
	DisplayName string `json:"displayName"`
	Selected    *int   `json:"selected,omitempty"`
	Correct     bool   `json:"correct"`
	Points      int    `json:"points"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// QuestionEndedPayload closes a question, revealing the correct option,
// per-player results, and the cumulative leaderboard.
type QuestionEndedPayload struct {
	Index       int                       `json:"index"`
	Correct     int                       `json:"correct"`
	Results     []ParticipantResult       `json:"results"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// GameEndedPayload is the terminal event with final standings.
type GameEndedPayload struct {
	Code        string                    `json:"code"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}
