package session

import "github.com/brainduel/quiz-backend/internal/game"

type EventType string

const (
	EventPlayerJoined   EventType = "player_joined"
	EventPlayerLeft     EventType = "player_left"
	EventReadyUpdated   EventType = "player_ready_updated"
	EventHostChanged    EventType = "host_changed"
	EventStartingGame   EventType = "starting_game"
	EventNewQuestion    EventType = "new_question"
	EventPlayerAnswered EventType = "player_answered"
	EventGameOver       EventType = "game_over"
)

// Event is one outbound broadcast to every member of the room.
type Event struct {
	Type EventType
	Data any
}

type RosterPayload struct {
	Players  []game.Player `json:"players"`
	AllReady bool          `json:"allReady"`
}

type PlayerLeftPayload struct {
	PlayerID string        `json:"playerId"`
	Username string        `json:"username"`
	Players  []game.Player `json:"players"`
	AllReady bool          `json:"allReady"`
}

type ReadyPayload struct {
	PlayerID string        `json:"playerId"`
	IsReady  bool          `json:"isReady"`
	Players  []game.Player `json:"players"`
	AllReady bool          `json:"allReady"`
}

type HostChangedPayload struct {
	NewHostID string        `json:"newHostId"`
	Players   []game.Player `json:"players"`
}

type CountdownPayload struct {
	Count int  `json:"count"`
	Start bool `json:"start"`
}

type QuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Index    int      `json:"index"` // 1-based, for display
	Total    int      `json:"total"`
}

type NewQuestionPayload struct {
	Question QuestionView `json:"question"`
	Rankings []game.Rank  `json:"scores,omitempty"`
}

type PlayerAnsweredPayload struct {
	PlayerID  string `json:"playerId"`
	Username  string `json:"username"`
	IsCorrect bool   `json:"isCorrect"`
}

type GameOverPayload struct {
	Message  string              `json:"message"`
	Rankings []game.Rank         `json:"scores"`
	History  []game.AnswerRecord `json:"answerHistory"`
}
