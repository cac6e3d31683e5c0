package types

import (
	"github.com/brainduel/quiz-backend/internal/game"
	"github.com/brainduel/quiz-backend/internal/questions"
)

// ClientMessage is the flat envelope for every inbound event; which fields
// matter depends on Type.
type ClientMessage struct {
	Type string `json:"type"`
	Seq  int    `json:"seq,omitempty"`

	// create_room
	MaxQuestions int              `json:"maxQuestions,omitempty"`
	Topic        string           `json:"topic,omitempty"`
	Difficulty   string           `json:"difficulty,omitempty"`
	Files        []questions.File `json:"files,omitempty"`

	// join_room / quit_room / get_players / player_ready / start_game / answer
	RoomCode string `json:"roomCode,omitempty"`
	Username string `json:"username,omitempty"`
	IsReady  bool   `json:"isReady,omitempty"`
	Answer   *int   `json:"answer,omitempty"` // pointer: option 0 is a valid answer
}

// Ack is the direct acknowledgement for one client message, correlated by
// the request's seq.
type Ack struct {
	Type    string `json:"type"` // always "ack"
	Seq     int    `json:"seq"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	RoomCode     string        `json:"roomCode,omitempty"`
	Players      []game.Player `json:"players,omitempty"`
	Correct      *bool         `json:"correct,omitempty"`
	CurrentScore int           `json:"currentScore,omitempty"`
}

// ServerEvent wraps a room broadcast for the wire.
type ServerEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
