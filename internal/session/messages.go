package session

import "github.com/brainduel/quiz-backend/internal/game"

type Msg interface{ isSessionMsg() }

// Join adds a player to the roster and registers its outbox for broadcasts.
type Join struct {
	ClientID string
	Username string
	Outbox   chan Event // where this client wants to receive room events
	Reply    chan error
}

func (Join) isSessionMsg() {}

// Leave removes a player. Reply (optional) reports whether the player was
// actually present, so callers can tell "removed" from "already gone".
type Leave struct {
	ClientID string
	Reply    chan bool
}

func (Leave) isSessionMsg() {}

// SetReady is fire-and-forget: no acknowledgement, only a broadcast.
type SetReady struct {
	ClientID string
	Ready    bool
}

func (SetReady) isSessionMsg() {}

type Start struct {
	ClientID string
	Reply    chan error
}

func (Start) isSessionMsg() {}

type AnswerReply struct {
	Correct bool
	Score   int
	Err     error
}

type Answer struct {
	ClientID string
	Choice   int
	Reply    chan AnswerReply
}

func (Answer) isSessionMsg() {}

type GetPlayers struct {
	Reply chan []game.Player
}

func (GetPlayers) isSessionMsg() {}

// GetState is test-only: reflect internal state without data races.
type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type View struct {
	State      game.State
	NumClients int
	Current    int
	Players    []game.Player
}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// countdownTick is fed back into the inbox by the countdown goroutine so
// ticks are serialized with every other mutation. Gen guards against a
// stale ticker firing after the countdown it belonged to is gone.
type countdownTick struct {
	Gen   int
	Count int
}

func (countdownTick) isSessionMsg() {}
