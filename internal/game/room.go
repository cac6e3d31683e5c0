package game

import (
	"errors"
	"time"
)

var ErrRoomFull = errors.New("room is full")
var ErrJoinClosed = errors.New("the game is already in progress")
var ErrNotHost = errors.New("only the host can start the game")
var ErrNoPlayers = errors.New("at least one player is needed to start")
var ErrNoQuestions = errors.New("no questions available to start")
var ErrAlreadyStarted = errors.New("the game has already started")
var ErrNotStarted = errors.New("the game has not started yet")
var ErrGameOver = errors.New("the game is already over or there are no more questions")
var ErrNotInRoom = errors.New("player is not in this room")
var ErrInvalidOption = errors.New("invalid answer option")

type State string

const (
	StateLobby      State = "lobby"
	StateCountdown  State = "countdown"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

// MaxPlayers caps the roster of a single room.
const MaxPlayers = 5

type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsReady  bool   `json:"isReady"`
	Score    int    `json:"score"`
}

type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

type AnswerRecord struct {
	QuestionIndex int    `json:"questionIndex"`
	QuestionText  string `json:"questionText"`
	PlayerID      string `json:"playerId"`
	Username      string `json:"username"`
	Answer        int    `json:"userAnswer"`
	AnswerText    string `json:"answerText"`
	Correct       int    `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

type Settings struct {
	QuestionsRequested int    `json:"maxQuestionsRequested"`
	ActualQuestions    int    `json:"actualQuestions"`
	Topic              string `json:"topic"`
	Difficulty         string `json:"difficulty"`
}

// Room is the mutable state of one quiz session. It is not safe for
// concurrent use; the owning session goroutine serializes every mutation.
type Room struct {
	Code      string
	Players   []*Player
	HostID    string
	Questions []Question
	Current   int // index of the question awaiting an answer
	State     State
	History   []AnswerRecord
	Settings  Settings
	CreatedAt time.Time
}

func NewRoom(code, hostID string, questions []Question, settings Settings) *Room {
	settings.ActualQuestions = len(questions)
	return &Room{
		Code:      code,
		HostID:    hostID,
		Questions: questions,
		State:     StateLobby,
		Settings:  settings,
		CreatedAt: time.Now(),
	}
}

func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Join appends a player to the roster. Re-joining with an identity that is
// already present succeeds without mutating anything (joined=false).
// Players can join while the room is in the lobby or counting down.
func (r *Room) Join(id, username string) (joined bool, err error) {
	if r.FindPlayer(id) != nil {
		return false, nil
	}
	if r.State != StateLobby && r.State != StateCountdown {
		return false, ErrJoinClosed
	}
	if len(r.Players) >= MaxPlayers {
		return false, ErrRoomFull
	}
	r.Players = append(r.Players, &Player{ID: id, Username: username})
	return true, nil
}

type LeaveResult struct {
	Removed     bool
	Username    string
	HostChanged bool
	NewHostID   string
	Empty       bool
}

// Leave removes a player by identity. Removing an absent player is a no-op
// (Removed=false). If the host left and players remain, the oldest member
// becomes the new host; if nobody remains the room must be deleted.
func (r *Room) Leave(id string) LeaveResult {
	idx := -1
	for i, p := range r.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return LeaveResult{}
	}

	res := LeaveResult{Removed: true, Username: r.Players[idx].Username}
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if len(r.Players) == 0 {
		res.Empty = true
		return res
	}
	if id == r.HostID {
		r.HostID = r.Players[0].ID
		res.HostChanged = true
		res.NewHostID = r.HostID
	}
	return res
}

// SetReady flags readiness for a player; reports whether the player exists.
func (r *Room) SetReady(id string, ready bool) bool {
	p := r.FindPlayer(id)
	if p == nil {
		return false
	}
	p.IsReady = ready
	return true
}

// AllReady reports whether every non-host player is ready. The host is
// never counted, and an empty set of non-host players is not "all ready".
func (r *Room) AllReady() bool {
	others := 0
	for _, p := range r.Players {
		if p.ID == r.HostID {
			continue
		}
		others++
		if !p.IsReady {
			return false
		}
	}
	return others > 0
}
