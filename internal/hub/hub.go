package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/brainduel/quiz-backend/internal/game"
	"github.com/brainduel/quiz-backend/internal/session"
)

var ErrRoomNotFound = errors.New("room not found")

type HubMsg interface{ isHubMsg() }

// CreateRoom inserts a fully-initialized room. Question generation has
// already succeeded by the time this message is sent; a failed generation
// never reaches the hub. The hub picks the code and retries on collision.
type CreateRoom struct {
	HostID    string
	Questions []game.Question
	Settings  game.Settings
	Reply     chan CreateReply
}

type CreateReply struct {
	Code string
	Sess *session.Session
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *session.Session
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the process-wide room registry. A single goroutine owns the
// code->session map, so rooms are created and resolved atomically while
// each room's own mutations stay fully independent of its siblings.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*session.Session
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*session.Session),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.create(msg)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) create(msg CreateRoom) CreateReply {
	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			return CreateReply{Err: err}
		}
		if _, taken := h.rooms[c]; !taken {
			code = c
			break
		}
		h.log.Debug("room code collision, regenerating", zap.String("code", c))
	}

	room := game.NewRoom(code, msg.HostID, msg.Questions, msg.Settings)
	sess := session.New(h.ctx, room, h.log, func(code string) {
		h.inbox <- RemoveRoom{Code: code}
	})
	h.rooms[code] = sess

	h.log.Info("room created",
		zap.String("code", code),
		zap.String("host", msg.HostID),
		zap.Int("questions", len(msg.Questions)))
	return CreateReply{Code: code, Sess: sess}
}

func (h *Hub) shutdown() {
	for _, sess := range h.rooms {
		sess.Inbox() <- session.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}
