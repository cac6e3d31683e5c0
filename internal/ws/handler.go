package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brainduel/quiz-backend/internal/game"
	"github.com/brainduel/quiz-backend/internal/hub"
	"github.com/brainduel/quiz-backend/internal/questions"
	"github.com/brainduel/quiz-backend/internal/session"
	"github.com/brainduel/quiz-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// replyTimeout bounds every wait on a session reply so a room deleted
// between lookup and dispatch cannot hang the connection.
const replyTimeout = 5 * time.Second

// Handler upgrades the connection and runs the event loop for one client.
// The connection identity doubles as the player identity in any room the
// client joins.
func Handler(h *hub.Hub, src questions.Source, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			id:   uuid.NewString(),
			conn: conn,
			hub:  h,
			src:  src,
		}
		c.log = log.With(zap.String("client", c.id))
		c.run(r.Context())
	}
}

type client struct {
	id   string
	conn *websocket.Conn
	hub  *hub.Hub
	src  questions.Source
	log  *zap.Logger

	writeMu sync.Mutex

	// room the client has joined, if any; leave is triggered here on
	// disconnect.
	roomCode string
	sess     *session.Session
}

func (c *client) run(ctx context.Context) {
	defer func() {
		// Implicit leave for the room this identity was in.
		if c.sess != nil {
			select {
			case c.sess.Inbox() <- session.Leave{ClientID: c.id}:
			case <-c.sess.Done():
			}
		}
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			c.writeAck(ctx, types.Ack{Type: "ack", Success: false, Message: "bad json"})
			continue
		}
		c.dispatch(ctx, cm)
	}
}

// dispatch routes one message. Anything unexpected is caught here, logged
// in full and reported as a generic internal error; it never takes down
// the connection or the process.
func (c *client) dispatch(ctx context.Context, cm types.ClientMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error("panic while handling event",
				zap.String("event", cm.Type), zap.Any("panic", rec), zap.Stack("stack"))
			c.fail(ctx, cm.Seq, "internal error")
		}
	}()

	switch cm.Type {
	case "create_room":
		c.handleCreateRoom(ctx, cm)
	case "join_room":
		c.handleJoinRoom(ctx, cm)
	case "quit_room":
		c.handleQuitRoom(ctx, cm)
	case "get_players":
		c.handleGetPlayers(ctx, cm)
	case "player_ready":
		c.handlePlayerReady(cm)
	case "start_game":
		c.handleStartGame(ctx, cm)
	case "answer":
		c.handleAnswer(ctx, cm)
	default:
		c.fail(ctx, cm.Seq, "unknown event type")
	}
}

func (c *client) handleCreateRoom(ctx context.Context, cm types.ClientMessage) {
	if cm.MaxQuestions <= 0 {
		c.fail(ctx, cm.Seq, "question count must be positive")
		return
	}
	if err := questions.ValidateFiles(cm.Files); err != nil {
		c.fail(ctx, cm.Seq, err.Error())
		return
	}

	topic := cm.Topic
	if topic == "" {
		topic = questions.DefaultTopic
	}
	difficulty := cm.Difficulty
	if difficulty == "" {
		difficulty = questions.DefaultDifficulty
	}

	// Generation is slow; it runs here, on the connection goroutine, and
	// the room only becomes visible once it has succeeded.
	qs, err := c.src.Generate(ctx, cm.MaxQuestions, topic, difficulty, cm.Files)
	if err != nil || len(qs) == 0 {
		c.log.Warn("question generation failed", zap.Error(err))
		c.fail(ctx, cm.Seq, questions.ErrNoQuestions.Error())
		return
	}

	reply := make(chan hub.CreateReply, 1)
	c.hub.Inbox() <- hub.CreateRoom{
		HostID:    c.id,
		Questions: qs,
		Settings: game.Settings{
			QuestionsRequested: cm.MaxQuestions,
			Topic:              topic,
			Difficulty:         difficulty,
		},
		Reply: reply,
	}
	res := <-reply
	if res.Err != nil {
		c.log.Error("room creation failed", zap.Error(res.Err))
		c.fail(ctx, cm.Seq, "internal error while creating the room")
		return
	}

	c.writeAck(ctx, types.Ack{Type: "ack", Seq: cm.Seq, Success: true, RoomCode: res.Code})
}

func (c *client) handleJoinRoom(ctx context.Context, cm types.ClientMessage) {
	sess := c.resolve(cm.RoomCode)
	if sess == nil {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}

	username := cm.Username
	if username == "" {
		username = fmt.Sprintf("Player-%.4s", c.id)
	}

	out := make(chan session.Event, 16)
	reply := make(chan error, 1)
	err, ok := ask(sess, session.Join{ClientID: c.id, Username: username, Outbox: out, Reply: reply}, reply)
	if !ok {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}
	if err != nil {
		c.fail(ctx, cm.Seq, err.Error())
		return
	}

	c.roomCode = cm.RoomCode
	c.sess = sess
	go c.forwardEvents(ctx, out)

	c.writeAck(ctx, types.Ack{Type: "ack", Seq: cm.Seq, Success: true})
}

func (c *client) handleQuitRoom(ctx context.Context, cm types.ClientMessage) {
	sess := c.resolve(cm.RoomCode)
	if sess == nil {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}

	reply := make(chan bool, 1)
	removed, ok := ask(sess, session.Leave{ClientID: c.id, Reply: reply}, reply)
	if !ok {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}

	// Forget the room only if the quit targeted it; quitting a room this
	// identity never joined must not orphan the membership the disconnect
	// cleanup relies on.
	if cm.RoomCode == c.roomCode {
		c.roomCode = ""
		c.sess = nil
	}

	ack := types.Ack{Type: "ack", Seq: cm.Seq, Success: true}
	if !removed {
		ack.Message = "player was not in the room"
	}
	c.writeAck(ctx, ack)
}

func (c *client) handleGetPlayers(ctx context.Context, cm types.ClientMessage) {
	sess := c.resolve(cm.RoomCode)
	if sess == nil {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}

	reply := make(chan []game.Player, 1)
	players, ok := ask(sess, session.GetPlayers{Reply: reply}, reply)
	if !ok {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}
	c.writeAck(ctx, types.Ack{Type: "ack", Seq: cm.Seq, Success: true, Players: players})
}

// handlePlayerReady is fire-and-forget: no acknowledgement even when the
// room is unknown.
func (c *client) handlePlayerReady(cm types.ClientMessage) {
	sess := c.resolve(cm.RoomCode)
	if sess == nil {
		return
	}
	select {
	case sess.Inbox() <- session.SetReady{ClientID: c.id, Ready: cm.IsReady}:
	case <-sess.Done():
	}
}

func (c *client) handleStartGame(ctx context.Context, cm types.ClientMessage) {
	sess := c.resolve(cm.RoomCode)
	if sess == nil {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}

	reply := make(chan error, 1)
	err, ok := ask(sess, session.Start{ClientID: c.id, Reply: reply}, reply)
	if !ok {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}
	if err != nil {
		c.fail(ctx, cm.Seq, err.Error())
		return
	}
	c.writeAck(ctx, types.Ack{Type: "ack", Seq: cm.Seq, Success: true})
}

func (c *client) handleAnswer(ctx context.Context, cm types.ClientMessage) {
	sess := c.resolve(cm.RoomCode)
	if sess == nil {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}
	if cm.Answer == nil {
		c.fail(ctx, cm.Seq, game.ErrInvalidOption.Error())
		return
	}

	reply := make(chan session.AnswerReply, 1)
	res, ok := ask(sess, session.Answer{ClientID: c.id, Choice: *cm.Answer, Reply: reply}, reply)
	if !ok {
		c.fail(ctx, cm.Seq, hub.ErrRoomNotFound.Error())
		return
	}
	if res.Err != nil {
		c.fail(ctx, cm.Seq, res.Err.Error())
		return
	}

	correct := res.Correct
	c.writeAck(ctx, types.Ack{
		Type:         "ack",
		Seq:          cm.Seq,
		Success:      true,
		Correct:      &correct,
		CurrentScore: res.Score,
	})
}

// resolve looks a room up in the hub; missing rooms are logged at warn
// since stale client state makes them common.
func (c *client) resolve(code string) *session.Session {
	reply := make(chan *session.Session, 1)
	c.hub.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	sess := <-reply
	if sess == nil {
		c.log.Warn("access to unknown room", zap.String("room", code))
	}
	return sess
}

// ask sends a message to a session and waits for its typed reply. ok is
// false when the session shut down or the reply timed out.
func ask[T any](sess *session.Session, msg session.Msg, reply chan T) (T, bool) {
	var zero T
	timer := time.NewTimer(replyTimeout)
	defer timer.Stop()

	select {
	case sess.Inbox() <- msg:
	case <-sess.Done():
		return zero, false
	case <-timer.C:
		return zero, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-sess.Done():
		// The session may have answered just before shutting down.
		select {
		case v := <-reply:
			return v, true
		default:
			return zero, false
		}
	case <-timer.C:
		return zero, false
	}
}

// forwardEvents pumps room broadcasts to the socket until the session
// closes the outbox.
func (c *client) forwardEvents(ctx context.Context, out <-chan session.Event) {
	for ev := range out {
		c.writeJSON(ctx, types.ServerEvent{Type: string(ev.Type), Data: ev.Data})
	}
}

func (c *client) fail(ctx context.Context, seq int, msg string) {
	c.writeAck(ctx, types.Ack{Type: "ack", Seq: seq, Success: false, Message: msg})
}

func (c *client) writeAck(ctx context.Context, ack types.Ack) {
	c.writeJSON(ctx, ack)
}

// writeJSON is the single write path; acks and forwarded events share the
// mutex so frames never interleave.
func (c *client) writeJSON(ctx context.Context, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.log.Error("failed to marshal outbound message", zap.Error(err))
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = c.conn.Write(wctx, websocket.MessageText, payload)
}
