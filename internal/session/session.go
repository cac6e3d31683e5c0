package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brainduel/quiz-backend/internal/game"
)

// countdownTicks is the value of the first countdown tick; the tick that
// carries 0 is the "start" tick.
const countdownTicks = 3

// countdownInterval is a var so tests can shrink it.
var countdownInterval = time.Second

// Session owns one room. A single goroutine drains the inbox, so every
// mutation of the room is atomic with respect to every other and broadcasts
// go out in mutation order.
type Session struct {
	Code string

	inbox   chan Msg
	room    *game.Room
	clients map[string]chan Event
	gen     int // current countdown generation
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
	onEmpty func(code string)
}

// New starts the session goroutine. onEmpty is called (once) when the last
// player leaves, right before the session shuts itself down.
func New(parent context.Context, room *game.Room, log *zap.Logger, onEmpty func(code string)) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		Code:    room.Code,
		inbox:   make(chan Msg, 64),
		room:    room,
		clients: make(map[string]chan Event),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(zap.String("room", room.Code)),
		onEmpty: onEmpty,
	}

	go s.loop()
	return s
}

// Inbox exposes the mailbox to the transport layer and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed when the session has shut down; senders select on it so a
// message aimed at a deleted room fails instead of blocking.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.handleJoin(msg)

			case Leave:
				if s.handleLeave(msg) {
					s.shutdown()
					return
				}

			case SetReady:
				s.handleSetReady(msg)

			case Start:
				s.handleStart(msg)

			case countdownTick:
				s.handleTick(msg)

			case Answer:
				s.handleAnswer(msg)

			case GetPlayers:
				msg.Reply <- s.snapshotPlayers()

			case GetState:
				msg.Reply <- View{
					State:      s.room.State,
					NumClients: len(s.clients),
					Current:    s.room.Current,
					Players:    s.snapshotPlayers(),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleJoin(msg Join) {
	joined, err := s.room.Join(msg.ClientID, msg.Username)
	if err != nil {
		msg.Reply <- err
		return
	}

	// Register (or refresh, on an idempotent re-join) the client outbox.
	if old, ok := s.clients[msg.ClientID]; ok && old != msg.Outbox {
		close(old)
	}
	s.clients[msg.ClientID] = msg.Outbox
	msg.Reply <- nil

	if !joined {
		return // already in the roster, nothing changed
	}
	s.broadcast(Event{Type: EventPlayerJoined, Data: RosterPayload{
		Players:  s.snapshotPlayers(),
		AllReady: s.room.AllReady(),
	}})
}

// handleLeave reports whether the room emptied and the session must stop.
func (s *Session) handleLeave(msg Leave) (empty bool) {
	if ch, ok := s.clients[msg.ClientID]; ok {
		close(ch)
		delete(s.clients, msg.ClientID)
	}

	res := s.room.Leave(msg.ClientID)
	if msg.Reply != nil {
		msg.Reply <- res.Removed
	}
	if !res.Removed {
		return false
	}

	if res.Empty {
		s.log.Info("room is empty, removing")
		if s.onEmpty != nil {
			s.onEmpty(s.Code)
		}
		return true
	}

	s.broadcast(Event{Type: EventPlayerLeft, Data: PlayerLeftPayload{
		PlayerID: msg.ClientID,
		Username: res.Username,
		Players:  s.snapshotPlayers(),
		AllReady: s.room.AllReady(),
	}})
	if res.HostChanged {
		s.log.Info("host migrated", zap.String("new_host", res.NewHostID))
		s.broadcast(Event{Type: EventHostChanged, Data: HostChangedPayload{
			NewHostID: res.NewHostID,
			Players:   s.snapshotPlayers(),
		}})
	}
	return false
}

func (s *Session) handleSetReady(msg SetReady) {
	if s.room.State != game.StateLobby {
		s.log.Warn("ready toggle outside lobby ignored", zap.String("player", msg.ClientID))
		return
	}
	if !s.room.SetReady(msg.ClientID, msg.Ready) {
		return
	}
	s.broadcast(Event{Type: EventReadyUpdated, Data: ReadyPayload{
		PlayerID: msg.ClientID,
		IsReady:  msg.Ready,
		Players:  s.snapshotPlayers(),
		AllReady: s.room.AllReady(),
	}})
}

func (s *Session) handleStart(msg Start) {
	if err := s.room.Start(msg.ClientID); err != nil {
		msg.Reply <- err
		return
	}
	msg.Reply <- nil

	s.gen++
	go s.runCountdown(s.gen)
}

// runCountdown emits one tick per interval, counting down to the start
// tick. Ticks travel through the inbox so they never interleave with other
// mutations, and the session context cancels the goroutine if the room is
// deleted mid-count.
func (s *Session) runCountdown(gen int) {
	ticker := time.NewTicker(countdownInterval)
	defer ticker.Stop()

	for count := countdownTicks; count >= 0; count-- {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
		select {
		case <-s.ctx.Done():
			return
		case s.inbox <- countdownTick{Gen: gen, Count: count}:
		}
	}
}

func (s *Session) handleTick(msg countdownTick) {
	if msg.Gen != s.gen || s.room.State != game.StateCountdown {
		return // stale ticker
	}

	s.broadcast(Event{Type: EventStartingGame, Data: CountdownPayload{
		Count: msg.Count,
		Start: msg.Count == 0,
	}})
	if msg.Count > 0 {
		return
	}

	s.room.BeginQuestions()
	q, ok := s.room.CurrentQuestion()
	if !ok {
		return
	}
	s.broadcast(Event{Type: EventNewQuestion, Data: NewQuestionPayload{
		Question: s.questionView(q),
	}})
}

func (s *Session) handleAnswer(msg Answer) {
	out, err := s.room.SubmitAnswer(msg.ClientID, msg.Choice)
	if err != nil {
		msg.Reply <- AnswerReply{Err: err}
		return
	}
	msg.Reply <- AnswerReply{Correct: out.IsCorrect, Score: out.Player.Score}

	s.broadcast(Event{Type: EventPlayerAnswered, Data: PlayerAnsweredPayload{
		PlayerID:  out.Player.ID,
		Username:  out.Player.Username,
		IsCorrect: out.IsCorrect,
	}})

	if out.Finished {
		s.broadcast(Event{Type: EventGameOver, Data: GameOverPayload{
			Message:  "Game over!",
			Rankings: s.room.Rankings(),
			History:  append([]game.AnswerRecord(nil), s.room.History...),
		}})
		return
	}

	q, ok := s.room.CurrentQuestion()
	if !ok {
		return
	}
	s.broadcast(Event{Type: EventNewQuestion, Data: NewQuestionPayload{
		Question: s.questionView(q),
		Rankings: s.room.Rankings(),
	}})
}

func (s *Session) questionView(q game.Question) QuestionView {
	return QuestionView{
		Question: q.Text,
		Options:  q.Options,
		Index:    s.room.Current + 1,
		Total:    len(s.room.Questions),
	}
}

// snapshotPlayers copies the roster so receivers never share the session's
// mutable player structs.
func (s *Session) snapshotPlayers() []game.Player {
	out := make([]game.Player, 0, len(s.room.Players))
	for _, p := range s.room.Players {
		out = append(out, *p)
	}
	return out
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // tell the client no more events are coming
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(ev Event) {
	for id, ch := range s.clients {
		select {
		case ch <- ev:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}
