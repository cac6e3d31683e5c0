package hub

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brainduel/quiz-backend/internal/game"
	"github.com/brainduel/quiz-backend/internal/session"
)

func oneQuestion() []game.Question {
	return []game.Question{{Text: "Q", Options: []string{"a", "b", "c", "d"}, Correct: 0}}
}

func createRoom(t *testing.T, h *Hub, hostID string) CreateReply {
	t.Helper()
	reply := make(chan CreateReply, 1)
	h.Inbox() <- CreateRoom{HostID: hostID, Questions: oneQuestion(), Reply: reply}
	select {
	case res := <-reply:
		if res.Err != nil {
			t.Fatalf("create room: %v", res.Err)
		}
		return res
	case <-time.After(time.Second):
		t.Fatalf("timed out creating room")
		return CreateReply{} // unreachable
	}
}

func getRoom(t *testing.T, h *Hub, code string) *session.Session {
	t.Helper()
	reply := make(chan *session.Session, 1)
	h.Inbox() <- GetRoom{Code: code, Reply: reply}
	select {
	case s := <-reply:
		return s
	case <-time.After(time.Second):
		t.Fatalf("timed out getting room")
		return nil // unreachable
	}
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())

	res := createRoom(t, h, "host-1")
	if len(res.Code) != CodeLength {
		t.Fatalf("want %d-char code, got %q", CodeLength, res.Code)
	}

	got := getRoom(t, h, res.Code)
	if got == nil || got != res.Sess {
		t.Fatalf("expected same session pointer")
	}
}

func TestHub_GetUnknownRoomIsNil(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	if got := getRoom(t, h, "ZZZZZ"); got != nil {
		t.Fatalf("unknown code should resolve to nil")
	}
}

func TestHub_RemoveRoom(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())

	res := createRoom(t, h, "host-1")
	h.Inbox() <- RemoveRoom{Code: res.Code}

	if got := getRoom(t, h, res.Code); got != nil {
		t.Fatalf("room should be gone after removal")
	}
}

func TestHub_RoomsAreIndependent(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())

	a := createRoom(t, h, "host-a")
	b := createRoom(t, h, "host-b")
	if a.Code == b.Code {
		t.Fatalf("two live rooms share a code: %q", a.Code)
	}

	h.Inbox() <- RemoveRoom{Code: a.Code}
	if got := getRoom(t, h, b.Code); got != b.Sess {
		t.Fatalf("removing one room must not touch another")
	}
}

// The session signals the hub when its last player leaves; the code must
// become free again.
func TestHub_EmptyRoomIsDeleted(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	res := createRoom(t, h, "host-1")

	out := make(chan session.Event, 8)
	joinReply := make(chan error, 1)
	res.Sess.Inbox() <- session.Join{ClientID: "host-1", Username: "alice", Outbox: out, Reply: joinReply}
	if err := <-joinReply; err != nil {
		t.Fatalf("join: %v", err)
	}

	leaveReply := make(chan bool, 1)
	res.Sess.Inbox() <- session.Leave{ClientID: "host-1", Reply: leaveReply}
	<-leaveReply

	deadline := time.After(time.Second)
	for {
		if got := getRoom(t, h, res.Code); got == nil {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("room was not deleted after its last player left")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestGenerateCode_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("want length %d, got %q", CodeLength, code)
		}
		for _, ch := range code {
			if !(ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9') {
				t.Fatalf("code %q contains %q", code, ch)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatalf("generator looks constant")
	}
}
