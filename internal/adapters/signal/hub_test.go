package signal

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/beatroom/internal/app/gateway"
	"github.com/dkeye/beatroom/internal/core"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestHubBroadcastSkipsSender(t *testing.T) {
	h := NewHub()
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Register("a", a)
	h.Register("b", b)
	h.Register("c", c)
	h.Subscribe("R1", "a")
	h.Subscribe("R1", "b")
	h.Subscribe("R2", "c")

	res := h.Broadcast("R1", "a", gateway.Message{Type: "bpm-change", Payload: map[string]int{"bpm": 90}})
	if res.SendTo != 1 || len(res.Dropped) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if a.count() != 0 {
		t.Error("sender received its own broadcast")
	}
	if c.count() != 0 {
		t.Error("broadcast leaked into another room")
	}
	if b.count() != 1 {
		t.Fatalf("b received %d frames, want 1", b.count())
	}

	var msg map[string]any
	if err := json.Unmarshal(b.frames[0], &msg); err != nil {
		t.Fatal(err)
	}
	if msg["type"] != "bpm-change" {
		t.Errorf("frame = %s", b.frames[0])
	}
}

func TestHubReportsDroppedSubscribers(t *testing.T) {
	h := NewHub()
	slow := &fakeConn{full: true}
	h.Register("a", &fakeConn{})
	h.Register("slow", slow)
	h.Subscribe("R", "a")
	h.Subscribe("R", "slow")

	res := h.Broadcast("R", "a", gateway.Message{Type: "x"})
	if res.SendTo != 0 || len(res.Dropped) != 1 || res.Dropped[0] != "slow" {
		t.Errorf("result = %+v", res)
	}
}

func TestHubSend(t *testing.T) {
	h := NewHub()
	a := &fakeConn{}
	h.Register("a", a)

	if err := h.Send("a", gateway.Message{Type: "ack", Ack: "1"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if a.count() != 1 {
		t.Errorf("frames = %d", a.count())
	}
	if err := h.Send("ghost", gateway.Message{Type: "ack"}); err != core.ErrConnectionClosed {
		t.Errorf("Send to unknown sid = %v", err)
	}
}

func TestHubUnregisterLeavesGroups(t *testing.T) {
	h := NewHub()
	h.Register("a", &fakeConn{})
	h.Register("b", &fakeConn{})
	h.Subscribe("R1", "a")
	h.Subscribe("R2", "a")
	h.Subscribe("R2", "b")

	h.Unregister("a")
	if h.ConnectionCount() != 1 {
		t.Errorf("connections = %d", h.ConnectionCount())
	}
	if h.Subscribers("R1") != 0 || h.Subscribers("R2") != 1 {
		t.Errorf("subscribers R1=%d R2=%d", h.Subscribers("R1"), h.Subscribers("R2"))
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	b := &fakeConn{}
	h.Register("b", b)
	h.Subscribe("R", "b")
	h.Unsubscribe("R", "b")
	h.Unsubscribe("missing", "b")

	h.Broadcast("R", "", gateway.Message{Type: "x"})
	if b.count() != 0 {
		t.Error("unsubscribed connection received a broadcast")
	}
}

func TestHubKickClosesConnection(t *testing.T) {
	h := NewHub()
	a := &fakeConn{}
	h.Register("a", a)
	h.Kick("a")
	h.Kick("ghost")
	if !a.closed {
		t.Error("Kick did not close the connection")
	}
}
