package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/beatroom/internal/adapters/signal"
	"github.com/dkeye/beatroom/internal/app"
	"github.com/dkeye/beatroom/internal/app/gateway"
	"github.com/dkeye/beatroom/internal/config"
	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

type frame struct {
	Type    string          `json:"type"`
	Ack     string          `json:"ack"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *app.Registry) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	rooms := app.NewRegistry(app.WithMetrics(m))
	hub := signal.NewHub()
	gw := gateway.New(rooms, hub, app.SimplePolicy{}, m)
	ctl := signal.NewSignalWSController(gw, hub, signal.NewRateLimiter(0, time.Second), m, signal.Options{})

	cfg := &config.Config{Mode: "test", StaticPath: t.TempDir(), Secret: "test-secret"}
	srv := httptest.NewServer(SetupRouter(ctx, cfg, Deps{Registry: rooms, Signal: ctl, Gatherer: reg}))
	t.Cleanup(srv.Close)
	return srv, rooms
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ, ack string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ, "payload": payload}
	if ack != "" {
		msg["ack"] = ack
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestCollaborativeSession(t *testing.T) {
	srv, _ := newTestServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, gateway.EventCreateRoom, "1", nil)
	created := read(t, a)
	if created.Type != gateway.EventAck || created.Ack != "1" {
		t.Fatalf("create reply = %+v", created)
	}
	var cr gateway.CreateRoomReply
	if err := json.Unmarshal(created.Payload, &cr); err != nil || !cr.Success {
		t.Fatalf("create payload %s: %v", created.Payload, err)
	}

	send(t, b, gateway.EventJoinRoom, "2", map[string]any{"roomId": cr.RoomID})
	joined := read(t, b)
	var jr struct {
		Success   bool           `json:"success"`
		RoomState core.RoomState `json:"roomState"`
	}
	if err := json.Unmarshal(joined.Payload, &jr); err != nil || !jr.Success {
		t.Fatalf("join payload %s: %v", joined.Payload, err)
	}
	if jr.RoomState.BPM != cr.RoomState.BPM || jr.RoomState.MeasureCount != cr.RoomState.MeasureCount || len(jr.RoomState.Tracks) != len(cr.RoomState.Tracks) {
		t.Errorf("joiner state differs from creator state: %+v vs %+v", jr.RoomState, cr.RoomState)
	}
	if len(jr.RoomState.Users) != 2 {
		t.Errorf("users = %v", jr.RoomState.Users)
	}

	if notice := read(t, a); notice.Type != gateway.EventUserJoined {
		t.Fatalf("creator got %s, want user-joined", notice.Type)
	}

	send(t, a, gateway.EventPatternChange, "", map[string]any{
		"roomId": cr.RoomID,
		"change": map[string]any{"type": "add-note", "trackId": "kick", "tick": 0, "velocity": 4},
	})
	update := read(t, b)
	if update.Type != gateway.EventPatternUpdate {
		t.Fatalf("b got %s, want pattern-update", update.Type)
	}
	var change map[string]any
	if err := json.Unmarshal(update.Payload, &change); err != nil {
		t.Fatal(err)
	}
	if change["type"] != "add-note" || change["trackId"] != "kick" {
		t.Errorf("relayed change = %v", change)
	}

	// The sender does not get its own edit back; the next frame it sees is
	// the pong.
	send(t, a, "ping", "", nil)
	if f := read(t, a); f.Type != "pong" {
		t.Fatalf("a got %s, want pong", f.Type)
	}

	send(t, a, gateway.EventGetRoomState, "3", map[string]any{"roomId": cr.RoomID})
	state := read(t, a)
	var sr struct {
		Success   bool           `json:"success"`
		RoomState core.RoomState `json:"roomState"`
	}
	if err := json.Unmarshal(state.Payload, &sr); err != nil || !sr.Success {
		t.Fatalf("state payload %s: %v", state.Payload, err)
	}
	kick := sr.RoomState.Pattern["kick"]
	if len(kick) != 1 || kick[0].Tick != 0 || kick[0].Velocity != 4 {
		t.Errorf("kick = %v", kick)
	}
}

func TestDisconnectNotifiesRoom(t *testing.T) {
	srv, rooms := newTestServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, gateway.EventCreateRoom, "1", nil)
	var cr gateway.CreateRoomReply
	if err := json.Unmarshal(read(t, a).Payload, &cr); err != nil {
		t.Fatal(err)
	}
	send(t, b, gateway.EventJoinRoom, "2", map[string]any{"roomId": cr.RoomID})
	read(t, b)
	read(t, a)

	b.Close()
	left := read(t, a)
	if left.Type != gateway.EventUserLeft {
		t.Fatalf("a got %s, want user-left", left.Type)
	}
	room, ok := rooms.Get(cr.RoomID)
	if !ok {
		t.Fatal("room removed on disconnect")
	}
	if room.MemberCount() != 1 {
		t.Errorf("members = %d", room.MemberCount())
	}
}

func TestRoomsAPI(t *testing.T) {
	srv, rooms := newTestServer(t)
	room := rooms.Create()

	resp, err := http.Get(srv.URL + "/api/rooms")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Rooms) != 1 || list.Rooms[0].ID != room.ID() {
		t.Errorf("rooms = %+v", list.Rooms)
	}

	resp2, err := http.Get(srv.URL + "/api/rooms/" + string(room.ID()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp2.StatusCode)
	}
	var state core.RoomState
	if err := json.NewDecoder(resp2.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.ID != room.ID() || state.BPM != 120 {
		t.Errorf("state = %+v", state)
	}
}

func TestRoomNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/rooms/NOPE")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Config.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Config.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sequencer_rooms_created_total") {
		t.Errorf("metrics missing room counters: %d", rec.Code)
	}
}

func TestClientTokenCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	found := false
	for _, c := range resp.Cookies() {
		if c.Name == "BeatroomSessions" {
			found = true
		}
	}
	if !found {
		t.Error("session cookie not set")
	}
}
