package signal

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dkeye/beatroom/internal/app/gateway"
	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Hub tracks live connections and which room groups they subscribe to.
// It implements gateway.Transport.
type Hub struct {
	mu     sync.RWMutex
	conns  map[core.SessionID]core.SignalConnection
	groups map[domain.RoomID]map[core.SessionID]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[core.SessionID]core.SignalConnection),
		groups: make(map[domain.RoomID]map[core.SessionID]struct{}),
	}
}

func (h *Hub) Register(sid core.SessionID, conn core.SignalConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[sid] = conn
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int("connections", len(h.conns)).Msg("connection registered")
}

// Unregister forgets sid and drops it from every group.
func (h *Hub) Unregister(sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, sid)
	for room, members := range h.groups {
		delete(members, sid)
		if len(members) == 0 {
			delete(h.groups, room)
		}
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Int("connections", len(h.conns)).Msg("connection unregistered")
}

func (h *Hub) Subscribe(room domain.RoomID, sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		members = make(map[core.SessionID]struct{})
		h.groups[room] = members
	}
	members[sid] = struct{}{}
}

func (h *Hub) Unsubscribe(room domain.RoomID, sid core.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}

func (h *Hub) Send(sid core.SessionID, msg gateway.Message) error {
	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Type, err)
	}
	h.mu.RLock()
	conn, ok := h.conns[sid]
	h.mu.RUnlock()
	if !ok {
		return core.ErrConnectionClosed
	}
	return conn.TrySend(frame)
}

// Broadcast encodes msg once and queues it for every subscriber of room but
// except. Members whose queue is full are reported in Dropped.
func (h *Hub) Broadcast(room domain.RoomID, except core.SessionID, msg gateway.Message) core.PublishResult {
	res := core.PublishResult{}
	frame, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", msg.Type).Msg("broadcast marshal")
		return res
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sid := range h.groups[room] {
		if sid == except {
			continue
		}
		conn, ok := h.conns[sid]
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SendTo++
	}
	return res
}

// Kick closes the connection; its read loop then runs disconnect cleanup.
func (h *Hub) Kick(sid core.SessionID) {
	h.mu.RLock()
	conn, ok := h.conns[sid]
	h.mu.RUnlock()
	if ok {
		conn.Close()
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) Subscribers(room domain.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[room])
}
