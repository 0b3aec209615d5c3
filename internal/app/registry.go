package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/domain"
	"github.com/dkeye/beatroom/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultGraceWindow = 5 * time.Minute

// Registry owns every Room. Rooms with no members are kept for the grace
// window so a reconnecting client finds its room again.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.Room

	grace   time.Duration
	now     func() time.Time
	newID   func() domain.RoomID
	metrics *metrics.Metrics
}

type RegistryOption func(*Registry)

func WithGraceWindow(d time.Duration) RegistryOption {
	return func(r *Registry) { r.grace = d }
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func WithIDGenerator(gen func() domain.RoomID) RegistryOption {
	return func(r *Registry) { r.newID = gen }
}

func WithMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms: make(map[domain.RoomID]*core.Room),
		grace: DefaultGraceWindow,
		now:   time.Now,
		newID: shortRoomID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func shortRoomID() domain.RoomID {
	return domain.RoomID(strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]))
}

// Create stores a fresh room under an unused id.
func (r *Registry) Create() *core.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID()
	for {
		if _, taken := r.rooms[id]; !taken {
			break
		}
		id = r.newID()
	}
	room := core.NewRoom(id, r.now)
	r.rooms[id] = room
	r.metrics.RoomCreated()
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	return room
}

// Get reports a missing room with ok=false; that is an expected outcome.
func (r *Registry) Get(id domain.RoomID) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Join adds sid to the room while holding the registry read lock, so a
// concurrent Sweep can never evict the room between lookup and insert.
func (r *Registry) Join(id domain.RoomID, sid core.SessionID) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	room.AddMember(sid)
	return room, true
}

// RoomsOf lists every room that has sid as a member.
func (r *Registry) RoomsOf(sid core.SessionID) []*core.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*core.Room
	for _, room := range r.rooms {
		if room.HasMember(sid) {
			out = append(out, room)
		}
	}
	return out
}

func (r *Registry) List() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Info())
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Sweep deletes rooms that have been empty for longer than the grace window
// and returns their ids. Rooms with members are never removed.
func (r *Registry) Sweep() []domain.RoomID {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	var evicted []domain.RoomID
	for id, room := range r.rooms {
		if room.Idle(now, r.grace) {
			delete(r.rooms, id)
			evicted = append(evicted, id)
			r.metrics.RoomEvicted()
			log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room evicted")
		}
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	log.Info().Str("module", "app.registry").Dur("interval", interval).Dur("grace", r.grace).Msg("eviction sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.registry").Msg("eviction sweeper stopped")
			return nil
		case <-t.C:
			if ids := r.Sweep(); len(ids) > 0 {
				log.Debug().Str("module", "app.registry").Int("evicted", len(ids)).Int("remaining", r.Len()).Msg("sweep done")
			}
		}
	}
}
