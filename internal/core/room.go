package core

import (
	"sort"
	"sync"
	"time"

	"github.com/dkeye/beatroom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Room is a threadsafe in-memory sequencer. It owns the musical state and the
// membership set but never touches transport resources.
//
// Invariant: every track in tracks has an entry in pattern and vice versa.
type Room struct {
	id  domain.RoomID
	now func() time.Time

	// seq serializes mutate-then-broadcast sequences so members observe
	// edits in the order they were applied.
	seq sync.Mutex

	mu           sync.RWMutex
	tempo        int
	measureCount int
	tracks       []domain.Track
	pattern      map[domain.TrackID]map[int]domain.Note
	members      map[SessionID]uint64
	joinSeq      uint64
	lastActivity time.Time
}

// RoomState is a point-in-time copy of a Room, safe to marshal and share.
type RoomState struct {
	ID           domain.RoomID                    `json:"id"`
	BPM          int                              `json:"bpm"`
	MeasureCount int                              `json:"measureCount"`
	Pattern      map[domain.TrackID][]domain.Note `json:"pattern"`
	Tracks       []domain.Track                   `json:"tracks"`
	Users        []SessionID                      `json:"users"`
}

type RoomInfo struct {
	ID             domain.RoomID `json:"id"`
	UserCount      int           `json:"userCount"`
	LastActivityAt time.Time     `json:"lastActivityAt"`
}

// NewRoom builds a room with the default kit, tempo and measure count.
// now may be nil, in which case time.Now is used.
func NewRoom(id domain.RoomID, now func() time.Time) *Room {
	if now == nil {
		now = time.Now
	}
	r := &Room{
		id:           id,
		now:          now,
		tempo:        domain.DefaultTempo,
		measureCount: domain.DefaultMeasureCount,
		pattern:      make(map[domain.TrackID]map[int]domain.Note),
		members:      make(map[SessionID]uint64),
	}
	for _, t := range domain.DefaultTracks() {
		r.tracks = append(r.tracks, t)
		r.pattern[t.ID] = make(map[int]domain.Note)
	}
	r.lastActivity = now()
	return r
}

func (r *Room) ID() domain.RoomID { return r.id }

// Sequence runs fn while holding the room's ordering lock. Callers put a
// mutation and the broadcast derived from it inside one Sequence call.
func (r *Room) Sequence(fn func()) {
	r.seq.Lock()
	defer r.seq.Unlock()
	fn()
}

func (r *Room) touch() { r.lastActivity = r.now() }

func (r *Room) AddMember(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		r.joinSeq++
		r.members[sid] = r.joinSeq
	}
	r.touch()
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("sid", string(sid)).Int("members", len(r.members)).Msg("member added")
}

// RemoveMember never deletes the room; eviction is the registry's job.
func (r *Room) RemoveMember(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, sid)
	r.touch()
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("sid", string(sid)).Int("members", len(r.members)).Msg("member removed")
}

func (r *Room) HasMember(sid SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[sid]
	return ok
}

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Room) LastActivity() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActivity
}

// Idle reports whether the room has no members and has seen no activity for
// longer than grace. Both fields are read under one lock.
func (r *Room) Idle(now time.Time, grace time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members) == 0 && now.Sub(r.lastActivity) > grace
}

func (r *Room) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RoomInfo{ID: r.id, UserCount: len(r.members), LastActivityAt: r.lastActivity}
}

func (r *Room) Tempo() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tempo
}

func (r *Room) MeasureCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.measureCount
}

// Snapshot is a pure read. Notes are ordered by tick and users by join order.
func (r *Room) Snapshot() RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := RoomState{
		ID:           r.id,
		BPM:          r.tempo,
		MeasureCount: r.measureCount,
		Pattern:      make(map[domain.TrackID][]domain.Note, len(r.pattern)),
		Tracks:       make([]domain.Track, 0, len(r.tracks)),
		Users:        make([]SessionID, 0, len(r.members)),
	}
	for _, t := range r.tracks {
		st.Tracks = append(st.Tracks, t.Clone())
	}
	for id, notes := range r.pattern {
		list := make([]domain.Note, 0, len(notes))
		for _, n := range notes {
			list = append(list, n)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Tick < list[j].Tick })
		st.Pattern[id] = list
	}
	for sid := range r.members {
		st.Users = append(st.Users, sid)
	}
	sort.Slice(st.Users, func(i, j int) bool { return r.members[st.Users[i]] < r.members[st.Users[j]] })
	return st
}

func (r *Room) trackIndex(id domain.TrackID) int {
	for i, t := range r.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
