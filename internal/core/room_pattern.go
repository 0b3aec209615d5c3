package core

import "github.com/dkeye/beatroom/internal/domain"

// AddNote places a note at tick unless one is already there; an existing note
// keeps its velocity. An unknown track is created on the fly so an edit is
// never rejected only because the track was not announced yet.
func (r *Room) AddNote(trackID domain.TrackID, tick, velocity int) Result {
	if trackID == "" {
		return ignored(ReasonEmptyTrackID)
	}
	if tick < 0 {
		return ignored(ReasonNegativeTick)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	notes := r.notesFor(trackID)
	if _, ok := notes[tick]; ok {
		return ignored(ReasonTickOccupied)
	}
	notes[tick] = domain.Note{Tick: tick, Velocity: domain.ClampVelocity(velocity)}
	r.touch()
	return applied()
}

func (r *Room) RemoveNote(trackID domain.TrackID, tick int) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, ok := r.pattern[trackID]
	if !ok {
		return ignored(ReasonUnknownTrack)
	}
	if _, ok := notes[tick]; !ok {
		return ignored(ReasonNoNote)
	}
	delete(notes, tick)
	r.touch()
	return applied()
}

func (r *Room) UpdateNoteVelocity(trackID domain.TrackID, tick, velocity int) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, ok := r.pattern[trackID]
	if !ok {
		return ignored(ReasonUnknownTrack)
	}
	n, ok := notes[tick]
	if !ok {
		return ignored(ReasonNoNote)
	}
	n.Velocity = domain.ClampVelocity(velocity)
	notes[tick] = n
	r.touch()
	return applied()
}

// MoveNote relocates a note and keeps its velocity. Moving onto an occupied
// tick is refused so the note already there survives.
func (r *Room) MoveNote(trackID domain.TrackID, fromTick, toTick int) Result {
	if toTick < 0 {
		return ignored(ReasonNegativeTick)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, ok := r.pattern[trackID]
	if !ok {
		return ignored(ReasonUnknownTrack)
	}
	n, ok := notes[fromTick]
	if !ok {
		return ignored(ReasonNoNote)
	}
	if fromTick == toTick {
		return ignored(ReasonSameTick)
	}
	if _, taken := notes[toTick]; taken {
		return ignored(ReasonDestOccupied)
	}
	delete(notes, fromTick)
	n.Tick = toTick
	notes[toTick] = n
	r.touch()
	return applied()
}

func (r *Room) ClearTrack(trackID domain.TrackID) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pattern[trackID]; !ok {
		return ignored(ReasonUnknownTrack)
	}
	r.pattern[trackID] = make(map[int]domain.Note)
	r.touch()
	return applied()
}

// notesFor returns the pattern of trackID, creating the track and its pattern
// when missing. Caller holds r.mu.
func (r *Room) notesFor(trackID domain.TrackID) map[int]domain.Note {
	if r.trackIndex(trackID) < 0 {
		r.tracks = append(r.tracks, domain.Track{
			ID:              trackID,
			Name:            string(trackID),
			AvailableSounds: []string{},
		})
	}
	notes, ok := r.pattern[trackID]
	if !ok {
		notes = make(map[int]domain.Note)
		r.pattern[trackID] = notes
	}
	return notes
}
