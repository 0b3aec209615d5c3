package core

import "github.com/dkeye/beatroom/internal/domain"

// SetTempo stores the clamped value and returns it.
func (r *Room) SetTempo(bpm int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tempo = domain.ClampTempo(bpm)
	r.touch()
	return r.tempo
}

// SetMeasureCount stores the clamped value and returns it.
func (r *Room) SetMeasureCount(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measureCount = domain.ClampMeasureCount(n)
	r.touch()
	return r.measureCount
}

// AddTrack appends t with an empty pattern. Track ids stay unique.
func (r *Room) AddTrack(t domain.Track) Result {
	if t.ID == "" {
		return ignored(ReasonEmptyTrackID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.trackIndex(t.ID) >= 0 {
		return ignored(ReasonDuplicateTrack)
	}
	r.tracks = append(r.tracks, t.Clone())
	r.pattern[t.ID] = make(map[int]domain.Note)
	r.touch()
	return applied()
}

// RemoveTrack drops the track together with its notes.
func (r *Room) RemoveTrack(trackID domain.TrackID) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.trackIndex(trackID)
	if i < 0 {
		return ignored(ReasonUnknownTrack)
	}
	r.tracks = append(r.tracks[:i], r.tracks[i+1:]...)
	delete(r.pattern, trackID)
	r.touch()
	return applied()
}

func (r *Room) UpdateTrackSound(trackID domain.TrackID, soundFile string) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.trackIndex(trackID)
	if i < 0 {
		return ignored(ReasonUnknownTrack)
	}
	r.tracks[i].SoundFile = soundFile
	r.touch()
	return applied()
}
