// Package domain holds the sequencer value types and the range rules that
// apply to them: tempo, measure count and note velocity bounds.
package domain

type TrackID string

// Track is client supplied metadata. Sound paths are relayed as-is, the
// server never checks them against real assets.
type Track struct {
	ID              TrackID  `json:"id"`
	Name            string   `json:"name"`
	Color           string   `json:"color"`
	SoundFile       string   `json:"soundFile"`
	AvailableSounds []string `json:"availableSounds"`
}

// Clone returns a copy that shares no slices with t.
func (t Track) Clone() Track {
	c := t
	c.AvailableSounds = append([]string(nil), t.AvailableSounds...)
	if c.AvailableSounds == nil {
		c.AvailableSounds = []string{}
	}
	return c
}

// DefaultTracks is the kit every new room starts with.
func DefaultTracks() []Track {
	return []Track{
		{
			ID:              "kick",
			Name:            "Kick",
			Color:           "#e74c3c",
			SoundFile:       "/sounds/kick/kick-808.wav",
			AvailableSounds: []string{"/sounds/kick/kick-808.wav", "/sounds/kick/kick-909.wav", "/sounds/kick/kick-acoustic.wav"},
		},
		{
			ID:              "snare",
			Name:            "Snare",
			Color:           "#3498db",
			SoundFile:       "/sounds/snare/snare-808.wav",
			AvailableSounds: []string{"/sounds/snare/snare-808.wav", "/sounds/snare/snare-909.wav", "/sounds/snare/snare-rim.wav"},
		},
		{
			ID:              "hihat",
			Name:            "Hi-Hat",
			Color:           "#f1c40f",
			SoundFile:       "/sounds/hihat/hihat-closed.wav",
			AvailableSounds: []string{"/sounds/hihat/hihat-closed.wav", "/sounds/hihat/hihat-open.wav"},
		},
		{
			ID:              "clap",
			Name:            "Clap",
			Color:           "#2ecc71",
			SoundFile:       "/sounds/clap/clap-808.wav",
			AvailableSounds: []string{"/sounds/clap/clap-808.wav", "/sounds/clap/clap-909.wav"},
		},
	}
}
