package domain

import "testing"

func TestClampTempo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{10, 60},
		{59, 60},
		{60, 60},
		{120, 120},
		{300, 300},
		{301, 300},
		{500, 300},
		{-5, 60},
	}
	for _, tt := range tests {
		if got := ClampTempo(tt.in); got != tt.want {
			t.Errorf("ClampTempo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampMeasureCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{1, 1},
		{8, 8},
		{16, 16},
		{99, 16},
	}
	for _, tt := range tests {
		if got := ClampMeasureCount(tt.in); got != tt.want {
			t.Errorf("ClampMeasureCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestVelocityOrDefault(t *testing.T) {
	v := func(n int) *int { return &n }
	tests := []struct {
		name string
		in   *int
		want int
	}{
		{"missing", nil, DefaultVelocity},
		{"zero clamps up", v(0), 1},
		{"in range", v(2), 2},
		{"too loud", v(9), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VelocityOrDefault(tt.in); got != tt.want {
				t.Errorf("VelocityOrDefault = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrackCloneDoesNotShareSounds(t *testing.T) {
	orig := Track{ID: "kick", AvailableSounds: []string{"a.wav", "b.wav"}}
	c := orig.Clone()
	c.AvailableSounds[0] = "mutated.wav"
	if orig.AvailableSounds[0] != "a.wav" {
		t.Error("Clone shares AvailableSounds with the original")
	}

	empty := Track{ID: "x"}.Clone()
	if empty.AvailableSounds == nil {
		t.Error("Clone should normalize nil sounds to an empty list")
	}
}

func TestDefaultTracks(t *testing.T) {
	tracks := DefaultTracks()
	if len(tracks) != 4 {
		t.Fatalf("expected 4 default tracks, got %d", len(tracks))
	}
	seen := map[TrackID]bool{}
	for _, tr := range tracks {
		if seen[tr.ID] {
			t.Errorf("duplicate default track id %q", tr.ID)
		}
		seen[tr.ID] = true
		if tr.SoundFile == "" {
			t.Errorf("track %q has no sound file", tr.ID)
		}
	}
	if !seen["kick"] {
		t.Error("default kit must contain kick")
	}
}
