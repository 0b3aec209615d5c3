package domain

type RoomID string

const (
	MinTempo     = 60
	MaxTempo     = 300
	DefaultTempo = 120

	MinMeasureCount     = 1
	MaxMeasureCount     = 16
	DefaultMeasureCount = 1
)

// ClampTempo forces bpm into [MinTempo, MaxTempo].
func ClampTempo(bpm int) int {
	return clamp(bpm, MinTempo, MaxTempo)
}

// ClampMeasureCount forces n into [MinMeasureCount, MaxMeasureCount].
func ClampMeasureCount(n int) int {
	return clamp(n, MinMeasureCount, MaxMeasureCount)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
