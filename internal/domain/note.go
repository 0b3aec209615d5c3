package domain

const (
	MinVelocity     = 1
	MaxVelocity     = 4
	DefaultVelocity = MaxVelocity
)

// Note is a single hit on a track. Tick is unique within its track.
type Note struct {
	Tick     int `json:"tick"`
	Velocity int `json:"velocity"`
}

func ClampVelocity(v int) int {
	return clamp(v, MinVelocity, MaxVelocity)
}

// VelocityOrDefault resolves an optional wire velocity. A missing value means
// DefaultVelocity; anything present is clamped.
func VelocityOrDefault(v *int) int {
	if v == nil {
		return DefaultVelocity
	}
	return ClampVelocity(*v)
}
