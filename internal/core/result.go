package core

// Result tells the caller whether a Room mutation changed state. Ignored
// mutations are not errors; Reason says why nothing happened.
type Result struct {
	Applied bool
	Reason  string
}

const (
	ReasonUnknownTrack   = "unknown track"
	ReasonDuplicateTrack = "duplicate track"
	ReasonNoNote         = "no note at tick"
	ReasonTickOccupied   = "tick occupied"
	ReasonDestOccupied   = "destination occupied"
	ReasonSameTick       = "same tick"
	ReasonNegativeTick   = "negative tick"
	ReasonEmptyTrackID   = "empty track id"
)

func applied() Result { return Result{Applied: true} }

func ignored(reason string) Result { return Result{Reason: reason} }
