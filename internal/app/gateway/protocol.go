package gateway

import (
	"encoding/json"

	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/domain"
)

// Inbound events.
const (
	EventCreateRoom        = "create-room"
	EventJoinRoom          = "join-room"
	EventLeaveRoom         = "leave-room"
	EventPatternChange     = "pattern-change"
	EventTransportCommand  = "transport-command"
	EventSetBPM            = "set-bpm"
	EventSetMeasureCount   = "set-measure-count"
	EventAddTrack          = "add-track"
	EventRemoveTrack       = "remove-track"
	EventUpdateTrackSound  = "update-track-sound"
	EventEffectChainUpdate = "effect-chain-update"
	EventEffectReset       = "effect-reset"
	EventGetRoomState      = "get-room-state"
)

// Outbound events.
const (
	EventAck                = "ack"
	EventUserJoined         = "user-joined"
	EventUserLeft           = "user-left"
	EventPatternUpdate      = "pattern-update"
	EventTransportSync      = "transport-sync"
	EventBPMChange          = "bpm-change"
	EventMeasureCountChange = "measure-count-change"
	EventTrackAdded         = "track-added"
	EventTrackRemoved       = "track-removed"
	EventTrackSoundUpdated  = "track-sound-updated"
)

// Pattern change kinds.
const (
	ChangeAddNote            = "add-note"
	ChangeRemoveNote         = "remove-note"
	ChangeUpdateNoteVelocity = "update-note-velocity"
	ChangeMoveNote           = "move-note"
	ChangeClearTrack         = "clear-track"
)

const (
	errRoomNotFound = "Room not found"
	errNotMember    = "Not a member of this room"
	errBadPayload   = "bad_payload"
)

// Request is one decoded inbound frame. Ack is set by clients that expect a
// reply to a callback-style request.
type Request struct {
	Type    string          `json:"type"`
	Ack     string          `json:"ack,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is one outbound frame.
type Message struct {
	Type    string `json:"type"`
	Ack     string `json:"ack,omitempty"`
	Payload any    `json:"payload"`
}

type roomRequest struct {
	RoomID domain.RoomID `json:"roomId"`
}

type patternChangeRequest struct {
	RoomID domain.RoomID   `json:"roomId"`
	Change json.RawMessage `json:"change"`
}

// PatternChange is the edit descriptor. Receivers replay it as issued, so it
// is relayed in its original encoding.
type PatternChange struct {
	Type     string         `json:"type"`
	TrackID  domain.TrackID `json:"trackId"`
	Tick     *int           `json:"tick,omitempty"`
	FromTick *int           `json:"fromTick,omitempty"`
	ToTick   *int           `json:"toTick,omitempty"`
	Velocity *int           `json:"velocity,omitempty"`
}

type transportCommandRequest struct {
	RoomID  domain.RoomID   `json:"roomId"`
	Command json.RawMessage `json:"command"`
}

type setBPMRequest struct {
	RoomID domain.RoomID `json:"roomId"`
	BPM    *float64      `json:"bpm"`
}

type setMeasureCountRequest struct {
	RoomID       domain.RoomID `json:"roomId"`
	MeasureCount *float64      `json:"measureCount"`
}

type addTrackRequest struct {
	RoomID    domain.RoomID `json:"roomId"`
	TrackData domain.Track  `json:"trackData"`
}

type trackRequest struct {
	RoomID  domain.RoomID  `json:"roomId"`
	TrackID domain.TrackID `json:"trackId"`
}

type updateTrackSoundRequest struct {
	RoomID    domain.RoomID  `json:"roomId"`
	TrackID   domain.TrackID `json:"trackId"`
	SoundFile string         `json:"soundFile"`
}

// Replies.

type CreateRoomReply struct {
	Success   bool           `json:"success"`
	RoomID    domain.RoomID  `json:"roomId"`
	RoomState core.RoomState `json:"roomState"`
}

type RoomStateReply struct {
	Success   bool            `json:"success"`
	RoomState *core.RoomState `json:"roomState,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Broadcast payloads.

type MembershipNotice struct {
	UserID    core.SessionID `json:"userId"`
	UserCount int            `json:"userCount"`
}

type BPMChange struct {
	BPM       int     `json:"bpm"`
	Timestamp float64 `json:"timestamp"`
}

type MeasureCountChange struct {
	MeasureCount int     `json:"measureCount"`
	Timestamp    float64 `json:"timestamp"`
}

type TrackAdded struct {
	TrackData domain.Track `json:"trackData"`
	Timestamp float64      `json:"timestamp"`
}

type TrackRemoved struct {
	TrackID   domain.TrackID `json:"trackId"`
	Timestamp float64        `json:"timestamp"`
}

type TrackSoundUpdated struct {
	TrackID   domain.TrackID `json:"trackId"`
	SoundFile string         `json:"soundFile"`
	Timestamp float64        `json:"timestamp"`
}
