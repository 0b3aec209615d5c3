package gateway

import (
	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/domain"
	"github.com/rs/zerolog/log"
)

type Access int

const (
	Granted Access = iota
	RoomNotFound
	NotMember
)

func (a Access) String() string {
	switch a {
	case Granted:
		return "granted"
	case RoomNotFound:
		return "room_not_found"
	case NotMember:
		return "not_member"
	}
	return "unknown"
}

func (a Access) message() string {
	if a == RoomNotFound {
		return errRoomNotFound
	}
	return errNotMember
}

// Authorize is the single membership gate in front of every room operation.
// The room is returned only when access is Granted.
func (g *Gateway) Authorize(sid core.SessionID, roomID domain.RoomID) (*core.Room, Access) {
	room, ok := g.Registry.Get(roomID)
	if !ok {
		return nil, RoomNotFound
	}
	if !room.HasMember(sid) {
		return nil, NotMember
	}
	return room, Granted
}

// authorized runs Authorize and records a refusal. Fire-and-forget callers
// just return on false.
func (g *Gateway) authorized(sid core.SessionID, roomID domain.RoomID, event string) (*core.Room, Access) {
	room, access := g.Authorize(sid, roomID)
	if access != Granted {
		g.Metrics.Reject(access.String())
		log.Warn().Str("module", "app.gateway").Str("sid", string(sid)).Str("room", string(roomID)).Str("type", event).Str("access", access.String()).Msg("request refused")
	}
	return room, access
}
