package gateway

import (
	"github.com/dkeye/beatroom/internal/core"
	"github.com/rs/zerolog/log"
)

// handleCreate makes a new room and puts the creator in it.
func (g *Gateway) handleCreate(sid core.SessionID, req Request) {
	room := g.Registry.Create()
	room.Sequence(func() {
		g.Transport.Subscribe(room.ID(), sid)
		if _, ok := g.Registry.Join(room.ID(), sid); !ok {
			g.Transport.Unsubscribe(room.ID(), sid)
			g.reply(sid, req, RoomStateReply{Success: false, Error: errRoomNotFound})
			return
		}
		log.Info().Str("module", "app.gateway").Str("sid", string(sid)).Str("room", string(room.ID())).Msg("room created")
		g.reply(sid, req, CreateRoomReply{Success: true, RoomID: room.ID(), RoomState: room.Snapshot()})
	})
}

func (g *Gateway) handleJoin(sid core.SessionID, req Request) {
	var p roomRequest
	if !decode(req, &p) {
		g.reply(sid, req, RoomStateReply{Success: false, Error: errBadPayload})
		return
	}
	room, ok := g.Registry.Get(p.RoomID)
	if !ok {
		g.Metrics.Reject(RoomNotFound.String())
		log.Warn().Str("module", "app.gateway").Str("sid", string(sid)).Str("room", string(p.RoomID)).Msg("join: room not found")
		g.reply(sid, req, RoomStateReply{Success: false, Error: errRoomNotFound})
		return
	}
	room.Sequence(func() {
		rejoin := room.HasMember(sid)
		g.Transport.Subscribe(room.ID(), sid)
		// Join re-checks existence so a sweep racing this join cannot win.
		if _, ok := g.Registry.Join(room.ID(), sid); !ok {
			g.Transport.Unsubscribe(room.ID(), sid)
			g.reply(sid, req, RoomStateReply{Success: false, Error: errRoomNotFound})
			return
		}
		log.Info().Str("module", "app.gateway").Str("sid", string(sid)).Str("room", string(room.ID())).Msg("join")
		state := room.Snapshot()
		g.reply(sid, req, RoomStateReply{Success: true, RoomState: &state})
		if rejoin {
			return
		}
		g.broadcast(room, sid, EventUserJoined, MembershipNotice{UserID: sid, UserCount: len(state.Users)})
	})
}

func (g *Gateway) handleLeave(sid core.SessionID, req Request) {
	var p roomRequest
	if !decode(req, &p) {
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	g.leave(sid, room)
}

func (g *Gateway) handleGetState(sid core.SessionID, req Request) {
	var p roomRequest
	if !decode(req, &p) {
		g.reply(sid, req, RoomStateReply{Success: false, Error: errBadPayload})
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		g.reply(sid, req, RoomStateReply{Success: false, Error: access.message()})
		return
	}
	state := room.Snapshot()
	g.reply(sid, req, RoomStateReply{Success: true, RoomState: &state})
}

// Disconnect removes sid from every room it is a member of and tells the
// remaining members.
func (g *Gateway) Disconnect(sid core.SessionID) {
	rooms := g.Registry.RoomsOf(sid)
	for _, room := range rooms {
		g.leave(sid, room)
	}
	log.Info().Str("module", "app.gateway").Str("sid", string(sid)).Int("rooms", len(rooms)).Msg("disconnect")
}

func (g *Gateway) leave(sid core.SessionID, room *core.Room) {
	room.Sequence(func() {
		room.RemoveMember(sid)
		g.Transport.Unsubscribe(room.ID(), sid)
		g.broadcast(room, sid, EventUserLeft, MembershipNotice{UserID: sid, UserCount: room.MemberCount()})
	})
}
