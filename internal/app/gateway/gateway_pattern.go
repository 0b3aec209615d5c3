package gateway

import (
	"encoding/json"

	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/domain"
	"github.com/rs/zerolog/log"
)

func (g *Gateway) handlePatternChange(sid core.SessionID, req Request) {
	var p patternChangeRequest
	if !decode(req, &p) {
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	var change PatternChange
	if err := json.Unmarshal(p.Change, &change); err != nil {
		g.Metrics.Reject("bad_change")
		log.Error().Err(err).Str("module", "app.gateway").Str("sid", string(sid)).Msg("bad pattern change")
		return
	}

	room.Sequence(func() {
		res, ok := applyChange(room, change)
		if !ok {
			g.Metrics.Reject("bad_change")
			log.Warn().Str("module", "app.gateway").Str("sid", string(sid)).Str("room", string(room.ID())).Str("change", change.Type).Msg("unrecognized pattern change dropped")
			return
		}
		g.logIgnored(sid, room, change.Type, res)
		g.broadcast(room, sid, EventPatternUpdate, p.Change)
	})
}

// applyChange maps a descriptor onto the room. ok is false for unknown change
// types and for descriptors missing a field their type needs; those are not
// relayed because receivers could not replay them either.
func applyChange(room *core.Room, c PatternChange) (core.Result, bool) {
	switch c.Type {
	case ChangeAddNote:
		if c.Tick == nil {
			return core.Result{}, false
		}
		return room.AddNote(c.TrackID, *c.Tick, domain.VelocityOrDefault(c.Velocity)), true
	case ChangeRemoveNote:
		if c.Tick == nil {
			return core.Result{}, false
		}
		return room.RemoveNote(c.TrackID, *c.Tick), true
	case ChangeUpdateNoteVelocity:
		if c.Tick == nil || c.Velocity == nil {
			return core.Result{}, false
		}
		return room.UpdateNoteVelocity(c.TrackID, *c.Tick, *c.Velocity), true
	case ChangeMoveNote:
		if c.FromTick == nil || c.ToTick == nil {
			return core.Result{}, false
		}
		return room.MoveNote(c.TrackID, *c.FromTick, *c.ToTick), true
	case ChangeClearTrack:
		return room.ClearTrack(c.TrackID), true
	}
	return core.Result{}, false
}
