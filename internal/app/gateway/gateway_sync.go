package gateway

import (
	"encoding/json"
	"math"

	"github.com/dkeye/beatroom/internal/core"
)

// handleTransportCommand relays play/stop and friends. Transport is not room
// state; the server only stamps the command with its clock.
func (g *Gateway) handleTransportCommand(sid core.SessionID, req Request) {
	var p transportCommandRequest
	if !decode(req, &p) {
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	room.Sequence(func() {
		g.broadcast(room, sid, EventTransportSync, stamp(p.Command, "command", g.timestamp()))
	})
}

func (g *Gateway) handleSetBPM(sid core.SessionID, req Request) {
	var p setBPMRequest
	if !decode(req, &p) {
		return
	}
	if p.BPM == nil {
		g.dropMalformed(sid, req.Type, "bpm")
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	room.Sequence(func() {
		bpm := room.SetTempo(roundInt(*p.BPM))
		g.broadcast(room, sid, EventBPMChange, BPMChange{BPM: bpm, Timestamp: g.timestamp()})
	})
}

func (g *Gateway) handleSetMeasureCount(sid core.SessionID, req Request) {
	var p setMeasureCountRequest
	if !decode(req, &p) {
		return
	}
	if p.MeasureCount == nil {
		g.dropMalformed(sid, req.Type, "measureCount")
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	room.Sequence(func() {
		n := room.SetMeasureCount(roundInt(*p.MeasureCount))
		g.broadcast(room, sid, EventMeasureCountChange, MeasureCountChange{MeasureCount: n, Timestamp: g.timestamp()})
	})
}

func (g *Gateway) handleAddTrack(sid core.SessionID, req Request) {
	var p addTrackRequest
	if !decode(req, &p) {
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	// Peers append whatever they receive, so a refused track is not relayed.
	room.Sequence(func() {
		res := room.AddTrack(p.TrackData)
		if !res.Applied {
			g.logIgnored(sid, room, req.Type, res)
			return
		}
		g.broadcast(room, sid, EventTrackAdded, TrackAdded{TrackData: p.TrackData.Clone(), Timestamp: g.timestamp()})
	})
}

func (g *Gateway) handleRemoveTrack(sid core.SessionID, req Request) {
	var p trackRequest
	if !decode(req, &p) {
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	room.Sequence(func() {
		g.logIgnored(sid, room, req.Type, room.RemoveTrack(p.TrackID))
		g.broadcast(room, sid, EventTrackRemoved, TrackRemoved{TrackID: p.TrackID, Timestamp: g.timestamp()})
	})
}

func (g *Gateway) handleUpdateTrackSound(sid core.SessionID, req Request) {
	var p updateTrackSoundRequest
	if !decode(req, &p) {
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	room.Sequence(func() {
		g.logIgnored(sid, room, req.Type, room.UpdateTrackSound(p.TrackID, p.SoundFile))
		g.broadcast(room, sid, EventTrackSoundUpdated, TrackSoundUpdated{TrackID: p.TrackID, SoundFile: p.SoundFile, Timestamp: g.timestamp()})
	})
}

// handleEffect relays effect-chain-update and effect-reset untouched. Effects
// are presentation only and never stored.
func (g *Gateway) handleEffect(sid core.SessionID, req Request) {
	var p roomRequest
	if !decode(req, &p) {
		return
	}
	room, access := g.authorized(sid, p.RoomID, req.Type)
	if access != Granted {
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(req.Payload, &fields); err != nil {
		return
	}
	delete(fields, "roomId")
	room.Sequence(func() {
		g.broadcast(room, sid, req.Type, stampFields(fields, g.timestamp()))
	})
}

// stamp adds a timestamp to a JSON object. Anything that is not an object is
// wrapped under key.
func stamp(raw json.RawMessage, key string, ts float64) any {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil && fields != nil {
		return stampFields(fields, ts)
	}
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return map[string]any{key: raw, "timestamp": ts}
}

func stampFields(fields map[string]json.RawMessage, ts float64) map[string]json.RawMessage {
	b, _ := json.Marshal(ts)
	fields["timestamp"] = b
	return fields
}

// roundInt converts a JSON number to int, saturating far outside any range
// the room accepts.
func roundInt(f float64) int {
	const limit = 1 << 30
	switch {
	case f > limit:
		return limit
	case f < -limit:
		return -limit
	}
	return int(math.Round(f))
}
