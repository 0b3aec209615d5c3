// Package gateway is the per-connection protocol handler. It authorizes each
// request against room membership, applies it to the room and relays the
// derived message to the other members.
package gateway

import (
	"encoding/json"
	"time"

	"github.com/dkeye/beatroom/internal/app"
	"github.com/dkeye/beatroom/internal/core"
	"github.com/dkeye/beatroom/internal/domain"
	"github.com/dkeye/beatroom/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Transport delivers messages to connections and groups connections by room.
type Transport interface {
	Subscribe(room domain.RoomID, sid core.SessionID)
	Unsubscribe(room domain.RoomID, sid core.SessionID)
	Send(sid core.SessionID, msg Message) error
	// Broadcast sends msg to every subscriber of room except the given one.
	Broadcast(room domain.RoomID, except core.SessionID, msg Message) core.PublishResult
	Kick(sid core.SessionID)
}

type Gateway struct {
	Registry  *app.Registry
	Transport Transport
	Policy    app.Policy
	Metrics   *metrics.Metrics

	now func() time.Time
}

func New(reg *app.Registry, tr Transport, policy app.Policy, m *metrics.Metrics) *Gateway {
	return &Gateway{
		Registry:  reg,
		Transport: tr,
		Policy:    policy,
		Metrics:   m,
		now:       time.Now,
	}
}

// Handle dispatches one inbound request from sid.
func (g *Gateway) Handle(sid core.SessionID, req Request) {
	g.Metrics.Message(req.Type)

	switch req.Type {
	case EventCreateRoom:
		g.handleCreate(sid, req)
	case EventJoinRoom:
		g.handleJoin(sid, req)
	case EventLeaveRoom:
		g.handleLeave(sid, req)
	case EventGetRoomState:
		g.handleGetState(sid, req)
	case EventPatternChange:
		g.handlePatternChange(sid, req)
	case EventTransportCommand:
		g.handleTransportCommand(sid, req)
	case EventSetBPM:
		g.handleSetBPM(sid, req)
	case EventSetMeasureCount:
		g.handleSetMeasureCount(sid, req)
	case EventAddTrack:
		g.handleAddTrack(sid, req)
	case EventRemoveTrack:
		g.handleRemoveTrack(sid, req)
	case EventUpdateTrackSound:
		g.handleUpdateTrackSound(sid, req)
	case EventEffectChainUpdate, EventEffectReset:
		g.handleEffect(sid, req)
	default:
		g.Metrics.Reject("unknown_event")
		log.Warn().Str("module", "app.gateway").Str("sid", string(sid)).Str("type", req.Type).Msg("unknown event")
	}
}

// reply answers a callback-style request.
func (g *Gateway) reply(sid core.SessionID, req Request, payload any) {
	msg := Message{Type: req.Type, Payload: payload}
	if req.Ack != "" {
		msg = Message{Type: EventAck, Ack: req.Ack, Payload: payload}
	}
	if err := g.Transport.Send(sid, msg); err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("sid", string(sid)).Str("type", req.Type).Msg("reply failed")
	}
}

// broadcast relays to every member of room except sid and applies the
// back-pressure policy to members that could not keep up.
func (g *Gateway) broadcast(room *core.Room, sid core.SessionID, event string, payload any) {
	res := g.Transport.Broadcast(room.ID(), sid, Message{Type: event, Payload: payload})
	log.Debug().Str("module", "app.gateway").Str("room", string(room.ID())).Str("from", string(sid)).Str("type", event).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast")
	g.Metrics.Dropped(len(res.Dropped))
	if g.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch g.Policy.OnBackPressure(room.ID(), slow) {
		case app.KickMember:
			log.Warn().Str("module", "app.gateway").Str("room", string(room.ID())).Str("sid", string(slow)).Msg("kicking slow member")
			g.Transport.Kick(slow)
		case app.DropFrame, app.NoAction:
		}
	}
}

// timestamp is the server clock in fractional milliseconds since the epoch.
func (g *Gateway) timestamp() float64 {
	return float64(g.now().UnixNano()) / float64(time.Millisecond)
}

func (g *Gateway) logIgnored(sid core.SessionID, room *core.Room, op string, res core.Result) {
	if res.Applied {
		return
	}
	log.Debug().Str("module", "app.gateway").Str("room", string(room.ID())).Str("sid", string(sid)).Str("op", op).Str("reason", res.Reason).Msg("mutation ignored")
}

// dropMalformed records a request missing a field its handler needs.
func (g *Gateway) dropMalformed(sid core.SessionID, event, field string) {
	g.Metrics.Reject("bad_payload")
	log.Warn().Str("module", "app.gateway").Str("sid", string(sid)).Str("type", event).Str("missing", field).Msg("malformed request dropped")
}

func decode(req Request, v any) bool {
	if len(req.Payload) == 0 {
		return false
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("type", req.Type).Msg("bad payload")
		return false
	}
	return true
}
