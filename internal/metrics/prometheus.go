// Package metrics exposes Prometheus instruments for the room server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RoomsActive       prometheus.Gauge
	RoomsCreated      prometheus.Counter
	RoomsEvicted      prometheus.Counter
	ConnectionsActive prometheus.Gauge
	Messages          *prometheus.CounterVec
	Rejected          *prometheus.CounterVec
	BroadcastDropped  prometheus.Counter
}

// New creates and registers all metrics against reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RoomsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "sequencer_rooms_active",
			Help: "Number of rooms held by the registry",
		}),
		RoomsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "sequencer_rooms_created_total",
			Help: "Total number of rooms created",
		}),
		RoomsEvicted: f.NewCounter(prometheus.CounterOpts{
			Name: "sequencer_rooms_evicted_total",
			Help: "Total number of idle rooms removed by the sweeper",
		}),
		ConnectionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "sequencer_connections_active",
			Help: "Number of open websocket connections",
		}),
		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sequencer_messages_total",
			Help: "Inbound messages by event type",
		}, []string{"type"}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sequencer_messages_rejected_total",
			Help: "Inbound messages dropped before reaching a room, by reason",
		}, []string{"reason"}),
		BroadcastDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "sequencer_broadcast_dropped_total",
			Help: "Broadcast frames that could not be queued for a member",
		}),
	}
}

func (m *Metrics) RoomCreated() {
	if m == nil {
		return
	}
	m.RoomsCreated.Inc()
	m.RoomsActive.Inc()
}

func (m *Metrics) RoomEvicted() {
	if m == nil {
		return
	}
	m.RoomsEvicted.Inc()
	m.RoomsActive.Dec()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

func (m *Metrics) Message(msgType string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(msgType).Inc()
}

func (m *Metrics) Reject(reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Dropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.BroadcastDropped.Add(float64(n))
}
