// Package metrics declares the Prometheus instruments for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"pianoworks/shantyman/pkg/monitoring"
)

// Metrics holds all Prometheus metrics for the relay hub.
type Metrics struct {
	// Connections tracks live WebSocket connections.
	Connections prometheus.Gauge

	// Channels tracks live channels by kind (special, normal).
	Channels *prometheus.GaugeVec

	// MessagesIn counts inbound protocol frames by verb.
	MessagesIn *prometheus.CounterVec

	// MessagesOut counts outbound wire messages enqueued per recipient.
	MessagesOut prometheus.Counter

	// NoteBatches counts note frames by outcome (relayed, denied, blocked).
	NoteBatches *prometheus.CounterVec

	// BroadcastFanout observes recipients per broadcast.
	BroadcastFanout prometheus.Observer

	// SlowConsumers counts connections dropped over full outbound queues.
	SlowConsumers prometheus.Counter
}

// New creates and registers the hub metrics under the service's collector.
func New(mc *monitoring.MetricsCollector) *Metrics {
	return &Metrics{
		Connections: mc.NewGauge("ws_connections", "Live WebSocket connections", nil).WithLabelValues(),
		Channels:    mc.NewGauge("channels", "Live channels by kind", []string{"kind"}),
		MessagesIn:  mc.NewCounter("messages_in_total", "Inbound protocol frames by verb", []string{"verb"}),
		MessagesOut: mc.NewCounter("messages_out_total", "Outbound wire messages enqueued", nil).WithLabelValues(),
		NoteBatches: mc.NewCounter("note_batches_total", "Note frames by outcome", []string{"outcome"}),
		BroadcastFanout: mc.NewHistogram("broadcast_fanout", "Recipients per broadcast", nil,
			[]float64{0, 1, 2, 5, 10, 20, 50}).WithLabelValues(),
		SlowConsumers: mc.NewCounter("slow_consumers_total", "Connections dropped over full outbound queues", nil).WithLabelValues(),
	}
}

// NewNop creates unregistered metrics for tests, sidestepping duplicate
// registration on the default registry.
func NewNop() *Metrics {
	return &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{Name: "nop_ws_connections"}),
		Channels:    prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "nop_channels"}, []string{"kind"}),
		MessagesIn:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "nop_messages_in_total"}, []string{"verb"}),
		MessagesOut: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_messages_out_total"}),
		NoteBatches: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "nop_note_batches_total"}, []string{"outcome"}),
		BroadcastFanout: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nop_broadcast_fanout",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		SlowConsumers: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_slow_consumers_total"}),
	}
}

// Outcome labels for NoteBatches.
const (
	OutcomeRelayed = "relayed"
	OutcomeDenied  = "denied"
	OutcomeBlocked = "blocked"
)

// Kind labels for Channels.
const (
	KindSpecial = "special"
	KindNormal  = "normal"
)
