// Package metrics provides Prometheus metrics for go-analysis-console.
//
// The console is a consumer, so the metrics describe stream health rather
// than inference quality: event throughput through the throttle gate,
// connection lifecycle, and poll reliability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Abhinav2896/go-analysis-console/internal/stream"
)

// --- Stream throughput ---
var (
	eventsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_events_received_total",
			Help: "Raw push-channel messages received",
		},
	)

	eventsThrottledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_events_throttled_total",
			Help: "Messages discarded by the throttle gate",
		},
	)

	eventsMalformedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_events_malformed_total",
			Help: "Messages discarded as unparseable or ill-typed",
		},
	)
)

// --- Connection lifecycle ---
var (
	connectionState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_connection_state",
			Help: "Push channel state (0=disconnected, 1=connected, 2=processing)",
		},
	)

	reconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_reconnects_total",
			Help: "Successful push-channel opens",
		},
	)
)

// --- Polls ---
var (
	pollFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_poll_failures_total",
			Help: "Supplementary poll failures by endpoint",
		},
		[]string{"poll"},
	)
)

// --- Display state ---
var (
	stressIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_stress_index",
			Help: "Most recent stress index pushed to the timeline",
		},
	)

	visibleAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_visible_alerts",
			Help: "Alerts currently visible in the dashboard",
		},
	)
)

// Register registers all console metrics with the given registry.
// Call once at startup; nil registers with the default registry.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		eventsReceivedTotal,
		eventsThrottledTotal,
		eventsMalformedTotal,
		connectionState,
		reconnectsTotal,
		pollFailuresTotal,
		stressIndex,
		visibleAlerts,
	)
}

// EventReceived counts one raw inbound message.
func EventReceived() { eventsReceivedTotal.Inc() }

// EventThrottled counts one message discarded by the throttle gate.
func EventThrottled() { eventsThrottledTotal.Inc() }

// EventMalformed counts one message discarded at decode.
func EventMalformed() { eventsMalformedTotal.Inc() }

// SetConnectionState records the push channel state.
func SetConnectionState(s stream.State) { connectionState.Set(float64(s)) }

// Reconnect counts one successful channel open.
func Reconnect() { reconnectsTotal.Inc() }

// PollFailure counts one failed supplementary poll.
func PollFailure(poll string) { pollFailuresTotal.WithLabelValues(poll).Inc() }

// SetStressIndex records the most recent stress sample.
func SetStressIndex(v float64) { stressIndex.Set(v) }

// SetVisibleAlerts records the visible alert count.
func SetVisibleAlerts(n int) { visibleAlerts.Set(float64(n)) }
