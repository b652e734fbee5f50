package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters for the order pipeline.
type OrderMetrics struct {
	transitions       *prometheus.CounterVec
	rejected          *prometheus.CounterVec
	sideEffectFailure *prometheus.CounterVec
	webhookEvents     *prometheus.CounterVec
}

// NewOrderMetrics registers the order pipeline metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order status transitions applied, by action.",
	}, []string{"action"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_rejected_total",
		Help: "Order status transitions rejected by the state machine, by action.",
	}, []string{"action"})
	sideEffectFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_side_effect_failures_total",
		Help: "Best-effort side effects that failed, by kind.",
	}, []string{"kind"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Inbound storefront webhook events, by type.",
	}, []string{"event_type"})
	reg.MustRegister(transitions, rejected, sideEffectFailure, webhookEvents)
	return &OrderMetrics{
		transitions:       transitions,
		rejected:          rejected,
		sideEffectFailure: sideEffectFailure,
		webhookEvents:     webhookEvents,
	}
}

// IncTransition counts a successfully applied transition.
func (m *OrderMetrics) IncTransition(action string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncRejected counts a transition refused by the state machine.
func (m *OrderMetrics) IncRejected(action string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncSideEffectFailure counts a failed best-effort side effect.
func (m *OrderMetrics) IncSideEffectFailure(kind string) {
	if m == nil || m.sideEffectFailure == nil {
		return
	}
	m.sideEffectFailure.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncWebhookEvent counts an inbound webhook event.
func (m *OrderMetrics) IncWebhookEvent(eventType string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
