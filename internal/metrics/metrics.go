// Package metrics provides Prometheus metrics for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Notify endpoint metrics
	NotifyRequestsTotal   *prometheus.CounterVec
	NotifyDurationSeconds *prometheus.HistogramVec

	// Webhook metrics
	WebhookRequestsTotal *prometheus.CounterVec

	// Dispatch metrics
	DispatchDurationSeconds *prometheus.HistogramVec
	FanoutFailuresTotal     prometheus.Counter

	// Registry metrics
	RegistrySize prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		NotifyRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "linerelay_notify_requests_total",
				Help: "Total number of notify requests by send mode and status",
			},
			[]string{"mode", "status"}, // status: success, unauthorized, invalid, error
		),

		NotifyDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linerelay_notify_duration_seconds",
				Help:    "Notify request processing duration in seconds by send mode",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"mode"},
		),

		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "linerelay_webhook_requests_total",
				Help: "Total number of webhook requests by outcome and status",
			},
			[]string{"outcome", "status"}, // outcome: health_check, group_discovery, default_reply, malformed
		),

		DispatchDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linerelay_dispatch_duration_seconds",
				Help:    "LINE API call duration in seconds by operation",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"operation"}, // operation: broadcast, push, reply
		),

		FanoutFailuresTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "linerelay_fanout_failures_total",
				Help: "Total number of failed per-group pushes during fan-out",
			},
		),

		RegistrySize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "linerelay_registry_groups",
				Help: "Number of group ids currently registered",
			},
		),
	}
}

// RecordNotify records a notify request outcome.
// Safe to call on a nil receiver so hosts without metrics can skip wiring.
func (m *Metrics) RecordNotify(mode, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.NotifyRequestsTotal.WithLabelValues(mode, status).Inc()
	if durationSeconds > 0 {
		m.NotifyDurationSeconds.WithLabelValues(mode).Observe(durationSeconds)
	}
}

// RecordWebhook records a webhook request outcome.
func (m *Metrics) RecordWebhook(outcome, status string) {
	if m == nil {
		return
	}
	m.WebhookRequestsTotal.WithLabelValues(outcome, status).Inc()
}

// RecordDispatch records a LINE API call duration.
func (m *Metrics) RecordDispatch(operation string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.DispatchDurationSeconds.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordFanoutFailure records one failed per-group push.
func (m *Metrics) RecordFanoutFailure() {
	if m == nil {
		return
	}
	m.FanoutFailuresTotal.Inc()
}

// SetRegistrySize updates the registered group count gauge.
func (m *Metrics) SetRegistrySize(n int) {
	if m == nil {
		return
	}
	m.RegistrySize.Set(float64(n))
}
