// Package metrics exposes Prometheus metrics for provider traffic.
//
// Metrics:
//   - relay_provider_requests_total: requests by provider, mode, and outcome
//   - relay_provider_latency_seconds: provider call latency
//   - relay_provider_errors_total: errors by provider and error type
//   - relay_stream_increments_total: stream increments by provider and channel
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bridgehq/relay/pkg/config"
)

// Metrics tracks provider request volume, latency, errors, and stream
// increment counts.
type Metrics struct {
	registry *prometheus.Registry

	// requests counts provider calls by mode ("bulk", "stream",
	// "models") and outcome ("ok", "error").
	requests *prometheus.CounterVec

	// latency is the provider call latency histogram.
	latency *prometheus.HistogramVec

	// errors counts provider errors by type.
	errors *prometheus.CounterVec

	// increments counts delivered stream increments by channel
	// ("content", "thinking").
	increments *prometheus.CounterVec
}

// New creates and registers the relay metrics on a fresh registry.
func New(cfg config.MetricsConfig) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_requests_total",
				Help:      "Total provider calls by mode and outcome",
			},
			[]string{"provider", "mode", "outcome"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_latency_seconds",
				Help:      "Provider call latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "mode"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_errors_total",
				Help:      "Total provider errors by type",
			},
			[]string{"provider", "error_type"},
		),

		increments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "stream_increments_total",
				Help:      "Total stream increments delivered by channel",
			},
			[]string{"provider", "channel"},
		),
	}

	registry.MustRegister(m.requests, m.latency, m.errors, m.increments)
	return m
}

// ObserveRequest records one provider call.
func (m *Metrics) ObserveRequest(provider, mode string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.errors.WithLabelValues(provider, errorType(err)).Inc()
	}
	m.requests.WithLabelValues(provider, mode, outcome).Inc()
	m.latency.WithLabelValues(provider, mode).Observe(seconds)
}

// ObserveIncrement records one delivered stream increment.
func (m *Metrics) ObserveIncrement(provider, channel string) {
	m.increments.WithLabelValues(provider, channel).Inc()
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
