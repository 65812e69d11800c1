package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's Prometheus collectors. Each server owns its own
// registry so tests can run servers side by side.
type metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	stageTransitions *prometheus.CounterVec
	derivedRecords   *prometheus.CounterVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pergola",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pergola",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		stageTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pergola",
			Subsystem: "workflow",
			Name:      "stage_transitions_total",
			Help:      "Stage moves by pipeline and target stage.",
		}, []string{"pipeline", "stage"}),
		derivedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pergola",
			Subsystem: "workflow",
			Name:      "derived_records_total",
			Help:      "Delivery opportunities and payment instructions derived by transitions.",
		}, []string{"kind"}),
	}
}
