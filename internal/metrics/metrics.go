// Package metrics provides Prometheus metrics for the report pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects report pipeline metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	PicksGenerated     *prometheus.CounterVec

	TransitionsTotal     *prometheus.CounterVec
	InvalidationFailures *prometheus.CounterVec

	CacheLookups *prometheus.CounterVec

	EngineHealthy *prometheus.GaugeVec
}

// New creates the collector and registers every metric
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizjock_report_generations_total",
				Help: "Report generation attempts by outcome",
			},
			[]string{"sport", "status"}, // success, failed, timeout
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wizjock_report_generation_duration_seconds",
				Help:    "Wall time of report generation including persistence",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 13), // 50ms to ~3.4m
			},
			[]string{"sport"},
		),
		PicksGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizjock_picks_generated_total",
				Help: "Picks persisted by generation",
			},
			[]string{"sport", "hierarchy"},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizjock_report_transitions_total",
				Help: "Publication state transitions by outcome",
			},
			[]string{"sport", "transition", "status"},
		),
		InvalidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizjock_cache_invalidation_failures_total",
				Help: "Cache invalidations that failed after a committed change",
			},
			[]string{"sport"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizjock_picks_cache_lookups_total",
				Help: "Published picks cache lookups",
			},
			[]string{"result"}, // hit, miss, error
		),
		EngineHealthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wizjock_engine_healthy",
				Help: "1 when the sport's engine passed its last health check",
			},
			[]string{"sport"},
		),
	}

	m.registry.MustRegister(
		m.GenerationsTotal,
		m.GenerationDuration,
		m.PicksGenerated,
		m.TransitionsTotal,
		m.InvalidationFailures,
		m.CacheLookups,
		m.EngineHealthy,
	)

	return m
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// --- Helper methods for recording metrics ---
// All helpers are no-ops on a nil receiver so collaborators can run without metrics.

// RecordGeneration records one generation attempt
func (m *Metrics) RecordGeneration(sport, status string, seconds float64) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(sport, status).Inc()
	m.GenerationDuration.WithLabelValues(sport).Observe(seconds)
}

// RecordPick counts a persisted pick
func (m *Metrics) RecordPick(sport, hierarchy string) {
	if m == nil {
		return
	}
	m.PicksGenerated.WithLabelValues(sport, hierarchy).Inc()
}

// RecordTransition records a publish or unpublish attempt
func (m *Metrics) RecordTransition(sport, transition, status string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(sport, transition, status).Inc()
}

// RecordInvalidationFailure counts a swallowed invalidation error
func (m *Metrics) RecordInvalidationFailure(sport string) {
	if m == nil {
		return
	}
	m.InvalidationFailures.WithLabelValues(sport).Inc()
}

// RecordCacheLookup records a cache hit, miss or error
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// SetEngineHealth records the latest health probe for a sport
func (m *Metrics) SetEngineHealth(sport string, healthy bool) {
	if m == nil {
		return
	}
	v := 0.0
	if healthy {
		v = 1
	}
	m.EngineHealthy.WithLabelValues(sport).Set(v)
}
