// Package metrics exposes prometheus collectors for answer resolution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "verde"

// Metrics groups the collectors registered on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	resolutions    *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	searchFailures prometheus.Counter
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Answered questions by category and resolver.",
		}, []string{"category", "resolver"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving a question.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resolver"}),
		searchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_failures_total",
			Help:      "Web searches that fell back to the no-information answer.",
		}),
	}

	m.registry.MustRegister(
		m.resolutions,
		m.duration,
		m.searchFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveResolution counts one answered question and records its latency.
func (m *Metrics) ObserveResolution(category, resolver string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(category, resolver).Inc()
	m.duration.WithLabelValues(resolver).Observe(elapsed.Seconds())
}

// SearchFailed counts a web search that fell back.
func (m *Metrics) SearchFailed() {
	if m == nil {
		return
	}
	m.searchFailures.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
