// Package metrics exposes Prometheus instrumentation for virtual display
// lifecycle operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Create outcomes recorded on the create counter.
const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeFailure  = "failure"
)

// Metrics holds the displayd Prometheus collectors. All record methods are
// nil-safe so callers can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	createTotal       *prometheus.CounterVec
	destroyTotal      prometheus.Counter
	active            prometheus.Gauge
	detectionWait     prometheus.Histogram
	detectionAttempts prometheus.Histogram
}

// New creates a metrics set backed by its own registry, including the
// standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		createTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "displayd_create_total",
			Help: "Virtual display create attempts by outcome.",
		}, []string{"outcome"}),
		destroyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "displayd_destroy_total",
			Help: "Virtual display teardowns.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "displayd_active",
			Help: "Whether a virtual display session is currently active.",
		}),
		detectionWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "displayd_detection_wait_seconds",
			Help:    "Time spent waiting for KMS to detect the virtual connector.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		}),
		detectionAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "displayd_detection_attempts",
			Help:    "Poll attempts spent per detection wait.",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),
	}

	registry.MustRegister(m.createTotal, m.destroyTotal, m.active, m.detectionWait, m.detectionAttempts)
	return m
}

// Handler returns an HTTP handler serving the registry in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCreate records a create attempt outcome.
func (m *Metrics) RecordCreate(outcome string) {
	if m == nil {
		return
	}
	m.createTotal.WithLabelValues(outcome).Inc()
}

// RecordDestroy records a teardown.
func (m *Metrics) RecordDestroy() {
	if m == nil {
		return
	}
	m.destroyTotal.Inc()
}

// SetActive records whether a session is active.
func (m *Metrics) SetActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.active.Set(1)
	} else {
		m.active.Set(0)
	}
}

// RecordDetectionWait records the duration and attempt count of one
// detection wait, successful or not.
func (m *Metrics) RecordDetectionWait(d time.Duration, attempts int) {
	if m == nil {
		return
	}
	m.detectionWait.Observe(d.Seconds())
	m.detectionAttempts.Observe(float64(attempts))
}
