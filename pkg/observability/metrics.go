package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the hierarchy engine and its
// HTTP surfaces. Each instance owns its registry so tests can create many.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Engine metrics
	Mutations       *prometheus.CounterVec
	StaleReferences *prometheus.CounterVec
	CursorResets    *prometheus.CounterVec

	// Remote store metrics
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors under namespace
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bank_mutations_total",
				Help:      "Hierarchy mutations by operation, addressing form and outcome",
			},
			[]string{"operation", "target", "outcome"},
		),
		StaleReferences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bank_stale_references_total",
				Help:      "Mutations aborted because the target was missing from the fetched forest",
			},
			[]string{"operation"},
		),
		CursorResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bank_cursor_resets_total",
				Help:      "Navigation cursor resets to root by reason",
			},
			[]string{"reason"},
		),
		RemoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bank_store_calls_total",
				Help:      "Calls to the bank store by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RemoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bank_store_call_duration_seconds",
				Help:      "Bank store call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.Mutations,
		m.StaleReferences,
		m.CursorResets,
		m.RemoteCalls,
		m.RemoteDuration,
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMutation counts one mutation attempt. Safe on a nil receiver.
func (m *Metrics) RecordMutation(operation, target, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation, target, outcome).Inc()
}

// RecordStaleReference counts an aborted mutation. Safe on a nil receiver.
func (m *Metrics) RecordStaleReference(operation string) {
	if m == nil {
		return
	}
	m.StaleReferences.WithLabelValues(operation).Inc()
}

// RecordCursorReset counts a reset of the navigation cursor. Safe on a nil receiver.
func (m *Metrics) RecordCursorReset(reason string) {
	if m == nil {
		return
	}
	m.CursorResets.WithLabelValues(reason).Inc()
}

// ObserveRemoteCall records one bank store call. Safe on a nil receiver.
func (m *Metrics) ObserveRemoteCall(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.RemoteCalls.WithLabelValues(operation, outcome).Inc()
	m.RemoteDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveHTTP records one served request. Safe on a nil receiver.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
