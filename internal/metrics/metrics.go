// Package metrics exposes Prometheus collectors for the approval engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	registry      *prometheus.Registry
	transitions   *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	lockWait      prometheus.Histogram
	opDuration    *prometheus.HistogramVec
	publishErrors *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposal_transitions_total",
			Help:      "Committed proposal status transitions.",
		}, []string{"event", "to"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approval_decisions_total",
			Help:      "Recorded tier decisions by tier and outcome.",
		}, []string{"tier", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approval_operation_failures_total",
			Help:      "Rejected engine calls by operation and error kind.",
		}, []string{"operation", "kind"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "proposal_lock_wait_seconds",
			Help:      "Time spent waiting for the per-proposal lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "approval_operation_duration_seconds",
			Help:      "Engine call latency including lock wait.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Lifecycle events that could not be delivered.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions,
		m.decisions,
		m.failures,
		m.lockWait,
		m.opDuration,
		m.publishErrors,
		m.httpRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Transition(event, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event, to).Inc()
}

func (m *Metrics) Decision(tier, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(tier, outcome).Inc()
}

func (m *Metrics) Failure(operation, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) LockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

func (m *Metrics) OperationDuration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) PublishFailure(eventType string) {
	if m == nil {
		return
	}
	m.publishErrors.WithLabelValues(eventType).Inc()
}

func (m *Metrics) HTTPRequest(method, route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, code).Inc()
}
