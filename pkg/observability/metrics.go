// Package observability exposes Prometheus instrumentation for the
// invocation pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Invocation outcomes recorded on the counter.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
	OutcomeReplayed     = "replayed"
)

// Metrics holds the pipeline's collectors.
type Metrics struct {
	invocations  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	guardDenials *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on reg. Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_invocations_total",
				Help: "Remote invocations by controller, action and outcome.",
			},
			[]string{"controller", "action", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rpc_invocation_duration_seconds",
				Help:    "End-to-end invocation pipeline duration.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"controller", "action"},
		),
		guardDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_guard_denials_total",
				Help: "Calls denied by the guard chain.",
			},
			[]string{"controller", "action"},
		),
	}
	reg.MustRegister(m.invocations, m.duration, m.guardDenials)
	return m
}

// ObserveInvocation records one finished call. Nil receivers are no-ops so
// metrics stay optional.
func (m *Metrics) ObserveInvocation(controller, action, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(controller, action, outcome).Inc()
	m.duration.WithLabelValues(controller, action).Observe(elapsed.Seconds())
	if outcome == OutcomeUnauthorized {
		m.guardDenials.WithLabelValues(controller, action).Inc()
	}
}
