// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics for the simulation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No per-session labels anywhere; session IDs are unbounded and would
// explode cardinality.
var (
	// ActiveSessions tracks sessions currently held by the store.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "optionsim_active_sessions",
		Help: "Current number of live simulation sessions.",
	})

	// SessionOpsTotal counts session lifecycle operations by op and outcome.
	SessionOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_session_ops_total",
		Help: "Total number of session operations, by operation and outcome.",
	}, []string{"op", "outcome"})

	// SimulationStepsTotal counts served simulation steps by method.
	SimulationStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_simulation_steps_total",
		Help: "Total number of simulation steps served, by method.",
	}, []string{"method"})

	// SimulationStepDuration observes end-to-end step serving latency.
	SimulationStepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optionsim_simulation_step_duration_seconds",
		Help:    "Latency of serving one simulation step, walk build included.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	// WalkBuildsTotal counts walk cache rebuilds by method.
	WalkBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_walk_builds_total",
		Help: "Total number of walk cache builds, by method.",
	}, []string{"method"})

	// WalkCacheSize tracks walks currently cached.
	WalkCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "optionsim_walk_cache_size",
		Help: "Current number of cached walks.",
	})

	// SessionsCleanedTotal counts sessions removed by the cleanup sweep.
	SessionsCleanedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionsim_sessions_cleaned_total",
		Help: "Total number of expired sessions removed by cleanup.",
	})
)

// Outcome labels for SessionOpsTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// RecordSessionOp increments the op counter with the outcome derived
// from err.
func RecordSessionOp(op string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	SessionOpsTotal.WithLabelValues(op, outcome).Inc()
}
