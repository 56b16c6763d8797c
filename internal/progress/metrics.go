package progress

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records run-level counters and histograms into a caller-owned
// registry. No component in this module starts an HTTP server to expose
// them — mounting /metrics is the embedding application's job.
type Metrics struct {
	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	conflictTotal *prometheus.CounterVec
}

// NewMetrics registers the run metrics against reg and returns the recorder.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defense_scheduler_runs_started_total",
			Help: "Total optimization runs started, by strategy.",
		}, []string{"strategy"}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defense_scheduler_runs_completed_total",
			Help: "Total optimization runs completed, by strategy and terminal status.",
		}, []string{"strategy", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "defense_scheduler_run_duration_seconds",
			Help:    "Wall-clock duration of a completed run, by strategy.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		conflictTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defense_scheduler_conflict_penalty_total",
			Help: "Cumulative conflict_penalty observed across completed runs, by strategy.",
		}, []string{"strategy"}),
	}
	reg.MustRegister(m.runsStarted, m.runsCompleted, m.runDuration, m.conflictTotal)
	return m
}

// RecordStart increments the started counter for strategy.
func (m *Metrics) RecordStart(strategyName string) {
	if m == nil {
		return
	}
	m.runsStarted.WithLabelValues(strategyName).Inc()
}

// RecordCompletion records a run's terminal status, duration, and conflict
// penalty against strategy.
func (m *Metrics) RecordCompletion(strategyName, status string, durationSeconds, conflictPenalty float64) {
	if m == nil {
		return
	}
	m.runsCompleted.WithLabelValues(strategyName, status).Inc()
	m.runDuration.WithLabelValues(strategyName).Observe(durationSeconds)
	m.conflictTotal.WithLabelValues(strategyName).Add(conflictPenalty)
}
