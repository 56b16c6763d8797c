// Package strategy holds the seven interchangeable optimization strategies
// and the contract they all implement. Every strategy bootstraps a feasible
// assignment set, improves it against a score, and never refuses to place a
// project — infeasibility is resolved by force-assignment with penalty.
package strategy

import (
	"time"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

// CancelToken is polled at bounded intervals by every strategy's main loop.
// Time-limit expiry is surfaced through the same interface as explicit
// cancellation — a strategy treats both identically.
type CancelToken interface {
	Cancelled() bool
}

// staticToken never reports cancellation; used by callers that only want a
// time limit, or by tests that don't exercise cancellation.
type staticToken struct{}

func (staticToken) Cancelled() bool { return false }

// NoCancel is a CancelToken that is never cancelled.
var NoCancel CancelToken = staticToken{}

// deadlineToken reports cancellation once a wall-clock deadline has passed,
// OR'd with an optional wrapped token.
type deadlineToken struct {
	deadline time.Time
	inner    CancelToken
}

// WithDeadline combines a wall-clock deadline with an inner cancel token;
// Cancelled() is true once either fires.
func WithDeadline(inner CancelToken, deadline time.Time) CancelToken {
	if inner == nil {
		inner = NoCancel
	}
	return deadlineToken{deadline: deadline, inner: inner}
}

func (d deadlineToken) Cancelled() bool {
	if d.inner.Cancelled() {
		return true
	}
	return time.Now().After(d.deadline)
}

// ProgressSink receives coalesced progress updates from a running strategy.
// Implementations must be safe for concurrent use.
type ProgressSink interface {
	Update(fraction float64, statusTag string, message string, details map[string]any)
}

// nullSink discards every update; useful for tests and synchronous callers
// that don't care about progress.
type nullSink struct{}

func (nullSink) Update(float64, string, string, map[string]any) {}

// NullSink is a ProgressSink that discards everything.
var NullSink ProgressSink = nullSink{}

// Config carries the per-run knobs every strategy receives. Params holds
// the raw, already-validated per-strategy scalars (population_size,
// mutation_rate, tabu_tenure, ...); strategies read only the keys they
// recognize and apply their own documented defaults for the rest.
type Config struct {
	Params    map[string]float64
	TimeLimit time.Duration
	Weights   scoring.Weights
}

// Float returns cfg.Params[key], or def if the key is absent.
func (cfg Config) Float(key string, def float64) float64 {
	if v, ok := cfg.Params[key]; ok {
		return v
	}
	return def
}

// Int returns cfg.Params[key] truncated to int, or def if absent.
func (cfg Config) Int(key string, def int) int {
	if v, ok := cfg.Params[key]; ok {
		return int(v)
	}
	return def
}

// Status mirrors the run_result.status vocabulary a strategy can report.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Outcome is what every strategy hands back to the runner.
type Outcome struct {
	Assignments []domain.Assignment
	Status      Status
	Stats       Statistics
}

// Strategy is the shared contract every optimization approach implements.
type Strategy interface {
	// Name reports the canonical (non-aliased) strategy name.
	Name() string
	// Run executes the strategy against idx using cfg, seeded by seed,
	// reporting progress through sink and honoring cancel.
	Run(idx domain.Index, cfg Config, seed int64, sink ProgressSink, cancel CancelToken) (Outcome, error)
}
