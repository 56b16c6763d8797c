package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/progress"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
	"github.com/noah-isme/defense-scheduler-core/internal/strategy"
	schederrors "github.com/noah-isme/defense-scheduler-core/pkg/errors"
)

// RunSpec is the already-decoded run invocation (spec §6's RunRequest minus
// wire-format concerns, which belong to internal/apirun).
type RunSpec struct {
	StrategyName     string
	Bundle           domain.InputBundle
	Params           map[string]float64
	WeightOverrides  map[string]float64
	TimeLimitSeconds int
	Seed             *int64 // nil: derive per §4.4's composite-seed recipe
}

// Result mirrors spec §6's run_result shape, plus a run_id correlation
// field used by the progress broker/metrics that the external shape itself
// doesn't name.
type Result struct {
	RunID          string               `json:"run_id,omitempty"`
	Status         string               `json:"status"`
	Assignments    []domain.Assignment  `json:"assignments"`
	Statistics     map[string]float64   `json:"statistics"`
	ScoreBreakdown map[string]float64   `json:"score_breakdown"`
	Strategy       string               `json:"strategy"`
	Seed           int64                `json:"seed"`
}

// Runner is the Strategy Factory & Runner (§4.5): it resolves a strategy by
// name, seeds randomness, enforces the time budget, and catches failures —
// wrapping every run in a guarded context that acquires a progress-sink
// handle with guaranteed release on every exit path.
type Runner struct {
	pool           *Pool
	broker         *progress.Broker
	metrics        *progress.Metrics
	logger         *zap.Logger
	defaultWeights scoring.Weights
}

// New builds a Runner. broker and metrics may be nil (no progress events
// emitted / no metrics recorded); logger defaults to a no-op logger.
func New(pool *Pool, broker *progress.Broker, metrics *progress.Metrics, logger *zap.Logger, defaultWeights scoring.Weights) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{pool: pool, broker: broker, metrics: metrics, logger: logger, defaultWeights: defaultWeights}
}

// Start begins the underlying worker pool; Stop drains it.
func (r *Runner) Start(ctx context.Context) { r.pool.Start(ctx) }
func (r *Runner) Stop()                     { r.pool.Stop() }

// ctxToken adapts a context.Context into a strategy.CancelToken.
type ctxToken struct{ ctx context.Context }

func (c ctxToken) Cancelled() bool { return c.ctx.Err() != nil }

// Run validates spec, resolves the named strategy, and executes it on the
// runner's worker pool. The returned error is non-nil for the
// before-any-strategy-runs failures of §7 (InvalidInput, NoSuchStrategy,
// BadConfig, and InvalidWeights for an unknown weight override key), and
// when the worker pool is not running or ctx ends before the run's result
// arrives; any failure once a strategy is underway is folded into
// Result.Status ("cancelled" or "failed") per §7's propagation rule.
func (r *Runner) Run(ctx context.Context, spec RunSpec) (Result, error) {
	runID := uuid.NewString()

	if ok, fatals := domain.ValidateInput(spec.Bundle); !ok {
		msg := "input bundle is invalid"
		if len(fatals) > 0 {
			msg = fatals[0].Reason
		}
		return Result{}, schederrors.Clone(schederrors.ErrInvalidInput, msg)
	}

	strat, err := Create(spec.StrategyName)
	if err != nil {
		return Result{}, err
	}

	weights, unknownWeights := r.defaultWeights.Override(spec.WeightOverrides)
	if len(unknownWeights) > 0 {
		return Result{}, schederrors.Clone(schederrors.ErrInvalidWeights, "unknown weight override keys: "+joinStrings(unknownWeights))
	}
	if badKey, ok := validateConfigParams(spec.StrategyName, spec.Params); !ok {
		return Result{}, schederrors.Clone(schederrors.ErrBadConfig, "parameter out of range: "+badKey)
	}

	idx := domain.BuildIndex(spec.Bundle)

	canonical := CanonicalName(spec.StrategyName)
	seed := resolveSeed(spec.Seed, canonical, runID)

	timeLimit := time.Duration(spec.TimeLimitSeconds) * time.Second

	if r.metrics != nil {
		r.metrics.RecordStart(canonical)
	}

	runFn := func() (Result, error) {
		return r.execute(ctx, runID, canonical, strat, idx, spec, weights, seed, timeLimit)
	}

	if r.pool != nil {
		return r.pool.Submit(ctx, runFn)
	}
	return runFn()
}

func (r *Runner) execute(
	ctx context.Context,
	runID, canonical string,
	strat strategy.Strategy,
	idx domain.Index,
	spec RunSpec,
	weights scoring.Weights,
	seed int64,
	timeLimit time.Duration,
) (result Result, _ error) {
	start := time.Now()

	var sink *progress.Sink
	if r.broker != nil {
		sink = r.broker.Sink(runID)
	}
	emit := func(fraction float64, tag, msg string, details map[string]any) {
		if sink != nil {
			sink.Update(fraction, tag, msg, details)
		}
	}
	finalize := func(status string) {
		if sink == nil {
			return
		}
		if status == "failed" {
			_ = sink.Error(status, "run failed")
			return
		}
		_ = sink.Complete(map[string]any{"status": status})
	}

	defer func() {
		if r.metrics != nil {
			r.metrics.RecordCompletion(canonical, result.Status, time.Since(start).Seconds(), result.ScoreBreakdown["conflict_penalty"])
		}
	}()

	cancel := strategy.CancelToken(ctxToken{ctx})
	if timeLimit > 0 {
		cancel = strategy.WithDeadline(cancel, start.Add(timeLimit))
	}

	outcome, runErr := r.safeRun(strat, idx, strategy.Config{Params: spec.Params, TimeLimit: timeLimit, Weights: weights}, seed, sinkAdapter{emit}, cancel)

	status := string(outcome.Status)
	if runErr != nil {
		status = "failed"
		r.logger.Sugar().Errorw("strategy run failed", "run_id", runID, "strategy", canonical, "error", runErr)
	}
	if status == "" {
		status = "completed"
	}

	breakdown := scoring.Score(outcome.Assignments, idx, weights)
	stats := outcome.Stats
	stats.ExecutionTimeSeconds = time.Since(start).Seconds()

	statsMap := map[string]float64{
		"execution_time_seconds":      stats.ExecutionTimeSeconds,
		"schedule_count":              float64(stats.ScheduleCount),
		"consecutive_instructor_count": float64(stats.ConsecutiveInstructorCount),
		"avg_classroom_changes":       stats.AvgClassroomChanges,
		"total_gaps":                  float64(stats.TotalGaps),
		"workload_stddev":             stats.WorkloadStddev,
	}

	result = Result{
		RunID:          runID,
		Status:         status,
		Assignments:    outcome.Assignments,
		Statistics:     statsMap,
		ScoreBreakdown: breakdown.AsMap(),
		Strategy:       canonical,
		Seed:           seed,
	}
	finalize(status)
	return result, nil
}

// safeRun recovers a strategy panic into an error, matching §7's "a
// strategy must never leak an infeasibility as an exception" — and its
// converse, that an unexpected fault inside a strategy is caught here
// rather than crashing the worker.
func (r *Runner) safeRun(strat strategy.Strategy, idx domain.Index, cfg strategy.Config, seed int64, sink strategy.ProgressSink, cancel strategy.CancelToken) (outcome strategy.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = schederrors.Clone(schederrors.ErrInternal, "strategy panicked")
		}
	}()
	return strat.Run(idx, cfg, seed, sink, cancel)
}

// sinkAdapter satisfies strategy.ProgressSink over a plain emit closure, so
// execute can pass progress through whether or not a broker is configured.
type sinkAdapter struct {
	emit func(fraction float64, tag, msg string, details map[string]any)
}

func (s sinkAdapter) Update(fraction float64, tag, msg string, details map[string]any) {
	s.emit(fraction, tag, msg, details)
}

// resolveSeed returns spec's seed if present, otherwise derives one per
// §4.4's composite-seed recipe (high-resolution time, process id, a
// per-instance identity string, and a cryptographically strong draw) — the
// same mechanism the DP Strategic Pairing row always uses regardless of
// what the caller supplies, so every other strategy gets the identical
// derivation when the caller leaves seed absent.
func resolveSeed(seed *int64, canonical, runID string) int64 {
	if seed != nil {
		return *seed
	}
	return strategy.CompositeSeed(canonical + ":" + runID)
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
