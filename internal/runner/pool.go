// Package runner implements the Strategy Factory & Runner (spec §4.5): name
// resolution with aliases, a guarded per-run wrapper (progress-sink
// acquire/release, wall-clock timer, panic-to-Internal conversion), and the
// bounded worker pool that lets runs for different run-ids execute in
// parallel (§5).
package runner

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	schederrors "github.com/noah-isme/defense-scheduler-core/pkg/errors"
)

// poolJob is one queued Run invocation; resultCh receives exactly one value.
type poolJob struct {
	run      func() (Result, error)
	resultCh chan poolOutcome
}

type poolOutcome struct {
	result Result
	err    error
}

// Pool is a bounded goroutine pool consuming a buffered job channel,
// adapted from the teacher's pkg/jobs.Queue: the same Start/Stop/worker
// shape, but a submitted unit is a Run invocation rather than a generic
// Job{Type,Payload}, and there is no retry/backoff path — a strategy
// already resolves infeasibility by force-assignment, so the only failure
// a pool worker can observe is an unexpected panic, which the worker
// converts into an Internal error rather than re-enqueueing.
type Pool struct {
	workers    int
	bufferSize int
	logger     *zap.Logger

	jobs   chan poolJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	started bool
}

// NewPool builds a pool with workers long-lived goroutines and a job queue
// of bufferSize. workers is clamped to at least 1; a non-positive
// bufferSize defaults to workers*4.
func NewPool(workers, bufferSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if bufferSize <= 0 {
		bufferSize = workers * 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		workers:    workers,
		bufferSize: bufferSize,
		logger:     logger,
		jobs:       make(chan poolJob, bufferSize),
	}
}

// Start begins worker consumption against ctx. Safe to call once.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(i + 1)
	}
	p.started = true
	p.logger.Sugar().Infow("runner pool started", "workers", p.workers)
}

// Stop cancels the pool's context and waits for the workers to exit. A job
// a worker is already running is not interrupted (it runs on its caller's
// context) and finishes first; queued jobs may be left unrun, and pending
// Submit calls return a "pool stopped" error.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("runner pool stopped")
}

// Submit enqueues run and blocks until it completes, the pool is stopped, or
// ctx is cancelled — whichever comes first. Submit itself never runs run on
// the caller's goroutine; that is what makes concurrent runs for different
// run-ids proceed on independent workers (§5).
func (p *Pool) Submit(ctx context.Context, run func() (Result, error)) (Result, error) {
	p.mu.Lock()
	started := p.started
	poolCtx := p.ctx
	p.mu.Unlock()
	if !started {
		return Result{}, fmt.Errorf("runner pool not started")
	}

	job := poolJob{run: run, resultCh: make(chan poolOutcome, 1)}
	select {
	case <-poolCtx.Done():
		return Result{}, fmt.Errorf("runner pool stopped: %w", poolCtx.Err())
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case p.jobs <- job:
	}

	select {
	case <-poolCtx.Done():
		return Result{}, fmt.Errorf("runner pool stopped: %w", poolCtx.Err())
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case out := <-job.resultCh:
		return out.result, out.err
	}
}

func (p *Pool) work(workerID int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			job.resultCh <- p.execute(workerID, job)
		}
	}
}

// execute runs job.run, recovering a panic into an error so one misbehaving
// strategy can never take down a worker permanently.
func (p *Pool) execute(workerID int, job poolJob) (out poolOutcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Sugar().Errorw("runner worker recovered panic", "worker", workerID, "panic", r)
			out = poolOutcome{err: schederrors.Clone(schederrors.ErrInternal, fmt.Sprintf("internal fault: %v", r))}
		}
	}()
	result, err := job.run()
	return poolOutcome{result: result, err: err}
}
