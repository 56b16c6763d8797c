package strategy

import (
	"github.com/noah-isme/defense-scheduler-core/internal/constructor"
	"github.com/noah-isme/defense-scheduler-core/internal/domain"
)

// EarliestFirst is the single-pass constructor strategy: it places each
// pair's projects at the earliest available slot and performs no iterative
// improvement afterward.
type EarliestFirst struct{}

func (EarliestFirst) Name() string { return "earliest_first" }

func (EarliestFirst) Run(idx domain.Index, cfg Config, seed int64, sink ProgressSink, cancel CancelToken) (Outcome, error) {
	sink.Update(0, "building", "running the paired-consecutive constructor", nil)

	assignments, _ := constructor.Build(idx)

	status := StatusCompleted
	if cancel.Cancelled() {
		status = StatusCancelled
	}

	sink.Update(1, "done", "construction complete", nil)
	return Outcome{
		Assignments: assignments,
		Status:      status,
		Stats:       ComputeStatistics(assignments, idx),
	}, nil
}
