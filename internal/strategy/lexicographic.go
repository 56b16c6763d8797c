package strategy

import (
	"time"

	"github.com/noah-isme/defense-scheduler-core/internal/constructor"
	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

// Lexicographic optimizes four objectives in strict priority order. Once a
// phase finishes, its achieved value becomes an equality constraint (within
// tolerance) that every later phase's candidate moves must preserve.
//
// Phase 1, workload balance, is evaluated but not search-improved here: each
// project's responsible instructor is fixed by the input bundle, so the
// workload distribution across instructors cannot change under any
// (classroom, timeslot) move this strategy makes — it is reported for
// completeness, not treated as a free variable.
type Lexicographic struct{}

func (Lexicographic) Name() string { return "lexicographic" }

const lexTolerance = 1e-9

func (Lexicographic) Run(idx domain.Index, cfg Config, seed int64, sink ProgressSink, cancel CancelToken) (Outcome, error) {
	rng := newRand(seed)

	totalBudget := time.Duration(cfg.Int("time_limit_seconds", 180)) * time.Second
	deadline := time.Now().Add(totalBudget)
	perPhase := totalBudget / 4
	iterationsPerPhase := 300

	order := sortedProjectIDs(idx)
	if len(order) == 0 {
		return Outcome{Status: StatusCompleted, Stats: ComputeStatistics(nil, idx)}, nil
	}

	rawBaseline, _ := constructor.Build(idx)
	current := orderByProjectID(rawBaseline, order)
	fixedWorkloadStddev := workloadStddev(current, idx)

	objectives := []func(scoring.Breakdown) float64{
		func(scoring.Breakdown) float64 { return fixedWorkloadStddev }, // phase 1: invariant under cell-only moves
		func(b scoring.Breakdown) float64 { return b.PairingIncompletePenalty + b.JuryPairingReward },
		func(b scoring.Breakdown) float64 {
			return b.GapPenalty + b.GapFreeReward + b.ConsecutiveReward + b.ClassroomChangePenalty + b.SameClassroomReward + b.PerfectConsecutiveReward
		},
		func(b scoring.Breakdown) float64 { return b.Total },
	}

	achieved := make([]float64, 0, len(objectives))
	status := StatusCompleted

phaseLoop:
	for phase, objective := range objectives {
		phaseDeadline := time.Now().Add(perPhase)
		if phaseDeadline.After(deadline) {
			phaseDeadline = deadline
		}

		currentBreakdown := scoring.Score(current, idx, cfg.Weights)
		currentVal := objective(currentBreakdown)

		for iter := 0; iter < iterationsPerPhase; iter++ {
			if cancel.Cancelled() || time.Now().After(phaseDeadline) {
				if cancel.Cancelled() || time.Now().After(deadline) {
					status = StatusCancelled
					achieved = append(achieved, currentVal)
					break phaseLoop
				}
				break // move to next phase; this phase's time budget is spent
			}

			neighbor, _ := randomMove(current, idx, rng)
			neighborBreakdown := scoring.Score(neighbor, idx, cfg.Weights)
			neighborVal := objective(neighborBreakdown)

			if !respectsEarlierPhases(achieved, objectives, neighbor, idx, cfg) {
				continue
			}
			if neighborVal < currentVal-lexTolerance {
				current = neighbor
				currentBreakdown = neighborBreakdown
				currentVal = neighborVal
			}

			if iter%20 == 0 {
				frac := (float64(phase) + float64(iter)/float64(iterationsPerPhase)) / float64(len(objectives))
				sink.Update(frac, "optimizing", "lexicographic phase in progress", map[string]any{"phase": phase})
			}
		}
		achieved = append(achieved, currentVal)
	}

	sink.Update(1, "done", "lexicographic optimization complete", nil)
	return Outcome{
		Assignments: current,
		Status:      status,
		Stats:       ComputeStatistics(current, idx),
	}, nil
}

// respectsEarlierPhases checks that candidate doesn't regress any
// already-fixed objective beyond tolerance.
func respectsEarlierPhases(achieved []float64, objectives []func(scoring.Breakdown) float64, candidate []domain.Assignment, idx domain.Index, cfg Config) bool {
	if len(achieved) == 0 {
		return true
	}
	b := scoring.Score(candidate, idx, cfg.Weights)
	for i, fixedVal := range achieved {
		if objectives[i](b) > fixedVal+lexTolerance {
			return false
		}
	}
	return true
}

func workloadStddev(assignments []domain.Assignment, idx domain.Index) float64 {
	counts := make(map[int]int)
	for _, a := range assignments {
		counts[a.ResponsibleInstructorID]++
	}
	loads := make([]float64, 0, len(counts))
	for _, c := range counts {
		loads = append(loads, float64(c))
	}
	return stddev(loads)
}
