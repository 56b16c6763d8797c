package strategy

import (
	"github.com/noah-isme/defense-scheduler-core/internal/constructor"
	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

// TabuSearch performs local search with a short-term memory of recently
// undone moves. Tenure adapts within [5, 20]: it shrinks on improvement and
// grows while stuck. Aspiration lets a tabu move through when it would beat
// the best-known score, when it is rarely used (diversification), or when
// the stuck counter has run long enough that exploration is worth the risk.
type TabuSearch struct{}

func (TabuSearch) Name() string { return "tabu_search" }

const (
	tabuTenureMin           = 5
	tabuTenureMax           = 20
	tabuCandidatesPerStep   = 20
	tabuDiversifyFreqFloor  = 2
	tabuStuckAspirationTurn = 15
)

func (TabuSearch) Run(idx domain.Index, cfg Config, seed int64, sink ProgressSink, cancel CancelToken) (Outcome, error) {
	rng := newRand(seed)

	tenure := cfg.Int("tabu_tenure", 10)
	maxIterations := cfg.Int("max_iterations", 200)

	order := sortedProjectIDs(idx)
	if len(order) == 0 {
		return Outcome{Status: StatusCompleted, Stats: ComputeStatistics(nil, idx)}, nil
	}

	rawBaseline, _ := constructor.Build(idx)
	current := orderByProjectID(rawBaseline, order)
	currentScore := scoring.Score(current, idx, cfg.Weights).Total

	best := cloneIndividual(current)
	bestScore := currentScore

	tabuUntil := make(map[string]int)
	frequency := make(map[string]int)
	stuckCounter := 0

	status := StatusCompleted
	for iter := 0; iter < maxIterations; iter++ {
		if cancel.Cancelled() {
			status = StatusCancelled
			break
		}

		var chosenNeighbor []domain.Assignment
		var chosenKey string
		chosenScore := 0.0
		found := false

		for k := 0; k < tabuCandidatesPerStep; k++ {
			neighbor, key := randomMove(current, idx, rng)
			if key == "" {
				continue
			}
			neighborScore := scoring.Score(neighbor, idx, cfg.Weights).Total

			isTabu := tabuUntil[key] > iter
			aspires := neighborScore < bestScore ||
				frequency[key] < tabuDiversifyFreqFloor ||
				stuckCounter > tabuStuckAspirationTurn
			if isTabu && !aspires {
				continue
			}

			if !found || neighborScore < chosenScore {
				chosenNeighbor, chosenKey, chosenScore, found = neighbor, key, neighborScore, true
			}
		}

		if !found {
			continue // every candidate this round was tabu and failed aspiration
		}

		current = chosenNeighbor
		currentScore = chosenScore
		tabuUntil[chosenKey] = iter + tenure
		frequency[chosenKey]++

		if currentScore < bestScore {
			bestScore = currentScore
			best = cloneIndividual(current)
			stuckCounter = 0
			if tenure > tabuTenureMin {
				tenure--
			}
		} else {
			stuckCounter++
			if tenure < tabuTenureMax {
				tenure++
			}
		}

		if iter%5 == 0 {
			sink.Update(float64(iter)/float64(maxIterations), "searching", "tabu search iterating", map[string]any{
				"tenure": tenure, "best_score": bestScore,
			})
		}
	}

	sink.Update(1, "done", "tabu search complete", nil)
	return Outcome{
		Assignments: best,
		Status:      status,
		Stats:       ComputeStatistics(best, idx),
	}, nil
}
