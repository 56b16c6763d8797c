package strategy

import (
	"math"

	"github.com/noah-isme/defense-scheduler-core/internal/constructor"
	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

// SimulatedAnnealing keeps a single current solution, explores neighbors by
// swapping two projects' cells or relocating one project, accepts
// improvements unconditionally and regressions with probability
// exp(-delta/T), and cools geometrically.
type SimulatedAnnealing struct{}

func (SimulatedAnnealing) Name() string { return "simulated_annealing" }

const saMinTemperature = 1e-6

func (SimulatedAnnealing) Run(idx domain.Index, cfg Config, seed int64, sink ProgressSink, cancel CancelToken) (Outcome, error) {
	rng := newRand(seed)

	temperature := cfg.Float("initial_temperature", 100.0)
	coolingRate := cfg.Float("cooling_rate", 0.01)
	iterations := cfg.Int("iterations", 1000)

	order := sortedProjectIDs(idx)
	if len(order) == 0 {
		return Outcome{Status: StatusCompleted, Stats: ComputeStatistics(nil, idx)}, nil
	}

	rawBaseline, _ := constructor.Build(idx)
	current := orderByProjectID(rawBaseline, order)
	currentScore := scoring.Score(current, idx, cfg.Weights).Total

	best := cloneIndividual(current)
	bestScore := currentScore

	status := StatusCompleted
	for iter := 0; iter < iterations; iter++ {
		if cancel.Cancelled() {
			status = StatusCancelled
			break
		}

		neighbor, _ := randomMove(current, idx, rng)
		neighborScore := scoring.Score(neighbor, idx, cfg.Weights).Total

		delta := neighborScore - currentScore
		if delta < 0 || rng.Float64() < math.Exp(-delta/math.Max(temperature, saMinTemperature)) {
			current = neighbor
			currentScore = neighborScore
			if currentScore < bestScore {
				bestScore = currentScore
				best = cloneIndividual(current)
			}
		}

		temperature *= 1 - coolingRate
		if temperature < saMinTemperature {
			temperature = saMinTemperature
		}

		if iter%10 == 0 {
			sink.Update(float64(iter)/float64(iterations), "annealing", "cooling", map[string]any{
				"temperature": temperature, "best_score": bestScore,
			})
		}
		if cancel.Cancelled() {
			status = StatusCancelled
			break
		}
	}

	sink.Update(1, "done", "annealing complete", nil)
	return Outcome{
		Assignments: best,
		Status:      status,
		Stats:       ComputeStatistics(best, idx),
	}, nil
}
