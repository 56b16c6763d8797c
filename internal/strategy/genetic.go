package strategy

import (
	mrand "math/rand"

	"github.com/noah-isme/defense-scheduler-core/internal/constructor"
	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

// Genetic evolves a population of candidate assignment sets: per-generation
// tournament selection, single-point crossover (swap assignments between
// two parents), mutation (reassign one project to a random cell), elitism
// keeps the best individual unconditionally.
type Genetic struct{}

func (Genetic) Name() string { return "genetic" }

const gaTournamentSize = 3

func (Genetic) Run(idx domain.Index, cfg Config, seed int64, sink ProgressSink, cancel CancelToken) (Outcome, error) {
	rng := newRand(seed)

	populationSize := cfg.Int("population_size", 50)
	generations := cfg.Int("generations", 100)
	mutationRate := cfg.Float("mutation_rate", 0.1)
	crossoverRate := cfg.Float("crossover_rate", 0.8)

	order := sortedProjectIDs(idx)
	if len(order) == 0 {
		return Outcome{Status: StatusCompleted, Stats: ComputeStatistics(nil, idx)}, nil
	}

	rawBaseline, _ := constructor.Build(idx)
	baseline := orderByProjectID(rawBaseline, order)

	population := make([][]domain.Assignment, populationSize)
	for i := range population {
		ind := cloneIndividual(baseline)
		for k := 0; k < 3; k++ {
			mutateOne(ind, idx, rng)
		}
		population[i] = ind
	}

	fitness := func(ind []domain.Assignment) float64 {
		return scoring.Score(ind, idx, cfg.Weights).Total
	}

	best := cloneIndividual(baseline)
	bestScore := fitness(best)

	status := StatusCompleted
	for gen := 0; gen < generations; gen++ {
		if cancel.Cancelled() {
			status = StatusCancelled
			break
		}

		scores := make([]float64, len(population))
		for i, ind := range population {
			scores[i] = fitness(ind)
			if scores[i] < bestScore {
				bestScore = scores[i]
				best = cloneIndividual(ind)
			}
		}

		sink.Update(float64(gen)/float64(generations), "evolving", "running genetic generation", map[string]any{
			"generation": gen, "best_score": bestScore,
		})

		nextGen := make([][]domain.Assignment, 0, populationSize)
		nextGen = append(nextGen, cloneIndividual(best)) // elitism

		for len(nextGen) < populationSize {
			parentA := tournamentSelect(population, scores, rng)
			parentB := tournamentSelect(population, scores, rng)

			var child []domain.Assignment
			if rng.Float64() < crossoverRate {
				child = crossover(parentA, parentB, rng)
			} else {
				child = cloneIndividual(parentA)
			}
			if rng.Float64() < mutationRate {
				mutateOne(child, idx, rng)
			}
			nextGen = append(nextGen, child)
		}
		population = nextGen

		if cancel.Cancelled() {
			status = StatusCancelled
			break
		}
	}

	sink.Update(1, "done", "genetic search complete", nil)
	return Outcome{
		Assignments: best,
		Status:      status,
		Stats:       ComputeStatistics(best, idx),
	}, nil
}

func tournamentSelect(population [][]domain.Assignment, scores []float64, rng *mrand.Rand) []domain.Assignment {
	bestIdx := rng.Intn(len(population))
	for k := 1; k < gaTournamentSize; k++ {
		cand := rng.Intn(len(population))
		if scores[cand] < scores[bestIdx] {
			bestIdx = cand
		}
	}
	return population[bestIdx]
}

// crossover performs a single-point crossover along the shared project-id
// ordering: the child takes parentA's cells up to the cut and parentB's
// cells after it.
func crossover(parentA, parentB []domain.Assignment, rng *mrand.Rand) []domain.Assignment {
	child := cloneIndividual(parentA)
	if len(child) < 2 {
		return child
	}
	cut := rng.Intn(len(child))
	for i := cut; i < len(child); i++ {
		child[i].ClassroomID = parentB[i].ClassroomID
		child[i].TimeslotID = parentB[i].TimeslotID
	}
	return child
}

func mutateOne(ind []domain.Assignment, idx domain.Index, rng *mrand.Rand) {
	if len(ind) == 0 {
		return
	}
	i := rng.Intn(len(ind))
	relocate(ind, i, idx, rng)
}
