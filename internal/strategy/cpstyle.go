package strategy

import (
	mrand "math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

// CPStyle is a model-based search: variables are projects, domains are
// (classroom, timeslot) cells. I1/I3/I4 are propagated as preferences by
// shrinking each remaining project's domain as earlier projects are placed,
// never as hard constraints — a wiped-out domain falls back to a forced
// placement that accepts overlap, priced by scoring's conflict_penalty.
// num_search_workers independent variable orderings race concurrently; the
// lowest-scoring result wins.
type CPStyle struct{}

func (CPStyle) Name() string { return "cp_style" }

func (CPStyle) Run(idx domain.Index, cfg Config, seed int64, sink ProgressSink, cancel CancelToken) (Outcome, error) {
	maxTimeSeconds := cfg.Int("max_time_seconds", 60)
	numWorkers := cfg.Int("num_search_workers", 4)
	if numWorkers < 1 {
		numWorkers = 1
	}
	deadline := time.Now().Add(time.Duration(maxTimeSeconds) * time.Second)
	workerCancel := WithDeadline(cancel, deadline)

	order := sortedProjectIDs(idx)
	if len(order) == 0 {
		return Outcome{Status: StatusCompleted, Stats: ComputeStatistics(nil, idx)}, nil
	}

	type result struct {
		assignments []domain.Assignment
		score       float64
	}
	// Indexed by worker id rather than a completion-order channel: goroutine
	// finish order is not deterministic, and a channel-race pick would let a
	// tied score go to whichever worker happened to finish first, breaking
	// same-seed determinism. Each slot is written by exactly one goroutine
	// and read only after wg.Wait(), so no further synchronization is needed.
	results := make([]result, numWorkers)
	var wg sync.WaitGroup
	var done int32
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := newRand(seed + int64(workerID)*1_000_003)
			assignments := cpSearchOnce(idx, order, rng, workerCancel)
			score := scoring.Score(assignments, idx, cfg.Weights).Total
			results[workerID] = result{assignments, score}
			n := atomic.AddInt32(&done, 1)
			sink.Update(float64(n)/float64(numWorkers), "searching", "cp-style worker finished", nil)
		}(w)
	}
	wg.Wait()

	var best []domain.Assignment
	bestScore := 0.0
	first := true
	for _, r := range results {
		if first || r.score < bestScore {
			best, bestScore, first = r.assignments, r.score, false
		}
	}

	status := StatusCompleted
	if cancel.Cancelled() || time.Now().After(deadline) {
		status = StatusCancelled
	}

	sink.Update(1, "done", "cp-style search complete", nil)
	return Outcome{
		Assignments: best,
		Status:      status,
		Stats:       ComputeStatistics(best, idx),
	}, nil
}

// cpSearchOnce runs one propagation pass over a randomly shuffled project
// order, shrinking candidate domains as it goes.
func cpSearchOnce(idx domain.Index, order []int, rng *mrand.Rand, cancel CancelToken) []domain.Assignment {
	projects := make([]int, len(order))
	copy(projects, order)
	rng.Shuffle(len(projects), func(i, j int) { projects[i], projects[j] = projects[j], projects[i] })

	classroomSlotUsed := make(map[[2]int]bool)
	instructorSlotUsed := make(map[[2]int]bool)

	assignments := make([]domain.Assignment, 0, len(projects))
	for _, pid := range projects {
		p, ok := idx.ProjectByID[pid]
		if !ok {
			continue
		}

		// Once cancelled, stop propagating domains and force-assign the
		// remainder directly — every project still must be placed.
		var domainCells [][2]int
		if !cancel.Cancelled() {
			for _, t := range idx.TimeslotsByOrdinal {
				if instructorSlotUsed[[2]int{p.ResponsibleInstrID, t.ID}] {
					continue
				}
				for _, c := range idx.ClassroomsSorted {
					if classroomSlotUsed[[2]int{c.ID, t.ID}] {
						continue
					}
					domainCells = append(domainCells, [2]int{c.ID, t.ID})
				}
			}
		}

		var chosen [2]int
		if len(domainCells) > 0 {
			chosen = domainCells[rng.Intn(len(domainCells))]
		} else {
			// domain wipeout (or cancellation): force assign, accepting overlap.
			chosen = [2]int{idx.ClassroomsSorted[0].ID, idx.TimeslotsByOrdinal[0].ID}
		}

		jury := bestJuryExcluding(idx, p.ResponsibleInstrID, chosen[1], instructorSlotUsed)
		assignments = append(assignments, domain.Assignment{
			ProjectID:               p.ID,
			ClassroomID:             chosen[0],
			TimeslotID:              chosen[1],
			ResponsibleInstructorID: p.ResponsibleInstrID,
			JuryInstructorIDs:       jury,
			IsMakeup:                p.IsMakeup,
		})
		classroomSlotUsed[chosen] = true
		instructorSlotUsed[[2]int{p.ResponsibleInstrID, chosen[1]}] = true
		for _, j := range jury {
			instructorSlotUsed[[2]int{j, chosen[1]}] = true
		}
	}

	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ProjectID < assignments[j].ProjectID })
	return assignments
}

func bestJuryExcluding(idx domain.Index, respID, timeslotID int, used map[[2]int]bool) []int {
	bestFree, bestAny := -1, -1
	bestFreeRank, bestAnyRank := -1, -1
	for _, instr := range idx.InstructorsSorted {
		if instr.ID == respID {
			continue
		}
		rank := instructorRankWeight(instr.Rank)
		free := !used[[2]int{instr.ID, timeslotID}]
		if free && rank > bestFreeRank {
			bestFreeRank, bestFree = rank, instr.ID
		}
		if rank > bestAnyRank {
			bestAnyRank, bestAny = rank, instr.ID
		}
	}
	if bestFree != -1 {
		return []int{bestFree}
	}
	if bestAny != -1 {
		return []int{bestAny}
	}
	return nil
}

func instructorRankWeight(r domain.InstructorRank) int {
	switch r {
	case domain.RankFull:
		return 4
	case domain.RankAssociate:
		return 3
	case domain.RankAssistant:
		return 2
	case domain.RankResearch:
		return 1
	default:
		return 0
	}
}
