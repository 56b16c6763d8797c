package strategy

import (
	mrand "math/rand"
	"sort"
	"strconv"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
)

// sortedProjectIDs returns every project id in ascending order, giving every
// strategy a stable vector representation of a candidate assignment set.
func sortedProjectIDs(idx domain.Index) []int {
	ids := make([]int, 0, len(idx.Bundle.Projects))
	for _, p := range idx.Bundle.Projects {
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)
	return ids
}

// orderByProjectID re-slices assignments into the order given by order,
// indexed by project id.
func orderByProjectID(assignments []domain.Assignment, order []int) []domain.Assignment {
	byID := make(map[int]domain.Assignment, len(assignments))
	for _, a := range assignments {
		byID[a.ProjectID] = a
	}
	out := make([]domain.Assignment, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out
}

// cloneIndividual deep-copies an ordered assignment vector so mutation of
// the copy never touches the parent.
func cloneIndividual(ind []domain.Assignment) []domain.Assignment {
	out := make([]domain.Assignment, len(ind))
	copy(out, ind)
	for i := range out {
		out[i].JuryInstructorIDs = append([]int(nil), out[i].JuryInstructorIDs...)
	}
	return out
}

// randomCell draws a uniformly random (classroom, timeslot) pair from idx.
func randomCell(idx domain.Index, rng *mrand.Rand) (classroomID, timeslotID int) {
	c := idx.ClassroomsSorted[rng.Intn(len(idx.ClassroomsSorted))]
	t := idx.TimeslotsByOrdinal[rng.Intn(len(idx.TimeslotsByOrdinal))]
	return c.ID, t.ID
}

// swapCells exchanges the (classroom, timeslot) cell between two positions
// in ind, leaving responsible instructor and jury untouched.
func swapCells(ind []domain.Assignment, i, j int) {
	ind[i].ClassroomID, ind[j].ClassroomID = ind[j].ClassroomID, ind[i].ClassroomID
	ind[i].TimeslotID, ind[j].TimeslotID = ind[j].TimeslotID, ind[i].TimeslotID
}

// relocate moves the project at position i to a freshly drawn random cell.
func relocate(ind []domain.Assignment, i int, idx domain.Index, rng *mrand.Rand) {
	c, t := randomCell(idx, rng)
	ind[i].ClassroomID = c
	ind[i].TimeslotID = t
}

// randomMove applies either a swap or a relocate (uniformly chosen) to a
// fresh clone of ind at a random position (or pair of positions), and
// returns the mutated clone alongside a key identifying the move so callers
// can track it in a tabu list or frequency table.
func randomMove(ind []domain.Assignment, idx domain.Index, rng *mrand.Rand) (neighbor []domain.Assignment, moveKey string) {
	neighbor = cloneIndividual(ind)
	if len(neighbor) == 0 {
		return neighbor, ""
	}
	if len(neighbor) > 1 && rng.Intn(2) == 0 {
		i := rng.Intn(len(neighbor))
		j := rng.Intn(len(neighbor))
		for j == i {
			j = rng.Intn(len(neighbor))
		}
		swapCells(neighbor, i, j)
		return neighbor, moveKeySwap(ind[i].ProjectID, ind[j].ProjectID)
	}
	i := rng.Intn(len(neighbor))
	relocate(neighbor, i, idx, rng)
	return neighbor, moveKeyRelocate(ind[i].ProjectID, neighbor[i].ClassroomID, neighbor[i].TimeslotID)
}

func moveKeySwap(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return "swap:" + strconv.Itoa(a) + ":" + strconv.Itoa(b)
}

func moveKeyRelocate(project, classroom, timeslot int) string {
	return "relocate:" + strconv.Itoa(project) + ":" + strconv.Itoa(classroom) + ":" + strconv.Itoa(timeslot)
}
