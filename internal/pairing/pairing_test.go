package pairing

import (
	"testing"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
)

func bundleWithCounts(counts []int) domain.InputBundle {
	var instructors []domain.Instructor
	var projects []domain.Project
	pid := 1
	for i, c := range counts {
		id := 100 + i
		instructors = append(instructors, domain.Instructor{ID: id, DisplayName: "x", Active: true})
		for k := 0; k < c; k++ {
			projects = append(projects, domain.Project{ID: pid, ResponsibleInstrID: id})
			pid++
		}
	}
	return domain.InputBundle{
		Instructors: instructors,
		Projects:    projects,
		Classrooms:  []domain.Classroom{{ID: 1, Capacity: 10, Active: true}},
		Timeslots:   []domain.Timeslot{{ID: 1, Ordinal: 0}},
	}
}

func TestCompute_ParitySplit(t *testing.T) {
	// counts [4,3,2,2,1] across 5 instructors (ids 100-104).
	bundle := bundleWithCounts([]int{4, 3, 2, 2, 1})
	idx := domain.BuildIndex(bundle)
	pairs, unpaired := Compute(idx)

	// Sorted descending by count, ties by id: 100(4),101(3),102(2),103(2),104(1)
	// upper = [100,101], lower=[102,103,104]
	// mirrored pairing: (100,104),(101,103); unpaired: 102 (spec §8 scenario 4)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %+v", len(pairs), pairs)
	}
	if pairs[0] != (Pair{Upper: 100, Lower: 104}) {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
	if pairs[1] != (Pair{Upper: 101, Lower: 103}) {
		t.Fatalf("unexpected second pair: %+v", pairs[1])
	}
	if len(unpaired) != 1 || unpaired[0] != 102 {
		t.Fatalf("expected instructor 102 unpaired, got %+v", unpaired)
	}
}

func TestCompute_EvenRoster(t *testing.T) {
	bundle := bundleWithCounts([]int{1, 1})
	idx := domain.BuildIndex(bundle)
	pairs, unpaired := Compute(idx)
	if len(pairs) != 1 || len(unpaired) != 0 {
		t.Fatalf("expected exactly one pair and no leftovers, got pairs=%+v unpaired=%+v", pairs, unpaired)
	}
}

func TestPartnerOf(t *testing.T) {
	pairs := []Pair{{Upper: 1, Lower: 2}, {Upper: 3, Lower: 4}}
	if p, ok := PartnerOf(pairs, 2); !ok || p != 1 {
		t.Fatalf("expected partner of 2 to be 1, got %d ok=%v", p, ok)
	}
	if _, ok := PartnerOf(pairs, 999); ok {
		t.Fatalf("expected no partner for unknown id")
	}
}
