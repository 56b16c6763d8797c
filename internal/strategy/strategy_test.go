package strategy

import (
	"reflect"
	"testing"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

func mediumBundle() domain.InputBundle {
	var projects []domain.Project
	pid := 1
	for _, pair := range []struct{ id, count int }{{1, 2}, {2, 2}, {3, 2}, {4, 2}} {
		for k := 0; k < pair.count; k++ {
			projects = append(projects, domain.Project{ID: pid, ResponsibleInstrID: pair.id})
			pid++
		}
	}
	var instructors []domain.Instructor
	for i := 1; i <= 4; i++ {
		instructors = append(instructors, domain.Instructor{ID: i, DisplayName: "x", Active: true})
	}
	var classrooms []domain.Classroom
	for i := 1; i <= 2; i++ {
		classrooms = append(classrooms, domain.Classroom{ID: i, Capacity: 10, Active: true})
	}
	var timeslots []domain.Timeslot
	for i := 0; i < 8; i++ {
		timeslots = append(timeslots, domain.Timeslot{ID: i + 1, Ordinal: i})
	}
	return domain.InputBundle{Projects: projects, Instructors: instructors, Classrooms: classrooms, Timeslots: timeslots}
}

func assertAllProjectsPlaced(t *testing.T, bundle domain.InputBundle, assignments []domain.Assignment) {
	t.Helper()
	if len(assignments) != len(bundle.Projects) {
		t.Fatalf("expected %d assignments, got %d", len(bundle.Projects), len(assignments))
	}
	seen := make(map[int]bool)
	for _, a := range assignments {
		if seen[a.ProjectID] {
			t.Fatalf("project %d assigned more than once", a.ProjectID)
		}
		seen[a.ProjectID] = true
		for _, j := range a.JuryInstructorIDs {
			if j == a.ResponsibleInstructorID {
				t.Fatalf("project %d lists its own responsible instructor as jury", a.ProjectID)
			}
		}
	}
}

func TestEarliestFirst_PrefixProperty(t *testing.T) {
	bundle := domain.InputBundle{
		Projects: []domain.Project{
			{ID: 1, ResponsibleInstrID: 1}, {ID: 2, ResponsibleInstrID: 1},
			{ID: 3, ResponsibleInstrID: 2}, {ID: 4, ResponsibleInstrID: 2},
		},
		Instructors: []domain.Instructor{
			{ID: 1, DisplayName: "A", Active: true},
			{ID: 2, DisplayName: "B", Active: true},
		},
		Classrooms: []domain.Classroom{{ID: 1, Capacity: 10, Active: true}},
		Timeslots: []domain.Timeslot{
			{ID: 1, Ordinal: 0}, {ID: 2, Ordinal: 1}, {ID: 3, Ordinal: 2}, {ID: 4, Ordinal: 3},
		},
	}
	idx := domain.BuildIndex(bundle)
	out, err := EarliestFirst{}.Run(idx, Config{Weights: scoring.DefaultWeights()}, 1, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAllProjectsPlaced(t, bundle, out.Assignments)

	byClassroom := make(map[int][]int)
	for _, a := range out.Assignments {
		ts := idx.TimeslotByID[a.TimeslotID]
		byClassroom[a.ClassroomID] = append(byClassroom[a.ClassroomID], ts.Ordinal)
	}
	for room, ordinals := range byClassroom {
		sortInts(ordinals)
		for i, o := range ordinals {
			if o != i {
				t.Fatalf("classroom %d occupied ordinals %v are not a gap-free prefix", room, ordinals)
			}
		}
	}
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func TestGenetic_DeterministicWithSeed(t *testing.T) {
	bundle := mediumBundle()
	idx := domain.BuildIndex(bundle)
	cfg := Config{Weights: scoring.DefaultWeights(), Params: map[string]float64{"population_size": 10, "generations": 5}}

	out1, err := Genetic{}.Run(idx, cfg, 42, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := Genetic{}.Run(idx, cfg, 42, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAllProjectsPlaced(t, bundle, out1.Assignments)
	if !reflect.DeepEqual(out1.Assignments, out2.Assignments) {
		t.Fatalf("expected identical assignments for identical seed, got:\n%+v\nvs\n%+v", out1.Assignments, out2.Assignments)
	}
}

func TestSimulatedAnnealing_DeterministicWithSeed(t *testing.T) {
	bundle := mediumBundle()
	idx := domain.BuildIndex(bundle)
	cfg := Config{Weights: scoring.DefaultWeights(), Params: map[string]float64{"iterations": 50}}

	out1, err := SimulatedAnnealing{}.Run(idx, cfg, 7, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := SimulatedAnnealing{}.Run(idx, cfg, 7, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAllProjectsPlaced(t, bundle, out1.Assignments)
	if !reflect.DeepEqual(out1.Assignments, out2.Assignments) {
		t.Fatalf("expected identical assignments for identical seed")
	}
}

func TestTabuSearch_DeterministicWithSeed(t *testing.T) {
	bundle := mediumBundle()
	idx := domain.BuildIndex(bundle)
	cfg := Config{Weights: scoring.DefaultWeights(), Params: map[string]float64{"max_iterations": 50}}

	out1, err := TabuSearch{}.Run(idx, cfg, 99, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := TabuSearch{}.Run(idx, cfg, 99, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAllProjectsPlaced(t, bundle, out1.Assignments)
	if !reflect.DeepEqual(out1.Assignments, out2.Assignments) {
		t.Fatalf("expected identical assignments for identical seed")
	}
}

func TestLexicographic_NeverDropsAProject(t *testing.T) {
	bundle := mediumBundle()
	idx := domain.BuildIndex(bundle)
	cfg := Config{Weights: scoring.DefaultWeights(), Params: map[string]float64{"time_limit_seconds": 1}}
	out, err := Lexicographic{}.Run(idx, cfg, 3, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAllProjectsPlaced(t, bundle, out.Assignments)
}

func TestCPStyle_NeverDropsAProject(t *testing.T) {
	bundle := mediumBundle()
	idx := domain.BuildIndex(bundle)
	cfg := Config{Weights: scoring.DefaultWeights(), Params: map[string]float64{"max_time_seconds": 2, "num_search_workers": 3}}
	out, err := CPStyle{}.Run(idx, cfg, 11, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAllProjectsPlaced(t, bundle, out.Assignments)
}

func TestCPStyle_DeterministicWithSeed(t *testing.T) {
	bundle := mediumBundle()
	idx := domain.BuildIndex(bundle)
	cfg := Config{Weights: scoring.DefaultWeights(), Params: map[string]float64{"max_time_seconds": 2, "num_search_workers": 4}}

	out1, err := CPStyle{}.Run(idx, cfg, 11, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := CPStyle{}.Run(idx, cfg, 11, NullSink, NoCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAllProjectsPlaced(t, bundle, out1.Assignments)
	if !reflect.DeepEqual(out1.Assignments, out2.Assignments) {
		t.Fatalf("expected identical assignments for identical seed across concurrent cp-style workers")
	}
}

// P5: three consecutive DP runs with no explicit seed should disagree on at
// least half of the projects' (classroom, timeslot) cell across the runs.
func TestDPPairing_DiversityAcrossRuns(t *testing.T) {
	bundle := mediumBundle()
	idx := domain.BuildIndex(bundle)
	cfg := Config{Weights: scoring.DefaultWeights()}

	type cell struct{ classroom, timeslot int }
	runs := make([]map[int]cell, 3)
	for r := 0; r < 3; r++ {
		out, err := DPPairing{}.Run(idx, cfg, 0, NullSink, NoCancel)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertAllProjectsPlaced(t, bundle, out.Assignments)
		cells := make(map[int]cell)
		for _, a := range out.Assignments {
			cells[a.ProjectID] = cell{a.ClassroomID, a.TimeslotID}
		}
		runs[r] = cells
	}

	varying := 0
	for _, p := range bundle.Projects {
		seen := make(map[cell]bool)
		for _, run := range runs {
			seen[run[p.ID]] = true
		}
		if len(seen) >= 2 {
			varying++
		}
	}
	if float64(varying) < 0.5*float64(len(bundle.Projects)) {
		t.Fatalf("expected at least 50%% of projects to vary cell across DP runs, got %d of %d", varying, len(bundle.Projects))
	}
}

func TestCompositeSeed_VariesAcrossCalls(t *testing.T) {
	a := CompositeSeed("x")
	b := CompositeSeed("x")
	if a == b {
		t.Fatalf("expected composite seeds to differ across calls even with identical identity, got %d twice", a)
	}
}
