package constructor

import (
	"sort"
	"testing"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
)

func contiguousRun(t *testing.T, idx domain.Index, assignments []domain.Assignment, instrID int) []int {
	t.Helper()
	var ordinals []int
	for _, a := range assignments {
		if a.ResponsibleInstructorID != instrID {
			continue
		}
		ts, ok := idx.TimeslotByID[a.TimeslotID]
		if !ok {
			t.Fatalf("assignment references unknown timeslot %d", a.TimeslotID)
		}
		ordinals = append(ordinals, ts.Ordinal)
	}
	sort.Ints(ordinals)
	return ordinals
}

func isContiguous(ordinals []int) bool {
	for i := 1; i < len(ordinals); i++ {
		if ordinals[i]-ordinals[i-1] != 1 {
			return false
		}
	}
	return true
}

// Two instructors, one project each, one classroom, two timeslots: the
// simplest possible roster should produce a single contiguous pair with
// mutual jury coverage and no forced placements.
func TestBuild_TrivialSufficiency(t *testing.T) {
	bundle := domain.InputBundle{
		Projects: []domain.Project{
			{ID: 1, ResponsibleInstrID: 1},
			{ID: 2, ResponsibleInstrID: 2},
		},
		Instructors: []domain.Instructor{
			{ID: 1, DisplayName: "A", Active: true},
			{ID: 2, DisplayName: "B", Active: true},
		},
		Classrooms: []domain.Classroom{{ID: 1, Name: "C1", Capacity: 10, Active: true}},
		Timeslots: []domain.Timeslot{
			{ID: 1, Ordinal: 0, Start: "08:00"},
			{ID: 2, Ordinal: 1, Start: "09:00"},
		},
	}
	idx := domain.BuildIndex(bundle)
	assignments, stats := Build(idx)

	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if stats.NonContiguousPlacements != 0 || stats.ForcedDoubleBookings != 0 {
		t.Fatalf("expected no compromises, got %+v", stats)
	}

	byProject := make(map[int]domain.Assignment)
	for _, a := range assignments {
		byProject[a.ProjectID] = a
	}
	if byProject[1].ClassroomID != byProject[2].ClassroomID {
		t.Fatalf("expected both projects in the same classroom")
	}
	if byProject[1].ResponsibleInstructorID == 1 {
		for _, j := range byProject[1].JuryInstructorIDs {
			if j == 1 {
				t.Fatalf("instructor 1 must not be listed as jury on its own project")
			}
		}
	}
	report := domain.Check(assignments, idx)
	if len(report.Violations) != 0 {
		t.Fatalf("expected no soft violations, got %+v", report.Violations)
	}
}

// One instructor, three projects, three timeslots, with the third timeslot
// marked late: the run must still be placed contiguously even though it
// spills into the late slot.
func TestBuild_ForcedLateSlotStaysContiguous(t *testing.T) {
	bundle := domain.InputBundle{
		Projects: []domain.Project{
			{ID: 1, ResponsibleInstrID: 1},
			{ID: 2, ResponsibleInstrID: 1},
			{ID: 3, ResponsibleInstrID: 1},
		},
		Instructors: []domain.Instructor{
			{ID: 1, DisplayName: "A", Active: true},
			{ID: 2, DisplayName: "B", Active: true},
		},
		Classrooms: []domain.Classroom{{ID: 1, Capacity: 10, Active: true}},
		Timeslots: []domain.Timeslot{
			{ID: 1, Ordinal: 0, Start: "08:00"},
			{ID: 2, Ordinal: 1, Start: "09:00"},
			{ID: 3, Ordinal: 2, Start: "17:00", IsLate: true},
		},
	}
	idx := domain.BuildIndex(bundle)
	assignments, _ := Build(idx)

	ordinals := contiguousRun(t, idx, assignments, 1)
	if len(ordinals) != 3 {
		t.Fatalf("expected all 3 projects under instructor 1, got %d", len(ordinals))
	}
	if !isContiguous(ordinals) {
		t.Fatalf("expected a contiguous run, got ordinals %v", ordinals)
	}
}

// Five instructors with responsible counts [4,3,2,2,1]: instructors should
// split into mirrored pairs (100,104) and (101,103) — spec §8 scenario 4 —
// with 102 left unpaired and assigned jury by descending rank excluding
// itself.
func TestBuild_ParitySplitUnpairedGetsRankedJury(t *testing.T) {
	mkInstr := func(id int, rank domain.InstructorRank) domain.Instructor {
		return domain.Instructor{ID: id, DisplayName: "x", Rank: rank, Active: true}
	}
	var projects []domain.Project
	pid := 1
	counts := map[int]int{100: 4, 101: 3, 102: 2, 103: 2, 104: 1}
	for _, id := range []int{100, 101, 102, 103, 104} {
		for k := 0; k < counts[id]; k++ {
			projects = append(projects, domain.Project{ID: pid, ResponsibleInstrID: id})
			pid++
		}
	}
	bundle := domain.InputBundle{
		Projects: projects,
		Instructors: []domain.Instructor{
			mkInstr(100, domain.RankAssistant),
			mkInstr(101, domain.RankAssistant),
			mkInstr(102, domain.RankAssociate),
			mkInstr(103, domain.RankFull),
			mkInstr(104, domain.RankAssistant),
		},
		Classrooms: []domain.Classroom{
			{ID: 1, Capacity: 10, Active: true},
			{ID: 2, Capacity: 10, Active: true},
			{ID: 3, Capacity: 10, Active: true},
		},
		Timeslots: func() []domain.Timeslot {
			var ts []domain.Timeslot
			for i := 0; i < 12; i++ {
				ts = append(ts, domain.Timeslot{ID: i + 1, Ordinal: i})
			}
			return ts
		}(),
	}
	idx := domain.BuildIndex(bundle)
	assignments, _ := Build(idx)

	if len(assignments) != len(projects) {
		t.Fatalf("expected every project placed, got %d of %d", len(assignments), len(projects))
	}

	// Instructor 102's single project must list a jury member other than itself:
	// 102 is the unpaired instructor under the mirrored (100,104)/(101,103) split.
	for _, a := range assignments {
		if a.ResponsibleInstructorID == 102 {
			if len(a.JuryInstructorIDs) == 0 {
				t.Fatalf("expected unpaired instructor's project to have a jury assigned")
			}
			for _, j := range a.JuryInstructorIDs {
				if j == 102 {
					t.Fatalf("instructor 102 must not jury its own project")
				}
			}
		}
	}

	// 100 and 104 are mirrored partners: bi-directional jury should hold.
	byInstr := make(map[int][]domain.Assignment)
	for _, a := range assignments {
		byInstr[a.ResponsibleInstructorID] = append(byInstr[a.ResponsibleInstructorID], a)
	}
	for _, a := range byInstr[100] {
		if !containsInt(a.JuryInstructorIDs, 104) {
			t.Fatalf("expected 100's project to list partner 104 in jury, got %+v", a.JuryInstructorIDs)
		}
	}
	for _, a := range byInstr[104] {
		if !containsInt(a.JuryInstructorIDs, 100) {
			t.Fatalf("expected 104's project to list partner 100 in jury, got %+v", a.JuryInstructorIDs)
		}
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// The constructor must never drop a project even when capacity is
// impossibly tight (one classroom, fewer timeslots than needed projects).
func TestBuild_NeverDropsAProjectUnderTightCapacity(t *testing.T) {
	var projects []domain.Project
	for i := 1; i <= 5; i++ {
		projects = append(projects, domain.Project{ID: i, ResponsibleInstrID: 1})
	}
	bundle := domain.InputBundle{
		Projects:    projects,
		Instructors: []domain.Instructor{{ID: 1, DisplayName: "A", Active: true}, {ID: 2, DisplayName: "B", Active: true}},
		Classrooms:  []domain.Classroom{{ID: 1, Capacity: 10, Active: true}},
		Timeslots: []domain.Timeslot{
			{ID: 1, Ordinal: 0}, {ID: 2, Ordinal: 1}, {ID: 3, Ordinal: 2},
		},
	}
	idx := domain.BuildIndex(bundle)
	assignments, stats := Build(idx)

	if len(assignments) != 5 {
		t.Fatalf("expected all 5 projects placed despite tight capacity, got %d", len(assignments))
	}
	if stats.ForcedDoubleBookings == 0 {
		t.Fatalf("expected at least one forced double-booking to be recorded")
	}
}
