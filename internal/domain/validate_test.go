package domain

import "testing"

func sampleBundle() InputBundle {
	return InputBundle{
		Projects: []Project{
			{ID: 1, Title: "P1", ResponsibleInstrID: 10},
			{ID: 2, Title: "P2", ResponsibleInstrID: 20},
		},
		Instructors: []Instructor{
			{ID: 10, DisplayName: "A", Active: true},
			{ID: 20, DisplayName: "B", Active: true},
		},
		Classrooms: []Classroom{{ID: 100, Name: "C1", Capacity: 30, Active: true}},
		Timeslots: []Timeslot{
			{ID: 1000, Ordinal: 0, Start: "08:00"},
			{ID: 1001, Ordinal: 1, Start: "09:00"},
		},
	}
}

func TestValidateInput_OK(t *testing.T) {
	ok, fatals := ValidateInput(sampleBundle())
	if !ok || len(fatals) != 0 {
		t.Fatalf("expected ok bundle, got fatals=%v", fatals)
	}
}

func TestValidateInput_EmptyCollections(t *testing.T) {
	ok, fatals := ValidateInput(InputBundle{})
	if ok {
		t.Fatalf("expected empty bundle to be fatal")
	}
	if len(fatals) != 4 {
		t.Fatalf("expected 4 fatal violations (one per empty collection), got %d: %v", len(fatals), fatals)
	}
}

func TestValidateInput_UnknownResponsibleInstructor(t *testing.T) {
	b := sampleBundle()
	b.Projects[0].ResponsibleInstrID = 999
	ok, fatals := ValidateInput(b)
	if ok {
		t.Fatalf("expected fatal validation for unknown responsible instructor")
	}
	found := false
	for _, f := range fatals {
		if f.Reason != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a reason in fatal violation")
	}
}

func TestValidateInput_DuplicateIDs(t *testing.T) {
	b := sampleBundle()
	b.Instructors = append(b.Instructors, Instructor{ID: 10, DisplayName: "dup"})
	ok, fatals := ValidateInput(b)
	if ok || len(fatals) == 0 {
		t.Fatalf("expected duplicate instructor id to be fatal")
	}
}

func TestCheck_I4ClassroomDoubleBooking(t *testing.T) {
	b := sampleBundle()
	idx := BuildIndex(b)
	assignments := []Assignment{
		{ProjectID: 1, ClassroomID: 100, TimeslotID: 1000, ResponsibleInstructorID: 10, JuryInstructorIDs: []int{20}},
		{ProjectID: 2, ClassroomID: 100, TimeslotID: 1000, ResponsibleInstructorID: 20, JuryInstructorIDs: []int{10}},
	}
	report := Check(assignments, idx)
	foundI4 := false
	for _, v := range report.Violations {
		if v.Kind == ViolationI4ClassroomSlot {
			foundI4 = true
		}
	}
	if !foundI4 {
		t.Fatalf("expected I4 violation for double-booked classroom/timeslot, got %+v", report.Violations)
	}
}

func TestCheck_I5Gap(t *testing.T) {
	b := sampleBundle()
	b.Timeslots = append(b.Timeslots, Timeslot{ID: 1002, Ordinal: 2, Start: "10:00"})
	idx := BuildIndex(b)
	assignments := []Assignment{
		{ProjectID: 1, ClassroomID: 100, TimeslotID: 1000, ResponsibleInstructorID: 10, JuryInstructorIDs: []int{20}},
		{ProjectID: 2, ClassroomID: 100, TimeslotID: 1002, ResponsibleInstructorID: 10, JuryInstructorIDs: []int{20}},
	}
	report := Check(assignments, idx)
	foundGap := false
	for _, v := range report.Violations {
		if v.Kind == ViolationI5Consecutive {
			foundGap = true
		}
	}
	if !foundGap {
		t.Fatalf("expected I5 gap violation, got %+v", report.Violations)
	}
}

func TestResponsibleCounts(t *testing.T) {
	counts := ResponsibleCounts([]Project{
		{ID: 1, ResponsibleInstrID: 10},
		{ID: 2, ResponsibleInstrID: 10},
		{ID: 3, ResponsibleInstrID: 20},
	})
	if counts[10] != 2 || counts[20] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
