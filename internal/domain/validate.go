package domain

import "fmt"

// FatalViolation describes an input-bundle defect severe enough to refuse a run.
type FatalViolation struct {
	Reason string
}

func (v FatalViolation) String() string { return v.Reason }

// ValidateInput runs the fatal, read-time validations: unknown foreign
// keys, duplicate ids, empty collections, and a project whose responsible
// instructor does not exist. It never mutates the bundle.
func ValidateInput(bundle InputBundle) (ok bool, fatals []FatalViolation) {
	if len(bundle.Projects) == 0 {
		fatals = append(fatals, FatalViolation{"no projects in input bundle"})
	}
	if len(bundle.Instructors) == 0 {
		fatals = append(fatals, FatalViolation{"no instructors in input bundle"})
	}
	if len(bundle.Classrooms) == 0 {
		fatals = append(fatals, FatalViolation{"no classrooms in input bundle"})
	}
	if len(bundle.Timeslots) == 0 {
		fatals = append(fatals, FatalViolation{"no timeslots in input bundle"})
	}
	if len(fatals) > 0 {
		return false, fatals
	}

	seenProject := make(map[int]bool, len(bundle.Projects))
	for _, p := range bundle.Projects {
		if seenProject[p.ID] {
			fatals = append(fatals, FatalViolation{fmt.Sprintf("duplicate project id %d", p.ID)})
		}
		seenProject[p.ID] = true
	}

	seenInstr := make(map[int]bool, len(bundle.Instructors))
	for _, i := range bundle.Instructors {
		if seenInstr[i.ID] {
			fatals = append(fatals, FatalViolation{fmt.Sprintf("duplicate instructor id %d", i.ID)})
		}
		seenInstr[i.ID] = true
	}

	seenRoom := make(map[int]bool, len(bundle.Classrooms))
	for _, c := range bundle.Classrooms {
		if seenRoom[c.ID] {
			fatals = append(fatals, FatalViolation{fmt.Sprintf("duplicate classroom id %d", c.ID)})
		}
		seenRoom[c.ID] = true
	}

	seenSlot := make(map[int]bool, len(bundle.Timeslots))
	seenOrdinal := make(map[int]bool, len(bundle.Timeslots))
	for _, t := range bundle.Timeslots {
		if seenSlot[t.ID] {
			fatals = append(fatals, FatalViolation{fmt.Sprintf("duplicate timeslot id %d", t.ID)})
		}
		seenSlot[t.ID] = true
		if seenOrdinal[t.Ordinal] {
			fatals = append(fatals, FatalViolation{fmt.Sprintf("duplicate timeslot ordinal %d", t.Ordinal)})
		}
		seenOrdinal[t.Ordinal] = true
	}

	for _, p := range bundle.Projects {
		if !seenInstr[p.ResponsibleInstrID] {
			fatals = append(fatals, FatalViolation{fmt.Sprintf("project %d has unknown responsible instructor %d", p.ID, p.ResponsibleInstrID)})
		}
	}

	return len(fatals) == 0, fatals
}

// ViolationKind names which invariant a Violation reports against.
type ViolationKind string

const (
	ViolationI3InstructorSlot ViolationKind = "I3_instructor_per_slot"
	ViolationI4ClassroomSlot  ViolationKind = "I4_classroom_per_slot"
	ViolationI5Consecutive    ViolationKind = "I5_paired_consecutive"
	ViolationI6BiDirectional  ViolationKind = "I6_bidirectional_jury"
	ViolationI7EarliestFirst  ViolationKind = "I7_earliest_first"
)

// Violation carries enough context for the scoring engine to price it.
type Violation struct {
	Kind         ViolationKind
	InstructorID int
	TimeslotID   int
	ClassroomID  int
	Detail       string
}

// Report enumerates every soft-invariant violation found in an Assignment set.
// I1 (unique project) and I2 (no self-jury) are enforced structurally by the
// constructor/strategies and are not double-counted here. I3 is reported
// here as a soft violation; ValidateInput does not check it, since an input
// bundle carries no assignments.
type Report struct {
	Violations []Violation
}

// Check walks an Assignment set against I3, I4 and I5 using the supplied
// Index for O(1) entity lookups; it reports no I6 or I7 violations. It
// never mutates assignments or the index.
func Check(assignments []Assignment, idx Index) Report {
	var report Report

	// I3: instructor per-slot uniqueness (responsible + jury).
	type slotKey struct {
		instr, timeslot int
	}
	occupancy := make(map[slotKey]int)
	for _, a := range assignments {
		occupancy[slotKey{a.ResponsibleInstructorID, a.TimeslotID}]++
		for _, j := range a.JuryInstructorIDs {
			occupancy[slotKey{j, a.TimeslotID}]++
		}
	}
	for key, count := range occupancy {
		if count > 1 {
			report.Violations = append(report.Violations, Violation{
				Kind:         ViolationI3InstructorSlot,
				InstructorID: key.instr,
				TimeslotID:   key.timeslot,
				Detail:       fmt.Sprintf("instructor %d booked %d times in timeslot %d", key.instr, count, key.timeslot),
			})
		}
	}

	// I4: classroom per-slot uniqueness.
	type roomSlotKey struct {
		room, timeslot int
	}
	roomOccupancy := make(map[roomSlotKey][]int)
	for _, a := range assignments {
		k := roomSlotKey{a.ClassroomID, a.TimeslotID}
		roomOccupancy[k] = append(roomOccupancy[k], a.ProjectID)
	}
	for key, projects := range roomOccupancy {
		if len(projects) > 1 {
			report.Violations = append(report.Violations, Violation{
				Kind:        ViolationI4ClassroomSlot,
				ClassroomID: key.room,
				TimeslotID:  key.timeslot,
				Detail:      fmt.Sprintf("classroom %d double-booked in timeslot %d by projects %v", key.room, key.timeslot, projects),
			})
		}
	}

	// I5: per-instructor single-classroom and contiguous-run checks.
	byInstructor := make(map[int][]Assignment)
	for _, a := range assignments {
		byInstructor[a.ResponsibleInstructorID] = append(byInstructor[a.ResponsibleInstructorID], a)
	}
	for instrID, own := range byInstructor {
		ordinals := make([]int, 0, len(own))
		rooms := make(map[int]bool)
		for _, a := range own {
			if t, ok := idx.TimeslotByID[a.TimeslotID]; ok {
				ordinals = append(ordinals, t.Ordinal)
			}
			rooms[a.ClassroomID] = true
		}
		sortInts(ordinals)
		if len(rooms) > 1 {
			report.Violations = append(report.Violations, Violation{
				Kind:         ViolationI5Consecutive,
				InstructorID: instrID,
				Detail:       fmt.Sprintf("instructor %d spans %d classrooms", instrID, len(rooms)),
			})
		}
		for i := 1; i < len(ordinals); i++ {
			if ordinals[i]-ordinals[i-1] > 1 {
				report.Violations = append(report.Violations, Violation{
					Kind:         ViolationI5Consecutive,
					InstructorID: instrID,
					Detail:       fmt.Sprintf("instructor %d has a gap between ordinals %d and %d", instrID, ordinals[i-1], ordinals[i]),
				})
			}
		}
	}

	// I6 (bi-directional jury) and I7 (earliest-first) are not checked here.
	// scoring.Score prices bi-directional jury coverage itself, using the
	// pairing from internal/pairing.

	return report
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
