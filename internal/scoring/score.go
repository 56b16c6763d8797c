package scoring

import (
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/pairing"
)

// Breakdown is the scalar total plus the per-component subtotals a caller
// needs to explain why one candidate schedule outscored another.
type Breakdown struct {
	LateTimeslotPenalty      float64
	GapPenalty               float64
	ClassroomChangePenalty   float64
	ConflictPenalty          float64
	PairingIncompletePenalty float64
	ConsecutiveReward        float64
	SameClassroomReward      float64
	JuryPairingReward        float64
	PerfectConsecutiveReward float64
	EarlyTimeslotReward      float64
	GapFreeReward            float64
	Total                    float64
}

// AsMap renders a Breakdown as a component-name -> float map plus "total",
// the shape a RunResult hands back to its caller.
func (b Breakdown) AsMap() map[string]float64 {
	return map[string]float64{
		"late_timeslot_penalty":      b.LateTimeslotPenalty,
		"gap_penalty":                b.GapPenalty,
		"classroom_change_penalty":   b.ClassroomChangePenalty,
		"conflict_penalty":           b.ConflictPenalty,
		"pairing_incomplete_penalty": b.PairingIncompletePenalty,
		"consecutive_reward":         b.ConsecutiveReward,
		"same_classroom_reward":      b.SameClassroomReward,
		"jury_pairing_reward":        b.JuryPairingReward,
		"perfect_consecutive_reward": b.PerfectConsecutiveReward,
		"early_timeslot_reward":      b.EarlyTimeslotReward,
		"gap_free_reward":            b.GapFreeReward,
		"total":                      b.Total,
	}
}

// Score evaluates a candidate Assignment set against idx using w. Lower is
// better. is_makeup never bypasses the late-timeslot penalty.
func Score(assignments []domain.Assignment, idx domain.Index, w Weights) Breakdown {
	var b Breakdown

	timeslotOrdinal := func(id int) (int, bool) {
		t, ok := idx.TimeslotByID[id]
		if !ok {
			return 0, false
		}
		return t.Ordinal, true
	}
	maxOrdinal := 0
	for _, t := range idx.Bundle.Timeslots {
		if t.Ordinal > maxOrdinal {
			maxOrdinal = t.Ordinal
		}
	}
	medianOrdinal := maxOrdinal / 2

	// Late / early timeslot components (per Assignment).
	for _, a := range assignments {
		t, ok := idx.TimeslotByID[a.TimeslotID]
		if !ok {
			continue
		}
		if isLate(t, w.LateCutoffHour) {
			b.LateTimeslotPenalty += w.LateTimeslotPenalty
		}
		if t.Ordinal <= medianOrdinal {
			b.EarlyTimeslotReward += w.EarlyTimeslotReward
		}
	}

	// Soft I3/I4 conflicts.
	report := domain.Check(assignments, idx)
	for _, v := range report.Violations {
		switch v.Kind {
		case domain.ViolationI3InstructorSlot, domain.ViolationI4ClassroomSlot:
			b.ConflictPenalty += w.ConflictPenalty
		}
	}

	// Per-instructor consecutive-grouping, classroom-change, and gap components.
	byInstructor := make(map[int][]domain.Assignment)
	for _, a := range assignments {
		byInstructor[a.ResponsibleInstructorID] = append(byInstructor[a.ResponsibleInstructorID], a)
	}
	for _, own := range byInstructor {
		sorted := append([]domain.Assignment(nil), own...)
		sort.Slice(sorted, func(i, j int) bool {
			oi, _ := timeslotOrdinal(sorted[i].TimeslotID)
			oj, _ := timeslotOrdinal(sorted[j].TimeslotID)
			return oi < oj
		})

		ordinals := make([]int, len(sorted))
		rooms := make([]int, len(sorted))
		distinctRooms := make(map[int]bool)
		for i, a := range sorted {
			ordinals[i], _ = timeslotOrdinal(a.TimeslotID)
			rooms[i] = a.ClassroomID
			distinctRooms[a.ClassroomID] = true
		}

		gapFree := true
		for i := 1; i < len(sorted); i++ {
			if ordinals[i]-ordinals[i-1] == 1 {
				b.ConsecutiveReward += w.ConsecutiveReward
				if rooms[i] == rooms[i-1] {
					b.SameClassroomReward += w.SameClassroomReward
				} else {
					b.ClassroomChangePenalty += w.ClassroomChangePenalty
				}
			} else if ordinals[i]-ordinals[i-1] > 1 {
				gaps := ordinals[i] - ordinals[i-1] - 1
				b.GapPenalty += w.GapPenalty * float64(gaps)
				gapFree = false
				if rooms[i] != rooms[i-1] {
					b.ClassroomChangePenalty += w.ClassroomChangePenalty
				}
			}
		}
		if gapFree && len(sorted) > 0 {
			b.GapFreeReward += w.GapFreeReward
		}
		if gapFree && len(distinctRooms) == 1 && len(sorted) > 0 {
			b.PerfectConsecutiveReward += w.PerfectConsecutiveReward
		}
	}

	// I6: bi-directional jury pairing, using the pairing derived purely from
	// the roster (see internal/pairing) so it is well-defined regardless of
	// which strategy produced the candidate set.
	pairs, _ := pairing.Compute(idx)
	juryOf := func(instrID int) map[int]int {
		counts := make(map[int]int)
		for _, a := range byInstructor[instrID] {
			for _, j := range a.JuryInstructorIDs {
				counts[j]++
			}
		}
		return counts
	}
	for _, pair := range pairs {
		upperOwn := byInstructor[pair.Upper]
		lowerOwn := byInstructor[pair.Lower]
		upperJury := juryOf(pair.Upper)
		lowerJury := juryOf(pair.Lower)

		upperListsLower := len(upperOwn) > 0 && upperJury[pair.Lower] == len(upperOwn)
		lowerListsUpper := len(lowerOwn) > 0 && lowerJury[pair.Upper] == len(lowerOwn)

		if upperListsLower && lowerListsUpper {
			b.JuryPairingReward += w.JuryPairingReward
		} else if len(upperOwn) > 0 || len(lowerOwn) > 0 {
			b.PairingIncompletePenalty += w.PairingIncompletePenalty
		}
	}

	b.Total = b.LateTimeslotPenalty + b.GapPenalty + b.ClassroomChangePenalty +
		b.ConflictPenalty + b.PairingIncompletePenalty + b.ConsecutiveReward +
		b.SameClassroomReward + b.JuryPairingReward + b.PerfectConsecutiveReward +
		b.EarlyTimeslotReward + b.GapFreeReward

	return b
}

// isLate reports whether t counts as a late timeslot under cutoffHour,
// recomputed from its Start clock-time so that an operator-configured
// cutoff actually changes scoring. Falls back to the precomputed IsLate
// flag when Start can't be parsed as "HH:MM".
func isLate(t domain.Timeslot, cutoffHour int) bool {
	hour, ok := startHour(t.Start)
	if !ok {
		return t.IsLate
	}
	return hour > cutoffHour
}

func startHour(start string) (int, bool) {
	h, _, found := strings.Cut(start, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	return hour, true
}

// TieBreakKey produces the deterministic tie-break tuple: fewer distinct
// classrooms, then fewer distinct timeslots, then lexicographically smaller
// sorted Assignment id sequence.
type TieBreakKey struct {
	DistinctClassrooms int
	DistinctTimeslots  int
	ProjectIDsSorted   []int
}

// ComputeTieBreakKey derives the key for a candidate Assignment set.
func ComputeTieBreakKey(assignments []domain.Assignment) TieBreakKey {
	rooms := make(map[int]bool)
	slots := make(map[int]bool)
	ids := make([]int, 0, len(assignments))
	for _, a := range assignments {
		rooms[a.ClassroomID] = true
		slots[a.TimeslotID] = true
		ids = append(ids, a.ProjectID)
	}
	sort.Ints(ids)
	return TieBreakKey{
		DistinctClassrooms: len(rooms),
		DistinctTimeslots:  len(slots),
		ProjectIDsSorted:   ids,
	}
}

// Less implements the full tie-break ordering: true if a should be preferred
// over b (a "wins" the tie).
func (a TieBreakKey) Less(b TieBreakKey) bool {
	if a.DistinctClassrooms != b.DistinctClassrooms {
		return a.DistinctClassrooms < b.DistinctClassrooms
	}
	if a.DistinctTimeslots != b.DistinctTimeslots {
		return a.DistinctTimeslots < b.DistinctTimeslots
	}
	n := len(a.ProjectIDsSorted)
	if len(b.ProjectIDsSorted) < n {
		n = len(b.ProjectIDsSorted)
	}
	for i := 0; i < n; i++ {
		if a.ProjectIDsSorted[i] != b.ProjectIDsSorted[i] {
			return a.ProjectIDsSorted[i] < b.ProjectIDsSorted[i]
		}
	}
	return len(a.ProjectIDsSorted) < len(b.ProjectIDsSorted)
}
