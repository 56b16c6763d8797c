// Package constructor implements the Paired-Consecutive Constructor, spec
// §4.3 — the domain's signature rule and the builder every strategy either
// calls directly (Earliest-First) or bootstraps from (GA/SA/Tabu/CP/Lex/DP).
package constructor

import (
	"sort"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/pairing"
)

// Stats reports how much the build had to compromise.
type Stats struct {
	NonContiguousPlacements int
	ForcedDoubleBookings    int
}

var rankWeight = map[domain.InstructorRank]int{
	domain.RankFull:      4,
	domain.RankAssociate: 3,
	domain.RankAssistant: 2,
	domain.RankResearch:  1,
}

// Build runs the full pairing-then-placement algorithm and never fails to
// place a project — infeasibility degrades to non-contiguous or
// force-assigned placement, never to a dropped project.
func Build(idx domain.Index) ([]domain.Assignment, Stats) {
	st := newState(idx)

	pairs, unpairedIDs := pairing.Compute(idx)
	for _, pair := range pairs {
		st.placePair(pair.Upper, pair.Lower)
	}
	// Step 5: unpaired instructors scheduled after all pairs, same earliest-first rule.
	for _, id := range unpairedIDs {
		st.placeUnpaired(id)
	}

	return st.assignments, st.stats
}

type state struct {
	idx                 domain.Index
	projectsByInstr     map[int][]domain.Project
	timeslots           []domain.Timeslot // ordered by ordinal
	classrooms          []domain.Classroom // ordered by id
	classroomSlotUsed   map[[2]int]bool    // [classroomID, timeslotID] -> occupied
	instructorSlotUsed  map[[2]int]bool    // [instructorID, timeslotID] -> occupied (responsible or jury)
	classroomUsageCount map[int]int
	instructorRooms     map[int]map[int]bool
	lastClassroomID     int
	assignments         []domain.Assignment
	stats               Stats
}

func newState(idx domain.Index) *state {
	byInstr := make(map[int][]domain.Project)
	for _, p := range idx.Bundle.Projects {
		byInstr[p.ResponsibleInstrID] = append(byInstr[p.ResponsibleInstrID], p)
	}
	for id := range byInstr {
		sort.Slice(byInstr[id], func(i, j int) bool { return byInstr[id][i].ID < byInstr[id][j].ID })
	}
	return &state{
		idx:                 idx,
		projectsByInstr:     byInstr,
		timeslots:           idx.TimeslotsByOrdinal,
		classrooms:          idx.ClassroomsSorted,
		classroomSlotUsed:   make(map[[2]int]bool),
		instructorSlotUsed:  make(map[[2]int]bool),
		classroomUsageCount: make(map[int]int),
		instructorRooms:     make(map[int]map[int]bool),
	}
}

// placePair implements step 4: choose a classroom, place X contiguous then Y
// immediately after in the same room if possible, bi-directional jury.
func (s *state) placePair(x, y int) {
	xProjects := s.projectsByInstr[x]
	yProjects := s.projectsByInstr[y]
	total := len(xProjects) + len(yProjects)
	if total == 0 {
		return
	}

	for _, roomID := range s.classroomCandidatesByScore(x, y) {
		start, ok := s.findEarliestRun(roomID, []int{x, y}, total)
		if !ok {
			continue
		}
		s.placeRun(roomID, xProjects, start, x, []int{y})
		s.placeRun(roomID, yProjects, start+len(xProjects), y, []int{x})
		return
	}

	// Fallback: no classroom holds the pair's whole run, so place each project
	// in the earliest free cell, force-assigning into an occupied cell when
	// none is free. Never drop a project.
	s.placeNonContiguous(xProjects, x, []int{y})
	s.placeNonContiguous(yProjects, y, []int{x})
}

func (s *state) placeUnpaired(id int) {
	projects := s.projectsByInstr[id]
	if len(projects) == 0 {
		return
	}
	for _, roomID := range s.classroomCandidatesByScore(id, 0) {
		start, ok := s.findEarliestRun(roomID, []int{id}, len(projects))
		if ok {
			jury := s.pickJuryForRun(id, roomID, start, len(projects))
			s.placeRunWithPerProjectJury(roomID, projects, start, id, jury)
			return
		}
	}
	jury := s.pickJurySimple(id)
	s.placeNonContiguous(projects, id, jury)
}

// classroomCandidatesByScore ranks classrooms by a multi-criteria fit score
// (consecutive-grouping bonus, uniform-usage bonus, capacity fit, recency
// bias), ties broken by smallest id.
func (s *state) classroomCandidatesByScore(x, y int) []int {
	type scored struct {
		id    int
		score float64
	}
	list := make([]scored, 0, len(s.classrooms))
	maxUsage := 1
	for _, c := range s.classrooms {
		if u := s.classroomUsageCount[c.ID]; u > maxUsage {
			maxUsage = u
		}
	}
	for _, c := range s.classrooms {
		score := 0.0
		if s.instructorRooms[x] != nil && s.instructorRooms[x][c.ID] {
			score += 3.0
		}
		if y != 0 && s.instructorRooms[y] != nil && s.instructorRooms[y][c.ID] {
			score += 3.0
		}
		// Uniform-usage bonus: less-used rooms score higher.
		score += 2.0 * (1.0 - float64(s.classroomUsageCount[c.ID])/float64(maxUsage+1))
		// Capacity fit: larger rooms get a small, capped bonus.
		cap := c.Capacity
		if cap > 50 {
			cap = 50
		}
		score += float64(cap) / 50.0
		// Recency bias: mild preference for the most recently used room.
		if c.ID == s.lastClassroomID {
			score += 0.5
		}
		list = append(list, scored{c.ID, score})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].id < list[j].id
	})
	ids := make([]int, len(list))
	for i, e := range list {
		ids[i] = e.id
	}
	return ids
}

// findEarliestRun finds the earliest window of runLength consecutive
// timeslots (by ordinal position) in roomID where both the classroom and
// every instructor in instructorIDs are free.
func (s *state) findEarliestRun(roomID int, instructorIDs []int, runLength int) (startIdx int, ok bool) {
	if runLength == 0 || runLength > len(s.timeslots) {
		return 0, false
	}
	for start := 0; start+runLength <= len(s.timeslots); start++ {
		free := true
		for k := 0; k < runLength; k++ {
			ts := s.timeslots[start+k]
			if s.classroomSlotUsed[[2]int{roomID, ts.ID}] {
				free = false
				break
			}
			for _, instr := range instructorIDs {
				if s.instructorSlotUsed[[2]int{instr, ts.ID}] {
					free = false
					break
				}
			}
			if !free {
				break
			}
		}
		if free {
			return start, true
		}
	}
	return 0, false
}

// placeRun places projects contiguously starting at timeslot index start in
// roomID for responsible instructor respID, listing jury on every Assignment.
func (s *state) placeRun(roomID int, projects []domain.Project, start, respID int, jury []int) {
	for i, p := range projects {
		ts := s.timeslots[start+i]
		s.commit(p, roomID, ts.ID, respID, append([]int(nil), jury...))
	}
}

func (s *state) placeRunWithPerProjectJury(roomID int, projects []domain.Project, start, respID int, juryPerProject [][]int) {
	for i, p := range projects {
		ts := s.timeslots[start+i]
		var jury []int
		if i < len(juryPerProject) {
			jury = juryPerProject[i]
		}
		s.commit(p, roomID, ts.ID, respID, jury)
	}
}

// pickJuryForRun picks, per project in the run, the best available
// non-self jury instructor (descending rank, ascending id on ties).
func (s *state) pickJuryForRun(respID, roomID, start, runLength int) [][]int {
	out := make([][]int, runLength)
	for i := 0; i < runLength; i++ {
		ts := s.timeslots[start+i]
		out[i] = []int{s.bestJuryCandidate(respID, ts.ID)}
	}
	return out
}

func (s *state) pickJurySimple(respID int) []int {
	return []int{s.bestJuryCandidate(respID, 0)}
}

// bestJuryCandidate returns the highest-ranked, lowest-id instructor other
// than respID, preferring one free at timeslotID (0 = no slot constraint).
func (s *state) bestJuryCandidate(respID, timeslotID int) int {
	bestFree, bestAny := -1, -1
	bestFreeRank, bestAnyRank := -1, -1
	for _, instr := range s.idx.InstructorsSorted {
		if instr.ID == respID {
			continue
		}
		rank := rankWeight[instr.Rank]
		free := timeslotID == 0 || !s.instructorSlotUsed[[2]int{instr.ID, timeslotID}]
		if free && rank > bestFreeRank {
			bestFreeRank = rank
			bestFree = instr.ID
		}
		if rank > bestAnyRank {
			bestAnyRank = rank
			bestAny = instr.ID
		}
	}
	if bestFree != -1 {
		return bestFree
	}
	return bestAny
}

// placeNonContiguous force-assigns every remaining project for respID one at
// a time, preferring free cells but overlapping (soft conflict) rather than
// failing. Used only when a contiguous run could not be found anywhere.
func (s *state) placeNonContiguous(projects []domain.Project, respID int, jury []int) {
	for _, p := range projects {
		roomID, tsID, forced := s.bestSingleCell(respID)
		myJury := jury
		if myJury == nil {
			myJury = []int{s.bestJuryCandidate(respID, tsID)}
		}
		if forced {
			s.stats.ForcedDoubleBookings++
		}
		s.stats.NonContiguousPlacements++
		s.commit(p, roomID, tsID, respID, myJury)
	}
}

// bestSingleCell finds the earliest free (classroom, timeslot) cell for
// respID; if none is free, it force-assigns into the first classroom at the
// earliest timeslot where respID is not yet booked (or the first timeslot).
func (s *state) bestSingleCell(respID int) (roomID, timeslotID int, forced bool) {
	for _, ts := range s.timeslots {
		if s.instructorSlotUsed[[2]int{respID, ts.ID}] {
			continue
		}
		for _, c := range s.classrooms {
			if !s.classroomSlotUsed[[2]int{c.ID, ts.ID}] {
				return c.ID, ts.ID, false
			}
		}
	}
	// Nothing fully free: force into the first classroom/timeslot pair,
	// preferring a timeslot where this instructor isn't already double-booked.
	for _, ts := range s.timeslots {
		if !s.instructorSlotUsed[[2]int{respID, ts.ID}] {
			return s.classrooms[0].ID, ts.ID, true
		}
	}
	return s.classrooms[0].ID, s.timeslots[0].ID, true
}

func (s *state) commit(p domain.Project, roomID, tsID, respID int, jury []int) {
	// I2: never list the responsible instructor as jury; self-jury attempts
	// are replaced by the next-ranked free instructor.
	cleaned := jury[:0:0]
	for _, j := range jury {
		if j == respID {
			cleaned = append(cleaned, s.bestJuryCandidate(respID, tsID))
			continue
		}
		cleaned = append(cleaned, j)
	}

	s.assignments = append(s.assignments, domain.Assignment{
		ProjectID:               p.ID,
		ClassroomID:             roomID,
		TimeslotID:              tsID,
		ResponsibleInstructorID: respID,
		JuryInstructorIDs:       cleaned,
		IsMakeup:                p.IsMakeup,
	})

	s.classroomSlotUsed[[2]int{roomID, tsID}] = true
	s.instructorSlotUsed[[2]int{respID, tsID}] = true
	for _, j := range cleaned {
		s.instructorSlotUsed[[2]int{j, tsID}] = true
	}
	s.classroomUsageCount[roomID]++
	if s.instructorRooms[respID] == nil {
		s.instructorRooms[respID] = make(map[int]bool)
	}
	s.instructorRooms[respID][roomID] = true
	s.lastClassroomID = roomID
}
