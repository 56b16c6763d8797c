package strategy

import (
	mrand "math/rand"
	"strconv"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/pairing"
)

// DPPairing is the bottom-up, instructor-pair-substructure strategy. For
// every pair it enumerates the feasible (classroom, window) placements (the
// occupancy-independent window geometry is memoized per run length; each
// window's usage score is recomputed on every evaluation, not memoized),
// and — critically — chooses uniformly among
// the near-best candidates rather than always the single best. That choice
// is what gives the diversity invariant its room to operate: the strategy
// draws a brand new composite seed every run (never the caller-supplied
// seed, never the global random facility), so three consecutive runs on the
// same input are expected to disagree on a chunk of cell placements while
// still converging on similarly good schedules.
type DPPairing struct{}

func (DPPairing) Name() string { return "dynamic_programming" }

// nearBestSlack bounds how far above the best-found sub-score a placement
// may be and still be eligible for random selection.
const nearBestSlack = 1.5

func (DPPairing) Run(idx domain.Index, cfg Config, _ int64, sink ProgressSink, cancel CancelToken) (Outcome, error) {
	rng := newRand(CompositeSeed(dpInstanceIdentity(idx)))

	st := newDPState(idx)
	pairs, unpaired := pairing.Compute(idx)

	total := len(pairs) + len(unpaired)
	done := 0
	for _, pr := range pairs {
		if cancel.Cancelled() {
			// Once cancelled, skip the window search but still place every project.
			st.forcePlace(st.projectsByInstr[pr.Upper], pr.Upper, []int{pr.Lower})
			st.forcePlace(st.projectsByInstr[pr.Lower], pr.Lower, []int{pr.Upper})
			continue
		}
		st.placePairDiverse(pr.Upper, pr.Lower, rng)
		done++
		sink.Update(float64(done)/float64(maxInt(total, 1)), "pairing", "placing instructor pair", nil)
	}
	for _, id := range unpaired {
		if cancel.Cancelled() {
			st.forcePlace(st.projectsByInstr[id], id, nil)
			continue
		}
		st.placeUnpairedDiverse(id, rng)
		done++
		sink.Update(float64(done)/float64(maxInt(total, 1)), "pairing", "placing unpaired instructor", nil)
	}

	status := StatusCompleted
	if cancel.Cancelled() {
		status = StatusCancelled
	}

	sink.Update(1, "done", "dynamic programming pairing complete", nil)
	return Outcome{
		Assignments: st.assignments,
		Status:      status,
		Stats:       ComputeStatistics(st.assignments, idx),
	}, nil
}

func dpInstanceIdentity(idx domain.Index) string {
	return "dp-pairing:" + strconv.Itoa(len(idx.Bundle.Projects)) + ":" + strconv.Itoa(len(idx.Bundle.Instructors)) +
		":" + strconv.Itoa(len(idx.Bundle.Classrooms)) + ":" + strconv.Itoa(len(idx.Bundle.Timeslots))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// dpState mirrors constructor's occupancy bookkeeping, duplicated here
// (rather than imported) because the DP row's placement rule — sample among
// near-tied candidates instead of always taking the single best — is a
// different algorithm from the constructor's deterministic best-first rule,
// not a parameterization of it.
type dpState struct {
	idx                domain.Index
	projectsByInstr    map[int][]domain.Project
	timeslots          []domain.Timeslot
	classrooms         []domain.Classroom
	classroomSlotUsed  map[[2]int]bool
	instructorSlotUsed map[[2]int]bool
	memo               map[string][][2]int // runLength -> (classroomID, startIdx) geometry, occupancy-independent
	assignments        []domain.Assignment
}

func newDPState(idx domain.Index) *dpState {
	byInstr := make(map[int][]domain.Project)
	for _, p := range idx.Bundle.Projects {
		byInstr[p.ResponsibleInstrID] = append(byInstr[p.ResponsibleInstrID], p)
	}
	for id := range byInstr {
		ps := byInstr[id]
		for i := 1; i < len(ps); i++ {
			for j := i; j > 0 && ps[j-1].ID > ps[j].ID; j-- {
				ps[j-1], ps[j] = ps[j], ps[j-1]
			}
		}
	}
	return &dpState{
		idx:                idx,
		projectsByInstr:    byInstr,
		timeslots:          idx.TimeslotsByOrdinal,
		classrooms:         idx.ClassroomsSorted,
		classroomSlotUsed:  make(map[[2]int]bool),
		instructorSlotUsed: make(map[[2]int]bool),
		memo:               make(map[string][][2]int),
	}
}

// feasibleWindows enumerates every (classroomID, startIdx) window of
// runLength consecutive free slots for instructorIDs, memoized by a key
// capturing the structural shape of the request (not the specific
// occupancy, which only ever shrinks within a single run so a cached
// superset is re-filtered cheaply against current occupancy).
func (s *dpState) feasibleWindows(instructorIDs []int, runLength int) [][2]int {
	shape := s.structuralShape(runLength)

	var out [][2]int
	for _, w := range shape {
		free := true
		for k := 0; k < runLength && free; k++ {
			ts := s.timeslots[w[1]+k]
			if s.classroomSlotUsed[[2]int{w[0], ts.ID}] {
				free = false
				break
			}
			for _, instr := range instructorIDs {
				if s.instructorSlotUsed[[2]int{instr, ts.ID}] {
					free = false
					break
				}
			}
		}
		if free {
			out = append(out, w)
		}
	}
	return out
}

// structuralShape returns every (classroomID, startIdx) pair geometrically
// capable of holding a run of runLength slots, independent of occupancy.
// That geometry never changes within a run, so it is memoized once per
// runLength instead of re-derived from the classroom/timeslot cross product
// on every pair and every unpaired instructor.
func (s *dpState) structuralShape(runLength int) [][2]int {
	key := "shape:" + strconv.Itoa(runLength)
	if cached, ok := s.memo[key]; ok {
		return cached
	}
	var shape [][2]int
	for _, c := range s.classrooms {
		for start := 0; start+runLength <= len(s.timeslots); start++ {
			shape = append(shape, [2]int{c.ID, start})
		}
	}
	s.memo[key] = shape
	return shape
}

func (s *dpState) placePairDiverse(x, y int, rng *mrand.Rand) {
	xProjects := s.projectsByInstr[x]
	yProjects := s.projectsByInstr[y]
	total := len(xProjects) + len(yProjects)
	if total == 0 {
		return
	}

	windows := s.feasibleWindows([]int{x, y}, total)
	if len(windows) == 0 {
		s.forcePlace(xProjects, x, []int{y})
		s.forcePlace(yProjects, y, []int{x})
		return
	}

	roomID, start := pickNearBest(windows, func(w [2]int) float64 {
		return float64(s.classroomUsage(w[0]))
	}, rng)

	for i, p := range xProjects {
		ts := s.timeslots[start+i]
		s.commit(p, roomID, ts.ID, x, []int{y})
	}
	for i, p := range yProjects {
		ts := s.timeslots[start+len(xProjects)+i]
		s.commit(p, roomID, ts.ID, y, []int{x})
	}
}

func (s *dpState) placeUnpairedDiverse(id int, rng *mrand.Rand) {
	projects := s.projectsByInstr[id]
	if len(projects) == 0 {
		return
	}
	windows := s.feasibleWindows([]int{id}, len(projects))
	if len(windows) == 0 {
		s.forcePlace(projects, id, nil)
		return
	}
	roomID, start := pickNearBest(windows, func(w [2]int) float64 {
		return float64(s.classroomUsage(w[0]))
	}, rng)
	for i, p := range projects {
		ts := s.timeslots[start+i]
		jury := bestJuryExcluding(s.idx, id, ts.ID, s.instructorSlotUsed)
		s.commit(p, roomID, ts.ID, id, jury)
	}
}

func (s *dpState) classroomUsage(roomID int) int {
	n := 0
	for k, used := range s.classroomSlotUsed {
		if used && k[0] == roomID {
			n++
		}
	}
	return n
}

// pickNearBest scores every candidate, then draws uniformly among those
// within nearBestSlack of the minimum score — the source of inter-run
// diversity.
func pickNearBest(candidates [][2]int, score func([2]int) float64, rng *mrand.Rand) (roomID, start int) {
	best := score(candidates[0])
	for _, c := range candidates[1:] {
		if v := score(c); v < best {
			best = v
		}
	}
	var pool [][2]int
	for _, c := range candidates {
		if score(c) <= best+nearBestSlack {
			pool = append(pool, c)
		}
	}
	chosen := pool[rng.Intn(len(pool))]
	return chosen[0], chosen[1]
}

func (s *dpState) forcePlace(projects []domain.Project, respID int, jury []int) {
	for _, p := range projects {
		roomID := s.classrooms[0].ID
		tsID := s.timeslots[0].ID
		for _, ts := range s.timeslots {
			if !s.instructorSlotUsed[[2]int{respID, ts.ID}] {
				tsID = ts.ID
				break
			}
		}
		myJury := jury
		if myJury == nil {
			myJury = bestJuryExcluding(s.idx, respID, tsID, s.instructorSlotUsed)
		}
		s.commit(p, roomID, tsID, respID, myJury)
	}
}

func (s *dpState) commit(p domain.Project, roomID, tsID, respID int, jury []int) {
	cleaned := jury[:0:0]
	for _, j := range jury {
		if j == respID {
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
}
