// Package domain defines the entity shapes and identity rules the rest of
// the scheduling core operates on. Inputs are read-only; an Assignment set
// is the one mutable structure a strategy owns during its run.
package domain

// InstructorRank is the academic rank/type of an instructor.
type InstructorRank string

const (
	RankFull      InstructorRank = "full"
	RankAssociate InstructorRank = "associate"
	RankAssistant InstructorRank = "assistant"
	RankResearch  InstructorRank = "research"
)

// Instructor is a read-only pool member eligible for responsible or jury roles.
type Instructor struct {
	ID          int            `json:"id"`
	DisplayName string         `json:"display_name"`
	Rank        InstructorRank `json:"rank"`
	Active      bool           `json:"active"`
}

// ProjectType distinguishes interim from final defenses.
type ProjectType string

const (
	ProjectInterim ProjectType = "interim"
	ProjectFinal   ProjectType = "final"
)

// Project is a read-only student project awaiting a defense slot.
type Project struct {
	ID                   int         `json:"id"`
	Title                string      `json:"title"`
	Type                 ProjectType `json:"type"`
	ResponsibleInstrID   int         `json:"responsible_instructor_id"`
	IsMakeup             bool        `json:"is_makeup"`
}

// Classroom is a read-only physical room candidate for a defense.
type Classroom struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"active"`
}

// Timeslot is a read-only, strictly ordered scheduling cell.
type Timeslot struct {
	ID      int    `json:"id"`
	Ordinal int    `json:"ordinal"` // 0-based, ascending = chronologically later
	Start   string `json:"start"`   // clock-time, e.g. "14:00"
	End     string `json:"end"`
	IsLate  bool   `json:"is_late"` // true if start hour > configured cutoff
}

// Assignment is the 5-tuple a strategy produces for one project.
type Assignment struct {
	ProjectID              int   `json:"project_id"`
	ClassroomID            int   `json:"classroom_id"`
	TimeslotID             int   `json:"timeslot_id"`
	ResponsibleInstructorID int  `json:"responsible_instructor_id"`
	JuryInstructorIDs      []int `json:"jury_instructor_ids"`
	IsMakeup               bool  `json:"is_makeup"`
}

// InputBundle is the immutable, borrowed-read-only input to a run.
type InputBundle struct {
	Projects    []Project    `json:"projects"`
	Instructors []Instructor `json:"instructors"`
	Classrooms  []Classroom  `json:"classrooms"`
	Timeslots   []Timeslot   `json:"timeslots"`
}

// ScheduleBundle is the final, returned-once result of a run.
type ScheduleBundle struct {
	Assignments []Assignment
	Statistics  map[string]float64
}

// Index gives O(1) lookups over an InputBundle's entities, keyed by id, and
// timeslots additionally ordered by ordinal. It never mutates the bundle.
type Index struct {
	Bundle        InputBundle
	ProjectByID   map[int]Project
	InstructorByID map[int]Instructor
	ClassroomByID map[int]Classroom
	TimeslotByID  map[int]Timeslot
	TimeslotsByOrdinal []Timeslot // sorted ascending by Ordinal
	ClassroomsSorted    []Classroom // sorted ascending by ID
	InstructorsSorted   []Instructor // sorted ascending by ID
}

// BuildIndex constructs lookup tables once per run. Callers should treat the
// returned Index as read-only.
func BuildIndex(bundle InputBundle) Index {
	idx := Index{
		Bundle:         bundle,
		ProjectByID:    make(map[int]Project, len(bundle.Projects)),
		InstructorByID: make(map[int]Instructor, len(bundle.Instructors)),
		ClassroomByID:  make(map[int]Classroom, len(bundle.Classrooms)),
		TimeslotByID:   make(map[int]Timeslot, len(bundle.Timeslots)),
	}
	for _, p := range bundle.Projects {
		idx.ProjectByID[p.ID] = p
	}
	for _, i := range bundle.Instructors {
		idx.InstructorByID[i.ID] = i
	}
	for _, c := range bundle.Classrooms {
		idx.ClassroomByID[c.ID] = c
	}
	for _, t := range bundle.Timeslots {
		idx.TimeslotByID[t.ID] = t
	}

	idx.TimeslotsByOrdinal = append([]Timeslot(nil), bundle.Timeslots...)
	sortTimeslotsByOrdinal(idx.TimeslotsByOrdinal)

	idx.ClassroomsSorted = append([]Classroom(nil), bundle.Classrooms...)
	sortClassroomsByID(idx.ClassroomsSorted)

	idx.InstructorsSorted = append([]Instructor(nil), bundle.Instructors...)
	sortInstructorsByID(idx.InstructorsSorted)

	return idx
}

func sortTimeslotsByOrdinal(ts []Timeslot) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j].Ordinal < ts[j-1].Ordinal; j-- {
			ts[j], ts[j-1] = ts[j-1], ts[j]
		}
	}
}

func sortClassroomsByID(cs []Classroom) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].ID < cs[j-1].ID; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

func sortInstructorsByID(is []Instructor) {
	for i := 1; i < len(is); i++ {
		for j := i; j > 0 && is[j].ID < is[j-1].ID; j-- {
			is[j], is[j-1] = is[j-1], is[j]
		}
	}
}

// ResponsibleCounts tallies how many projects each instructor is responsible for.
func ResponsibleCounts(projects []Project) map[int]int {
	counts := make(map[int]int)
	for _, p := range projects {
		counts[p.ResponsibleInstrID]++
	}
	return counts
}
