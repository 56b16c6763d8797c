package strategy

import (
	"math"
	"sort"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
)

// Statistics mirrors a run result's statistics block. execution_time_seconds
// is filled in by the runner, which is the only layer that knows when the
// call into the strategy started.
type Statistics struct {
	ExecutionTimeSeconds      float64
	ScheduleCount             int
	ConsecutiveInstructorCount int
	AvgClassroomChanges       float64
	TotalGaps                 int
	WorkloadStddev            float64
}

// ComputeStatistics derives the descriptive statistics block from a final
// assignment set, independent of which strategy produced it.
func ComputeStatistics(assignments []domain.Assignment, idx domain.Index) Statistics {
	var st Statistics
	st.ScheduleCount = len(assignments)

	byInstructor := make(map[int][]domain.Assignment)
	for _, a := range assignments {
		byInstructor[a.ResponsibleInstructorID] = append(byInstructor[a.ResponsibleInstructorID], a)
	}

	var loads []float64
	var totalClassroomChanges, instructorsWithRuns int
	for _, own := range byInstructor {
		sorted := append([]domain.Assignment(nil), own...)
		sort.Slice(sorted, func(i, j int) bool {
			oi := idx.TimeslotByID[sorted[i].TimeslotID].Ordinal
			oj := idx.TimeslotByID[sorted[j].TimeslotID].Ordinal
			return oi < oj
		})

		loads = append(loads, float64(len(sorted)))

		consecutive := true
		changes := 0
		for i := 1; i < len(sorted); i++ {
			oi := idx.TimeslotByID[sorted[i-1].TimeslotID].Ordinal
			oj := idx.TimeslotByID[sorted[i].TimeslotID].Ordinal
			if oj-oi != 1 {
				consecutive = false
				st.TotalGaps += oj - oi - 1
			}
			if sorted[i].ClassroomID != sorted[i-1].ClassroomID {
				changes++
			}
		}
		if len(sorted) > 0 && consecutive {
			st.ConsecutiveInstructorCount++
		}
		if len(sorted) > 1 {
			totalClassroomChanges += changes
			instructorsWithRuns++
		}
	}

	if instructorsWithRuns > 0 {
		st.AvgClassroomChanges = float64(totalClassroomChanges) / float64(instructorsWithRuns)
	}
	st.WorkloadStddev = stddev(loads)
	return st
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}
