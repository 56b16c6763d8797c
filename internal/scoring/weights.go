// Package scoring evaluates a candidate Assignment set into a scalar
// penalty plus a structured breakdown. Lower is better.
package scoring

// Weights holds every component weight as a caller-overridable knob. The
// defaults are a documented starting snapshot, not load-bearing constants —
// callers are expected to retune them per institution.
type Weights struct {
	LateTimeslotPenalty       float64
	GapPenalty                float64
	ClassroomChangePenalty    float64
	ConflictPenalty           float64
	PairingIncompletePenalty  float64
	ConsecutiveReward         float64
	SameClassroomReward       float64
	JuryPairingReward         float64
	PerfectConsecutiveReward  float64
	EarlyTimeslotReward       float64
	GapFreeReward             float64

	// LateCutoffHour is the configured "late" cutoff: a timeslot whose
	// start hour exceeds this is late. Not a penalty weight but travels
	// with Weights since both are part of the same caller override surface.
	LateCutoffHour int
}

// DefaultWeights returns the documented starting snapshot.
func DefaultWeights() Weights {
	return Weights{
		LateTimeslotPenalty:      200.0,
		GapPenalty:               300.0,
		ClassroomChangePenalty:   50.0,
		ConflictPenalty:          5.0,
		PairingIncompletePenalty: 100.0,
		ConsecutiveReward:        -50.0,
		SameClassroomReward:      -30.0,
		JuryPairingReward:        -100.0,
		PerfectConsecutiveReward: -500.0,
		EarlyTimeslotReward:      -150.0,
		GapFreeReward:            -200.0,
		LateCutoffHour:           16,
	}
}

// Override applies a caller-supplied map of component-name -> value onto a
// copy of w, leaving fields absent from overrides untouched. Unknown keys
// are reported so the caller can reject the override (internal/runner
// returns ErrInvalidWeights for them).
func (w Weights) Override(overrides map[string]float64) (Weights, []string) {
	result := w
	var unknown []string
	for name, value := range overrides {
		switch name {
		case "late_timeslot_penalty":
			result.LateTimeslotPenalty = value
		case "gap_penalty":
			result.GapPenalty = value
		case "classroom_change_penalty":
			result.ClassroomChangePenalty = value
		case "conflict_penalty":
			result.ConflictPenalty = value
		case "pairing_incomplete_penalty":
			result.PairingIncompletePenalty = value
		case "consecutive_reward":
			result.ConsecutiveReward = value
		case "same_classroom_reward":
			result.SameClassroomReward = value
		case "jury_pairing_reward":
			result.JuryPairingReward = value
		case "perfect_consecutive_reward":
			result.PerfectConsecutiveReward = value
		case "early_timeslot_reward":
			result.EarlyTimeslotReward = value
		case "gap_free_reward":
			result.GapFreeReward = value
		case "late_cutoff_hour":
			result.LateCutoffHour = int(value)
		default:
			unknown = append(unknown, name)
		}
	}
	return result, unknown
}
