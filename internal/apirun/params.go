package apirun

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/defense-scheduler-core/internal/runner"
)

// GeneticParams is the validated, typed view of a genetic run's params map
// (spec §6: population_size, generations, mutation_rate, crossover_rate).
type GeneticParams struct {
	PopulationSize int     `validate:"omitempty,min=10"`
	Generations    int     `validate:"omitempty,min=1"`
	MutationRate   float64 `validate:"omitempty,min=0,max=1"`
	CrossoverRate  float64 `validate:"omitempty,min=0,max=1"`
}

// SimulatedAnnealingParams is the typed view of an annealing run's params.
type SimulatedAnnealingParams struct {
	InitialTemperature float64 `validate:"omitempty,gt=0"`
	CoolingRate        float64 `validate:"omitempty,gt=0,lt=1"`
	Iterations         int     `validate:"omitempty,min=1"`
}

// TabuParams is the typed view of a tabu-search run's params.
type TabuParams struct {
	TabuTenure    int `validate:"omitempty,min=1"`
	MaxIterations int `validate:"omitempty,min=1"`
}

// CPStyleParams is the typed view of a constraint-propagation run's params.
type CPStyleParams struct {
	MaxTimeSeconds   int `validate:"omitempty,min=1"`
	NumSearchWorkers int `validate:"omitempty,min=1"`
}

// LexicographicParams is the typed view of a lexicographic run's params.
type LexicographicParams struct {
	TimeLimitSeconds int `validate:"omitempty,min=1"`
}

// validateTypedParams projects the raw params map onto the strategy's typed
// struct and runs it through v.Struct, giving BadConfig the same field-tag
// diagnostics the teacher's dto validation produces.
func validateTypedParams(strategyName string, params map[string]float64, v *validator.Validate) (badField string, err error) {
	switch runner.CanonicalName(strategyName) {
	case "genetic":
		p := GeneticParams{
			PopulationSize: int(params["population_size"]),
			Generations:    int(params["generations"]),
			MutationRate:   params["mutation_rate"],
			CrossoverRate:  params["crossover_rate"],
		}
		if err := v.Struct(p); err != nil {
			return "genetic", err
		}
	case "simulated_annealing":
		p := SimulatedAnnealingParams{
			InitialTemperature: params["initial_temperature"],
			CoolingRate:        params["cooling_rate"],
			Iterations:         int(params["iterations"]),
		}
		if err := v.Struct(p); err != nil {
			return "simulated_annealing", err
		}
	case "tabu_search":
		p := TabuParams{
			TabuTenure:    int(params["tabu_tenure"]),
			MaxIterations: int(params["max_iterations"]),
		}
		if err := v.Struct(p); err != nil {
			return "tabu_search", err
		}
	case "cp_style":
		p := CPStyleParams{
			MaxTimeSeconds:   int(params["max_time_seconds"]),
			NumSearchWorkers: int(params["num_search_workers"]),
		}
		if err := v.Struct(p); err != nil {
			return "cp_style", err
		}
	case "lexicographic":
		p := LexicographicParams{TimeLimitSeconds: int(params["time_limit_seconds"])}
		if err := v.Struct(p); err != nil {
			return "lexicographic", err
		}
	case "earliest_first", "dynamic_programming":
		// Neither strategy recognizes per-run params.
	default:
		// An unrecognized strategy name is NoSuchStrategy, not BadConfig —
		// runner.Create surfaces that once Translate hands the spec off.
	}
	return "", nil
}
