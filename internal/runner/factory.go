package runner

import (
	schederrors "github.com/noah-isme/defense-scheduler-core/pkg/errors"

	"github.com/noah-isme/defense-scheduler-core/internal/strategy"
)

// aliases maps recognized shorthand names to their canonical strategy name
// (spec §4.5: "dp" -> "dynamic_programming", "sa" -> "simulated_annealing",
// "ga" -> "genetic").
var aliases = map[string]string{
	"dp": "dynamic_programming",
	"sa": "simulated_annealing",
	"ga": "genetic",
}

// registry builds a fresh strategy instance per canonical name. Every
// strategy in this registry is stateless (seeded at Run time, not at
// construction), so a single shared instance per name would be equally
// correct; the factory still mints one per Create call to keep the
// contract obviously safe for concurrent factory use.
func registry() map[string]func() strategy.Strategy {
	return map[string]func() strategy.Strategy{
		"earliest_first":      func() strategy.Strategy { return strategy.EarliestFirst{} },
		"genetic":             func() strategy.Strategy { return strategy.Genetic{} },
		"simulated_annealing": func() strategy.Strategy { return strategy.SimulatedAnnealing{} },
		"tabu_search":         func() strategy.Strategy { return strategy.TabuSearch{} },
		"cp_style":            func() strategy.Strategy { return strategy.CPStyle{} },
		"lexicographic":       func() strategy.Strategy { return strategy.Lexicographic{} },
		"dynamic_programming": func() strategy.Strategy { return strategy.DPPairing{} },
	}
}

// CanonicalName resolves name through the alias table; names already
// canonical pass through unchanged.
func CanonicalName(name string) string {
	if canon, ok := aliases[name]; ok {
		return canon
	}
	return name
}

// Create resolves name (applying alias lookup) and returns a fresh Strategy
// instance, or ErrNoSuchStrategy if the name is not recognized.
func Create(name string) (strategy.Strategy, error) {
	ctor, ok := registry()[CanonicalName(name)]
	if !ok {
		return nil, schederrors.Clone(schederrors.ErrNoSuchStrategy, "unknown strategy: "+name)
	}
	return ctor(), nil
}

// Names lists every canonical strategy name the factory can construct, in
// the order given by spec §4.4's table.
func Names() []string {
	return []string{
		"earliest_first",
		"genetic",
		"simulated_annealing",
		"tabu_search",
		"cp_style",
		"lexicographic",
		"dynamic_programming",
	}
}

// Aliases returns the recognized alias -> canonical-name table.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}
