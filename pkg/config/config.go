// Package config loads process-wide defaults for the scheduling core the
// same way the teacher's pkg/config does: a .env file (github.com/joho/godotenv)
// layered under environment variables bound through github.com/spf13/viper,
// with a SetDefault table and a Load() entry point. The surface is narrowed
// to what this core actually owns — scoring weight overrides, the late-hour
// cutoff, per-strategy default parameters, and log level/format — because
// the teacher's Database/Redis/JWT/CORS/Cutover/Reports/Archives/etc.
// sections all govern the persistence/HTTP/auth layers spec.md §1 excludes.
package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// LogConfig mirrors the teacher's pkg/logger input shape.
type LogConfig struct {
	Level  string
	Format string
}

// RunnerConfig sizes the factory/runner's worker pool (§5: "runs for
// different run-ids proceed in parallel").
type RunnerConfig struct {
	Workers    int
	BufferSize int
}

// StrategyDefaults carries the per-strategy parameter defaults from §6,
// overridable process-wide here and overridable again per-run via params.
type StrategyDefaults struct {
	PopulationSize     int
	Generations        int
	MutationRate       float64
	CrossoverRate      float64
	InitialTemperature float64
	CoolingRate        float64
	SAIterations       int
	TabuTenure         int
	TabuMaxIterations  int
	CPMaxTimeSeconds   int
	CPSearchWorkers    int
	LexTimeLimitSecs   int
}

// Config is the core's process-wide configuration surface.
type Config struct {
	Env string
	Log LogConfig

	Weights scoring.Weights

	Strategies StrategyDefaults
	Runner     RunnerConfig
}

// Load reads .env (if present) then the environment, applying the same
// .env-then-environment precedence as the teacher's pkg/config.Load.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env: v.GetString("SCHED_ENV"),
		Log: LogConfig{
			Level:  v.GetString("SCHED_LOG_LEVEL"),
			Format: v.GetString("SCHED_LOG_FORMAT"),
		},
		Weights: scoring.Weights{
			LateTimeslotPenalty:      v.GetFloat64("SCHED_WEIGHT_LATE_TIMESLOT_PENALTY"),
			GapPenalty:               v.GetFloat64("SCHED_WEIGHT_GAP_PENALTY"),
			ClassroomChangePenalty:   v.GetFloat64("SCHED_WEIGHT_CLASSROOM_CHANGE_PENALTY"),
			ConflictPenalty:          v.GetFloat64("SCHED_WEIGHT_CONFLICT_PENALTY"),
			PairingIncompletePenalty: v.GetFloat64("SCHED_WEIGHT_PAIRING_INCOMPLETE_PENALTY"),
			ConsecutiveReward:        v.GetFloat64("SCHED_WEIGHT_CONSECUTIVE_REWARD"),
			SameClassroomReward:      v.GetFloat64("SCHED_WEIGHT_SAME_CLASSROOM_REWARD"),
			JuryPairingReward:        v.GetFloat64("SCHED_WEIGHT_JURY_PAIRING_REWARD"),
			PerfectConsecutiveReward: v.GetFloat64("SCHED_WEIGHT_PERFECT_CONSECUTIVE_REWARD"),
			EarlyTimeslotReward:      v.GetFloat64("SCHED_WEIGHT_EARLY_TIMESLOT_REWARD"),
			GapFreeReward:            v.GetFloat64("SCHED_WEIGHT_GAP_FREE_REWARD"),
			LateCutoffHour:           v.GetInt("SCHED_LATE_CUTOFF_HOUR"),
		},
		Strategies: StrategyDefaults{
			PopulationSize:     v.GetInt("SCHED_GA_POPULATION_SIZE"),
			Generations:        v.GetInt("SCHED_GA_GENERATIONS"),
			MutationRate:       v.GetFloat64("SCHED_GA_MUTATION_RATE"),
			CrossoverRate:      v.GetFloat64("SCHED_GA_CROSSOVER_RATE"),
			InitialTemperature: v.GetFloat64("SCHED_SA_INITIAL_TEMPERATURE"),
			CoolingRate:        v.GetFloat64("SCHED_SA_COOLING_RATE"),
			SAIterations:       v.GetInt("SCHED_SA_ITERATIONS"),
			TabuTenure:         v.GetInt("SCHED_TABU_TENURE"),
			TabuMaxIterations:  v.GetInt("SCHED_TABU_MAX_ITERATIONS"),
			CPMaxTimeSeconds:   v.GetInt("SCHED_CP_MAX_TIME_SECONDS"),
			CPSearchWorkers:    v.GetInt("SCHED_CP_SEARCH_WORKERS"),
			LexTimeLimitSecs:   v.GetInt("SCHED_LEX_TIME_LIMIT_SECONDS"),
		},
		Runner: RunnerConfig{
			Workers:    v.GetInt("SCHED_RUNNER_WORKERS"),
			BufferSize: v.GetInt("SCHED_RUNNER_BUFFER_SIZE"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SCHED_ENV", EnvDevelopment)
	v.SetDefault("SCHED_LOG_LEVEL", "info")
	v.SetDefault("SCHED_LOG_FORMAT", "json")

	d := scoring.DefaultWeights()
	v.SetDefault("SCHED_WEIGHT_LATE_TIMESLOT_PENALTY", d.LateTimeslotPenalty)
	v.SetDefault("SCHED_WEIGHT_GAP_PENALTY", d.GapPenalty)
	v.SetDefault("SCHED_WEIGHT_CLASSROOM_CHANGE_PENALTY", d.ClassroomChangePenalty)
	v.SetDefault("SCHED_WEIGHT_CONFLICT_PENALTY", d.ConflictPenalty)
	v.SetDefault("SCHED_WEIGHT_PAIRING_INCOMPLETE_PENALTY", d.PairingIncompletePenalty)
	v.SetDefault("SCHED_WEIGHT_CONSECUTIVE_REWARD", d.ConsecutiveReward)
	v.SetDefault("SCHED_WEIGHT_SAME_CLASSROOM_REWARD", d.SameClassroomReward)
	v.SetDefault("SCHED_WEIGHT_JURY_PAIRING_REWARD", d.JuryPairingReward)
	v.SetDefault("SCHED_WEIGHT_PERFECT_CONSECUTIVE_REWARD", d.PerfectConsecutiveReward)
	v.SetDefault("SCHED_WEIGHT_EARLY_TIMESLOT_REWARD", d.EarlyTimeslotReward)
	v.SetDefault("SCHED_WEIGHT_GAP_FREE_REWARD", d.GapFreeReward)
	v.SetDefault("SCHED_LATE_CUTOFF_HOUR", d.LateCutoffHour)

	v.SetDefault("SCHED_GA_POPULATION_SIZE", 50)
	v.SetDefault("SCHED_GA_GENERATIONS", 100)
	v.SetDefault("SCHED_GA_MUTATION_RATE", 0.1)
	v.SetDefault("SCHED_GA_CROSSOVER_RATE", 0.8)
	v.SetDefault("SCHED_SA_INITIAL_TEMPERATURE", 100.0)
	v.SetDefault("SCHED_SA_COOLING_RATE", 0.01)
	v.SetDefault("SCHED_SA_ITERATIONS", 1000)
	v.SetDefault("SCHED_TABU_TENURE", 10)
	v.SetDefault("SCHED_TABU_MAX_ITERATIONS", 200)
	v.SetDefault("SCHED_CP_MAX_TIME_SECONDS", 60)
	v.SetDefault("SCHED_CP_SEARCH_WORKERS", 4)
	v.SetDefault("SCHED_LEX_TIME_LIMIT_SECONDS", 180)

	v.SetDefault("SCHED_RUNNER_WORKERS", 4)
	v.SetDefault("SCHED_RUNNER_BUFFER_SIZE", 16)
}

// ParamsOverlay renders the strategy defaults as the Params map shape
// internal/strategy.Config expects, so a caller (cmd/defensecli's run
// command) can seed a run's per-strategy parameters from process-wide
// config before its own params map (if any) is layered on top.
func (c StrategyDefaults) ParamsOverlay() map[string]float64 {
	return map[string]float64{
		"population_size":      float64(c.PopulationSize),
		"generations":          float64(c.Generations),
		"mutation_rate":        c.MutationRate,
		"crossover_rate":       c.CrossoverRate,
		"initial_temperature":  c.InitialTemperature,
		"cooling_rate":         c.CoolingRate,
		"iterations":           float64(c.SAIterations),
		"tabu_tenure":          float64(c.TabuTenure),
		"max_iterations":       float64(c.TabuMaxIterations),
		"max_time_seconds":     float64(c.CPMaxTimeSeconds),
		"num_search_workers":   float64(c.CPSearchWorkers),
		"time_limit_seconds":   float64(c.LexTimeLimitSecs),
	}
}
