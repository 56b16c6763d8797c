// Package apirun translates the run-invocation shape of spec §6 into a
// validated internal/runner.RunSpec, the way the teacher's internal/dto and
// service layer validate a GenerateScheduleRequest before ScheduleGeneratorService
// ever touches it: a go-playground/validator/v10 validator.Struct pass
// rejects out-of-range parameters as BadConfig before any strategy runs,
// matching §7's "validation and configuration errors surface immediately."
package apirun

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/runner"
	schederrors "github.com/noah-isme/defense-scheduler-core/pkg/errors"
)

// RunRequest is the caller-facing invocation shape of spec §6.
type RunRequest struct {
	StrategyName     string             `json:"strategy_name" validate:"required"`
	Params           map[string]float64 `json:"params,omitempty"`
	InputBundle      domain.InputBundle `json:"input_bundle"`
	WeightsOverride  map[string]float64 `json:"weights_override,omitempty"`
	TimeLimitSeconds int                `json:"time_limit_seconds,omitempty" validate:"omitempty,min=1"`
	Seed             *int64             `json:"seed,omitempty"`
}

// Service decodes and validates a RunRequest, then executes it through a
// Runner. It holds its own *validator.Validate the way the teacher's
// services hold theirs — constructed once, reused across requests.
type Service struct {
	runner    *runner.Runner
	validator *validator.Validate
}

// NewService builds a Service bound to r. A nil validate argument builds a
// fresh validator.New(), matching the teacher's NewXService constructors.
func NewService(r *runner.Runner, validate *validator.Validate) *Service {
	if validate == nil {
		validate = validator.New()
	}
	return &Service{runner: r, validator: validate}
}

// Execute validates req, translates it into a runner.RunSpec, and runs it.
func (s *Service) Execute(ctx context.Context, req RunRequest) (runner.Result, error) {
	spec, err := s.Translate(req)
	if err != nil {
		return runner.Result{}, err
	}
	return s.runner.Run(ctx, spec)
}

// Translate validates req and builds the equivalent runner.RunSpec without
// executing it — split out so callers (and tests) can check BadConfig
// handling without spinning up a full Runner. InvalidInput is raised by
// Runner.Run, not here.
func (s *Service) Translate(req RunRequest) (runner.RunSpec, error) {
	if err := s.validator.Struct(req); err != nil {
		return runner.RunSpec{}, schederrors.Clone(schederrors.ErrBadConfig, err.Error())
	}

	if badField, err := validateTypedParams(req.StrategyName, req.Params, s.validator); err != nil {
		return runner.RunSpec{}, schederrors.Clone(schederrors.ErrBadConfig, fmt.Sprintf("%s: %v", badField, err))
	}

	return runner.RunSpec{
		StrategyName:     req.StrategyName,
		Bundle:           req.InputBundle,
		Params:           req.Params,
		WeightOverrides:  req.WeightsOverride,
		TimeLimitSeconds: req.TimeLimitSeconds,
		Seed:             req.Seed,
	}, nil
}
