package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/scoring"
	schederrors "github.com/noah-isme/defense-scheduler-core/pkg/errors"
)

func sampleBundle() domain.InputBundle {
	return domain.InputBundle{
		Projects: []domain.Project{
			{ID: 1, ResponsibleInstrID: 1},
			{ID: 2, ResponsibleInstrID: 2},
		},
		Instructors: []domain.Instructor{
			{ID: 1, DisplayName: "A", Active: true},
			{ID: 2, DisplayName: "B", Active: true},
		},
		Classrooms: []domain.Classroom{{ID: 1, Name: "C1", Capacity: 10, Active: true}},
		Timeslots: []domain.Timeslot{
			{ID: 1, Ordinal: 0, Start: "08:00"},
			{ID: 2, Ordinal: 1, Start: "09:00"},
		},
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	pool := NewPool(2, 4, zap.NewNop())
	r := New(pool, nil, nil, zap.NewNop(), scoring.DefaultWeights())
	r.Start(context.Background())
	t.Cleanup(r.Stop)
	return r
}

func TestRun_EarliestFirstProducesAllAssignments(t *testing.T) {
	r := newTestRunner(t)

	result, err := r.Run(context.Background(), RunSpec{
		StrategyName: "earliest_first",
		Bundle:       sampleBundle(),
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	assert.Len(t, result.Assignments, 2)
	assert.Equal(t, "earliest_first", result.Strategy)
}

func TestRun_AliasResolvesToCanonicalName(t *testing.T) {
	r := newTestRunner(t)

	result, err := r.Run(context.Background(), RunSpec{
		StrategyName: "dp",
		Bundle:       sampleBundle(),
	})
	require.NoError(t, err)
	assert.Equal(t, "dynamic_programming", result.Strategy)
}

func TestRun_InvalidInputRejectedBeforeAnyStrategyRuns(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(context.Background(), RunSpec{
		StrategyName: "earliest_first",
		Bundle:       domain.InputBundle{},
	})
	require.Error(t, err)

	var schedErr *schederrors.Error
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, schederrors.ErrInvalidInput.Code, schedErr.Code)
}

func TestRun_UnknownStrategyName(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(context.Background(), RunSpec{
		StrategyName: "not_a_real_strategy",
		Bundle:       sampleBundle(),
	})
	require.Error(t, err)

	var schedErr *schederrors.Error
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, schederrors.ErrNoSuchStrategy.Code, schedErr.Code)
}

func TestRun_BadConfigParamOutOfRange(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(context.Background(), RunSpec{
		StrategyName: "genetic",
		Bundle:       sampleBundle(),
		Params:       map[string]float64{"mutation_rate": 1.5},
	})
	require.Error(t, err)

	var schedErr *schederrors.Error
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, schederrors.ErrBadConfig.Code, schedErr.Code)
}

func TestRun_UnknownWeightOverrideKey(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(context.Background(), RunSpec{
		StrategyName:    "earliest_first",
		Bundle:          sampleBundle(),
		WeightOverrides: map[string]float64{"not_a_real_weight": 1},
	})
	require.Error(t, err)

	var schedErr *schederrors.Error
	require.ErrorAs(t, err, &schedErr)
	assert.Equal(t, schederrors.ErrInvalidWeights.Code, schedErr.Code)
}

func TestRun_FixedSeedIsEchoedBack(t *testing.T) {
	r := newTestRunner(t)

	seed := int64(12345)
	result, err := r.Run(context.Background(), RunSpec{
		StrategyName: "earliest_first",
		Bundle:       sampleBundle(),
		Seed:         &seed,
	})
	require.NoError(t, err)
	assert.Equal(t, seed, result.Seed)
}

func TestRun_NoPoolRunsInline(t *testing.T) {
	r := New(nil, nil, nil, zap.NewNop(), scoring.DefaultWeights())

	result, err := r.Run(context.Background(), RunSpec{
		StrategyName: "earliest_first",
		Bundle:       sampleBundle(),
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
}
