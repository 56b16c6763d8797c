package ioformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/runner"
)

func sampleBundle() domain.InputBundle {
	return domain.InputBundle{
		Projects:    []domain.Project{{ID: 1, ResponsibleInstrID: 1}},
		Instructors: []domain.Instructor{{ID: 1, DisplayName: "A", Active: true}},
		Classrooms:  []domain.Classroom{{ID: 1, Name: "C1", Capacity: 10, Active: true}},
		Timeslots:   []domain.Timeslot{{ID: 1, Ordinal: 0, Start: "08:00"}},
	}
}

func TestInputBundleRoundTrip(t *testing.T) {
	bundle := sampleBundle()

	data, err := MarshalInputBundle(bundle)
	require.NoError(t, err)

	decoded, err := UnmarshalInputBundle(data)
	require.NoError(t, err)
	assert.Equal(t, bundle, decoded)
}

func TestUnmarshalInputBundle_InvalidJSON(t *testing.T) {
	_, err := UnmarshalInputBundle([]byte("{not json"))
	assert.Error(t, err)
}

func TestRunResultRoundTrip(t *testing.T) {
	result := runner.Result{
		RunID:  "run-1",
		Status: "completed",
		Assignments: []domain.Assignment{
			{ProjectID: 1, ClassroomID: 1, TimeslotID: 1, ResponsibleInstructorID: 1},
		},
		Statistics:     map[string]float64{"execution_time_seconds": 0.5},
		ScoreBreakdown: map[string]float64{"total": 10},
		Strategy:       "earliest_first",
		Seed:           42,
	}

	data, err := MarshalRunResult(result)
	require.NoError(t, err)

	decoded, err := UnmarshalRunResult(data)
	require.NoError(t, err)
	assert.Equal(t, result, decoded)
}

func TestMarshalRunRequestParams(t *testing.T) {
	params := map[string]float64{"mutation_rate": 0.1, "population_size": 50}
	data, err := MarshalRunRequestParams(params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mutation_rate":0.1,"population_size":50}`, string(data))
}
