package eta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourforge/internal/model"
)

func newFixtureInput(tw model.TimeWindow) *model.Input {
	m := model.NewMatrix("car", 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				continue
			}
			m.SetDuration(i, j, 100)
			m.SetDistance(i, j, 1000)
		}
	}
	start, end := 0, 2
	jobs := []model.Job{
		{ID: 1, Type: model.JobSingle, Location: 1, Pickup: model.NewAmount(1), Delivery: model.NewAmount(1), PartnerIndex: -1, TimeWindows: []model.TimeWindow{tw}},
	}
	vehicles := []model.Vehicle{
		{
			ID: 1, Start: &start, End: &end, Profile: "car",
			Capacity: model.NewAmount(1),
			TW:       model.TimeWindow{Start: 0, End: 10000},
			InitialSteps: []model.VehicleStep{
				{Type: model.StepStart},
				{Type: model.StepJob, JobIndex: 0},
				{Type: model.StepEnd},
			},
		},
	}
	return model.NewInput(jobs, vehicles, map[string]*model.Matrix{"car": m}, 1, model.Options{})
}

func TestValidateFeasibleOrdering(t *testing.T) {
	in := newFixtureInput(model.TimeWindow{Start: 0, End: 10000})
	res := Validate(in, 0)
	require.Nil(t, res.Infeasible)
	require.NotNil(t, res.Route)
	assert.Equal(t, 0, res.Route.VehicleIndex)
	require.Len(t, res.Route.Steps, 3)
}

func TestValidateInfeasibleTimeWindow(t *testing.T) {
	// job's window closes before the vehicle could possibly arrive (100s travel, window ends at 10)
	in := newFixtureInput(model.TimeWindow{Start: 0, End: 10})
	res := Validate(in, 0)
	require.NotNil(t, res.Infeasible)
	assert.Equal(t, 0, res.Infeasible.VehicleIndex)
	assert.Equal(t, 1, res.Infeasible.StepIndex)
}
