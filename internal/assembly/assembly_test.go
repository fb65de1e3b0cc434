package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourforge/internal/model"
	"tourforge/internal/route"
)

func newFixtureInput() *model.Input {
	m := model.NewMatrix("car", 3)
	// start(0) -> job(1) -> end(2), 100s/1000m each edge
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
		{
			ID:           1,
			Type:         model.JobSingle,
			Location:     1,
			Pickup:       model.NewAmount(1),
			Delivery:     model.NewAmount(1),
			PartnerIndex: -1,
		},
	}
	vehicles := []model.Vehicle{
		{
			ID:       1,
			Start:    &start,
			End:      &end,
			Profile:  "car",
			Capacity: model.NewAmount(1),
			TW:       model.TimeWindow{Start: 0, End: 10000},
		},
	}
	return model.NewInput(jobs, vehicles, map[string]*model.Matrix{"car": m}, 1, model.Options{})
}

func TestBuildEmptyRoutesProducesEmptySolution(t *testing.T) {
	in := newFixtureInput()
	r := route.NewTWRoute(in.Vehicle(0), in.Jobs, 1)
	sol := Build(in, []*route.TWRoute{r}, map[int]struct{}{0: {}})

	assert.Empty(t, sol.Routes)
	require.Len(t, sol.Unassigned, 1)
	assert.Equal(t, 0, sol.Unassigned[0].JobIndex)
	assert.Equal(t, 0, sol.Summary.Routes)
	assert.Equal(t, 1, sol.Summary.Unassigned)
}

func TestBuildSingleJobRoute(t *testing.T) {
	in := newFixtureInput()
	r := route.NewTWRoute(in.Vehicle(0), in.Jobs, 1)
	require.True(t, r.Add(0, 0))

	sol := Build(in, []*route.TWRoute{r}, nil)

	require.Len(t, sol.Routes, 1)
	rr := sol.Routes[0]
	assert.Equal(t, 0, rr.VehicleIndex)
	// start, job, end
	require.Len(t, rr.Steps, 3)
	assert.Equal(t, model.StepStart, rr.Steps[0].Type)
	assert.Equal(t, model.StepJob, rr.Steps[1].Type)
	assert.Equal(t, model.StepEnd, rr.Steps[2].Type)
	assert.Equal(t, int64(200), rr.Duration)
	assert.Equal(t, int64(2000), rr.Distance)
	assert.Empty(t, sol.Unassigned)
	assert.Equal(t, 1, sol.Summary.Routes)
}

func TestJobStepTypeMapping(t *testing.T) {
	assert.Equal(t, model.StepJob, jobStepType(model.JobSingle))
	assert.Equal(t, model.StepPickup, jobStepType(model.JobPickup))
	assert.Equal(t, model.StepDelivery, jobStepType(model.JobDelivery))
}
