package jsonio

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourforge/internal/model"
	"tourforge/internal/solverr"
)

const fixtureJSON = `{
  "vehicles": [
    {"id": 1, "start_index": 0, "end_index": 0, "capacity": [4]}
  ],
  "jobs": [
    {"id": 10, "location_index": 1, "delivery": [1], "service": 60}
  ],
  "matrices": {
    "car": {
      "durations": [[0, 100], [100, 0]],
      "distances": [[0, 1000], [1000, 0]]
    }
  }
}`

func TestDecodeBasicInput(t *testing.T) {
	in, err := Decode(context.Background(), strings.NewReader(fixtureJSON), Options{})
	require.NoError(t, err)
	require.Len(t, in.Vehicles, 1)
	require.Len(t, in.Jobs, 1)
	assert.Equal(t, "car", in.Vehicles[0].Profile)
	assert.Equal(t, 1, in.AmountDim)
	assert.Equal(t, int64(1), in.Jobs[0].Delivery[0])
}

func TestDecodeRejectsNoVehicles(t *testing.T) {
	_, err := Decode(context.Background(), strings.NewReader(`{"jobs":[{"id":1,"location_index":0}]}`), Options{})
	require.Error(t, err)
	se, ok := solverr.As(err)
	require.True(t, ok)
	assert.Equal(t, solverr.KindInput, se.Kind)
}

func TestDecodeRejectsNoJobsOrShipments(t *testing.T) {
	_, err := Decode(context.Background(), strings.NewReader(`{"vehicles":[{"id":1,"start_index":0}]}`), Options{})
	require.Error(t, err)
}

func TestDecodeRejectsMissingMatrixWithoutRouter(t *testing.T) {
	body := `{
	  "vehicles": [{"id": 1, "start_index": 0}],
	  "jobs": [{"id": 10, "location_index": 1}]
	}`
	_, err := Decode(context.Background(), strings.NewReader(body), Options{})
	require.Error(t, err)
	se, ok := solverr.As(err)
	require.True(t, ok)
	assert.Equal(t, solverr.KindInput, se.Kind)
}

func TestDecodeShipmentProducesPickupDeliveryPair(t *testing.T) {
	body := `{
	  "vehicles": [{"id": 1, "start_index": 0, "end_index": 0}],
	  "shipments": [
	    {"pickup": {"location_index": 1}, "delivery": {"location_index": 2}, "amount": [2]}
	  ],
	  "matrices": {
	    "car": {
	      "durations": [[0,10,20],[10,0,10],[20,10,0]],
	      "distances": [[0,100,200],[100,0,100],[200,100,0]]
	    }
	  }
	}`
	in, err := Decode(context.Background(), strings.NewReader(body), Options{})
	require.NoError(t, err)
	require.Len(t, in.Jobs, 2)
	assert.Equal(t, model.JobPickup, in.Jobs[0].Type)
	assert.Equal(t, model.JobDelivery, in.Jobs[1].Type)
	assert.Equal(t, 1, in.Jobs[0].PartnerIndex)
	assert.Equal(t, 0, in.Jobs[1].PartnerIndex)
}

func TestEncodeRendersSummaryAndRoutes(t *testing.T) {
	in, err := Decode(context.Background(), strings.NewReader(fixtureJSON), Options{})
	require.NoError(t, err)

	sol := model.Solution{
		Summary: model.Summary{
			Cost:       500,
			Routes:     1,
			Unassigned: 0,
			Delivery:   model.NewAmount(1),
			Pickup:     model.NewAmount(1),
		},
		Routes: []model.RouteReport{
			{
				VehicleIndex: 0,
				Cost:         500,
				Duration:     200,
				Delivery:     model.NewAmount(1),
				Pickup:       model.NewAmount(1),
				Steps: []model.StepReport{
					{Type: model.StepStart, Location: 0, Load: model.NewAmount(1)},
					{Type: model.StepJob, JobIndex: 0, Location: 1, Arrival: 100, Load: model.NewAmount(1)},
					{Type: model.StepEnd, Location: 0, Load: model.NewAmount(1)},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in, sol, false, nil, Times{LoadingMS: 1, SolvingMS: 2}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	summary := decoded["summary"].(map[string]interface{})
	assert.Equal(t, float64(500), summary["cost"])

	routes := decoded["routes"].([]interface{})
	require.Len(t, routes, 1)
	route := routes[0].(map[string]interface{})
	assert.Equal(t, float64(1), route["vehicle"])
	steps := route["steps"].([]interface{})
	require.Len(t, steps, 3)
	assert.Equal(t, "start", steps[0].(map[string]interface{})["type"])
	assert.Equal(t, "job", steps[1].(map[string]interface{})["type"])
	assert.Equal(t, float64(10), steps[1].(map[string]interface{})["job"])
}

func TestEncodeError(t *testing.T) {
	var buf bytes.Buffer
	se := solverr.New(solverr.KindRouting, "router unreachable")
	require.NoError(t, EncodeError(&buf, se))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(3), decoded["code"])
	assert.Contains(t, decoded["error"], "router unreachable")
}
