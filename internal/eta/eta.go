// Package eta is the check-mode validator named in SPEC_FULL §5.3: given a
// user-fixed step ordering (spec §6 "-c" flag, Vehicle.InitialSteps), it
// assigns earliest feasible arrival/service/waiting times using the same
// forward/backward propagation TWRoute uses for a solved route, and reports
// an InfeasibleRoute (a Result-shaped value, not an exception) the first
// time a step cannot be placed. Grounded on choose_ETA.cpp/choose_invalid.cpp:
// this is deliberately not the full MIP pass (spec §9 permits modeling check
// mode as Result<Route,InfeasibleRoute>).
package eta

import (
	"fmt"

	"tourforge/internal/assembly"
	"tourforge/internal/model"
	"tourforge/internal/route"
)

// InfeasibleRoute names the first step a fixed ordering cannot satisfy.
type InfeasibleRoute struct {
	VehicleIndex int
	StepIndex    int
	Reason       string
}

func (i InfeasibleRoute) Error() string {
	return fmt.Sprintf("vehicle %d: step %d infeasible: %s", i.VehicleIndex, i.StepIndex, i.Reason)
}

// Result carries either a validated RouteReport or the InfeasibleRoute that
// stopped validation, never both.
type Result struct {
	Route      *model.RouteReport
	Infeasible *InfeasibleRoute
}

// Validate replays vehIdx's InitialSteps in order, inserting each job step
// one at a time so the first infeasible placement can be pinpointed exactly
// (spec §8's testable property: earliest[k] <= latest[k] for every k).
func Validate(in *model.Input, vehIdx int) Result {
	veh := in.Vehicle(vehIdx)
	r := route.NewTWRoute(veh, in.Jobs, in.AmountDim)
	r.Setup()

	rank := 0
	for stepIdx, step := range veh.InitialSteps {
		switch step.Type {
		case model.StepStart, model.StepEnd, model.StepBreak:
			// Start/end are implicit in TWRoute via Vehicle.Start/End; breaks
			// are placed automatically by forward propagation against
			// Vehicle.Breaks, so neither needs an explicit route mutation
			// here. A user-pinned break time is a finer-grained constraint
			// this validator does not model (spec §9's documented scope cut).
			continue
		case model.StepJob, model.StepPickup, model.StepDelivery:
			if !r.Add(step.JobIndex, rank) {
				return Result{Infeasible: &InfeasibleRoute{
					VehicleIndex: vehIdx,
					StepIndex:    stepIdx,
					Reason:       "time window or capacity constraint violated at this position",
				}}
			}
			rank++
		}
	}

	unassigned := map[int]struct{}{}
	sol := assembly.Build(in, routesFor(in, vehIdx, r), unassigned)
	for i := range sol.Routes {
		if sol.Routes[i].VehicleIndex == vehIdx {
			return Result{Route: &sol.Routes[i]}
		}
	}
	empty := model.RouteReport{VehicleIndex: vehIdx}
	return Result{Route: &empty}
}

// routesFor builds the []*route.TWRoute slice assembly.Build expects, with
// every other vehicle's route left empty (check mode validates one vehicle
// at a time).
func routesFor(in *model.Input, vehIdx int, r *route.TWRoute) []*route.TWRoute {
	out := make([]*route.TWRoute, in.NbVehicles())
	for i := range out {
		if i == vehIdx {
			out[i] = r
			continue
		}
		out[i] = route.NewTWRoute(in.Vehicle(i), in.Jobs, in.AmountDim)
	}
	return out
}
