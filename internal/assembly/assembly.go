// Package assembly turns the final route/unassigned state the LS engine
// converges to into the user-facing model.Solution (spec §4.10): per-route
// step records with arrival/waiting/cumulative duration/distance/load, and
// the unassigned job list, with internal scaling undone.
package assembly

import (
	"log"

	"tourforge/internal/model"
	"tourforge/internal/route"
)

// Build walks routes and unassigned, producing the final model.Solution.
// The loading/solving/routing breakdown of the summary object is not part
// of the Solution; callers pass it to jsonio.Encode from their own timers.
func Build(in *model.Input, routes []*route.TWRoute, unassigned map[int]struct{}) model.Solution {
	sol := model.Solution{}
	sol.Summary.Delivery = in.ZeroAmount()
	sol.Summary.Pickup = in.ZeroAmount()
	for v, r := range routes {
		if r.Empty() {
			continue
		}
		rr := buildRoute(in, v, r)
		sol.Routes = append(sol.Routes, rr)
		sol.Summary.Cost += rr.Cost
		sol.Summary.Distance += rr.Distance
		sol.Summary.Duration += rr.Duration
		sol.Summary.Setup += rr.Setup
		sol.Summary.Service += rr.Service
		sol.Summary.WaitingTime += rr.WaitingTime
		sol.Summary.Priority += rr.Priority
		sol.Summary.Delivery = sol.Summary.Delivery.Add(rr.Delivery)
		sol.Summary.Pickup = sol.Summary.Pickup.Add(rr.Pickup)
		sol.Summary.Routes++
	}
	for idx := range unassigned {
		j := in.Job(idx)
		sol.Unassigned = append(sol.Unassigned, model.UnassignedReport{
			JobIndex: idx,
			Type:     j.Type,
			Location: j.Location,
		})
	}
	sol.Summary.Unassigned = len(sol.Unassigned)
	log.Printf("[SOLVE] assembled solution: %d routes, %d unassigned, cost=%d",
		sol.Summary.Routes, sol.Summary.Unassigned, sol.Summary.Cost)
	return sol
}

// buildRoute walks one TWRoute's ranks, re-deriving arrival/waiting times
// (TWRoute caches only service-start, not raw arrival) and interleaving
// break steps at the rank the forward pass placed them.
func buildRoute(in *model.Input, vehIdx int, r *route.TWRoute) model.RouteReport {
	veh := in.Vehicle(vehIdx)
	rr := model.RouteReport{
		VehicleIndex: vehIdx,
		Delivery:     in.ZeroAmount(),
		Pickup:       in.ZeroAmount(),
	}

	load := in.ZeroAmount()
	var cumDuration, cumDistance int64
	var prevLoc int
	havePrev := false
	if veh.HasStart() {
		prevLoc = *veh.Start
		havePrev = true
		rr.Steps = append(rr.Steps, model.StepReport{Type: model.StepStart, Location: prevLoc, Load: load.Clone()})
	}

	breakIdx := 0
	emitBreaks := func(count int) {
		for i := 0; i < count; i++ {
			b := r.Break(breakIdx)
			start := r.BreakStart(breakIdx)
			rr.Steps = append(rr.Steps, model.StepReport{
				Type:       model.StepBreak,
				BreakIndex: b.Index,
				Arrival:    start,
				Duration:   cumDuration,
				Service:    b.Service,
				Load:       load.Clone(),
				Distance:   cumDistance,
			})
			rr.Service += b.Service
			breakIdx++
		}
	}

	n := r.Size()
	for k := 0; k < n; k++ {
		emitBreaks(r.BreaksAtRank(k))

		jobIdx := r.JobAt(k)
		j := in.Job(jobIdx)

		var travel, dist int64
		if havePrev {
			travel, _, dist = veh.Eval(prevLoc, j.Location)
		}
		rawArrival := earliestArrival(r, k, travel, havePrev)
		waiting := r.Earliest(k) - rawArrival
		if waiting < 0 {
			waiting = 0
		}

		cumDuration += travel
		cumDistance += dist

		setup := int64(0)
		if !havePrev || prevLoc != j.Location {
			setup = j.SetupFor(veh.Profile)
		}
		service := j.ServiceFor(veh.Profile)

		load = load.Add(j.Pickup).Sub(j.Delivery)

		rr.Steps = append(rr.Steps, model.StepReport{
			Type:        jobStepType(j.Type),
			JobIndex:    jobIdx,
			Location:    j.Location,
			Arrival:     r.Earliest(k),
			Duration:    cumDuration,
			Setup:       setup,
			Service:     service,
			WaitingTime: waiting,
			Load:        load.Clone(),
			Distance:    cumDistance,
		})

		rr.Setup += setup
		rr.Service += service
		rr.WaitingTime += waiting
		rr.Priority += j.Priority
		rr.Delivery = rr.Delivery.Add(j.Delivery)
		rr.Pickup = rr.Pickup.Add(j.Pickup)

		prevLoc = j.Location
		havePrev = true
	}
	emitBreaks(r.BreaksAtRank(n))

	if veh.HasEnd() {
		var travel, dist int64
		if havePrev {
			travel, _, dist = veh.Eval(prevLoc, *veh.End)
		}
		cumDuration += travel
		cumDistance += dist
		rr.Steps = append(rr.Steps, model.StepReport{
			Type:     model.StepEnd,
			Location: *veh.End,
			Arrival:  r.EarliestEnd(),
			Duration: cumDuration,
			Load:     in.ZeroAmount(),
			Distance: cumDistance,
		})
	}

	rr.Duration = cumDuration
	rr.Distance = cumDistance
	rr.Cost = routeCost(in, vehIdx, r)
	return rr
}

// jobStepType maps a Job's logical type to the step kind the output JSON
// uses (spec §6 Output JSON "steps" array).
func jobStepType(t model.JobType) model.StepType {
	switch t {
	case model.JobPickup:
		return model.StepPickup
	case model.JobDelivery:
		return model.StepDelivery
	default:
		return model.StepJob
	}
}

// earliestArrival recomputes the raw arrival time at rank k (before any
// window-driven waiting is applied), walking Earliest(k-1)+ActionTime(k-1)
// forward one edge. TWRoute computes this internally but does not cache it.
func earliestArrival(r *route.TWRoute, k int, travel int64, havePrev bool) int64 {
	if !havePrev {
		return r.Vehicle.TW.Start + travel
	}
	if k == 0 {
		return r.Vehicle.TW.Start + travel
	}
	return r.Earliest(k-1) + r.ActionTime(k-1) + travel
}

// routeCost sums the per-edge vehicle cost across the assembled steps, plus
// the vehicle's fixed cost if it carries any jobs.
func routeCost(in *model.Input, vehIdx int, r *route.TWRoute) int64 {
	veh := in.Vehicle(vehIdx)
	if r.Empty() {
		return 0
	}
	total := veh.Costs.Fixed
	prev := -1
	if veh.HasStart() {
		prev = *veh.Start
	}
	for k := 0; k < r.Size(); k++ {
		loc := in.Job(r.JobAt(k)).Location
		if prev >= 0 {
			_, c, _ := veh.Eval(prev, loc)
			total += c
		}
		prev = loc
	}
	if veh.HasEnd() && prev >= 0 {
		_, c, _ := veh.Eval(prev, *veh.End)
		total += c
	}
	return total
}
