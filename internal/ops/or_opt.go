package ops

import (
	"tourforge/internal/eval"
	"tourforge/internal/model"
)

// orOptValid checks moving the edge [srcRank, srcRank+1] (two consecutive
// single jobs) from source into tgtRank of target, optionally reversed
// (spec §4.7 OrOpt row).
func orOptValid(ctx *Context, source, target, srcRank, tgtRank int, reverse bool) bool {
	sr := ctx.Routes[source]
	if srcRank+1 >= sr.Size() {
		return false
	}
	if source == target && tgtRank >= srcRank && tgtRank <= srcRank+2 {
		return false
	}
	jobA := ctx.In.Job(sr.JobAt(srcRank))
	jobB := ctx.In.Job(sr.JobAt(srcRank + 1))
	if jobA.Type != model.JobSingle || jobB.Type != model.JobSingle {
		return false
	}
	tr := ctx.Routes[target]
	if !ctx.Compat.JobVehicleSkillOK(jobA.Index, target) || !ctx.Compat.JobVehicleSkillOK(jobB.Index, target) {
		return false
	}
	rank := orOptAdjustRank(source, target, srcRank, tgtRank)
	first, second := jobA, jobB
	if reverse {
		first, second = jobB, jobA
	}
	combined := first.Pickup.Add(second.Pickup)
	combinedDelivery := first.Delivery.Add(second.Delivery)
	if !tr.RawRoute.IsValidAdditionForCapacity(combined, combinedDelivery, rank) {
		return false
	}
	if !tr.IsValidAdditionForTWWithoutMaxLoad(first.Index, rank) {
		return false
	}
	if !tr.IsValidAdditionForTWWithoutMaxLoad(second.Index, rank+1) {
		return false
	}
	if tr.Vehicle.MaxTasks > 0 && source != target && tr.Size()+2 > tr.Vehicle.MaxTasks {
		return false
	}
	return sr.IsValidRemoval(srcRank, 2)
}

func orOptAdjustRank(source, target, srcRank, tgtRank int) int {
	if source == target && tgtRank > srcRank+1 {
		return tgtRank - 2
	}
	return tgtRank
}

func orOptGain(ctx *Context, source, target, srcRank, tgtRank int, reverse bool) eval.Eval {
	removalGain := ctx.State.EdgeGain(source, srcRank)
	sr := ctx.Routes[source]
	jobA := ctx.In.Job(sr.JobAt(srcRank))
	jobB := ctx.In.Job(sr.JobAt(srcRank + 1))
	rank := orOptAdjustRank(source, target, srcRank, tgtRank)
	first, second := jobA, jobB
	if reverse {
		first, second = jobB, jobA
	}
	tr := ctx.Routes[target]
	veh := tr.Vehicle
	prevLoc := boundaryBefore(ctx, tr, rank, veh)
	nextLoc := boundaryAfter(ctx, tr, rank, veh)
	dIn, cIn, distIn := veh.Eval(prevLoc, first.Location)
	dMid, cMid, distMid := veh.Eval(first.Location, second.Location)
	dOut, cOut, distOut := veh.Eval(second.Location, nextLoc)
	dDirect, cDirect, distDirect := veh.Eval(prevLoc, nextLoc)
	insertionCost := eval.Eval{
		Cost:     cIn + cMid + cOut - cDirect,
		Duration: dIn + dMid + dOut - dDirect,
		Distance: distIn + distMid + distOut - distDirect,
	}
	return removalGain.Sub(insertionCost)
}

func applyOrOpt(ctx *Context, source, target, srcRank, tgtRank int, reverse bool) {
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	a := sr.JobAt(srcRank)
	b := sr.JobAt(srcRank + 1)
	sr.Remove(srcRank, 2)
	rank := tgtRank
	if source == target && tgtRank > srcRank+1 {
		rank = tgtRank - 2
	}
	first, second := a, b
	if reverse {
		first, second = b, a
	}
	tr.Add(first, rank)
	tr.Add(second, rank+1)
}
