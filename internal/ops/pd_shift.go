package ops

import (
	"tourforge/internal/eval"
	"tourforge/internal/insertion"
	"tourforge/internal/model"
)

// pdShiftValid checks moving the shipment whose pickup sits at srcRank of
// the source route into the cheapest feasible slot of the target route
// (spec §4.7 PDShift row). The actual placement is found by
// insertion.BestPD, reusing the same search construction uses.
func pdShiftValid(ctx *Context, source, target, srcRank int) bool {
	if source == target {
		return false
	}
	sr := ctx.Routes[source]
	pickupIdx := sr.JobAt(srcRank)
	pickup := ctx.In.Job(pickupIdx)
	if pickup.Type != model.JobPickup {
		return false
	}
	deliveryRank := ctx.State.MatchingDeliveryRank(source, srcRank)
	if deliveryRank < 0 {
		return false
	}
	if !ctx.Compat.JobVehicleSkillOK(pickupIdx, target) {
		return false
	}
	res := insertion.BestPD(ctx.In, ctx.State, pickupIdx, target, ctx.Routes[target], eval.NoEval)
	if res.Eval.IsNoEval() {
		return false
	}
	if !sr.IsValidRemoval(srcRank, 1) {
		return false
	}
	return true
}

func pdShiftGain(ctx *Context, source, target, srcRank int) eval.Eval {
	removalGain := ctx.State.PDGain(source, srcRank)
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	pickupIdx := sr.JobAt(srcRank)
	res := insertion.BestPD(ctx.In, ctx.State, pickupIdx, target, tr, eval.NoEval)
	insertionCost := res.Eval
	if tr.Empty() && !insertionCost.IsNoEval() {
		// Mirrors pd_shift.cpp: the target vehicle's fixed cost is
		// incurred once it carries its first job.
		insertionCost.Cost += tr.Vehicle.Costs.Fixed
	}
	return removalGain.Sub(insertionCost)
}

func applyPDShift(ctx *Context, source, target, srcRank int) {
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	pickupIdx := sr.JobAt(srcRank)
	pickup := ctx.In.Job(pickupIdx)
	deliveryIdx := pickup.PartnerIndex
	deliveryRank := ctx.State.MatchingDeliveryRank(source, srcRank)

	res := insertion.BestPD(ctx.In, ctx.State, pickupIdx, target, tr, eval.NoEval)
	if res.Eval.IsNoEval() {
		return
	}
	// Remove the higher rank first so the lower rank's index stays valid.
	hi, lo := srcRank, deliveryRank
	if lo > hi {
		hi, lo = lo, hi
	}
	sr.Remove(hi, 1)
	sr.Remove(lo, 1)

	if res.DeliveryRank == res.PickupRank {
		tr.Add(deliveryIdx, res.PickupRank)
		tr.Add(pickupIdx, res.PickupRank)
	} else {
		tr.Add(pickupIdx, res.PickupRank)
		tr.Add(deliveryIdx, res.DeliveryRank)
	}
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}
