package ops

import (
	"tourforge/internal/eval"
	"tourforge/internal/route"
)

// twoOptValid checks swapping the tails of two routes after srcRank/tgtRank
// (spec §4.7 TwoOpt row): route1 keeps [0,srcRank], route2 keeps
// [0,tgtRank], and the tails are exchanged without reversal.
func twoOptValid(ctx *Context, source, target, srcRank, tgtRank int) bool {
	if source == target {
		return false
	}
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	if !noPDCrossesBoundary(ctx, sr, srcRank) || !noPDCrossesBoundary(ctx, tr, tgtRank) {
		return false
	}
	newSource := append(append([]int{}, sr.Route[:srcRank+1]...), tr.Route[tgtRank+1:]...)
	newTarget := append(append([]int{}, tr.Route[:tgtRank+1]...), sr.Route[srcRank+1:]...)
	if !skillsOK(ctx, newSource, target) || !skillsOK(ctx, newSource, source) {
		return false
	}
	if !skillsOK(ctx, newTarget, source) || !skillsOK(ctx, newTarget, target) {
		return false
	}
	return tryAssembled(ctx, source, newSource) && tryAssembled(ctx, target, newTarget)
}

// noPDCrossesBoundary rejects cutting a route between a pickup and its
// matching delivery.
func noPDCrossesBoundary(ctx *Context, r *route.TWRoute, cut int) bool {
	for k := 0; k <= cut && k < r.Size(); k++ {
		d := ctx.State.MatchingDeliveryRank(routeIndex(ctx, r), k)
		if d > cut {
			return false
		}
	}
	return true
}

// noPDInSegment rejects reversing [lo,hi] (inclusive) when any rank in the
// span is one half of a pickup/delivery pair: reversal flips relative order
// within the span, which would put a delivery before its pickup.
func noPDInSegment(ctx *Context, r *route.TWRoute, lo, hi int) bool {
	v := routeIndex(ctx, r)
	for k := lo; k <= hi; k++ {
		if ctx.State.MatchingDeliveryRank(v, k) >= 0 || ctx.State.MatchingPickupRank(v, k) >= 0 {
			return false
		}
	}
	return true
}

func routeIndex(ctx *Context, r *route.TWRoute) int {
	for i, rt := range ctx.Routes {
		if rt == r {
			return i
		}
	}
	return -1
}

func skillsOK(ctx *Context, jobIdxs []int, v int) bool {
	for _, j := range jobIdxs {
		if !ctx.Compat.JobVehicleSkillOK(j, v) {
			return false
		}
	}
	return true
}

// tryAssembled builds a scratch TWRoute for vehicle v with the given
// sequence and reports whether it is capacity- and TW-feasible, without
// mutating ctx.Routes[v].
func tryAssembled(ctx *Context, v int, sequence []int) bool {
	trial := route.NewTWRoute(ctx.Routes[v].Vehicle, ctx.In.Jobs, ctx.In.AmountDim)
	for i, j := range sequence {
		if !trial.Add(j, i) {
			return false
		}
	}
	return capacityOK(ctx, trial)
}

func capacityOK(ctx *Context, r *route.TWRoute) bool {
	cap := r.Vehicle.Capacity
	return r.MaxLoad().LessOrEqual(cap)
}

func twoOptGain(ctx *Context, source, target, srcRank, tgtRank int) eval.Eval {
	before := ctx.State.RouteEval(source).Add(ctx.State.RouteEval(target))
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	newSource := append(append([]int{}, sr.Route[:srcRank+1]...), tr.Route[tgtRank+1:]...)
	newTarget := append(append([]int{}, tr.Route[:tgtRank+1]...), sr.Route[srcRank+1:]...)
	after := assembledEval(ctx, source, newSource).Add(assembledEval(ctx, target, newTarget))
	return before.Sub(after)
}

// assembledEval computes the full Eval of vehicle v's route if it carried
// sequence, mirroring route_eval_for_vehicle: the vehicle's fixed cost is
// added once, exactly when the sequence is non-empty, so callers comparing
// it against State.RouteEval (same convention) get a correct gain whether
// or not the move changes the route's empty/non-empty status.
func assembledEval(ctx *Context, v int, sequence []int) eval.Eval {
	veh := ctx.Routes[v].Vehicle
	total := eval.Zero
	prev := -1
	if veh.HasStart() {
		prev = *veh.Start
	}
	for _, j := range sequence {
		loc := ctx.In.Job(j).Location
		if prev >= 0 {
			d, c, dist := veh.Eval(prev, loc)
			total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
		}
		prev = loc
	}
	if veh.HasEnd() && prev >= 0 {
		d, c, dist := veh.Eval(prev, *veh.End)
		total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	if len(sequence) > 0 {
		total.Cost += veh.Costs.Fixed
	}
	return total
}

func applyTwoOpt(ctx *Context, source, target, srcRank, tgtRank int) {
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	sourceTail := append([]int{}, sr.Route[srcRank+1:]...)
	targetTail := append([]int{}, tr.Route[tgtRank+1:]...)
	sr.ReplaceSequence(targetTail, srcRank+1, sr.Size())
	tr.ReplaceSequence(sourceTail, tgtRank+1, tr.Size())
}

// reverseTwoOptValid swaps source's prefix with target's prefix in
// reversed order (spec §4.7 ReverseTwoOpt row): what remains of source is
// reversed(target[:tgtRank+1]) followed by source's own tail, etc. Here we
// implement the common variant: reverse source's [0,srcRank] segment and
// splice it to the front of target, and vice versa.
func reverseTwoOptValid(ctx *Context, source, target, srcRank, tgtRank int) bool {
	if source == target {
		return false
	}
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	if !noPDCrossesBoundary(ctx, sr, srcRank) || !noPDCrossesBoundary(ctx, tr, tgtRank) {
		return false
	}
	if !noPDInSegment(ctx, sr, 0, srcRank) || !noPDInSegment(ctx, tr, 0, tgtRank) {
		return false
	}
	revSourcePrefix := reversed(sr.Route[:srcRank+1])
	revTargetPrefix := reversed(tr.Route[:tgtRank+1])
	newSource := append(append([]int{}, revTargetPrefix...), sr.Route[srcRank+1:]...)
	newTarget := append(append([]int{}, revSourcePrefix...), tr.Route[tgtRank+1:]...)
	if !skillsOK(ctx, newSource, source) || !skillsOK(ctx, newTarget, target) {
		return false
	}
	return tryAssembled(ctx, source, newSource) && tryAssembled(ctx, target, newTarget)
}

func reversed(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func reverseTwoOptGain(ctx *Context, source, target, srcRank, tgtRank int) eval.Eval {
	before := ctx.State.RouteEval(source).Add(ctx.State.RouteEval(target))
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	revSourcePrefix := reversed(sr.Route[:srcRank+1])
	revTargetPrefix := reversed(tr.Route[:tgtRank+1])
	newSource := append(append([]int{}, revTargetPrefix...), sr.Route[srcRank+1:]...)
	newTarget := append(append([]int{}, revSourcePrefix...), tr.Route[tgtRank+1:]...)
	after := assembledEval(ctx, source, newSource).Add(assembledEval(ctx, target, newTarget))
	return before.Sub(after)
}

func applyReverseTwoOpt(ctx *Context, source, target, srcRank, tgtRank int) {
	sr := ctx.Routes[source]
	tr := ctx.Routes[target]
	revSourcePrefix := reversed(sr.Route[:srcRank+1])
	revTargetPrefix := reversed(tr.Route[:tgtRank+1])
	sourceTail := append([]int{}, sr.Route[srcRank+1:]...)
	targetTail := append([]int{}, tr.Route[tgtRank+1:]...)
	sr.ReplaceSequence(append(revTargetPrefix, sourceTail...), 0, sr.Size())
	tr.ReplaceSequence(append(revSourcePrefix, targetTail...), 0, tr.Size())
}

// intraTwoOptSeq is the classic single-route 2-opt move: remove edges
// (i,i+1) and (j,j+1) and reconnect by reversing the segment between them.
func intraTwoOptSeq(route []int, i, j int) []int {
	out := append([]int{}, route[:i+1]...)
	out = append(out, reversed(route[i+1:j+1])...)
	out = append(out, route[j+1:]...)
	return out
}

// intraTwoOptValid checks the single-route 2-opt move between ranks i and
// j (i < j), used for KindIntraTwoOpt.
func intraTwoOptValid(ctx *Context, v, i, j int) bool {
	r := ctx.Routes[v]
	if i < 0 || j >= r.Size() || i+1 >= j {
		return false
	}
	if !noPDCrossesBoundary(ctx, r, i) {
		return false
	}
	if !noPDInSegment(ctx, r, i+1, j) {
		return false
	}
	seq := intraTwoOptSeq(r.Route, i, j)
	return tryAssembled(ctx, v, seq)
}

func intraTwoOptGain(ctx *Context, v, i, j int) eval.Eval {
	before := ctx.State.RouteEval(v)
	r := ctx.Routes[v]
	seq := intraTwoOptSeq(r.Route, i, j)
	after := assembledEval(ctx, v, seq)
	return before.Sub(after)
}

func applyIntraTwoOpt(ctx *Context, v, i, j int) {
	r := ctx.Routes[v]
	seq := intraTwoOptSeq(r.Route, i, j)
	r.ReplaceSequence(seq, 0, r.Size())
}
