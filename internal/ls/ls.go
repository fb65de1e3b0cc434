// Package ls implements spec §4.7/§4.8/§4.9's local-search engine: best
// improvement move selection across the operator catalogue, try_job_additions
// for unassigned jobs, and the outer ruin-and-recreate loop.
package ls

import (
	"context"
	"log"
	"math/rand"

	"tourforge/internal/compat"
	"tourforge/internal/eval"
	"tourforge/internal/insertion"
	"tourforge/internal/model"
	"tourforge/internal/ops"
	"tourforge/internal/route"
	"tourforge/internal/solstate"
)

// interRouteKinds is the operator catalogue the move-selection loop
// enumerates per ordered vehicle pair (spec §4.7); the Intra* kinds in
// intraRouteKinds are only ever tried with Source == Target.
var interRouteKinds = []ops.Kind{
	ops.KindRelocate,
	ops.KindOrOpt,
	ops.KindPDShift,
	ops.KindTwoOpt,
	ops.KindReverseTwoOpt,
	ops.KindCrossExchange,
	ops.KindMixedExchange,
	ops.KindRouteExchange,
	ops.KindSwapStar,
	ops.KindRouteSplit,
}

var intraRouteKinds = []ops.Kind{
	ops.KindIntraRelocate,
	ops.KindIntraOrOpt,
	ops.KindIntraTwoOpt,
	ops.KindIntraExchange,
	ops.KindIntraCrossExchange,
	ops.KindIntraMixedExchange,
}

// Engine runs the local search over a fixed Input/compatibility pair,
// mutating a set of routes and an unassigned set in place.
type Engine struct {
	In     *model.Input
	Compat *compat.Tables
}

// New builds an Engine for in.
func New(in *model.Input, ct *compat.Tables) *Engine {
	return &Engine{In: in, Compat: ct}
}

// Step runs one best-improvement local-search descent to a local optimum
// (spec §4.7's "move selection policy": scan every candidate, apply the
// single best-gain valid move, repeat until none improves).
func (e *Engine) Step(ctx context.Context, routes []*route.TWRoute, unassigned map[int]struct{}) {
	st := solstate.New(e.In, e.Compat)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		st.Setup(routes)
		opCtx := &ops.Context{In: e.In, Compat: e.Compat, State: st, Routes: routes}

		best, bestGain, found := e.bestMove(opCtx)
		if !found || !eval.Zero.Less(bestGain) {
			break
		}
		best.Apply(opCtx)
		log.Printf("[LS] applied %s gain=%d", best.Kind, bestGain.Cost)
	}
	e.tryJobAdditions(ctx, routes, unassigned)
}

// bestMove enumerates every operator kind over every relevant
// vehicle/rank combination and returns the single best-gain valid move.
// Real VROOM-derived engines prune this search hard with gain_upper_bound
// and per-vehicle candidate lists (spec §4.7); this implementation keeps
// the same contract (probe, validate, gain, pick best) with the pruning
// left coarse, trading search breadth for implementation tractability.
func (e *Engine) bestMove(ctx *ops.Context) (*ops.Operator, eval.Eval, bool) {
	var best *ops.Operator
	bestGain := eval.Eval{Cost: -1 << 50}
	found := false

	consider := func(op *ops.Operator) {
		if found && !bestGain.Less(op.GainUpperBound(ctx)) {
			return
		}
		if !op.IsValid(ctx) {
			return
		}
		g := op.Gain(ctx)
		if g.IsNoEval() {
			return
		}
		if !found || bestGain.Less(g) {
			bestGain = g
			found = true
			cp := *op
			best = &cp
		}
	}

	hasShipments := false
	for j := range ctx.In.Jobs {
		if ctx.In.Jobs[j].Type != model.JobSingle {
			hasShipments = true
		}
	}

	nv := len(ctx.Routes)
	for v := 0; v < nv; v++ {
		n := ctx.Routes[v].Size()
		for _, kind := range intraRouteKinds {
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					consider(&ops.Operator{Kind: kind, Source: v, Target: v, SRank: i, TRank: j})
					consider(&ops.Operator{Kind: kind, Source: v, Target: v, SRank: i, TRank: j, ReverseSource: true})
					consider(&ops.Operator{Kind: kind, Source: v, Target: v, SRank: i, TRank: j, ReverseTarget: true})
				}
			}
		}
		if ctx.In.Options.ApplyTSPFix && !hasShipments && n > 1 {
			consider(&ops.Operator{Kind: ops.KindTSPFix, Source: v, Target: v})
		}
	}

	for v1 := 0; v1 < nv; v1++ {
		for v2 := 0; v2 < nv; v2++ {
			if v1 == v2 || !ctx.Compat.VehiclesShareJob(v1, v2) {
				continue
			}
			if !ctx.State.RouteBBox(v1).Overlaps(ctx.State.RouteBBox(v2)) {
				continue
			}
			n1, n2 := ctx.Routes[v1].Size(), ctx.Routes[v2].Size()
			for _, kind := range interRouteKinds {
				switch kind {
				case ops.KindRouteExchange:
					consider(&ops.Operator{Kind: kind, Source: v1, Target: v2})
				case ops.KindRouteSplit:
					for s := 1; s < n1; s++ {
						consider(&ops.Operator{Kind: kind, Source: v1, Target: v2, SplitRank: s})
					}
				default:
					for i := 0; i < n1; i++ {
						for j := 0; j <= n2; j++ {
							consider(&ops.Operator{Kind: kind, Source: v1, Target: v2, SRank: i, TRank: j})
							consider(&ops.Operator{Kind: kind, Source: v1, Target: v2, SRank: i, TRank: j, ReverseSource: true})
							consider(&ops.Operator{Kind: kind, Source: v1, Target: v2, SRank: i, TRank: j, ReverseTarget: true})
						}
					}
				}
			}
		}
	}

	return best, bestGain, found
}

// tryJobAdditions attempts to insert every unassigned job into whichever
// route accepts it most cheaply (spec §4.8), highest priority first.
func (e *Engine) tryJobAdditions(ctx context.Context, routes []*route.TWRoute, unassigned map[int]struct{}) {
	st := solstate.New(e.In, e.Compat)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		st.Setup(routes)
		bestJob, bestV, bestSingle, bestPD := -1, -1, (*insertion.SingleResult)(nil), (*insertion.PDResult)(nil)
		bestPriority := -1
		bestCost := eval.NoEval

		for j := range unassigned {
			job := e.In.Job(j)
			if job.Type == model.JobDelivery {
				continue
			}
			for v := range e.In.Vehicles {
				if !e.Compat.JobVehicleSkillOK(j, v) {
					continue
				}
				// Mirrors local_search.cpp's try_job_additions: an empty
				// vehicle only incurs its fixed cost once it gets its
				// first job, so that charge is folded into the comparison
				// cost here rather than into the insertion search itself.
				fixedCost := int64(0)
				if routes[v].Empty() {
					fixedCost = routes[v].Vehicle.Costs.Fixed
				}
				var here eval.Eval
				var single *insertion.SingleResult
				var pd *insertion.PDResult
				if job.Type == model.JobPickup {
					res := insertion.BestPD(e.In, st, j, v, routes[v], eval.NoEval)
					if res.Eval.IsNoEval() {
						continue
					}
					pd = &res
					here = res.Eval
					here.Cost += fixedCost
				} else {
					res := insertion.BestSingle(e.In, st, j, v, routes[v])
					if res.Eval.IsNoEval() {
						continue
					}
					single = &res
					here = res.Eval
					here.Cost += fixedCost
				}
				if job.Priority > bestPriority || (job.Priority == bestPriority && here.Less(bestCost)) {
					bestJob, bestV, bestSingle, bestPD = j, v, single, pd
					bestPriority = job.Priority
					bestCost = here
				}
			}
		}

		if bestJob < 0 {
			return
		}
		if bestPD != nil {
			applyPDInsertion(e.In, routes[bestV], bestJob, bestPD, unassigned)
		} else {
			applySingleInsertion(routes[bestV], bestJob, bestSingle, unassigned)
		}
	}
}

func applySingleInsertion(r *route.TWRoute, j int, res *insertion.SingleResult, unassigned map[int]struct{}) {
	if !r.Add(j, res.Rank) {
		return
	}
	delete(unassigned, j)
}

func applyPDInsertion(in *model.Input, r *route.TWRoute, j int, res *insertion.PDResult, unassigned map[int]struct{}) {
	pickup := in.Job(j)
	deliveryIdx := pickup.PartnerIndex
	if res.DeliveryRank == res.PickupRank {
		if !r.Add(deliveryIdx, res.PickupRank) {
			return
		}
		if !r.Add(j, res.PickupRank) {
			r.Remove(res.PickupRank, 1)
			return
		}
	} else {
		if !r.Add(j, res.PickupRank) {
			return
		}
		if !r.Add(deliveryIdx, res.DeliveryRank) {
			r.Remove(res.PickupRank, 1)
			return
		}
	}
	delete(unassigned, j)
	delete(unassigned, deliveryIdx)
}

// RemoveFromRoutes ruins the current solution (spec §4.9): pick depth
// random jobs, removing each (and its PD partner if any) from whatever
// route carries it, adding them to unassigned.
func RemoveFromRoutes(in *model.Input, routes []*route.TWRoute, unassigned map[int]struct{}, depth int, rng *rand.Rand) {
	type loc struct {
		v, rank int
	}
	present := make(map[int]loc)
	for v, r := range routes {
		for k := 0; k < r.Size(); k++ {
			present[r.JobAt(k)] = loc{v: v, rank: k}
		}
	}
	if len(present) == 0 {
		return
	}
	keys := make([]int, 0, len(present))
	for j := range present {
		keys = append(keys, j)
	}
	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	removed := make(map[int]struct{})
	for _, j := range keys {
		if len(removed) >= depth {
			break
		}
		if _, already := removed[j]; already {
			continue
		}
		job := in.Job(j)
		partner := -1
		if job.Type == model.JobPickup || job.Type == model.JobDelivery {
			partner = job.PartnerIndex
		}
		removed[j] = struct{}{}
		if partner >= 0 {
			removed[partner] = struct{}{}
		}
	}

	byRoute := make(map[int][]int)
	for j := range removed {
		l, ok := present[j]
		if !ok {
			continue
		}
		byRoute[l.v] = append(byRoute[l.v], j)
	}
	for v, jobs := range byRoute {
		r := routes[v]
		for _, j := range jobs {
			for k := 0; k < r.Size(); k++ {
				if r.JobAt(k) == j {
					r.Remove(k, 1)
					break
				}
			}
		}
	}
	for j := range removed {
		unassigned[j] = struct{}{}
	}
}

// Run executes the full ruin-and-recreate outer loop (spec §4.9) until ctx
// is done, returning the best solution (routes, unassigned) found.
func (e *Engine) Run(ctx context.Context, routes []*route.TWRoute, unassigned map[int]struct{}, depth int, seed int64) ([]*route.TWRoute, map[int]struct{}) {
	rng := rand.New(rand.NewSource(seed))
	e.Step(ctx, routes, unassigned)

	best := cloneRoutes(routes)
	bestUnassigned := cloneUnassigned(unassigned)
	bestIndicators := Indicators(e.In, routes, unassigned)

	for {
		select {
		case <-ctx.Done():
			return best, bestUnassigned
		default:
		}
		RemoveFromRoutes(e.In, routes, unassigned, depth, rng)
		e.Step(ctx, routes, unassigned)
		cur := Indicators(e.In, routes, unassigned)
		if cur.Less(bestIndicators) {
			bestIndicators = cur
			best = cloneRoutes(routes)
			bestUnassigned = cloneUnassigned(unassigned)
		} else {
			routes = cloneRoutes(best)
			unassigned = cloneUnassigned(bestUnassigned)
		}
	}
}

func cloneRoutes(routes []*route.TWRoute) []*route.TWRoute {
	out := make([]*route.TWRoute, len(routes))
	for i, r := range routes {
		out[i] = r.Clone()
	}
	return out
}

func cloneUnassigned(u map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(u))
	for j := range u {
		out[j] = struct{}{}
	}
	return out
}

// Indicators computes the lexicographic comparison tuple for the current
// routes/unassigned state (spec §4.9's solution ranking).
func Indicators(in *model.Input, routes []*route.TWRoute, unassigned map[int]struct{}) model.Indicators {
	unassignedPriority := 0
	for j := range unassigned {
		unassignedPriority += in.Job(j).Priority
	}
	assigned := 0
	vehiclesUsed := 0
	totalCost := int64(0)
	for _, r := range routes {
		if r.Size() == 0 {
			continue
		}
		vehiclesUsed++
		assigned += r.Size()
		prev := -1
		if r.Vehicle.HasStart() {
			prev = *r.Vehicle.Start
		}
		for k := 0; k < r.Size(); k++ {
			loc := in.Job(r.JobAt(k)).Location
			if prev >= 0 {
				_, c, _ := r.Vehicle.Eval(prev, loc)
				totalCost += c
			}
			prev = loc
		}
		if r.Vehicle.HasEnd() && prev >= 0 {
			_, c, _ := r.Vehicle.Eval(prev, *r.Vehicle.End)
			totalCost += c
		}
		totalCost += r.Vehicle.Costs.Fixed
	}
	return model.Indicators{
		UnassignedPriority: unassignedPriority,
		AssignedCount:      assigned,
		VehiclesUsed:       vehiclesUsed,
		Cost:               totalCost,
	}
}
