// Package ops implements spec §4.7's local-search operator catalogue as a
// tagged variant (spec §9 design note): one Operator struct carrying the
// union of every move's fields, dispatched by Kind rather than through a
// deep class hierarchy.
package ops

import (
	"tourforge/internal/compat"
	"tourforge/internal/eval"
	"tourforge/internal/model"
	"tourforge/internal/route"
	"tourforge/internal/solstate"
)

// Kind identifies one entry of spec §4.7's operator catalogue.
type Kind int

const (
	KindUnassignedExchange Kind = iota
	KindCrossExchange
	KindMixedExchange
	KindTwoOpt
	KindReverseTwoOpt
	KindRelocate
	KindOrOpt
	KindPDShift
	KindRouteExchange
	KindSwapStar
	KindRouteSplit
	KindPriorityReplace
	KindIntraExchange
	KindIntraCrossExchange
	KindIntraMixedExchange
	KindIntraRelocate
	KindIntraOrOpt
	KindIntraTwoOpt
	KindTSPFix
)

func (k Kind) String() string {
	names := map[Kind]string{
		KindUnassignedExchange: "unassigned_exchange",
		KindCrossExchange:      "cross_exchange",
		KindMixedExchange:      "mixed_exchange",
		KindTwoOpt:             "two_opt",
		KindReverseTwoOpt:      "reverse_two_opt",
		KindRelocate:           "relocate",
		KindOrOpt:              "or_opt",
		KindPDShift:            "pd_shift",
		KindRouteExchange:      "route_exchange",
		KindSwapStar:           "swap_star",
		KindRouteSplit:         "route_split",
		KindPriorityReplace:    "priority_replace",
		KindIntraExchange:      "intra_exchange",
		KindIntraCrossExchange: "intra_cross_exchange",
		KindIntraMixedExchange: "intra_mixed_exchange",
		KindIntraRelocate:      "intra_relocate",
		KindIntraOrOpt:         "intra_or_opt",
		KindIntraTwoOpt:        "intra_two_opt",
		KindTSPFix:             "tsp_fix",
	}
	return names[k]
}

// Context is the shared, read-only environment every operator reads from:
// Input, compatibility tables, and SolutionState. Operators never hold
// their own copy; the LS engine owns this and re-derives SolutionState
// entries after each apply (spec §9).
type Context struct {
	In     *model.Input
	Compat *compat.Tables
	State  *solstate.State
	Routes []*route.TWRoute
}

// Operator is the tagged variant of spec §9's design note: one struct
// carrying every field any move might need, with behavior dispatched on
// Kind. Unused fields for a given Kind are simply left zero.
type Operator struct {
	Kind Kind

	Source int
	Target int

	SRank int // rank (or first rank of a pair/edge) in the source route
	TRank int // rank (or first rank of a pair/edge) in the target route

	ReverseSource bool
	ReverseTarget bool

	// UnassignedJob is set for moves that consume (or produce) a specific
	// unassigned job: UnassignedExchange, PriorityReplace,
	// RequiredUnassigned readers.
	UnassignedJob int

	SplitRank int // RouteSplit's chosen split point

	gainComputed bool
	gainValue    eval.Eval
	priorityGain int
	valid        bool
}

// GainUpperBound returns a cheap, possibly-overestimating bound on gain(),
// used by the LS engine to prune before full validity/gain computation.
func (op *Operator) GainUpperBound(ctx *Context) eval.Eval {
	switch op.Kind {
	case KindRelocate, KindIntraRelocate:
		return ctx.State.NodeGain(op.Source, op.SRank)
	case KindOrOpt, KindIntraOrOpt:
		return ctx.State.EdgeGain(op.Source, op.SRank)
	case KindPDShift:
		return ctx.State.PDGain(op.Source, op.SRank)
	default:
		// Permissive (very favorable) bound for operators without a cheap
		// closed-form estimate, so they are never pruned away before
		// IsValid/ComputeGain gets a chance to run. Gain Evals are compared
		// as plain numbers (bigger is better), unlike cost Evals, so the
		// permissive bound here is a very large value, not a very small one.
		return eval.Eval{Cost: 1 << 50}
	}
}

// IsValid runs the full feasibility check for the move (capacity, TW,
// skills, vehicle range) and caches the result.
func (op *Operator) IsValid(ctx *Context) bool {
	ok := op.checkValid(ctx)
	op.valid = ok
	return ok
}

// ComputeGain selects the producing variant (where relevant) and stores
// the resulting Eval; call Gain() to read it.
func (op *Operator) ComputeGain(ctx *Context) {
	op.gainValue, op.priorityGain = op.computeGain(ctx)
	op.gainComputed = true
}

// Gain returns the stored gain, computing it lazily if needed.
func (op *Operator) Gain(ctx *Context) eval.Eval {
	if !op.gainComputed {
		op.ComputeGain(ctx)
	}
	return op.gainValue
}

// PriorityGain returns the priority increase this move produces, relevant
// only for unassigned-affecting operators (UnassignedExchange,
// PriorityReplace).
func (op *Operator) PriorityGain(ctx *Context) int {
	if !op.gainComputed {
		op.ComputeGain(ctx)
	}
	return op.priorityGain
}

// Apply mutates the referenced routes in place.
func (op *Operator) Apply(ctx *Context) {
	op.apply(ctx)
}

// AdditionCandidates returns the vehicles whose unassigned list should be
// retried after this move.
func (op *Operator) AdditionCandidates() []int {
	switch op.Kind {
	case KindRelocate, KindOrOpt, KindPDShift, KindCrossExchange, KindMixedExchange,
		KindTwoOpt, KindReverseTwoOpt, KindRouteExchange, KindSwapStar, KindRouteSplit:
		return []int{op.Source, op.Target}
	default:
		return []int{op.Source}
	}
}

// UpdateCandidates returns the vehicles whose SolutionState caches must be
// refreshed after this move.
func (op *Operator) UpdateCandidates() []int {
	return op.AdditionCandidates()
}

// RequiredUnassigned returns the unassigned job indices this operator
// demands be present at apply time (invalidation hook, spec §4.7).
func (op *Operator) RequiredUnassigned() []int {
	switch op.Kind {
	case KindUnassignedExchange, KindPriorityReplace:
		if op.UnassignedJob >= 0 {
			return []int{op.UnassignedJob}
		}
	}
	return nil
}

// checkValid dispatches to the per-kind feasibility check.
func (op *Operator) checkValid(ctx *Context) bool {
	switch op.Kind {
	case KindRelocate:
		return relocateValid(ctx, op.Source, op.Target, op.SRank, op.TRank)
	case KindIntraRelocate:
		return relocateValid(ctx, op.Source, op.Source, op.SRank, op.TRank)
	case KindOrOpt:
		return orOptValid(ctx, op.Source, op.Target, op.SRank, op.TRank, op.ReverseSource)
	case KindIntraOrOpt:
		return orOptValid(ctx, op.Source, op.Source, op.SRank, op.TRank, op.ReverseSource)
	case KindPDShift:
		return pdShiftValid(ctx, op.Source, op.Target, op.SRank)
	case KindTwoOpt:
		return twoOptValid(ctx, op.Source, op.Target, op.SRank, op.TRank)
	case KindIntraTwoOpt:
		return intraTwoOptValid(ctx, op.Source, op.SRank, op.TRank)
	case KindReverseTwoOpt:
		return reverseTwoOptValid(ctx, op.Source, op.Target, op.SRank, op.TRank)
	case KindCrossExchange:
		return crossExchangeValid(ctx, op)
	case KindIntraCrossExchange:
		op.Target = op.Source
		return crossExchangeValid(ctx, op)
	case KindMixedExchange:
		return mixedExchangeValid(ctx, op)
	case KindIntraMixedExchange:
		op.Target = op.Source
		return mixedExchangeValid(ctx, op)
	case KindIntraExchange:
		return intraExchangeValid(ctx, op.Source, op.SRank, op.TRank)
	case KindUnassignedExchange:
		return unassignedExchangeValid(ctx, op)
	case KindPriorityReplace:
		return priorityReplaceValid(ctx, op)
	case KindRouteExchange:
		return routeExchangeValid(ctx, op.Source, op.Target)
	case KindSwapStar:
		return swapStarValid(ctx, op)
	case KindRouteSplit:
		return routeSplitValid(ctx, op)
	case KindTSPFix:
		return true
	}
	return false
}

// computeGain dispatches to the per-kind gain computation.
func (op *Operator) computeGain(ctx *Context) (eval.Eval, int) {
	switch op.Kind {
	case KindRelocate, KindIntraRelocate:
		return relocateGain(ctx, op.Source, op.Target, op.SRank, op.TRank), 0
	case KindOrOpt, KindIntraOrOpt:
		return orOptGain(ctx, op.Source, op.Target, op.SRank, op.TRank, op.ReverseSource), 0
	case KindPDShift:
		return pdShiftGain(ctx, op.Source, op.Target, op.SRank), 0
	case KindTwoOpt:
		return twoOptGain(ctx, op.Source, op.Target, op.SRank, op.TRank), 0
	case KindIntraTwoOpt:
		return intraTwoOptGain(ctx, op.Source, op.SRank, op.TRank), 0
	case KindReverseTwoOpt:
		return reverseTwoOptGain(ctx, op.Source, op.Target, op.SRank, op.TRank), 0
	case KindCrossExchange, KindIntraCrossExchange:
		if op.Kind == KindIntraCrossExchange {
			op.Target = op.Source
		}
		return crossExchangeGain(ctx, op), 0
	case KindMixedExchange, KindIntraMixedExchange:
		if op.Kind == KindIntraMixedExchange {
			op.Target = op.Source
		}
		return mixedExchangeGain(ctx, op), 0
	case KindIntraExchange:
		return intraExchangeGain(ctx, op.Source, op.SRank, op.TRank), 0
	case KindUnassignedExchange:
		return unassignedExchangeGain(ctx, op)
	case KindPriorityReplace:
		return priorityReplaceGain(ctx, op)
	case KindRouteExchange:
		return routeExchangeGain(ctx, op.Source, op.Target), 0
	case KindSwapStar:
		return swapStarGain(ctx, op), 0
	case KindRouteSplit:
		return routeSplitGain(ctx, op), 0
	case KindTSPFix:
		return tspFixGain(ctx, op), 0
	}
	return eval.NoEval, 0
}

// apply dispatches to the per-kind mutation.
func (op *Operator) apply(ctx *Context) {
	switch op.Kind {
	case KindRelocate, KindIntraRelocate:
		applyRelocate(ctx, op.Source, op.Target, op.SRank, op.TRank)
	case KindOrOpt, KindIntraOrOpt:
		applyOrOpt(ctx, op.Source, op.Target, op.SRank, op.TRank, op.ReverseSource)
	case KindPDShift:
		applyPDShift(ctx, op.Source, op.Target, op.SRank)
	case KindTwoOpt:
		applyTwoOpt(ctx, op.Source, op.Target, op.SRank, op.TRank)
	case KindIntraTwoOpt:
		applyIntraTwoOpt(ctx, op.Source, op.SRank, op.TRank)
	case KindReverseTwoOpt:
		applyReverseTwoOpt(ctx, op.Source, op.Target, op.SRank, op.TRank)
	case KindCrossExchange, KindIntraCrossExchange:
		applyCrossExchange(ctx, op)
	case KindMixedExchange, KindIntraMixedExchange:
		applyMixedExchange(ctx, op)
	case KindIntraExchange:
		applyIntraExchange(ctx, op.Source, op.SRank, op.TRank)
	case KindUnassignedExchange:
		applyUnassignedExchange(ctx, op)
	case KindPriorityReplace:
		applyPriorityReplace(ctx, op)
	case KindRouteExchange:
		applyRouteExchange(ctx, op.Source, op.Target)
	case KindSwapStar:
		applySwapStar(ctx, op)
	case KindRouteSplit:
		applyRouteSplit(ctx, op)
	case KindTSPFix:
		applyTSPFix(ctx, op)
	}
}
