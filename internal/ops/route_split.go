package ops

import "tourforge/internal/eval"

// routeSplitValid checks splitting Source's route at op.SplitRank, handing
// the suffix [SplitRank, end) to the currently empty vehicle Target (spec
// §4.7 RouteSplit row).
func routeSplitValid(ctx *Context, op *Operator) bool {
	if op.Source == op.Target {
		return false
	}
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	if !tr.Empty() {
		return false
	}
	if op.SplitRank <= 0 || op.SplitRank >= sr.Size() {
		return false
	}
	suffix := sr.Route[op.SplitRank:]
	if !skillsOK(ctx, suffix, op.Target) {
		return false
	}
	return tryAssembled(ctx, op.Target, suffix) && tryAssembled(ctx, op.Source, sr.Route[:op.SplitRank])
}

func routeSplitGain(ctx *Context, op *Operator) eval.Eval {
	before := ctx.State.RouteEval(op.Source)
	sr := ctx.Routes[op.Source]
	after := assembledEval(ctx, op.Source, sr.Route[:op.SplitRank]).Add(assembledEval(ctx, op.Target, sr.Route[op.SplitRank:]))
	return before.Sub(after)
}

func applyRouteSplit(ctx *Context, op *Operator) {
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	suffix := append([]int{}, sr.Route[op.SplitRank:]...)
	sr.Remove(op.SplitRank, len(suffix))
	tr.ReplaceSequence(suffix, 0, tr.Size())
}
