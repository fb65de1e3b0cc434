package ops

import (
	"tourforge/internal/eval"
)

// unassignedExchangeValid swaps the in-route job at op.SRank of Source for
// the unassigned job op.UnassignedJob, inserted at the vacated rank (spec
// §4.7 UnassignedExchange row): a direct one-for-one substitution, used
// when the unassigned job outranks the incumbent on priority for an
// otherwise-full route.
func unassignedExchangeValid(ctx *Context, op *Operator) bool {
	if op.UnassignedJob < 0 {
		return false
	}
	if _, ok := ctx.State.Unassigned()[op.UnassignedJob]; !ok {
		return false
	}
	sr := ctx.Routes[op.Source]
	if op.SRank >= sr.Size() {
		return false
	}
	incumbent := sr.JobAt(op.SRank)
	candidate := ctx.In.Job(op.UnassignedJob)
	if candidate.Priority <= ctx.In.Job(incumbent).Priority {
		return false
	}
	if !ctx.Compat.JobVehicleSkillOK(op.UnassignedJob, op.Source) {
		return false
	}
	if !candidate.Pickup.LessOrEqual(sr.Vehicle.Capacity) || !candidate.Delivery.LessOrEqual(sr.Vehicle.Capacity) {
		return false
	}
	seq := append([]int{}, sr.Route...)
	seq[op.SRank] = op.UnassignedJob
	return tryAssembled(ctx, op.Source, seq)
}

func unassignedExchangeGain(ctx *Context, op *Operator) (eval.Eval, int) {
	sr := ctx.Routes[op.Source]
	incumbent := sr.JobAt(op.SRank)
	before := ctx.State.RouteEval(op.Source)
	seq := append([]int{}, sr.Route...)
	seq[op.SRank] = op.UnassignedJob
	after := assembledEval(ctx, op.Source, seq)
	gain := before.Sub(after)
	priorityGain := ctx.In.Job(op.UnassignedJob).Priority - ctx.In.Job(incumbent).Priority
	return gain, priorityGain
}

func applyUnassignedExchange(ctx *Context, op *Operator) {
	sr := ctx.Routes[op.Source]
	incumbent := sr.JobAt(op.SRank)
	seq := append([]int{}, sr.Route...)
	seq[op.SRank] = op.UnassignedJob
	sr.ReplaceSequence(seq, 0, sr.Size())
	ctx.State.MarkUnassigned(incumbent)
	ctx.State.MarkAssigned(op.UnassignedJob)
}

// priorityReplaceValid removes a prefix or suffix of Source's route whose
// cumulative priority is lower than op.UnassignedJob's, then inserts that
// job in the vacated space (spec §4.7 PriorityReplace row). op.SRank
// is the number of jobs cut: the prefix [0,SRank) or the suffix
// [n-SRank,end) depending on ReverseSource (false = prefix, true = suffix).
func priorityReplaceValid(ctx *Context, op *Operator) bool {
	if op.UnassignedJob < 0 {
		return false
	}
	if _, ok := ctx.State.Unassigned()[op.UnassignedJob]; !ok {
		return false
	}
	sr := ctx.Routes[op.Source]
	n := sr.Size()
	if op.SRank <= 0 || op.SRank > n {
		return false
	}
	candidate := ctx.In.Job(op.UnassignedJob)
	var cutPriority int
	var seq []int
	if !op.ReverseSource {
		cutPriority = ctx.State.FwdPriority(op.Source, op.SRank-1)
		seq = append([]int{candidate.Index}, sr.Route[op.SRank:]...)
	} else {
		cutPriority = ctx.State.BwdPriority(op.Source, n-op.SRank)
		seq = append(append([]int{}, sr.Route[:n-op.SRank]...), candidate.Index)
	}
	if cutPriority >= candidate.Priority {
		return false
	}
	if !ctx.Compat.JobVehicleSkillOK(op.UnassignedJob, op.Source) {
		return false
	}
	return tryAssembled(ctx, op.Source, seq)
}

func priorityReplaceGain(ctx *Context, op *Operator) (eval.Eval, int) {
	sr := ctx.Routes[op.Source]
	n := sr.Size()
	before := ctx.State.RouteEval(op.Source)
	candidate := ctx.In.Job(op.UnassignedJob)
	var removedPriority int
	var seq []int
	if !op.ReverseSource {
		removedPriority = ctx.State.FwdPriority(op.Source, op.SRank-1)
		seq = append([]int{candidate.Index}, sr.Route[op.SRank:]...)
	} else {
		removedPriority = ctx.State.BwdPriority(op.Source, n-op.SRank)
		seq = append(append([]int{}, sr.Route[:n-op.SRank]...), candidate.Index)
	}
	after := assembledEval(ctx, op.Source, seq)
	gain := before.Sub(after)
	return gain, candidate.Priority - removedPriority
}

func applyPriorityReplace(ctx *Context, op *Operator) {
	sr := ctx.Routes[op.Source]
	n := sr.Size()
	candidate := ctx.In.Job(op.UnassignedJob)
	var removed []int
	var seq []int
	if !op.ReverseSource {
		removed = append([]int{}, sr.Route[:op.SRank]...)
		seq = append([]int{candidate.Index}, sr.Route[op.SRank:]...)
	} else {
		removed = append([]int{}, sr.Route[n-op.SRank:]...)
		seq = append(append([]int{}, sr.Route[:n-op.SRank]...), candidate.Index)
	}
	sr.ReplaceSequence(seq, 0, sr.Size())
	for _, j := range removed {
		ctx.State.MarkUnassigned(j)
	}
	ctx.State.MarkAssigned(op.UnassignedJob)
}
