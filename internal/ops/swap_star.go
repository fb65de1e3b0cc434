package ops

import (
	"tourforge/internal/eval"
	"tourforge/internal/model"
)

// swapStarValid checks swapping the single job at op.SRank of Source with
// the single job at op.TRank of Target, each reinserted at its cheapest
// cached rank in the other's route via the ThreeInsertions table (spec
// §4.7 SwapStar row; SPEC_FULL §5.1).
func swapStarValid(ctx *Context, op *Operator) bool {
	if op.Source == op.Target {
		return false
	}
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	if op.SRank >= sr.Size() || op.TRank >= tr.Size() {
		return false
	}
	jobA := ctx.In.Job(sr.JobAt(op.SRank))
	jobB := ctx.In.Job(tr.JobAt(op.TRank))
	if jobA.Type != model.JobSingle || jobB.Type != model.JobSingle {
		return false
	}
	if !ctx.Compat.JobVehicleSkillOK(jobA.Index, op.Target) || !ctx.Compat.JobVehicleSkillOK(jobB.Index, op.Source) {
		return false
	}
	p, ok := bestSwapStarPlacement(ctx, op)
	if !ok {
		return false
	}
	newSource := append(append([]int{}, sr.Route[:op.SRank]...), sr.Route[op.SRank+1:]...)
	newTarget := append(append([]int{}, tr.Route[:op.TRank]...), tr.Route[op.TRank+1:]...)
	rs, rt := min2(p.rankInSource, len(newSource)), min2(p.rankInTarget, len(newTarget))
	newSource = append(newSource[:rs], append([]int{jobB.Index}, newSource[rs:]...)...)
	newTarget = append(newTarget[:rt], append([]int{jobA.Index}, newTarget[rt:]...)...)
	return tryAssembled(ctx, op.Source, newSource) && tryAssembled(ctx, op.Target, newTarget)
}

type swapStarPlacement struct {
	rankInTarget int
	rankInSource int
	gain         eval.Eval
}

// bestSwapStarPlacement scans the cached top-3 insertion ranks for jobA in
// Target and jobB in Source, picking whichever combination yields the
// largest total gain over the two removals.
func bestSwapStarPlacement(ctx *Context, op *Operator) (swapStarPlacement, bool) {
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	jobAIdx := sr.JobAt(op.SRank)
	jobBIdx := tr.JobAt(op.TRank)

	removalGain := ctx.State.NodeGain(op.Source, op.SRank).Add(ctx.State.NodeGain(op.Target, op.TRank))

	tiA := ctx.State.ThreeInsertionsFor(op.Target, jobAIdx)
	tiB := ctx.State.ThreeInsertionsFor(op.Source, jobBIdx)
	if tiA.Count == 0 || tiB.Count == 0 {
		return swapStarPlacement{}, false
	}

	best := swapStarPlacement{gain: eval.NoEval}
	found := false
	for i := 0; i < tiA.Count; i++ {
		for j := 0; j < tiB.Count; j++ {
			insertionCost := tiA.Evals[i].Add(tiB.Evals[j])
			gain := removalGain.Sub(insertionCost)
			if !found || best.gain.Less(gain) {
				best = swapStarPlacement{rankInTarget: tiA.Ranks[i], rankInSource: tiB.Ranks[j], gain: gain}
				found = true
			}
		}
	}
	return best, found
}

func swapStarGain(ctx *Context, op *Operator) eval.Eval {
	p, ok := bestSwapStarPlacement(ctx, op)
	if !ok {
		return eval.NoEval
	}
	return p.gain
}

func applySwapStar(ctx *Context, op *Operator) {
	p, ok := bestSwapStarPlacement(ctx, op)
	if !ok {
		return
	}
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	jobAIdx := sr.JobAt(op.SRank)
	jobBIdx := tr.JobAt(op.TRank)

	sr.Remove(op.SRank, 1)
	tr.Remove(op.TRank, 1)

	rankInTarget := p.rankInTarget
	if rankInTarget > tr.Size() {
		rankInTarget = tr.Size()
	}
	rankInSource := p.rankInSource
	if rankInSource > sr.Size() {
		rankInSource = sr.Size()
	}
	tr.Add(jobAIdx, rankInTarget)
	sr.Add(jobBIdx, rankInSource)
}
