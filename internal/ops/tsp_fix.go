package ops

import "tourforge/internal/eval"

// tspFixGain runs a bounded 2-opt descent over Source's own route and
// returns the total gain of the best sequence found (spec §4.7 TSPFix row;
// grounded via SPEC_FULL §5.5 on a pure 2-opt descent rather than an exact
// TSP solver, since the example pack carries no matching/MST library).
// Gated off by default: the LS engine only schedules this operator when
// Input.Options.ApplyTSPFix is set and the instance has no shipments.
func tspFixGain(ctx *Context, op *Operator) eval.Eval {
	before := ctx.State.RouteEval(op.Source)
	best := improvedSequence(ctx, op.Source)
	after := assembledEval(ctx, op.Source, best)
	return before.Sub(after)
}

// improvedSequence repeatedly applies the best-improving 2-opt reversal
// within one route until no improving move remains.
func improvedSequence(ctx *Context, v int) []int {
	r := ctx.Routes[v]
	seq := append([]int{}, r.Route...)
	n := len(seq)
	improved := true
	for improved {
		improved = false
		bestGain := eval.Zero
		bestI, bestJ := -1, -1
		cur := assembledEval(ctx, v, seq)
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				trial := append([]int{}, seq[:i]...)
				trial = append(trial, reversed(seq[i:j+1])...)
				trial = append(trial, seq[j+1:]...)
				cand := assembledEval(ctx, v, trial)
				gain := cur.Sub(cand)
				if bestI < 0 || bestGain.Less(gain) {
					bestGain, bestI, bestJ = gain, i, j
				}
			}
		}
		if bestI >= 0 && eval.Zero.Less(bestGain) {
			trial := append([]int{}, seq[:bestI]...)
			trial = append(trial, reversed(seq[bestI:bestJ+1])...)
			trial = append(trial, seq[bestJ+1:]...)
			if tryAssembled(ctx, v, trial) {
				seq = trial
				improved = true
			}
		}
	}
	return seq
}

func applyTSPFix(ctx *Context, op *Operator) {
	r := ctx.Routes[op.Source]
	seq := improvedSequence(ctx, op.Source)
	r.ReplaceSequence(seq, 0, r.Size())
}
