package ops

import (
	"tourforge/internal/eval"
	"tourforge/internal/model"
)

// segment describes a run of S consecutive single jobs at a given rank.
type segment struct {
	route  int
	rank   int
	length int // 1 or 2
}

func segmentJobs(ctx *Context, s segment) []int {
	r := ctx.Routes[s.route]
	out := make([]int, s.length)
	for i := 0; i < s.length; i++ {
		out[i] = r.JobAt(s.rank + i)
	}
	return out
}

func segmentIsSingles(ctx *Context, s segment) bool {
	for _, j := range segmentJobs(ctx, s) {
		if ctx.In.Job(j).Type != model.JobSingle {
			return false
		}
	}
	return true
}

func withSegmentRemoved(route []int, s segment) []int {
	out := append([]int{}, route[:s.rank]...)
	out = append(out, route[s.rank+s.length:]...)
	return out
}

func withSegmentSpliced(route []int, rank int, jobs []int, reverse bool) []int {
	ins := jobs
	if reverse {
		ins = reversed(jobs)
	}
	out := append([]int{}, route[:rank]...)
	out = append(out, ins...)
	out = append(out, route[rank:]...)
	return out
}

// intraSegmentSwapSeq swaps two disjoint, non-overlapping segments of the
// same route (segA strictly before segB), each optionally reversed,
// producing the resulting sequence in one pass.
func intraSegmentSwapSeq(route []int, segA, segB segment, reverseA, reverseB bool) []int {
	aJobs := append([]int{}, route[segA.rank:segA.rank+segA.length]...)
	bJobs := append([]int{}, route[segB.rank:segB.rank+segB.length]...)
	if reverseA {
		aJobs = reversed(aJobs)
	}
	if reverseB {
		bJobs = reversed(bJobs)
	}
	out := append([]int{}, route[:segA.rank]...)
	out = append(out, bJobs...)
	out = append(out, route[segA.rank+segA.length:segB.rank]...)
	out = append(out, aJobs...)
	out = append(out, route[segB.rank+segB.length:]...)
	return out
}

// crossExchangeValid swaps the segment at op.SRank (length 2) of Source
// with the segment at op.TRank of Target, honoring ReverseSource /
// ReverseTarget (spec §4.7 CrossExchange row; same-route case doubles as
// IntraCrossExchange).
func crossExchangeValid(ctx *Context, op *Operator) bool {
	segLen := 2
	sSeg := segment{route: op.Source, rank: op.SRank, length: segLen}
	tSeg := segment{route: op.Target, rank: op.TRank, length: segLen}
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	if sSeg.rank+sSeg.length > sr.Size() || tSeg.rank+tSeg.length > tr.Size() {
		return false
	}
	if !segmentIsSingles(ctx, sSeg) || !segmentIsSingles(ctx, tSeg) {
		return false
	}

	if op.Source == op.Target {
		first, second := sSeg, tSeg
		firstRev, secondRev := op.ReverseSource, op.ReverseTarget
		if first.rank > second.rank {
			first, second = second, first
			firstRev, secondRev = secondRev, firstRev
		}
		if first.rank+first.length > second.rank {
			return false
		}
		seq := intraSegmentSwapSeq(sr.Route, first, second, firstRev, secondRev)
		return tryAssembled(ctx, op.Source, seq)
	}

	sJobs := segmentJobs(ctx, sSeg)
	tJobs := segmentJobs(ctx, tSeg)
	if !skillsOK(ctx, tJobs, op.Source) || !skillsOK(ctx, sJobs, op.Target) {
		return false
	}
	newSourceSeq := withSegmentSpliced(withSegmentRemoved(sr.Route, sSeg), sSeg.rank, tJobs, op.ReverseTarget)
	newTargetSeq := withSegmentSpliced(withSegmentRemoved(tr.Route, tSeg), tSeg.rank, sJobs, op.ReverseSource)
	return tryAssembled(ctx, op.Source, newSourceSeq) && tryAssembled(ctx, op.Target, newTargetSeq)
}

func crossExchangeGain(ctx *Context, op *Operator) eval.Eval {
	segLen := 2
	sSeg := segment{route: op.Source, rank: op.SRank, length: segLen}
	tSeg := segment{route: op.Target, rank: op.TRank, length: segLen}
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]

	if op.Source == op.Target {
		before := ctx.State.RouteEval(op.Source)
		first, second := sSeg, tSeg
		firstRev, secondRev := op.ReverseSource, op.ReverseTarget
		if first.rank > second.rank {
			first, second = second, first
			firstRev, secondRev = secondRev, firstRev
		}
		seq := intraSegmentSwapSeq(sr.Route, first, second, firstRev, secondRev)
		after := assembledEval(ctx, op.Source, seq)
		return before.Sub(after)
	}

	before := ctx.State.RouteEval(op.Source).Add(ctx.State.RouteEval(op.Target))
	sJobs := segmentJobs(ctx, sSeg)
	tJobs := segmentJobs(ctx, tSeg)
	newSourceSeq := withSegmentSpliced(withSegmentRemoved(sr.Route, sSeg), sSeg.rank, tJobs, op.ReverseTarget)
	newTargetSeq := withSegmentSpliced(withSegmentRemoved(tr.Route, tSeg), tSeg.rank, sJobs, op.ReverseSource)
	after := assembledEval(ctx, op.Source, newSourceSeq).Add(assembledEval(ctx, op.Target, newTargetSeq))
	return before.Sub(after)
}

func applyCrossExchange(ctx *Context, op *Operator) {
	segLen := 2
	sSeg := segment{route: op.Source, rank: op.SRank, length: segLen}
	tSeg := segment{route: op.Target, rank: op.TRank, length: segLen}
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]

	if op.Source == op.Target {
		first, second := sSeg, tSeg
		firstRev, secondRev := op.ReverseSource, op.ReverseTarget
		if first.rank > second.rank {
			first, second = second, first
			firstRev, secondRev = secondRev, firstRev
		}
		seq := intraSegmentSwapSeq(sr.Route, first, second, firstRev, secondRev)
		sr.ReplaceSequence(seq, 0, sr.Size())
		return
	}

	sJobs := segmentJobs(ctx, sSeg)
	tJobs := segmentJobs(ctx, tSeg)
	newSourceSeq := withSegmentSpliced(withSegmentRemoved(sr.Route, sSeg), sSeg.rank, tJobs, op.ReverseTarget)
	newTargetSeq := withSegmentSpliced(withSegmentRemoved(tr.Route, tSeg), tSeg.rank, sJobs, op.ReverseSource)
	sr.ReplaceSequence(newSourceSeq, 0, sr.Size())
	tr.ReplaceSequence(newTargetSeq, 0, tr.Size())
}

// mixedExchangeValid swaps the single job at op.SRank of Source with the
// 2-job segment at op.TRank of Target (spec §4.7 MixedExchange row;
// same-route case doubles as IntraMixedExchange).
func mixedExchangeValid(ctx *Context, op *Operator) bool {
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	if op.SRank >= sr.Size() || op.TRank+2 > tr.Size() {
		return false
	}
	sJob := ctx.In.Job(sr.JobAt(op.SRank))
	if sJob.Type != model.JobSingle {
		return false
	}
	tSeg := segment{route: op.Target, rank: op.TRank, length: 2}
	if !segmentIsSingles(ctx, tSeg) {
		return false
	}

	if op.Source == op.Target {
		sSeg := segment{route: op.Source, rank: op.SRank, length: 1}
		first, second := sSeg, tSeg
		firstRev, secondRev := false, op.ReverseTarget
		if first.rank > second.rank {
			first, second = second, first
			firstRev, secondRev = secondRev, firstRev
		}
		if first.rank+first.length > second.rank {
			return false
		}
		seq := intraSegmentSwapSeq(sr.Route, first, second, firstRev, secondRev)
		return tryAssembled(ctx, op.Source, seq)
	}

	tJobs := segmentJobs(ctx, tSeg)
	if !skillsOK(ctx, tJobs, op.Source) || !ctx.Compat.JobVehicleSkillOK(sJob.Index, op.Target) {
		return false
	}
	sSeg := segment{route: op.Source, rank: op.SRank, length: 1}
	newSourceSeq := withSegmentSpliced(withSegmentRemoved(sr.Route, sSeg), op.SRank, tJobs, op.ReverseTarget)
	newTargetSeq := withSegmentSpliced(withSegmentRemoved(tr.Route, tSeg), op.TRank, []int{sJob.Index}, false)
	return tryAssembled(ctx, op.Source, newSourceSeq) && tryAssembled(ctx, op.Target, newTargetSeq)
}

func mixedExchangeGain(ctx *Context, op *Operator) eval.Eval {
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	tSeg := segment{route: op.Target, rank: op.TRank, length: 2}

	if op.Source == op.Target {
		before := ctx.State.RouteEval(op.Source)
		sSeg := segment{route: op.Source, rank: op.SRank, length: 1}
		first, second := sSeg, tSeg
		firstRev, secondRev := false, op.ReverseTarget
		if first.rank > second.rank {
			first, second = second, first
			firstRev, secondRev = secondRev, firstRev
		}
		seq := intraSegmentSwapSeq(sr.Route, first, second, firstRev, secondRev)
		after := assembledEval(ctx, op.Source, seq)
		return before.Sub(after)
	}

	before := ctx.State.RouteEval(op.Source).Add(ctx.State.RouteEval(op.Target))
	sJob := ctx.In.Job(sr.JobAt(op.SRank))
	tJobs := segmentJobs(ctx, tSeg)
	sSeg := segment{route: op.Source, rank: op.SRank, length: 1}
	newSourceSeq := withSegmentSpliced(withSegmentRemoved(sr.Route, sSeg), op.SRank, tJobs, op.ReverseTarget)
	newTargetSeq := withSegmentSpliced(withSegmentRemoved(tr.Route, tSeg), op.TRank, []int{sJob.Index}, false)
	after := assembledEval(ctx, op.Source, newSourceSeq).Add(assembledEval(ctx, op.Target, newTargetSeq))
	return before.Sub(after)
}

func applyMixedExchange(ctx *Context, op *Operator) {
	sr := ctx.Routes[op.Source]
	tr := ctx.Routes[op.Target]
	tSeg := segment{route: op.Target, rank: op.TRank, length: 2}

	if op.Source == op.Target {
		sSeg := segment{route: op.Source, rank: op.SRank, length: 1}
		first, second := sSeg, tSeg
		firstRev, secondRev := false, op.ReverseTarget
		if first.rank > second.rank {
			first, second = second, first
			firstRev, secondRev = secondRev, firstRev
		}
		seq := intraSegmentSwapSeq(sr.Route, first, second, firstRev, secondRev)
		sr.ReplaceSequence(seq, 0, sr.Size())
		return
	}

	sJob := ctx.In.Job(sr.JobAt(op.SRank))
	tJobs := segmentJobs(ctx, tSeg)
	sSeg := segment{route: op.Source, rank: op.SRank, length: 1}
	newSourceSeq := withSegmentSpliced(withSegmentRemoved(sr.Route, sSeg), op.SRank, tJobs, op.ReverseTarget)
	newTargetSeq := withSegmentSpliced(withSegmentRemoved(tr.Route, tSeg), op.TRank, []int{sJob.Index}, false)
	sr.ReplaceSequence(newSourceSeq, 0, sr.Size())
	tr.ReplaceSequence(newTargetSeq, 0, tr.Size())
}

// intraExchangeValid swaps two single jobs within the same route (spec
// §4.7 IntraExchange row).
func intraExchangeValid(ctx *Context, v, rankA, rankB int) bool {
	if rankA == rankB {
		return false
	}
	r := ctx.Routes[v]
	if rankA >= r.Size() || rankB >= r.Size() {
		return false
	}
	jobA := ctx.In.Job(r.JobAt(rankA))
	jobB := ctx.In.Job(r.JobAt(rankB))
	if jobA.Type != model.JobSingle || jobB.Type != model.JobSingle {
		return false
	}
	seq := append([]int{}, r.Route...)
	seq[rankA], seq[rankB] = seq[rankB], seq[rankA]
	return tryAssembled(ctx, v, seq)
}

func intraExchangeGain(ctx *Context, v, rankA, rankB int) eval.Eval {
	before := ctx.State.RouteEval(v)
	r := ctx.Routes[v]
	seq := append([]int{}, r.Route...)
	seq[rankA], seq[rankB] = seq[rankB], seq[rankA]
	after := assembledEval(ctx, v, seq)
	return before.Sub(after)
}

func applyIntraExchange(ctx *Context, v, rankA, rankB int) {
	r := ctx.Routes[v]
	seq := append([]int{}, r.Route...)
	seq[rankA], seq[rankB] = seq[rankB], seq[rankA]
	r.ReplaceSequence(seq, 0, r.Size())
}
