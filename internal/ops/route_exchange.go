package ops

import "tourforge/internal/eval"

// routeExchangeValid checks swapping the whole routes of vehicles a and b
// (spec §4.7 RouteExchange row): each vehicle must be able to serve every
// job currently on the other's route.
func routeExchangeValid(ctx *Context, a, b int) bool {
	if a == b {
		return false
	}
	ra := ctx.Routes[a]
	rb := ctx.Routes[b]
	if ra.Empty() && rb.Empty() {
		return false
	}
	if !skillsOK(ctx, rb.Route, a) || !skillsOK(ctx, ra.Route, b) {
		return false
	}
	return tryAssembled(ctx, a, rb.Route) && tryAssembled(ctx, b, ra.Route)
}

func routeExchangeGain(ctx *Context, a, b int) eval.Eval {
	before := ctx.State.RouteEval(a).Add(ctx.State.RouteEval(b))
	ra := ctx.Routes[a]
	rb := ctx.Routes[b]
	after := assembledEval(ctx, a, rb.Route).Add(assembledEval(ctx, b, ra.Route))
	return before.Sub(after)
}

func applyRouteExchange(ctx *Context, a, b int) {
	ra := ctx.Routes[a]
	rb := ctx.Routes[b]
	aJobs := append([]int{}, ra.Route...)
	bJobs := append([]int{}, rb.Route...)
	ra.ReplaceSequence(bJobs, 0, ra.Size())
	rb.ReplaceSequence(aJobs, 0, rb.Size())
}
