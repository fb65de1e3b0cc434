// Package solstate implements spec §3/§4.4's SolutionState: per-route
// derived data cached across local-search steps so operators can probe
// gains and feasibility without recomputing whole routes.
package solstate

import (
	"tourforge/internal/compat"
	"tourforge/internal/eval"
	"tourforge/internal/model"
	"tourforge/internal/route"
)

// BBox is a geographic-index bounding box, used to cheaply prune
// inter-route moves when profiles match (spec §3 route_bbox). Since the
// core only ever sees matrix indices (not coordinates), the box is kept in
// terms of the smallest/largest location index touched by the route — a
// conservative, cheap proxy with the same pruning role.
type BBox struct {
	MinLoc, MaxLoc int
	set            bool
}

// Merge widens the box to include loc.
func (b *BBox) Merge(loc int) {
	if !b.set {
		b.MinLoc, b.MaxLoc, b.set = loc, loc, true
		return
	}
	if loc < b.MinLoc {
		b.MinLoc = loc
	}
	if loc > b.MaxLoc {
		b.MaxLoc = loc
	}
}

// Overlaps reports whether two boxes could plausibly contain nearby
// points; used as a fast pre-filter, never as a hard correctness check.
func (b BBox) Overlaps(o BBox) bool {
	if !b.set || !o.set {
		return true
	}
	return b.MinLoc <= o.MaxLoc && o.MinLoc <= b.MaxLoc
}

// ThreeInsertions is the per-(route,job) top-3 cheapest insertion cache
// used by SwapStar (spec §4.7 SwapStar row; SPEC_FULL §5.1).
type ThreeInsertions struct {
	Ranks [3]int
	Evals [3]eval.Eval
	Count int
}

func (t *ThreeInsertions) consider(rank int, e eval.Eval) {
	for i := 0; i < t.Count; i++ {
		if e.Less(t.Evals[i]) {
			// shift down and insert
			end := t.Count
			if end > 2 {
				end = 2
			}
			for k := end; k > i; k-- {
				t.Evals[k] = t.Evals[k-1]
				t.Ranks[k] = t.Ranks[k-1]
			}
			t.Evals[i] = e
			t.Ranks[i] = rank
			if t.Count < 3 {
				t.Count++
			}
			return
		}
	}
	if t.Count < 3 {
		t.Evals[t.Count] = e
		t.Ranks[t.Count] = rank
		t.Count++
	}
}

// perVehicle bundles all of SolutionState's per-vehicle cached tables.
type perVehicle struct {
	routeEval eval.Eval
	bbox      BBox

	fwdPriority []int
	bwdPriority []int

	nodeGain []eval.Eval
	edgeGain []eval.Eval
	pdGain   []eval.Eval

	matchingDeliveryRank []int // -1 if rank k is not a pickup, or has no partner in-route
	matchingPickupRank   []int

	// insertionRanksBegin/End[j] is the half-open rank window where job j
	// might be insertable into this vehicle's route (strong, TW-derived
	// bound); weak variants use only each task's own TW arithmetic.
	insertionRanksBegin     []int
	insertionRanksEnd       []int
	weakInsertionRanksBegin []int
	weakInsertionRanksEnd   []int

	threeInsertions []ThreeInsertions // per job
}

// State is spec §3's SolutionState: cached, indexed tables keyed purely by
// vehicle/rank/job integers — never a route reference, per spec §9's "no
// cyclic update dependencies" design note.
type State struct {
	in     *model.Input
	compat *compat.Tables
	hasTW  bool

	perV []perVehicle

	// fwdEvals[v][v'] / bwdEvals[v][v'] is the cumulative forward/backward
	// Eval along v's route using v''s cost matrix (spec §3, §9's
	// "reimplementation must mirror" note).
	fwdEvals [][]eval.Eval
	bwdEvals [][]eval.Eval

	bwdSkillRank [][]int
	fwdSkillRank [][]int

	unassigned map[int]struct{}
}

// New allocates a State sized for in; call Setup once routes exist.
func New(in *model.Input, ct *compat.Tables) *State {
	nv := in.NbVehicles()
	s := &State{
		in:         in,
		compat:     ct,
		perV:       make([]perVehicle, nv),
		unassigned: make(map[int]struct{}),
	}
	for i := range in.Vehicles {
		if in.Vehicles[i].TW != (model.TimeWindow{}) || len(in.Vehicles[i].Breaks) > 0 {
			s.hasTW = true
		}
	}
	for j := range in.Jobs {
		if len(in.Jobs[j].TimeWindows) > 0 {
			s.hasTW = true
		}
	}
	return s
}

// HasTW reports whether any vehicle/job in the instance carries time-window
// structure; operators branch on this runtime flag rather than on a
// template parameter (spec §9's "templates over Route type" design note).
func (s *State) HasTW() bool { return s.hasTW }

// Unassigned returns the current set of unassigned job indices.
func (s *State) Unassigned() map[int]struct{} { return s.unassigned }

// SetUnassigned replaces the unassigned set wholesale (used after
// construction and after ruin/recreate rounds).
func (s *State) SetUnassigned(set map[int]struct{}) { s.unassigned = set }

// MarkUnassigned adds job j to the unassigned set.
func (s *State) MarkUnassigned(j int) { s.unassigned[j] = struct{}{} }

// MarkAssigned removes job j from the unassigned set.
func (s *State) MarkAssigned(j int) { delete(s.unassigned, j) }

// Setup rebuilds every cached table for every vehicle from scratch. Calling
// it twice on unchanged routes yields identical caches (spec §8
// idempotence property), since every updater here is a pure function of
// the route contents.
func (s *State) Setup(routes []*route.TWRoute) {
	nv := len(routes)
	s.fwdEvals = make([][]eval.Eval, nv)
	s.bwdEvals = make([][]eval.Eval, nv)
	s.bwdSkillRank = make([][]int, nv)
	s.fwdSkillRank = make([][]int, nv)
	for v := 0; v < nv; v++ {
		s.fwdEvals[v] = make([]eval.Eval, nv)
		s.bwdEvals[v] = make([]eval.Eval, nv)
		s.bwdSkillRank[v] = make([]int, nv)
		s.fwdSkillRank[v] = make([]int, nv)
	}
	for v, r := range routes {
		s.UpdateRouteEval(v, r)
		s.UpdateRouteBBox(v, r)
		s.UpdatePriorities(v, r)
		s.SetNodeGains(v, r)
		s.SetEdgeGains(v, r)
		s.SetPDMatchingRanks(v, r)
		s.SetPDGains(v, r)
		s.SetInsertionRanks(v, r)
	}
	for v := range routes {
		for v2 := range routes {
			s.UpdateCosts(v, v2, routes)
			s.UpdateSkills(v, v2, routes)
		}
	}
}

// UpdateRouteEval recomputes route_evals[v].
func (s *State) UpdateRouteEval(v int, r *route.TWRoute) {
	veh := r.Vehicle
	total := eval.Zero
	prev := -1
	if veh.HasStart() {
		prev = *veh.Start
	}
	for k := 0; k < r.Size(); k++ {
		loc := s.in.Job(r.JobAt(k)).Location
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
	if r.Size() > 0 {
		total.Cost += veh.Costs.Fixed
	}
	s.perV[v].routeEval = total
}

// UpdateRouteBBox recomputes route_bbox[v].
func (s *State) UpdateRouteBBox(v int, r *route.TWRoute) {
	var box BBox
	veh := r.Vehicle
	if veh.HasStart() {
		box.Merge(*veh.Start)
	}
	if veh.HasEnd() {
		box.Merge(*veh.End)
	}
	for k := 0; k < r.Size(); k++ {
		box.Merge(s.in.Job(r.JobAt(k)).Location)
	}
	s.perV[v].bbox = box
}

// UpdateCosts recomputes fwd_evals[v][v2] and bwd_evals[v][v2]: the
// cumulative Eval along v's route, evaluated with v2's cost matrix (spec
// §3, §9).
func (s *State) UpdateCosts(v, v2 int, routes []*route.TWRoute) {
	r := routes[v]
	other := s.in.Vehicle(v2)
	n := r.Size()
	fwd := make([]eval.Eval, n)
	bwd := make([]eval.Eval, n)

	running := eval.Zero
	prev := -1
	if other.HasStart() {
		prev = *other.Start
	}
	for k := 0; k < n; k++ {
		loc := s.in.Job(r.JobAt(k)).Location
		if prev >= 0 {
			d, c, dist := other.Eval(prev, loc)
			running = running.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
		}
		fwd[k] = running
		prev = loc
	}

	running = eval.Zero
	prev = -1
	if other.HasEnd() {
		prev = *other.End
	}
	for k := n - 1; k >= 0; k-- {
		loc := s.in.Job(r.JobAt(k)).Location
		if prev >= 0 {
			d, c, dist := other.Eval(loc, prev)
			running = running.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
		}
		bwd[k] = running
		prev = loc
	}

	if s.fwdEvals[v] == nil {
		s.fwdEvals[v] = make([]eval.Eval, len(routes))
		s.bwdEvals[v] = make([]eval.Eval, len(routes))
	}
	s.fwdEvals[v][v2] = eval.Zero
	s.bwdEvals[v][v2] = eval.Zero
	if n > 0 {
		s.fwdEvals[v][v2] = fwd[n-1]
		s.bwdEvals[v][v2] = bwd[0]
	}
}

// FwdEval returns the cumulative Eval of v's route measured with v2's cost
// matrix.
func (s *State) FwdEval(v, v2 int) eval.Eval { return s.fwdEvals[v][v2] }

// BwdEval is the backward counterpart of FwdEval.
func (s *State) BwdEval(v, v2 int) eval.Eval { return s.bwdEvals[v][v2] }

// RouteEval returns the cached total Eval of v's route.
func (s *State) RouteEval(v int) eval.Eval { return s.perV[v].routeEval }

// RouteBBox returns the cached bounding box of v's route.
func (s *State) RouteBBox(v int) BBox { return s.perV[v].bbox }

// UpdatePriorities recomputes fwd_priority[v][k] / bwd_priority[v][k].
func (s *State) UpdatePriorities(v int, r *route.TWRoute) {
	n := r.Size()
	fwd := make([]int, n)
	bwd := make([]int, n)
	running := 0
	for k := 0; k < n; k++ {
		running += s.in.Job(r.JobAt(k)).Priority
		fwd[k] = running
	}
	running = 0
	for k := n - 1; k >= 0; k-- {
		running += s.in.Job(r.JobAt(k)).Priority
		bwd[k] = running
	}
	s.perV[v].fwdPriority = fwd
	s.perV[v].bwdPriority = bwd
}

// FwdPriority returns the cumulative priority over ranks [0,k].
func (s *State) FwdPriority(v, k int) int {
	if k < 0 {
		return 0
	}
	return s.perV[v].fwdPriority[k]
}

// BwdPriority returns the cumulative priority over ranks [k, end).
func (s *State) BwdPriority(v, k int) int {
	if k >= len(s.perV[v].bwdPriority) {
		return 0
	}
	return s.perV[v].bwdPriority[k]
}

// SetNodeGains computes node_gains[v][k]: the route-Eval reduction from
// removing the job at rank k alone.
func (s *State) SetNodeGains(v int, r *route.TWRoute) {
	n := r.Size()
	gains := make([]eval.Eval, n)
	veh := r.Vehicle
	for k := 0; k < n; k++ {
		prevLoc := s.boundaryLocBefore(r, k)
		nextLoc := s.boundaryLocAfter(r, k)
		loc := s.in.Job(r.JobAt(k)).Location
		dIn, cIn, distIn := veh.Eval(prevLoc, loc)
		dOut, cOut, distOut := veh.Eval(loc, nextLoc)
		dDirect, cDirect, distDirect := veh.Eval(prevLoc, nextLoc)
		// At an open route end only the edge to the one neighbour goes away.
		if k == 0 && !veh.HasStart() {
			dIn, cIn, distIn = 0, 0, 0
			dDirect, cDirect, distDirect = 0, 0, 0
		}
		if k == n-1 && !veh.HasEnd() {
			dOut, cOut, distOut = 0, 0, 0
			dDirect, cDirect, distDirect = 0, 0, 0
		}
		gains[k] = eval.Eval{
			Cost:     cIn + cOut - cDirect,
			Duration: dIn + dOut - dDirect,
			Distance: distIn + distOut - distDirect,
		}
	}
	s.perV[v].nodeGain = gains
}

// SetEdgeGains computes edge_gains[v][k]: the gain from removing the edge
// [k,k+1] (i.e. both jobs at k and k+1) as a unit.
func (s *State) SetEdgeGains(v int, r *route.TWRoute) {
	n := r.Size()
	gains := make([]eval.Eval, maxInt(n-1, 0))
	veh := r.Vehicle
	for k := 0; k < n-1; k++ {
		prevLoc := s.boundaryLocBefore(r, k)
		nextLoc := s.boundaryLocAfter(r, k+1)
		locA := s.in.Job(r.JobAt(k)).Location
		locB := s.in.Job(r.JobAt(k + 1)).Location
		dIn, cIn, distIn := veh.Eval(prevLoc, locA)
		dMid, cMid, distMid := veh.Eval(locA, locB)
		dOut, cOut, distOut := veh.Eval(locB, nextLoc)
		dDirect, cDirect, distDirect := veh.Eval(prevLoc, nextLoc)
		if k == 0 && !veh.HasStart() {
			dIn, cIn, distIn = 0, 0, 0
			dDirect, cDirect, distDirect = 0, 0, 0
		}
		if k+1 == n-1 && !veh.HasEnd() {
			dOut, cOut, distOut = 0, 0, 0
			dDirect, cDirect, distDirect = 0, 0, 0
		}
		gains[k] = eval.Eval{
			Cost:     cIn + cMid + cOut - cDirect,
			Duration: dIn + dMid + dOut - dDirect,
			Distance: distIn + distMid + distOut - distDirect,
		}
	}
	s.perV[v].edgeGain = gains
}

func (s *State) boundaryLocBefore(r *route.TWRoute, k int) int {
	if k == 0 {
		if r.Vehicle.HasStart() {
			return *r.Vehicle.Start
		}
		return s.in.Job(r.JobAt(0)).Location
	}
	return s.in.Job(r.JobAt(k - 1)).Location
}

func (s *State) boundaryLocAfter(r *route.TWRoute, k int) int {
	if k >= r.Size()-1 {
		if r.Vehicle.HasEnd() {
			return *r.Vehicle.End
		}
		return s.in.Job(r.JobAt(r.Size() - 1)).Location
	}
	return s.in.Job(r.JobAt(k + 1)).Location
}

// NodeGain returns the cached node_gains[v][k].
func (s *State) NodeGain(v, k int) eval.Eval { return s.perV[v].nodeGain[k] }

// EdgeGain returns the cached edge_gains[v][k].
func (s *State) EdgeGain(v, k int) eval.Eval { return s.perV[v].edgeGain[k] }

// SetPDMatchingRanks computes matching_delivery_rank[v][k] and
// matching_pickup_rank[v][k].
func (s *State) SetPDMatchingRanks(v int, r *route.TWRoute) {
	n := r.Size()
	delivery := make([]int, n)
	pickup := make([]int, n)
	for k := range delivery {
		delivery[k] = -1
		pickup[k] = -1
	}
	for k := 0; k < n; k++ {
		j := s.in.Job(r.JobAt(k))
		if j.Type != model.JobPickup {
			continue
		}
		for k2 := k + 1; k2 < n; k2++ {
			if r.JobAt(k2) == j.PartnerIndex {
				delivery[k] = k2
				pickup[k2] = k
				break
			}
		}
	}
	s.perV[v].matchingDeliveryRank = delivery
	s.perV[v].matchingPickupRank = pickup
}

// MatchingDeliveryRank returns the in-route rank of the delivery matching
// the pickup at rank k, or -1.
func (s *State) MatchingDeliveryRank(v, k int) int { return s.perV[v].matchingDeliveryRank[k] }

// MatchingPickupRank returns the in-route rank of the pickup matching the
// delivery at rank k, or -1.
func (s *State) MatchingPickupRank(v, k int) int { return s.perV[v].matchingPickupRank[k] }

// SetPDGains computes pd_gains[v][k]: gain from removing the pickup at k
// together with its matching delivery.
func (s *State) SetPDGains(v int, r *route.TWRoute) {
	n := r.Size()
	gains := make([]eval.Eval, n)
	for k := range gains {
		gains[k] = eval.Zero
	}
	for k := 0; k < n; k++ {
		d := s.perV[v].matchingDeliveryRank[k]
		if d < 0 {
			continue
		}
		gains[k] = s.pdRemovalGain(v, r, k, d)
	}
	s.perV[v].pdGain = gains
}

func (s *State) pdRemovalGain(v int, r *route.TWRoute, pickupRank, deliveryRank int) eval.Eval {
	before := s.RouteEval(v)
	trial := route.NewTWRoute(r.Vehicle, s.in.Jobs, s.in.AmountDim)
	for k := 0; k < r.Size(); k++ {
		if k == pickupRank || k == deliveryRank {
			continue
		}
		trial.Add(r.JobAt(k), trial.Size())
	}
	trial.Setup()
	after := eval.Zero
	prev := -1
	if r.Vehicle.HasStart() {
		prev = *r.Vehicle.Start
	}
	for k := 0; k < trial.Size(); k++ {
		loc := s.in.Job(trial.JobAt(k)).Location
		if prev >= 0 {
			d, c, dist := r.Vehicle.Eval(prev, loc)
			after = after.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
		}
		prev = loc
	}
	if r.Vehicle.HasEnd() && prev >= 0 {
		d, c, dist := r.Vehicle.Eval(prev, *r.Vehicle.End)
		after = after.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	if trial.Size() > 0 {
		// The vehicle is still in use, so before's fixed cost isn't actually
		// saved by this removal; cancel it out of the gain.
		after.Cost += r.Vehicle.Costs.Fixed
	}
	return before.Sub(after)
}

// PDGain returns the cached pd_gains[v][k].
func (s *State) PDGain(v, k int) eval.Eval { return s.perV[v].pdGain[k] }

// SetInsertionRanks computes insertion_ranks_begin/end[v][j] and their weak
// counterparts for every job j against vehicle v's current route (spec
// §4.5), grounded on SolutionState::set_insertion_ranks: a job can only be
// spliced in at a rank its own time window still reaches, so the route's
// earliest/latest propagation (tw_route.go's Earliest/Latest/ActionTime)
// narrows the window from both ends. insertion_ranks_* uses the route's
// actual propagated earliest/latest (the "strong" bound); weak_insertion_
// ranks_* uses only each task's own time window, ignoring anything the
// route's propagation has already tightened, so it stays a looser but
// cheaper-to-invalidate superset (insertion_ranks_begin/end always sits
// inside weak_insertion_ranks_begin/end).
func (s *State) SetInsertionRanks(v int, r *route.TWRoute) {
	nj := s.in.NbJobs()
	begin := make([]int, nj)
	end := make([]int, nj)
	wbegin := make([]int, nj)
	wend := make([]int, nj)
	n := r.Size()
	veh := r.Vehicle
	for j := 0; j < nj; j++ {
		begin[j], end[j] = 0, n+1
		wbegin[j], wend[j] = 0, n+1
		if !s.compat.JobVehicleSkillOK(j, v) {
			end[j] = 0
			wend[j] = 0
			continue
		}
		if n == 0 {
			continue
		}
		job := s.in.Job(j)
		if len(job.TimeWindows) == 0 {
			continue
		}
		jobAvailable := job.TimeWindows[0].Start
		jobDeadline := job.TimeWindows[len(job.TimeWindows)-1].End
		jobService := job.ServiceFor(veh.Profile)

		for t := 0; t < n; t++ {
			if r.JobAt(t) == j {
				continue
			}
			dur, _, _ := veh.Eval(s.in.Job(r.JobAt(t)).Location, job.Location)
			if jobDeadline < r.Earliest(t)+r.ActionTime(t)+dur {
				end[j] = t + 1
				break
			}
		}
		for t := n - 1; t >= 0; t-- {
			if r.JobAt(t) == j {
				continue
			}
			dur, _, _ := veh.Eval(job.Location, s.in.Job(r.JobAt(t)).Location)
			if r.Latest(t) < jobAvailable+jobService+dur {
				begin[j] = t + 1
				break
			}
		}

		for t := 0; t < n; t++ {
			if r.JobAt(t) == j {
				continue
			}
			task := s.in.Job(r.JobAt(t))
			if len(task.TimeWindows) == 0 {
				continue
			}
			dur, _, _ := veh.Eval(task.Location, job.Location)
			if jobDeadline < task.TimeWindows[0].Start+task.ServiceFor(veh.Profile)+dur {
				wend[j] = t + 1
				break
			}
		}
		for t := n - 1; t >= 0; t-- {
			if r.JobAt(t) == j {
				continue
			}
			task := s.in.Job(r.JobAt(t))
			if len(task.TimeWindows) == 0 {
				continue
			}
			dur, _, _ := veh.Eval(job.Location, task.Location)
			if task.TimeWindows[len(task.TimeWindows)-1].End < jobAvailable+jobService+dur {
				wbegin[j] = t + 1
				break
			}
		}
	}
	s.perV[v].insertionRanksBegin = begin
	s.perV[v].insertionRanksEnd = end
	s.perV[v].weakInsertionRanksBegin = wbegin
	s.perV[v].weakInsertionRanksEnd = wend
	s.setThreeInsertions(v, r)
}

// InsertionRankWindow returns [begin,end) for job j in vehicle v's route.
func (s *State) InsertionRankWindow(v, j int) (int, int) {
	return s.perV[v].insertionRanksBegin[j], s.perV[v].insertionRanksEnd[j]
}

// WeakInsertionRankWindow returns the weak [begin,end) bound.
func (s *State) WeakInsertionRankWindow(v, j int) (int, int) {
	return s.perV[v].weakInsertionRanksBegin[j], s.perV[v].weakInsertionRanksEnd[j]
}

func (s *State) setThreeInsertions(v int, r *route.TWRoute) {
	nj := s.in.NbJobs()
	table := make([]ThreeInsertions, nj)
	for j := 0; j < nj; j++ {
		if !s.compat.JobVehicleSkillOK(j, v) || s.in.Job(j).Type != model.JobSingle {
			continue
		}
		begin, end := s.perV[v].insertionRanksBegin[j], s.perV[v].insertionRanksEnd[j]
		var ti ThreeInsertions
		for rank := begin; rank < end && rank <= r.Size(); rank++ {
			if !r.IsValidAdditionForTWWithoutMaxLoad(j, rank) {
				continue
			}
			e := singletonAdditionEval(s.in, r, j, rank)
			ti.consider(rank, e)
		}
		table[j] = ti
	}
	s.perV[v].threeInsertions = table
}

// ThreeInsertionsFor returns the cached top-3 table for job j in vehicle
// v's route.
func (s *State) ThreeInsertionsFor(v, j int) ThreeInsertions { return s.perV[v].threeInsertions[j] }

func singletonAdditionEval(in *model.Input, r *route.TWRoute, jobIdx, rank int) eval.Eval {
	j := in.Job(jobIdx)
	veh := r.Vehicle
	prevLoc := -1
	if rank == 0 {
		if veh.HasStart() {
			prevLoc = *veh.Start
		}
	} else {
		prevLoc = in.Job(r.JobAt(rank - 1)).Location
	}
	nextLoc := -1
	if rank >= r.Size() {
		if veh.HasEnd() {
			nextLoc = *veh.End
		}
	} else {
		nextLoc = in.Job(r.JobAt(rank)).Location
	}

	total := eval.Zero
	if prevLoc >= 0 {
		d, c, dist := veh.Eval(prevLoc, j.Location)
		total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	if nextLoc >= 0 {
		d, c, dist := veh.Eval(j.Location, nextLoc)
		total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	if prevLoc >= 0 && nextLoc >= 0 {
		d, c, dist := veh.Eval(prevLoc, nextLoc)
		total = total.Sub(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	return total
}

// UpdateSkills recomputes bwd_skill_rank[v][v2] / fwd_skill_rank[v][v2]:
// the first/last rank in v's route where every following/preceding job is
// also compatible with v2.
func (s *State) UpdateSkills(v, v2 int, routes []*route.TWRoute) {
	r := routes[v]
	n := r.Size()
	bwdRank := n
	for k := n - 1; k >= 0; k-- {
		if !s.compat.JobVehicleSkillOK(r.JobAt(k), v2) {
			break
		}
		bwdRank = k
	}
	fwdRank := -1
	for k := 0; k < n; k++ {
		if !s.compat.JobVehicleSkillOK(r.JobAt(k), v2) {
			break
		}
		fwdRank = k
	}
	s.fwdSkillRank[v][v2] = fwdRank
	s.bwdSkillRank[v][v2] = bwdRank
}

// FwdSkillRank returns the last rank in v's route up to which every prior
// job is compatible with v2.
func (s *State) FwdSkillRank(v, v2 int) int { return s.fwdSkillRank[v][v2] }

// BwdSkillRank returns the first rank in v's route from which every
// subsequent job is compatible with v2.
func (s *State) BwdSkillRank(v, v2 int) int { return s.bwdSkillRank[v][v2] }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
