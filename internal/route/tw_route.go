package route

import "tourforge/internal/model"

// TWRoute extends RawRoute with earliest/latest service-start propagation,
// break placement, and the derived range-bound checks of spec §4.3.
type TWRoute struct {
	RawRoute

	jobs   []model.Job
	breaks []model.Break

	earliest     []int64
	latest       []int64
	actionTime   []int64
	breaksAtRank []int // length n+1; index n is breaks placed after the last job
	breaksCounts []int // length n+1, cumulative
	breakStart   []int64 // length len(breaks); service-start time of each break, by break order
	earliestEnd  int64
	latestStart  int64 // latest feasible departure time from the vehicle's start

	totalTravelTime int64
	totalDistance   int64
}

// NewTWRoute returns an empty TW-aware route bound to v.
func NewTWRoute(v *model.Vehicle, jobs []model.Job, dim int) *TWRoute {
	return &TWRoute{
		RawRoute: *NewRawRoute(v, dim),
		jobs:     jobs,
		breaks:   v.Breaks,
	}
}

// firstFeasibleStart finds, among an ordered non-overlapping set of
// windows, the earliest time >= arrival at which service may begin. ok is
// false if arrival is already past every window's end.
func firstFeasibleStart(windows []model.TimeWindow, arrival int64) (int64, bool) {
	if len(windows) == 0 {
		return arrival, true
	}
	for _, w := range windows {
		if arrival <= w.End {
			if arrival < w.Start {
				return w.Start, true
			}
			return arrival, true
		}
	}
	return 0, false
}

// lastFeasibleStart is the backward-propagation mirror of
// firstFeasibleStart: the latest time <= deadline at which service may
// begin within one of windows.
func lastFeasibleStart(windows []model.TimeWindow, deadline int64) (int64, bool) {
	if len(windows) == 0 {
		return deadline, true
	}
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		if deadline >= w.Start {
			if deadline > w.End {
				return w.End, true
			}
			return deadline, true
		}
	}
	return 0, false
}

func (r *TWRoute) location(k int) int {
	if k < 0 {
		if r.Vehicle.HasStart() {
			return *r.Vehicle.Start
		}
		return r.jobs[r.Route[0]].Location
	}
	if k >= len(r.Route) {
		if r.Vehicle.HasEnd() {
			return *r.Vehicle.End
		}
		return r.jobs[r.Route[len(r.Route)-1]].Location
	}
	return r.jobs[r.Route[k]].Location
}

func (r *TWRoute) travel(from, to int) int64 {
	d, _, _ := r.Vehicle.Eval(from, to)
	return d
}

// Setup runs the full forward and backward propagation over the current
// route and caches earliest/latest/action/break tables. Called after every
// structural mutation (spec §4.4's update_route_eval-adjacent refresh).
// Returns false if the resulting route is TW-infeasible.
func (r *TWRoute) Setup() bool {
	r.RawRoute.recomputeFrom(r.jobs)
	if !r.forwardPropagate() {
		return false
	}
	if !r.backwardPropagate() {
		return false
	}
	for k := range r.Route {
		if r.earliest[k] > r.latest[k] {
			return false
		}
	}
	return r.earliestEnd <= r.Vehicle.TW.End
}

func (r *TWRoute) forwardPropagate() bool {
	n := len(r.Route)
	r.earliest = make([]int64, n)
	r.actionTime = make([]int64, n)
	r.breaksAtRank = make([]int, n+1)
	r.breaksCounts = make([]int, n+1)
	r.breakStart = make([]int64, len(r.breaks))

	current := r.Vehicle.TW.Start
	prevLoc := -1 // sentinel: "no travel yet", first edge measured from vehicle start
	breakIdx := 0
	totalTravel := int64(0)
	totalDist := int64(0)

	placeDueBreaks := func(rankForCount int, upcomingTravel int64) {
		for breakIdx < len(r.breaks) {
			b := r.breaks[breakIdx]
			_, feasible := firstFeasibleStart(b.TimeWindows, current)
			if !feasible {
				break
			}
			deadline := b.TimeWindows[len(b.TimeWindows)-1].End
			if current+upcomingTravel <= deadline {
				break // no urgency yet, leave it for a later rank
			}
			start, ok := firstFeasibleStart(b.TimeWindows, current)
			if !ok || start > deadline {
				break
			}
			r.breakStart[breakIdx] = start
			current = start + b.Service
			r.breaksAtRank[rankForCount]++
			breakIdx++
		}
	}

	for k := 0; k < n; k++ {
		j := &r.jobs[r.Route[k]]
		var dist int64
		var travelTime int64
		if k == 0 {
			if r.Vehicle.HasStart() {
				travelTime, _, dist = r.Vehicle.Eval(*r.Vehicle.Start, j.Location)
			}
		} else {
			travelTime, _, dist = r.Vehicle.Eval(prevLoc, j.Location)
		}
		placeDueBreaks(k, travelTime)
		totalTravel += travelTime
		totalDist += dist

		arrival := current + travelTime
		start, ok := firstFeasibleStart(j.TimeWindows, arrival)
		if !ok {
			return false
		}
		r.earliest[k] = start

		setup := int64(0)
		if prevLoc != j.Location {
			setup = j.SetupFor(r.Vehicle.Profile)
		}
		action := setup + j.ServiceFor(r.Vehicle.Profile)
		r.actionTime[k] = action
		current = start + action
		if k > 0 {
			r.breaksCounts[k] = r.breaksCounts[k-1] + r.breaksAtRank[k]
		} else {
			r.breaksCounts[k] = r.breaksAtRank[k]
		}
		prevLoc = j.Location
	}

	endTravel := int64(0)
	if n > 0 && r.Vehicle.HasEnd() {
		endTravel, _, _ = r.Vehicle.Eval(prevLoc, *r.Vehicle.End)
	}
	placeDueBreaks(n, endTravel)
	for breakIdx < len(r.breaks) {
		b := r.breaks[breakIdx]
		start, ok := firstFeasibleStart(b.TimeWindows, current)
		if !ok {
			return false
		}
		r.breakStart[breakIdx] = start
		current = start + b.Service
		r.breaksAtRank[n]++
		breakIdx++
	}
	if n > 0 {
		r.breaksCounts[n] = r.breaksCounts[n-1] + r.breaksAtRank[n]
	} else {
		r.breaksCounts[n] = r.breaksAtRank[n]
	}

	totalTravel += endTravel
	r.totalTravelTime = totalTravel
	r.totalDistance = totalDist
	r.earliestEnd = current + endTravel
	if n == 0 {
		r.earliestEnd = r.Vehicle.TW.Start
	}

	if r.Vehicle.MaxTravelTime != nil && totalTravel > *r.Vehicle.MaxTravelTime {
		return false
	}
	if r.Vehicle.MaxDistance != nil && totalDist > *r.Vehicle.MaxDistance {
		return false
	}
	if r.Vehicle.MaxTasks > 0 && n > r.Vehicle.MaxTasks {
		return false
	}
	return true
}

func (r *TWRoute) backwardPropagate() bool {
	n := len(r.Route)
	r.latest = make([]int64, n)

	current := r.Vehicle.TW.End
	nextLoc := -1
	breakIdx := len(r.breaks) - 1

	placeDueBreaksBackward := func(upcomingTravel int64) {
		for breakIdx >= 0 {
			b := r.breaks[breakIdx]
			_, feasible := lastFeasibleStart(b.TimeWindows, current)
			if !feasible {
				break
			}
			if current-upcomingTravel-b.Service >= b.TimeWindows[0].Start {
				break
			}
			end, ok := lastFeasibleStart(b.TimeWindows, current-b.Service)
			if !ok {
				break
			}
			current = end
			breakIdx--
		}
	}

	for k := n - 1; k >= 0; k-- {
		j := &r.jobs[r.Route[k]]
		var travelTime int64
		if k == n-1 {
			if r.Vehicle.HasEnd() {
				travelTime, _, _ = r.Vehicle.Eval(j.Location, *r.Vehicle.End)
			}
		} else {
			travelTime, _, _ = r.Vehicle.Eval(j.Location, nextLoc)
		}
		placeDueBreaksBackward(travelTime)

		action := r.actionTime[k]
		deadline := current - travelTime - action
		start, ok := lastFeasibleStart(j.TimeWindows, deadline)
		if !ok {
			return false
		}
		r.latest[k] = start
		current = start
		nextLoc = j.Location
	}

	if n > 0 && r.Vehicle.HasStart() {
		startTravel, _, _ := r.Vehicle.Eval(*r.Vehicle.Start, nextLoc)
		r.latestStart = current - startTravel
	} else {
		r.latestStart = current
	}
	return r.latestStart >= r.Vehicle.TW.Start
}

// Earliest returns the earliest feasible service-start time at rank k.
func (r *TWRoute) Earliest(k int) int64 { return r.earliest[k] }

// Latest returns the latest feasible service-start time at rank k.
func (r *TWRoute) Latest(k int) int64 { return r.latest[k] }

// ActionTime returns setup+service at rank k.
func (r *TWRoute) ActionTime(k int) int64 { return r.actionTime[k] }

// BreaksBeforeRank returns the cumulative number of breaks placed up to and
// including the edge arriving at rank k (k == Size() refers to the tail).
func (r *TWRoute) BreaksBeforeRank(k int) int { return r.breaksCounts[k] }

// BreaksAtRank returns how many breaks were placed immediately before the
// edge arriving at rank k (k == Size() refers to breaks after the last job).
func (r *TWRoute) BreaksAtRank(k int) int { return r.breaksAtRank[k] }

// Break returns the vehicle break at breakIdx (route order, not time order).
func (r *TWRoute) Break(breakIdx int) model.Break { return r.breaks[breakIdx] }

// NbBreaks returns the number of breaks this route's vehicle carries.
func (r *TWRoute) NbBreaks() int { return len(r.breaks) }

// BreakStart returns the service-start time of the break at breakIdx.
func (r *TWRoute) BreakStart(breakIdx int) int64 { return r.breakStart[breakIdx] }

// EarliestEnd returns the route's propagated earliest completion time.
func (r *TWRoute) EarliestEnd() int64 { return r.earliestEnd }

// TotalTravelTime returns the route's total travel duration.
func (r *TWRoute) TotalTravelTime() int64 { return r.totalTravelTime }

// TotalDistance returns the route's total travel distance.
func (r *TWRoute) TotalDistance() int64 { return r.totalDistance }

// IsValidAdditionForTWWithoutMaxLoad is the fast, O(1)-given-cached-bounds
// feasibility probe for inserting jobRank at rank, ignoring the max_load
// break constraint (spec §4.3).
func (r *TWRoute) IsValidAdditionForTWWithoutMaxLoad(jobRank, rank int) bool {
	j := &r.jobs[jobRank]

	var prevEarliest int64
	if rank == 0 {
		prevEarliest = r.Vehicle.TW.Start
	} else {
		prevEarliest = r.earliest[rank-1] + r.actionTime[rank-1]
	}
	prevLoc := r.location(rank - 1)
	nextLoc := r.location(rank)
	var nextLatest int64
	if rank >= len(r.Route) {
		nextLatest = r.Vehicle.TW.End
	} else {
		nextLatest = r.latest[rank]
	}

	travelTo := r.travel(prevLoc, j.Location)
	arrival := prevEarliest + travelTo
	start, ok := firstFeasibleStart(j.TimeWindows, arrival)
	if !ok {
		return false
	}

	setup := int64(0)
	if prevLoc != j.Location {
		setup = j.SetupFor(r.Vehicle.Profile)
	}
	action := setup + j.ServiceFor(r.Vehicle.Profile)
	completion := start + action

	travelFrom := r.travel(j.Location, nextLoc)
	if completion+travelFrom > nextLatest {
		return false
	}
	return true
}

// IsValidAdditionForTW performs the full check including break placement
// and the max_load constraint, by trial-splicing sequence into
// [first,last) and re-running propagation. sequence lists the
// replacement in visit order; deliveryInRange is unused directly here (the
// capacity side is RawRoute's job) but kept in the signature to mirror
// spec §4.3.
func (r *TWRoute) IsValidAdditionForTW(deliveryInRange model.Amount, sequence []int, first, last int) bool {
	saved := r.snapshot()
	defer r.restore(saved)

	tail := append([]int{}, r.Route[last:]...)
	r.Route = append(append([]int{}, r.Route[:first]...), sequence...)
	r.Route = append(r.Route, tail...)
	if !r.Setup() {
		return false
	}
	if r.Vehicle.Breaks != nil {
		for _, b := range r.breaks {
			if b.MaxLoad == nil {
				continue
			}
			if !r.loadAtBreakOK(b) {
				return false
			}
		}
	}
	return true
}

// loadAtBreakOK checks b.MaxLoad against the load actually carried at the
// break's own position in the route (spec §4.3), not the route's peak load
// anywhere: breaksCounts[k] is the cumulative number of breaks placed up to
// and including the edge arriving at rank k, so the smallest such k with
// b.Index < breaksCounts[k] is the bucket b landed in, and the load at that
// point is whatever the vehicle carried leaving rank k-1.
func (r *TWRoute) loadAtBreakOK(b model.Break) bool {
	rank := len(r.breaksCounts) - 1
	for k := 0; k < len(r.breaksCounts); k++ {
		if b.Index < r.breaksCounts[k] {
			rank = k
			break
		}
	}
	return r.CurrentLoad(rank - 1).LessOrEqual(b.MaxLoad)
}

// IsValidRemoval reports whether removing count jobs starting at rank
// keeps the route TW-feasible.
func (r *TWRoute) IsValidRemoval(rank, count int) bool {
	saved := r.snapshot()
	defer r.restore(saved)

	r.Route = append(append([]int{}, r.Route[:rank]...), r.Route[rank+count:]...)
	return r.Setup()
}

type twSnapshot struct {
	route []int
}

func (r *TWRoute) snapshot() twSnapshot {
	return twSnapshot{route: append([]int{}, r.Route...)}
}

func (r *TWRoute) restore(s twSnapshot) {
	r.Route = s.route
	r.Setup()
}

// Add inserts jobRank at rank and refreshes all cached tables. Returns
// false (and leaves the route unchanged) if the result would be
// TW-infeasible.
func (r *TWRoute) Add(jobRank, rank int) bool {
	saved := r.snapshot()
	r.Route = append(r.Route, 0)
	copy(r.Route[rank+1:], r.Route[rank:])
	r.Route[rank] = jobRank
	if !r.Setup() {
		r.restore(saved)
		return false
	}
	return true
}

// Remove deletes count consecutive jobs starting at rank and refreshes
// cached tables.
func (r *TWRoute) Remove(rank, count int) {
	r.Route = append(r.Route[:rank], r.Route[rank+count:]...)
	r.Setup()
}

// ReplaceSequence splices replacement into [first,last) and refreshes
// cached tables.
func (r *TWRoute) ReplaceSequence(replacement []int, first, last int) {
	tail := append([]int{}, r.Route[last:]...)
	r.Route = append(append([]int{}, r.Route[:first]...), replacement...)
	r.Route = append(r.Route, tail...)
	r.Setup()
}

// DeliveryInRange/PickupInRange/DeliveryMargin/PickupMargin are inherited
// from RawRoute unchanged (spec §4.3 lists them as still answered by
// TWRoute, which is true by embedding).

// Clone returns an independent deep copy of r, used by the ruin-and-recreate
// loop to snapshot/restore the best solution found (spec §4.9).
func (r *TWRoute) Clone() *TWRoute {
	c := NewTWRoute(r.Vehicle, r.jobs, r.dim)
	c.Route = append([]int{}, r.Route...)
	c.Setup()
	return c
}
