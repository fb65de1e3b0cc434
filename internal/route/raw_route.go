// Package route implements the time-window-aware route data structures
// from spec §3/§4.2/§4.3: RawRoute (capacity bookkeeping) and TWRoute
// (RawRoute plus time-window/break propagation).
package route

import "tourforge/internal/model"

// RawRoute is an ordered sequence of job ranks for one vehicle, with
// incremental prefix/suffix pickup and delivery load sums and a capacity
// margin query (spec §3 RawRoute, §4.2).
type RawRoute struct {
	Vehicle *model.Vehicle
	Route   []int // job indices into Input.Jobs, in visit order

	fwdPickup    []model.Amount // fwdPickup[k] = sum of pickup over ranks <= k
	fwdDelivery  []model.Amount
	bwdPickup    []model.Amount // bwdPickup[k] = sum of pickup over ranks > k
	bwdDelivery  []model.Amount
	currentLoad  []model.Amount // load carried on the edge leaving position k
	maxLoad      model.Amount
	initialLoad  model.Amount
	dim          int
}

// NewRawRoute returns an empty route bound to v, with initial load equal to
// the sum of deliveries of any Single jobs already committed plus any open
// pickup minus matching delivery (zero for a brand new empty route).
func NewRawRoute(v *model.Vehicle, dim int) *RawRoute {
	return &RawRoute{
		Vehicle:     v,
		Route:       nil,
		initialLoad: model.NewAmount(dim),
		maxLoad:     model.NewAmount(dim),
		dim:         dim,
	}
}

// Size returns the number of jobs currently on the route.
func (r *RawRoute) Size() int { return len(r.Route) }

// Empty reports whether the route has no jobs.
func (r *RawRoute) Empty() bool { return len(r.Route) == 0 }

// JobAt returns the job index carried at rank k.
func (r *RawRoute) JobAt(k int) int { return r.Route[k] }

// CurrentLoad returns the load on the edge leaving rank k (after k's
// pickup/delivery has been applied).
func (r *RawRoute) CurrentLoad(k int) model.Amount {
	if k < 0 {
		return r.initialLoad
	}
	return r.currentLoad[k]
}

// MaxLoad returns the elementwise maximum load observed anywhere on the
// route.
func (r *RawRoute) MaxLoad() model.Amount { return r.maxLoad }

// FwdPickup returns the cumulative pickup amount over ranks [0, k].
func (r *RawRoute) FwdPickup(k int) model.Amount {
	if k < 0 {
		return model.NewAmount(r.dim)
	}
	return r.fwdPickup[k]
}

// FwdDelivery returns the cumulative delivery amount over ranks [0, k].
func (r *RawRoute) FwdDelivery(k int) model.Amount {
	if k < 0 {
		return model.NewAmount(r.dim)
	}
	return r.fwdDelivery[k]
}

// BwdPickup returns the cumulative pickup amount over ranks (k, end).
func (r *RawRoute) BwdPickup(k int) model.Amount {
	if k >= len(r.Route) {
		return model.NewAmount(r.dim)
	}
	return r.bwdPickup[k]
}

// BwdDelivery returns the cumulative delivery amount over ranks (k, end).
func (r *RawRoute) BwdDelivery(k int) model.Amount {
	if k >= len(r.Route) {
		return model.NewAmount(r.dim)
	}
	return r.bwdDelivery[k]
}

// recomputeFrom rebuilds the prefix/suffix/load tables from scratch. Called
// after any structural mutation, and through TWRoute.Setup also on every
// trial probe that re-runs propagation (IsValidAdditionForTW,
// IsValidRemoval); O(n) in the route length.
func (r *RawRoute) recomputeFrom(jobs []model.Job) {
	n := len(r.Route)
	r.fwdPickup = make([]model.Amount, n)
	r.fwdDelivery = make([]model.Amount, n)
	r.bwdPickup = make([]model.Amount, n)
	r.bwdDelivery = make([]model.Amount, n)
	r.currentLoad = make([]model.Amount, n)

	runningPickup := model.NewAmount(r.dim)
	runningDelivery := model.NewAmount(r.dim)
	for k := 0; k < n; k++ {
		j := &jobs[r.Route[k]]
		runningPickup = runningPickup.Add(j.Pickup)
		runningDelivery = runningDelivery.Add(j.Delivery)
		r.fwdPickup[k] = runningPickup
		r.fwdDelivery[k] = runningDelivery
	}

	runningPickup = model.NewAmount(r.dim)
	runningDelivery = model.NewAmount(r.dim)
	for k := n - 1; k >= 0; k-- {
		j := &jobs[r.Route[k]]
		r.bwdPickup[k] = runningPickup
		r.bwdDelivery[k] = runningDelivery
		runningPickup = runningPickup.Add(j.Pickup)
		runningDelivery = runningDelivery.Add(j.Delivery)
	}

	r.maxLoad = r.initialLoad.Clone()
	load := r.initialLoad
	for k := 0; k < n; k++ {
		j := &jobs[r.Route[k]]
		load = load.Add(j.Pickup).Sub(j.Delivery)
		r.currentLoad[k] = load
		r.maxLoad = r.maxLoad.Max(load)
	}
}

// Add inserts jobRank at position rank and refreshes the load tables.
func (r *RawRoute) Add(jobs []model.Job, jobRank, rank int) {
	r.Route = append(r.Route, 0)
	copy(r.Route[rank+1:], r.Route[rank:])
	r.Route[rank] = jobRank
	r.recomputeFrom(jobs)
}

// Remove deletes count consecutive jobs starting at rank.
func (r *RawRoute) Remove(jobs []model.Job, rank, count int) {
	r.Route = append(r.Route[:rank], r.Route[rank+count:]...)
	r.recomputeFrom(jobs)
}

// Replace splices the jobs in replacement into [firstRank, lastRank) and
// refreshes the load tables; recomputeFrom derives the sums directly from
// the resulting sequence.
func (r *RawRoute) Replace(jobs []model.Job, replacement []int, firstRank, lastRank int) {
	tail := append([]int{}, r.Route[lastRank:]...)
	r.Route = append(r.Route[:firstRank], replacement...)
	r.Route = append(r.Route, tail...)
	r.recomputeFrom(jobs)
}

// IsValidAdditionForCapacity checks a singleton insertion of a job with the
// given pickup/delivery amounts at rank.
func (r *RawRoute) IsValidAdditionForCapacity(pickup, delivery model.Amount, rank int) bool {
	cap := r.Vehicle.Capacity
	before := r.CurrentLoad(rank - 1)
	newLoad := before.Add(pickup).Sub(delivery)
	if !newLoad.LessOrEqual(cap) {
		return false
	}
	// Every load strictly after rank shifts by (pickup - delivery) too.
	delta := pickup.Sub(delivery)
	for k := rank; k < len(r.Route); k++ {
		if !r.currentLoad[k].Add(delta).LessOrEqual(cap) {
			return false
		}
	}
	return true
}

// IsValidAdditionForCapacityMargins checks that a replacement sequence's
// aggregate pickup/delivery fits within the capacity margins at the splice
// boundaries [first, last).
func (r *RawRoute) IsValidAdditionForCapacityMargins(pickup, delivery model.Amount, first, last int) bool {
	cap := r.Vehicle.Capacity
	before := r.CurrentLoad(first - 1)
	delta := pickup.Sub(delivery)
	afterSplice := before.Add(delta)
	if !afterSplice.LessOrEqual(cap) {
		return false
	}
	for k := last; k < len(r.Route); k++ {
		if !r.currentLoad[k].Add(delta).Sub(r.spliceRemovedDelta(first, last)).LessOrEqual(cap) {
			return false
		}
	}
	return true
}

// spliceRemovedDelta is the net pickup-delivery of the segment being
// removed by a splice over [first,last); used to keep downstream loads
// correct when margin-checking a replacement before recomputeFrom runs.
func (r *RawRoute) spliceRemovedDelta(first, last int) model.Amount {
	removed := model.NewAmount(r.dim)
	if first > 0 {
		removed = r.fwdPickup[last-1].Sub(r.fwdDelivery[last-1]).Sub(
			r.fwdPickup[first-1].Sub(r.fwdDelivery[first-1]))
	} else if last > 0 {
		removed = r.fwdPickup[last-1].Sub(r.fwdDelivery[last-1])
	}
	return removed
}

// IsValidAdditionForCapacityInclusion checks that the replacement sequence,
// iterated in order, never exceeds capacity at any intermediate load.
func (r *RawRoute) IsValidAdditionForCapacityInclusion(jobs []model.Job, deliveryInside model.Amount, sequence []int, first, last int) bool {
	cap := r.Vehicle.Capacity
	load := r.CurrentLoad(first - 1).Sub(deliveryInside)
	for _, jr := range sequence {
		j := &jobs[jr]
		load = load.Add(j.Pickup).Sub(j.Delivery)
		if !load.LessOrEqual(cap) {
			return false
		}
	}
	// Downstream of the splice, the standing load is shifted by the net
	// pickup-delivery of the new sequence instead of the old one.
	newDelta := model.NewAmount(r.dim)
	for _, jr := range sequence {
		j := &jobs[jr]
		newDelta = newDelta.Add(j.Pickup).Sub(j.Delivery)
	}
	oldDelta := r.spliceRemovedDelta(first, last)
	shift := newDelta.Sub(oldDelta)
	for k := last; k < len(r.Route); k++ {
		if !r.currentLoad[k].Add(shift).LessOrEqual(cap) {
			return false
		}
	}
	return true
}

// DeliveryInRange returns the sum of deliveries over ranks [first, last).
func (r *RawRoute) DeliveryInRange(first, last int) model.Amount {
	return r.rangeSum(r.fwdDelivery, first, last)
}

// PickupInRange returns the sum of pickups over ranks [first, last).
func (r *RawRoute) PickupInRange(first, last int) model.Amount {
	return r.rangeSum(r.fwdPickup, first, last)
}

func (r *RawRoute) rangeSum(fwd []model.Amount, first, last int) model.Amount {
	if last <= first {
		return model.NewAmount(r.dim)
	}
	total := fwd[last-1]
	if first > 0 {
		total = total.Sub(fwd[first-1])
	}
	return total
}

// DeliveryMargin returns how much more delivery weight the route could
// absorb without breaching capacity anywhere (the minimum slack across all
// ranks).
func (r *RawRoute) DeliveryMargin() model.Amount {
	return r.Vehicle.Capacity.Sub(r.maxLoad)
}

// PickupMargin mirrors DeliveryMargin for pickup-only growth (same load
// ceiling applies since pickups also raise current load until dropped).
func (r *RawRoute) PickupMargin() model.Amount {
	return r.Vehicle.Capacity.Sub(r.maxLoad)
}
