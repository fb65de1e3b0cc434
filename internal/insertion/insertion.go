// Package insertion implements spec §4.5's cheapest-feasible-rank search,
// used by both construction (package construct) and the LS engine's
// try_job_additions.
package insertion

import (
	"tourforge/internal/eval"
	"tourforge/internal/model"
	"tourforge/internal/route"
	"tourforge/internal/solstate"
)

// SingleResult is compute_best_insertion_single's return value.
type SingleResult struct {
	Eval        eval.Eval
	DeliverySum model.Amount
	Rank        int
}

// BestSingle finds the cheapest feasible rank to insert job j into v's
// route, or a result with Eval == eval.NoEval if none exists.
func BestSingle(in *model.Input, st *solstate.State, j, v int, r *route.TWRoute) SingleResult {
	job := in.Job(j)
	best := SingleResult{Eval: eval.NoEval}
	begin, end := st.InsertionRankWindow(v, j)
	if end > r.Size()+1 {
		end = r.Size() + 1
	}
	for rank := begin; rank < end; rank++ {
		if !r.RawRoute.IsValidAdditionForCapacity(job.Pickup, job.Delivery, rank) {
			continue
		}
		if !r.IsValidAdditionForTWWithoutMaxLoad(j, rank) {
			continue
		}
		if r.Vehicle.MaxTasks > 0 && r.Size()+1 > r.Vehicle.MaxTasks {
			continue
		}
		e := additionEval(in, r, j, rank)
		if e.Less(best.Eval) {
			best = SingleResult{Eval: e, DeliverySum: job.Delivery, Rank: rank}
		}
	}
	return best
}

func additionEval(in *model.Input, r *route.TWRoute, jobIdx, rank int) eval.Eval {
	job := in.Job(jobIdx)
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
		d, c, dist := veh.Eval(prevLoc, job.Location)
		total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	if nextLoc >= 0 {
		d, c, dist := veh.Eval(job.Location, nextLoc)
		total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	if prevLoc >= 0 && nextLoc >= 0 {
		d, c, dist := veh.Eval(prevLoc, nextLoc)
		total = total.Sub(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	total.Cost += veh.Costs.PerTaskHour * job.ServiceFor(veh.Profile) / 3600
	return total
}

// PDResult is compute_best_insertion_pd's return value.
type PDResult struct {
	Eval         eval.Eval
	DeliverySum  model.Amount
	PickupRank   int
	DeliveryRank int
}

// BestPD finds the cheapest feasible (pickupRank, deliveryRank) pair for
// shipment job j (a pickup) and its paired delivery j+1, stopping early
// once nothing can beat costThreshold (spec §4.5's contract).
func BestPD(in *model.Input, st *solstate.State, j, v int, r *route.TWRoute, costThreshold eval.Eval) PDResult {
	pickup := in.Job(j)
	delivery := in.Job(pickup.PartnerIndex)

	beginP, endP := st.InsertionRankWindow(v, j)
	if endP > r.Size()+1 {
		endP = r.Size() + 1
	}
	beginD, endD := st.InsertionRankWindow(v, pickup.PartnerIndex)
	if endD > r.Size()+2 {
		endD = r.Size() + 2
	}

	dAdds := make([]eval.Eval, endD+1)
	validDelivery := make([]bool, endD+1)
	for dRank := beginD; dRank < endD; dRank++ {
		if dRank > r.Size() {
			continue
		}
		if !r.RawRoute.IsValidAdditionForCapacity(model.NewAmount(in.AmountDim), delivery.Delivery, dRank) {
			continue
		}
		dAdds[dRank] = additionEval(in, r, pickup.PartnerIndex, dRank)
		validDelivery[dRank] = r.IsValidAdditionForTWWithoutMaxLoad(pickup.PartnerIndex, dRank)
	}

	best := PDResult{Eval: costThreshold}
	found := false
	var bestPickupRank, bestDeliveryRank int
	var bestDeliverySum model.Amount

	for pickupRank := beginP; pickupRank < endP; pickupRank++ {
		if pickupRank > r.Size() {
			continue
		}
		if !r.RawRoute.IsValidAdditionForCapacity(pickup.Pickup, model.NewAmount(in.AmountDim), pickupRank) {
			continue
		}
		pAdd := additionEval(in, r, j, pickupRank)
		if costThreshold.IsNoEval() {
			// unbounded search: no early pruning possible beyond best so far
		} else if best.Eval.IsNoEval() == false && pAdd.Cost > best.Eval.Cost {
			continue
		}

		for deliveryRank := pickupRank; deliveryRank < endD; deliveryRank++ {
			if deliveryRank > r.Size()+1 {
				continue
			}
			var candidate eval.Eval
			if deliveryRank == pickupRank {
				candidate = combinedAdjacentEval(in, r, j, pickup.PartnerIndex, pickupRank)
			} else {
				if deliveryRank > r.Size() || !validDelivery[deliveryRank] {
					continue
				}
				candidate = pAdd.Add(dAdds[deliveryRank])
			}
			if !candidate.Less(best.Eval) {
				continue
			}

			sequence := buildSequence(in, r, j, pickup.PartnerIndex, pickupRank, deliveryRank)
			if !r.RawRoute.IsValidAdditionForCapacityInclusion(in.Jobs, delivery.Delivery, sequence, pickupRank, deliveryRank) {
				continue
			}
			if !r.IsValidAdditionForTW(delivery.Delivery, sequence, pickupRank, deliveryRank) {
				continue
			}

			best.Eval = candidate
			bestPickupRank, bestDeliveryRank = pickupRank, deliveryRank
			bestDeliverySum = delivery.Delivery
			found = true
		}
	}

	if !found {
		return PDResult{Eval: eval.NoEval}
	}
	return PDResult{Eval: best.Eval, DeliverySum: bestDeliverySum, PickupRank: bestPickupRank, DeliveryRank: bestDeliveryRank}
}

func combinedAdjacentEval(in *model.Input, r *route.TWRoute, pickupIdx, deliveryIdx, rank int) eval.Eval {
	veh := r.Vehicle
	pickup := in.Job(pickupIdx)
	delivery := in.Job(deliveryIdx)
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
		d, c, dist := veh.Eval(prevLoc, pickup.Location)
		total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	dMid, cMid, distMid := veh.Eval(pickup.Location, delivery.Location)
	total = total.Add(eval.Eval{Cost: cMid, Duration: dMid, Distance: distMid})
	if nextLoc >= 0 {
		d, c, dist := veh.Eval(delivery.Location, nextLoc)
		total = total.Add(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	if prevLoc >= 0 && nextLoc >= 0 {
		d, c, dist := veh.Eval(prevLoc, nextLoc)
		total = total.Sub(eval.Eval{Cost: c, Duration: d, Distance: dist})
	}
	return total
}

func buildSequence(in *model.Input, r *route.TWRoute, pickupIdx, deliveryIdx, pickupRank, deliveryRank int) []int {
	if deliveryRank == pickupRank {
		return []int{pickupIdx, deliveryIdx}
	}
	seq := []int{pickupIdx}
	for k := pickupRank; k < deliveryRank-1 && k < r.Size(); k++ {
		seq = append(seq, r.JobAt(k))
	}
	seq = append(seq, deliveryIdx)
	return seq
}
