// Package compat implements spec §4.2's compatibility tables: vehicle↔job
// skill compatibility, derived vehicle↔job singleton-insertion feasibility,
// and vehicle↔vehicle shared-job compatibility.
package compat

import (
	"tourforge/internal/eval"
	"tourforge/internal/model"
	"tourforge/internal/route"
)

// Tables holds the precomputed compatibility relations for one Input.
type Tables struct {
	nbJobs     int
	nbVehicles int

	jobVehicleSkills [][]bool // [job][vehicle]
	vehicleVehicle   [][]bool // shares at least one mutually compatible job

	// singletonEval[j][v] is the cost of inserting job j alone into an
	// empty route of vehicle v, or eval.NoEval if infeasible (skills,
	// capacity, or time window).
	singletonEval [][]eval.Eval
}

// Build computes all compatibility tables for in.
func Build(in *model.Input) *Tables {
	t := &Tables{
		nbJobs:     in.NbJobs(),
		nbVehicles: in.NbVehicles(),
	}
	t.jobVehicleSkills = make([][]bool, t.nbJobs)
	t.singletonEval = make([][]eval.Eval, t.nbJobs)
	for j := 0; j < t.nbJobs; j++ {
		t.jobVehicleSkills[j] = make([]bool, t.nbVehicles)
		t.singletonEval[j] = make([]eval.Eval, t.nbVehicles)
		job := in.Job(j)
		for v := 0; v < t.nbVehicles; v++ {
			veh := in.Vehicle(v)
			skillOK := job.HasSkills(veh.Skills)
			t.jobVehicleSkills[j][v] = skillOK
			if !skillOK {
				t.singletonEval[j][v] = eval.NoEval
				continue
			}
			t.singletonEval[j][v] = singletonInsertionEval(in, job, veh)
		}
	}

	t.vehicleVehicle = make([][]bool, t.nbVehicles)
	for a := 0; a < t.nbVehicles; a++ {
		t.vehicleVehicle[a] = make([]bool, t.nbVehicles)
		for b := 0; b < t.nbVehicles; b++ {
			if a == b {
				t.vehicleVehicle[a][b] = true
				continue
			}
			for j := 0; j < t.nbJobs; j++ {
				if t.jobVehicleSkills[j][a] && t.jobVehicleSkills[j][b] {
					t.vehicleVehicle[a][b] = true
					break
				}
			}
		}
	}
	return t
}

// JobVehicleSkillOK reports whether vehicle v carries every skill job j
// requires.
func (t *Tables) JobVehicleSkillOK(j, v int) bool { return t.jobVehicleSkills[j][v] }

// VehiclesShareJob reports whether vehicles a and b have at least one job
// in common that both could serve, skill-wise.
func (t *Tables) VehiclesShareJob(a, b int) bool { return t.vehicleVehicle[a][b] }

// SingletonEval returns the cost of job j alone in an empty route of
// vehicle v, or eval.NoEval if infeasible.
func (t *Tables) SingletonEval(j, v int) eval.Eval { return t.singletonEval[j][v] }

// singletonInsertionEval builds a trial empty route for veh and attempts to
// add job alone, honoring both capacity and (when the vehicle has any time
// window structure) TW feasibility.
func singletonInsertionEval(in *model.Input, job *model.Job, veh *model.Vehicle) eval.Eval {
	switch job.Type {
	case model.JobDelivery:
		// Deliveries are only ever inserted paired with their pickup; a
		// standalone singleton eval isn't meaningful. Defer to the
		// pickup's entry, which construction/insertion always query
		// together.
		return eval.NoEval
	}

	if !job.Pickup.LessOrEqual(veh.Capacity) || !job.Delivery.LessOrEqual(veh.Capacity) {
		return eval.NoEval
	}

	tw := route.NewTWRoute(veh, in.Jobs, in.AmountDim)
	if !tw.Add(job.Index, 0) {
		return eval.NoEval
	}

	startLoc := job.Location
	if veh.HasStart() {
		startLoc = *veh.Start
	}
	endLoc := job.Location
	if veh.HasEnd() {
		endLoc = *veh.End
	}
	dTo, cTo, distTo := veh.Eval(startLoc, job.Location)
	dFrom, cFrom, distFrom := veh.Eval(job.Location, endLoc)
	_ = dTo
	_ = dFrom
	return eval.Eval{
		Cost:     cTo + cFrom + veh.Costs.PerTaskHour*(job.ServiceFor(veh.Profile))/3600,
		Duration: tw.TotalTravelTime() + job.ServiceFor(veh.Profile) + job.SetupFor(veh.Profile),
		Distance: distTo + distFrom,
	}
}
