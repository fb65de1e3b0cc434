package model

// StepReport is one emitted step of an assembled route (spec §4.10, §6
// Output JSON "steps" array).
type StepReport struct {
	Type          StepType
	JobIndex      int // into Input.Jobs, for job/pickup/delivery steps
	BreakIndex    int // into Vehicle.Breaks, for break steps
	Location      int
	Arrival       int64
	Duration      int64 // cumulative travel duration up to this step
	Setup         int64
	Service       int64
	WaitingTime   int64
	Load          Amount
	Distance      int64 // cumulative travel distance up to this step
	ViolatesTW    bool
	ViolatesRange bool
}

// RouteReport is one vehicle's assembled route.
type RouteReport struct {
	VehicleIndex int
	Cost         int64
	Duration     int64
	Distance     int64
	Setup        int64
	Service       int64
	WaitingTime  int64
	Priority     int
	Delivery     Amount
	Pickup       Amount
	Steps        []StepReport
	Geometry     string // polyline-encoded, only set when Options.Geometry
}

// UnassignedReport describes a job left out of the solution.
type UnassignedReport struct {
	JobIndex int
	Type     JobType
	Location int
}

// Summary aggregates the solution the way spec §6's "summary" object does.
type Summary struct {
	Cost        int64
	Unassigned  int
	Routes      int
	Delivery    Amount
	Pickup      Amount
	Priority    int
	Distance    int64
	Duration    int64
	Setup       int64
	Service     int64
	WaitingTime int64
}

// Solution is the final value the core emits, mirroring spec §6 Output
// JSON. Clock-time assignment belongs to the out-of-scope ETA pass; here
// "Arrival"/"Duration" are already the scaled, relative times this core
// computes directly during assembly (spec §4.10), which is what the ETA
// pass would otherwise overwrite for a non-fixed ordering.
type Solution struct {
	Summary    Summary
	Routes     []RouteReport
	Unassigned []UnassignedReport
}

// Indicators is the lexicographic comparison key from spec §4.9:
// (unassigned priority lost, assigned count, vehicles used, weighted cost).
// Smaller is better in every field except AssignedCount, where larger is
// better — Less accounts for that directly so callers never need to know
// the polarity of each field.
type Indicators struct {
	UnassignedPriority int // sum of priority of unassigned jobs; lower is better
	AssignedCount      int // higher is better
	VehiclesUsed       int // lower is better
	Cost               int64
}

// Less reports whether ind is strictly better than o.
func (ind Indicators) Less(o Indicators) bool {
	if ind.UnassignedPriority != o.UnassignedPriority {
		return ind.UnassignedPriority < o.UnassignedPriority
	}
	if ind.AssignedCount != o.AssignedCount {
		return ind.AssignedCount > o.AssignedCount
	}
	if ind.VehiclesUsed != o.VehiclesUsed {
		return ind.VehiclesUsed < o.VehiclesUsed
	}
	return ind.Cost < o.Cost
}
