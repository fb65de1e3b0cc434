package model

// Scale is the fixed-precision factor applied to all user-facing durations
// and costs on the way in, and undone on the way out (spec §4.1). Distances
// are already integer meters and are not scaled.
const Scale = 1

// Options carries solve-time knobs that are not part of the problem data
// itself (spec §6 CLI surface, §9 Open Questions).
type Options struct {
	NbSearches int
	Depth      int
	NbThreads  int
	// ApplyTSPFix enables the optional single-route 2-opt descent used for
	// Single-only instances (spec §9 Open Question; default off).
	ApplyTSPFix bool
	Geometry    bool
}

// Input is the immutable, frozen problem instance the core consumes. It is
// constructed once by the (out-of-scope) parsing/matrix-provisioning layer
// and never mutated by the solver.
type Input struct {
	Jobs     []Job
	Vehicles []Vehicle
	Matrices map[string]*Matrix // keyed by profile name
	AmountDim int

	Options Options
}

// NewInput binds each vehicle to its profile matrix and sets every
// Job.Index/Vehicle.Index to its slice position, overwriting any earlier
// value. Job.PartnerIndex is taken as given by the caller (parsing layer,
// tests); NewInput does not check it.
func NewInput(jobs []Job, vehicles []Vehicle, matrices map[string]*Matrix, amountDim int, opts Options) *Input {
	in := &Input{
		Jobs:      jobs,
		Vehicles:  vehicles,
		Matrices:  matrices,
		AmountDim: amountDim,
		Options:   opts,
	}
	for i := range in.Vehicles {
		v := &in.Vehicles[i]
		v.Index = i
		if m, ok := matrices[v.Profile]; ok {
			v.BindMatrix(m)
		}
	}
	for i := range in.Jobs {
		in.Jobs[i].Index = i
	}
	return in
}

// Vehicle returns a pointer to the vehicle at index idx.
func (in *Input) Vehicle(idx int) *Vehicle { return &in.Vehicles[idx] }

// Job returns a pointer to the job at index idx.
func (in *Input) Job(idx int) *Job { return &in.Jobs[idx] }

// NbJobs returns the number of jobs.
func (in *Input) NbJobs() int { return len(in.Jobs) }

// NbVehicles returns the number of vehicles.
func (in *Input) NbVehicles() int { return len(in.Vehicles) }

// ZeroAmount returns a zero amount vector of the input's dimension.
func (in *Input) ZeroAmount() Amount { return NewAmount(in.AmountDim) }
