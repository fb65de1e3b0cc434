// Package jsonio parses spec §6's input JSON shape into a model.Input and
// renders a model.Solution back into spec §6's output JSON shape. Input
// validation depth is explicitly out of scope (spec §1 Non-goals); this
// layer does only the structural decoding needed to drive the solve core.
package jsonio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"tourforge/internal/matrixio"
	"tourforge/internal/model"
	"tourforge/internal/polyline"
	"tourforge/internal/solverr"
)

type rawTimeWindow [2]int64

type rawBreak struct {
	ID          int64           `json:"id"`
	Service     int64           `json:"service"`
	TimeWindows []rawTimeWindow `json:"time_windows"`
	MaxLoad     []int64         `json:"max_load"`
}

type rawCosts struct {
	Fixed       int64 `json:"fixed"`
	PerHour     int64 `json:"per_hour"`
	PerKM       int64 `json:"per_km"`
	PerTaskHour int64 `json:"per_task_hour"`
}

type rawVehicle struct {
	ID            int64           `json:"id"`
	Start         []float64       `json:"start"`
	End           []float64       `json:"end"`
	StartIndex    *int            `json:"start_index"`
	EndIndex      *int            `json:"end_index"`
	Profile       string          `json:"profile"`
	Capacity      []int64         `json:"capacity"`
	Skills        []uint32        `json:"skills"`
	TimeWindow    *rawTimeWindow  `json:"time_window"`
	Breaks        []rawBreak      `json:"breaks"`
	Costs         rawCosts        `json:"costs"`
	SpeedFactor   float64         `json:"speed_factor"`
	MaxTasks      int             `json:"max_tasks"`
	MaxTravelTime *int64          `json:"max_travel_time"`
	MaxDistance   *int64          `json:"max_distance"`
}

type rawJob struct {
	ID            int64           `json:"id"`
	Location      []float64       `json:"location"`
	LocationIndex *int            `json:"location_index"`
	Setup         int64           `json:"setup"`
	Service       int64           `json:"service"`
	Delivery      []int64         `json:"delivery"`
	Pickup        []int64         `json:"pickup"`
	Skills        []uint32        `json:"skills"`
	Priority      int             `json:"priority"`
	TimeWindows   []rawTimeWindow `json:"time_windows"`
}

type rawShipmentStep struct {
	Location      []float64       `json:"location"`
	LocationIndex *int            `json:"location_index"`
	Service       int64           `json:"service"`
	TimeWindows   []rawTimeWindow `json:"time_windows"`
}

type rawShipment struct {
	Pickup   rawShipmentStep `json:"pickup"`
	Delivery rawShipmentStep `json:"delivery"`
	Amount   []int64         `json:"amount"`
	Skills   []uint32        `json:"skills"`
	Priority int             `json:"priority"`
}

type rawMatrix struct {
	Durations [][]int64 `json:"durations"`
	Distances [][]int64 `json:"distances"`
	Costs     [][]int64 `json:"costs"`
}

type rawInput struct {
	Vehicles  []rawVehicle         `json:"vehicles"`
	Jobs      []rawJob             `json:"jobs"`
	Shipments []rawShipment        `json:"shipments"`
	Matrices  map[string]rawMatrix `json:"matrices"`
}

// locationResolver assigns a stable matrix index to every distinct
// coordinate referenced by the input, in order of first appearance; an
// explicit location_index is used as given.
type locationResolver struct {
	coordIndex map[[2]float64]int
	coords     [][2]float64
}

func newLocationResolver() *locationResolver {
	return &locationResolver{coordIndex: map[[2]float64]int{}}
}

func (lr *locationResolver) resolve(coord []float64, idx *int) (int, error) {
	if idx != nil {
		return *idx, nil
	}
	if len(coord) != 2 {
		return 0, fmt.Errorf("job/vehicle entry has neither location_index nor a 2-element location")
	}
	key := [2]float64{coord[0], coord[1]}
	if i, ok := lr.coordIndex[key]; ok {
		return i, nil
	}
	i := len(lr.coords)
	lr.coords = append(lr.coords, key)
	lr.coordIndex[key] = i
	return i, nil
}

// Options carries the CLI-derived knobs Decode needs beyond the JSON body.
type Options struct {
	Router       matrixio.Router // empty when no -r flag was given
	RouterHosts  map[string]matrixio.HostPort
	SolveOptions model.Options
}

// Decode parses spec §6's input JSON from r into a model.Input, fetching
// matrices from the external router named by opts.Router when the input
// does not already carry a "matrices" object (SPEC_FULL §5.2).
func Decode(ctx context.Context, r io.Reader, opts Options) (*model.Input, error) {
	var raw rawInput
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, solverr.Wrap(solverr.KindInput, "decoding input JSON", err)
	}
	if len(raw.Vehicles) == 0 {
		return nil, solverr.New(solverr.KindInput, "input has no vehicles")
	}
	if len(raw.Jobs) == 0 && len(raw.Shipments) == 0 {
		return nil, solverr.New(solverr.KindInput, "input has no jobs or shipments")
	}

	amountDim := maxAmountDim(raw)

	lr := newLocationResolver()
	vehicles := make([]model.Vehicle, len(raw.Vehicles))
	for i, rv := range raw.Vehicles {
		v, err := buildVehicle(lr, rv, amountDim)
		if err != nil {
			return nil, solverr.Wrap(solverr.KindInput, fmt.Sprintf("vehicle %d", i), err)
		}
		vehicles[i] = v
	}

	var jobs []model.Job
	for i, rj := range raw.Jobs {
		j, err := buildSingleJob(lr, rj, amountDim)
		if err != nil {
			return nil, solverr.Wrap(solverr.KindInput, fmt.Sprintf("job %d", i), err)
		}
		j.Index = len(jobs)
		j.PartnerIndex = -1
		jobs = append(jobs, j)
	}
	for i, rs := range raw.Shipments {
		pickup, delivery, err := buildShipment(lr, rs, amountDim)
		if err != nil {
			return nil, solverr.Wrap(solverr.KindInput, fmt.Sprintf("shipment %d", i), err)
		}
		pIdx := len(jobs)
		dIdx := pIdx + 1
		pickup.Index, pickup.PartnerIndex = pIdx, dIdx
		delivery.Index, delivery.PartnerIndex = dIdx, pIdx
		jobs = append(jobs, pickup, delivery)
	}

	profiles := profileSet(vehicles)
	matrices, err := resolveMatrices(ctx, raw.Matrices, profiles, lr, opts)
	if err != nil {
		return nil, err
	}

	in := model.NewInput(jobs, vehicles, matrices, amountDim, opts.SolveOptions)
	return in, nil
}

func maxAmountDim(raw rawInput) int {
	dim := 0
	grow := func(v []int64) {
		if len(v) > dim {
			dim = len(v)
		}
	}
	for _, rv := range raw.Vehicles {
		grow(rv.Capacity)
	}
	for _, rj := range raw.Jobs {
		grow(rj.Delivery)
		grow(rj.Pickup)
	}
	for _, rs := range raw.Shipments {
		grow(rs.Amount)
	}
	if dim == 0 {
		dim = 1
	}
	return dim
}

func toAmount(v []int64, dim int) model.Amount {
	a := model.NewAmount(dim)
	copy(a, v)
	return a
}

func toTimeWindows(raw []rawTimeWindow) []model.TimeWindow {
	out := make([]model.TimeWindow, len(raw))
	for i, w := range raw {
		out[i] = model.TimeWindow{Start: w[0], End: w[1]}
	}
	return out
}

func toSkills(s []uint32) map[uint32]struct{} {
	if len(s) == 0 {
		return nil
	}
	out := make(map[uint32]struct{}, len(s))
	for _, v := range s {
		out[v] = struct{}{}
	}
	return out
}

func buildVehicle(lr *locationResolver, rv rawVehicle, dim int) (model.Vehicle, error) {
	v := model.Vehicle{
		ID:          rv.ID,
		Profile:     rv.Profile,
		Capacity:    toAmount(rv.Capacity, dim),
		Skills:      toSkills(rv.Skills),
		SpeedFactor: rv.SpeedFactor,
		MaxTasks:      rv.MaxTasks,
		MaxTravelTime: rv.MaxTravelTime,
		MaxDistance:   rv.MaxDistance,
		Costs: model.VehicleCosts{
			Fixed:       rv.Costs.Fixed,
			PerHour:     rv.Costs.PerHour,
			PerKM:       rv.Costs.PerKM,
			PerTaskHour: rv.Costs.PerTaskHour,
		},
	}
	if v.Profile == "" {
		v.Profile = "car"
	}
	if v.SpeedFactor == 0 {
		v.SpeedFactor = 1.0
	}
	if rv.TimeWindow != nil {
		v.TW = model.TimeWindow{Start: rv.TimeWindow[0], End: rv.TimeWindow[1]}
	} else {
		v.TW = model.TimeWindow{Start: 0, End: 1 << 40}
	}
	if rv.Start != nil || rv.StartIndex != nil {
		idx, err := lr.resolve(rv.Start, rv.StartIndex)
		if err != nil {
			return v, err
		}
		v.Start = &idx
	}
	if rv.End != nil || rv.EndIndex != nil {
		idx, err := lr.resolve(rv.End, rv.EndIndex)
		if err != nil {
			return v, err
		}
		v.End = &idx
	}
	for i, rb := range rv.Breaks {
		v.Breaks = append(v.Breaks, model.Break{
			ID:          rb.ID,
			Index:       i,
			TimeWindows: toTimeWindows(rb.TimeWindows),
			Service:     rb.Service,
			MaxLoad:     toAmount(rb.MaxLoad, dim),
		})
	}
	return v, nil
}

func buildSingleJob(lr *locationResolver, rj rawJob, dim int) (model.Job, error) {
	loc, err := lr.resolve(rj.Location, rj.LocationIndex)
	if err != nil {
		return model.Job{}, err
	}
	return model.Job{
		ID:          rj.ID,
		Type:        model.JobSingle,
		Location:    loc,
		Setup:       map[string]int64{"": rj.Setup},
		Service:     map[string]int64{"": rj.Service},
		Pickup:      toAmount(rj.Pickup, dim),
		Delivery:    toAmount(rj.Delivery, dim),
		Skills:      toSkills(rj.Skills),
		Priority:    rj.Priority,
		TimeWindows: toTimeWindows(rj.TimeWindows),
	}, nil
}

func buildShipment(lr *locationResolver, rs rawShipment, dim int) (model.Job, model.Job, error) {
	pLoc, err := lr.resolve(rs.Pickup.Location, rs.Pickup.LocationIndex)
	if err != nil {
		return model.Job{}, model.Job{}, err
	}
	dLoc, err := lr.resolve(rs.Delivery.Location, rs.Delivery.LocationIndex)
	if err != nil {
		return model.Job{}, model.Job{}, err
	}
	amount := toAmount(rs.Amount, dim)
	skills := toSkills(rs.Skills)
	pickup := model.Job{
		ID:          0,
		Type:        model.JobPickup,
		Location:    pLoc,
		Service:     map[string]int64{"": rs.Pickup.Service},
		Pickup:      amount,
		Delivery:    model.NewAmount(dim),
		Skills:      skills,
		Priority:    rs.Priority,
		TimeWindows: toTimeWindows(rs.Pickup.TimeWindows),
	}
	delivery := model.Job{
		ID:          0,
		Type:        model.JobDelivery,
		Location:    dLoc,
		Service:     map[string]int64{"": rs.Delivery.Service},
		Pickup:      model.NewAmount(dim),
		Delivery:    amount,
		Skills:      skills,
		Priority:    rs.Priority,
		TimeWindows: toTimeWindows(rs.Delivery.TimeWindows),
	}
	return pickup, delivery, nil
}

func profileSet(vehicles []model.Vehicle) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range vehicles {
		if _, ok := seen[v.Profile]; !ok {
			seen[v.Profile] = struct{}{}
			out = append(out, v.Profile)
		}
	}
	return out
}

func resolveMatrices(ctx context.Context, raw map[string]rawMatrix, profiles []string, lr *locationResolver, opts Options) (map[string]*model.Matrix, error) {
	out := make(map[string]*model.Matrix, len(profiles))
	for _, profile := range profiles {
		if rm, ok := raw[profile]; ok {
			out[profile] = matrixFromRaw(profile, rm)
			continue
		}
		if opts.Router == "" {
			return nil, solverr.New(solverr.KindInput,
				fmt.Sprintf("no matrix supplied for profile %q and no router configured (-r)", profile))
		}
		client := matrixio.NewClient(opts.Router, opts.RouterHosts)
		m, err := client.FetchMatrix(ctx, profile, lr.coords)
		if err != nil {
			return nil, err
		}
		out[profile] = m
	}
	return out, nil
}

func matrixFromRaw(profile string, rm rawMatrix) *model.Matrix {
	n := len(rm.Durations)
	m := model.NewMatrix(profile, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if rm.Durations != nil {
				m.SetDuration(i, j, rm.Durations[i][j])
			}
			if rm.Distances != nil {
				m.SetDistance(i, j, rm.Distances[i][j])
			}
			if rm.Costs != nil {
				m.SetCost(i, j, rm.Costs[i][j])
			}
		}
	}
	return m
}

// --- output ---

type outStep struct {
	Type        string  `json:"type"`
	ID          *int64  `json:"id,omitempty"`
	Location    *int    `json:"location,omitempty"`
	Arrival     int64   `json:"arrival"`
	Duration    int64   `json:"duration"`
	Setup       int64   `json:"setup"`
	Service     int64   `json:"service"`
	WaitingTime int64   `json:"waiting_time"`
	Load        []int64 `json:"load"`
	Distance    int64   `json:"distance,omitempty"`
	Job         *int64  `json:"job,omitempty"`
	Violations  []string `json:"violations,omitempty"`
}

type outRoute struct {
	Vehicle  int64     `json:"vehicle"`
	Cost     int64     `json:"cost"`
	Duration int64     `json:"duration"`
	Distance int64     `json:"distance,omitempty"`
	Steps    []outStep `json:"steps"`
	Geometry string    `json:"geometry,omitempty"`
}

type outUnassigned struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Location *int   `json:"location,omitempty"`
}

type computingTimes struct {
	Loading int64 `json:"loading"`
	Solving int64 `json:"solving"`
	Routing int64 `json:"routing"`
}

type outSummary struct {
	Cost           int64          `json:"cost"`
	Unassigned     int            `json:"unassigned"`
	Routes         int            `json:"routes"`
	Delivery       []int64        `json:"delivery"`
	Pickup         []int64        `json:"pickup"`
	Priority       int            `json:"priority"`
	Distance       int64          `json:"distance,omitempty"`
	Duration       int64          `json:"duration"`
	Setup          int64          `json:"setup"`
	Service        int64          `json:"service"`
	WaitingTime    int64          `json:"waiting_time"`
	ComputingTimes computingTimes `json:"computing_times"`
}

type outDoc struct {
	Code       int             `json:"code"`
	Error      string          `json:"error,omitempty"`
	Summary    *outSummary     `json:"summary,omitempty"`
	Routes     []outRoute      `json:"routes,omitempty"`
	Unassigned []outUnassigned `json:"unassigned,omitempty"`
}

// Times carries the loading/solving/routing breakdown for the summary
// object (spec §6), stamped by the caller's own timers.
type Times struct {
	LoadingMS int64
	SolvingMS int64
	RoutingMS int64
}

// Encode renders sol (with vehicle/job ids looked up from in) as spec §6's
// output JSON, including polyline geometry when requested.
func Encode(w io.Writer, in *model.Input, sol model.Solution, geometry bool, coords func(location int) (float64, float64, bool), times Times) error {
	doc := outDoc{
		Code: 0,
		Summary: &outSummary{
			Cost:        sol.Summary.Cost,
			Unassigned:  sol.Summary.Unassigned,
			Routes:      sol.Summary.Routes,
			Delivery:    []int64(sol.Summary.Delivery),
			Pickup:      []int64(sol.Summary.Pickup),
			Priority:    sol.Summary.Priority,
			Distance:    sol.Summary.Distance,
			Duration:    sol.Summary.Duration,
			Setup:       sol.Summary.Setup,
			Service:     sol.Summary.Service,
			WaitingTime: sol.Summary.WaitingTime,
			ComputingTimes: computingTimes{
				Loading: times.LoadingMS,
				Solving: times.SolvingMS,
				Routing: times.RoutingMS,
			},
		},
	}
	for _, rr := range sol.Routes {
		veh := in.Vehicle(rr.VehicleIndex)
		or := outRoute{
			Vehicle:  veh.ID,
			Cost:     rr.Cost,
			Duration: rr.Duration,
			Distance: rr.Distance,
		}
		if geometry {
			or.Geometry = buildGeometry(rr, coords)
		}
		for _, s := range rr.Steps {
			or.Steps = append(or.Steps, stepToOut(in, s))
		}
		doc.Routes = append(doc.Routes, or)
	}
	for _, u := range sol.Unassigned {
		j := in.Job(u.JobIndex)
		loc := u.Location
		doc.Unassigned = append(doc.Unassigned, outUnassigned{
			ID:       j.ID,
			Type:     u.Type.String(),
			Location: &loc,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// EncodeError renders a solverr.Error as spec §7's `{"code": k, "error": "..."}`
// shape, using the error's exit code as the JSON code field.
func EncodeError(w io.Writer, err *solverr.Error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outDoc{Code: err.Kind.ExitCode(), Error: err.Error()})
}

func stepToOut(in *model.Input, s model.StepReport) outStep {
	os := outStep{
		Arrival:     s.Arrival,
		Duration:    s.Duration,
		Setup:       s.Setup,
		Service:     s.Service,
		WaitingTime: s.WaitingTime,
		Load:        []int64(s.Load),
		Distance:    s.Distance,
	}
	loc := s.Location
	switch s.Type {
	case model.StepStart:
		os.Type = "start"
		os.Location = &loc
	case model.StepEnd:
		os.Type = "end"
		os.Location = &loc
	case model.StepBreak:
		os.Type = "break"
	default:
		j := in.Job(s.JobIndex)
		os.Type = jobTypeString(j.Type)
		os.Location = &loc
		id := j.ID
		os.Job = &id
	}
	if s.ViolatesTW || s.ViolatesRange {
		if s.ViolatesTW {
			os.Violations = append(os.Violations, "time_window")
		}
		if s.ViolatesRange {
			os.Violations = append(os.Violations, "range")
		}
	}
	return os
}

func jobTypeString(t model.JobType) string {
	switch t {
	case model.JobPickup:
		return "pickup"
	case model.JobDelivery:
		return "delivery"
	default:
		return "job"
	}
}

func buildGeometry(rr model.RouteReport, coords func(location int) (float64, float64, bool)) string {
	if coords == nil {
		return ""
	}
	var pts []polyline.Point
	for _, s := range rr.Steps {
		if s.Type == model.StepBreak {
			continue
		}
		lat, lng, ok := coords(s.Location)
		if !ok {
			return ""
		}
		pts = append(pts, polyline.Point{Lat: lat, Lng: lng})
	}
	return polyline.Encode(pts)
}
