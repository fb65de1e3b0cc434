package model

// Matrix holds one profile's square duration/distance/cost tables. Built
// once by the matrix-provisioning collaborator (internal/matrixio) or
// parsed directly from input JSON, then treated as read-only for the
// remainder of the solve.
type Matrix struct {
	Profile   string
	Size      int
	durations []int64 // row-major, Size*Size
	distances []int64
	costs     []int64 // nil when no custom cost matrix was supplied
}

// NewMatrix allocates a Size x Size matrix with all entries zeroed.
func NewMatrix(profile string, size int) *Matrix {
	return &Matrix{
		Profile:   profile,
		Size:      size,
		durations: make([]int64, size*size),
		distances: make([]int64, size*size),
	}
}

func (m *Matrix) idx(i, j int) int { return i*m.Size + j }

// SetDuration stores durations[i][j].
func (m *Matrix) SetDuration(i, j int, d int64) { m.durations[m.idx(i, j)] = d }

// SetDistance stores distances[i][j].
func (m *Matrix) SetDistance(i, j int, d int64) { m.distances[m.idx(i, j)] = d }

// SetCost stores a custom costs[i][j], lazily allocating the cost table on
// first use.
func (m *Matrix) SetCost(i, j int, c int64) {
	if m.costs == nil {
		m.costs = make([]int64, m.Size*m.Size)
	}
	m.costs[m.idx(i, j)] = c
}

// Duration returns durations[i][j].
func (m *Matrix) Duration(i, j int) int64 { return m.durations[m.idx(i, j)] }

// Distance returns distances[i][j].
func (m *Matrix) Distance(i, j int) int64 { return m.distances[m.idx(i, j)] }

// Cost returns the custom costs[i][j]; callers must check HasCustomCost
// first.
func (m *Matrix) Cost(i, j int) int64 { return m.costs[m.idx(i, j)] }

// HasCustomCost reports whether a user-supplied cost matrix exists for
// this profile. When false, Vehicle.Eval derives cost from duration and
// distance instead (spec §4.1).
func (m *Matrix) HasCustomCost(i, j int) bool { return m.costs != nil }
