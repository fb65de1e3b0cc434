// Package eval implements the (duration, cost) arithmetic used throughout
// the solver to score routes and candidate moves.
package eval

import "math"

// Eval is an additive, comparable pair of cost and duration, with distance
// riding alongside for reporting (in ordering it only breaks ties).
// All three fields are scaled fixed-precision integers; see model.Scale.
type Eval struct {
	Cost     int64
	Duration int64
	Distance int64
}

// Zero is the additive identity.
var Zero = Eval{}

// NoEval is the sentinel for "no feasible insertion": maximum cost so it
// never wins a Less comparison against any real Eval.
var NoEval = Eval{Cost: math.MaxInt64, Duration: math.MaxInt64, Distance: math.MaxInt64}

// IsNoEval reports whether e is the sentinel.
func (e Eval) IsNoEval() bool {
	return e.Cost == math.MaxInt64
}

// Add returns the elementwise sum of e and o. Adding into NoEval saturates
// rather than overflowing, since NoEval must stay strictly worse than any
// real value.
func (e Eval) Add(o Eval) Eval {
	if e.IsNoEval() || o.IsNoEval() {
		return NoEval
	}
	return Eval{
		Cost:     e.Cost + o.Cost,
		Duration: e.Duration + o.Duration,
		Distance: e.Distance + o.Distance,
	}
}

// Sub returns e - o. Used for gain computations (before - after).
func (e Eval) Sub(o Eval) Eval {
	if e.IsNoEval() || o.IsNoEval() {
		return NoEval
	}
	return Eval{
		Cost:     e.Cost - o.Cost,
		Duration: e.Duration - o.Duration,
		Distance: e.Distance - o.Distance,
	}
}

// Less orders lexicographically on (Cost, Duration, Distance).
func (e Eval) Less(o Eval) bool {
	if e.Cost != o.Cost {
		return e.Cost < o.Cost
	}
	if e.Duration != o.Duration {
		return e.Duration < o.Duration
	}
	return e.Distance < o.Distance
}

// LessOrEqual is the non-strict counterpart of Less.
func (e Eval) LessOrEqual(o Eval) bool {
	return !o.Less(e)
}

// Sum folds Add over a slice, starting from Zero.
func Sum(evals []Eval) Eval {
	total := Zero
	for _, e := range evals {
		total = total.Add(e)
	}
	return total
}

// Min returns the lexicographically smaller of a and b.
func Min(a, b Eval) Eval {
	if b.Less(a) {
		return b
	}
	return a
}
