package transport

import (
	"math"
	"sort"
)

// Solver computes transportation distances. The zero value is not usable;
// construct with NewSolver.
type Solver struct {
	epsilon        float64
	maxPivotFactor int
	fastPath       bool
}

// NewSolver returns a Solver with the defaults overridden by opts.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		epsilon:        DefaultEpsilon,
		maxPivotFactor: DefaultMaxPivotFactor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Epsilon returns the configured tolerance.
func (s *Solver) Epsilon() float64 { return s.epsilon }

// MaxPivotFactor returns the configured pivot bound factor.
func (s *Solver) MaxPivotFactor() int { return s.maxPivotFactor }

// FastPath reports whether the closed form is enabled.
func (s *Solver) FastPath() bool { return s.fastPath }

// Solve is a convenience wrapper around NewSolver(opts...).Solve.
func Solve(supply, demand []Node, opts ...Option) (float64, error) {
	return NewSolver(opts...).Solve(supply, demand)
}

// Solve returns the minimum total cost of moving supply onto demand.
func (s *Solver) Solve(supply, demand []Node) (float64, error) {
	v, _, err := s.SolveWithStats(supply, demand)
	return v, err
}

// SolveWithStats is Solve plus pivot diagnostics.
func (s *Solver) SolveWithStats(supply, demand []Node) (float64, Stats, error) {
	ta, err := validate(supply, "supply")
	if err != nil {
		return 0, Stats{}, err
	}
	tb, err := validate(demand, "demand")
	if err != nil {
		return 0, Stats{}, err
	}

	a, b := sortedCopy(supply), sortedCopy(demand)
	if lessNodes(b, a) {
		a, b = b, a
		ta, tb = tb, ta
	}
	if equalNodes(a, b) {
		return 0, Stats{Supply: len(a), Demand: len(b)}, nil
	}

	if s.fastPath && math.Abs(ta-tb) <= s.epsilon {
		return closed(a, b), Stats{Supply: len(a), Demand: len(b), FastPath: true}, nil
	}

	p := newProblem(a, b, ta, tb, s.epsilon)
	stats := Stats{Supply: p.m, Demand: p.n, Balanced: p.dummy}
	if err := p.run(s.maxPivotFactor*(p.m+p.n), &stats); err != nil {
		return 0, stats, err
	}

	v := p.cost()
	if v < 0 && v > -s.epsilon {
		v = 0
	}
	return v, stats, nil
}

func validate(nodes []Node, side string) (float64, error) {
	if len(nodes) == 0 {
		return 0, ErrInvalidDistribution.WithDetail(side + ": no nodes")
	}
	var total float64
	for i, nd := range nodes {
		if nd.Mass < 0 || math.IsNaN(nd.Mass) || math.IsInf(nd.Mass, 0) {
			return 0, ErrInvalidDistribution.WithDetailf("%s node %d: mass %v", side, i, nd.Mass)
		}
		total += nd.Mass
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return 0, ErrInvalidDistribution.WithDetailf("%s: total mass %v", side, total)
	}
	return total, nil
}

func sortedCopy(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Mass < out[j].Mass
	})
	return out
}

// lessNodes orders node lists lexicographically by (position, mass), then
// by length.
func lessNodes(a, b []Node) bool {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k].Position != b[k].Position {
			return a[k].Position < b[k].Position
		}
		if a[k].Mass != b[k].Mass {
			return a[k].Mass < b[k].Mass
		}
	}
	return len(a) < len(b)
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}
