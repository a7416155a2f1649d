package transport

import "github.com/turtacn/ChemHammer/pkg/errors"

const (
	// DefaultEpsilon is the tolerance used for balance checks and pricing.
	DefaultEpsilon = 1e-9
	// DefaultMaxPivotFactor bounds pivots at factor·(m+n).
	DefaultMaxPivotFactor = 64
)

var (
	// ErrSolverInternal reports a broken solver invariant or an exceeded
	// pivot bound.
	ErrSolverInternal = errors.New(errors.CodeSolverInternal, "transportation solver failed")

	// ErrInvalidDistribution reports negative, non-finite or empty input.
	ErrInvalidDistribution = errors.New(errors.CodeInvalidDistribution, "invalid distribution")
)

// Node is a mass placed at a position on the axis.
type Node struct {
	Position int
	Mass     float64
}

// Stats describes one solve.
type Stats struct {
	// Supply and Demand are the node counts after balancing.
	Supply, Demand int
	// Pivots is the number of basis exchanges.
	Pivots int
	// Degenerate counts pivots that moved zero flow.
	Degenerate int
	// Balanced is true when a dummy node was added.
	Balanced bool
	// FastPath is true when Closed1D produced the result.
	FastPath bool
}

// Option configures a Solver.
type Option func(*Solver)

// WithEpsilon sets the numeric tolerance. Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(s *Solver) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// WithMaxPivotFactor sets the pivot bound factor. Non-positive values are
// ignored.
func WithMaxPivotFactor(k int) Option {
	return func(s *Solver) {
		if k > 0 {
			s.maxPivotFactor = k
		}
	}
}

// WithFastPath enables the closed-form solution for balanced inputs.
func WithFastPath(on bool) Option {
	return func(s *Solver) {
		s.fastPath = on
	}
}
