// Package transport computes the minimum-cost transportation distance between
// two discrete distributions laid out on a shared one-dimensional integer
// axis. Moving one unit of mass from position p to position q costs |p − q|.
//
// The solver is a network simplex over the supply × demand bipartite graph:
//
//   - Balance: when total supply and total demand differ by more than
//     Epsilon, a zero-cost dummy node absorbs the difference.
//
//   - Start: northwest-corner allocation, giving exactly m+n−1 basic cells
//     (degenerate zero flows included).
//
//   - Pivot: potentials are recomputed on the spanning tree of basic cells,
//     the cell with the most negative reduced cost enters (ties: lowest
//     supply index, then lowest demand index), and the leaving cell is the
//     decreasing cell of the cycle with the smallest flow (ties: lowest
//     i·n+j).
//
//   - Bound: at most MaxPivotFactor·(m+n) pivots; exceeding it is reported
//     as ErrSolverInternal instead of looping.
//
// Inputs are put in a canonical order before solving, so Solve(a, b) and
// Solve(b, a) perform the same computation and return identical bits.
//
// Closed1D is the cumulative-difference integral that solves the same
// problem in linear time for balanced inputs. A Solver built with
// WithFastPath(true) uses it and falls back to the simplex otherwise.
//
// # Complexity
//
//	Start:      O(m + n)
//	Per pivot:  O(m·n) for pricing, O(m + n) for the tree walk
//	Memory:     O(m·n) for the flow and cost grids
//
// Solvers hold only configuration and are safe for concurrent use.
package transport
