// Package composition turns chemical formulas into discrete mass
// distributions over element positions.
//
// Parse produces a Raw composition (symbol → atom count). Normalize divides
// the counts by their total and places them on the axis of an element.Table,
// producing a Normalized composition ready for the transport solver.
package composition

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Raw maps element symbols to non-negative atom counts. The zero value is an
// empty composition. Raw is immutable; accessors return copies.
type Raw struct {
	counts map[string]float64
}

// NewRaw builds a Raw from counts. Negative or non-finite counts are rejected.
func NewRaw(counts map[string]float64) (Raw, error) {
	cp := make(map[string]float64, len(counts))
	for sym, n := range counts {
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return Raw{}, ErrInvalidComposition.WithDetailf("%s=%v", sym, n)
		}
		if sym == "" {
			return Raw{}, ErrInvalidComposition.WithDetail("empty symbol")
		}
		cp[sym] = n
	}
	return Raw{counts: cp}, nil
}

// Count returns the count of symbol, 0 if absent.
func (r Raw) Count(symbol string) float64 {
	return r.counts[symbol]
}

// Len returns the number of distinct symbols.
func (r Raw) Len() int {
	return len(r.counts)
}

// Symbols returns the symbols in lexical order.
func (r Raw) Symbols() []string {
	out := make([]string, 0, len(r.counts))
	for sym := range r.counts {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Total returns the sum of all counts, accumulated in symbol order so the
// result does not depend on map iteration.
func (r Raw) Total() float64 {
	var total float64
	for _, sym := range r.Symbols() {
		total += r.counts[sym]
	}
	return total
}

// Map returns a copy of the counts.
func (r Raw) Map() map[string]float64 {
	cp := make(map[string]float64, len(r.counts))
	for k, v := range r.counts {
		cp[k] = v
	}
	return cp
}

// String renders the composition as a flat formula in symbol order, e.g.
// "C4H12N". Unit counts are omitted.
func (r Raw) String() string {
	var sb strings.Builder
	for _, sym := range r.Symbols() {
		sb.WriteString(sym)
		if n := r.counts[sym]; n != 1 {
			sb.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		}
	}
	return sb.String()
}

// fuse returns (a[s] + b[s]) * w for every symbol of a and b.
func fuse(a, b map[string]float64, w float64) map[string]float64 {
	out := make(map[string]float64, len(a)+len(b))
	for sym, n := range a {
		out[sym] = n
	}
	for sym, n := range b {
		out[sym] += n
	}
	if w != 1 {
		for sym := range out {
			out[sym] *= w
		}
	}
	return out
}

// Entry is one point of a normalized distribution.
type Entry struct {
	Position int     `json:"position"`
	Mass     float64 `json:"mass"`
}

// Normalized is a discrete distribution on the element axis: positions
// strictly increasing, masses non-negative and summing to 1.
type Normalized []Entry

// massTolerance bounds the deviation of a normalized total from 1.
const massTolerance = 1e-9

// Positions returns the positions in order.
func (n Normalized) Positions() []int {
	out := make([]int, len(n))
	for i, e := range n {
		out[i] = e.Position
	}
	return out
}

// Masses returns the masses in position order.
func (n Normalized) Masses() []float64 {
	out := make([]float64, len(n))
	for i, e := range n {
		out[i] = e.Mass
	}
	return out
}

// Total returns the summed mass.
func (n Normalized) Total() float64 {
	var total float64
	for _, e := range n {
		total += e.Mass
	}
	return total
}

// Contains reports whether position carries mass.
func (n Normalized) Contains(position int) bool {
	i := sort.Search(len(n), func(i int) bool { return n[i].Position >= position })
	return i < len(n) && n[i].Position == position && n[i].Mass > 0
}

// Equal reports whether n and o have identical entries.
func (n Normalized) Equal(o Normalized) bool {
	if len(n) != len(o) {
		return false
	}
	for i := range n {
		if n[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of n.
func (n Normalized) Clone() Normalized {
	if n == nil {
		return nil
	}
	out := make(Normalized, len(n))
	copy(out, n)
	return out
}

// Validate checks the distribution invariants. It is used on compositions
// that did not come from Normalize (cache entries, API input).
func (n Normalized) Validate() error {
	if len(n) == 0 {
		return ErrEmptyComposition
	}
	for i, e := range n {
		if e.Mass < 0 || math.IsNaN(e.Mass) || math.IsInf(e.Mass, 0) {
			return ErrInvalidComposition.WithDetailf("entry %d: mass %v", i, e.Mass)
		}
		if i > 0 && e.Position <= n[i-1].Position {
			return ErrInvalidComposition.WithDetailf("entry %d: position %d not increasing", i, e.Position)
		}
	}
	if total := n.Total(); math.Abs(total-1) > massTolerance {
		return ErrInvalidComposition.WithDetailf("total mass %v", total)
	}
	return nil
}
