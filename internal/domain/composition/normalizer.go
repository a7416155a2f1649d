package composition

import (
	"sort"

	"github.com/turtacn/ChemHammer/internal/domain/element"
)

// Normalize divides every count of raw by the total atom count and places
// the result on table's axis.
//
// Unknown symbols take table.Fallback() and are not an error. Symbols that
// share a position are merged into one entry. Zero-count symbols carry no
// mass and are dropped.
func Normalize(raw Raw, table element.Table) (Normalized, error) {
	total := raw.Total()
	if !(total > 0) {
		return nil, ErrEmptyComposition.WithDetailf("%q has no atoms", raw.String())
	}

	byPosition := make(map[int]float64, raw.Len())
	for _, sym := range raw.Symbols() {
		n := raw.counts[sym]
		if n == 0 {
			continue
		}
		pos, ok := table.Lookup(sym)
		if !ok {
			pos = table.Fallback()
		}
		byPosition[pos] += n / total
	}

	out := make(Normalized, 0, len(byPosition))
	for pos, mass := range byPosition {
		out = append(out, Entry{Position: pos, Mass: mass})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// Unknown returns the symbols of raw that table does not know, in order.
func Unknown(raw Raw, table element.Table) []string {
	var out []string
	for _, sym := range raw.Symbols() {
		if _, ok := table.Lookup(sym); !ok {
			out = append(out, sym)
		}
	}
	return out
}

// FromFormula parses and normalizes formula in one step.
func FromFormula(formula string, table element.Table) (Normalized, error) {
	raw, err := Parse(formula)
	if err != nil {
		return nil, err
	}
	return Normalize(raw, table)
}
