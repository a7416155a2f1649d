// Package chemhammer computes the compositional distance between chemical
// formulas: the minimum cost of moving the normalized element mass of one
// formula onto the other along the modified Pettifor scale.
//
//	d, err := chemhammer.DistanceFromStrings("LiMn2O4", "LiFePO4")
//
// The package-level functions use the embedded element table and the default
// solver. Build an Engine to use another table or solver settings.
package chemhammer

import (
	"github.com/turtacn/ChemHammer/internal/domain/composition"
	"github.com/turtacn/ChemHammer/internal/domain/element"
	"github.com/turtacn/ChemHammer/internal/domain/transport"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

// Engine bundles a position table and a solver. It is immutable and safe for
// concurrent use.
type Engine struct {
	table  element.Table
	solver *transport.Solver
}

// NewEngine returns an Engine over table. A nil table selects the embedded
// default.
func NewEngine(table element.Table, opts ...transport.Option) *Engine {
	if table == nil {
		table = element.Default()
	}
	return &Engine{table: table, solver: transport.NewSolver(opts...)}
}

var defaultEngine = NewEngine(nil)

// DefaultEngine returns the Engine behind the package-level functions.
func DefaultEngine() *Engine { return defaultEngine }

// Table returns the engine's position table.
func (e *Engine) Table() element.Table { return e.table }

// Solver returns the engine's solver.
func (e *Engine) Solver() *transport.Solver { return e.solver }

// CompositionOf parses and normalizes formula.
func (e *Engine) CompositionOf(formula string) (composition.Normalized, error) {
	return composition.FromFormula(formula, e.table)
}

// Inspect is CompositionOf that also returns the symbols of formula the
// table does not know. Their mass sits at the table's fallback position.
func (e *Engine) Inspect(formula string) (composition.Normalized, []string, error) {
	raw, err := composition.Parse(formula)
	if err != nil {
		return nil, nil, err
	}
	comp, err := composition.Normalize(raw, e.table)
	if err != nil {
		return nil, nil, err
	}
	return comp, composition.Unknown(raw, e.table), nil
}

// Distance returns the transportation distance between two compositions.
func (e *Engine) Distance(a, b composition.Normalized) (float64, error) {
	d, _, err := e.DistanceWithStats(a, b)
	return d, err
}

// DistanceWithStats is Distance plus solver diagnostics.
func (e *Engine) DistanceWithStats(a, b composition.Normalized) (float64, transport.Stats, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, transport.Stats{}, composition.ErrEmptyComposition
	}
	return e.solver.SolveWithStats(Nodes(a), Nodes(b))
}

// DistanceFromStrings parses both formulas and returns their distance.
func (e *Engine) DistanceFromStrings(a, b string) (float64, error) {
	ca, err := e.CompositionOf(a)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeUnknown, "first formula")
	}
	cb, err := e.CompositionOf(b)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeUnknown, "second formula")
	}
	return e.Distance(ca, cb)
}

// Nodes converts a composition into solver input.
func Nodes(c composition.Normalized) []transport.Node {
	out := make([]transport.Node, len(c))
	for i, en := range c {
		out[i] = transport.Node{Position: en.Position, Mass: en.Mass}
	}
	return out
}

// CompositionOf parses and normalizes formula with the default engine.
func CompositionOf(formula string) (composition.Normalized, error) {
	return defaultEngine.CompositionOf(formula)
}

// Distance returns the distance between two compositions with the default
// engine.
func Distance(a, b composition.Normalized) (float64, error) {
	return defaultEngine.Distance(a, b)
}

// DistanceFromStrings returns the distance between two formulas with the
// default engine.
func DistanceFromStrings(a, b string) (float64, error) {
	return defaultEngine.DistanceFromStrings(a, b)
}
