// Package matrix builds symmetric pairwise distance matrices over a list of
// formulas and exports them as CSV or XLSX.
package matrix

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemHammer/internal/domain/composition"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/pkg/chemhammer"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

const DefaultMaxFormulas = 500

// Metrics receives build observations.
type Metrics interface {
	RecordMatrixBuild(formulas int, duration time.Duration)
}

// Builder computes pairwise matrices. It is safe for concurrent use.
type Builder struct {
	engine      *chemhammer.Engine
	logger      logging.Logger
	metrics     Metrics
	concurrency int
	maxFormulas int
	round       bool
}

type Option func(*Builder)

// WithRound rounds every distance half to even.
func WithRound(on bool) Option {
	return func(b *Builder) { b.round = on }
}

func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithMaxFormulas(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxFormulas = n
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// NewBuilder returns a Builder. A nil engine selects the default engine.
func NewBuilder(engine *chemhammer.Engine, log logging.Logger, opts ...Option) *Builder {
	if engine == nil {
		engine = chemhammer.DefaultEngine()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	b := &Builder{
		engine:      engine,
		logger:      log,
		concurrency: runtime.NumCPU(),
		maxFormulas: DefaultMaxFormulas,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Rounding returns a copy of b with rounding switched on or off.
func (b *Builder) Rounding(on bool) *Builder {
	c := *b
	c.round = on
	return &c
}

// Build parses every formula and fills the upper triangle concurrently.
// The diagonal is zero.
func (b *Builder) Build(ctx context.Context, formulas []string) (*Result, error) {
	start := time.Now()
	n := len(formulas)
	if n == 0 {
		return nil, errors.New(errors.CodeValidation, "no formulas given")
	}
	if n > b.maxFormulas {
		return nil, errors.New(errors.CodeValidation, "too many formulas").
			WithDetailf("%d given, at most %d allowed", n, b.maxFormulas)
	}

	comps := make([]composition.Normalized, n)
	for i, f := range formulas {
		c, err := b.engine.CompositionOf(f)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("formula %d", i+1))
		}
		comps[i] = c
	}

	type pair struct{ i, j int }
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	values := make([]float64, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for k := range pairs {
		k := k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := pairs[k]
			d, err := b.engine.Distance(comps[p.i], comps[p.j])
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown,
					fmt.Sprintf("formulas %d and %d", p.i+1, p.j+1))
			}
			values[k] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.logger.Error("matrix build failed", logging.Int("formulas", n), logging.Err(err))
		return nil, err
	}

	sym := mat.NewSymDense(n, nil)
	for k, p := range pairs {
		v := values[k]
		if b.round {
			v = math.RoundToEven(v)
		}
		sym.SetSym(p.i, p.j, v)
	}

	if b.metrics != nil {
		b.metrics.RecordMatrixBuild(n, time.Since(start))
	}
	logging.LogDuration(logging.FromContext(ctx, b.logger), "matrix build", start, logging.Int("formulas", n))

	return &Result{Formulas: append([]string(nil), formulas...), Distances: sym, Rounded: b.round}, nil
}
