package search

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ChemHammer/internal/domain/composition"
	"github.com/turtacn/ChemHammer/internal/domain/transport"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/pkg/chemhammer"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// CompositionCache memoizes query compositions.
type CompositionCache interface {
	GetOrCompute(ctx context.Context, formula string, compute func() (composition.Normalized, error)) (composition.Normalized, error)
}

// Metrics receives search and solve observations.
type Metrics interface {
	RecordSearch(compared, results int, duration time.Duration)
	RecordDistance(path string, pivots int, duration time.Duration, err error)
	RecordCorpusLoad(source string, loaded, skipped int)
}

// Query selects and ranks corpus compounds.
type Query struct {
	Formula     string `json:"formula"`
	Limit       int    `json:"limit"`
	MustContain string `json:"must_contain"`
}

// Result is one ranked compound.
type Result struct {
	ID       string  `json:"id"`
	Formula  string  `json:"formula"`
	Distance float64 `json:"distance"`
}

// Response carries the ranked results of one query.
type Response struct {
	Query    string        `json:"query"`
	Results  []Result      `json:"results"`
	Compared int           `json:"compared"`
	Took     time.Duration `json:"took_ns"`
}

// Service searches one corpus. It is safe for concurrent use.
type Service struct {
	engine       *chemhammer.Engine
	corpus       *Corpus
	cache        CompositionCache
	metrics      Metrics
	logger       logging.Logger
	defaultLimit int
	maxLimit     int
	concurrency  int
}

type ServiceOption func(*Service)

func WithCache(c CompositionCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLimits sets the default and maximum result counts. Non-positive values
// keep the current setting.
func WithLimits(def, maxN int) ServiceOption {
	return func(s *Service) {
		if def > 0 {
			s.defaultLimit = def
		}
		if maxN > 0 {
			s.maxLimit = maxN
		}
	}
}

// WithConcurrency bounds the number of distances computed at once.
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService returns a Service over corpus. A nil engine selects the default
// engine.
func NewService(engine *chemhammer.Engine, corpus *Corpus, log logging.Logger, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = chemhammer.DefaultEngine()
	}
	if corpus == nil {
		corpus = &Corpus{}
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Service{
		engine:       engine,
		corpus:       corpus,
		logger:       log,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		concurrency:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxLimit < s.defaultLimit {
		s.maxLimit = s.defaultLimit
	}
	if s.metrics != nil {
		s.metrics.RecordCorpusLoad(corpus.Source, corpus.Len(), corpus.Skipped)
	}
	return s
}

// Corpus returns the searched corpus.
func (s *Service) Corpus() *Corpus { return s.corpus }

// Search ranks the corpus by distance to q.Formula, nearest first. Ties are
// broken by ID. Identical (ID, formula) rows appear once.
func (s *Service) Search(ctx context.Context, q Query) (*Response, error) {
	start := time.Now()
	formula := strings.TrimSpace(q.Formula)

	query, err := s.composition(ctx, formula)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "query formula")
	}

	candidates, err := s.candidates(q.MustContain)
	if err != nil {
		return nil, err
	}

	distances := make([]float64, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := s.distance(query, candidates[i].Composition)
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, "compound "+candidates[i].ID)
			}
			distances[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("search failed", logging.Formula(formula), logging.Err(err))
		return nil, err
	}

	results := rank(candidates, distances, s.limit(q.Limit))
	took := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordSearch(len(candidates), len(results), took)
	}
	logging.FromContext(ctx, s.logger).Debug("search completed",
		logging.Formula(formula),
		logging.Int("compared", len(candidates)),
		logging.Int("results", len(results)),
		logging.Duration("took", took))

	return &Response{Query: formula, Results: results, Compared: len(candidates), Took: took}, nil
}

func (s *Service) composition(ctx context.Context, formula string) (composition.Normalized, error) {
	compute := func() (composition.Normalized, error) { return s.engine.CompositionOf(formula) }
	if s.cache == nil {
		return compute()
	}
	return s.cache.GetOrCompute(ctx, formula, compute)
}

func (s *Service) candidates(mustContain string) ([]Compound, error) {
	symbol := strings.TrimSpace(mustContain)
	if symbol == "" {
		return s.corpus.Compounds, nil
	}
	if _, ok := s.engine.Table().Lookup(symbol); !ok {
		return nil, errors.New(errors.CodeValidation, "unknown element").WithDetail(symbol)
	}
	var out []Compound
	for _, c := range s.corpus.Compounds {
		if c.HasElement(symbol) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) distance(a, b composition.Normalized) (float64, error) {
	start := time.Now()
	d, stats, err := s.engine.DistanceWithStats(a, b)
	if s.metrics != nil {
		s.metrics.RecordDistance(solvePath(stats), stats.Pivots, time.Since(start), err)
	}
	return d, err
}

func (s *Service) limit(n int) int {
	switch {
	case n <= 0:
		return s.defaultLimit
	case n > s.maxLimit:
		return s.maxLimit
	default:
		return n
	}
}

func rank(candidates []Compound, distances []float64, limit int) []Result {
	type key struct{ id, formula string }
	seen := make(map[key]struct{}, len(candidates))
	results := make([]Result, 0, len(candidates))
	for i, c := range candidates {
		k := key{c.ID, c.Formula}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		results = append(results, Result{ID: c.ID, Formula: c.Formula, Distance: distances[i]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		if results[i].ID != results[j].ID {
			return results[i].ID < results[j].ID
		}
		return results[i].Formula < results[j].Formula
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func solvePath(stats transport.Stats) string {
	if stats.FastPath {
		return "closed"
	}
	return "simplex"
}
