package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/ChemHammer/internal/domain/composition"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

const (
	DefaultPrefix = "chemhammer:"
	DefaultTTL    = 24 * time.Hour

	cacheName     = "composition"
	compositionNS = "composition:"
)

// MetricsRecorder receives hit and miss events.
type MetricsRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// CompositionCache stores normalized compositions in Redis keyed by the
// element table fingerprint and the formula string. Redis failures degrade
// to computing the value directly.
type CompositionCache struct {
	client  *Client
	logger  logging.Logger
	prefix  string
	tableID string
	ttl     time.Duration
	jitter  bool
	metrics MetricsRecorder
	group   singleflight.Group
}

type CacheOption func(*CompositionCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *CompositionCache) { c.prefix = prefix }
}

// WithTableID scopes keys to one element table, so entries written under a
// different table or fallback symbol are never read back.
func WithTableID(id string) CacheOption {
	return func(c *CompositionCache) { c.tableID = id }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CompositionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTTLJitter toggles the +/-10% spread applied to every TTL.
func WithTTLJitter(enabled bool) CacheOption {
	return func(c *CompositionCache) { c.jitter = enabled }
}

func WithMetrics(m MetricsRecorder) CacheOption {
	return func(c *CompositionCache) { c.metrics = m }
}

func NewCompositionCache(client *Client, log logging.Logger, opts ...CacheOption) *CompositionCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &CompositionCache{
		client: client,
		logger: log,
		prefix: DefaultPrefix,
		ttl:    DefaultTTL,
		jitter: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the Redis key for formula.
func (c *CompositionCache) Key(formula string) string {
	if c.tableID == "" {
		return c.prefix + compositionNS + formula
	}
	return c.prefix + compositionNS + c.tableID + ":" + formula
}

func (c *CompositionCache) jitterTTL() time.Duration {
	if !c.jitter {
		return c.ttl
	}
	jitter := float64(c.ttl) * 0.1 * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(jitter)
}

// Get returns the cached composition. ok is false on a miss. Entries that do
// not decode to a valid distribution are evicted and reported as a miss with
// the decode or validation error.
func (c *CompositionCache) Get(ctx context.Context, formula string) (composition.Normalized, bool, error) {
	data, err := c.client.get(ctx, c.Key(formula))
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out composition.Normalized
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false, c.evict(ctx, formula, err)
	}
	if err := out.Validate(); err != nil {
		return nil, false, c.evict(ctx, formula, err)
	}
	return out, true, nil
}

func (c *CompositionCache) evict(ctx context.Context, formula string, cause error) error {
	if err := c.Delete(ctx, formula); err != nil {
		c.logger.Warn("composition cache evict failed",
			logging.Formula(formula), logging.Err(err))
	}
	return errors.Wrap(cause, errors.CodeUnknown, "discarded cache entry "+c.Key(formula))
}

// Set stores comp under formula.
func (c *CompositionCache) Set(ctx context.Context, formula string, comp composition.Normalized) error {
	data, err := json.Marshal(comp)
	if err != nil {
		return err
	}
	return c.client.set(ctx, c.Key(formula), string(data), c.jitterTTL())
}

// Delete evicts formula.
func (c *CompositionCache) Delete(ctx context.Context, formula string) error {
	return c.client.del(ctx, c.Key(formula))
}

// GetOrCompute returns the cached composition for formula, calling compute
// on a miss. Concurrent misses for one formula share a single compute.
// compute errors are returned unchanged and never cached.
func (c *CompositionCache) GetOrCompute(ctx context.Context, formula string, compute func() (composition.Normalized, error)) (composition.Normalized, error) {
	v, err, _ := c.group.Do(formula, func() (interface{}, error) {
		cached, ok, err := c.Get(ctx, formula)
		if err != nil {
			c.logger.Warn("composition cache read failed",
				logging.Formula(formula), logging.Err(err))
		}
		if ok {
			c.recordHit()
			return cached, nil
		}
		c.recordMiss()

		comp, err := compute()
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, formula, comp); err != nil {
			c.logger.Warn("composition cache write failed",
				logging.Formula(formula), logging.Err(err))
		}
		return comp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(composition.Normalized).Clone(), nil
}

func (c *CompositionCache) recordHit() {
	if c.metrics != nil {
		c.metrics.RecordCacheHit(cacheName)
	}
}

func (c *CompositionCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(cacheName)
	}
}
