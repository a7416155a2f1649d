package config

import (
	"runtime"
	"time"

	"github.com/turtacn/ChemHammer/internal/domain/element"
	"github.com/turtacn/ChemHammer/internal/domain/transport"
)

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerMaxBodySize     = 1 << 20
	DefaultServerShutdownTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultSearchLimit    = 50
	DefaultSearchMaxLimit = 1000

	DefaultCacheAddr      = "localhost:6379"
	DefaultCachePoolSize  = 10
	DefaultCacheTTL       = 24 * time.Hour
	DefaultCacheKeyPrefix = "chemhammer:"
	DefaultCacheTimeout   = 3 * time.Second

	DefaultMetricsNamespace = "chemhammer"
	DefaultMetricsPath      = "/metrics"

	DefaultMatrixMaxFormulas = 500
)

// DefaultWorkerConcurrency is the fan-out bound when none is configured.
var DefaultWorkerConcurrency = runtime.NumCPU()

// NewDefaultConfig returns a Config with every default applied, for callers
// that run without a file.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields of cfg. Explicit values win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// Elements
	if cfg.Elements.FallbackSymbol == "" {
		cfg.Elements.FallbackSymbol = element.DefaultFallbackSymbol
	}

	// Solver
	if cfg.Solver.Epsilon == 0 {
		cfg.Solver.Epsilon = transport.DefaultEpsilon
	}
	if cfg.Solver.MaxPivotFactor == 0 {
		cfg.Solver.MaxPivotFactor = transport.DefaultMaxPivotFactor
	}

	// Search
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = DefaultSearchLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = DefaultSearchMaxLimit
	}

	// Worker
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}

	// Cache
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.PoolSize == 0 {
		cfg.Cache.PoolSize = DefaultCachePoolSize
	}
	if cfg.Cache.DialTimeout == 0 {
		cfg.Cache.DialTimeout = DefaultCacheTimeout
	}
	if cfg.Cache.ReadTimeout == 0 {
		cfg.Cache.ReadTimeout = DefaultCacheTimeout
	}
	if cfg.Cache.WriteTimeout == 0 {
		cfg.Cache.WriteTimeout = DefaultCacheTimeout
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}

	// Metrics
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// Matrix
	if cfg.Matrix.MaxFormulas == 0 {
		cfg.Matrix.MaxFormulas = DefaultMatrixMaxFormulas
	}
}

// SolverOptions converts the solver section into transport options.
func (c *Config) SolverOptions() []transport.Option {
	return []transport.Option{
		transport.WithEpsilon(c.Solver.Epsilon),
		transport.WithMaxPivotFactor(c.Solver.MaxPivotFactor),
		transport.WithFastPath(c.Solver.FastPath),
	}
}

// LoadElementTable returns the configured element table.
func (c *Config) LoadElementTable() (element.Table, error) {
	if c.Elements.Path == "" && c.Elements.FallbackSymbol == element.DefaultFallbackSymbol {
		return element.Default(), nil
	}
	var (
		t   *element.PositionTable
		err error
	)
	if c.Elements.Path == "" {
		t, err = element.LoadEmbedded(element.WithFallbackSymbol(c.Elements.FallbackSymbol))
	} else {
		t, err = element.LoadFile(c.Elements.Path, element.WithFallbackSymbol(c.Elements.FallbackSymbol))
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
