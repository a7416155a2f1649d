// Package config defines the ChemHammer configuration tree and its
// validation. Loading lives in loader.go; defaults in defaults.go.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSOrigins enables CORS for the listed origins. "*" allows any.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ElementsConfig selects the element position table.
type ElementsConfig struct {
	// Path is a JSON table file. Empty selects the embedded table.
	Path           string `mapstructure:"path"`
	FallbackSymbol string `mapstructure:"fallback_symbol"`
}

// SolverConfig tunes the transportation solver.
type SolverConfig struct {
	Epsilon        float64 `mapstructure:"epsilon"`
	MaxPivotFactor int     `mapstructure:"max_pivot_factor"`
	FastPath       bool    `mapstructure:"fast_path"`
}

// SearchConfig bounds corpus search.
type SearchConfig struct {
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	CorpusPath   string `mapstructure:"corpus_path"`
}

// WorkerConfig bounds batch fan-out.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// CacheConfig configures the Redis composition cache.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// MatrixConfig configures pairwise matrix output.
type MatrixConfig struct {
	// Round rounds every distance to the nearest integer.
	Round       bool `mapstructure:"round"`
	MaxFormulas int  `mapstructure:"max_formulas"`
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Log      logging.LogConfig `mapstructure:"log"`
	Elements ElementsConfig    `mapstructure:"elements"`
	Solver   SolverConfig      `mapstructure:"solver"`
	Search   SearchConfig      `mapstructure:"search"`
	Worker   WorkerConfig      `mapstructure:"worker"`
	Cache    CacheConfig       `mapstructure:"cache"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Matrix   MatrixConfig      `mapstructure:"matrix"`
}

var validServerModes = map[string]bool{"debug": true, "release": true, "test": true}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if !validServerModes[c.Server.Mode] {
		add("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		add("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		add("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Elements.FallbackSymbol == "" {
		add("elements.fallback_symbol is required")
	}
	if c.Solver.Epsilon <= 0 || c.Solver.Epsilon >= 1e-3 {
		add("solver.epsilon must be in (0, 1e-3), got %g", c.Solver.Epsilon)
	}
	if c.Solver.MaxPivotFactor <= 0 {
		add("solver.max_pivot_factor must be positive, got %d", c.Solver.MaxPivotFactor)
	}
	if c.Search.DefaultLimit <= 0 {
		add("search.default_limit must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		add("search.max_limit (%d) must be >= search.default_limit (%d)", c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Worker.Concurrency <= 0 {
		add("worker.concurrency must be positive, got %d", c.Worker.Concurrency)
	}
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			add("cache.addr is required when cache.enabled is true")
		}
		if c.Cache.TTL <= 0 {
			add("cache.ttl must be positive, got %s", c.Cache.TTL)
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	if c.Matrix.MaxFormulas <= 0 {
		add("matrix.max_formulas must be positive, got %d", c.Matrix.MaxFormulas)
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
