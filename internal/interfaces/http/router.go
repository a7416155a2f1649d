// Package http exposes the ChemHammer engine over a gin JSON API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemHammer/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemHammer/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the route tree. Nil handlers leave their routes unmounted.
type RouterConfig struct {
	// Handlers
	DistanceHandler *handlers.DistanceHandler
	SearchHandler   *handlers.SearchHandler
	MatrixHandler   *handlers.MatrixHandler
	HealthHandler   *handlers.HealthHandler

	// Middleware
	Logging     middleware.LoggingConfig
	CORS        *middleware.CORSConfig
	MaxBodySize int64

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.BodyLimit(cfg.MaxBodySize))

	if h := cfg.HealthHandler; h != nil {
		r.GET("/healthz", h.Liveness)
		r.GET("/readyz", h.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET(cfg.MetricsPath, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if h := cfg.DistanceHandler; h != nil {
		api.POST("/distance", h.Distance)
		api.POST("/composition", h.Composition)
	}
	if h := cfg.SearchHandler; h != nil {
		api.POST("/search", h.Search)
	}
	if h := cfg.MatrixHandler; h != nil {
		api.POST("/matrix", h.Matrix)
		api.GET("/matrix.csv", h.CSV)
		api.GET("/matrix.xlsx", h.XLSX)
	}

	return r
}
