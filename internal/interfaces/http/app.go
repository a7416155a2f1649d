package http

import (
	"context"
	"net"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/internal/application/matrix"
	"github.com/turtacn/ChemHammer/internal/application/search"
	"github.com/turtacn/ChemHammer/internal/config"
	"github.com/turtacn/ChemHammer/internal/domain/element"
	"github.com/turtacn/ChemHammer/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemHammer/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemHammer/internal/interfaces/http/middleware"
	"github.com/turtacn/ChemHammer/pkg/chemhammer"
)

// App is the API server with every dependency built from a Config.
type App struct {
	Router    *gin.Engine
	Server    *Server
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector
	Cache     *redis.CompositionCache

	redis *redis.Client
}

// NewApp wires metrics, the optional Redis cache, the optional search corpus,
// the matrix builder and the router. The search routes are mounted only when
// a corpus path is configured.
func NewApp(ctx context.Context, cfg *config.Config, engine *chemhammer.Engine, logger logging.Logger, version string) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if engine == nil {
		engine = chemhammer.DefaultEngine()
	}
	gin.SetMode(cfg.Server.Mode)

	app := &App{}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.Collector = collector
		app.Metrics = prometheus.NewAppMetrics(collector)
	}

	var checkers []handlers.HealthChecker
	if cfg.Cache.Enabled {
		client, err := redis.NewClient(ctx, redis.ClientConfig{
			Addr:         cfg.Cache.Addr,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			PoolSize:     cfg.Cache.PoolSize,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
		}, logger.Named("redis"))
		if err != nil {
			return nil, err
		}
		app.redis = client
		app.Cache = redis.NewCompositionCache(client, logger.Named("cache"),
			redis.WithPrefix(cfg.Cache.KeyPrefix),
			redis.WithTableID(tableID(engine.Table())),
			redis.WithTTL(cfg.Cache.TTL),
			redis.WithMetrics(app.Metrics),
		)
		checkers = append(checkers, client)
	}

	rc := RouterConfig{
		DistanceHandler:  handlers.NewDistanceHandler(engine, app.Metrics),
		HealthHandler:    handlers.NewHealthHandler(version, checkers...),
		Logging:          middleware.DefaultLoggingConfig(),
		MaxBodySize:      cfg.Server.MaxBodySize,
		Logger:           logger.Named("http"),
		Metrics:          app.Metrics,
		MetricsCollector: app.Collector,
		MetricsPath:      cfg.Metrics.Path,
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cors := middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)
		rc.CORS = &cors
	}

	builder := matrix.NewBuilder(engine, logger.Named("matrix"),
		matrix.WithRound(cfg.Matrix.Round),
		matrix.WithConcurrency(cfg.Worker.Concurrency),
		matrix.WithMaxFormulas(cfg.Matrix.MaxFormulas),
		matrix.WithMetrics(app.Metrics),
	)
	rc.MatrixHandler = handlers.NewMatrixHandler(builder, app.Metrics)

	if cfg.Search.CorpusPath != "" {
		corpus, err := search.LoadCorpus(cfg.Search.CorpusPath, engine.Table(), logger.Named("corpus"))
		if err != nil {
			app.Close()
			return nil, err
		}
		opts := []search.ServiceOption{
			search.WithMetrics(app.Metrics),
			search.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
			search.WithConcurrency(cfg.Worker.Concurrency),
		}
		if app.Cache != nil {
			opts = append(opts, search.WithCache(app.Cache))
		}
		svc := search.NewService(engine, corpus, logger.Named("search"), opts...)
		rc.SearchHandler = handlers.NewSearchHandler(svc, app.Metrics)
	}

	app.Router = NewRouter(rc)
	app.Server = NewServer(cfg.Server, app.Router, logger.Named("http"))
	return app, nil
}

// Run serves on the configured address until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.run(ctx, a.Server.Start)
}

// RunListener serves on ln until ctx is cancelled.
func (a *App) RunListener(ctx context.Context, ln net.Listener) error {
	return a.run(ctx, func() error { return a.Server.Serve(ln) })
}

func (a *App) run(ctx context.Context, serve func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- serve() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := a.Server.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}

// tableID returns the fingerprint of tables that expose one.
func tableID(t element.Table) string {
	if f, ok := t.(interface{ Fingerprint() string }); ok {
		return f.Fingerprint()
	}
	return ""
}
