// Command apiserver runs the ChemHammer HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/ChemHammer/internal/config"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ChemHammer/internal/interfaces/http"
	"github.com/turtacn/ChemHammer/pkg/chemhammer"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment and built-in defaults)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	table, err := cfg.LoadElementTable()
	if err != nil {
		return err
	}
	engine := chemhammer.NewEngine(table, cfg.SolverOptions()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := httpserver.NewApp(ctx, cfg, engine, logger, version)
	if err != nil {
		return err
	}
	defer app.Close()

	if configPath != "" {
		err := config.Watch(configPath, func(next *config.Config) {
			logger.Warn("configuration file changed, restart to apply",
				logging.String("path", configPath),
				logging.String("addr", next.Server.Addr()),
			)
		}, func(err error) {
			logger.Error("configuration file rejected", logging.String("path", configPath), logging.Err(err))
		})
		if err != nil {
			return err
		}
	}

	logger.Info("starting chemhammer api server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.Bool("cache", cfg.Cache.Enabled),
		logging.Bool("metrics", cfg.Metrics.Enabled),
	)
	if err := app.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
