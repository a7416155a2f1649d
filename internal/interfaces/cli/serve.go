package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ChemHammer/internal/interfaces/http"
)

type serveOptions struct {
	host   string
	port   int
	corpus string
}

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.host, "host", "", "listen host (default: server.host)")
	f.IntVarP(&opts.port, "port", "p", 0, "listen port (default: server.port)")
	f.StringVar(&opts.corpus, "corpus", "", "corpus served by /api/v1/search (default: search.corpus_path)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if opts.corpus != "" {
		cfg.Search.CorpusPath = opts.corpus
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := httpserver.NewApp(ctx, cfg, cliCtx.Engine, cliCtx.Logger, Version)
	if err != nil {
		return err
	}
	defer app.Close()

	cliCtx.Logger.Info("starting chemhammer api server",
		logging.String("version", Version),
		logging.String("addr", cfg.Server.Addr()),
	)
	return app.Run(ctx)
}
