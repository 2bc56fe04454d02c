package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/chainburst/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort      string
	serveNoHistory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the solve API over HTTP",
	Long: `Start the HTTP server.

Endpoints:
  POST /solve      solve a chain given as JSON
  GET  /runs/{id}  fetch a saved run
  GET  /runs       list recent runs
  GET  /ws         WebSocket: one solve per message
  GET  /stats      runtime statistics
  GET  /metrics    Prometheus metrics
  GET  /health     liveness check

Examples:
  chainburst serve
  chainburst serve --port 9090 --no-history`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from CHAINBURST_PORT)")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "do not persist runs")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mode := historyRequired
	if serveNoHistory {
		mode = historyOff
	}
	deps, err := newServiceDeps(ctx, "", mode)
	if err != nil {
		return err
	}
	defer deps.Close()

	port := servePort
	if port == "" {
		port = cfg.Port
	}

	logger.Info("starting chainburst server",
		"port", port,
		"history", cfg.History,
		"history_enabled", deps.svc.HistoryEnabled(),
		"max_items", cfg.MaxItems,
	)

	srv := server.New(deps.svc, deps.collector, logger)
	return srv.Run(ctx, ":"+port)
}
