// Package main serves the solve handler through the Cloud Functions
// framework.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/raphaelgruber/chainburst/internal/config"
	"github.com/raphaelgruber/chainburst/internal/history"
	"github.com/raphaelgruber/chainburst/internal/metrics"
	"github.com/raphaelgruber/chainburst/internal/server"
	"github.com/raphaelgruber/chainburst/internal/service"
	"github.com/raphaelgruber/chainburst/internal/solver"
)

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

// withCORS answers preflight requests and decorates every response. The
// result stays an unnamed func type, which is what the framework accepts.
func withCORS(next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// openFunc opens the history backend named by the config.
type openFunc func(ctx context.Context, cfg config.Config, logger *slog.Logger) (history.Store, error)

func main() {
	cfg := config.Load()
	// Instances are ephemeral: persist only when a backend is named explicitly.
	if os.Getenv("CHAINBURST_HISTORY") == "" {
		cfg.History = config.HistoryNone
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger, history.Open); err != nil {
		logger.Error("function stopped", "error", err)
		os.Exit(1)
	}
}

// run serves the solve function until the framework stops. The history
// store is closed before run returns.
func run(cfg config.Config, logger *slog.Logger, open openFunc) error {
	tb, err := solver.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return fmt.Errorf("invalid tie-break policy: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := open(ctx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close history", "error", err)
			}
		}()
	}

	collector := metrics.NewCollector()
	svc := service.NewSolveService(service.Options{
		TieBreak: tb,
		MaxItems: cfg.MaxItems,
		Verify:   true,
	}, store, collector, logger)
	srv := server.New(svc, collector, logger)

	funcframework.RegisterHTTPFunction("/solve", withCORS(srv.SolveHandler))

	port := cfg.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	hostname := ""
	if localOnly := os.Getenv("LOCAL_ONLY"); localOnly == "true" {
		hostname = "127.0.0.1"
	}
	if err := funcframework.StartHostPort(hostname, port); err != nil {
		return fmt.Errorf("functions framework: %w", err)
	}
	return nil
}
