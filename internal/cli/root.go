// Package cli provides the command-line interface for chainburst.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/chainburst/internal/config"
	"github.com/raphaelgruber/chainburst/internal/history"
	"github.com/raphaelgruber/chainburst/internal/metrics"
	"github.com/raphaelgruber/chainburst/internal/service"
	"github.com/raphaelgruber/chainburst/internal/solver"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and logger
	cfg       config.Config
	logger    *slog.Logger
	closeLogs func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chainburst",
	Short: "Maximum-energy removal order for reactive chains",
	Long: `Chainburst computes the maximum total interaction energy obtainable by
removing every item of a chain one at a time, and an order that achieves it.

Each item has a potential and a class (P, N, A or B). Removing an item earns
energy from its current neighbors, weighted by a fixed class affinity table.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLogs = config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogs != nil {
			if err := closeLogs(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
			closeLogs = nil
		}
	},
}

// serviceDeps bundles what a command needs to run solves.
type serviceDeps struct {
	svc       *service.SolveService
	store     history.Store
	collector *metrics.Collector
}

// Close releases the history backend.
func (d serviceDeps) Close() {
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		logger.Warn("failed to close history", "error", err)
	}
}

// historyMode controls how newServiceDeps treats the history backend.
type historyMode int

const (
	historyOff historyMode = iota
	// historyOptional falls back to running without history when the
	// backend cannot be opened.
	historyOptional
	historyRequired
)

// newServiceDeps builds a solve service. tieBreak overrides the configured
// policy when non-empty.
func newServiceDeps(ctx context.Context, tieBreak string, mode historyMode) (serviceDeps, error) {
	if tieBreak == "" {
		tieBreak = cfg.TieBreak
	}
	tb, err := solver.ParseTieBreak(tieBreak)
	if err != nil {
		return serviceDeps{}, err
	}

	var store history.Store
	if mode != historyOff {
		store, err = history.Open(ctx, cfg, logger)
		if err != nil {
			if mode == historyRequired {
				return serviceDeps{}, err
			}
			logger.Warn("history unavailable, runs will not be saved", "backend", cfg.History, "error", err)
			store = nil
		}
	}

	collector := metrics.NewCollector()
	svc := service.NewSolveService(service.Options{
		TieBreak: tb,
		MaxItems: cfg.MaxItems,
		Verify:   true,
	}, store, collector, logger)

	return serviceDeps{svc: svc, store: store, collector: collector}, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}
