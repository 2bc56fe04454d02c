package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/chainburst/internal/parser"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or inspect saved runs",
	Long: `List saved solve runs or show a single run by ID.

Subcommands:
  list  List recent runs (default)
  show  Show one run with its removal order

Examples:
  chainburst history
  chainburst history list --limit 5
  chainburst history show 3f2c9a10-...`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max results")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max results")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	deps, err := newServiceDeps(ctx, "", historyRequired)
	if err != nil {
		return err
	}
	defer deps.Close()

	runs, err := deps.svc.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found")
		return nil
	}

	fmt.Fprintf(out, "%-36s %-20s %-6s %-6s %s\n", "ID", "CREATED", "N", "TIE", "ENERGY")
	fmt.Fprintln(out, "--------------------------------------------------------------------------------")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s %-20s %-6d %-6s %d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.N, r.TieBreak, r.Energy)
	}

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	deps, err := newServiceDeps(ctx, "", historyRequired)
	if err != nil {
		return err
	}
	defer deps.Close()

	run, err := deps.svc.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get run %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run: %s\n", run.ID)
	fmt.Fprintf(out, "  Created: %s\n", run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "  Items: %d\n", run.N)
	fmt.Fprintf(out, "  Classes: %s\n", run.Classes)
	fmt.Fprintf(out, "  Tie-break: %s\n", run.TieBreak)
	fmt.Fprintf(out, "  Duration: %s\n", run.Duration)
	if verbose {
		fmt.Fprintf(out, "  Potentials: %v\n", run.Potentials)
	}
	fmt.Fprintln(out)

	return parser.WriteResult(out, run.Energy, run.Order)
}
