package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/raphaelgruber/chainburst/internal/client"
	"github.com/raphaelgruber/chainburst/internal/parser"
	"github.com/raphaelgruber/chainburst/internal/service"
	"github.com/raphaelgruber/chainburst/internal/solver"
	"github.com/spf13/cobra"
)

var (
	solveTieBreak  string
	solveFixture   string
	solveNoHistory bool
	solveRemote    string
)

var solveCmd = &cobra.Command{
	Use:   "solve [file]",
	Short: "Solve a chain read from a file or stdin",
	Long: `Solve a chain in the text input format and print the maximum energy
followed by the removal order.

Input: the item count n, then n potentials, then a string of n class letters.

Examples:
  chainburst solve < input.txt
  chainburst solve input.txt --tie-break first
  chainburst solve --fixture internal/parser/testdata/golden.yaml
  chainburst solve --remote http://localhost:8080 < input.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveTieBreak, "tie-break", "", "tie-break policy: last or first (default from CHAINBURST_TIE_BREAK)")
	solveCmd.Flags().StringVar(&solveFixture, "fixture", "", "solve every case in a YAML fixture file and check expectations")
	solveCmd.Flags().BoolVar(&solveNoHistory, "no-history", false, "do not persist the run")
	solveCmd.Flags().StringVar(&solveRemote, "remote", "", "solve on a chainburst server at this URL instead of locally")
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if solveFixture != "" {
		return runFixtures(ctx, cmd.OutOrStdout(), solveFixture)
	}

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	if solveRemote != "" {
		return runRemoteSolve(ctx, cmd.OutOrStdout(), in)
	}

	mode := historyOptional
	if solveNoHistory {
		mode = historyOff
	}
	deps, err := newServiceDeps(ctx, solveTieBreak, mode)
	if err != nil {
		return err
	}
	defer deps.Close()

	run, err := deps.svc.SolveReader(ctx, in)
	if err != nil && !errors.Is(err, service.ErrPersist) {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	if err := parser.WriteResult(cmd.OutOrStdout(), run.Energy, run.Order); err != nil {
		return err
	}
	if run.ID != "" {
		logger.Info("run saved", "run_id", run.ID)
	}
	return nil
}

// runRemoteSolve parses the chain locally and solves it on a server.
func runRemoteSolve(ctx context.Context, out io.Writer, in io.Reader) error {
	c, err := parser.ReadChain(in)
	if err != nil {
		return err
	}

	potentials := make([]int64, c.N())
	for i, p := range c.Potentials() {
		potentials[i] = int64(p)
	}

	res, err := client.New(solveRemote).Solve(ctx, client.SolveRequest{
		Potentials: potentials,
		Classes:    c.Classes(),
		TieBreak:   solveTieBreak,
	})
	if err != nil {
		return fmt.Errorf("remote solve: %w", err)
	}
	if res.ID != "" {
		logger.Info("remote run saved", "run_id", res.ID)
	}
	return parser.WriteResult(out, res.Energy, res.Order)
}

// runFixtures solves every fixture in path and reports PASS or FAIL per case.
func runFixtures(ctx context.Context, out io.Writer, path string) error {
	fixtures, err := parser.LoadFixtures(path)
	if err != nil {
		return err
	}

	deps, err := newServiceDeps(ctx, solveTieBreak, historyOff)
	if err != nil {
		return err
	}

	failed := 0
	for _, f := range fixtures {
		c, err := f.Chain()
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", f.Name, err)
			failed++
			continue
		}

		tieBreak := solveTieBreak
		if f.TieBreak != "" {
			tieBreak = f.TieBreak
		}
		if tieBreak == "" {
			tieBreak = cfg.TieBreak
		}
		tb, err := solver.ParseTieBreak(tieBreak)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", f.Name, err)
			failed++
			continue
		}

		run, err := deps.svc.SolveWith(ctx, c, tb)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", f.Name, err)
			failed++
			continue
		}

		switch {
		case !f.HasExpectation():
			fmt.Fprintf(out, "SOLVED %s: energy=%d order=%s\n", f.Name, run.Energy, parser.FormatOrder(run.Order))
		case *f.Energy != run.Energy:
			fmt.Fprintf(out, "FAIL %s: energy %d, want %d\n", f.Name, run.Energy, *f.Energy)
			failed++
		case f.Order != nil && !slices.Equal(f.Order, run.Order):
			fmt.Fprintf(out, "FAIL %s: order %s, want %s\n", f.Name, parser.FormatOrder(run.Order), parser.FormatOrder(f.Order))
			failed++
		default:
			fmt.Fprintf(out, "PASS %s\n", f.Name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed", failed, len(fixtures))
	}
	return nil
}
