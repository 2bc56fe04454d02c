package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/raphaelgruber/chainburst/internal/bench"
	"github.com/raphaelgruber/chainburst/internal/generate"
	"github.com/raphaelgruber/chainburst/internal/solver"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	benchSizes    []int
	benchTrials   int
	benchPMax     int64
	benchSeed     uint64
	benchLaTeX    bool
	benchTieBreak string
	benchPlain    bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure solve time across chain sizes",
	Long: `Generate one chain per size and time several solves of it, reporting
the mean and population standard deviation next to N^3.

Examples:
  chainburst bench
  chainburst bench --sizes 100,200,400 --trials 3
  chainburst bench --latex > table.tex`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", bench.DefaultSizes(), "chain sizes to benchmark")
	benchCmd.Flags().IntVar(&benchTrials, "trials", bench.DefaultTrials, "solves per size")
	benchCmd.Flags().Int64Var(&benchPMax, "pmax", generate.DefaultMaxPotential, "maximum potential")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", bench.DefaultSeed, "random seed")
	benchCmd.Flags().BoolVar(&benchLaTeX, "latex", false, "also print a LaTeX table")
	benchCmd.Flags().StringVar(&benchTieBreak, "tie-break", "", "tie-break policy: last or first")
	benchCmd.Flags().BoolVar(&benchPlain, "plain", false, "disable the interactive progress bar")
}

func runBench(cmd *cobra.Command, args []string) error {
	tieBreak := benchTieBreak
	if tieBreak == "" {
		tieBreak = cfg.TieBreak
	}
	tb, err := solver.ParseTieBreak(tieBreak)
	if err != nil {
		return err
	}

	benchCfg := bench.Config{
		Sizes:        benchSizes,
		Trials:       benchTrials,
		MaxPotential: benchPMax,
		Seed:         benchSeed,
		TieBreak:     tb,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var results []bench.Result
	if !benchPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		results, err = RunBenchProgress(ctx, benchCfg)
	} else {
		errOut := cmd.ErrOrStderr()
		results, err = bench.Run(ctx, benchCfg, func(r bench.Result) {
			fmt.Fprintf(errOut, "n=%d mean=%.4fs stddev=%.6fs\n", r.N, r.Mean.Seconds(), r.StdDev.Seconds())
		})
	}
	if err != nil && len(results) == 0 {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bench.FormatTable(results))
	if benchLaTeX {
		fmt.Fprintln(out)
		fmt.Fprint(out, bench.FormatLaTeX(results, benchTrials))
	}
	return err
}
