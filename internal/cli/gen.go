package cli

import (
	"github.com/raphaelgruber/chainburst/internal/generate"
	"github.com/spf13/cobra"
)

var (
	genN    int
	genPMax int64
	genSeed uint64
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random chain in the text input format",
	Long: `Generate a random chain with potentials uniform in [1, pmax] and classes
uniform over P, N, A and B. The same seed always yields the same chain.

Examples:
  chainburst gen --n 100 --pmax 1000 --seed 123
  chainburst gen --n 500 | chainburst solve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := generate.Chain(generate.Params{N: genN, MaxPotential: genPMax, Seed: genSeed})
		if err != nil {
			return err
		}
		return generate.Write(cmd.OutOrStdout(), c)
	},
}

func init() {
	genCmd.Flags().IntVar(&genN, "n", 100, "number of items")
	genCmd.Flags().Int64Var(&genPMax, "pmax", generate.DefaultMaxPotential, "maximum potential")
	genCmd.Flags().Uint64Var(&genSeed, "seed", 123, "random seed")
}
