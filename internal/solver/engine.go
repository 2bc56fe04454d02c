// Package solver computes the maximum total interaction energy of removing
// every interior item of a chain and reconstructs one optimal removal order.
package solver

import "github.com/raphaelgruber/chainburst/internal/chain"

// Fill runs the bottom-up interval DP over c.
//
// Cells are filled in increasing width so every transition reads only
// narrower, already final cells. Widths 0 and 1 keep energy 0 and no choice.
// Every payoff is non-negative, so the first candidate of a cell seeds its
// running maximum and later candidates replace it according to tb.
//
// Energies are unchecked 64-bit sums: callers must keep potentials small
// enough that energy(0, n+1) fits in a uint64.
func Fill(c chain.Chain, tb TieBreak) *Tables {
	size := c.Len()
	t := newTables(size)

	for width := 2; width < size; width++ {
		for i := 0; i+width < size; i++ {
			j := i + width

			bestK := i + 1
			best := t.energy[i*size+bestK] + t.energy[bestK*size+j] + c.Payoff(i, bestK, j)

			for k := i + 2; k < j; k++ {
				e := t.energy[i*size+k] + t.energy[k*size+j] + c.Payoff(i, k, j)
				if tb.prefers(e, best) {
					best, bestK = e, k
				}
			}

			t.energy[i*size+j] = best
			t.choice[i*size+j] = int32(bestK)
		}
	}

	return t
}
