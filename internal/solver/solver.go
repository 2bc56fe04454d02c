package solver

import "github.com/raphaelgruber/chainburst/internal/chain"

// Result is the outcome of one solve.
type Result struct {
	// Energy is the maximum total interaction energy, energy(0, n+1).
	Energy uint64
	// Order lists every position 1..n exactly once, in removal order.
	Order []int
}

// Solve fills fresh tables for c and reconstructs one optimal removal order.
// Tables are owned by the call; Solve is safe to run concurrently on
// different or identical chains.
func Solve(c chain.Chain, tb TieBreak) Result {
	t := Fill(c, tb)
	return Result{
		Energy: t.Total(),
		Order:  Reconstruct(t),
	}
}
