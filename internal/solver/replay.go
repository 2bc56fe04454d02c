package solver

import (
	"errors"
	"fmt"

	"github.com/raphaelgruber/chainburst/internal/chain"
)

// ErrInvalidOrder indicates a removal order that is not a permutation of 1..n.
var ErrInvalidOrder = errors.New("invalid removal order")

// Replay removes the items of c in the given order, tracking live neighbors,
// and returns the summed payoff.
func Replay(c chain.Chain, order []int) (uint64, error) {
	n := c.N()
	if len(order) != n {
		return 0, fmt.Errorf("%w: length %d, want %d", ErrInvalidOrder, len(order), n)
	}

	prev := make([]int, n+2)
	next := make([]int, n+2)
	for p := range prev {
		prev[p] = p - 1
		next[p] = p + 1
	}
	removed := make([]bool, n+2)

	var total uint64
	for step, k := range order {
		if k < 1 || k > n {
			return 0, fmt.Errorf("%w: position %d out of range at step %d", ErrInvalidOrder, k, step+1)
		}
		if removed[k] {
			return 0, fmt.Errorf("%w: position %d repeated at step %d", ErrInvalidOrder, k, step+1)
		}

		i, j := prev[k], next[k]
		total += c.Payoff(i, k, j)

		next[i] = j
		prev[j] = i
		removed[k] = true
	}

	return total, nil
}
