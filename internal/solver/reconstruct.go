package solver

// frame is one pending interval on the reconstruction stack. expanded is set
// once both sub-intervals have been scheduled, so the next visit emits k.
type frame struct {
	i, j     int
	expanded bool
}

// Reconstruct walks the choice table from (0, n+1) and returns the removal
// order as 1-based positions. For each interval it emits the order for
// (i, k), then for (k, j), then k itself, since k is removed last within
// (i, j). The walk uses an explicit stack instead of recursion.
func Reconstruct(t *Tables) []int {
	n := t.size - 2
	if n <= 0 {
		return []int{}
	}

	order := make([]int, 0, n)
	stack := make([]frame, 0, 2*n+1)
	stack = append(stack, frame{i: 0, j: t.size - 1})

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.j-f.i <= 1 {
			continue
		}
		k := t.Choice(f.i, f.j)
		if f.expanded {
			order = append(order, k)
			continue
		}

		// LIFO: (i,k) runs first, then (k,j), then the emission of k.
		stack = append(stack,
			frame{i: f.i, j: f.j, expanded: true},
			frame{i: k, j: f.j},
			frame{i: f.i, j: k},
		)
	}

	return order
}
