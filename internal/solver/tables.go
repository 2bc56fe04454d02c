package solver

// noChoice marks cells with no interior item (j-i <= 1).
const noChoice = -1

// Tables holds the energy and choice tables for one chain, indexed by
// boundary positions (i, j) over the full (n+2)x(n+2) grid. Both are stored
// row-major in flat slices. Only cells with i < j are ever written.
type Tables struct {
	size   int
	energy []uint64
	choice []int32
}

func newTables(size int) *Tables {
	t := &Tables{
		size:   size,
		energy: make([]uint64, size*size),
		choice: make([]int32, size*size),
	}
	for idx := range t.choice {
		t.choice[idx] = noChoice
	}
	return t
}

// Size returns the chain length n+2 the tables were built for.
func (t *Tables) Size() int {
	return t.size
}

// Energy returns the maximum energy obtainable by clearing every item
// strictly between i and j.
func (t *Tables) Energy(i, j int) uint64 {
	return t.energy[i*t.size+j]
}

// Choice returns the item removed last within (i, j), or -1 when the
// interval has no interior item.
func (t *Tables) Choice(i, j int) int {
	return int(t.choice[i*t.size+j])
}

// Total returns the global optimum energy(0, n+1).
func (t *Tables) Total() uint64 {
	return t.Energy(0, t.size-1)
}
