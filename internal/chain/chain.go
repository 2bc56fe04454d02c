package chain

import "fmt"

// SentinelPotential is the fixed potential of both boundary items.
const SentinelPotential uint64 = 1

// Item is one element of a chain.
type Item struct {
	Potential uint64
	Class     Class
}

// Chain is an ordered sequence of n removable items bounded by two sentinels.
// Positions run 0..n+1; positions 0 and n+1 are the sentinels.
type Chain struct {
	items []Item
}

// ParseChain validates a raw chain description and inserts the sentinels.
// It fails with ErrInvalidInput when n is negative, when the potential or
// class counts disagree with n, when a potential is negative, or when a class
// letter is not one of P, N, A, B.
func ParseChain(n int, potentials []int64, classLetters string) (Chain, error) {
	if n < 0 {
		return Chain{}, fmt.Errorf("%w: negative item count %d", ErrInvalidInput, n)
	}
	if len(potentials) != n {
		return Chain{}, fmt.Errorf("%w: expected %d potentials, got %d", ErrInvalidInput, n, len(potentials))
	}
	if len(classLetters) != n {
		return Chain{}, fmt.Errorf("%w: expected %d class letters, got %d", ErrInvalidInput, n, len(classLetters))
	}

	items := make([]Item, n+2)
	items[0] = Item{Potential: SentinelPotential, Class: ClassTerminal}
	items[n+1] = Item{Potential: SentinelPotential, Class: ClassTerminal}

	for idx, p := range potentials {
		if p < 0 {
			return Chain{}, fmt.Errorf("%w: negative potential %d at position %d", ErrInvalidInput, p, idx+1)
		}
		class, err := ParseClass(classLetters[idx])
		if err != nil {
			return Chain{}, fmt.Errorf("position %d: %w", idx+1, err)
		}
		items[idx+1] = Item{Potential: uint64(p), Class: class}
	}

	return Chain{items: items}, nil
}

// N returns the number of removable items.
func (c Chain) N() int {
	if len(c.items) == 0 {
		return 0
	}
	return len(c.items) - 2
}

// Len returns the full chain length including both sentinels.
func (c Chain) Len() int {
	return c.N() + 2
}

// At returns the item at position i, sentinels included.
func (c Chain) At(i int) Item {
	if len(c.items) == 0 {
		// The zero Chain behaves as an empty chain with two sentinels.
		return Item{Potential: SentinelPotential, Class: ClassTerminal}
	}
	return c.items[i]
}

// Payoff is the energy gained by removing item k while its live neighbors
// are i on the left and j on the right.
func (c Chain) Payoff(i, k, j int) uint64 {
	left, mid, right := c.At(i), c.At(k), c.At(j)
	return mid.Potential * (left.Potential*Affinity(left.Class, mid.Class) + Affinity(mid.Class, right.Class)*right.Potential)
}

// Potentials returns a copy of the interior potentials in position order.
func (c Chain) Potentials() []uint64 {
	out := make([]uint64, c.N())
	for i := range out {
		out[i] = c.items[i+1].Potential
	}
	return out
}

// Classes returns the interior class letters in position order.
func (c Chain) Classes() string {
	out := make([]byte, c.N())
	for i := range out {
		out[i] = c.items[i+1].Class.Letter()
	}
	return string(out)
}
