// Package generate produces reproducible random chains for benchmarks and
// tests.
package generate

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/raphaelgruber/chainburst/internal/chain"
)

// DefaultMaxPotential matches the potential bound used by the benchmark runs.
const DefaultMaxPotential = 1000

var interiorLetters = []byte{'P', 'N', 'A', 'B'}

// Params controls chain generation.
type Params struct {
	N            int
	MaxPotential int64
	Seed         uint64
}

// Chain builds a chain of p.N items with potentials uniform in
// [1, p.MaxPotential] and classes uniform over P, N, A, B.
// The same params always yield the same chain.
func Chain(p Params) (chain.Chain, error) {
	if p.N < 0 {
		return chain.Chain{}, fmt.Errorf("%w: negative item count %d", chain.ErrInvalidInput, p.N)
	}
	if p.MaxPotential < 1 {
		return chain.Chain{}, fmt.Errorf("%w: max potential must be at least 1, got %d", chain.ErrInvalidInput, p.MaxPotential)
	}

	rng := rand.New(rand.NewPCG(p.Seed, 1024))

	potentials := make([]int64, p.N)
	letters := make([]byte, p.N)
	for i := range p.N {
		potentials[i] = 1 + rng.Int64N(p.MaxPotential)
		letters[i] = interiorLetters[rng.IntN(len(interiorLetters))]
	}

	return chain.ParseChain(p.N, potentials, string(letters))
}

// Write emits c in the text input format: the item count, the potentials on
// one line, then the class letters.
func Write(w io.Writer, c chain.Chain) error {
	bw := bufio.NewWriter(w)

	buf := strconv.AppendInt(nil, int64(c.N()), 10)
	buf = append(buf, '\n')
	for i, p := range c.Potentials() {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendUint(buf, p, 10)
	}
	buf = append(buf, '\n')
	buf = append(buf, c.Classes()...)
	buf = append(buf, '\n')

	if _, err := bw.Write(buf); err != nil {
		return fmt.Errorf("write chain: %w", err)
	}
	return bw.Flush()
}
