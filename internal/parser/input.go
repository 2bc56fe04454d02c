// Package parser reads chain descriptions and writes solve results in the
// plain-text exchange format, and loads YAML chain fixtures.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/raphaelgruber/chainburst/internal/chain"
)

// maxTokenSize bounds a single whitespace-separated token; the class string
// is one token of n letters.
const maxTokenSize = 16 << 20

// ReadChain parses the text input format: the item count n, then n
// potentials, then one string of n class letters. The class string may be
// omitted when n is 0. Trailing tokens are rejected.
func ReadChain(r io.Reader) (chain.Chain, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	sc.Split(bufio.ScanWords)

	next := func() (string, bool, error) {
		if sc.Scan() {
			return sc.Text(), true, nil
		}
		return "", false, sc.Err()
	}

	tok, ok, err := next()
	if err != nil {
		return chain.Chain{}, fmt.Errorf("read item count: %w", err)
	}
	if !ok {
		return chain.Chain{}, fmt.Errorf("%w: empty input", chain.ErrInvalidInput)
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return chain.Chain{}, fmt.Errorf("%w: item count %q is not an integer", chain.ErrInvalidInput, tok)
	}
	if n < 0 {
		return chain.ParseChain(n, nil, "")
	}

	potentials := make([]int64, 0, min(n, 1<<16))
	for i := 0; i < n; i++ {
		tok, ok, err := next()
		if err != nil {
			return chain.Chain{}, fmt.Errorf("read potentials: %w", err)
		}
		if !ok {
			return chain.Chain{}, fmt.Errorf("%w: expected %d potentials, got %d", chain.ErrInvalidInput, n, i)
		}
		p, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return chain.Chain{}, fmt.Errorf("%w: potential %q at position %d is not an integer", chain.ErrInvalidInput, tok, i+1)
		}
		potentials = append(potentials, p)
	}

	classes, ok, err := next()
	if err != nil {
		return chain.Chain{}, fmt.Errorf("read classes: %w", err)
	}
	if !ok && n > 0 {
		return chain.Chain{}, fmt.Errorf("%w: missing class string", chain.ErrInvalidInput)
	}

	if _, extra, err := next(); err != nil {
		return chain.Chain{}, fmt.Errorf("read trailing input: %w", err)
	} else if extra {
		return chain.Chain{}, fmt.Errorf("%w: unexpected trailing input", chain.ErrInvalidInput)
	}

	return chain.ParseChain(n, potentials, classes)
}

// IsInputError reports whether err describes bad input rather than an I/O
// failure.
func IsInputError(err error) bool {
	return errors.Is(err, chain.ErrInvalidInput)
}
