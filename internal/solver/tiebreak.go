package solver

import (
	"fmt"
	"strings"
)

// TieBreak selects which split point is recorded when several reach the same
// maximum energy. One policy applies to every cell of a solve.
type TieBreak int

const (
	// TieBreakLast records the largest maximizing split point.
	TieBreakLast TieBreak = iota
	// TieBreakFirst records the smallest maximizing split point.
	TieBreakFirst
)

// ParseTieBreak parses "last" or "first" (case-insensitive). Empty means last.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return TieBreakLast, nil
	case "first":
		return TieBreakFirst, nil
	default:
		return 0, fmt.Errorf("unknown tie-break policy %q (want first or last)", s)
	}
}

func (t TieBreak) String() string {
	if t == TieBreakFirst {
		return "first"
	}
	return "last"
}

// prefers reports whether candidate energy e replaces the current best.
func (t TieBreak) prefers(e, best uint64) bool {
	if t == TieBreakLast {
		return e >= best
	}
	return e > best
}
