package chain

import "errors"

// ErrInvalidInput indicates a malformed or inconsistent chain description.
// Use errors.Is() to check for it; the wrapped message names the problem.
var ErrInvalidInput = errors.New("invalid input")
