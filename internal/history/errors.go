package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for history operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound indicates the requested run does not exist.
	ErrNotFound = errors.New("run not found")

	// ErrDuplicateRun indicates a run with the same ID was already saved.
	ErrDuplicateRun = errors.New("run already exists")
)

// wrapSurrealError wraps a SurrealDB query error with the matching sentinel.
// Other errors are returned unchanged.
func wrapSurrealError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) && strings.Contains(queryErr.Message, "already exists") {
		return fmt.Errorf("%w: %s", ErrDuplicateRun, queryErr.Message)
	}
	return err
}

// wrapSQLiteError wraps a primary key violation with ErrDuplicateRun.
func wrapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicateRun, err)
	}
	return err
}
