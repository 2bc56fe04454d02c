// Package history persists solve runs so results can be listed and
// retrieved later.
package history

import (
	"context"
	"time"
)

// Run is one persisted solve.
type Run struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	N          int           `json:"n"`
	Potentials []uint64      `json:"potentials"`
	Classes    string        `json:"classes"`
	TieBreak   string        `json:"tie_break"`
	Energy     uint64        `json:"energy"`
	Order      []int         `json:"order"`
	Duration   time.Duration `json:"duration_ns"`
}

// Store persists runs. Implementations are safe for concurrent use.
type Store interface {
	// Save persists a run. Saving an existing ID fails with ErrDuplicateRun.
	Save(ctx context.Context, run Run) error
	// Get returns the run with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (Run, error)
	// List returns up to limit runs, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Run, error)
	// Close releases the backend.
	Close() error
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
