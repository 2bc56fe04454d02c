// Package service provides the solve workflow shared by the CLI and the
// HTTP surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/chainburst/internal/chain"
	"github.com/raphaelgruber/chainburst/internal/history"
	"github.com/raphaelgruber/chainburst/internal/metrics"
	"github.com/raphaelgruber/chainburst/internal/parser"
	"github.com/raphaelgruber/chainburst/internal/solver"
)

var (
	// ErrHistoryDisabled is returned by run lookups when no store is configured.
	ErrHistoryDisabled = errors.New("run history is disabled")

	// ErrVerification indicates the replayed order disagreed with the table
	// optimum. It signals a defect, never bad input.
	ErrVerification = errors.New("removal order does not reproduce the optimum")

	// ErrPersist wraps history failures. The run returned alongside it is
	// complete but has not been saved.
	ErrPersist = errors.New("persist run")
)

// Options configures a SolveService.
type Options struct {
	// TieBreak is applied when a request does not name one.
	TieBreak solver.TieBreak
	// MaxItems rejects larger chains; 0 means unlimited.
	MaxItems int
	// Verify replays every order and compares it with the optimum.
	Verify bool
}

// Request is a raw solve request from an outer surface.
type Request struct {
	Potentials []int64 `json:"potentials"`
	Classes    string  `json:"classes"`
	TieBreak   string  `json:"tie_break,omitempty"`
}

// SolveService runs solves and records their metrics and history.
type SolveService struct {
	opts    Options
	store   history.Store
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// NewSolveService creates a solve service. store and collector may be nil.
func NewSolveService(opts Options, store history.Store, collector *metrics.Collector, logger *slog.Logger) *SolveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SolveService{
		opts:    opts,
		store:   store,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
}

// HistoryEnabled reports whether runs are persisted.
func (s *SolveService) HistoryEnabled() bool {
	return s.store != nil
}

// Solve solves c with the default tie-break policy.
func (s *SolveService) Solve(ctx context.Context, c chain.Chain) (history.Run, error) {
	return s.SolveWith(ctx, c, s.opts.TieBreak)
}

// SolveReader parses a chain in the text input format and solves it.
func (s *SolveService) SolveReader(ctx context.Context, r io.Reader) (history.Run, error) {
	start := time.Now()
	c, err := parser.ReadChain(r)
	if err != nil {
		s.recordFailure(metrics.OpParse, time.Since(start))
		return history.Run{}, err
	}
	s.recordTiming(metrics.OpParse, time.Since(start))
	return s.Solve(ctx, c)
}

// SolveRequest validates a raw request and solves it.
func (s *SolveService) SolveRequest(ctx context.Context, req Request) (history.Run, error) {
	tb := s.opts.TieBreak
	if req.TieBreak != "" {
		parsed, err := solver.ParseTieBreak(req.TieBreak)
		if err != nil {
			return history.Run{}, fmt.Errorf("%w: %v", chain.ErrInvalidInput, err)
		}
		tb = parsed
	}

	start := time.Now()
	c, err := chain.ParseChain(len(req.Potentials), req.Potentials, req.Classes)
	if err != nil {
		s.recordFailure(metrics.OpParse, time.Since(start))
		return history.Run{}, err
	}
	s.recordTiming(metrics.OpParse, time.Since(start))

	return s.SolveWith(ctx, c, tb)
}

// SolveWith solves c with an explicit tie-break policy and persists the run
// when history is enabled. A persistence failure is returned together with
// the completed run.
func (s *SolveService) SolveWith(ctx context.Context, c chain.Chain, tb solver.TieBreak) (history.Run, error) {
	if err := ctx.Err(); err != nil {
		return history.Run{}, err
	}
	if s.opts.MaxItems > 0 && c.N() > s.opts.MaxItems {
		s.recordFailure(metrics.OpSolve, 0)
		return history.Run{}, fmt.Errorf("%w: chain has %d items, limit is %d", chain.ErrInvalidInput, c.N(), s.opts.MaxItems)
	}

	start := time.Now()
	res := solver.Solve(c, tb)
	elapsed := time.Since(start)

	if s.opts.Verify {
		replayed, err := solver.Replay(c, res.Order)
		if err != nil || replayed != res.Energy {
			s.recordError(metrics.OpSolve, elapsed)
			s.logger.Error("solve verification failed",
				"n", c.N(), "energy", res.Energy, "replayed", replayed, "error", err)
			return history.Run{}, fmt.Errorf("%w: table %d, replay %d", ErrVerification, res.Energy, replayed)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordSolve(c.N(), elapsed)
	}
	s.logger.Debug("chain solved",
		"n", c.N(),
		"energy", res.Energy,
		"tie_break", tb.String(),
		"duration_ms", elapsed.Milliseconds(),
	)

	run := history.Run{
		CreatedAt:  s.now().UTC(),
		N:          c.N(),
		Potentials: c.Potentials(),
		Classes:    c.Classes(),
		TieBreak:   tb.String(),
		Energy:     res.Energy,
		Order:      res.Order,
		Duration:   elapsed,
	}

	if s.store == nil {
		return run, nil
	}

	run.ID = uuid.New().String()
	persistStart := time.Now()
	if err := s.store.Save(ctx, run); err != nil {
		s.recordFailure(metrics.OpPersist, time.Since(persistStart))
		s.logger.Warn("failed to persist run", "run_id", run.ID, "error", err)
		return run, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.recordTiming(metrics.OpPersist, time.Since(persistStart))

	return run, nil
}

// GetRun returns a persisted run.
func (s *SolveService) GetRun(ctx context.Context, id string) (history.Run, error) {
	if s.store == nil {
		return history.Run{}, ErrHistoryDisabled
	}
	return s.store.Get(ctx, id)
}

// ListRuns returns up to limit persisted runs, newest first.
func (s *SolveService) ListRuns(ctx context.Context, limit int) ([]history.Run, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.List(ctx, limit)
}

// Stats returns the collector snapshot, or the zero snapshot without one.
func (s *SolveService) Stats() metrics.Snapshot {
	if s.metrics == nil {
		return metrics.Snapshot{}
	}
	return s.metrics.Snapshot()
}

func (s *SolveService) recordTiming(op string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordTiming(op, d)
	}
}

func (s *SolveService) recordFailure(op string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordFailure(op, d)
	}
}

func (s *SolveService) recordError(op string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordError(op, d)
	}
}
