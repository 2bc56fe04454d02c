// Package metrics provides in-memory runtime statistics collection and a
// Prometheus registry for solve operations.
package metrics

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Failures    int64   `json:"failures"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot represents the full statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	ItemsSolved   int64              `json:"items_solved"`
	Parse         *OperationSnapshot `json:"parse,omitempty"`
	Solve         *OperationSnapshot `json:"solve,omitempty"`
	Persist       *OperationSnapshot `json:"persist,omitempty"`
}

// Operation names for the collector.
const (
	OpParse   = "parse"
	OpSolve   = "solve"
	OpPersist = "persist"
)

// Collector aggregates in-memory runtime statistics and mirrors solve
// results into a private Prometheus registry.
// All methods are thread-safe.
type Collector struct {
	mu          sync.RWMutex
	startTime   time.Time
	ops         map[string]*OperationMetrics
	itemsSolved int64

	registry      *prometheus.Registry
	solvesTotal   *prometheus.CounterVec
	solveDuration prometheus.Histogram
	chainItems    prometheus.Histogram
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
		registry:  reg,
		solvesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainburst_solves_total",
			Help: "Total number of solve requests by result.",
		}, []string{"result"}),
		solveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainburst_solve_duration_seconds",
			Help:    "Wall time of the interval DP and reconstruction.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		chainItems: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainburst_chain_items",
			Help:    "Number of removable items per solved chain.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.record(op, duration, false)
}

// RecordFailure records a failed operation with its timing.
func (c *Collector) RecordFailure(op string, duration time.Duration) {
	c.record(op, duration, true)
	if op == OpSolve || op == OpParse {
		c.solvesTotal.WithLabelValues("invalid").Inc()
	}
}

// RecordError records an internal failure of an operation. Unlike
// RecordFailure it is not attributed to the caller's input.
func (c *Collector) RecordError(op string, duration time.Duration) {
	c.record(op, duration, true)
	if op == OpSolve {
		c.solvesTotal.WithLabelValues("error").Inc()
	}
}

func (c *Collector) record(op string, duration time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	if failed {
		m.Failures++
	}
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordSolve records a successful solve of a chain with n items.
func (c *Collector) RecordSolve(n int, duration time.Duration) {
	c.record(OpSolve, duration, false)

	c.mu.Lock()
	c.itemsSolved += int64(n)
	c.mu.Unlock()

	c.solvesTotal.WithLabelValues("ok").Inc()
	c.solveDuration.Observe(duration.Seconds())
	c.chainItems.Observe(float64(n))
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &OperationSnapshot{
		Count:       m.Count,
		Failures:    m.Failures,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		ItemsSolved:   c.itemsSolved,
		Parse:         snapshotOp(c.ops[OpParse]),
		Solve:         snapshotOp(c.ops[OpSolve]),
		Persist:       snapshotOp(c.ops[OpPersist]),
	}
}

// Registry exposes the Prometheus registry for custom gatherers.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the Prometheus exposition of the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
