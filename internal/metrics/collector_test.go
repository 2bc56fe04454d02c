package metrics

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_EmptySnapshot(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()

	if snap.Solve != nil || snap.Parse != nil || snap.Persist != nil {
		t.Errorf("expected nil operation snapshots, got %+v", snap)
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("UptimeSeconds = %f, want >= 0", snap.UptimeSeconds)
	}
}

func TestCollector_RecordSolve(t *testing.T) {
	c := NewCollector()
	c.RecordSolve(10, 4*time.Millisecond)
	c.RecordSolve(30, 8*time.Millisecond)
	c.RecordFailure(OpParse, time.Millisecond)

	snap := c.Snapshot()
	if snap.Solve == nil {
		t.Fatal("Solve snapshot is nil")
	}
	if snap.Solve.Count != 2 {
		t.Errorf("Solve.Count = %d, want 2", snap.Solve.Count)
	}
	if snap.Solve.MinTimeMs != 4 || snap.Solve.MaxTimeMs != 8 {
		t.Errorf("Solve min/max = %d/%d, want 4/8", snap.Solve.MinTimeMs, snap.Solve.MaxTimeMs)
	}
	if snap.Solve.AvgTimeMs != 6 {
		t.Errorf("Solve.AvgTimeMs = %f, want 6", snap.Solve.AvgTimeMs)
	}
	if snap.ItemsSolved != 40 {
		t.Errorf("ItemsSolved = %d, want 40", snap.ItemsSolved)
	}
	if snap.Parse == nil || snap.Parse.Failures != 1 {
		t.Errorf("Parse snapshot = %+v, want one failure", snap.Parse)
	}

	if got := testutil.ToFloat64(c.solvesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("solves_total{ok} = %f, want 2", got)
	}
	if got := testutil.ToFloat64(c.solvesTotal.WithLabelValues("invalid")); got != 1 {
		t.Errorf("solves_total{invalid} = %f, want 1", got)
	}
}

func TestCollector_RecordError(t *testing.T) {
	c := NewCollector()
	c.RecordFailure(OpSolve, 0)
	c.RecordError(OpSolve, 2*time.Millisecond)

	snap := c.Snapshot()
	if snap.Solve == nil || snap.Solve.Failures != 2 {
		t.Fatalf("Solve snapshot = %+v, want two failures", snap.Solve)
	}
	if snap.ItemsSolved != 0 {
		t.Errorf("ItemsSolved = %d, want 0", snap.ItemsSolved)
	}
	if got := testutil.ToFloat64(c.solvesTotal.WithLabelValues("invalid")); got != 1 {
		t.Errorf("solves_total{invalid} = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.solvesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("solves_total{error} = %f, want 1", got)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordSolve(1, time.Microsecond)
			c.RecordTiming(OpPersist, time.Microsecond)
			_ = c.Snapshot()
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.Solve.Count != 20 || snap.Persist.Count != 20 {
		t.Errorf("counts = %d/%d, want 20/20", snap.Solve.Count, snap.Persist.Count)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordSolve(5, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"chainburst_solves_total",
		"chainburst_solve_duration_seconds_bucket",
		"chainburst_chain_items_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
