package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/chainburst/internal/history"
	"github.com/raphaelgruber/chainburst/internal/metrics"
	"github.com/raphaelgruber/chainburst/internal/server"
	"github.com/raphaelgruber/chainburst/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer starts a server backed by a temporary SQLite history.
func newTestServer(t *testing.T, withHistory bool) *httptest.Server {
	t.Helper()

	var store history.Store
	if withHistory {
		s, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		store = s
	}

	collector := metrics.NewCollector()
	svc := service.NewSolveService(service.Options{MaxItems: 50, Verify: true}, store, collector, testLogger())
	ts := httptest.NewServer(server.New(svc, collector, testLogger()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postSolve(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/solve", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestSolveEndpoint(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name   string
		body   string
		status int
		energy uint64
		order  []int
	}{
		{name: "example", body: `{"potentials":[1,2,3,4],"classes":"ABNP"}`, status: http.StatusOK, energy: 105, order: []int{1, 3, 2, 4}},
		{name: "empty chain", body: `{"potentials":[],"classes":""}`, status: http.StatusOK, energy: 0, order: []int{}},
		{name: "tie-break first", body: `{"potentials":[1,1,1],"classes":"PPP","tie_break":"first"}`, status: http.StatusOK, energy: 6, order: []int{3, 2, 1}},
		{name: "bad class", body: `{"potentials":[1],"classes":"T"}`, status: http.StatusBadRequest},
		{name: "length mismatch", body: `{"potentials":[1,2],"classes":"P"}`, status: http.StatusBadRequest},
		{name: "negative potential", body: `{"potentials":[-4],"classes":"P"}`, status: http.StatusBadRequest},
		{name: "unknown tie-break", body: `{"potentials":[1],"classes":"P","tie_break":"middle"}`, status: http.StatusBadRequest},
		{name: "malformed json", body: `{"potentials":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := postSolve(t, ts, tt.body)
			require.Equal(t, tt.status, resp.StatusCode, string(data))
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			if tt.status != http.StatusOK {
				var e map[string]string
				require.NoError(t, json.Unmarshal(data, &e))
				assert.NotEmpty(t, e["error"])
				return
			}

			var got server.SolveResponse
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.energy, got.Energy)
			assert.Equal(t, tt.order, got.Order)
			assert.Equal(t, len(tt.order), got.N)
			assert.Empty(t, got.ID)
		})
	}
}

func TestSolveEndpoint_MaxItems(t *testing.T) {
	ts := newTestServer(t, false)

	pots := make([]string, 51)
	for i := range pots {
		pots[i] = "1"
	}
	body := `{"potentials":[` + strings.Join(pots, ",") + `],"classes":"` + strings.Repeat("P", 51) + `"}`

	resp, _ := postSolve(t, ts, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSolveEndpoint_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/solve")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRunsEndpoint(t *testing.T) {
	ts := newTestServer(t, true)

	_, data := postSolve(t, ts, `{"potentials":[10,1,7,3,8],"classes":"BANPA"}`)
	var solved server.SolveResponse
	require.NoError(t, json.Unmarshal(data, &solved))
	require.NotEmpty(t, solved.ID)

	resp, err := http.Get(ts.URL + "/runs/" + solved.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run history.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, solved.ID, run.ID)
	assert.Equal(t, uint64(584), run.Energy)
	assert.Equal(t, []int{2, 3, 4, 5, 1}, run.Order)
	assert.Equal(t, "BANPA", run.Classes)

	missing, err := http.Get(ts.URL + "/runs/does-not-exist")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	list, err := http.Get(ts.URL + "/runs?limit=5")
	require.NoError(t, err)
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)
	var runs []history.Run
	require.NoError(t, json.NewDecoder(list.Body).Decode(&runs))
	assert.Len(t, runs, 1)

	bad, err := http.Get(ts.URL + "/runs?limit=zero")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestRunsEndpoint_HistoryDisabled(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/runs/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthStatsMetrics(t *testing.T) {
	ts := newTestServer(t, false)
	postSolve(t, ts, `{"potentials":[2,3,4],"classes":"PNA"}`)

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(health.Body)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	stats, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	var snap metrics.Snapshot
	require.NoError(t, json.NewDecoder(stats.Body).Decode(&snap))
	stats.Body.Close()
	require.NotNil(t, snap.Solve)
	assert.Equal(t, int64(1), snap.Solve.Count)
	assert.Equal(t, int64(3), snap.ItemsSolved)

	prom, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(prom.Body)
	prom.Body.Close()
	assert.Equal(t, http.StatusOK, prom.StatusCode)
	assert.Contains(t, string(body), `chainburst_solves_total{result="ok"} 1`)
	assert.Contains(t, string(body), "chainburst_solve_duration_seconds")
}

func TestWebSocketSolve(t *testing.T) {
	ts := newTestServer(t, false)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(service.Request{Potentials: []int64{3, 3}, Classes: "NN"}))
	var got server.SolveResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(18), got.Energy)
	assert.Equal(t, []int{1, 2}, got.Order)

	require.NoError(t, conn.WriteJSON(service.Request{Potentials: []int64{1}, Classes: "x"}))
	var e map[string]any
	require.NoError(t, conn.ReadJSON(&e))
	assert.Contains(t, e["error"], "invalid input")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	e = nil
	require.NoError(t, conn.ReadJSON(&e))
	assert.Contains(t, e["error"], "decode request")

	require.NoError(t, conn.WriteJSON(service.Request{Potentials: []int64{5}, Classes: "P"}))
	got = server.SolveResponse{}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(10), got.Energy)
}

func TestRun_Shutdown(t *testing.T) {
	svc := service.NewSolveService(service.Options{}, nil, nil, testLogger())
	srv := server.New(svc, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestSolveHandler_Direct(t *testing.T) {
	svc := service.NewSolveService(service.Options{}, nil, nil, testLogger())
	srv := server.New(svc, nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/solve", bytes.NewBufferString(`{"potentials":[5],"classes":"P"}`))
	rec := httptest.NewRecorder()
	srv.SolveHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got server.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint64(10), got.Energy)
	assert.Equal(t, []int{1}, got.Order)
}
