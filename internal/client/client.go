// Package client provides an HTTP and WebSocket client for the chainburst
// server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client talks to a chainburst server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If baseURL is empty, uses CHAINBURST_SERVER_URL env var or defaults to localhost:8080.
// Timeout can be configured via CHAINBURST_CLIENT_TIMEOUT env var (default 1m).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("CHAINBURST_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	timeout := time.Minute
	if t := os.Getenv("CHAINBURST_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// =============================================================================
// Types
// =============================================================================

// SolveRequest is a chain to solve.
type SolveRequest struct {
	Potentials []int64 `json:"potentials"`
	Classes    string  `json:"classes"`
	TieBreak   string  `json:"tie_break,omitempty"`
}

// SolveResult is the server's answer to a solve.
type SolveResult struct {
	ID         string  `json:"id"`
	Energy     uint64  `json:"energy"`
	Order      []int   `json:"order"`
	N          int     `json:"n"`
	DurationMs float64 `json:"duration_ms"`
}

// Run is a saved solve.
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

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// =============================================================================
// HTTP
// =============================================================================

// do sends a request and decodes a JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// Solve solves one chain on the server.
func (c *Client) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	var res SolveResult
	if err := c.do(ctx, http.MethodPost, "/solve", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetRun fetches a saved run by ID.
func (c *Client) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	if err := c.do(ctx, http.MethodGet, "/runs/"+url.PathEscape(id), nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns up to limit saved runs, newest first.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	path := "/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var runs []Run
	if err := c.do(ctx, http.MethodGet, path, nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

// =============================================================================
// WebSocket
// =============================================================================

// wsReply is either a solve result or an error message.
type wsReply struct {
	SolveResult
	Error string `json:"error,omitempty"`
}

// SolveStream solves each request over one WebSocket connection. onResult
// is called once per request in order, with either a result or the server's
// error for that request. Return an error from onResult to abort.
func (c *Client) SolveStream(
	ctx context.Context,
	reqs []SolveRequest,
	onResult func(i int, res *SolveResult, err error) error,
) error {
	// Convert HTTP endpoint to WebSocket endpoint
	wsEndpoint := c.baseURL + "/ws"
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}

	// Track connection state for proper cleanup
	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	// Handle context cancellation in a separate goroutine
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	for i, req := range reqs {
		if err := conn.WriteJSON(req); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("send request %d: %w", i, err)
		}

		var reply wsReply
		if err := conn.ReadJSON(&reply); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read reply %d: %w", i, err)
		}

		var cbErr error
		if reply.Error != "" {
			cbErr = onResult(i, nil, errors.New(reply.Error))
		} else {
			res := reply.SolveResult
			cbErr = onResult(i, &res, nil)
		}
		if cbErr != nil {
			return cbErr
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}
