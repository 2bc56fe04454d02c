package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/chainburst/internal/chain"
	"github.com/raphaelgruber/chainburst/internal/history"
	"github.com/raphaelgruber/chainburst/internal/service"
	"github.com/raphaelgruber/chainburst/internal/solver"
)

// defaultListLimit caps GET /runs when no limit is given.
const defaultListLimit = 20

// SolveResponse is the JSON result of a solve.
type SolveResponse struct {
	ID         string  `json:"id"`
	Energy     uint64  `json:"energy"`
	Order      []int   `json:"order"`
	N          int     `json:"n"`
	DurationMs float64 `json:"duration_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newSolveResponse(run history.Run) SolveResponse {
	order := run.Order
	if order == nil {
		order = []int{}
	}
	return SolveResponse{
		ID:         run.ID,
		Energy:     run.Energy,
		Order:      order,
		N:          run.N,
		DurationMs: float64(run.Duration) / float64(time.Millisecond),
	}
}

// SolveHandler decodes a solve request from the body and writes the result.
// It is exported so other entry points can serve it without the full mux.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req service.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "decode request: " + err.Error()})
		return
	}

	run, err := s.svc.SolveRequest(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrPersist) {
			s.logger.Warn("returning unsaved run", "error", err)
			writeJSON(w, http.StatusOK, newSolveResponse(run))
			return
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSolveResponse(run))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.svc.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

// handleWebSocket solves one request per text message until the client
// disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	for {
		var req service.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", "error", err)
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if werr := conn.WriteJSON(errorResponse{Error: "decode request: " + err.Error()}); werr != nil {
					return
				}
				continue
			}
			return
		}

		var reply any
		run, err := s.svc.SolveRequest(r.Context(), req)
		switch {
		case err == nil, errors.Is(err, service.ErrPersist):
			reply = newSolveResponse(run)
		default:
			reply = errorResponse{Error: err.Error()}
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chain.ErrInvalidInput), errors.Is(err, solver.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound), errors.Is(err, service.ErrHistoryDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
