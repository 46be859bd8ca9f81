package swarmd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

const maxRequestBody = 1 << 20

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
}

// NewHTTPServer wires the run API. /metrics is served when prom is not nil.
func NewHTTPServer(store *RunStore, executor *RunExecutor, prom *metrics.Prometheus) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/objectives", s.handleObjectives)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)
	if prom != nil {
		s.mux.Handle("/metrics", prom.Handler())
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"runs":      s.store.Len(),
	})
}

// handleObjectives handles GET /v1/objectives
func (s *HTTPServer) handleObjectives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"objectives": objective.Names(),
	})
}

// handleRuns handles /v1/runs endpoint
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id} and related endpoints
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	// /v1/runs/{id}, /v1/runs/{id}:stop, /v1/runs/{id}/history, /v1/runs/{id}/stream
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	route := func(suffix, method string, h func(http.ResponseWriter, *http.Request, string)) bool {
		if !strings.HasSuffix(path, suffix) {
			return false
		}
		if r.Method != method {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return true
		}
		h(w, r, strings.TrimSuffix(path, suffix))
		return true
	}

	switch {
	case route(":stop", http.MethodPost, s.handleStopRun):
	case route("/history", http.MethodGet, s.handleHistory):
	case route("/stream", http.MethodGet, s.handleStream):
	case strings.Contains(path, "/"):
		s.writeError(w, http.StatusNotFound, "not found")
	default:
		route("", http.MethodGet, s.handleGetRun)
	}
}

type createRunRequest struct {
	RunID          string        `json:"run_id,omitempty"`
	Solver         config.Solver `json:"solver"`
	CallbackURL    string        `json:"callback_url,omitempty"`
	CallbackSecret string        `json:"callback_secret,omitempty"`
}

// decodeCreateRun reads a JSON request, or a bare solver document when the
// body is YAML. Omitted solver keys keep their defaults.
func decodeCreateRun(w http.ResponseWriter, r *http.Request) (createRunRequest, error) {
	req := createRunRequest{Solver: config.DefaultSolver()}
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)

	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		data, err := io.ReadAll(body)
		if err != nil {
			return req, err
		}
		solver, err := config.ParseSolverYAML(data)
		if err != nil {
			return req, err
		}
		req.Solver = *solver
		req.RunID = r.URL.Query().Get("run_id")
		return req, nil
	}

	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// handleCreateRun handles POST /v1/runs
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRun(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var cb *Callback
	if req.CallbackURL != "" {
		cb = &Callback{URL: req.CallbackURL, Secret: req.CallbackSecret}
	}

	rec, err := s.Executor.Submit(SubmitRequest{RunID: req.RunID, Solver: req.Solver, Callback: cb})
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": convertRunToJSON(rec),
	})
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, 1000)
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var status models.RunStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		parsed, ok := models.ParseRunStatus(statusStr)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status: "+statusStr)
			return
		}
		status = parsed
	}

	runs := s.store.List(limit, offset, status)
	runsJSON := make([]map[string]any, 0, len(runs))
	for _, rec := range runs {
		runsJSON = append(runsJSON, convertRunToJSON(rec))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runsJSON,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": convertRunToJSON(rec),
	})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": convertRunToJSON(updated),
	})
}

// handleHistory handles GET /v1/runs/{id}/history
func (s *HTTPServer) handleHistory(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	collector := s.Executor.Collector()
	converged, reason := collector.Convergence(runID, nil)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  runID,
		"status":  string(rec.Run.Status),
		"points":  convertPointsToJSON(collector.Trace(runID)),
		"summary": convertSummaryToJSON(collector.Summary(runID)),
		"convergence": map[string]any{
			"converged": converged,
			"reason":    reason,
		},
	})
}

// handleStream handles GET /v1/runs/{id}/stream as Server-Sent Events. It
// emits a round event per recorded round and ends with a complete event once
// the run is terminal.
func (s *HTTPServer) handleStream(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	interval := 500 * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval_ms"); intervalStr != "" {
		if intervalMs, err := strconv.ParseInt(intervalStr, 10, 64); err == nil && intervalMs > 0 {
			interval = time.Duration(intervalMs) * time.Millisecond
		}
	}

	flush := func() {
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}

	collector := s.Executor.Collector()
	previousStatus := rec.Run.Status
	sent := 0
	s.sendSSEEvent(w, "status_change", map[string]any{"status": string(previousStatus)})
	flush()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		// Read the status before the trace so the final rounds are not missed.
		rec, ok := s.store.Get(runID)
		if !ok {
			s.sendSSEEvent(w, "error", map[string]any{"error": "run not found"})
			flush()
			return
		}

		for _, p := range collector.Since(runID, sent) {
			s.sendSSEEvent(w, "round", convertPointToJSON(p))
			sent++
		}

		if rec.Run.Status != previousStatus {
			s.sendSSEEvent(w, "status_change", map[string]any{"status": string(rec.Run.Status)})
			previousStatus = rec.Run.Status
		}

		if rec.Run.Status.Terminal() {
			s.sendSSEEvent(w, "complete", map[string]any{"run": convertRunToJSON(rec)})
			flush()
			return
		}
		flush()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sendSSEEvent writes one event in SSE framing
func (s *HTTPServer) sendSSEEvent(w http.ResponseWriter, eventType string, data map[string]any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to marshal SSE event data", "error", err)
		return
	}

	// SSE streams are best-effort; write errors are logged only.
	if _, err := w.Write([]byte("event: " + eventType + "\n")); err != nil {
		logger.Error("failed to write SSE event header", "error", err)
		return
	}
	if _, err := w.Write([]byte("data: " + string(jsonData) + "\n\n")); err != nil {
		logger.Error("failed to write SSE event data", "error", err)
		return
	}
}

// statusForError maps executor and store errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunIDMissing),
		errors.Is(err, ErrInvalidRunID),
		errors.Is(err, ErrInvalidSolver):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunExists),
		errors.Is(err, ErrRunTerminal),
		errors.Is(err, ErrRunNotStoppable):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Helper functions

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
