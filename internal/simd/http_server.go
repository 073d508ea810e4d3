package simd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wavesim/wavesim/internal/export"
	"github.com/wavesim/wavesim/internal/metrics"
	"github.com/wavesim/wavesim/pkg/config"
	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
	"github.com/wavesim/wavesim/pkg/utils"
)

const maxRequestBytes = 1 << 20

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
	cfg      *config.Config
}

// NewHTTPServer builds the REST API. cfg may be nil, in which case defaults
// apply; /metrics is served only when recorder is non-nil.
func NewHTTPServer(store *RunStore, executor *RunExecutor, cfg *config.Config, recorder *metrics.Recorder) *HTTPServer {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
		cfg:      cfg,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/compile", s.handleCompile)
	s.mux.HandleFunc("/v1/validate", s.handleValidate)
	s.mux.HandleFunc("/v1/optimize", s.handleOptimize)
	s.mux.HandleFunc("/v1/presets", s.handlePresets)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)
	if recorder != nil {
		s.mux.Handle("/metrics", recorder.Handler())
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return withRequestID(s.mux)
}

// withRequestID echoes the caller's X-Request-ID or assigns a fresh one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = utils.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "request_id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.Executor.Pipeline().Generator().Version(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCompile handles POST /v1/compile
func (s *HTTPServer) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req CompileRequest
	if !s.decode(w, r, &req) {
		return
	}
	raw, err := models.ParseRawInput(req.Input)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params := s.Executor.Pipeline().Compiler().Compile(raw)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"parameters": params.Map(),
	})
}

// handleValidate handles POST /v1/validate
func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeParameters(w, r)
	if !ok {
		return
	}
	result := s.Executor.Pipeline().Compiler().Validate(params)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"validation": validationToMap(result),
	})
}

// handleOptimize handles POST /v1/optimize
func (s *HTTPServer) handleOptimize(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeParameters(w, r)
	if !ok {
		return
	}
	optimized := s.Executor.Pipeline().Compiler().Optimize(params)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"parameters": optimized.Map(),
	})
}

func (s *HTTPServer) decodeParameters(w http.ResponseWriter, r *http.Request) (models.Parameters, bool) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return models.Parameters{}, false
	}
	var req ParametersRequest
	if !s.decode(w, r, &req) {
		return models.Parameters{}, false
	}
	params, err := models.ParseParameters(req.Parameters)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return models.Parameters{}, false
	}
	return params, true
}

// handlePresets handles GET /v1/presets
func (s *HTTPServer) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	presets := make([]map[string]any, 0, len(s.cfg.Presets))
	for i := range s.cfg.Presets {
		p := &s.cfg.Presets[i]
		raw, err := p.RawInput()
		if err != nil {
			logger.Warn("skipping invalid preset", "preset", p.Name, "error", err)
			continue
		}
		presets = append(presets, map[string]any{
			"name":       p.Name,
			"input":      raw.Map(),
			"parameters": s.Executor.Pipeline().Compiler().Compile(raw).Map(),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
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
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch {
	case strings.HasSuffix(path, "/export"):
		s.handleExportRun(w, r, strings.TrimSuffix(path, "/export"))
	case strings.HasSuffix(path, "/stream"):
		s.handleStreamRun(w, r, strings.TrimSuffix(path, "/stream"))
	case strings.Contains(path, "/"):
		s.writeError(w, http.StatusNotFound, "not found")
	default:
		s.handleGetRun(w, r, path)
	}
}

// handleCreateRun handles POST /v1/runs
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if !s.decode(w, r, &req) {
		return
	}

	input, err := models.ParseRawInput(req.Input)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := req.Options.Resolve(s.cfg.RunDefaults)

	var cb *Callback
	if req.CallbackURL != "" {
		cb = &Callback{URL: req.CallbackURL, Secret: req.CallbackSecret}
	}

	run, err := s.Executor.Submit(r.Context(), req.RunID, input, opts, cb)
	if run == nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	body := map[string]any{"run": runToMap(run)}
	if err != nil {
		body["error"] = err.Error()
		if ve, ok := models.IsValidationError(err); ok {
			body["reason"] = ve.Reason
		}
		s.writeJSON(w, statusForError(err), body)
		return
	}

	logger.Info("run created (HTTP)", "run_id", run.ID)
	body["result"] = resultToMap(run.Result)
	s.writeJSON(w, http.StatusCreated, body)
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{Limit: 50, Status: strings.ToLower(r.URL.Query().Get("status"))}
	var err error
	if q.Limit, err = intParam(r, "limit", 50); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Offset, err = intParam(r, "offset", 0); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := requestValidate.Struct(&q); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	runs := s.store.ListFiltered(q.Limit, q.Offset, models.RunStatus(q.Status))
	runsJSON := make([]map[string]any, 0, len(runs))
	for _, run := range runs {
		runsJSON = append(runsJSON, runToMap(run))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runsJSON,
		"pagination": map[string]any{
			"limit":  q.Limit,
			"offset": q.Offset,
			"count":  len(runs),
		},
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, r *http.Request, runID string) {
	run, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	body := map[string]any{"run": runToMap(run)}
	if run.Result != nil && r.URL.Query().Get("include") == "result" {
		body["result"] = resultToMap(run.Result)
	}
	s.writeJSON(w, http.StatusOK, body)
}

// handleExportRun handles GET /v1/runs/{id}/export
func (s *HTTPServer) handleExportRun(w http.ResponseWriter, r *http.Request, runID string) {
	q := ExportQuery{Format: r.URL.Query().Get("format")}
	if q.Format == "" {
		q.Format = string(export.FormatCSV)
	}
	var err error
	if q.SampleRate, err = intParam(r, "sample_rate", s.cfg.Export.AudioSampleRate); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := requestValidate.Struct(&q); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	format, _ := export.ParseFormat(q.Format)

	run, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if run.Result == nil {
		s.writeError(w, http.StatusPreconditionFailed, "results not available for run in status "+string(run.Status))
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, run.Result, q.SampleRate); err != nil {
		logger.Error("export failed", "run_id", runID, "format", format, "error", err)
		s.writeError(w, http.StatusInternalServerError, "export failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("failed to write export", "run_id", runID, "error", err)
	}
}

// decode reads a JSON body into dst and runs struct validation when dst supports it.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := requestValidate.Struct(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	if _, ok := models.IsValidationError(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, models.ErrInvalidParameter),
		errors.Is(err, ErrTooManyPoints),
		errors.Is(err, ErrRunIDInvalid),
		errors.Is(err, ErrRunIDMissing):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunExists), errors.Is(err, ErrRunTerminal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes data before writing the status line, so an encoding
// failure surfaces as a 500 instead of a success status with an empty body.
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "status", status, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
