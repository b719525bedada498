// Package api exposes the documentation pipelines over HTTP.
//
// Routes:
//
//   - POST /v1/process     — run both pipelines and the judge; full result.
//   - POST /v1/sequential  — run only the linear baseline pipeline.
//   - POST /v1/multiagent  — run only the multi-agent pipeline.
//   - GET  /v1/status      — provider availability and model readiness.
//   - /healthz, /readyz, /metrics — operational endpoints.
//
// Handlers are stateless and reentrant; nothing here serialises runs. A
// client that wants one run in flight enforces that itself.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/soapscribe/internal/app"
	"github.com/MrWong99/soapscribe/internal/health"
	"github.com/MrWong99/soapscribe/internal/observe"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// maxTranscriptBytes bounds the request body. Call transcripts run a few
// kilobytes; a megabyte is already generous.
const maxTranscriptBytes = 1 << 20

// Server holds the HTTP handler dependencies.
type Server struct {
	app     *app.App
	model   string
	health  *health.Handler
	metrics *observe.Metrics
}

// New creates a Server for the given application. model is the configured
// model identifier reported by /v1/status.
func New(application *app.App, model string, healthHandler *health.Handler, metrics *observe.Metrics) *Server {
	return &Server{
		app:     application,
		model:   model,
		health:  healthHandler,
		metrics: metrics,
	}
}

// Handler returns the fully routed HTTP handler with the observability
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/process", s.handleProcess)
	mux.HandleFunc("POST /v1/sequential", s.handleSequential)
	mux.HandleFunc("POST /v1/multiagent", s.handleMultiAgent)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)

	return observe.Middleware(s.metrics)(mux)
}

// processRequest is the JSON body of every pipeline endpoint.
type processRequest struct {
	Transcript string `json:"transcript"`
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	transcript, ok := s.readTranscript(w, r)
	if !ok {
		return
	}
	st, err := s.app.ProcessAndEvaluateCall(r.Context(), transcript, nil)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSequential(w http.ResponseWriter, r *http.Request) {
	transcript, ok := s.readTranscript(w, r)
	if !ok {
		return
	}
	res, err := s.app.RunSequentialPipeline(r.Context(), transcript)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMultiAgent(w http.ResponseWriter, r *http.Request) {
	transcript, ok := s.readTranscript(w, r)
	if !ok {
		return
	}
	st, err := s.app.RunMultiAgentSystem(r.Context(), transcript, nil)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// statusResponse reports provider connectivity for UI indicators.
type statusResponse struct {
	ProviderAvailable bool   `json:"providerAvailable"`
	ModelReady        bool   `json:"modelReady"`
	Model             string `json:"model"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	provider := s.app.Provider()
	res := statusResponse{
		ProviderAvailable: provider.CheckAvailability(r.Context()),
		Model:             s.model,
	}
	// The readiness probe is a real generation; skip it when the provider is
	// already known to be down.
	if res.ProviderAvailable {
		res.ModelReady = provider.CheckModelReady(r.Context(), s.model)
	}
	writeJSON(w, http.StatusOK, res)
}

// readTranscript decodes and validates the request body, writing the error
// response itself when validation fails.
func (s *Server) readTranscript(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req processRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTranscriptBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return "", false
	}
	if req.Transcript == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "transcript is required"})
		return "", false
	}
	return req.Transcript, true
}

// writeRunError maps a pipeline failure onto an HTTP status: provider
// unreachability is 503, everything else 500. The error text always names
// the failed stage.
func (s *Server) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	observe.Logger(r.Context()).Error("pipeline run failed", "err", err)
	status := http.StatusInternalServerError
	if errors.Is(err, llm.ErrUnavailable) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
	}
}
