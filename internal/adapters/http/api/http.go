// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/synheart/emotion-go/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue pushes a sample for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, s model.Sample) bool

	// Read operations expose emitted results and the window state.
	LatestResult(ctx context.Context) (model.EmotionResult, error)
	RecentResults(ctx context.Context, limit int) ([]model.EmotionResult, error)
	BufferStats(ctx context.Context) model.BufferStats
	ClearBuffer(ctx context.Context)
}

// Result mirrors the read shape returned by result queries.
type Result = model.EmotionResult

// resultsResponse wraps GET /results output.
type resultsResponse struct {
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	samplesHandler *SamplesHandler
	resultsHandler *ResultsHandler
	bufferHandler  *BufferHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		samplesHandler: NewSamplesHandler(deps),
		resultsHandler: NewResultsHandler(deps),
		bufferHandler:  NewBufferHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/samples", MetricsMiddleware(s.samplesHandler.HandlePostSample, "samples"))
	mux.HandleFunc("/results/latest", MetricsMiddleware(s.resultsHandler.HandleGetLatest, "results_latest"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandleGetRecent, "results"))
	mux.HandleFunc("/buffer", MetricsMiddleware(s.bufferHandler.HandleBuffer, "buffer"))
}

// sampleRequest mirrors the wire schema for POST /samples.
type sampleRequest struct {
	SampleID      string             `json:"sample_id"`
	SubjectID     string             `json:"subject_id"`
	HR            float64            `json:"hr"`
	RRIntervalsMS []float64          `json:"rr_intervals_ms"`
	Motion        map[string]float64 `json:"motion,omitempty"`
	TS            string             `json:"ts"`
}

func (s sampleRequest) validate() error {
	switch {
	case s.HR <= 0:
		return errors.New("hr must be positive")
	case len(s.RRIntervalsMS) == 0:
		return errors.New("missing rr_intervals_ms")
	}
	if strings.TrimSpace(s.TS) != "" {
		if _, err := time.Parse(time.RFC3339, s.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// toModel converts a validated request to the domain sample. A missing
// timestamp defaults to the server clock.
func (s sampleRequest) toModel() model.Sample {
	ts := time.Now()
	if strings.TrimSpace(s.TS) != "" {
		ts, _ = time.Parse(time.RFC3339, s.TS)
	}
	return model.Sample{
		SampleID:      s.SampleID,
		SubjectID:     s.SubjectID,
		HR:            s.HR,
		RRIntervalsMS: s.RRIntervalsMS,
		Motion:        s.Motion,
		Timestamp:     ts,
	}
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
