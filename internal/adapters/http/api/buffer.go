// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// BufferHandler exposes the engine window for diagnostics and reset.
type BufferHandler struct {
	deps Dependencies
}

// NewBufferHandler creates a new buffer handler.
func NewBufferHandler(deps Dependencies) *BufferHandler {
	return &BufferHandler{deps: deps}
}

// HandleBuffer handles GET /buffer (window snapshot) and DELETE /buffer
// (clear window and reset the emission throttle).
func (h *BufferHandler) HandleBuffer(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		stats := h.deps.BufferStats(r.Context())
		writeJSON(w, http.StatusOK, bufferResponse{
			SampleCount:     stats.SampleCount,
			DurationSeconds: stats.Duration.Seconds(),
			HRMin:           stats.HRMin,
			HRMax:           stats.HRMax,
			RRCount:         stats.RRCount,
		})
	case http.MethodDelete:
		h.deps.ClearBuffer(r.Context())
		writeJSON(w, http.StatusOK, ackResponse{Status: "cleared"})
	default:
		http.NotFound(w, r)
	}
}

// bufferResponse mirrors the wire schema for GET /buffer.
type bufferResponse struct {
	SampleCount     int     `json:"sample_count"`
	DurationSeconds float64 `json:"duration_seconds"`
	HRMin           float64 `json:"hr_min"`
	HRMax           float64 `json:"hr_max"`
	RRCount         int     `json:"rr_count"`
}
