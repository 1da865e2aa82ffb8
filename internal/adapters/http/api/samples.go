// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// SamplesHandler handles biosignal sample ingestion.
type SamplesHandler struct {
	deps Dependencies
}

// NewSamplesHandler creates a new samples handler.
func NewSamplesHandler(deps Dependencies) *SamplesHandler {
	return &SamplesHandler{deps: deps}
}

// HandlePostSample handles POST /samples requests.
func (h *SamplesHandler) HandlePostSample(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_sample"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// The service handles idempotency; a duplicate still acks as accepted.
	if ok := h.deps.Enqueue(r.Context(), req.toModel()); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
