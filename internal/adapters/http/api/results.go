// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/synheart/emotion-go/internal/adapters/repository"
)

// Default and maximum limits for GET /results.
const (
	defaultResultsLimit = 10
	maxResultsLimit     = 1000
)

// ResultsHandler exposes emitted emotion results.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleGetLatest handles GET /results/latest requests.
func (h *ResultsHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_latest_result"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	result, err := h.deps.LatestResult(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrEmpty) {
			writeError(w, http.StatusNotFound, "no_results", NewKind(op, ErrNotFound))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetRecent handles GET /results?limit=N requests.
func (h *ResultsHandler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recent_results"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	if limit > maxResultsLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	results, err := h.deps.RecentResults(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	if results == nil {
		results = []Result{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results, Count: len(results)})
}
