package handlers

import (
	"net/http"

	"github.com/Sohaniboston/Smart-Recon/internal/api/dto"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/storage"
)

// StatsHandler serves aggregate statistics across runs.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo),
	}
}

// Get handles GET /api/stats - returns totals aggregated over recent runs.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 500)

	runs, err := h.repo.ListRuns(storage.RunFilters{Limit: limit})
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.AggregateStatsResponse{TotalRuns: len(runs)}
	for _, run := range runs {
		response.TotalRecords += run.InternalCount + run.ExternalCount
		response.TotalMatches += run.MatchCount
		response.TotalExceptions += run.ExceptionCount
		response.AverageInternalMatchRate += run.InternalMatchRate
		response.AverageExternalMatchRate += run.ExternalMatchRate
	}
	if len(runs) > 0 {
		response.AverageInternalMatchRate /= float64(len(runs))
		response.AverageExternalMatchRate /= float64(len(runs))
	}

	h.WriteJSON(w, http.StatusOK, response)
}
