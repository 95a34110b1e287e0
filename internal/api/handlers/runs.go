package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sohaniboston/Smart-Recon/internal/api/dto"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns reconciliation runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := storage.RunFilters{
		Status: r.URL.Query().Get("status"),
		Limit:  ParseIntParam(r, "limit", 0),
		Offset: ParseIntParam(r, "offset", 0),
	}

	runs, err := h.repo.ListRuns(filters)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run with full stats.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.RunNotFoundError(id))
		return
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunDetailResponse{
		RunResponse: toRunResponse(*run),
		Stats:       rawJSON(run.StatsJSON),
		Suggestions: rawJSON(run.SuggestionsJSON),
	}
	h.WriteJSON(w, http.StatusOK, response)
}

// Matches handles GET /api/runs/{id}/matches - returns a run's matches.
// Supports strategy and min_confidence query filters.
func (h *RunsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	if !h.runExists(w, id) {
		return
	}

	filters := storage.MatchFilters{
		Strategy:      r.URL.Query().Get("strategy"),
		MinConfidence: ParseFloatParam(r, "min_confidence", 0),
		Limit:         ParseIntParam(r, "limit", 0),
		Offset:        ParseIntParam(r, "offset", 0),
	}

	matches, err := h.repo.ListMatches(id, filters)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.MatchListResponse{
		RunID:   id,
		Matches: make([]dto.MatchResponse, 0, len(matches)),
		Count:   len(matches),
	}
	for _, m := range matches {
		response.Matches = append(response.Matches, dto.MatchResponse{
			ID:         m.ID,
			Strategy:   m.Strategy,
			Confidence: m.Confidence,
			Internal:   rawJSON(m.InternalJSON),
			External:   rawJSON(m.ExternalJSON),
			Criteria:   rawJSON(m.CriteriaJSON),
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Exceptions handles GET /api/runs/{id}/exceptions - returns a run's
// categorized unmatched records, optionally filtered by category.
func (h *RunsHandler) Exceptions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	if !h.runExists(w, id) {
		return
	}

	excs, err := h.repo.ListExceptions(id, r.URL.Query().Get("category"))
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ExceptionListResponse{
		RunID:      id,
		Exceptions: make([]dto.ExceptionResponse, 0, len(excs)),
		Count:      len(excs),
	}
	for _, e := range excs {
		response.Exceptions = append(response.Exceptions, dto.ExceptionResponse{
			ID:              e.ID,
			Origin:          e.Origin,
			Index:           e.Index,
			Category:        e.Category,
			Confidence:      e.Confidence,
			Record:          rawJSON(e.RecordJSON),
			Characteristics: rawJSON(e.CharacteristicsJSON),
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// runExists writes a 404 or 500 and returns false when the run cannot
// be loaded.
func (h *RunsHandler) runExists(w http.ResponseWriter, id string) bool {
	_, err := h.repo.GetRun(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.RunNotFoundError(id))
		return false
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return false
	}
	return true
}

func toRunResponse(run storage.ReconRun) dto.RunResponse {
	return dto.RunResponse{
		ID:                run.ID,
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
		Status:            run.Status,
		InternalCount:     run.InternalCount,
		ExternalCount:     run.ExternalCount,
		MatchCount:        run.MatchCount,
		ExceptionCount:    run.ExceptionCount,
		InternalMatchRate: run.InternalMatchRate,
		ExternalMatchRate: run.ExternalMatchRate,
	}
}

// rawJSON passes a stored JSON column through untouched; empty columns
// become null so omitempty drops them.
func rawJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
