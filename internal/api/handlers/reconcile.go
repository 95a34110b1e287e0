package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sohaniboston/Smart-Recon/internal/api/dto"
	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/validator"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/storage"
)

// dateLayouts accepted for records submitted over the API.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	time.RFC3339,
}

// ReconcileHandler runs reconciliations over submitted record sets.
type ReconcileHandler struct {
	*Base
	pipeline *recon.Pipeline
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(repo storage.Repository, pipeline *recon.Pipeline) *ReconcileHandler {
	return &ReconcileHandler{
		Base:     NewBase(repo),
		pipeline: pipeline,
	}
}

// Reconcile handles POST /api/reconcile - runs the full pipeline over
// the submitted internal and external records and persists the session.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	internal := toRecords(req.Internal, ledger.OriginInternal)
	external := toRecords(req.External, ledger.OriginExternal)

	session, err := h.pipeline.Run(r.Context(), internal, external)
	if errors.Is(err, validator.ErrValidation) {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if err := h.repo.SaveSession(session); err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	stats, _ := json.Marshal(session.Stats)
	response := dto.ReconcileResponse{
		RunID:          session.ID.String(),
		MatchCount:     len(session.Matches),
		ExceptionCount: session.Exceptions.Total(),
		Stats:          stats,
	}
	h.WriteJSON(w, http.StatusCreated, response)
}

// toRecords converts submitted inputs to ledger records. Rows whose
// date or amount cannot be parsed become invalid records rather than
// failing the whole request.
func toRecords(inputs []dto.RecordInput, origin ledger.Origin) []ledger.Record {
	records := make([]ledger.Record, 0, len(inputs))
	for i, in := range inputs {
		rec := ledger.Record{
			Origin:        origin,
			OriginalIndex: i,
			Description:   in.Description,
			Reference:     in.Reference,
		}

		date, dateErr := parseDate(in.Date)
		amount, amountErr := decimal.NewFromString(in.Amount)
		if dateErr != nil || amountErr != nil {
			rec.Invalid = true
		} else {
			rec.Date = date
			rec.Amount = amount
		}

		records = append(records, rec)
	}
	return records
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("empty date")
	}
	return time.Time{}, lastErr
}
