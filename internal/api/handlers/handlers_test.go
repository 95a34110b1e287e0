package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sohaniboston/Smart-Recon/internal/api/dto"
	"github.com/Sohaniboston/Smart-Recon/internal/api/handlers"
	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
	"github.com/Sohaniboston/Smart-Recon/internal/infrastructure/storage"
)

func record(t *testing.T, origin ledger.Origin, index int, date, amount, desc, ref string) ledger.Record {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)

	return ledger.Record{
		Origin:        origin,
		OriginalIndex: index,
		Date:          d,
		Amount:        amt,
		Description:   desc,
		Reference:     ref,
	}
}

// seedRun runs a small reconciliation and persists it, returning the
// run ID. The inputs produce one reference match and one timing
// exception.
func seedRun(t *testing.T, repo storage.Repository) string {
	t.Helper()

	internal := []ledger.Record{
		record(t, ledger.OriginInternal, 0, "2025-01-01", "100.00", "Supplier payment", "A1"),
		record(t, ledger.OriginInternal, 1, "2025-01-10", "42.42", "pending settlement", ""),
	}
	external := []ledger.Record{
		record(t, ledger.OriginExternal, 0, "2025-01-03", "100.00", "SUPPLIER PMT", "a1"),
	}

	pipeline := recon.NewPipeline(recon.DefaultConfig(), nil)
	session, err := pipeline.Run(context.Background(), internal, external)
	require.NoError(t, err)
	require.NoError(t, repo.SaveSession(session))

	return session.ID.String()
}

// runsRouter mounts the runs handler the way the server does, so
// chi.URLParam resolution works in tests.
func runsRouter(repo storage.Repository) chi.Router {
	h := handlers.NewRunsHandler(repo)
	r := chi.NewRouter()
	r.Get("/api/runs", h.List)
	r.Get("/api/runs/{id}", h.Get)
	r.Get("/api/runs/{id}/matches", h.Matches)
	r.Get("/api/runs/{id}/exceptions", h.Exceptions)
	return r
}

func TestRunsList(t *testing.T) {
	repo := storage.NewMockRepository()
	seedRun(t, repo)
	router := runsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response dto.RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Runs, 1)
	assert.Equal(t, "completed", response.Runs[0].Status)
	assert.Equal(t, 2, response.Runs[0].InternalCount)
	assert.Equal(t, 1, response.Runs[0].ExternalCount)
}

func TestRunsGet(t *testing.T) {
	repo := storage.NewMockRepository()
	runID := seedRun(t, repo)
	router := runsRouter(repo)

	t.Run("returns run with stats", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, runID, response.ID)
		assert.Equal(t, 1, response.MatchCount)
		assert.NotEmpty(t, response.Stats)
	})

	t.Run("unknown run is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/no-such-run", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		var apiErr dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, dto.ErrCodeRunNotFound, apiErr.Code)
	})
}

func TestRunsMatches(t *testing.T) {
	repo := storage.NewMockRepository()
	runID := seedRun(t, repo)
	router := runsRouter(repo)

	t.Run("lists matches", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/matches", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.MatchListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "reference_exact", response.Matches[0].Strategy)
		assert.Equal(t, float64(100), response.Matches[0].Confidence)
		assert.Contains(t, string(response.Matches[0].Internal), "Supplier payment")
	})

	t.Run("strategy filter excludes non-matching rows", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/matches?strategy=amount_tolerance", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.MatchListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, 0, response.Count)
	})

	t.Run("unknown run is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/no-such-run/matches", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRunsExceptions(t *testing.T) {
	repo := storage.NewMockRepository()
	runID := seedRun(t, repo)
	router := runsRouter(repo)

	t.Run("lists exceptions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/exceptions", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.ExceptionListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "timing_differences", response.Exceptions[0].Category)
		assert.Equal(t, "internal", response.Exceptions[0].Origin)
	})

	t.Run("category filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/exceptions?category=unknown", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.ExceptionListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, 0, response.Count)
	})
}

func TestStatsGet(t *testing.T) {
	repo := storage.NewMockRepository()
	seedRun(t, repo)

	h := handlers.NewStatsHandler(repo)
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response dto.AggregateStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.TotalRuns)
	assert.Equal(t, 3, response.TotalRecords)
	assert.Equal(t, 1, response.TotalMatches)
	assert.Equal(t, 1, response.TotalExceptions)
	assert.InDelta(t, 50.0, response.AverageInternalMatchRate, 0.001)
	assert.InDelta(t, 100.0, response.AverageExternalMatchRate, 0.001)
}

func TestHealth(t *testing.T) {
	h := handlers.NewHealthHandler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.NotEmpty(t, response.Timestamp)
}

func reconcileBody(t *testing.T, req dto.ReconcileRequest) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestReconcile(t *testing.T) {
	newHandler := func() (*handlers.ReconcileHandler, *storage.MockRepository) {
		repo := storage.NewMockRepository()
		pipeline := recon.NewPipeline(recon.DefaultConfig(), nil)
		return handlers.NewReconcileHandler(repo, pipeline), repo
	}

	t.Run("runs and persists a session", func(t *testing.T) {
		h, repo := newHandler()

		body := reconcileBody(t, dto.ReconcileRequest{
			Internal: []dto.RecordInput{
				{Date: "2025-01-01", Amount: "100.00", Description: "Supplier payment", Reference: "A1"},
			},
			External: []dto.RecordInput{
				{Date: "2025-01-03", Amount: "100.00", Description: "SUPPLIER PMT", Reference: "a1"},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", body)
		rec := httptest.NewRecorder()
		h.Reconcile(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var response dto.ReconcileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, 1, response.MatchCount)
		assert.Equal(t, 0, response.ExceptionCount)
		assert.NotEmpty(t, response.Stats)

		run, err := repo.GetRun(response.RunID)
		require.NoError(t, err)
		assert.Equal(t, 1, run.MatchCount)
	})

	t.Run("empty side is a validation error", func(t *testing.T) {
		h, _ := newHandler()

		body := reconcileBody(t, dto.ReconcileRequest{
			Internal: []dto.RecordInput{
				{Date: "2025-01-01", Amount: "100.00", Description: "Supplier payment"},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", body)
		rec := httptest.NewRecorder()
		h.Reconcile(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		h, _ := newHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		h.Reconcile(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, dto.ErrCodeBadRequest, apiErr.Code)
	})

	t.Run("unparseable rows are absorbed as exceptions", func(t *testing.T) {
		h, _ := newHandler()

		body := reconcileBody(t, dto.ReconcileRequest{
			Internal: []dto.RecordInput{
				{Date: "2025-01-01", Amount: "100.00", Description: "Supplier payment", Reference: "A1"},
				{Date: "not-a-date", Amount: "50.00", Description: "mystery row"},
			},
			External: []dto.RecordInput{
				{Date: "2025-01-03", Amount: "100.00", Description: "SUPPLIER PMT", Reference: "a1"},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", body)
		rec := httptest.NewRecorder()
		h.Reconcile(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var response dto.ReconcileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, 1, response.MatchCount)
		assert.Equal(t, 1, response.ExceptionCount)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		h, repo := newHandler()
		repo.SaveSessionErr = assert.AnError

		body := reconcileBody(t, dto.ReconcileRequest{
			Internal: []dto.RecordInput{
				{Date: "2025-01-01", Amount: "100.00", Description: "Supplier payment"},
			},
			External: []dto.RecordInput{
				{Date: "2025-01-01", Amount: "100.00", Description: "Supplier payment"},
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", body)
		rec := httptest.NewRecorder()
		h.Reconcile(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
