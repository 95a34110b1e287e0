package dto

import (
	"encoding/json"
	"time"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RunResponse is one reconciliation run summary.
type RunResponse struct {
	ID          string `json:"id"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	Status      string `json:"status"`

	InternalCount  int `json:"internal_count"`
	ExternalCount  int `json:"external_count"`
	MatchCount     int `json:"match_count"`
	ExceptionCount int `json:"exception_count"`

	InternalMatchRate float64 `json:"internal_match_rate"`
	ExternalMatchRate float64 `json:"external_match_rate"`
}

// RunDetailResponse includes the full stats and suggestions payloads.
type RunDetailResponse struct {
	RunResponse
	Stats       json.RawMessage `json:"stats,omitempty"`
	Suggestions json.RawMessage `json:"suggestions,omitempty"`
}

// RunListResponse is a paginated list of runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// MatchResponse is one persisted match with its record payloads.
type MatchResponse struct {
	ID         int64   `json:"id"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`

	Internal json.RawMessage `json:"internal"`
	External json.RawMessage `json:"external"`
	Criteria json.RawMessage `json:"criteria,omitempty"`
}

// MatchListResponse is a run's matches.
type MatchListResponse struct {
	RunID   string          `json:"run_id"`
	Matches []MatchResponse `json:"matches"`
	Count   int             `json:"count"`
}

// ExceptionResponse is one categorized unmatched record.
type ExceptionResponse struct {
	ID         int64   `json:"id"`
	Origin     string  `json:"origin"`
	Index      int     `json:"record_index"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`

	Record          json.RawMessage `json:"record"`
	Characteristics json.RawMessage `json:"characteristics,omitempty"`
}

// ExceptionListResponse is a run's exceptions.
type ExceptionListResponse struct {
	RunID      string              `json:"run_id"`
	Exceptions []ExceptionResponse `json:"exceptions"`
	Count      int                 `json:"count"`
}

// AggregateStatsResponse is the totals view across recent runs.
type AggregateStatsResponse struct {
	TotalRuns       int `json:"total_runs"`
	TotalRecords    int `json:"total_records"`
	TotalMatches    int `json:"total_matches"`
	TotalExceptions int `json:"total_exceptions"`

	AverageInternalMatchRate float64 `json:"average_internal_match_rate"`
	AverageExternalMatchRate float64 `json:"average_external_match_rate"`
}

// ReconcileResponse summarizes a freshly executed run.
type ReconcileResponse struct {
	RunID          string          `json:"run_id"`
	MatchCount     int             `json:"match_count"`
	ExceptionCount int             `json:"exception_count"`
	Stats          json.RawMessage `json:"stats"`
}
