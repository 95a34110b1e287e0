package storage

// ReconRun is one persisted reconciliation run summary. Timestamps are
// stored as RFC 3339 strings; heavy payloads live in the JSON columns.
type ReconRun struct {
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

	// StatsJSON is the serialized session statistics for the run.
	StatsJSON string `json:"stats_json,omitempty"`

	// SuggestionsJSON holds the exception report's resolution
	// suggestions.
	SuggestionsJSON string `json:"suggestions_json,omitempty"`
}

// MatchRow is one persisted match.
type MatchRow struct {
	ID         int64   `json:"id"`
	RunID      string  `json:"run_id"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`

	InternalIndex int `json:"internal_index"`
	ExternalIndex int `json:"external_index"`

	InternalJSON string `json:"internal_json"`
	ExternalJSON string `json:"external_json"`
	CriteriaJSON string `json:"criteria_json,omitempty"`
}

// ExceptionRow is one persisted unmatched record with its
// classification.
type ExceptionRow struct {
	ID         int64   `json:"id"`
	RunID      string  `json:"run_id"`
	Origin     string  `json:"origin"`
	Index      int     `json:"record_index"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`

	RecordJSON          string `json:"record_json"`
	CharacteristicsJSON string `json:"characteristics_json,omitempty"`
}

// RunFilters narrows ListRuns results.
type RunFilters struct {
	Status string // empty = all
	Limit  int    // 0 = default 50
	Offset int
}

// MatchFilters narrows ListMatches results.
type MatchFilters struct {
	Strategy      string  // empty = all
	MinConfidence float64 // 0 = all
	Limit         int     // 0 = default 100
	Offset        int
}
