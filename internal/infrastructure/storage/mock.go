package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Sohaniboston/Smart-Recon/internal/application/recon"
	"github.com/Sohaniboston/Smart-Recon/internal/domain/exceptions"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu         sync.Mutex
	runs       map[string]ReconRun
	matches    map[string][]MatchRow
	exceptions map[string][]ExceptionRow

	// SaveSessionErr forces SaveSession to fail when set.
	SaveSessionErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:       make(map[string]ReconRun),
		matches:    make(map[string][]MatchRow),
		exceptions: make(map[string][]ExceptionRow),
	}
}

func (m *MockRepository) SaveSession(session *recon.Session) error {
	if m.SaveSessionErr != nil {
		return m.SaveSessionErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	runID := session.ID.String()
	statsJSON, _ := json.Marshal(session.Stats)
	var suggestionsJSON []byte
	if session.Exceptions != nil {
		suggestionsJSON, _ = json.Marshal(session.Exceptions.Suggestions)
	}

	m.runs[runID] = ReconRun{
		ID:                runID,
		StartedAt:         session.StartedAt.Format(time.RFC3339),
		CompletedAt:       session.CompletedAt.Format(time.RFC3339),
		Status:            "completed",
		InternalCount:     session.Stats.TotalInternal,
		ExternalCount:     session.Stats.TotalExternal,
		MatchCount:        session.Stats.TotalMatches,
		ExceptionCount:    session.Stats.TotalExceptions,
		InternalMatchRate: session.Stats.InternalMatchRate,
		ExternalMatchRate: session.Stats.ExternalMatchRate,
		StatsJSON:         string(statsJSON),
		SuggestionsJSON:   string(suggestionsJSON),
	}

	for i, match := range session.Matches {
		internalJSON, _ := json.Marshal(match.Internal)
		externalJSON, _ := json.Marshal(match.External)
		criteriaJSON, _ := json.Marshal(match.Criteria)
		m.matches[runID] = append(m.matches[runID], MatchRow{
			ID:            int64(i + 1),
			RunID:         runID,
			Strategy:      string(match.Strategy),
			Confidence:    match.Confidence,
			InternalIndex: match.Internal.OriginalIndex,
			ExternalIndex: match.External.OriginalIndex,
			InternalJSON:  string(internalJSON),
			ExternalJSON:  string(externalJSON),
			CriteriaJSON:  string(criteriaJSON),
		})
	}

	if session.Exceptions != nil {
		id := int64(0)
		all := make([]exceptions.Exception, 0, len(session.Exceptions.Internal)+len(session.Exceptions.External))
		all = append(all, session.Exceptions.Internal...)
		all = append(all, session.Exceptions.External...)
		for _, e := range all {
			id++
			recordJSON, _ := json.Marshal(e.Record)
			characteristicsJSON, _ := json.Marshal(e.Characteristics)
			m.exceptions[runID] = append(m.exceptions[runID], ExceptionRow{
				ID:                  id,
				RunID:               runID,
				Origin:              string(e.Record.Origin),
				Index:               e.Record.OriginalIndex,
				Category:            string(e.Category),
				Confidence:          e.Confidence,
				RecordJSON:          string(recordJSON),
				CharacteristicsJSON: string(characteristicsJSON),
			})
		}
	}
	return nil
}

func (m *MockRepository) GetRun(runID string) (*ReconRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return &run, nil
}

func (m *MockRepository) ListRuns(filters RunFilters) ([]ReconRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []ReconRun
	for _, run := range m.runs {
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(a, b int) bool {
		return runs[a].StartedAt > runs[b].StartedAt
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if filters.Offset < len(runs) {
		runs = runs[filters.Offset:]
	} else {
		runs = nil
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MockRepository) ListMatches(runID string, filters MatchFilters) ([]MatchRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []MatchRow
	for _, row := range m.matches[runID] {
		if filters.Strategy != "" && row.Strategy != filters.Strategy {
			continue
		}
		if filters.MinConfidence > 0 && row.Confidence < filters.MinConfidence {
			continue
		}
		out = append(out, row)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	if filters.Offset < len(out) {
		out = out[filters.Offset:]
	} else {
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) ListExceptions(runID string, category string) ([]ExceptionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ExceptionRow
	for _, row := range m.exceptions[runID] {
		if category != "" && row.Category != category {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *MockRepository) Close() error {
	return nil
}
