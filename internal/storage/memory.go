package storage

import (
	"context"
	"sort"
	"sync"

	"onemax/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	summaries   map[string]model.LanguageSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.summaries = make(map[string]model.LanguageSummary)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, record model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[record.RunID] = copyRunRecord(record)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[runID]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	return copyRunRecord(record), true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, languageID string) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		if languageID != "" && record.LanguageID != languageID {
			continue
		}
		records = append(records, copyRunRecord(record))
	}
	sortRunsNewestFirst(records)
	return records, nil
}

func (s *MemoryStore) SaveLanguageSummary(_ context.Context, summary model.LanguageSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[summary.LanguageID] = summary
	return nil
}

func (s *MemoryStore) GetLanguageSummary(_ context.Context, languageID string) (model.LanguageSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[languageID]
	return summary, ok, nil
}

func (s *MemoryStore) ListLanguageSummaries(_ context.Context) ([]model.LanguageSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.LanguageSummary, 0, len(s.summaries))
	for _, summary := range s.summaries {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LanguageID < summaries[j].LanguageID
	})
	return summaries, nil
}

func copyRunRecord(r model.RunRecord) model.RunRecord {
	r.Outcomes = append([]model.RunOutcome(nil), r.Outcomes...)
	r.TimingsMS = append([]float64(nil), r.TimingsMS...)
	r.BestByGeneration = append([]int(nil), r.BestByGeneration...)
	return r
}

func sortRunsNewestFirst(records []model.RunRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAtUTC != records[j].CreatedAtUTC {
			return records[i].CreatedAtUTC > records[j].CreatedAtUTC
		}
		return records[i].RunID < records[j].RunID
	})
}
