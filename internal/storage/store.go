package storage

import (
	"context"

	"onemax/internal/model"
)

// Store defines persistence operations for benchmark runs and per-language
// summaries. ListRuns returns newest first; an empty languageID matches
// every language.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, record model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, languageID string) ([]model.RunRecord, error)
	SaveLanguageSummary(ctx context.Context, summary model.LanguageSummary) error
	GetLanguageSummary(ctx context.Context, languageID string) (model.LanguageSummary, bool, error)
	ListLanguageSummaries(ctx context.Context) ([]model.LanguageSummary, error)
}
