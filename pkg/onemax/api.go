package onemax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"onemax/internal/ga"
	"onemax/internal/langid"
	"onemax/internal/model"
	"onemax/internal/platform"
	"onemax/internal/stats"
	"onemax/internal/storage"
)

const (
	defaultArtifactsDir = "benchmarks"
	defaultExportsDir   = "exports"
	defaultDBPath       = "onemax.db"
	defaultLanguage     = "Go"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	Language     string
}

type Client struct {
	store storage.Store
	lab   *platform.Lab

	artifactsDir string
	exportsDir   string
	language     string
}

type BenchmarkRequest struct {
	RunID    string
	Config   ga.Config
	Language string
	Runs     int
	Seed     int64
	Notes    string
	Out      io.Writer
	Quiet    bool
}

type BenchmarkSummary struct {
	RunID        string
	ArtifactsDir string
	Language     string
	LanguageID   string
	Runs         int
	BestFitness  int
	Timing       stats.TimingSummary
	TimesMS      []float64
}

type RunRequest struct {
	RunID     string
	Config    ga.Config
	Language  string
	Evaluator string
	Seed      int64
	Notes     string
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	Generations      int
	BestFitness      int
	ElapsedMS        float64
	BestByGeneration []int
	Solved           bool
}

type RunsRequest struct {
	Limit    int
	Language string
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Language     string
	LanguageID   string
	Runs         int
	BestFitness  int
	FastestMS    float64
	MeanMS       float64
}

type RunRecordRequest struct {
	RunID  string
	Latest bool
}

type FitnessSeriesRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type ExportResultsRequest struct {
	Language string
	OutFile  string
	Format   string
}

type ExportResultsSummary struct {
	Path    string
	Records int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	language := opts.Language
	if language == "" {
		language = defaultLanguage
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
		language:     language,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureLab(ctx)
	return err
}

func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkSummary, error) {
	if req.Language == "" {
		req.Language = c.language
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	out := req.Out
	if req.Quiet {
		out = io.Discard
	}

	lab, err := c.ensureLab(ctx)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	record, err := lab.RunBenchmark(ctx, platform.BenchmarkConfig{
		RunID:    runID,
		GA:       req.Config,
		Language: req.Language,
		Runs:     req.Runs,
		Seed:     req.Seed,
		Notes:    req.Notes,
		Out:      out,
	})
	if err != nil {
		return BenchmarkSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, record)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.NewRunIndexEntry(record)); err != nil {
		return BenchmarkSummary{}, err
	}

	best := 0
	for _, outcome := range record.Outcomes {
		if outcome.BestFitness > best {
			best = outcome.BestFitness
		}
	}
	return BenchmarkSummary{
		RunID:        record.RunID,
		ArtifactsDir: filepath.Clean(runDir),
		Language:     record.Language,
		LanguageID:   record.LanguageID,
		Runs:         len(record.TimingsMS),
		BestFitness:  best,
		Timing:       stats.SummarizeTimings(record.TimingsMS),
		TimesMS:      append([]float64(nil), record.TimingsMS...),
	}, nil
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Language == "" {
		req.Language = c.language
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	lab, err := c.ensureLab(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	record, err := lab.RunGA(ctx, platform.GARunConfig{
		RunID:     runID,
		GA:        req.Config,
		Language:  req.Language,
		Evaluator: req.Evaluator,
		Seed:      req.Seed,
		Notes:     req.Notes,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, record)
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.NewRunIndexEntry(record)); err != nil {
		return RunSummary{}, err
	}

	outcome := record.Outcomes[0]
	return RunSummary{
		RunID:            record.RunID,
		ArtifactsDir:     filepath.Clean(runDir),
		Generations:      outcome.Generations,
		BestFitness:      outcome.BestFitness,
		ElapsedMS:        outcome.ElapsedMS,
		BestByGeneration: append([]int(nil), record.BestByGeneration...),
		Solved:           outcome.BestFitness >= record.Config.ChromosomeLength,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if req.Language != "" {
		languageID := langid.ID(req.Language)
		filtered := make([]stats.RunIndexEntry, 0, len(entries))
		for _, e := range entries {
			if e.LanguageID == languageID {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Language:     e.Language,
			LanguageID:   e.LanguageID,
			Runs:         e.Runs,
			BestFitness:  e.BestFitness,
			FastestMS:    e.FastestMS,
			MeanMS:       e.MeanMS,
		})
	}
	return out, nil
}

func (c *Client) RunRecord(ctx context.Context, req RunRecordRequest) (model.RunRecord, error) {
	if req.RunID != "" && req.Latest {
		return model.RunRecord{}, errors.New("use either run id or latest")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.artifactsDir)
		if err != nil {
			return model.RunRecord{}, err
		}
		if len(entries) == 0 {
			return model.RunRecord{}, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return model.RunRecord{}, errors.New("run record requires run id or latest")
	}

	record, ok, err := c.fetchRunRecord(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run record not found for run id: %s", runID)
	}
	return record, nil
}

func (c *Client) FitnessSeries(ctx context.Context, req FitnessSeriesRequest) ([]int, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.artifactsDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("fitness series requires run id or latest")
	}

	record, ok, err := c.fetchRunRecord(ctx, runID)
	if err != nil {
		return nil, err
	}
	series := record.BestByGeneration
	if !ok || len(series) == 0 {
		fromArtifact, found, err := stats.ReadFitnessSeries(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("fitness series not found for run id: %s", runID)
		}
		series = fromArtifact
	}
	if req.Limit > 0 && len(series) > req.Limit {
		series = series[:req.Limit]
	}
	return append([]int(nil), series...), nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.artifactsDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) ExportResults(ctx context.Context, req ExportResultsRequest) (ExportResultsSummary, error) {
	format := req.Format
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "jsonl" {
		return ExportResultsSummary{}, fmt.Errorf("unsupported export format: %s", format)
	}

	if _, err := c.ensureLab(ctx); err != nil {
		return ExportResultsSummary{}, err
	}
	languageID := ""
	if req.Language != "" {
		languageID = langid.ID(req.Language)
	}
	records, err := c.store.ListRuns(ctx, languageID)
	if err != nil {
		return ExportResultsSummary{}, err
	}
	if len(records) == 0 {
		return ExportResultsSummary{}, errors.New("no runs available to export")
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	path := req.OutFile
	if path == "" {
		name := "results.csv"
		if format == "jsonl" {
			name = "results.jsonl"
		}
		path = filepath.Join(c.exportsDir, name)
	}

	if format == "jsonl" {
		err = stats.WriteRunRecordsJSONL(path, records)
	} else {
		err = stats.WriteResultsCSV(path, records)
	}
	if err != nil {
		return ExportResultsSummary{}, err
	}
	return ExportResultsSummary{Path: filepath.Clean(path), Records: len(records)}, nil
}

func (c *Client) LanguageSummaries(ctx context.Context) ([]model.LanguageSummary, error) {
	if _, err := c.ensureLab(ctx); err != nil {
		return nil, err
	}
	return c.store.ListLanguageSummaries(ctx)
}

func (c *Client) fetchRunRecord(ctx context.Context, runID string) (model.RunRecord, bool, error) {
	if _, err := c.ensureLab(ctx); err != nil {
		return model.RunRecord{}, false, err
	}
	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, false, err
	}
	if ok {
		return record, true, nil
	}
	return stats.ReadRunRecordArtifact(c.artifactsDir, runID)
}

func (c *Client) ensureLab(ctx context.Context) (*platform.Lab, error) {
	if c.lab != nil {
		return c.lab, nil
	}
	l := platform.NewLab(platform.Config{Store: c.store})
	if err := l.Init(ctx); err != nil {
		return nil, err
	}
	c.lab = l
	return c.lab, nil
}
