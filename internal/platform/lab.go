package platform

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"onemax/internal/ga"
	"onemax/internal/harness"
	"onemax/internal/langid"
	"onemax/internal/model"
	"onemax/internal/storage"
)

type Config struct {
	Store      storage.Store
	Evaluators []ga.Evaluator
}

type StopReason string

const (
	StopReasonNormal   StopReason = "normal"
	StopReasonShutdown StopReason = "shutdown"
)

type BenchmarkConfig struct {
	RunID    string
	GA       ga.Config
	Language string
	Runs     int
	Seed     int64
	Notes    string
	Out      io.Writer
}

type GARunConfig struct {
	RunID     string
	GA        ga.Config
	Language  string
	Evaluator string
	Seed      int64
	Notes     string
}

type Lab struct {
	store storage.Store

	mu sync.RWMutex

	evaluators     map[string]ga.Evaluator
	started        bool
	lastStopReason StopReason

	config Config
}

func NewLab(cfg Config) *Lab {
	return &Lab{
		store:          cfg.Store,
		evaluators:     make(map[string]ga.Evaluator),
		config:         cfg,
		lastStopReason: StopReasonNormal,
	}
}

func (l *Lab) Init(ctx context.Context) error {
	if l.store == nil {
		return fmt.Errorf("store is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}
	if err := l.store.Init(ctx); err != nil {
		return err
	}

	for i, eval := range l.config.Evaluators {
		if eval == nil {
			l.evaluators = make(map[string]ga.Evaluator)
			return fmt.Errorf("evaluator is nil at index %d", i)
		}
		name := eval.Name()
		if name == "" {
			l.evaluators = make(map[string]ga.Evaluator)
			return fmt.Errorf("evaluator name is required at index %d", i)
		}
		if _, exists := l.evaluators[name]; exists {
			l.evaluators = make(map[string]ga.Evaluator)
			return fmt.Errorf("duplicate evaluator: %s", name)
		}
		l.evaluators[name] = eval
	}
	defaultEval := ga.OneMax{}
	if _, exists := l.evaluators[defaultEval.Name()]; !exists {
		l.evaluators[defaultEval.Name()] = defaultEval
	}

	l.started = true
	return nil
}

func (l *Lab) Create(ctx context.Context) error {
	return l.Init(ctx)
}

func (l *Lab) RegisterEvaluator(eval ga.Evaluator) error {
	if eval == nil {
		return fmt.Errorf("evaluator is nil")
	}

	name := eval.Name()
	if name == "" {
		return fmt.Errorf("evaluator name is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return fmt.Errorf("lab is not initialized")
	}
	l.evaluators[name] = eval
	return nil
}

func (l *Lab) GetEvaluator(name string) (ga.Evaluator, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	eval, ok := l.evaluators[name]
	return eval, ok
}

func (l *Lab) RegisteredEvaluators() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.evaluators))
	for name := range l.evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Lab) Stop() {
	_ = l.StopWithReason(StopReasonNormal)
}

func (l *Lab) Shutdown() {
	_ = l.StopWithReason(StopReasonShutdown)
}

func (l *Lab) StopWithReason(reason StopReason) error {
	if reason == "" {
		reason = StopReasonNormal
	}
	if !isValidStopReason(reason) {
		return fmt.Errorf("unsupported stop reason: %s", reason)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = false
	l.lastStopReason = reason
	l.evaluators = make(map[string]ga.Evaluator)
	return nil
}

func (l *Lab) Started() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.started
}

func (l *Lab) LastStopReason() StopReason {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastStopReason
}

func (l *Lab) RunBenchmark(ctx context.Context, cfg BenchmarkConfig) (model.RunRecord, error) {
	if cfg.GA == (ga.Config{}) {
		cfg.GA = ga.DefaultConfig()
	}
	if cfg.Runs <= 0 {
		cfg.Runs = harness.DefaultRunCount
	}

	l.mu.RLock()
	started := l.started
	l.mu.RUnlock()
	if !started {
		return model.RunRecord{}, fmt.Errorf("lab is not initialized")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	h, err := harness.New(cfg.GA, cfg.Language, rng, cfg.Out)
	if err != nil {
		return model.RunRecord{}, err
	}
	samples, err := h.Run(cfg.Runs)
	if err != nil {
		return model.RunRecord{}, err
	}

	runID := cfg.RunID
	if runID == "" {
		runID = fmt.Sprintf("bench:%s:%d", h.LanguageID(), seed)
	}

	outcomes := make([]model.RunOutcome, 0, len(samples))
	for _, sample := range samples {
		outcomes = append(outcomes, model.RunOutcome{
			Generations: sample.Generations,
			BestFitness: sample.BestFitness,
			ElapsedMS:   sample.ElapsedMS,
		})
	}
	record := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:        runID,
		Language:     h.Language(),
		LanguageID:   h.LanguageID(),
		Config:       toModelConfig(cfg.GA),
		Seed:         seed,
		Outcomes:     outcomes,
		TimingsMS:    harness.TimesMS(samples),
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Notes:        cfg.Notes,
	}

	if err := l.store.SaveRun(ctx, record); err != nil {
		return model.RunRecord{}, err
	}
	if err := l.updateLanguageSummary(ctx, record); err != nil {
		return model.RunRecord{}, err
	}
	return record, nil
}

func (l *Lab) RunGA(ctx context.Context, cfg GARunConfig) (model.RunRecord, error) {
	if cfg.GA == (ga.Config{}) {
		cfg.GA = ga.DefaultConfig()
	}
	evalName := cfg.Evaluator
	if evalName == "" {
		evalName = ga.OneMax{}.Name()
	}
	language := cfg.Language
	if language == "" {
		language = "Go"
	}

	l.mu.RLock()
	eval, ok := l.evaluators[evalName]
	started := l.started
	l.mu.RUnlock()

	if !started {
		return model.RunRecord{}, fmt.Errorf("lab is not initialized")
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("evaluator not registered: %s", evalName)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	engine, err := ga.NewEngine(cfg.GA, eval, nil, rng)
	if err != nil {
		return model.RunRecord{}, err
	}

	start := time.Now()
	result, err := engine.Run()
	elapsed := time.Since(start)
	if err != nil {
		return model.RunRecord{}, err
	}
	elapsedMS := float64(elapsed.Nanoseconds()) / 1000000.0

	runID := cfg.RunID
	if runID == "" {
		runID = fmt.Sprintf("ga:%s:%d", evalName, seed)
	}

	record := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:      runID,
		Language:   langid.DisplayName(language),
		LanguageID: langid.ID(language),
		Config:     toModelConfig(cfg.GA),
		Seed:       seed,
		Outcomes: []model.RunOutcome{{
			Generations: result.Generations,
			BestFitness: result.BestFitness,
			ElapsedMS:   elapsedMS,
		}},
		TimingsMS:        []float64{elapsedMS},
		BestByGeneration: append([]int(nil), result.BestByGeneration...),
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339Nano),
		Notes:            cfg.Notes,
	}

	if err := l.store.SaveRun(ctx, record); err != nil {
		return model.RunRecord{}, err
	}
	if err := l.updateLanguageSummary(ctx, record); err != nil {
		return model.RunRecord{}, err
	}
	return record, nil
}

func (l *Lab) updateLanguageSummary(ctx context.Context, record model.RunRecord) error {
	summary, ok, err := l.store.GetLanguageSummary(ctx, record.LanguageID)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.LanguageSummary{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: storage.CurrentSchemaVersion,
				CodecVersion:  storage.CurrentCodecVersion,
			},
			Language:   record.Language,
			LanguageID: record.LanguageID,
		}
	}
	summary.Sessions++
	for _, outcome := range record.Outcomes {
		if outcome.BestFitness > summary.BestFitness {
			summary.BestFitness = outcome.BestFitness
		}
	}
	for _, elapsed := range record.TimingsMS {
		if summary.FastestMS == 0 || elapsed < summary.FastestMS {
			summary.FastestMS = elapsed
		}
	}
	return l.store.SaveLanguageSummary(ctx, summary)
}

func toModelConfig(cfg ga.Config) model.GAConfig {
	return model.GAConfig{
		PopulationSize:   cfg.PopulationSize,
		ChromosomeLength: cfg.ChromosomeLength,
		MaxGenerations:   cfg.MaxGenerations,
		CrossoverRate:    cfg.CrossoverRate,
		MutationRate:     cfg.MutationRate,
		TournamentSize:   cfg.TournamentSize,
	}
}

func isValidStopReason(reason StopReason) bool {
	switch reason {
	case StopReasonNormal, StopReasonShutdown:
		return true
	default:
		return false
	}
}
