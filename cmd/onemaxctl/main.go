package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"onemax/internal/ga"
	"onemax/internal/harness"
	"onemax/internal/platform"
	"onemax/internal/stats"
	"onemax/internal/storage"
	onemaxapi "onemax/pkg/onemax"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "bench":
		return runBench(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "results":
		return runResults(ctx, args[1:])
	case "langs":
		return runLangs(ctx, args[1:])
	case "experiment":
		return runExperiment(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	lab := platform.NewLab(platform.Config{Store: store})
	if err := lab.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s evaluators=%v\n", *storeKind, lab.RegisteredEvaluators())
	return nil
}

func runBench(ctx context.Context, args []string) error {
	gaDefaults := ga.DefaultConfig()
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional suite config INI path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	runs := fs.Int("runs", harness.DefaultRunCount, "timed GA runs in the session")
	language := fs.String("language", "Go", "language label for the transcript and CSV row")
	seed := fs.Int64("seed", 0, "rng seed (0 seeds from the wall clock)")
	notes := fs.String("notes", "", "notes stored with the run record")
	pop := fs.Int("pop", gaDefaults.PopulationSize, "population size")
	length := fs.Int("length", gaDefaults.ChromosomeLength, "chromosome length")
	gens := fs.Int("gens", gaDefaults.MaxGenerations, "generation limit")
	crossoverRate := fs.Float64("crossover-rate", gaDefaults.CrossoverRate, "crossover probability")
	mutationRate := fs.Float64("mutation-rate", gaDefaults.MutationRate, "per-gene mutation probability")
	tournamentSize := fs.Int("tournament-size", gaDefaults.TournamentSize, "tournament pool size")
	quiet := fs.Bool("quiet", false, "suppress the benchmark transcript")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	cfg, err := suiteConfigFromFlags(*configPath, setFlags, map[string]any{
		"runs":            *runs,
		"language":        *language,
		"seed":            *seed,
		"pop":             *pop,
		"length":          *length,
		"gens":            *gens,
		"crossover-rate":  *crossoverRate,
		"mutation-rate":   *mutationRate,
		"tournament-size": *tournamentSize,
		"store":           *storeKind,
		"db-path":         *dbPath,
	})
	if err != nil {
		return err
	}

	client, err := onemaxapi.New(onemaxapi.Options{
		StoreKind:    cfg.Storage.Backend,
		DBPath:       cfg.Storage.Path,
		ArtifactsDir: cfg.Artifacts.Dir,
		ExportsDir:   cfg.Artifacts.ExportsDir,
		Language:     cfg.Benchmark.Language,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Benchmark(ctx, onemaxapi.BenchmarkRequest{
		RunID:  *runID,
		Config: cfg.GA.ToGAConfig(),
		Runs:   cfg.Benchmark.Runs,
		Seed:   cfg.Benchmark.Seed,
		Notes:  *notes,
		Quiet:  *quiet,
	})
	if err != nil {
		return err
	}

	fmt.Printf("benchmark run_id=%s language=%s language_id=%s runs=%d best_fitness=%d total_ms=%.6f mean_ms=%.6f median_ms=%.6f std_ms=%.6f min_ms=%.6f max_ms=%.6f\n",
		summary.RunID,
		summary.Language,
		summary.LanguageID,
		summary.Runs,
		summary.BestFitness,
		summary.Timing.TotalMS,
		summary.Timing.MeanMS,
		summary.Timing.MedianMS,
		summary.Timing.StdMS,
		summary.Timing.MinMS,
		summary.Timing.MaxMS,
	)
	fmt.Printf("record=%s\n", filepath.Join(summary.ArtifactsDir, "record.json"))
	return nil
}

func runRun(ctx context.Context, args []string) error {
	gaDefaults := ga.DefaultConfig()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional suite config INI path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	evaluator := fs.String("evaluator", "", "registered evaluator name (default onemax)")
	language := fs.String("language", "Go", "language label stored with the record")
	seed := fs.Int64("seed", 0, "rng seed (0 seeds from the wall clock)")
	notes := fs.String("notes", "", "notes stored with the run record")
	pop := fs.Int("pop", gaDefaults.PopulationSize, "population size")
	length := fs.Int("length", gaDefaults.ChromosomeLength, "chromosome length")
	gens := fs.Int("gens", gaDefaults.MaxGenerations, "generation limit")
	crossoverRate := fs.Float64("crossover-rate", gaDefaults.CrossoverRate, "crossover probability")
	mutationRate := fs.Float64("mutation-rate", gaDefaults.MutationRate, "per-gene mutation probability")
	tournamentSize := fs.Int("tournament-size", gaDefaults.TournamentSize, "tournament pool size")
	progress := fs.Bool("progress", false, "print per-generation best fitness")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	cfg, err := suiteConfigFromFlags(*configPath, setFlags, map[string]any{
		"language":        *language,
		"seed":            *seed,
		"pop":             *pop,
		"length":          *length,
		"gens":            *gens,
		"crossover-rate":  *crossoverRate,
		"mutation-rate":   *mutationRate,
		"tournament-size": *tournamentSize,
		"store":           *storeKind,
		"db-path":         *dbPath,
	})
	if err != nil {
		return err
	}

	client, err := onemaxapi.New(onemaxapi.Options{
		StoreKind:    cfg.Storage.Backend,
		DBPath:       cfg.Storage.Path,
		ArtifactsDir: cfg.Artifacts.Dir,
		ExportsDir:   cfg.Artifacts.ExportsDir,
		Language:     cfg.Benchmark.Language,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Run(ctx, onemaxapi.RunRequest{
		RunID:     *runID,
		Config:    cfg.GA.ToGAConfig(),
		Evaluator: *evaluator,
		Seed:      cfg.Benchmark.Seed,
		Notes:     *notes,
	})
	if err != nil {
		return err
	}

	if *progress {
		for i, best := range result.BestByGeneration {
			fmt.Printf("generation=%d best_fitness=%d\n", i+1, best)
		}
	}
	fmt.Printf("run run_id=%s generations=%d best_fitness=%d solved=%t elapsed_ms=%.3f\n",
		result.RunID,
		result.Generations,
		result.BestFitness,
		result.Solved,
		result.ElapsedMS,
	)
	fmt.Printf("record=%s\n", filepath.Join(result.ArtifactsDir, "record.json"))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	languageFilter := fs.String("language", "", "only list runs for this language")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := onemaxapi.New(onemaxapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: benchmarksDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, onemaxapi.RunsRequest{
		Limit:    *limit,
		Language: *languageFilter,
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		type runsItem struct {
			RunID        string  `json:"run_id"`
			CreatedAtUTC string  `json:"created_at_utc"`
			Language     string  `json:"language"`
			LanguageID   string  `json:"language_id"`
			Runs         int     `json:"runs"`
			BestFitness  int     `json:"best_fitness"`
			FastestMS    float64 `json:"fastest_ms"`
			MeanMS       float64 `json:"mean_ms"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem{
				RunID:        item.RunID,
				CreatedAtUTC: item.CreatedAtUTC,
				Language:     item.Language,
				LanguageID:   item.LanguageID,
				Runs:         item.Runs,
				BestFitness:  item.BestFitness,
				FastestMS:    item.FastestMS,
				MeanMS:       item.MeanMS,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, item := range items {
		age := "n/a"
		if created, err := time.Parse(time.RFC3339Nano, item.CreatedAtUTC); err == nil {
			age = humanize.Time(created)
		}
		fmt.Printf("run_id=%s created_at=%s age=%s language=%s runs=%d best_fitness=%d fastest_ms=%.6f mean_ms=%.6f\n",
			item.RunID,
			item.CreatedAtUTC,
			age,
			item.LanguageID,
			item.Runs,
			item.BestFitness,
			item.FastestMS,
			item.MeanMS,
		)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the most recent run from run index")
	jsonOut := fs.Bool("json", false, "emit run record as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("show requires --run-id or --latest")
	}

	client, err := onemaxapi.New(onemaxapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: benchmarksDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	record, err := client.RunRecord(ctx, onemaxapi.RunRecordRequest{
		RunID:  *runID,
		Latest: *latest,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	best := 0
	for _, outcome := range record.Outcomes {
		if outcome.BestFitness > best {
			best = outcome.BestFitness
		}
	}
	timing := stats.SummarizeTimings(record.TimingsMS)
	fmt.Printf("run_id=%s created_at=%s language=%s language_id=%s seed=%d runs=%d best_fitness=%d target=%d mean_ms=%.6f median_ms=%.6f std_ms=%.6f min_ms=%.6f max_ms=%.6f\n",
		record.RunID,
		record.CreatedAtUTC,
		record.Language,
		record.LanguageID,
		record.Seed,
		len(record.TimingsMS),
		best,
		record.Config.ChromosomeLength,
		timing.MeanMS,
		timing.MedianMS,
		timing.StdMS,
		timing.MinMS,
		timing.MaxMS,
	)
	for i, outcome := range record.Outcomes {
		fmt.Printf("run=%d generations=%d best_fitness=%d elapsed_ms=%.6f\n",
			i+1,
			outcome.Generations,
			outcome.BestFitness,
			outcome.ElapsedMS,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness series for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness series as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}

	client, err := onemaxapi.New(onemaxapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: benchmarksDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	series, err := client.FitnessSeries(ctx, onemaxapi.FitnessSeriesRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(series) == 0 {
		fmt.Println("no fitness series")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	}

	for i, bestFitness := range series {
		fmt.Printf("generation=%d best_fitness=%d\n", i+1, bestFitness)
	}
	return nil
}

func runExport(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}
	if *latest {
		entries, err := stats.ListRunIndex(benchmarksDir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no runs available to export")
		}
		*runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(benchmarksDir, *runID, *outDir)
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", *runID, filepath.Clean(exportedDir))
	return nil
}

func runResults(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("results", flag.ContinueOnError)
	languageFilter := fs.String("language", "", "only include runs for this language")
	outFile := fs.String("out", "", "output path (defaults under the exports directory)")
	format := fs.String("format", "csv", "output format: csv|jsonl")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := onemaxapi.New(onemaxapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: benchmarksDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.ExportResults(ctx, onemaxapi.ExportResultsRequest{
		Language: *languageFilter,
		OutFile:  *outFile,
		Format:   *format,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported results records=%d to=%s\n", summary.Records, filepath.Clean(summary.Path))
	return nil
}

func runLangs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("langs", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit language summaries as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "onemax.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := onemaxapi.New(onemaxapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: benchmarksDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summaries, err := client.LanguageSummaries(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no language summaries")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	for _, summary := range summaries {
		fmt.Printf("language_id=%s language=%s sessions=%d best_fitness=%d fastest_ms=%.6f\n",
			summary.LanguageID,
			summary.Language,
			summary.Sessions,
			summary.BestFitness,
			summary.FastestMS,
		)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: onemaxctl <init|bench|run|runs|show|fitness|export|results|langs|experiment> [flags]", msg)
}
