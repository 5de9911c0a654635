package onemax

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"onemax/internal/ga"
)

func smallConfig() ga.Config {
	return ga.Config{
		PopulationSize:   20,
		ChromosomeLength: 16,
		MaxGenerations:   50,
		CrossoverRate:    0.8,
		MutationRate:     0.01,
		TournamentSize:   3,
	}
}

func TestClientBenchmarkRunsAndExport(t *testing.T) {
	base := t.TempDir()
	artifactsDir := filepath.Join(base, "benchmarks")
	exportsDir := filepath.Join(base, "exports")

	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	var transcript bytes.Buffer
	summary, err := client.Benchmark(context.Background(), BenchmarkRequest{
		Config: smallConfig(),
		Runs:   3,
		Seed:   42,
		Out:    &transcript,
	})
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.Language != "Go" || summary.LanguageID != "go" {
		t.Fatalf("unexpected language identity: %q/%q", summary.Language, summary.LanguageID)
	}
	if summary.Runs != 3 || len(summary.TimesMS) != 3 {
		t.Fatalf("unexpected run counts: runs=%d times=%d", summary.Runs, len(summary.TimesMS))
	}
	if summary.Timing.Runs != 3 {
		t.Fatalf("unexpected timing summary runs: %d", summary.Timing.Runs)
	}
	if summary.BestFitness < 0 || summary.BestFitness > 16 {
		t.Fatalf("best fitness out of range: %d", summary.BestFitness)
	}
	if !strings.HasPrefix(transcript.String(), "Go One-Max GA Performance Test\n") {
		t.Fatalf("unexpected transcript head: %q", transcript.String())
	}
	if !strings.Contains(transcript.String(), "\ngo,") {
		t.Fatalf("expected csv row in transcript: %q", transcript.String())
	}

	for _, file := range []string{"record.json", "timings.csv"} {
		if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, file)); err != nil {
			t.Fatalf("expected artifact file %s: %v", file, err)
		}
	}

	runs, err := client.Runs(context.Background(), RunsRequest{Limit: 5})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) == 0 || runs[0].RunID != summary.RunID {
		t.Fatalf("expected latest run %s in runs list: %+v", summary.RunID, runs)
	}
	if runs[0].Runs != 3 {
		t.Fatalf("unexpected run count in listing: %d", runs[0].Runs)
	}

	record, err := client.RunRecord(context.Background(), RunRecordRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("run record: %v", err)
	}
	if record.RunID != summary.RunID || len(record.TimingsMS) != 3 {
		t.Fatalf("unexpected run record: %+v", record)
	}
	if record.Seed != 42 {
		t.Fatalf("expected fixed seed in record, got %d", record.Seed)
	}

	exported, err := client.Export(context.Background(), ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export latest: %v", err)
	}
	if exported.RunID != summary.RunID {
		t.Fatalf("exported run mismatch: got=%s want=%s", exported.RunID, summary.RunID)
	}
	for _, file := range []string{"record.json", "timings.csv"} {
		if _, err := os.Stat(filepath.Join(exported.Directory, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}

	results, err := client.ExportResults(context.Background(), ExportResultsRequest{})
	if err != nil {
		t.Fatalf("export results: %v", err)
	}
	if results.Records != 1 {
		t.Fatalf("expected 1 exported record, got %d", results.Records)
	}
	data, err := os.ReadFile(results.Path)
	if err != nil {
		t.Fatalf("read results csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one csv row, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "go,") {
		t.Fatalf("unexpected csv row: %q", lines[0])
	}
	if len(strings.Split(lines[0], ",")) != 4 {
		t.Fatalf("expected language id plus 3 times: %q", lines[0])
	}

	summaries, err := client.LanguageSummaries(context.Background())
	if err != nil {
		t.Fatalf("language summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].LanguageID != "go" || summaries[0].Sessions != 1 {
		t.Fatalf("unexpected language summaries: %+v", summaries)
	}
}

func TestClientBenchmarkQuietSuppressesTranscript(t *testing.T) {
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(base, "benchmarks"),
		ExportsDir:   filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	var transcript bytes.Buffer
	if _, err := client.Benchmark(context.Background(), BenchmarkRequest{
		Config: smallConfig(),
		Runs:   2,
		Seed:   7,
		Out:    &transcript,
		Quiet:  true,
	}); err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if transcript.Len() != 0 {
		t.Fatalf("expected quiet benchmark to write nothing, got %q", transcript.String())
	}
}

func TestClientRunSingleGA(t *testing.T) {
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(base, "benchmarks"),
		ExportsDir:   filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	summary, err := client.Run(context.Background(), RunRequest{
		Config: smallConfig(),
		Seed:   1234,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.Generations < 1 || summary.Generations > 50 {
		t.Fatalf("generations out of range: %d", summary.Generations)
	}
	if len(summary.BestByGeneration) != summary.Generations {
		t.Fatalf("unexpected history length: got=%d want=%d", len(summary.BestByGeneration), summary.Generations)
	}
	if summary.Solved != (summary.BestFitness >= 16) {
		t.Fatalf("solved flag inconsistent: solved=%v best=%d", summary.Solved, summary.BestFitness)
	}
	if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, "fitness_series.csv")); err != nil {
		t.Fatalf("expected fitness series artifact: %v", err)
	}

	series, err := client.FitnessSeries(context.Background(), FitnessSeriesRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("fitness series: %v", err)
	}
	if len(series) != summary.Generations {
		t.Fatalf("unexpected series length: got=%d want=%d", len(series), summary.Generations)
	}
	for i := range series {
		if series[i] != summary.BestByGeneration[i] {
			t.Fatalf("series diverged at generation %d: %d vs %d", i+1, series[i], summary.BestByGeneration[i])
		}
	}

	limited, err := client.FitnessSeries(context.Background(), FitnessSeriesRequest{Latest: true, Limit: 3})
	if err != nil {
		t.Fatalf("limited fitness series: %v", err)
	}
	if len(limited) > 3 {
		t.Fatalf("expected limited series, got %d entries", len(limited))
	}
}

func TestClientRunRejectsUnknownEvaluator(t *testing.T) {
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(base, "benchmarks"),
		ExportsDir:   filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	if _, err := client.Run(context.Background(), RunRequest{
		Config:    smallConfig(),
		Evaluator: "unknown",
		Seed:      1,
	}); err == nil {
		t.Fatal("expected unknown evaluator error")
	}
}

func TestClientReadsPersistedArtifactsAcrossClients(t *testing.T) {
	base := t.TempDir()
	artifactsDir := filepath.Join(base, "benchmarks")
	exportsDir := filepath.Join(base, "exports")

	first, err := New(Options{StoreKind: "memory", ArtifactsDir: artifactsDir, ExportsDir: exportsDir})
	if err != nil {
		t.Fatalf("new first client: %v", err)
	}
	summary, err := first.Run(context.Background(), RunRequest{Config: smallConfig(), Seed: 99})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close first client: %v", err)
	}

	second, err := New(Options{StoreKind: "memory", ArtifactsDir: artifactsDir, ExportsDir: exportsDir})
	if err != nil {
		t.Fatalf("new second client: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	runs, err := second.Runs(context.Background(), RunsRequest{})
	if err != nil {
		t.Fatalf("runs via second client: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID {
		t.Fatalf("expected persisted run listing, got %+v", runs)
	}

	record, err := second.RunRecord(context.Background(), RunRecordRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("run record via second client: %v", err)
	}
	if record.RunID != summary.RunID || len(record.BestByGeneration) != summary.Generations {
		t.Fatalf("unexpected record via artifact fallback: %+v", record)
	}

	series, err := second.FitnessSeries(context.Background(), FitnessSeriesRequest{Latest: true})
	if err != nil {
		t.Fatalf("fitness series via second client: %v", err)
	}
	if len(series) != summary.Generations {
		t.Fatalf("unexpected series via artifact fallback: len=%d", len(series))
	}
}

func TestClientRunsFilterByLanguage(t *testing.T) {
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(base, "benchmarks"),
		ExportsDir:   filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	if _, err := client.Benchmark(context.Background(), BenchmarkRequest{
		RunID: "session-go", Config: smallConfig(), Runs: 1, Seed: 1, Quiet: true,
	}); err != nil {
		t.Fatalf("go benchmark: %v", err)
	}
	if _, err := client.Benchmark(context.Background(), BenchmarkRequest{
		RunID: "session-julia", Config: smallConfig(), Language: "Julia", Runs: 1, Seed: 2, Quiet: true,
	}); err != nil {
		t.Fatalf("julia benchmark: %v", err)
	}

	all, err := client.Runs(context.Background(), RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(all))
	}

	julia, err := client.Runs(context.Background(), RunsRequest{Language: "Julia"})
	if err != nil {
		t.Fatalf("filtered runs: %v", err)
	}
	if len(julia) != 1 || julia[0].RunID != "session-julia" || julia[0].LanguageID != "julia" {
		t.Fatalf("unexpected filtered runs: %+v", julia)
	}

	limited, err := client.Runs(context.Background(), RunsRequest{Limit: 1})
	if err != nil {
		t.Fatalf("limited runs: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit applied, got %d", len(limited))
	}

	results, err := client.ExportResults(context.Background(), ExportResultsRequest{Language: "Julia", Format: "jsonl"})
	if err != nil {
		t.Fatalf("export julia results: %v", err)
	}
	if results.Records != 1 {
		t.Fatalf("expected 1 julia record, got %d", results.Records)
	}
	data, err := os.ReadFile(results.Path)
	if err != nil {
		t.Fatalf("read jsonl: %v", err)
	}
	if !strings.Contains(string(data), `"run_id":"session-julia"`) {
		t.Fatalf("expected julia session in jsonl: %q", string(data))
	}
}

func TestClientRequestValidation(t *testing.T) {
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(base, "benchmarks"),
		ExportsDir:   filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	if _, err := client.RunRecord(context.Background(), RunRecordRequest{RunID: "x", Latest: true}); err == nil {
		t.Fatal("expected run record to reject run id with latest")
	}
	if _, err := client.RunRecord(context.Background(), RunRecordRequest{}); err == nil {
		t.Fatal("expected run record to require run id or latest")
	}
	if _, err := client.RunRecord(context.Background(), RunRecordRequest{Latest: true}); err == nil {
		t.Fatal("expected latest run record to fail with no runs")
	}
	if _, err := client.FitnessSeries(context.Background(), FitnessSeriesRequest{RunID: "x", Limit: -1}); err == nil {
		t.Fatal("expected fitness series to reject negative limit")
	}
	if _, err := client.Export(context.Background(), ExportRequest{}); err == nil {
		t.Fatal("expected export to require run id or latest")
	}
	if _, err := client.Export(context.Background(), ExportRequest{Latest: true}); err == nil {
		t.Fatal("expected latest export to fail with no runs")
	}
	if _, err := client.ExportResults(context.Background(), ExportResultsRequest{Format: "xml"}); err == nil {
		t.Fatal("expected export results to reject unknown format")
	}
	if _, err := client.ExportResults(context.Background(), ExportResultsRequest{}); err == nil {
		t.Fatal("expected export results to fail with no runs")
	}
	if _, err := client.RunRecord(context.Background(), RunRecordRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected missing run record to fail")
	}
}
