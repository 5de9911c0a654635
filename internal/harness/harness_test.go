package harness

import (
	"bytes"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"onemax/internal/ga"
)

func smallConfig() ga.Config {
	cfg := ga.DefaultConfig()
	cfg.PopulationSize = 20
	cfg.ChromosomeLength = 16
	cfg.MaxGenerations = 50
	return cfg
}

func TestRunTestsReturnsOneTimePerRun(t *testing.T) {
	var out bytes.Buffer
	h, err := New(smallConfig(), "Go", rand.New(rand.NewSource(42)), &out)
	if err != nil {
		t.Fatalf("new harness: %v", err)
	}

	times, err := h.RunTests(5)
	if err != nil {
		t.Fatalf("run tests: %v", err)
	}
	if len(times) != 5 {
		t.Fatalf("times length: got %d want 5", len(times))
	}
	for i, elapsed := range times {
		if elapsed < 0 {
			t.Fatalf("run %d elapsed negative: %f", i+1, elapsed)
		}
	}
}

func TestRunTranscriptFormat(t *testing.T) {
	var out bytes.Buffer
	h, err := New(smallConfig(), "Go", rand.New(rand.NewSource(7)), &out)
	if err != nil {
		t.Fatalf("new harness: %v", err)
	}
	if _, err := h.Run(5); err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	if len(lines) != 6 {
		t.Fatalf("transcript line count: got %d want 6\n%q", len(lines), out.String())
	}
	if lines[0] != "Go One-Max GA Performance Test" {
		t.Fatalf("banner: %q", lines[0])
	}
	if lines[1] != "Running 5 tests..." {
		t.Fatalf("run announcement: %q", lines[1])
	}
	if got := strings.Count(lines[2], "\rRun "); got != 5 {
		t.Fatalf("progress updates: got %d want 5 in %q", got, lines[2])
	}
	if !strings.HasPrefix(lines[2], "\rRun 1: ") || !strings.HasSuffix(lines[2], " ms") {
		t.Fatalf("progress segment: %q", lines[2])
	}
	if lines[3] != "Completed 5 runs" {
		t.Fatalf("completion line: %q", lines[3])
	}
	if lines[5] != "" {
		t.Fatalf("trailing content after CSV row: %q", lines[5])
	}

	fields := strings.Split(lines[4], ",")
	if len(fields) != 6 {
		t.Fatalf("csv field count: got %d want 6 in %q", len(fields), lines[4])
	}
	if fields[0] != "go" {
		t.Fatalf("csv language id: %q", fields[0])
	}
	for i, field := range fields[1:] {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			t.Fatalf("csv field %d not a float: %q", i+1, field)
		}
		if value < 0 {
			t.Fatalf("csv field %d negative: %q", i+1, field)
		}
		parts := strings.Split(field, ".")
		if len(parts) != 2 || len(parts[1]) != 6 {
			t.Fatalf("csv field %d precision: %q", i+1, field)
		}
	}
}

func TestBenchmarkSingleRunSample(t *testing.T) {
	cfg := smallConfig()
	h, err := New(cfg, "Go", rand.New(rand.NewSource(11)), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new harness: %v", err)
	}

	sample, err := h.BenchmarkSingleRun()
	if err != nil {
		t.Fatalf("benchmark single run: %v", err)
	}
	if sample.Generations < 1 || sample.Generations > cfg.MaxGenerations {
		t.Fatalf("generations out of range: %d", sample.Generations)
	}
	if sample.BestFitness < 0 || sample.BestFitness > cfg.ChromosomeLength {
		t.Fatalf("best fitness out of range: %d", sample.BestFitness)
	}
	if sample.ElapsedMS < 0 {
		t.Fatalf("elapsed negative: %f", sample.ElapsedMS)
	}
}

func TestRunRejectsNonPositiveCount(t *testing.T) {
	h, err := New(smallConfig(), "Go", rand.New(rand.NewSource(1)), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new harness: %v", err)
	}
	if _, err := h.Run(0); err == nil {
		t.Fatal("expected error for zero runs")
	}
	if _, err := h.RunTests(-3); err == nil {
		t.Fatal("expected error for negative runs")
	}
}

func TestNewNormalizesLanguage(t *testing.T) {
	cases := map[string]struct {
		display string
		id      string
	}{
		"":       {display: "Go", id: "go"},
		"golang": {display: "Go", id: "go"},
		"C#":     {display: "C#", id: "csharp"},
		"Julia":  {display: "Julia", id: "julia"},
	}
	for input, want := range cases {
		h, err := New(smallConfig(), input, rand.New(rand.NewSource(1)), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("new harness for %q: %v", input, err)
		}
		if h.Language() != want.display {
			t.Fatalf("language(%q)=%q want=%q", input, h.Language(), want.display)
		}
		if h.LanguageID() != want.id {
			t.Fatalf("language id(%q)=%q want=%q", input, h.LanguageID(), want.id)
		}
	}
}

func TestCSVLine(t *testing.T) {
	if got := CSVLine("go", []float64{1.5, 2.25}); got != "go,1.500000,2.250000" {
		t.Fatalf("csv line: %q", got)
	}
	if got := CSVLine("julia", nil); got != "julia" {
		t.Fatalf("empty csv line: %q", got)
	}
}

func TestTimesMSKeepsRunOrder(t *testing.T) {
	samples := []Sample{{ElapsedMS: 3.5}, {ElapsedMS: 1.25}, {ElapsedMS: 2}}
	times := TimesMS(samples)
	want := []float64{3.5, 1.25, 2}
	if len(times) != len(want) {
		t.Fatalf("times length: got %d want %d", len(times), len(want))
	}
	for i := range want {
		if times[i] != want[i] {
			t.Fatalf("times[%d]=%f want=%f", i, times[i], want[i])
		}
	}
}
