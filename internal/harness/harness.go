// Package harness times repeated GA runs and reports them in the
// benchmark's line protocol: a banner, per-run progress updates, and a
// final CSV row keyed by language identifier.
package harness

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"onemax/internal/ga"
	"onemax/internal/langid"
)

// DefaultRunCount is the number of timed runs in the published
// benchmark protocol.
const DefaultRunCount = 25

// Sample is one timed GA run.
type Sample struct {
	ElapsedMS   float64
	Generations int
	BestFitness int
}

// Harness drives timed runs of a single engine. Every run draws from
// the same random stream, so a fixed seed fixes the whole session.
type Harness struct {
	engine   *ga.Engine
	language string
	langID   string
	out      io.Writer
}

// New builds a harness for the given config. The language name is
// normalized both ways: display form for the banner, identifier form
// for the CSV row. A nil writer means os.Stdout.
func New(cfg ga.Config, language string, rng *rand.Rand, out io.Writer) (*Harness, error) {
	engine, err := ga.NewEngine(cfg, nil, nil, rng)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(language)
	if name == "" {
		name = "Go"
	}
	if out == nil {
		out = os.Stdout
	}
	return &Harness{
		engine:   engine,
		language: langid.DisplayName(name),
		langID:   langid.ID(name),
		out:      out,
	}, nil
}

// Language returns the display name used in the banner.
func (h *Harness) Language() string { return h.language }

// LanguageID returns the identifier leading the CSV row.
func (h *Harness) LanguageID() string { return h.langID }

// BenchmarkSingleRun times exactly one GA run. The clock brackets the
// run and nothing else; no allocation or reporting is inside it.
func (h *Harness) BenchmarkSingleRun() (Sample, error) {
	start := time.Now()
	result, err := h.engine.Run()
	elapsed := time.Since(start)
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		ElapsedMS:   float64(elapsed.Nanoseconds()) / 1000000.0,
		Generations: result.Generations,
		BestFitness: result.BestFitness,
	}, nil
}

// Run executes numRuns timed GA runs, printing the transcript as it
// goes. Progress lines share one terminal row via carriage returns; the
// CSV row lands after the completion line.
func (h *Harness) Run(numRuns int) ([]Sample, error) {
	if numRuns <= 0 {
		return nil, fmt.Errorf("run count must be positive: %d", numRuns)
	}

	fmt.Fprintf(h.out, "%s One-Max GA Performance Test\n", h.language)
	fmt.Fprintf(h.out, "Running %d tests...\n", numRuns)

	samples := make([]Sample, numRuns)
	for i := 0; i < numRuns; i++ {
		sample, err := h.BenchmarkSingleRun()
		if err != nil {
			return nil, err
		}
		samples[i] = sample
		fmt.Fprintf(h.out, "\rRun %d: %.3f ms", i+1, sample.ElapsedMS)
	}
	fmt.Fprintf(h.out, "\nCompleted %d runs\n", numRuns)

	fmt.Fprintln(h.out, CSVLine(h.langID, TimesMS(samples)))
	return samples, nil
}

// RunTests runs the benchmark and returns only the per-run times in
// milliseconds, in run order.
func (h *Harness) RunTests(numRuns int) ([]float64, error) {
	samples, err := h.Run(numRuns)
	if err != nil {
		return nil, err
	}
	return TimesMS(samples), nil
}

// TimesMS projects samples to their elapsed milliseconds in run order.
func TimesMS(samples []Sample) []float64 {
	times := make([]float64, len(samples))
	for i, sample := range samples {
		times[i] = sample.ElapsedMS
	}
	return times
}

// CSVLine renders one benchmark row: the language identifier followed
// by every run time at microsecond precision.
func CSVLine(languageID string, timesMS []float64) string {
	var b strings.Builder
	b.WriteString(languageID)
	for _, t := range timesMS {
		fmt.Fprintf(&b, ",%.6f", t)
	}
	return b.String()
}
