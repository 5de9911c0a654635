package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"onemax/internal/stats"
)

func TestExperimentStartRunsSessionsAndCompletes(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"experiment", "start",
			"--id", "exp-cli",
			"--runs", "2",
			"--",
			"--runs", "2",
			"--pop", "20",
			"--length", "16",
			"--gens", "40",
			"--seed", "3",
			"--quiet",
		})
	})
	if err != nil {
		t.Fatalf("experiment start: %v", err)
	}
	if !strings.Contains(out, "run=1/2 run_id=exp-cli-run-001") {
		t.Fatalf("missing first session line: %s", out)
	}
	if !strings.Contains(out, "run=2/2 run_id=exp-cli-run-002") {
		t.Fatalf("missing second session line: %s", out)
	}
	if !strings.Contains(out, "progress=completed") {
		t.Fatalf("missing completion line: %s", out)
	}

	for _, runID := range []string{"exp-cli-run-001", "exp-cli-run-002"} {
		path := filepath.Join("benchmarks", runID, "record.json")
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected session record %s: %v", path, err)
		}
	}

	exp, ok, err := stats.ReadBenchmarkExperiment("benchmarks", "exp-cli")
	if err != nil {
		t.Fatalf("read experiment: %v", err)
	}
	if !ok {
		t.Fatalf("expected persisted experiment")
	}
	if exp.ProgressFlag != experimentProgressCompleted {
		t.Fatalf("expected completed progress, got %s", exp.ProgressFlag)
	}
	if exp.RunIndex != 3 || exp.TotalRuns != 2 {
		t.Fatalf("unexpected cursor state: run_index=%d total_runs=%d", exp.RunIndex, exp.TotalRuns)
	}
	if len(exp.RunIDs) != 2 || len(exp.Summaries) != 2 {
		t.Fatalf("expected 2 session summaries, got run_ids=%d summaries=%d", len(exp.RunIDs), len(exp.Summaries))
	}
	if exp.Summaries[0].Runs != 2 {
		t.Fatalf("expected 2 timed runs per session, got %d", exp.Summaries[0].Runs)
	}
	if exp.CompletedAtUTC == "" {
		t.Fatalf("expected completion timestamp")
	}
}

func TestExperimentStartRejectsDuplicate(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})

	startArgs := []string{
		"experiment", "start",
		"--id", "exp-dup",
		"--runs", "1",
		"--",
		"--runs", "2",
		"--pop", "20",
		"--length", "16",
		"--gens", "40",
		"--seed", "2",
		"--quiet",
	}
	if _, err := captureStdout(func() error {
		return run(context.Background(), startArgs)
	}); err != nil {
		t.Fatalf("experiment start: %v", err)
	}

	err = run(context.Background(), startArgs)
	if err == nil || !strings.Contains(err.Error(), "benchmark experiment already exists: exp-dup") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestExperimentContinueResumesAfterFailure(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})

	err = run(context.Background(), []string{
		"experiment", "start",
		"--id", "exp-resume",
		"--runs", "2",
		"--",
		"--pop", "0",
	})
	if err == nil || !strings.Contains(err.Error(), "population size must be > 0") {
		t.Fatalf("expected first session to fail validation, got %v", err)
	}

	exp, ok, readErr := stats.ReadBenchmarkExperiment("benchmarks", "exp-resume")
	if readErr != nil || !ok {
		t.Fatalf("expected interrupted experiment persisted: ok=%t err=%v", ok, readErr)
	}
	if exp.ProgressFlag != experimentProgressInProgress || exp.RunIndex != 1 {
		t.Fatalf("unexpected interrupted state: progress=%s run_index=%d", exp.ProgressFlag, exp.RunIndex)
	}
	if len(exp.Interruptions) != 1 {
		t.Fatalf("expected 1 interruption, got %d", len(exp.Interruptions))
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"experiment", "continue",
			"--id", "exp-resume",
			"--",
			"--runs", "2",
			"--pop", "20",
			"--length", "16",
			"--gens", "40",
			"--seed", "5",
			"--quiet",
		})
	})
	if err != nil {
		t.Fatalf("experiment continue: %v", err)
	}
	if !strings.Contains(out, "run=1/2 run_id=exp-resume-run-001") || !strings.Contains(out, "run=2/2") {
		t.Fatalf("expected resumed sessions from run 1: %s", out)
	}

	exp, ok, readErr = stats.ReadBenchmarkExperiment("benchmarks", "exp-resume")
	if readErr != nil || !ok {
		t.Fatalf("reread experiment: ok=%t err=%v", ok, readErr)
	}
	if exp.ProgressFlag != experimentProgressCompleted {
		t.Fatalf("expected completed after continue, got %s", exp.ProgressFlag)
	}
	if len(exp.Interruptions) < 2 {
		t.Fatalf("expected continue to record its interruption, got %d", len(exp.Interruptions))
	}
	if len(exp.BenchmarkArgs) == 0 || exp.BenchmarkArgs[0] != "--runs" {
		t.Fatalf("expected continue args to replace bench args, got %v", exp.BenchmarkArgs)
	}

	status, err := captureStdout(func() error {
		return run(context.Background(), []string{"experiment", "continue", "--id", "exp-resume"})
	})
	if err != nil {
		t.Fatalf("continue on completed experiment: %v", err)
	}
	if !strings.Contains(status, "progress=completed") {
		t.Fatalf("expected completed status print: %s", status)
	}

	if err := run(context.Background(), []string{"experiment", "continue", "--id", "missing"}); err == nil || !strings.Contains(err.Error(), "benchmark experiment not found: missing") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestExperimentShowAndList(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})

	if _, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"experiment", "start",
			"--id", "exp-show",
			"--runs", "1",
			"--notes", "smoke campaign",
			"--",
			"--runs", "2",
			"--pop", "20",
			"--length", "16",
			"--gens", "40",
			"--seed", "9",
			"--quiet",
		})
	}); err != nil {
		t.Fatalf("experiment start: %v", err)
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"experiment", "show", "--id", "exp-show"})
	})
	if err != nil {
		t.Fatalf("experiment show: %v", err)
	}
	if !strings.Contains(out, "id=exp-show progress=completed") {
		t.Fatalf("unexpected show header: %s", out)
	}
	if !strings.Contains(out, "notes=smoke campaign") {
		t.Fatalf("show header missing notes: %s", out)
	}
	if !strings.Contains(out, "run=1 run_id=exp-show-run-001") {
		t.Fatalf("show output missing session row: %s", out)
	}

	jsonOut, err := captureStdout(func() error {
		return run(context.Background(), []string{"experiment", "show", "--id", "exp-show", "--json"})
	})
	if err != nil {
		t.Fatalf("experiment show json: %v", err)
	}
	if !strings.Contains(jsonOut, "\"progress_flag\": \"completed\"") {
		t.Fatalf("unexpected show json: %s", jsonOut)
	}

	listOut, err := captureStdout(func() error {
		return run(context.Background(), []string{"experiment", "list"})
	})
	if err != nil {
		t.Fatalf("experiment list: %v", err)
	}
	if !strings.Contains(listOut, "id=exp-show") {
		t.Fatalf("list output missing experiment: %s", listOut)
	}

	if err := run(context.Background(), []string{"experiment", "show", "--id", "missing"}); err == nil || !strings.Contains(err.Error(), "benchmark experiment not found: missing") {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err := run(context.Background(), []string{"experiment", "show"}); err == nil || !strings.Contains(err.Error(), "experiment show requires --id") {
		t.Fatalf("expected missing id error, got %v", err)
	}
}

func TestExperimentDispatchAndStartValidation(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})

	if err := run(context.Background(), []string{"experiment"}); err == nil || !strings.Contains(err.Error(), "experiment requires a subcommand") {
		t.Fatalf("expected subcommand error, got %v", err)
	}
	if err := run(context.Background(), []string{"experiment", "bogus"}); err == nil || !strings.Contains(err.Error(), "unknown experiment subcommand: bogus") {
		t.Fatalf("expected unknown subcommand error, got %v", err)
	}
	if err := run(context.Background(), []string{"experiment", "start", "--runs", "1"}); err == nil || !strings.Contains(err.Error(), "experiment start requires --id") {
		t.Fatalf("expected missing id error, got %v", err)
	}
	if err := run(context.Background(), []string{"experiment", "start", "--id", "x", "--runs", "0"}); err == nil || !strings.Contains(err.Error(), "experiment start requires --runs > 0") {
		t.Fatalf("expected runs validation error, got %v", err)
	}
	if err := run(context.Background(), []string{"experiment", "continue"}); err == nil || !strings.Contains(err.Error(), "experiment continue requires --id") {
		t.Fatalf("expected continue id error, got %v", err)
	}
}

func TestExperimentListEmpty(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"experiment", "list"})
	})
	if err != nil {
		t.Fatalf("experiment list: %v", err)
	}
	if !strings.Contains(out, "no benchmark experiments") {
		t.Fatalf("expected empty list message: %s", out)
	}
}
