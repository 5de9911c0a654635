// Package config loads benchmark suite settings from INI files. A file
// may carry four sections: [ga] for algorithm parameters, [benchmark]
// for the timing protocol, [storage] for the run store, and [artifacts]
// for output directories. Missing sections and keys keep their
// defaults, so a partial file only overrides what it names.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"onemax/internal/ga"
)

// Config is the full suite configuration.
type Config struct {
	GA        GASection
	Benchmark BenchmarkSection
	Storage   StorageSection
	Artifacts ArtifactsSection
}

// GASection mirrors ga.Config with INI key names.
type GASection struct {
	PopulationSize   int     `ini:"population_size"`
	ChromosomeLength int     `ini:"chromosome_length"`
	MaxGenerations   int     `ini:"max_generations"`
	CrossoverRate    float64 `ini:"crossover_rate"`
	MutationRate     float64 `ini:"mutation_rate"`
	TournamentSize   int     `ini:"tournament_size"`
}

// BenchmarkSection controls the timing protocol. Seed zero means the
// process seeds from the wall clock at startup.
type BenchmarkSection struct {
	Runs     int    `ini:"runs"`
	Language string `ini:"language"`
	Seed     int64  `ini:"seed"`
}

// StorageSection selects the run store backend.
type StorageSection struct {
	Backend string `ini:"backend"`
	Path    string `ini:"path"`
}

// ArtifactsSection names the output directories.
type ArtifactsSection struct {
	Dir        string `ini:"dir"`
	ExportsDir string `ini:"exports_dir"`
}

// Default returns the published benchmark configuration.
func Default() Config {
	gaCfg := ga.DefaultConfig()
	return Config{
		GA: GASection{
			PopulationSize:   gaCfg.PopulationSize,
			ChromosomeLength: gaCfg.ChromosomeLength,
			MaxGenerations:   gaCfg.MaxGenerations,
			CrossoverRate:    gaCfg.CrossoverRate,
			MutationRate:     gaCfg.MutationRate,
			TournamentSize:   gaCfg.TournamentSize,
		},
		Benchmark: BenchmarkSection{
			Runs:     25,
			Language: "Go",
		},
		Storage: StorageSection{
			Backend: "memory",
			Path:    "onemax.db",
		},
		Artifacts: ArtifactsSection{
			Dir:        "benchmarks",
			ExportsDir: "exports",
		},
	}
}

// Load reads an INI file over the defaults and validates the result.
func Load(path string) (Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return Config{}, fmt.Errorf("load config file %q: %w", path, err)
	}

	cfg := Default()
	if err := file.Section("ga").MapTo(&cfg.GA); err != nil {
		return Config{}, fmt.Errorf("map [ga] section: %w", err)
	}
	if err := file.Section("benchmark").MapTo(&cfg.Benchmark); err != nil {
		return Config{}, fmt.Errorf("map [benchmark] section: %w", err)
	}
	if err := file.Section("storage").MapTo(&cfg.Storage); err != nil {
		return Config{}, fmt.Errorf("map [storage] section: %w", err)
	}
	if err := file.Section("artifacts").MapTo(&cfg.Artifacts); err != nil {
		return Config{}, fmt.Errorf("map [artifacts] section: %w", err)
	}

	cfg.Benchmark.Language = strings.TrimSpace(cfg.Benchmark.Language)
	cfg.Storage.Backend = strings.TrimSpace(strings.ToLower(cfg.Storage.Backend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section; GA parameters reuse the engine's own
// validation.
func (c Config) Validate() error {
	if err := c.GA.ToGAConfig().Validate(); err != nil {
		return err
	}
	if c.Benchmark.Runs <= 0 {
		return fmt.Errorf("benchmark runs must be positive: %d", c.Benchmark.Runs)
	}
	switch c.Storage.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.Backend == "sqlite" && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("sqlite backend requires a storage path")
	}
	return nil
}

// ToGAConfig converts the section to the engine's config type.
func (s GASection) ToGAConfig() ga.Config {
	return ga.Config{
		PopulationSize:   s.PopulationSize,
		ChromosomeLength: s.ChromosomeLength,
		MaxGenerations:   s.MaxGenerations,
		CrossoverRate:    s.CrossoverRate,
		MutationRate:     s.MutationRate,
		TournamentSize:   s.TournamentSize,
	}
}
