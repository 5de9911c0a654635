package main

import (
	"onemax/internal/config"
)

// suiteConfigFromFlags resolves the effective suite configuration for a
// subcommand. Without a config file every flag value applies; with one,
// the file is the base and only explicitly set flags override it.
func suiteConfigFromFlags(configPath string, set map[string]bool, flagValue map[string]any) (config.Config, error) {
	cfg, err := loadSuiteConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if configPath == "" {
		set = allFlagNames(flagValue)
	}
	overrideFromFlags(&cfg, set, flagValue)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func loadSuiteConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func allFlagNames(flagValue map[string]any) map[string]bool {
	set := make(map[string]bool, len(flagValue))
	for name := range flagValue {
		set[name] = true
	}
	return set
}

func overrideFromFlags(cfg *config.Config, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "runs":
			cfg.Benchmark.Runs = v.(int)
		case "language":
			cfg.Benchmark.Language = v.(string)
		case "seed":
			cfg.Benchmark.Seed = v.(int64)
		case "pop":
			cfg.GA.PopulationSize = v.(int)
		case "length":
			cfg.GA.ChromosomeLength = v.(int)
		case "gens":
			cfg.GA.MaxGenerations = v.(int)
		case "crossover-rate":
			cfg.GA.CrossoverRate = v.(float64)
		case "mutation-rate":
			cfg.GA.MutationRate = v.(float64)
		case "tournament-size":
			cfg.GA.TournamentSize = v.(int)
		case "store":
			cfg.Storage.Backend = v.(string)
		case "db-path":
			cfg.Storage.Path = v.(string)
		}
	}
}
