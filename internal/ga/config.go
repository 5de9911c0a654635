package ga

import "fmt"

// Config carries the engine constants for one run. Construct it once at
// process start and pass it explicitly; the package keeps no mutable state.
type Config struct {
	PopulationSize   int
	ChromosomeLength int
	MaxGenerations   int
	CrossoverRate    float64
	MutationRate     float64
	TournamentSize   int
}

// DefaultConfig returns the canonical benchmark constants.
func DefaultConfig() Config {
	return Config{
		PopulationSize:   100,
		ChromosomeLength: 100,
		MaxGenerations:   500,
		CrossoverRate:    0.8,
		MutationRate:     0.01,
		TournamentSize:   3,
	}
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population size must be > 0")
	}
	if c.ChromosomeLength < 2 {
		return fmt.Errorf("chromosome length must be >= 2")
	}
	if c.MaxGenerations <= 0 {
		return fmt.Errorf("max generations must be > 0")
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate must be in [0, 1]")
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0, 1]")
	}
	if c.TournamentSize < 1 || c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("tournament size must be in [1, population size]")
	}
	return nil
}
