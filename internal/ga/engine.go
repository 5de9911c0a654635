package ga

import (
	"fmt"
	"math/rand"
)

// RunResult is the terminal output of one GA run. BestByGeneration holds
// the best fitness of every evaluated generation, so its length equals
// Generations.
type RunResult struct {
	Generations      int
	BestFitness      int
	BestByGeneration []int
}

// Engine runs the generational loop: evaluate once per generation, select
// by precomputed fitness, recombine, mutate, replace. A run is pure
// bounded computation; every error path lives in construction.
type Engine struct {
	cfg  Config
	eval Evaluator
	sel  Selector
	rng  *rand.Rand
}

// NewEngine validates the config and fills strategy defaults: One-Max
// evaluation and tournament selection sized from the config.
func NewEngine(cfg Config, eval Evaluator, sel Selector, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if eval == nil {
		eval = OneMax{}
	}
	if sel == nil {
		sel = TournamentSelector{Size: cfg.TournamentSize}
	}
	return &Engine{cfg: cfg, eval: eval, sel: sel, rng: rng}, nil
}

// Run executes one full GA run. Generations count from 1. The loop stops
// at the first generation whose best fitness reaches the chromosome
// length; if MaxGenerations pass without that, the result reports the
// best fitness of the final evaluated generation.
func (e *Engine) Run() (RunResult, error) {
	population := NewRandomPopulation(e.rng, e.cfg.PopulationSize, e.cfg.ChromosomeLength)
	bestHistory := make([]int, 0, e.cfg.MaxGenerations)

	for generation := 1; generation <= e.cfg.MaxGenerations; generation++ {
		fitness := EvaluatePopulation(e.eval, population)
		best := fitness[0]
		for _, score := range fitness[1:] {
			if score > best {
				best = score
			}
		}
		bestHistory = append(bestHistory, best)

		if best >= e.cfg.ChromosomeLength {
			return RunResult{
				Generations:      generation,
				BestFitness:      best,
				BestByGeneration: bestHistory,
			}, nil
		}
		if generation == e.cfg.MaxGenerations {
			break
		}

		next, err := e.nextGeneration(population, fitness)
		if err != nil {
			return RunResult{}, err
		}
		population = next
	}

	return RunResult{
		Generations:      e.cfg.MaxGenerations,
		BestFitness:      bestHistory[len(bestHistory)-1],
		BestByGeneration: bestHistory,
	}, nil
}

// nextGeneration builds a full replacement population from offspring
// pairs. When the final pair would overflow the fixed size, only its
// first offspring is kept.
func (e *Engine) nextGeneration(population []Individual, fitness []int) ([]Individual, error) {
	next := make([]Individual, 0, e.cfg.PopulationSize)

	for len(next) < e.cfg.PopulationSize {
		parent1, err := e.sel.PickParent(e.rng, fitness)
		if err != nil {
			return nil, err
		}
		parent2, err := e.sel.PickParent(e.rng, fitness)
		if err != nil {
			return nil, err
		}

		var child1, child2 Individual
		if e.rng.Float64() < e.cfg.CrossoverRate {
			child1, child2 = SinglePointCrossover(e.rng, population[parent1], population[parent2])
		} else {
			child1 = population[parent1].Clone()
			child2 = population[parent2].Clone()
		}

		child1 = Mutate(e.rng, child1, e.cfg.MutationRate)
		child2 = Mutate(e.rng, child2, e.cfg.MutationRate)

		next = append(next, child1, child2)
	}

	return next[:e.cfg.PopulationSize], nil
}
