package ga

import "math/rand"

// Individual is a fixed-length bitstring genome. Individuals are produced by
// random initialization, crossover, or mutation and are never mutated in
// place afterwards; every operator returns fresh storage so no offspring
// aliases a parent.
type Individual []bool

func NewRandomIndividual(rng *rand.Rand, length int) Individual {
	individual := make(Individual, length)
	for i := range individual {
		individual[i] = rng.Intn(2) == 1
	}
	return individual
}

func NewRandomPopulation(rng *rand.Rand, size, length int) []Individual {
	population := make([]Individual, size)
	for i := range population {
		population[i] = NewRandomIndividual(rng, length)
	}
	return population
}

// Clone returns a copy that shares no storage with the receiver.
func (ind Individual) Clone() Individual {
	cloned := make(Individual, len(ind))
	copy(cloned, ind)
	return cloned
}

// CountOnes is the One-Max score: the number of true genes.
func (ind Individual) CountOnes() int {
	count := 0
	for _, gene := range ind {
		if gene {
			count++
		}
	}
	return count
}
