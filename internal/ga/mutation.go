package ga

import "math/rand"

// Mutate flips each gene independently with the given probability and
// returns the result as a new individual; the input is never modified.
func Mutate(rng *rand.Rand, individual Individual, rate float64) Individual {
	mutated := individual.Clone()
	for i := range mutated {
		if rng.Float64() < rate {
			mutated[i] = !mutated[i]
		}
	}
	return mutated
}
