package ga

import "math/rand"

// CrossoverAt splices two parents at the given cut point:
// offspring1 = parent1[0:point] + parent2[point:], offspring2 the
// complement. Both offspring are fresh storage.
func CrossoverAt(parent1, parent2 Individual, point int) (Individual, Individual) {
	length := len(parent1)
	child1 := make(Individual, length)
	child2 := make(Individual, length)

	copy(child1[:point], parent1[:point])
	copy(child1[point:], parent2[point:])

	copy(child2[:point], parent2[:point])
	copy(child2[point:], parent1[point:])

	return child1, child2
}

// SinglePointCrossover draws the cut point uniformly from [1, length-1],
// so neither offspring is ever a whole-parent copy. Requires length >= 2.
func SinglePointCrossover(rng *rand.Rand, parent1, parent2 Individual) (Individual, Individual) {
	point := rng.Intn(len(parent1)-1) + 1
	return CrossoverAt(parent1, parent2, point)
}
