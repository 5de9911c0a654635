package ga

// Evaluator scores a single individual.
type Evaluator interface {
	Name() string
	Evaluate(individual Individual) int
}

// OneMax rewards the count of true genes; the optimum equals the
// chromosome length.
type OneMax struct{}

func (OneMax) Name() string {
	return "onemax"
}

func (OneMax) Evaluate(individual Individual) int {
	return individual.CountOnes()
}

// EvaluatePopulation scores every individual exactly once and returns the
// fitness slice aligned by index with the population. Selection consumes
// this slice and never re-evaluates; that is the only evaluation point in
// a generation.
func EvaluatePopulation(eval Evaluator, population []Individual) []int {
	fitness := make([]int, len(population))
	for i, individual := range population {
		fitness[i] = eval.Evaluate(individual)
	}
	return fitness
}
