package ga

import (
	"fmt"
	"math/rand"
)

// Selector chooses a parent index for replication. It sees only the
// per-generation fitness slice, never the individuals themselves, so a
// selector cannot re-evaluate fitness.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, fitness []int) (int, error)
}

// TournamentSelector samples indices with replacement and keeps the one
// with the strictly greatest precomputed fitness. Ties go to the
// first-seen maximum.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, fitness []int) (int, error) {
	if rng == nil {
		return 0, fmt.Errorf("random source is required")
	}
	if len(fitness) == 0 {
		return 0, fmt.Errorf("fitness slice is empty")
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}

	best := rng.Intn(len(fitness))
	for i := 1; i < size; i++ {
		candidate := rng.Intn(len(fitness))
		if fitness[candidate] > fitness[best] {
			best = candidate
		}
	}
	return best, nil
}
