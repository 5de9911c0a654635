package stats

// VectorGT reports whether v1 dominates v2: no component lower and the
// total strictly higher. Used to order timing vectors of equal length.
func VectorGT(v1, v2 []float64) bool {
	if v2 == nil || len(v1) != len(v2) {
		return false
	}
	acc := 0.0
	for i := range v1 {
		if v1[i] < v2[i] {
			return false
		}
		acc += v1[i] - v2[i]
	}
	return acc > 0
}

// VectorLT reports whether v1 is dominated by v2.
func VectorLT(v1, v2 []float64) bool {
	if v2 == nil || len(v1) != len(v2) {
		return false
	}
	acc := 0.0
	for i := range v1 {
		if v1[i] > v2[i] {
			return false
		}
		acc += v1[i] - v2[i]
	}
	return acc < 0
}

// VectorEQ reports component-wise equality.
func VectorEQ(v1, v2 []float64) bool {
	if v2 == nil || len(v1) != len(v2) {
		return false
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			return false
		}
	}
	return true
}
