package coverage

import "math"

// Deviation is the root of the summed squared differences between each
// target and the probability its group achieves. Both slices are expected
// to be the same length; extra entries on either side are ignored.
func Deviation(targets []float64, chain Chain) float64 {
	n := min(len(targets), len(chain))
	sum := 0.0
	for i := 0; i < n; i++ {
		d := targets[i] - chain[i].Probability()
		sum += d * d
	}
	return math.Sqrt(sum)
}

// DefaultTolerance is how much smaller a deviation must be before it counts
// as an improvement.
const DefaultTolerance = 1e-4

// Improves reports whether candidate is lower than best by more than tol.
// Values within tol of each other are treated as equal, so neither
// improves on the other.
func Improves(candidate, best, tol float64) bool {
	if math.Abs(candidate-best) < tol {
		return false
	}
	return candidate < best
}
