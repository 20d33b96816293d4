// Package dice models the eleven sums of two six-sided dice and produces
// random orderings of them.
package dice

const (
	MinSum = 2
	MaxSum = 12
	// NumSums is how many distinct sums two dice can produce.
	NumSums = MaxSum - MinSum + 1
)

// Sum is the total of two die faces, 2 through 12.
type Sum int

// combos is the number of face pairs out of 36 that add up to each sum,
// indexed by sum.
var combos = [MaxSum + 1]int{0, 0, 1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1}

// Probability returns the chance of rolling s with two dice. Anything
// outside 2..12 can't be rolled and gets 0.
func Probability(s Sum) float64 {
	if s < MinSum || s > MaxSum {
		return 0
	}
	return float64(combos[s]) / 36
}

// TotalProbability adds up the probability of every member of sums.
// Duplicates are counted every time they appear.
func TotalProbability(sums []Sum) float64 {
	total := 0.0
	for _, s := range sums {
		total += Probability(s)
	}
	return total
}

// AllSums returns 2..12 in ascending order.
func AllSums() []Sum {
	sums := make([]Sum, 0, NumSums)
	for s := Sum(MinSum); s <= MaxSum; s++ {
		sums = append(sums, s)
	}
	return sums
}
