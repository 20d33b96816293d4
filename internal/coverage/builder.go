// Package coverage finds chains of dice sums whose cumulative probabilities
// track a list of target probabilities.
package coverage

import (
	"slices"

	"github.com/domino14/dice_coverage/internal/dice"
)

// Group is one entry of a Chain: a set of sums sorted ascending.
type Group []dice.Sum

// Probability is the combined probability of rolling any sum in the group.
func (g Group) Probability() float64 {
	return dice.TotalProbability(g)
}

// Chain holds one Group per target. Groups are nested: every group contains
// all sums of the group before it.
type Chain []Group

// Build walks perm in order, accumulating sums until the running probability
// reaches the current target, and records a snapshot of the accumulated sums
// for it. Accumulation carries over from one target to the next. It returns
// false if perm runs out before every target is reached.
//
// At most one target is consumed per sum added, so a target that is already
// met still costs one more element of perm.
func Build(targets []float64, perm dice.Permutation) (Chain, bool) {
	if len(targets) == 0 {
		return nil, false
	}
	chain := make(Chain, 0, len(targets))
	acc := make([]dice.Sum, 0, len(perm))
	running := 0.0
	ti := 0

	for _, s := range perm {
		acc = append(acc, s)
		running += dice.Probability(s)
		if running >= targets[ti] {
			snap := slices.Clone(acc)
			slices.Sort(snap)
			chain = append(chain, Group(snap))
			ti++
			if ti == len(targets) {
				break
			}
		}
	}

	if len(chain) != len(targets) {
		return nil, false
	}
	return chain, true
}
