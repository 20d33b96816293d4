// Package report renders search results for people and for JSON clients.
package report

import (
	"fmt"
	"io"

	"github.com/domino14/dice_coverage/internal/coverage"
	"github.com/domino14/dice_coverage/internal/dice"
)

// NoCoverageMsg is printed when a search comes back empty.
const NoCoverageMsg = "No valid coverage found for the target probabilities."

// GroupReport is one group of a chain together with the target it answers.
type GroupReport struct {
	Index       int        `json:"index"`
	Sums        []dice.Sum `json:"sums"`
	Probability float64    `json:"probability"`
	// Target is nil for a group with no matching target.
	Target *float64 `json:"target,omitempty"`
}

// Groups pairs each group of chain with its target. Index is 1-based.
func Groups(targets []float64, chain coverage.Chain) []GroupReport {
	out := make([]GroupReport, 0, len(chain))
	for i, g := range chain {
		gr := GroupReport{
			Index:       i + 1,
			Sums:        []dice.Sum(g),
			Probability: g.Probability(),
		}
		if i < len(targets) {
			t := targets[i]
			gr.Target = &t
		}
		out = append(out, gr)
	}
	return out
}

// WriteText prints the chain one group per line, after a header with the
// overall deviation.
func WriteText(w io.Writer, targets []float64, chain coverage.Chain, deviation float64) error {
	if _, err := fmt.Fprintf(w, "Coverage found with deviation: %v:\n", deviation); err != nil {
		return err
	}
	for _, g := range Groups(targets, chain) {
		target := "-"
		if g.Target != nil {
			target = fmt.Sprint(*g.Target)
		}
		_, err := fmt.Fprintf(w, "Group %d: %v, prob: %v, target: %s\n",
			g.Index, g.Sums, g.Probability, target)
		if err != nil {
			return err
		}
	}
	return nil
}

func WriteNoCoverage(w io.Writer) error {
	_, err := fmt.Fprintln(w, NoCoverageMsg)
	return err
}
