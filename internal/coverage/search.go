package coverage

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/dice_coverage/internal/dice"
)

// DefaultTrials is the number of random permutations tried per search.
const DefaultTrials = 100

// ErrNoCoverage is returned when none of the trials produced a chain.
var ErrNoCoverage = errors.New("no valid coverage found")

// Result is the best chain a search found.
type Result struct {
	Chain     Chain
	Deviation float64
	// Trial is the 0-based index of the trial that produced Chain.
	Trial     int
	Trials    int
	Successes int
}

// Searcher runs a fixed number of random trials and keeps the best one.
// A Searcher owns its generator and must not be shared between goroutines.
type Searcher struct {
	gen       *dice.Generator
	trials    int
	tolerance float64
	workers   int
}

type SearcherOption func(*Searcher)

// WithTrials sets the trial budget.
func WithTrials(n int) SearcherOption {
	return func(s *Searcher) { s.trials = n }
}

// WithTolerance sets how much better a trial has to be to replace the
// current best.
func WithTolerance(tol float64) SearcherOption {
	return func(s *Searcher) { s.tolerance = tol }
}

// WithWorkers evaluates trials on up to n goroutines.
func WithWorkers(n int) SearcherOption {
	return func(s *Searcher) { s.workers = n }
}

func NewSearcher(gen *dice.Generator, opts ...SearcherOption) (*Searcher, error) {
	s := &Searcher{
		gen:       gen,
		trials:    DefaultTrials,
		tolerance: DefaultTolerance,
		workers:   1,
	}
	for _, o := range opts {
		o(s)
	}
	if s.gen == nil {
		return nil, errors.New("searcher needs a generator")
	}
	if s.trials < 1 {
		return nil, fmt.Errorf("trials must be positive, got %d", s.trials)
	}
	if s.workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", s.workers)
	}
	return s, nil
}

type trialResult struct {
	chain     Chain
	deviation float64
	ok        bool
}

// FindBest searches for the chain whose deviation from targets is lowest.
//
// With no targets there is nothing to cover; the result is a single group
// holding one freshly generated permutation of all sums, in drawn order.
func (s *Searcher) FindBest(targets []float64) (*Result, error) {
	if len(targets) == 0 {
		return &Result{
			Chain:  Chain{Group(s.gen.Generate())},
			Trials: 0,
		}, nil
	}

	// Draw every permutation up front, in trial order, so the outcome for a
	// given seed doesn't depend on the worker count.
	perms := make([]dice.Permutation, s.trials)
	for i := range perms {
		perms[i] = s.gen.Generate()
	}
	results := make([]trialResult, s.trials)

	if s.workers == 1 {
		for i, p := range perms {
			results[i] = runTrial(targets, p)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, p := range perms {
			g.Go(func() error {
				results[i] = runTrial(targets, p)
				return nil
			})
		}
		// Trials never fail with an error; a failed build is just !ok.
		_ = g.Wait()
	}

	var best *Result
	successes := 0
	for i, r := range results {
		if !r.ok {
			continue
		}
		successes++
		if best == nil || Improves(r.deviation, best.Deviation, s.tolerance) {
			log.Debug().Int("trial", i).Float64("deviation", r.deviation).
				Interface("chain", r.chain).Msg("new-best-coverage")
			best = &Result{Chain: r.chain, Deviation: r.deviation, Trial: i}
		}
	}
	log.Debug().Int("trials", s.trials).Int("successes", successes).
		Floats64("targets", targets).Msg("search-done")

	if best == nil {
		return nil, ErrNoCoverage
	}
	best.Trials = s.trials
	best.Successes = successes
	return best, nil
}

func runTrial(targets []float64, perm dice.Permutation) trialResult {
	chain, ok := Build(targets, perm)
	if !ok {
		return trialResult{}
	}
	return trialResult{chain: chain, deviation: Deviation(targets, chain), ok: true}
}
