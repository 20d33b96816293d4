package coverage

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dice_coverage/internal/dice"
)

// zeroSource always yields the permutation [3 4 5 6 7 8 9 10 11 12 2].
type zeroSource struct{}

func (zeroSource) IntN(int) int { return 0 }

func newSearcher(t *testing.T, src dice.Source, opts ...SearcherOption) *Searcher {
	t.Helper()
	s, err := NewSearcher(dice.NewGenerator(src), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFindBestEmptyTargets(t *testing.T) {
	is := is.New(t)
	s := newSearcher(t, dice.NewSeededSource(3))
	res, err := s.FindBest(nil)
	is.NoErr(err)
	is.Equal(len(res.Chain), 1)
	is.Equal(len(res.Chain[0]), dice.NumSums)
	sorted := slices.Clone(res.Chain[0])
	slices.Sort(sorted)
	is.Equal([]dice.Sum(sorted), dice.AllSums())
	is.Equal(res.Deviation, 0.0)
}

func TestFindBestTooManyTargets(t *testing.T) {
	is := is.New(t)
	s := newSearcher(t, dice.NewSeededSource(3))
	_, err := s.FindBest(make([]float64, 12))
	is.True(errors.Is(err, ErrNoCoverage))
}

func TestFindBestUnreachable(t *testing.T) {
	is := is.New(t)
	s := newSearcher(t, dice.NewSeededSource(3), WithTrials(10))
	_, err := s.FindBest([]float64{0.5, 1.2})
	is.True(errors.Is(err, ErrNoCoverage))
}

func TestFindBestKeepsFirstOfTies(t *testing.T) {
	is := is.New(t)
	s := newSearcher(t, zeroSource{}, WithTrials(25))
	res, err := s.FindBest([]float64{0.1, 0.4})
	is.NoErr(err)
	is.Equal(res.Trial, 0)
	is.Equal(res.Trials, 25)
	is.Equal(res.Successes, 25)
	// 3,4 -> 5/36 (0.139)
	is.Equal(res.Chain[0], Group{3, 4})
	// +5 -> 9/36, +6 -> 14/36, +7 -> 20/36 (0.556)
	is.Equal(res.Chain[1], Group{3, 4, 5, 6, 7})
}

func TestFindBestResultIsValid(t *testing.T) {
	is := is.New(t)
	targets := []float64{0.15, 0.45, 0.8}
	s := newSearcher(t, dice.NewSeededSource(11))
	res, err := s.FindBest(targets)
	is.NoErr(err)
	is.Equal(len(res.Chain), len(targets))
	is.True(res.Successes > 0)
	is.True(res.Trial < res.Trials)
	is.True(math.Abs(res.Deviation-Deviation(targets, res.Chain)) < 1e-12)
	for i, g := range res.Chain {
		is.True(g.Probability() >= targets[i])
	}
}

func TestFindBestSameForAnyWorkerCount(t *testing.T) {
	is := is.New(t)
	targets := []float64{0.2, 0.5, 0.7}
	seq := newSearcher(t, dice.NewSeededSource(1234), WithTrials(200))
	par := newSearcher(t, dice.NewSeededSource(1234), WithTrials(200), WithWorkers(8))
	a, err := seq.FindBest(targets)
	is.NoErr(err)
	b, err := par.FindBest(targets)
	is.NoErr(err)
	is.Equal(a, b)
}

func TestFindBestMoreTrialsNeverWorse(t *testing.T) {
	is := is.New(t)
	targets := []float64{0.3, 0.65}
	short := newSearcher(t, dice.NewSeededSource(77), WithTrials(5))
	long := newSearcher(t, dice.NewSeededSource(77), WithTrials(500))
	a, err := short.FindBest(targets)
	is.NoErr(err)
	b, err := long.FindBest(targets)
	is.NoErr(err)
	// The long run sees the short run's permutations first.
	is.True(b.Deviation <= a.Deviation)
}

func TestNewSearcherValidation(t *testing.T) {
	is := is.New(t)
	gen := dice.NewGenerator(zeroSource{})
	_, err := NewSearcher(gen, WithTrials(0))
	is.True(err != nil)
	_, err = NewSearcher(gen, WithWorkers(0))
	is.True(err != nil)
	_, err = NewSearcher(nil)
	is.True(err != nil)
}
