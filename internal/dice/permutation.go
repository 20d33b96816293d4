package dice

import (
	"math/rand/v2"
)

// Source is where a Generator gets its randomness. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a random int in [0, n). n is always > 0.
	IntN(n int) int
}

// NewSeededSource returns a deterministic source. A seed of 0 pulls a seed
// from the runtime's entropy instead.
func NewSeededSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Permutation is one ordering of all eleven sums.
type Permutation []Sum

// Generator shuffles the sums with its Source. A Generator is not safe for
// concurrent use, since every call advances the source.
type Generator struct {
	src Source
}

func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// Generate returns a fresh, uniformly shuffled Permutation.
func (g *Generator) Generate() Permutation {
	p := Permutation(AllSums())
	// Fisher-Yates, same walk as rand.Shuffle.
	for i := len(p) - 1; i > 0; i-- {
		j := g.src.IntN(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
