package fuzzcheck

import "math/rand/v2"

// RandSource abstracts the genetic search's randomness so tests can swap in
// a deterministic source (spec.md §8's determinism-given-fixed-seed
// property).
type RandSource interface {
	// Intn returns a pseudo-random number in [0, n). MathRand returns 0
	// when n <= 0.
	Intn(n int) int
	// Between returns a pseudo-random number in [lo, hi].
	Between(lo, hi int) int
}

// MathRand adapts math/rand/v2's generator to RandSource.
type MathRand struct {
	r *rand.Rand
}

// NewMathRand builds a MathRand seeded deterministically from seed.
func NewMathRand(seed uint64) *MathRand {
	return &MathRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (m *MathRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(m.r.IntN(n))
}

func (m *MathRand) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + m.Intn(hi-lo+1)
}
