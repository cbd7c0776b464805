package ai

import "math/rand/v2"

// Rand is the randomness source behaviors draw from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a seeded PCG source.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// FixedRand replays a fixed sequence of values in [0, 1), cycling when exhausted.
// Used in tests to pin down random rolls.
type FixedRand struct {
	values []float64
	next   int
}

// NewFixedRand creates a FixedRand. An empty sequence always yields 0.
func NewFixedRand(values ...float64) *FixedRand {
	return &FixedRand{values: values}
}

// Float64 implements Rand.
func (r *FixedRand) Float64() float64 {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next%len(r.values)]
	r.next++
	return v
}

// IntN implements Rand.
func (r *FixedRand) IntN(n int) int {
	if n <= 0 {
		panic("ai: FixedRand.IntN with non-positive n")
	}
	v := int(r.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
