package random

import "math/rand/v2"

// Random provides uniform random draws that can be mocked for testing
type Random interface {
	// Intn returns a uniformly random int in [0, n)
	Intn(n int) int
}

// MathRandom implements Random using the math/rand/v2 global source
type MathRandom struct{}

// New creates a new MathRandom
func New() *MathRandom {
	return &MathRandom{}
}

// Intn returns a random int in [0, n), or 0 when n <= 0
func (r *MathRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}
