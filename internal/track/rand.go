package track

import (
	"math/rand"
	"time"
)

// Rand is the randomness the generator and planner draw from.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns an unseeded-by-config source; runs are not reproducible.
func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func chance(r Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

// uniform returns a value in [lo, hi].
func uniform(r Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}
