package domain

import (
	"math/rand/v2"
	"time"
)

// Source supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded PCG source. The same seed always yields the
// same sequence of snapshots for the same registry and clock.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSource seeds from the wall clock for production use.
func NewTimeSource() *rand.Rand {
	return NewSource(uint64(time.Now().UnixNano()))
}

// uniform draws from [lo, hi).
func uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
