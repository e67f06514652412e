package race

import (
	"math/rand"
	"time"
)

// RandomSource supplies uniform draws in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a math/rand source. A zero seed picks a
// time-based seed, so races are not reproducible unless a seed is given.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
