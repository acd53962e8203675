package leaves

import (
	"math/rand"
	"time"
)

// RandomSource yields floats in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float32() float32
}

// NewRandomSource returns a time-seeded source for callers that do not need
// reproducible sequences.
func NewRandomSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
