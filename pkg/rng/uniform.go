package rng

import (
	"math/rand"
	"sync"
)

var _ Uniform = &rand.Rand{}
var _ Uniform = &ConcurrentUniform{}
var _ Uniform = UniformFunc(nil)

// NewUniform returns a deterministic uniform source seeded with seed
func NewUniform(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// ConcurrentUniform is a Uniform safe for concurrent use from multiple goroutines.  The samplers
// in this package take no locks of their own, so wrap a source with this when it is shared.
type ConcurrentUniform struct {
	mu  sync.Mutex
	src Uniform
}

func (c *ConcurrentUniform) Float64() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.src.Float64()
}

func NewConcurrentUniform(src Uniform) *ConcurrentUniform {
	return &ConcurrentUniform{src: src}
}

// Sequence returns a source that replays values in order, repeating the last value once the
// sequence is exhausted.  It is mainly useful in tests that need to pin an exact result.
func Sequence(values ...float64) UniformFunc {
	i := 0
	return func() float64 {
		if len(values) == 0 {
			return 0.0
		}
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}
