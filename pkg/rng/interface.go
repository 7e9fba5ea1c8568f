package rng

// RNG is a random number generator
type RNG interface {
	Rand() float64
}

// Uniform is a source of draws approximately uniform on [0,1].  It has the same shape as
// *rand.Rand so a seeded math/rand generator can be passed directly.  Seeding and determinism are
// the responsibility of whoever constructs the source.
type Uniform interface {
	Float64() float64
}

// UniformFunc adapts an ordinary function to the Uniform interface
type UniformFunc func() float64

// Float64 returns the next draw
func (f UniformFunc) Float64() float64 {
	return f()
}
