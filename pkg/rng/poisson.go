package rng

import (
	"math"
)

var _ RNG = &PoissonRNG{}

// Threshold returns L = e^-lambda, the value the running product must fall to before a Poisson
// sample is returned.  Compute it once per lambda and reuse it across draws.
func Threshold(lambda float64) float64 {
	return math.Exp(-lambda)
}

// Poisson returns one Poisson distributed count with mean -ln(L) using Knuth's algorithm.  L must
// be in (0,1] and is not checked.  Each call consumes one or more draws from src and the expected
// number of draws is lambda+1.  There is no iteration cap, so a threshold <= 0 or a source that
// always returns 1.0 will never return.
func Poisson(L float64, src Uniform) int {
	p := 1.0
	k := -1
	for {
		k++
		p *= src.Float64()
		if p <= L {
			return k
		}
	}
}

// PoissonBounded is Poisson with at most maxDraws uniform draws.  If the limit is reached before
// the product falls to L, it returns -1 and a *DrawLimitError.  A maxDraws <= 0 is unbounded.
func PoissonBounded(L float64, src Uniform, maxDraws int) (int, error) {
	if maxDraws <= 0 {
		return Poisson(L, src), nil
	}
	p := 1.0
	for k := 0; k < maxDraws; k++ {
		p *= src.Float64()
		if p <= L {
			return k, nil
		}
	}
	return -1, &DrawLimitError{Limit: maxDraws, Threshold: L}
}

// PoissonRNG generates Poisson distributed numbers using Knuth's algorithm.  The threshold is
// computed once at construction.
type PoissonRNG struct {
	lambda   float64
	l        float64
	maxDraws int
	r        Uniform
}

// PoissonOption configures a PoissonRNG
type PoissonOption func(*PoissonRNG)

// WithMaxDraws bounds the number of uniform draws used by Next for a single sample
func WithMaxDraws(n int) PoissonOption {
	return func(r *PoissonRNG) {
		r.maxDraws = n
	}
}

// Rand returns the next sample as a float64 to satisfy RNG.  It ignores any draw limit.
func (r *PoissonRNG) Rand() float64 {
	return float64(r.Int())
}

// Int returns the next sample
func (r *PoissonRNG) Int() int {
	return Poisson(r.l, r.r)
}

// Next returns the next sample, honoring the draw limit set with WithMaxDraws
func (r *PoissonRNG) Next() (int, error) {
	return PoissonBounded(r.l, r.r, r.maxDraws)
}

func (r *PoissonRNG) Lambda() float64 {
	return r.lambda
}

func (r *PoissonRNG) Threshold() float64 {
	return r.l
}

func NewPoissonRNG(lambda float64, src Uniform, opts ...PoissonOption) *PoissonRNG {
	r := &PoissonRNG{
		lambda: lambda,
		l:      Threshold(lambda),
		r:      src,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
