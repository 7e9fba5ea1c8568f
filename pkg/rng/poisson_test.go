package rng

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

type mockUniform struct {
	mock.Mock
}

func (m *mockUniform) Float64() float64 {
	args := m.Called()
	return args.Get(0).(float64)
}

func TestPoissonFixedDraws(t *testing.T) {
	tt := []struct {
		name  string
		L     float64
		draws []float64
		exp   int
		calls int
	}{
		{name: "half draws quarter threshold", L: 0.25, draws: []float64{0.5}, exp: 1, calls: 2},
		{name: "lambda zero with draw of one", L: 1.0, draws: []float64{1.0}, exp: 0, calls: 1},
		{name: "lambda zero with draw of half", L: 1.0, draws: []float64{0.5}, exp: 0, calls: 1},
		{name: "first draw at threshold", L: 0.5, draws: []float64{0.5}, exp: 0, calls: 1},
		{name: "first draw just above threshold", L: 0.5, draws: []float64{0.5000001, 0.9}, exp: 1, calls: 2},
		{name: "zero draw", L: 0.8, draws: []float64{0.0}, exp: 0, calls: 1},
		{name: "several draws", L: 0.1, draws: []float64{0.9, 0.8, 0.7, 0.1}, exp: 3, calls: 4},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockUniform{}
			for i, d := range tc.draws {
				call := m.On("Float64").Return(d)
				if i < len(tc.draws)-1 {
					call.Once()
				}
			}
			assert.Equal(t, tc.exp, Poisson(tc.L, m))
			m.AssertNumberOfCalls(t, "Float64", tc.calls)
		})
	}
}

func TestPoissonDeterministic(t *testing.T) {
	draw := func(seed int64) []int {
		src := NewUniform(seed)
		L := Threshold(0.7)
		out := make([]int, 1000)
		for i := range out {
			out[i] = Poisson(L, src)
		}
		return out
	}
	assert.Equal(t, draw(5979229), draw(5979229))
	assert.NotEqual(t, draw(5979229), draw(42))
}

func TestPoissonNonNegative(t *testing.T) {
	src := NewUniform(7)
	for _, lambda := range []float64{0, 0.01, 0.2, 1.0, 4.0} {
		L := Threshold(lambda)
		for i := 0; i < 10000; i++ {
			require.GreaterOrEqual(t, Poisson(L, src), 0)
		}
	}
}

func TestPoissonMonotonicInThreshold(t *testing.T) {
	src := NewUniform(11)
	draws := make([][]float64, 200)
	for i := range draws {
		draws[i] = make([]float64, 64)
		for j := range draws[i] {
			draws[i][j] = src.Float64()
		}
	}
	for _, d := range draws {
		prev := -1
		for lambda := 0.0; lambda <= 5.0; lambda += 0.25 {
			k := Poisson(Threshold(lambda), Sequence(d...))
			assert.GreaterOrEqual(t, k, prev, "k must not decrease as the threshold decreases")
			prev = k
		}
	}
}

func TestPoissonMean(t *testing.T) {
	tt := []struct {
		lambda float64
		delta  float64
	}{
		{lambda: 0.2, delta: 0.01},
		{lambda: 0.05, delta: 0.005},
		{lambda: 1.0, delta: 0.03},
		{lambda: 3.0, delta: 0.05},
	}
	for _, tc := range tt {
		src := NewUniform(5979229)
		L := Threshold(tc.lambda)
		n := 100000
		sum := 0
		for i := 0; i < n; i++ {
			sum += Poisson(L, src)
		}
		assert.InDelta(t, tc.lambda, float64(sum)/float64(n), tc.delta)
	}
}

// The observed frequencies of k=0,1,2 and k>=3 are compared against the Poisson PMF
func TestPoissonGoodnessOfFit(t *testing.T) {
	lambda := 0.2
	n := 100000
	src := NewUniform(1234)
	L := Threshold(lambda)

	obs := make([]float64, 4)
	for i := 0; i < n; i++ {
		k := Poisson(L, src)
		if k > 3 {
			k = 3
		}
		obs[k]++
	}

	ref := distuv.Poisson{Lambda: lambda}
	exp := make([]float64, 4)
	for k := 0; k < 3; k++ {
		exp[k] = float64(n) * ref.Prob(float64(k))
	}
	exp[3] = float64(n) * (1 - ref.CDF(2))

	chi2 := stat.ChiSquare(obs, exp)
	dist := distuv.ChiSquared{K: 3}
	pValue := dist.Survival(chi2)
	assert.Greater(t, pValue, 0.001, "chi2=%f obs=%v exp=%v", chi2, obs, exp)
}

func TestPoissonBounded(t *testing.T) {
	tt := []struct {
		name     string
		L        float64
		src      Uniform
		maxDraws int
		exp      int
		err      bool
	}{
		{name: "within limit", L: 0.25, src: Sequence(0.5), maxDraws: 2, exp: 1},
		{name: "exactly at limit", L: 0.1, src: Sequence(0.9, 0.8, 0.7, 0.1), maxDraws: 4, exp: 3},
		{name: "one short of limit", L: 0.1, src: Sequence(0.9, 0.8, 0.7, 0.1), maxDraws: 3, exp: -1, err: true},
		{name: "degenerate source", L: 0.5, src: Sequence(1.0), maxDraws: 1000, exp: -1, err: true},
		{name: "unbounded", L: 0.25, src: Sequence(0.5), maxDraws: 0, exp: 1},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			k, err := PoissonBounded(tc.L, tc.src, tc.maxDraws)
			assert.Equal(t, tc.exp, k)
			if !tc.err {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrDrawLimit))
			var dle *DrawLimitError
			require.True(t, errors.As(err, &dle))
			assert.Equal(t, tc.maxDraws, dle.Limit)
			assert.Equal(t, tc.L, dle.Threshold)
		})
	}
}

func TestPoissonBoundedMatchesUnbounded(t *testing.T) {
	a := NewUniform(99)
	b := NewUniform(99)
	L := Threshold(2.0)
	for i := 0; i < 5000; i++ {
		k, err := PoissonBounded(L, a, 1000)
		require.NoError(t, err)
		assert.Equal(t, Poisson(L, b), k)
	}
}

func TestPoissonRNG(t *testing.T) {
	r := NewPoissonRNG(0.2, NewUniform(5979229))
	assert.Equal(t, 0.2, r.Lambda())
	assert.InDelta(t, math.Exp(-0.2), r.Threshold(), 1e-15)

	n := 50000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += r.Rand()
	}
	assert.InDelta(t, 0.2, sum/float64(n), 0.01)

	bounded := NewPoissonRNG(0.2, Sequence(1.0), WithMaxDraws(10))
	_, err := bounded.Next()
	assert.True(t, errors.Is(err, ErrDrawLimit))

	fixed := NewPoissonRNG(-math.Log(0.25), Sequence(0.5))
	k, err := fixed.Next()
	assert.NoError(t, err)
	assert.Equal(t, 1, k)
}

func TestConcurrentUniform(t *testing.T) {
	c := NewConcurrentUniform(NewUniform(3))
	L := Threshold(0.5)
	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				results[i] += Poisson(L, c)
			}
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.GreaterOrEqual(t, r, 0)
	}
}

func TestSequence(t *testing.T) {
	s := Sequence(0.1, 0.2)
	assert.Equal(t, []float64{0.1, 0.2, 0.2, 0.2}, []float64{s.Float64(), s.Float64(), s.Float64(), s.Float64()})
	assert.Equal(t, 0.0, Sequence().Float64())
}
