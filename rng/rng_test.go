package rng

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformRange(t *testing.T) {
	r := New(1)
	for i := 0; i < 1000; i++ {
		v := r.Uniform(2.5, 7.5)
		assert.GreaterOrEqual(t, v, 2.5)
		assert.Less(t, v, 7.5)
	}
}

func TestUintNRange(t *testing.T) {
	r := New(1)
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		v := r.UintN(12)
		assert.Less(t, v, uint64(12))
		seen[v] = true
	}
	// All 12 values should appear over 1000 draws.
	assert.Len(t, seen, 12)
}

func TestUintNAboveInt63(t *testing.T) {
	// Bounds too large for Int63n must not panic and must stay in range.
	r := New(1)
	for _, n := range []uint64{math.MaxInt64 + 1, math.MaxUint64} {
		for i := 0; i < 100; i++ {
			assert.Less(t, r.UintN(n), n)
		}
	}
}

func TestPoissonZeroMean(t *testing.T) {
	r := New(1)
	assert.EqualValues(t, 0, r.Poisson(0))
	assert.EqualValues(t, 0, r.Poisson(-1))
}

func TestPoissonMoments(t *testing.T) {
	// Sample mean should land near the distribution mean for both the
	// Knuth and PTRS regimes.
	for _, mean := range []float64{0.5, 5, 40, 200} {
		r := New(7)
		const n = 20000
		var sum float64
		for i := 0; i < n; i++ {
			sum += float64(r.Poisson(mean))
		}
		got := sum / n
		// Standard error is sqrt(mean/n); allow five sigma.
		tol := 5 * math.Sqrt(mean/n)
		assert.InDelta(t, mean, got, tol, "mean=%v", mean)
	}
}

func TestDeterminism(t *testing.T) {
	draw := func() []float64 {
		r := New(1234)
		out := make([]float64, 0, 30)
		for i := 0; i < 10; i++ {
			out = append(out, float64(r.Poisson(3.0)))
			out = append(out, r.Uniform(0, 1))
			out = append(out, float64(r.UintN(12)))
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}
