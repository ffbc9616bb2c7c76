// Package rng provides the random draw capability consumed by the mutation
// generator.
//
// The generator depends only on the Source interface; the concrete algorithm
// behind each draw is not part of the reproducibility contract, only the
// order and meaning of the calls. Reproducibility therefore holds for a
// fixed Source implementation with a fixed seed, consumed sequentially.
package rng

import (
	"math"
	"math/rand"
)

// Source is a single sequential stream of random draws.
//
// Implementations are not required to be safe for concurrent use: the
// generator owns its Source exclusively and draws from it in a fixed,
// documented order.
type Source interface {
	// Poisson draws a Poisson-distributed count with the given mean.
	// A non-positive mean yields 0.
	Poisson(mean float64) uint64

	// Uniform draws a value uniformly from [low, high).
	Uniform(low, high float64) float64

	// UintN draws an integer uniformly from [0, n). n must be positive.
	UintN(n uint64) uint64
}

// Rand is the default Source, backed by math/rand with an explicit seed.
type Rand struct {
	r *rand.Rand
}

// New creates a seeded Rand.
func New(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Uniform draws uniformly from [low, high).
func (r *Rand) Uniform(low, high float64) float64 {
	return low + (high-low)*r.r.Float64()
}

// UintN draws uniformly from [0, n).
func (r *Rand) UintN(n uint64) uint64 {
	if n > math.MaxInt64 {
		// Int63n cannot represent n; rejection-sample the full 64-bit
		// range instead (acceptance probability is above one half).
		for {
			if v := r.r.Uint64(); v < n {
				return v
			}
		}
	}
	return uint64(r.r.Int63n(int64(n)))
}

// poissonSwitchMean is the mean above which Poisson switches from Knuth's
// product method to transformed rejection; the product underflows for large
// means and costs O(mean) draws.
const poissonSwitchMean = 30.0

// Poisson draws a Poisson count. Small means use Knuth's product method,
// large means the PTRS transformed-rejection sampler (Hörmann 1993).
func (r *Rand) Poisson(mean float64) uint64 {
	if mean <= 0 {
		return 0
	}
	if mean < poissonSwitchMean {
		return r.poissonKnuth(mean)
	}
	return r.poissonPTRS(mean)
}

func (r *Rand) poissonKnuth(mean float64) uint64 {
	limit := math.Exp(-mean)
	var k uint64
	p := r.r.Float64()
	for p > limit {
		k++
		p *= r.r.Float64()
	}
	return k
}

func (r *Rand) poissonPTRS(mean float64) uint64 {
	b := 0.931 + 2.53*math.Sqrt(mean)
	a := -0.059 + 0.02483*b
	invAlpha := 1.1239 + 1.1328/(b-3.4)
	vr := 0.9277 - 3.6224/(b-2)
	logMean := math.Log(mean)

	for {
		u := r.r.Float64() - 0.5
		v := r.r.Float64()
		us := 0.5 - math.Abs(u)
		k := math.Floor((2*a/us+b)*u + mean + 0.43)
		if us >= 0.07 && v <= vr {
			return uint64(k)
		}
		if k < 0 || (us < 0.013 && v > us) {
			continue
		}
		lg, _ := math.Lgamma(k + 1)
		if math.Log(v*invAlpha/(a/(us*us)+b)) <= k*logMean-mean-lg {
			return uint64(k)
		}
	}
}
