package gibbs

import (
	"errors"
	"math"
	"math/rand"
)

// ErrNoSample means SampleMultinomial could not pick an index.  In
// the engine it implies corrupted counts and aborts the run.
var ErrNoSample = errors.New("no index could be sampled")

// SampleMultinomial draws u uniformly from [0, sum) and returns the
// smallest index k such that weights[0] + ... + weights[k] > u.  sum
// must be the sum of weights; the caller usually has it at hand from
// filling weights.
func SampleMultinomial(rng *rand.Rand, weights []float64, sum float64) (int, error) {
	if !(sum > 0) || math.IsInf(sum, 0) {
		return -1, ErrNoSample
	}
	u := rng.Float64() * sum
	cum := 0.0
	for k, w := range weights {
		cum += w
		if cum > u {
			return k, nil
		}
	}
	return -1, ErrNoSample
}

// poissonChunk bounds the mean handled by one run of Knuth's method,
// as exp(-mean) underflows to zero for a mean above about 745.
const poissonChunk = 500.0

// SamplePoisson draws from a Poisson distribution with the given mean
// using Knuth's multiplication method.  A large mean is split into
// chunks of at most poissonChunk, whose draws add up to a draw of the
// whole mean.  It takes O(mean) time and is meant for generating
// synthetic corpora, not for the sampling loop.
func SamplePoisson(rng *rand.Rand, mean float64) int {
	k := 0
	for mean > poissonChunk {
		k += knuthPoisson(rng, poissonChunk)
		mean -= poissonChunk
	}
	return k + knuthPoisson(rng, mean)
}

func knuthPoisson(rng *rand.Rand, mean float64) int {
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
