package gibbs

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestSampleMultinomialDegenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if k, e := SampleMultinomial(rng, []float64{0, 1, 0}, 1); k != 1 || e != nil {
			t.Fatalf("Expecting 1, got %d (%v)", k, e)
		}
		if k, e := SampleMultinomial(rng, []float64{2, 0, 0}, 2); k != 0 || e != nil {
			t.Fatalf("Expecting 0, got %d (%v)", k, e)
		}
	}
}

func TestSampleMultinomialFrequencies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	weights := []float64{1, 3}
	const n = 40000
	hits := 0
	for i := 0; i < n; i++ {
		k, e := SampleMultinomial(rng, weights, 4)
		if e != nil {
			t.Fatal(e)
		}
		hits += k
	}
	if f := float64(hits) / n; math.Abs(f-0.75) > 0.01 {
		t.Errorf("Expecting index 1 with frequency 0.75, got %f", f)
	}
}

func TestSampleMultinomialNoSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		weights []float64
		sum     float64
	}{
		{[]float64{0, 0}, 0},
		{[]float64{0, 0}, 1},
		{[]float64{1, 1}, -2},
		{[]float64{1, 1}, math.NaN()},
		{[]float64{1, 1}, math.Inf(1)},
		{nil, 1},
	}
	for _, c := range cases {
		if _, e := SampleMultinomial(rng, c.weights, c.sum); !errors.Is(e, ErrNoSample) {
			t.Errorf("weights %v, sum %f: expecting ErrNoSample, got %v",
				c.weights, c.sum, e)
		}
	}
}

func TestSamplePoisson(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	xs := make([]float64, 20000)
	for i := range xs {
		xs[i] = float64(SamplePoisson(rng, 4))
	}
	mean, variance := stat.MeanVariance(xs, nil)
	if math.Abs(mean-4) > 0.1 {
		t.Errorf("Expecting mean 4, got %f", mean)
	}
	if math.Abs(variance-4) > 0.3 {
		t.Errorf("Expecting variance 4, got %f", variance)
	}
}

func TestSamplePoissonLargeMean(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	xs := make([]float64, 2000)
	for i := range xs {
		xs[i] = float64(SamplePoisson(rng, 2000))
	}
	mean, variance := stat.MeanVariance(xs, nil)
	if math.Abs(mean-2000) > 5 {
		t.Errorf("Expecting mean 2000, got %f", mean)
	}
	if math.Abs(variance-2000) > 300 {
		t.Errorf("Expecting variance 2000, got %f", variance)
	}
}

func TestSamplePoissonFrequencies(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const n = 50000
	counts := make([]int, 12)
	for i := 0; i < n; i++ {
		if k := SamplePoisson(rng, 3); k < len(counts) {
			counts[k]++
		}
	}
	p := distuv.Poisson{Lambda: 3}
	for k, c := range counts {
		if f := float64(c) / n; math.Abs(f-p.Prob(float64(k))) > 0.01 {
			t.Errorf("P(%d): expecting %f, got %f", k, p.Prob(float64(k)), f)
		}
	}
}
