package heavy_tests

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neil-justice/lda-sub000/core/gibbs"
)

var (
	groundTruthDocLen = 21
	groundTruthNumDoc = 500
	groundTruthModel  = [][]float64{
		{1, 1, 1, 0, 0, 0, 0, 0, 0}, // 0*
		{0, 0, 0, 1, 1, 1, 0, 0, 0}, // 1*
		{0, 0, 0, 0, 0, 0, 1, 1, 1}, // 2*
		{1, 0, 0, 1, 0, 0, 1, 0, 0}, // *0
		{0, 1, 0, 0, 1, 0, 0, 1, 0}, // *1
		{0, 0, 1, 0, 0, 1, 0, 0, 1}, // *2
	}
	groundTruthAlpha = []float64{0.6, 0.2, 0.3, 0.4, 0.5, 0.6}
	groundTruthK     = len(groundTruthAlpha)
)

func griffithConfig(workers, partitions int) gibbs.Config {
	cfg := gibbs.DefaultConfig()
	cfg.Topics = groundTruthK
	cfg.Cycles = kCycles
	cfg.BurnIn = kBurnIn
	cfg.SampleLag = kSampleLag
	cfg.PerplexityInterval = 0
	cfg.Workers = workers
	cfg.Partitions = partitions
	cfg.Alpha = kAlpha
	cfg.Beta = kBeta
	cfg.Seed = kSeed
	return cfg
}

// In their paper "Finding Scientific Topics" on PNAS 2004, Thomas
// Griffith and Mark Steyvers presents a visual method to verify the
// convergence of learning latent Dirichlet allocation models.  This
// method samples synthetic training data from a ground-truth model,
// whose each P(w|z) distribution over a vocabulary with V*V tokens is
// represented by a V*V size of image, where a colored pixel i
// represents that P(w=i|z)=1/V/V.  So the ground-truth model with K
// latent topics consists of K images.  Then, the method learns a
// model of K latent topics from the synthetic training data.
//
// Here the ground truth has an asymmetric Dirichlet prior, and the
// model is learned by the parallel engine with optimized priors.
func TestGriffith(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip TestGriffith in short mode")
	}
	rng := rand.New(rand.NewSource(kSeed))
	corpus := createGriffithTrainingData(rng)

	e, err := gibbs.NewEngine(corpus, griffithConfig(kWorkers, kPartitions))
	require.NoError(t, err)
	defer e.Close()

	initial, err := e.Perplexity()
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background(), kCycles))
	require.NoError(t, e.Verify())
	learned, err := e.Perplexity()
	require.NoError(t, err)

	t.Logf("Perplexity %f -> %f, alpha %v", initial, learned, e.Alpha())
	assert.Less(t, learned, 0.95*initial)
	assert.Equal(t, (kCycles-kBurnIn)/kSampleLag, e.Samples())
	for topic, ts := range e.TermScore(3) {
		t.Logf("Topic %d: %v", topic, ts)
	}
}

// TestGriffithWorkers checks that the number of workers does not
// change the result once the partitioning is fixed.
func TestGriffithWorkers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip TestGriffithWorkers in short mode")
	}
	corpus := createGriffithTrainingData(rand.New(rand.NewSource(kSeed)))

	var assignments [][]int32
	for _, workers := range []int{1, 2, kPartitions} {
		e, err := gibbs.NewEngine(corpus, griffithConfig(workers, kPartitions))
		require.NoError(t, err)
		require.NoError(t, e.Run(context.Background(), 20))
		assignments = append(assignments, e.Assignments())
		e.Close()
	}
	assert.Equal(t, assignments[0], assignments[1])
	assert.Equal(t, assignments[0], assignments[2])
}

func BenchmarkCycle(b *testing.B) {
	corpus := createGriffithTrainingData(rand.New(rand.NewSource(kSeed)))
	e, err := gibbs.NewEngine(corpus, griffithConfig(kWorkers, kWorkers))
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	b.ResetTimer()
	if err := e.Run(context.Background(), b.N); err != nil {
		b.Fatal(err)
	}
}

// createGriffithTrainingData samples synthetic training data from the
// ground-truth model.
func createGriffithTrainingData(rng *rand.Rand) [][]string {
	t := make([]int, groundTruthK)
	r := make([][]string, groundTruthNumDoc)
	for i := range r {
		sampleTopicHist(rng, t)
		r[i] = synthesizeDocument(t, rng)
	}
	return r
}

func synthesizeDocument(topicHist []int, rng *rand.Rand) []string {
	doc := make([]string, 0, groundTruthDocLen)
	for t, c := range topicHist {
		for i := 0; i < c; i++ {
			doc = append(doc, word(sampleDiscrete(groundTruthModel[t], rng)))
		}
	}
	return doc
}

// sampleTopicHist draws the topic counts of a document from a Polya
// urn, which is equivalent to drawing from Dirichlet(alpha) and then
// from the multinomial.
func sampleTopicHist(rng *rand.Rand, hist []int) {
	dist := make([]float64, groundTruthK)
	copy(dist, groundTruthAlpha)
	for i := range hist {
		hist[i] = 0
	}
	for i := 0; i < groundTruthDocLen; i++ {
		t := sampleDiscrete(dist, rng)
		dist[t] += 1.0
		hist[t]++
	}
}

func sampleDiscrete(dist []float64, rng *rand.Rand) int {
	sum := 0.0
	for _, v := range dist {
		sum += v
	}
	k, err := gibbs.SampleMultinomial(rng, dist, sum)
	if err != nil {
		panic(fmt.Sprintf("bad dist %v: %v", dist, err))
	}
	return k
}

func word(sample int) string {
	return fmt.Sprintf("%d%d", sample/3, sample%3)
}
