package gibbs

import (
	"math/rand"
)

const (
	testingAlpha = 0.1
	testingBeta  = 0.01
	testingK     = 2
)

var (
	testingLetters = []string{"a", "b", "c", "d"}
	testingDigits  = []string{"1", "2", "3", "4"}
)

// CreateTestingDocuments returns a tiny corpus of 4 documents over 4
// words.
func CreateTestingDocuments() [][]string {
	return [][]string{
		{"apple", "orange"},
		{"orange", "apple"},
		{"cat", "tiger"},
		{"tiger", "cat"},
	}
}

// CreateTestingCorpus synthesizes numDocs documents, alternating
// between the vocabularies {a,b,c,d} and {1,2,3,4}.
func CreateTestingCorpus(numDocs int, seed int64) [][]string {
	rng := rand.New(rand.NewSource(seed))
	return SynthesizeCorpus(rng, [][]string{testingLetters, testingDigits},
		numDocs, 20)
}

// CreateTestingConfig returns a configuration for small corpora.
func CreateTestingConfig(workers, partitions int) Config {
	cfg := DefaultConfig()
	cfg.Topics = testingK
	cfg.Cycles = 100
	cfg.BurnIn = 20
	cfg.SampleLag = 5
	cfg.OptimizeInterval = 10
	cfg.PerplexityInterval = 0
	cfg.Workers = workers
	cfg.Partitions = partitions
	cfg.Alpha = testingAlpha
	cfg.Beta = testingBeta
	return cfg
}

// CreateTestingModel creates a model over the store of docs, whose
// token i gets topic i % numTopics.
func CreateTestingModel(docs [][]string, numTopics int) (*Model, *TokenStore, *Vocabulary) {
	v := NewVocabulary().Build(docs)
	s := NewTokenStore(docs, v)
	for i := 0; i < s.Len(); i++ {
		s.SetTopic(i, int32(i%numTopics))
	}
	m := NewModel(numTopics, v.Len(), s.NumDocs(), testingAlpha, testingBeta)
	m.Apply(s)
	return m, s, v
}
