package gibbs

import (
	"math/rand"
)

// SynthesizeCorpus draws numDocs documents.  Document i only uses
// words of vocabularies[i % len(vocabularies)], drawn uniformly; its
// length is drawn from Poisson(meanLen) and is at least one.  Corpora
// of disjoint vocabularies have a known topic structure, which makes
// them useful to check that sampling recovers it.
func SynthesizeCorpus(rng *rand.Rand, vocabularies [][]string,
	numDocs int, meanLen float64) [][]string {

	docs := make([][]string, numDocs)
	for i := range docs {
		v := vocabularies[i%len(vocabularies)]
		n := SamplePoisson(rng, meanLen)
		if n < 1 {
			n = 1
		}
		docs[i] = make([]string, n)
		for j := range docs[i] {
			docs[i][j] = v[rng.Intn(len(v))]
		}
	}
	return docs
}
