package gibbs

import (
	"errors"
	"math"
	"testing"
)

// bruteForcePerplexity evaluates exp(-mean log sum_k phi theta) from
// the definitions of Phi and Theta.
func bruteForcePerplexity(m *Model, s *TokenStore) float64 {
	logl := 0.0
	for i := 0; i < s.Len(); i++ {
		w, d := int(s.Word(i)), int(s.Doc(i))
		p := 0.0
		for k := 0; k < m.NumTopics(); k++ {
			p += m.Phi(w, k) * m.Theta(k, d)
		}
		logl += math.Log(p)
	}
	return math.Exp(-logl / float64(s.Len()))
}

func TestEvaluatorLogLikelihood(t *testing.T) {
	m, s, _ := CreateTestingModel(CreateTestingDocuments(), testingK)
	ll, n := NewEvaluator(m, s).LogLikelihood(0, 2)
	// Every word has phi = 1.01/4.04 in both topics, and theta = 0.5.
	want := 2 * math.Log(1.01/4.04)
	if n != 2 || math.Abs(ll-want) > 1e-12 {
		t.Errorf("Expecting (%f, 2), got (%f, %d)", want, ll, n)
	}
}

func TestEvaluatorPerplexity(t *testing.T) {
	docs := CreateTestingCorpus(30, 1)
	m, s, v := CreateTestingModel(docs, 3)
	want := bruteForcePerplexity(m, s)
	for parts := 1; parts <= 4; parts++ {
		p := NewPartitioning(parts, s, v.Len())
		got, e := NewEvaluator(m, s).Perplexity(p, 2)
		if e != nil {
			t.Fatal(e)
		}
		if math.Abs(got-want) > 1e-9*want {
			t.Errorf("%d partitions: expecting %f, got %f", parts, want, got)
		}
	}
}

func TestEvaluatorPerplexityEmptyCorpus(t *testing.T) {
	s := NewTokenStore([][]string{{"x"}}, NewVocabulary().Build([][]string{{"a"}}))
	m := NewModel(testingK, 1, 1, testingAlpha, testingBeta)
	p := NewPartitioning(1, s, 1)
	if _, e := NewEvaluator(m, s).Perplexity(p, 1); !errors.Is(e, ErrEmptyCorpus) {
		t.Errorf("Expecting ErrEmptyCorpus, got %v", e)
	}
}
