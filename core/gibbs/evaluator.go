package gibbs

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Evaluator computes log-likelihood and perplexity of the corpus
// under the current counts.
//
// The likelihood of token t in document m factors as
/*
                                n_mk + a_k
   L(m,t)  = \sum_k \phi_kt  ------------------
                              L_m + \sum_k a_k

                     1
           = -----------------  \sum_k \phi_kt (n_mk + a_k)
             L_m + \sum_k a_k
*/
// so the per-topic normalizer of \phi_kt, 1/(bV + N_k), is cached
// once, and L_m + \sum_k a_k once per document.
type Evaluator struct {
	model   *Model
	store   *TokenStore
	invNorm []float64
}

func NewEvaluator(m *Model, s *TokenStore) *Evaluator {
	e := &Evaluator{
		model:   m,
		store:   s,
		invNorm: make([]float64, m.NumTopics()),
	}
	for k := range e.invNorm {
		e.invNorm[k] = 1.0 / (float64(m.TokensInTopic[k]) + m.BetaSum)
	}
	return e
}

// LogLikelihood returns the log-likelihood of tokens [lo, hi) and
// the number of tokens.
func (e *Evaluator) LogLikelihood(lo, hi int) (float64, int) {
	m := e.model
	logl := 0.0
	for i := lo; i < hi; i++ {
		w, d := e.store.Word(i), e.store.Doc(i)
		prob := 0.0
		for k, n := range m.WordsInTopic[w] {
			prob += (float64(n) + m.Beta) * e.invNorm[k] *
				(float64(m.TopicsInDoc[k][d]) + m.Alpha[k])
		}
		logl += math.Log(prob / (float64(m.TokensInDoc[d]) + m.AlphaSum))
	}
	return logl, hi - lo
}

// Perplexity computes exp(-logL/N) over the whole corpus, evaluating
// the document partitions of p on at most workers goroutines.
func (e *Evaluator) Perplexity(p *Partitioning, workers int) (float64, error) {
	logls := make([]float64, p.Parts)
	counts := make([]int, p.Parts)

	var g errgroup.Group
	g.SetLimit(workers)
	for j := 0; j < p.Parts; j++ {
		j := j
		g.Go(func() error {
			ll, n := e.LogLikelihood(p.TokenBounds[j], p.TokenBounds[j+1])
			if math.IsNaN(ll) || math.IsInf(ll, 0) {
				return fmt.Errorf("partition %d: log-likelihood is %f", j, ll)
			}
			logls[j], counts[j] = ll, n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	logl, n := 0.0, 0
	for j := range logls {
		logl += logls[j]
		n += counts[j]
	}
	if n == 0 {
		return 0, ErrEmptyCorpus
	}
	return math.Exp(-logl / float64(n)), nil
}
