package gibbs

import (
	"math"

	"github.com/wangkuiyi/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Term is a word and its saliency in a topic.
type Term struct {
	Word  string
	Score float64
}

func (e *Engine) phiAt(w, t int) float64 {
	if e.samples > 0 {
		return e.phiSum[w][t] / float64(e.samples)
	}
	return e.model.Phi(w, t)
}

func (e *Engine) thetaAt(t, d int) float64 {
	if e.samples > 0 {
		return e.thetaSum[t][d] / float64(e.samples)
	}
	return e.model.Theta(t, d)
}

// Phi returns the vocabulary-by-topic matrix of P(word | topic),
// averaged over the collected samples, or estimated from the current
// counts if no sample was collected yet.  Each column sums to 1.
func (e *Engine) Phi() *mat.Dense {
	e.mu.Lock()
	defer e.mu.Unlock()
	w, k := e.model.VocabSize(), e.model.NumTopics()
	phi := mat.NewDense(w, k, nil)
	for word := 0; word < w; word++ {
		for t := 0; t < k; t++ {
			phi.Set(word, t, e.phiAt(word, t))
		}
	}
	return phi
}

// Theta returns the topic-by-document matrix of P(topic | doc), with
// the same averaging as Phi.  Each column sums to 1.
func (e *Engine) Theta() *mat.Dense {
	e.mu.Lock()
	defer e.mu.Unlock()
	k, d := e.model.NumTopics(), e.model.NumDocs()
	theta := mat.NewDense(k, d, nil)
	for t := 0; t < k; t++ {
		for doc := 0; doc < d; doc++ {
			theta.Set(t, doc, e.thetaAt(t, doc))
		}
	}
	return theta
}

// TermScore returns, for every topic, at most topN words ranked by
//
//	phi[w][t] * log(phi[w][t] / geomean_k phi[w][k])
//
// as proposed by Blei and Lafferty.  Words whose score is not positive
// are less likely in the topic than on average and are left out.
func (e *Engine) TermScore(topN int) [][]Term {
	phi := e.Phi()
	w, k := phi.Dims()
	logGeoMean := make([]float64, w)
	for word := 0; word < w; word++ {
		for _, p := range phi.RawRowView(word) {
			logGeoMean[word] += math.Log(p)
		}
		logGeoMean[word] /= float64(k)
	}

	terms := make([][]Term, k)
	parallel.ForN(0, k, 1, e.workers, func(t int) {
		negScores := make([]float64, w)
		inds := make([]int, w)
		for word := range negScores {
			p := phi.At(word, t)
			negScores[word] = -p * (math.Log(p) - logGeoMean[word])
		}
		floats.Argsort(negScores, inds)
		for i := 0; i < w && len(terms[t]) < topN; i++ {
			if negScores[i] >= 0 {
				break
			}
			terms[t] = append(terms[t],
				Term{e.vocab.Token(int32(inds[i])), -negScores[i]})
		}
	})
	return terms
}

// Alpha returns a copy of the topic prior.
func (e *Engine) Alpha() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := make([]float64, len(e.model.Alpha))
	copy(a, e.model.Alpha)
	return a
}

// TopicSizes returns the number of tokens assigned to each topic.
func (e *Engine) TopicSizes() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := make([]int64, e.model.NumTopics())
	copy(s, e.model.TokensInTopic)
	return s
}

// Assignments returns a copy of the topic of every token, in token
// order.
func (e *Engine) Assignments() []int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Topics()
}

// Perplexity evaluates the current counts.
func (e *Engine) Perplexity() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.perplexity()
}

// Verify checks the count invariants against the assignments.
func (e *Engine) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Verify(e.store)
}

func (e *Engine) OptimizerStats() OptimizerStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.optimizer.Stats
}

func (e *Engine) ID() string                { return e.id }
func (e *Engine) Vocabulary() *Vocabulary   { return e.vocab }
func (e *Engine) Tokens() *TokenStore       { return e.store }
func (e *Engine) Partitions() *Partitioning { return e.parts }
func (e *Engine) Workers() int              { return e.workers }

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Cycle() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycle
}

func (e *Engine) Samples() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samples
}
