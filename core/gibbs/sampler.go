package gibbs

import (
	"fmt"
	"math/rand"

	"github.com/neil-justice/lda-sub000/core/hist"
)

// cell is one unit of work of an epoch: the tokens of document
// partition Row whose word falls into word partition Column.
type cell struct {
	Cycle  int
	Epoch  int
	Row    int
	Column int
	// Global is the shared tokens-per-topic vector as of the start of
	// the epoch.  Cells only read it.
	Global hist.Dense
}

// sweep is what a cell reports back to the coordinator.
type sweep struct {
	Row     int
	Delta   hist.Dense
	Moves   int
	Visited int
	Err     error
}

// Sampler runs the collapsed Gibbs update over cells.  Each pool
// goroutine owns one Sampler, which holds the scratch space of the
// sampling distribution and the local copy of tokensInTopic.
type Sampler struct {
	model   *Model
	store   *TokenStore
	parts   *Partitioning
	weights []float64
	local   hist.Dense
}

func NewSampler(m *Model, s *TokenStore, p *Partitioning) *Sampler {
	return &Sampler{
		model:   m,
		store:   s,
		parts:   p,
		weights: make([]float64, m.NumTopics()),
		local:   hist.NewDense(m.NumTopics()),
	}
}

// Sample sweeps c with rng, which must be the generator of c.Row.  A
// panic while sweeping is returned as an error in the sweep.
func (s *Sampler) Sample(c cell, rng *rand.Rand) (r sweep) {
	r.Row = c.Row
	defer func() {
		if p := recover(); p != nil {
			r.Err = fmt.Errorf("cell (%d, %d) panicked: %v", c.Row, c.Column, p)
		}
	}()

	m := s.model
	s.local.Assign(c.Global)
	numTopics := m.NumTopics()
	lo, hi := s.parts.TokenBounds[c.Row], s.parts.TokenBounds[c.Row+1]
	for i := lo; i < hi; i++ {
		w := s.store.Word(i)
		if s.parts.WordPartition(w) != c.Column {
			continue
		}
		d := s.store.Doc(i)
		oldTopic := s.store.Topic(i)

		wordTopics := m.WordsInTopic[w]
		wordTopics[oldTopic]--
		m.TopicsInDoc[oldTopic][d]--
		s.local.Dec(int(oldTopic), 1)

		sum := 0.0
		for t := 0; t < numTopics; t++ {
			p := (float64(m.TopicsInDoc[t][d]) + m.Alpha[t]) *
				(float64(wordTopics[t]) + m.Beta) /
				(float64(s.local[t]) + m.BetaSum)
			s.weights[t] = p
			sum += p
		}
		k, e := SampleMultinomial(rng, s.weights, sum)
		if e != nil {
			r.Err = fmt.Errorf("token %d (word %d, doc %d): %w", i, w, d, e)
			return r
		}
		newTopic := int32(k)

		wordTopics[newTopic]++
		m.TopicsInDoc[newTopic][d]++
		s.local.Inc(int(newTopic), 1)
		s.store.SetTopic(i, newTopic)

		r.Visited++
		if newTopic != oldTopic {
			r.Moves++
		}
	}
	r.Delta = s.local.Diff(c.Global)
	return r
}
