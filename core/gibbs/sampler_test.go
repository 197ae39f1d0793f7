package gibbs

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/neil-justice/lda-sub000/core/hist"
)

func testingCell(m *Model, epoch, row int, p *Partitioning) cell {
	global := hist.NewDense(m.NumTopics())
	global.Assign(m.TokensInTopic)
	return cell{
		Epoch:  epoch,
		Row:    row,
		Column: p.Column(epoch, row),
		Global: global,
	}
}

func TestSamplerSample(t *testing.T) {
	m, s, v := CreateTestingModel(CreateTestingDocuments(), testingK)
	p := NewPartitioning(1, s, v.Len())
	sampler := NewSampler(m, s, p)
	rng := rand.New(rand.NewSource(-1))

	for iter := 0; iter < 100; iter++ {
		c := testingCell(m, 0, 0, p)
		r := sampler.Sample(c, rng)
		if r.Err != nil {
			t.Fatalf("Iteration %d: %v", iter, r.Err)
		}
		if r.Visited != s.Len() {
			t.Errorf("Expecting %d visited tokens, got %d", s.Len(), r.Visited)
		}
		if r.Moves > r.Visited {
			t.Errorf("%d moves of %d tokens", r.Moves, r.Visited)
		}
		if r.Delta.Sum() != 0 {
			t.Errorf("Delta %v does not sum to 0", r.Delta)
		}
		m.TokensInTopic.Add(r.Delta)
		if e := m.Verify(s); e != nil {
			t.Fatalf("Iteration %d: %v", iter, e)
		}
	}
}

func TestSamplerSampleCell(t *testing.T) {
	docs := CreateTestingCorpus(20, 1)
	m, s, v := CreateTestingModel(docs, testingK)
	p := NewPartitioning(2, s, v.Len())
	sampler := NewSampler(m, s, p)
	rng := rand.New(rand.NewSource(1))

	for epoch := 0; epoch < p.Parts; epoch++ {
		for row := 0; row < p.Parts; row++ {
			c := testingCell(m, epoch, row, p)
			want := 0
			for i := p.TokenBounds[row]; i < p.TokenBounds[row+1]; i++ {
				if p.WordPartition(s.Word(i)) == c.Column {
					want++
				}
			}
			before := s.Topics()
			r := sampler.Sample(c, rng)
			if r.Err != nil {
				t.Fatal(r.Err)
			}
			if r.Visited != want {
				t.Errorf("Cell (%d, %d): expecting %d visited tokens, got %d",
					row, c.Column, want, r.Visited)
			}
			after := s.Topics()
			for i := range before {
				inCell := i >= p.TokenBounds[row] && i < p.TokenBounds[row+1] &&
					p.WordPartition(s.Word(i)) == c.Column
				if !inCell && before[i] != after[i] {
					t.Errorf("Token %d outside of cell (%d, %d) changed topic",
						i, row, c.Column)
				}
			}
			m.TokensInTopic.Add(r.Delta)
		}
	}
	if e := m.Verify(s); e != nil {
		t.Error(e)
	}
}

func TestSamplerNoSample(t *testing.T) {
	docs := [][]string{{"a"}, {"b"}}
	m, s, v := CreateTestingModel(docs, testingK)
	m.SetAlpha([]float64{0, 0})
	p := NewPartitioning(1, s, v.Len())

	r := NewSampler(m, s, p).Sample(testingCell(m, 0, 0, p), rand.New(rand.NewSource(1)))
	if !errors.Is(r.Err, ErrNoSample) {
		t.Errorf("Expecting ErrNoSample, got %v", r.Err)
	}
}

func TestSamplerRecoversPanic(t *testing.T) {
	m, s, v := CreateTestingModel(CreateTestingDocuments(), testingK)
	p := NewPartitioning(1, s, v.Len())
	c := testingCell(m, 0, 0, p)
	c.Row = 3

	r := NewSampler(m, s, p).Sample(c, rand.New(rand.NewSource(1)))
	if r.Err == nil || !strings.Contains(r.Err.Error(), "panicked") {
		t.Errorf("Expecting a recovered panic, got %v", r.Err)
	}
}
