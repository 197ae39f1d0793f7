package gibbs

import (
	"fmt"
)

// Sharder defines a sequence of fixed number of buckets, and the
// allocation of a zero-based sequence of integers into these buckets.
// Every bucket gets n/Shards consecutive integers; the last bucket
// also absorbs the remainder.
type Sharder struct {
	Shards int
}

func NewSharder(shards int) Sharder {
	if shards <= 0 {
		panic(fmt.Sprintf("shards (%d) <= 0", shards))
	}
	return Sharder{shards}
}

// Bounds returns Shards+1 boundaries b, such that bucket j holds
// [b[j], b[j+1]).
func (s Sharder) Bounds(n int) []int {
	b := make([]int, s.Shards+1)
	size := n / s.Shards
	for j := 0; j < s.Shards; j++ {
		b[j] = j * size
	}
	b[s.Shards] = n
	return b
}

// Partitioning cuts the corpus into a Parts x Parts grid.  Rows are
// contiguous ranges of documents, mapped onto ranges of token indices;
// columns are contiguous ranges of word ids.  In epoch e, document
// partition p is swept together with word partition (e+p) mod Parts.
// For a fixed epoch this is a bijection between rows and columns, so
// the cells of one epoch never share a row of wordsInTopic or a
// column of topicsInDoc, and over Parts epochs every cell is swept
// exactly once.
type Partitioning struct {
	Parts       int
	DocBounds   []int
	TokenBounds []int
	WordBounds  []int
	wordPart    []int32
}

// NewPartitioning builds a grid of at most parts partitions; the
// count is reduced so that neither the documents nor the vocabulary
// are cut into more ranges than they have elements.  s must still be
// in document order.
func NewPartitioning(parts int, s *TokenStore, vocabSize int) *Partitioning {
	if parts > s.NumDocs() {
		parts = s.NumDocs()
	}
	if parts > vocabSize {
		parts = vocabSize
	}
	if parts < 1 {
		parts = 1
	}

	sh := NewSharder(parts)
	p := &Partitioning{
		Parts:       parts,
		DocBounds:   sh.Bounds(s.NumDocs()),
		TokenBounds: make([]int, parts+1),
		WordBounds:  sh.Bounds(vocabSize),
		wordPart:    make([]int32, vocabSize),
	}
	for j, d := range p.DocBounds {
		p.TokenBounds[j] = s.DocStart(d)
	}
	for j := 0; j < parts; j++ {
		for w := p.WordBounds[j]; w < p.WordBounds[j+1]; w++ {
			p.wordPart[w] = int32(j)
		}
	}
	return p
}

// WordPartition returns the column of word.
func (p *Partitioning) WordPartition(word int32) int {
	return int(p.wordPart[word])
}

// Column returns the word partition swept by document partition row
// in epoch.
func (p *Partitioning) Column(epoch, row int) int {
	return (epoch + row) % p.Parts
}

// Epoch returns the epoch in which the cell (row, column) is swept.
func (p *Partitioning) Epoch(row, column int) int {
	return (column - row + p.Parts) % p.Parts
}
