package gibbs

import (
	"sort"
)

// TokenStore holds every token occurrence of the corpus as three
// parallel arrays indexed by a global token index.  Tokens appear in
// document order: all tokens of document d precede those of d+1.
//
// TokenStore does no locking.  SetTopic on token i must only be
// called by the goroutine that owns i's document partition in the
// current epoch.
type TokenStore struct {
	words   []int32
	docs    []int32
	topics  []int32
	numDocs int
}

// NewTokenStore lays out docs in document order.  Tokens missing from
// vocab are dropped; a document may therefore end up empty, and it
// still occupies a document id.  All topics are initialized to 0.
func NewTokenStore(docs [][]string, vocab *Vocabulary) *TokenStore {
	n := 0
	for _, d := range docs {
		n += len(d)
	}
	s := &TokenStore{
		words:   make([]int32, 0, n),
		docs:    make([]int32, 0, n),
		numDocs: len(docs),
	}
	for d, doc := range docs {
		for _, w := range doc {
			if id := vocab.Id(w); id >= 0 {
				s.words = append(s.words, id)
				s.docs = append(s.docs, int32(d))
			}
		}
	}
	s.topics = make([]int32, len(s.words))
	return s
}

// Len returns the number of tokens.
func (s *TokenStore) Len() int {
	return len(s.words)
}

func (s *TokenStore) NumDocs() int {
	return s.numDocs
}

func (s *TokenStore) Word(i int) int32 {
	return s.words[i]
}

func (s *TokenStore) Doc(i int) int32 {
	return s.docs[i]
}

func (s *TokenStore) Topic(i int) int32 {
	return s.topics[i]
}

func (s *TokenStore) SetTopic(i int, topic int32) {
	s.topics[i] = topic
}

// DocStart returns the index of the first token of doc, or, if doc
// has no tokens, the index of the first token of the next non-empty
// document.  DocStart(NumDocs()) returns Len(), so [DocStart(d),
// DocStart(d+1)) is the token range of d.
//
// DocStart relies on tokens being in document order.  Calling it
// after the token arrays were reordered returns garbage; this
// precondition is not checked.
func (s *TokenStore) DocStart(doc int) int {
	return sort.Search(len(s.docs), func(i int) bool {
		return int(s.docs[i]) >= doc
	})
}

// DocLen returns the number of tokens of doc.
func (s *TokenStore) DocLen(doc int) int {
	return s.DocStart(doc+1) - s.DocStart(doc)
}

// Topics returns a copy of the topic assignments.
func (s *TokenStore) Topics() []int32 {
	c := make([]int32, len(s.topics))
	copy(c, s.topics)
	return c
}
