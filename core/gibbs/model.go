package gibbs

import (
	"fmt"

	"github.com/neil-justice/lda-sub000/core/hist"
)

// Model holds the count matrices of collapsed Gibbs sampling and the
// Dirichlet priors.  WordsInTopic, TopicsInDoc and TokensInTopic are
// three views of the same multiset of topic assignments; TokensInDoc
// is fixed once the corpus is loaded.
type Model struct {
	WordsInTopic  [][]int32 // [word][topic]
	TopicsInDoc   [][]int32 // [topic][doc]
	TokensInTopic hist.Dense
	TokensInDoc   []int32

	Alpha    []float64
	AlphaSum float64
	Beta     float64
	BetaSum  float64
}

func NewModel(numTopics, vocabSize, numDocs int, alpha, beta float64) *Model {
	if numTopics < 2 {
		panic(fmt.Sprintf("numTopics = %d, less than 2", numTopics))
	}
	if vocabSize < 1 {
		panic(fmt.Sprintf("vocabSize = %d, less than 1", vocabSize))
	}
	if alpha <= 0.0 {
		panic(fmt.Sprintf("alpha = %f, less than 0", alpha))
	}
	if beta <= 0.0 {
		panic(fmt.Sprintf("beta = %f, less than 0", beta))
	}
	m := &Model{
		WordsInTopic:  make([][]int32, vocabSize),
		TopicsInDoc:   make([][]int32, numTopics),
		TokensInTopic: hist.NewDense(numTopics),
		TokensInDoc:   make([]int32, numDocs),
		Alpha:         make([]float64, numTopics),
		Beta:          beta,
		BetaSum:       beta * float64(vocabSize),
	}
	for w := range m.WordsInTopic {
		m.WordsInTopic[w] = make([]int32, numTopics)
	}
	for t := range m.TopicsInDoc {
		m.TopicsInDoc[t] = make([]int32, numDocs)
	}
	m.SetFlatAlpha(alpha)
	return m
}

func (m *Model) NumTopics() int {
	return len(m.Alpha)
}

func (m *Model) VocabSize() int {
	return len(m.WordsInTopic)
}

func (m *Model) NumDocs() int {
	return len(m.TokensInDoc)
}

func (m *Model) SetFlatAlpha(alpha float64) {
	for t := range m.Alpha {
		m.Alpha[t] = alpha
	}
	m.AlphaSum = alpha * float64(len(m.Alpha))
}

// SetAlpha copies alpha into the model and recomputes AlphaSum.
func (m *Model) SetAlpha(alpha []float64) {
	copy(m.Alpha, alpha)
	m.AlphaSum = 0
	for _, a := range m.Alpha {
		m.AlphaSum += a
	}
}

// Apply adds the current assignments of s to the counts.  It is the
// single-threaded scan run at initialization.
func (m *Model) Apply(s *TokenStore) {
	for i := 0; i < s.Len(); i++ {
		w, d, t := s.Word(i), s.Doc(i), s.Topic(i)
		m.WordsInTopic[w][t]++
		m.TopicsInDoc[t][d]++
		m.TokensInTopic.Inc(int(t), 1)
		m.TokensInDoc[d]++
	}
}

// Phi returns the posterior mean of P(word | topic) under the current
// counts.
func (m *Model) Phi(word, topic int) float64 {
	return (float64(m.WordsInTopic[word][topic]) + m.Beta) /
		(float64(m.TokensInTopic[topic]) + m.BetaSum)
}

// Theta returns the posterior mean of P(topic | doc) under the current
// counts.
func (m *Model) Theta(topic, doc int) float64 {
	return (float64(m.TopicsInDoc[topic][doc]) + m.Alpha[topic]) /
		(float64(m.TokensInDoc[doc]) + m.AlphaSum)
}

// Verify checks that the three views of the assignments agree with
// each other, with the document lengths, and with the assignments held
// by s.
func (m *Model) Verify(s *TokenStore) error {
	k := m.NumTopics()
	byWord := make([]int64, k)
	for w, row := range m.WordsInTopic {
		for t, c := range row {
			if c < 0 {
				return fmt.Errorf("wordsInTopic[%d][%d] = %d is negative", w, t, c)
			}
			byWord[t] += int64(c)
		}
	}
	for t := 0; t < k; t++ {
		var byDoc int64
		for d, c := range m.TopicsInDoc[t] {
			if c < 0 {
				return fmt.Errorf("topicsInDoc[%d][%d] = %d is negative", t, d, c)
			}
			byDoc += int64(c)
		}
		if n := m.TokensInTopic[t]; n != byWord[t] || n != byDoc {
			return fmt.Errorf("topic %d: tokensInTopic = %d, by word = %d, by doc = %d",
				t, n, byWord[t], byDoc)
		}
	}
	if total := m.TokensInTopic.Sum(); total != int64(s.Len()) {
		return fmt.Errorf("tokensInTopic sums to %d, corpus has %d tokens",
			total, s.Len())
	}
	for d := range m.TokensInDoc {
		var n int32
		for t := 0; t < k; t++ {
			n += m.TopicsInDoc[t][d]
		}
		if n != m.TokensInDoc[d] {
			return fmt.Errorf("doc %d: topicsInDoc sums to %d, tokensInDoc = %d",
				d, n, m.TokensInDoc[d])
		}
	}

	recount := NewModel(k, m.VocabSize(), m.NumDocs(), 1.0, 1.0)
	recount.Apply(s)
	for w, row := range m.WordsInTopic {
		for t, c := range row {
			if c != recount.WordsInTopic[w][t] {
				return fmt.Errorf("wordsInTopic[%d][%d] = %d, assignments give %d",
					w, t, c, recount.WordsInTopic[w][t])
			}
		}
	}
	for t, row := range m.TopicsInDoc {
		for d, c := range row {
			if c != recount.TopicsInDoc[t][d] {
				return fmt.Errorf("topicsInDoc[%d][%d] = %d, assignments give %d",
					t, d, c, recount.TopicsInDoc[t][d])
			}
		}
	}
	return nil
}
