package gibbs

import (
	"math"

	log "github.com/golang/glog"

	"github.com/neil-justice/lda-sub000/core/hist"
)

const (
	// DefaultShape and DefaultScale parameterize the Gamma hyperprior
	// on the topic prior.
	DefaultShape = 1.001
	DefaultScale = 1.0

	// DefaultAlpha is the flat topic prior, and the vector the
	// optimizer falls back to when an iteration goes out of bounds.
	DefaultAlpha = 0.1

	// MinAlpha is the smallest topic prior the optimizer lets through.
	MinAlpha = 1e-8

	DefaultOptimizeIterations = 10
)

// OptimizerStats counts out-of-bounds events of the fixed-point
// iteration.  Resets is the number of times alpha was replaced by the
// flat default; Clamped the number of alpha values raised to
// MinAlpha.
type OptimizerStats struct {
	Runs    int
	Resets  int
	Clamped int
}

// Optimizer collects statistics for optimizing the asymmetric
// Dirichlet topic prior.
type Optimizer struct {
	// docLenHist is the histogram of document lengths.
	docLenHist hist.Sparse
	// topicDocHists[t] is a histogram of the number of documents, in
	// which topic t occurs n times.
	topicDocHists []hist.Sparse

	Shape    float64
	Scale    float64
	Fallback float64
	Stats    OptimizerStats
}

func NewOptimizer(numTopics int) *Optimizer {
	o := &Optimizer{
		docLenHist:    hist.NewSparse(),
		topicDocHists: make([]hist.Sparse, numTopics),
		Shape:         DefaultShape,
		Scale:         DefaultScale,
		Fallback:      DefaultAlpha,
	}
	for i := range o.topicDocHists {
		o.topicDocHists[i] = hist.NewSparse()
	}
	return o
}

// Reset drops collected statistics but keeps Stats.
func (o *Optimizer) Reset() {
	o.docLenHist.Clear()
	for _, h := range o.topicDocHists {
		h.Clear()
	}
}

// CollectDocumentStatistics records document doc of m.  Zero counts
// are not recorded, as the recurrence starts at one.
func (o *Optimizer) CollectDocumentStatistics(m *Model, doc int) {
	for t, h := range o.topicDocHists {
		if c := m.TopicsInDoc[t][doc]; c > 0 {
			h.Inc(int(c), 1)
		}
	}
	if l := m.TokensInDoc[doc]; l > 0 {
		o.docLenHist.Inc(int(l), 1)
	}
}

func (o *Optimizer) CollectModelStatistics(m *Model) {
	for d := 0; d < m.NumDocs(); d++ {
		o.CollectDocumentStatistics(m, d)
	}
}

// approximateHist creates a dense histogram that approximates a
// sparse histogram.  The length of the histogram is the maximum index
// value in the sparse histogram plus one.  This function is only used
// to compute the Digamma differences used in prior optimization.
func approximateHist(s hist.Sparse) hist.Dense {
	maxIdx := s.MaxKey()
	if maxIdx < 0 {
		return nil
	}
	d := hist.NewDense(maxIdx + 1)
	s.ForEach(func(k int, v int64) error {
		if v > 0 {
			d.Inc(k, int(v))
		}
		return nil
	})
	return d
}

// digammaSum returns sum_n h[n] * (Digamma(n + a) - Digamma(a)), with
// the digamma difference expanded by the recurrence
// Digamma(x+1) = Digamma(x) + 1/x into a harmonic sum.
func digammaSum(h hist.Dense, a float64) float64 {
	diff, sum := 0.0, 0.0
	for n := 1; n < len(h); n++ {
		diff += 1.0 / (float64(n) - 1.0 + a)
		sum += float64(h[n]) * diff
	}
	return sum
}

// OptimizeTopicPriors re-estimates m.Alpha using Minka's fixed-point
// iteration and the digamma recurrence relation, as described in
//
//	Hanna M. Wallach. Structured Topic Models for Language. Ph.D.
//	thesis, University of Cambridge, 2008.
//
// with a Gamma(Shape, Scale) hyperprior:
//
//	alpha[k] *= (S_k + Shape) / (S - 1/Scale)
//
// Every iteration is bounds-checked.  If no topic was observed in any
// document, if the denominator is not positive, or if an update is
// not a finite non-negative number, alpha is reset to the flat
// Fallback vector and OptimizeTopicPriors returns false.
func (o *Optimizer) OptimizeTopicPriors(m *Model, iterations int) bool {
	o.Stats.Runs++
	observed := false
	for _, h := range o.topicDocHists {
		if h.MaxKey() > 0 {
			observed = true
			break
		}
	}
	if !observed {
		return o.reset(m, "no topic occurs in any document", 0)
	}

	docLens := approximateHist(o.docLenHist)
	topicCounts := make([]hist.Dense, len(o.topicDocHists))
	for k, h := range o.topicDocHists {
		topicCounts[k] = approximateHist(h)
	}

	alpha := make([]float64, len(m.Alpha))
	copy(alpha, m.Alpha)
	alphaSum := m.AlphaSum
	for it := 0; it < iterations; it++ {
		denominator := digammaSum(docLens, alphaSum) - 1.0/o.Scale
		if !(denominator > 0) || math.IsInf(denominator, 0) {
			return o.reset(m, "denominator out of bounds", denominator)
		}

		alphaSum = 0.0
		for k := range alpha {
			numerator := digammaSum(topicCounts[k], alpha[k])
			a := alpha[k] * (numerator + o.Shape) / denominator
			if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
				return o.reset(m, "alpha out of bounds", a)
			}
			if a < MinAlpha {
				a = MinAlpha
				o.Stats.Clamped++
			}
			alpha[k] = a
			alphaSum += a
		}
	}
	m.SetAlpha(alpha)
	return true
}

func (o *Optimizer) reset(m *Model, reason string, value float64) bool {
	o.Stats.Resets++
	log.Warningf("Topic prior optimization: %s (%g); resetting alpha to %g "+
		"(%d resets in %d runs)", reason, value, o.Fallback,
		o.Stats.Resets, o.Stats.Runs)
	m.SetFlatAlpha(o.Fallback)
	return false
}
