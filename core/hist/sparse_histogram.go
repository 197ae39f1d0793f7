package hist

import (
	"fmt"
	"math"
)

// Sparse represents histogram using Go map.  The optimizer keeps the
// document-length histogram and the per-topic count-of-counts
// histograms as Sparse, because both are indexed by a count whose
// range is only known after the corpus has been scanned.
type Sparse map[int32]int32

func NewSparse() Sparse {
	return make(Sparse)
}

func (s Sparse) Clear() {
	for k := range s {
		delete(s, k)
	}
}

// MaxKey returns the largest key with a non-zero count, or -1 if s is
// empty.
func (s Sparse) MaxKey() int {
	m := int32(-1)
	for k, v := range s {
		if v != 0 && k > m {
			m = k
		}
	}
	return int(m)
}

func (s Sparse) Inc(topic, count int) {
	if count <= 0 {
		panic(fmt.Sprintf("Inc(topic=%d, count=%d): count must > 0",
			topic, count))
	}
	if count > int(math.MaxInt32) {
		panic(fmt.Sprintf("count (%d) larger than MaxInt32", count))
	}
	t := int32(topic)
	if s[t] >= math.MaxInt32-int32(count) {
		panic(fmt.Sprintf("d[%d] = %d overflow", topic, s[t]))
	}
	s[t] += int32(count)
}

func (s Sparse) ForEach(p func(topic int, count int64) error) error {
	for i, v := range s {
		if e := p(int(i), int64(v)); e != nil {
			return e
		}
	}
	return nil
}
