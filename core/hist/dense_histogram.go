package hist

import (
	"fmt"
	"math"
)

// Dense is a plain histogram represented by a count array.  The
// engine uses it for the global tokens-per-topic vector, for the
// local copies held by sampling cells, and for the deltas those cells
// report back.  A delta may hold negative counts.
type Dense []int64

func NewDense(dim int) Dense {
	return make(Dense, int(dim), int(dim))
}

func (d Dense) Inc(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	if d[topic] >= math.MaxInt64-int64(count) {
		panic(fmt.Sprintf("d[%d] = %d overflow", topic, d[topic]))
	}
	d[topic] += int64(count)
}

func (d Dense) Dec(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	d[topic] -= int64(count)
}

// Assign overwrites d with the content of o.  Both must have the same
// length.
func (d Dense) Assign(o Dense) Dense {
	if len(d) != len(o) {
		panic(fmt.Sprintf("Assign: len(d) = %d, len(o) = %d", len(d), len(o)))
	}
	copy(d, o)
	return d
}

// Add folds delta into d element-wise.
func (d Dense) Add(delta Dense) {
	if len(d) != len(delta) {
		panic(fmt.Sprintf("Add: len(d) = %d, len(delta) = %d",
			len(d), len(delta)))
	}
	for i, v := range delta {
		d[i] += v
	}
}

// Diff returns d - o as a new histogram.
func (d Dense) Diff(o Dense) Dense {
	if len(d) != len(o) {
		panic(fmt.Sprintf("Diff: len(d) = %d, len(o) = %d", len(d), len(o)))
	}
	n := NewDense(len(d))
	for i := range d {
		n[i] = d[i] - o[i]
	}
	return n
}

func (d Dense) Sum() int64 {
	var s int64
	for _, v := range d {
		s += v
	}
	return s
}
