package nested

import "github.com/gomlx/exceptions"

// SegmentWalker enumerates the segments of a trailing-dimension reduction.
//
// A component of shape [s1, ..., s_{D-1}, L] was reduced to Π(s1..s_{D-1})
// scalars, one per segment of L consecutive input elements. The walker pairs
// each scalar of the reduced (gradient) buffer with its segment in the input
// buffer using two cursors: src over the reduced buffer and dst over the input
// buffer. Both only move forward; src advances by one and dst by L per segment.
type SegmentWalker struct {
	counts    []int // segments per component (element count of the reduced row)
	lengths   []int // segment length per component (last column of the input row)
	srcStarts []int
	dstStarts []int
	srcLen    int
	dstLen    int
}

// NewSegmentWalker plans the walk for an input with sizes self whose trailing
// dimension was reduced into a gradient with sizes reduced.
//
// The plan is checked up front: every component's segments must tile its
// input elements exactly. A mismatch means the forward and backward size
// bookkeeping disagree, and panics.
func NewSegmentWalker(self, reduced *SizeMatrix) *SegmentWalker {
	if self.Rank() == 0 {
		exceptions.Panicf("segment walker: rank-0 components have no trailing dimension to reduce")
	}
	n := self.NumComponents()
	if reduced.NumComponents() != n {
		exceptions.Panicf("segment walker: input has %d components, gradient has %d", n, reduced.NumComponents())
	}

	w := &SegmentWalker{
		counts:    reduced.Numels(),
		lengths:   self.Column(self.Rank() - 1),
		srcStarts: reduced.Offsets(),
		dstStarts: self.Offsets(),
		srcLen:    reduced.TotalNumel(),
		dstLen:    self.TotalNumel(),
	}
	for i := 0; i < n; i++ {
		if covered := w.counts[i] * w.lengths[i]; covered != self.Numel(i) {
			exceptions.Panicf("segment walker: component %d has %d segments of length %d (%d elements), input component %s has %d",
				i, w.counts[i], w.lengths[i], covered, self.Row(i), self.Numel(i))
		}
	}
	return w
}

// NumComponents returns the number of components walked.
func (w *SegmentWalker) NumComponents() int {
	return len(w.counts)
}

// Segments returns the number of segments of component i and their length.
func (w *SegmentWalker) Segments(i int) (count, length int) {
	return w.counts[i], w.lengths[i]
}

// Start returns the cursor positions at which component i begins.
func (w *SegmentWalker) Start(i int) (src, dst int) {
	return w.srcStarts[i], w.dstStarts[i]
}

// Lengths returns the reduced and input buffer lengths the walk must cover.
func (w *SegmentWalker) Lengths() (src, dst int) {
	return w.srcLen, w.dstLen
}

// end returns the cursor positions just past component i.
func (w *SegmentWalker) end(i int) (src, dst int) {
	if i+1 < len(w.counts) {
		return w.srcStarts[i+1], w.dstStarts[i+1]
	}
	return w.srcLen, w.dstLen
}

// WalkRange visits the segments of components [start, end) in order, calling
// fn(src, dst, length) once per segment. Cursors start at Start(start) and
// must land exactly on each following component's start.
//
// Disjoint ranges touch disjoint cursor ranges, so callers may walk them
// concurrently.
func (w *SegmentWalker) WalkRange(start, end int, fn func(src, dst, length int)) (src, dst int) {
	if start < 0 || end > len(w.counts) || start > end {
		exceptions.Panicf("segment walker: component range [%d, %d) out of bounds for %d components", start, end, len(w.counts))
	}
	if start == end {
		if start == len(w.counts) {
			return w.srcLen, w.dstLen
		}
		return w.Start(start)
	}

	src, dst = w.Start(start)
	for i := start; i < end; i++ {
		count, length := w.counts[i], w.lengths[i]
		for j := 0; j < count; j++ {
			fn(src, dst, length)
			dst += length
			src++
		}
		if wantSrc, wantDst := w.end(i); src != wantSrc || dst != wantDst {
			exceptions.Panicf("segment walker: component %d ended at src=%d dst=%d, expected src=%d dst=%d",
				i, src, dst, wantSrc, wantDst)
		}
	}
	return src, dst
}

// Walk visits every segment of every component in index order with a single
// pair of cursors starting at zero. On return the cursors equal the reduced
// and input buffer lengths.
func (w *SegmentWalker) Walk(fn func(src, dst, length int)) (src, dst int) {
	src, dst = w.WalkRange(0, len(w.counts), fn)
	if src != w.srcLen || dst != w.dstLen {
		exceptions.Panicf("segment walker: walk ended at src=%d dst=%d, buffers hold %d and %d elements",
			src, dst, w.srcLen, w.dstLen)
	}
	return src, dst
}
