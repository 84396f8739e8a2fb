package nested

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentWalker_Plan(t *testing.T) {
	self := MustSizeMatrix([][]int{{1, 3}, {2, 2}})
	w := NewSegmentWalker(self, self.DropLast())

	assert.Equal(t, 2, w.NumComponents())

	count, length := w.Segments(0)
	assert.Equal(t, 1, count)
	assert.Equal(t, 3, length)

	count, length = w.Segments(1)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, length)

	src, dst := w.Start(1)
	assert.Equal(t, 1, src)
	assert.Equal(t, 3, dst)

	src, dst = w.Lengths()
	assert.Equal(t, 3, src)
	assert.Equal(t, 7, dst)
}

type segmentVisit struct{ src, dst, length int }

func TestSegmentWalker_WalkOrder(t *testing.T) {
	self := MustSizeMatrix([][]int{{1, 3}, {2, 2}})
	w := NewSegmentWalker(self, self.DropLast())

	var visits []segmentVisit
	src, dst := w.Walk(func(s, d, l int) {
		visits = append(visits, segmentVisit{s, d, l})
	})

	assert.Equal(t, []segmentVisit{{0, 0, 3}, {1, 3, 2}, {2, 5, 2}}, visits)
	assert.Equal(t, 3, src)
	assert.Equal(t, 7, dst)
}

// Every destination slot is covered by exactly one segment and every source
// scalar is consumed exactly once.
func TestSegmentWalker_Coverage(t *testing.T) {
	cases := [][][]int{
		{{2, 4}},
		{{1, 3}, {2, 2}},
		{{3, 2, 5}, {1, 4, 2}, {2, 2, 1}},
		{{4}, {1}, {7}},
		{{0, 5}, {2, 3}, {3, 0}},
	}
	for _, rows := range cases {
		self := MustSizeMatrix(rows)
		reduced := self.DropLast()
		w := NewSegmentWalker(self, reduced)

		srcHits := make([]int, reduced.TotalNumel())
		dstHits := make([]int, self.TotalNumel())
		src, dst := w.Walk(func(s, d, l int) {
			srcHits[s]++
			for k := d; k < d+l; k++ {
				dstHits[k]++
			}
		})

		assert.Equal(t, len(srcHits), src, "sizes %v", rows)
		assert.Equal(t, len(dstHits), dst, "sizes %v", rows)
		for i, h := range srcHits {
			assert.Equal(t, 1, h, "sizes %v src slot %d", rows, i)
		}
		for i, h := range dstHits {
			assert.Equal(t, 1, h, "sizes %v dst slot %d", rows, i)
		}
	}
}

func TestSegmentWalker_WalkRangeMatchesWalk(t *testing.T) {
	self := MustSizeMatrix([][]int{{3, 2, 5}, {1, 4, 2}, {2, 2, 1}, {1, 1, 6}})
	w := NewSegmentWalker(self, self.DropLast())

	var whole []segmentVisit
	w.Walk(func(s, d, l int) { whole = append(whole, segmentVisit{s, d, l}) })

	var pieces []segmentVisit
	for _, r := range [][2]int{{0, 1}, {1, 3}, {3, 4}} {
		w.WalkRange(r[0], r[1], func(s, d, l int) { pieces = append(pieces, segmentVisit{s, d, l}) })
	}
	assert.Equal(t, whole, pieces)

	src, dst := w.WalkRange(2, 2, func(_, _, _ int) { t.Fatal("empty range visited a segment") })
	wantSrc, wantDst := w.Start(2)
	assert.Equal(t, wantSrc, src)
	assert.Equal(t, wantDst, dst)

	require.Panics(t, func() { w.WalkRange(3, 5, func(_, _, _ int) {}) })
}

func TestSegmentWalker_NoComponents(t *testing.T) {
	self := UniformSizeMatrix(0, []int{2, 3})
	w := NewSegmentWalker(self, self.DropLast())
	src, dst := w.Walk(func(_, _, _ int) { t.Fatal("unexpected segment") })
	assert.Zero(t, src)
	assert.Zero(t, dst)
}

func TestSegmentWalker_Mismatch(t *testing.T) {
	self := MustSizeMatrix([][]int{{1, 3}, {2, 2}})

	// Gradient claims three segments for component 1.
	exc := exceptions.Try(func() { NewSegmentWalker(self, MustSizeMatrix([][]int{{1}, {3}})) })
	require.NotNil(t, exc)
	assert.Contains(t, exc.(error).Error(), "component 1 has 3 segments of length 2")

	require.Panics(t, func() { NewSegmentWalker(self, MustSizeMatrix([][]int{{1}})) })
	require.Panics(t, func() {
		scalars := UniformSizeMatrix(2, []int{})
		NewSegmentWalker(scalars, scalars)
	})
}
