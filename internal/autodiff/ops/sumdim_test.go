package ops_test

import (
	"testing"

	"github.com/born-ml/nested/internal/autodiff/ops"
	"github.com/born-ml/nested/internal/backend/cpu"
	"github.com/born-ml/nested/internal/nested"
	"github.com/born-ml/nested/internal/parallel"
	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestSumDimBackward_SingleComponent(t *testing.T) {
	self := nestedOf(t, [][]int{{2, 4}}, seq(8))
	grad := nestedOf(t, [][]int{{2}}, []float32{10, 20})

	got := ops.SumDimBackward(grad, nil, []int{-1}, false, self, cpu.New())
	assert.Equal(t, []float32{10, 10, 10, 10, 20, 20, 20, 20}, tensor.ToSlice[float32](got.Buffer()))
	assert.True(t, got.SizeMatrix().Equal(self.SizeMatrix()))
	assert.NotSame(t, self.SizeMatrix(), got.SizeMatrix())
}

func TestSumDimBackward_Ragged(t *testing.T) {
	self := nestedOf(t, [][]int{{1, 3}, {2, 2}}, seq(7))
	grad := nestedOf(t, [][]int{{1}, {2}}, []float32{5, 1, 2})

	got := ops.SumDimBackward(grad, nil, nil, false, self, cpu.New())
	assert.Equal(t, []float32{5, 5, 5, 1, 1, 2, 2}, tensor.ToSlice[float32](got.Buffer()))
	assert.True(t, got.IsContiguous())

	// The trailing dimension may also be named by its positive index.
	got = ops.SumDimBackward(grad, nil, []int{self.Rank()}, false, self, cpu.New())
	assert.Equal(t, []float32{5, 5, 5, 1, 1, 2, 2}, tensor.ToSlice[float32](got.Buffer()))
}

func TestSumDimBackward_Rank3WithEmptySegments(t *testing.T) {
	self := nestedOf(t, [][]int{{2, 2, 2}, {1, 3, 0}, {1, 1, 3}}, seq(11))
	grad := nestedOf(t, [][]int{{2, 2}, {1, 3}, {1, 1}}, []float32{1, 2, 3, 4, 9, 9, 9, 7})

	got := ops.SumDimBackward(grad, nil, []int{-1}, false, self, cpu.New())
	assert.Equal(t, []float32{1, 1, 2, 2, 3, 3, 4, 4, 7, 7, 7}, tensor.ToSlice[float32](got.Buffer()))
}

func TestSumDimBackwardDense(t *testing.T) {
	self := nestedOf(t, [][]int{{3}, {2}}, seq(5))

	got := ops.SumDimBackwardDense(tensor.Vector([]float32{4, 7}), nil, []int{-1}, false, self, cpu.New())
	assert.Equal(t, []float32{4, 4, 4, 7, 7}, tensor.ToSlice[float32](got.Buffer()))

	// Rank-2 components reduced to uniform [2] rows arrive as a dense [N, 2] gradient.
	self = nestedOf(t, [][]int{{2, 1}, {2, 3}}, seq(8))
	dense := matrixOf(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	got = ops.SumDimBackwardDense(dense, nil, []int{-1}, false, self, cpu.New())
	assert.Equal(t, []float32{1, 2, 3, 3, 3, 4, 4, 4}, tensor.ToSlice[float32](got.Buffer()))

	assert.Panics(t, func() {
		ops.SumDimBackwardDense(matrixOf(t, tensor.Shape{}, []float32{1}), nil, nil, false, self, cpu.New())
	})
}

func testSumDimDType[T tensor.Integer | tensor.Float](t *testing.T) {
	self := nestedOf(t, [][]int{{1, 3}, {2, 2}}, make([]T, 7))
	grad := nestedOf(t, [][]int{{1}, {2}}, []T{5, 1, 2})

	got := ops.SumDimBackward(grad, nil, []int{-1}, false, self, cpu.New())
	assert.Equal(t, tensor.DataTypeOf[T](), got.DType())
	assert.Equal(t, []T{5, 5, 5, 1, 1, 2, 2}, tensor.ToSlice[T](got.Buffer()))
}

func TestSumDimBackward_AllDTypes(t *testing.T) {
	t.Run("int8", testSumDimDType[int8])
	t.Run("int16", testSumDimDType[int16])
	t.Run("int32", testSumDimDType[int32])
	t.Run("int64", testSumDimDType[int64])
	t.Run("uint8", testSumDimDType[uint8])
	t.Run("uint16", testSumDimDType[uint16])
	t.Run("uint32", testSumDimDType[uint32])
	t.Run("uint64", testSumDimDType[uint64])
	t.Run("float32", testSumDimDType[float32])
	t.Run("float64", testSumDimDType[float64])

	t.Run("float16", func(t *testing.T) {
		h := func(v float32) float16.Float16 { return float16.Fromfloat32(v) }
		self := nestedOf(t, [][]int{{1, 3}, {2, 2}}, make([]float16.Float16, 7))
		grad := nestedOf(t, [][]int{{1}, {2}}, []float16.Float16{h(0.5), h(-1), h(2)})

		got := ops.SumDimBackward(grad, nil, []int{-1}, false, self, cpu.New())
		assert.Equal(t, []float16.Float16{h(0.5), h(0.5), h(0.5), h(-1), h(-1), h(2), h(2)},
			tensor.ToSlice[float16.Float16](got.Buffer()))
	})

	t.Run("bfloat16", func(t *testing.T) {
		b := func(v float32) bfloat16.BFloat16 { return bfloat16.FromFloat32(v) }
		self := nestedOf(t, [][]int{{1, 3}, {2, 2}}, make([]bfloat16.BFloat16, 7))
		grad := nestedOf(t, [][]int{{1}, {2}}, []bfloat16.BFloat16{b(0.5), b(-1), b(2)})

		got := ops.SumDimBackward(grad, nil, []int{-1}, false, self, cpu.New())
		assert.Equal(t, []bfloat16.BFloat16{b(0.5), b(0.5), b(0.5), b(-1), b(-1), b(2), b(2)},
			tensor.ToSlice[bfloat16.BFloat16](got.Buffer()))
	})
}

func TestSumDimBackward_ParallelMatchesSequential(t *testing.T) {
	const n = 257
	rows := make([][]int, n)
	reduced := make([][]int, n)
	selfNumel, gradNumel := 0, 0
	for i := range rows {
		rows[i] = []int{i%4 + 1, i%7 + 1}
		reduced[i] = []int{i%4 + 1}
		selfNumel += rows[i][0] * rows[i][1]
		gradNumel += rows[i][0]
	}
	self := nestedOf(t, rows, make([]float32, selfNumel))
	grad := nestedOf(t, reduced, seq(gradNumel))

	sequential := ops.SumDimBackward(grad, nil, []int{-1}, false, self, cpu.NewWithConfig(parallel.Sequential()))
	concurrent := ops.SumDimBackward(grad, nil, []int{-1}, false, self,
		cpu.NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 8, MinChunkSize: 1}))

	require.Equal(t, selfNumel, concurrent.Numel())
	assert.Equal(t, tensor.ToSlice[float32](sequential.Buffer()), tensor.ToSlice[float32](concurrent.Buffer()))
}

func TestSumDimBackward_InvalidArguments(t *testing.T) {
	backend := cpu.New()
	self := nestedOf(t, [][]int{{1, 3}, {2, 2}}, seq(7))
	grad := nestedOf(t, [][]int{{1}, {2}}, []float32{5, 1, 2})

	msg := panicMessage(t, func() { ops.SumDimBackward(grad, nil, []int{-1}, false, nil, backend) })
	assert.Contains(t, msg, "forward input is required")

	msg = panicMessage(t, func() { ops.SumDimBackward(grad, nil, []int{-1}, true, self, backend) })
	assert.Contains(t, msg, "keepdim")

	msg = panicMessage(t, func() { ops.SumDimBackward(grad, nil, []int{1}, false, self, backend) })
	assert.Contains(t, msg, "only the trailing dimension")

	assert.Panics(t, func() { ops.SumDimBackward(grad, nil, []int{1, 2}, false, self, backend) })
	assert.Panics(t, func() { ops.SumDimBackward(nil, nil, nil, false, self, backend) })

	// Gradient dtype differs from the input.
	gradInt := nestedOf(t, [][]int{{1}, {2}}, []int32{5, 1, 2})
	msg = panicMessage(t, func() { ops.SumDimBackward(gradInt, nil, nil, false, self, backend) })
	assert.Contains(t, msg, "dtype")
}

func TestSumDimBackward_SizeMismatch(t *testing.T) {
	backend := cpu.New()
	self := nestedOf(t, [][]int{{2, 4}}, seq(8))

	// Three scalars for a component with two segments.
	assert.Panics(t, func() {
		ops.SumDimBackward(nestedOf(t, [][]int{{3}}, seq(3)), nil, nil, false, self, backend)
	})
	// Component count disagrees.
	assert.Panics(t, func() {
		ops.SumDimBackward(nestedOf(t, [][]int{{2}, {1}}, seq(3)), nil, nil, false, self, backend)
	})
}

func TestSumDimBackward_NonContiguousGradientPanics(t *testing.T) {
	self := nestedOf(t, [][]int{{1, 3}, {1, 2}}, seq(5))
	sizes := nested.MustSizeMatrix([][]int{{1}, {1}})
	grad := nested.WrapStrided(tensor.Vector([]float32{1, 2, 3}), sizes, []int{2, 0})

	msg := panicMessage(t, func() { ops.SumDimBackward(grad, nil, nil, false, self, cpu.New()) })
	assert.Contains(t, msg, "not contiguous")
}

func TestSumDimOp(t *testing.T) {
	self := nestedOf(t, [][]int{{2, 4}}, seq(8))
	output := nestedOf(t, [][]int{{2}}, []float32{6, 22})
	op := ops.NewSumDimOp(self, output)

	assert.Equal(t, "sum_dim", op.Name())
	assert.Same(t, output, op.Output())

	got := op.Backward(nestedOf(t, [][]int{{2}}, []float32{1, 2}), cpu.New())
	assert.Equal(t, []float32{1, 1, 1, 1, 2, 2, 2, 2}, tensor.ToSlice[float32](got.Buffer()))
}
