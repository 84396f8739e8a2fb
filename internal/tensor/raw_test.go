package tensor

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestNewRawZeroExtent(t *testing.T) {
	raw, err := NewRaw(Shape{0, 3}, Float32, CPU)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.NumElements())
	assert.Empty(t, Flat[float32](raw))
}

func TestNewRawRejectsNegativeDim(t *testing.T) {
	_, err := NewRaw(Shape{2, -1}, Float32, CPU)
	require.Error(t, err)
}

func TestNewRawRejectsInvalidDType(t *testing.T) {
	_, err := NewRaw(Shape{2}, Invalid, CPU)
	require.Error(t, err)
}

func TestFlatZeroCopy(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Int64, CPU)
	require.NoError(t, err)

	data := Flat[int64](raw)
	require.Len(t, data, 6)

	data[0] = 42
	assert.Equal(t, int64(42), Flat[int64](raw)[0])
}

func TestFlatDTypeMismatchPanics(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Float32, CPU)
	require.NoError(t, err)
	require.Panics(t, func() { Flat[float64](raw) })
}

func TestFromSliceAllTypes(t *testing.T) {
	check := func(t *testing.T, raw *RawTensor, err error, want DataType, n int) {
		t.Helper()
		require.NoError(t, err)
		assert.Equal(t, want, raw.DType())
		assert.Equal(t, n*want.Size(), raw.ByteSize())
	}

	r1, err := FromSlice([]int8{1, -2}, Shape{2})
	check(t, r1, err, Int8, 2)
	r2, err := FromSlice([]uint16{1, 2, 3}, Shape{3})
	check(t, r2, err, Uint16, 3)
	r3, err := FromSlice([]uint64{7}, Shape{1})
	check(t, r3, err, Uint64, 1)
	r4, err := FromSlice([]float16.Float16{float16.Fromfloat32(1.5)}, Shape{1})
	check(t, r4, err, Float16, 1)
	r5, err := FromSlice([]bfloat16.BFloat16{bfloat16.FromFloat32(2)}, Shape{1})
	check(t, r5, err, BFloat16, 1)

	assert.InDelta(t, 1.5, Flat[float16.Float16](r4)[0].Float32(), 1e-6)
	assert.InDelta(t, 2.0, Flat[bfloat16.BFloat16](r5)[0].Float32(), 1e-6)
}

func TestFromSliceLengthMismatch(t *testing.T) {
	_, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	require.Error(t, err)
}

func TestViewSharesStorage(t *testing.T) {
	raw, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{6})
	require.NoError(t, err)

	v := raw.View(Shape{2, 3})
	assert.Equal(t, Shape{2, 3}, v.Shape())
	assert.Equal(t, []int{3, 1}, v.Strides())

	Flat[float32](raw)[4] = 50
	assert.Equal(t, float32(50), Flat[float32](v)[4])

	require.Panics(t, func() { raw.View(Shape{4, 2}) })
}

func TestSlice(t *testing.T) {
	raw := Vector([]int32{10, 20, 30, 40})
	s := raw.Slice(1, 3)
	assert.Equal(t, []int32{20, 30}, ToSlice[int32](s))
	assert.Equal(t, 0, raw.Slice(4, 4).NumElements())
	require.Panics(t, func() { raw.Slice(3, 5) })
}

func TestCloneIsDeep(t *testing.T) {
	raw := Vector([]float64{1, 2})
	c := raw.Clone()
	Flat[float64](c)[0] = 9
	assert.Equal(t, []float64{1, 2}, ToSlice[float64](raw))
}

func TestShapeHelpers(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 0, Shape{3, 0, 2}.NumElements())
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.Equal(t, "[2 3]", Shape{2, 3}.String())
	assert.Equal(t, "float32[2 3] on CPU", MustNewRaw(Shape{2, 3}, Float32, CPU).String())
}

func TestDataTypeCatalogue(t *testing.T) {
	for _, dt := range DataTypes {
		assert.NotEqual(t, "invalid", dt.String())
		assert.Positive(t, dt.Size())
	}
	assert.True(t, Float16.IsHalf())
	assert.True(t, BFloat16.IsFloat())
	assert.False(t, Int32.IsFloat())
	assert.Equal(t, Uint32, DataTypeOf[uint32]())
	assert.Equal(t, BFloat16, DataTypeOf[bfloat16.BFloat16]())
}
