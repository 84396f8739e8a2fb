package ops_test

import (
	"testing"

	"github.com/born-ml/nested/internal/nested"
	"github.com/born-ml/nested/internal/tensor"
	"github.com/stretchr/testify/require"
)

// nestedOf builds a contiguous nested tensor from size rows and flat data.
func nestedOf[T tensor.DType](t *testing.T, rows [][]int, data []T) *nested.NestedTensor {
	t.Helper()
	sizes, err := nested.NewSizeMatrix(rows)
	require.NoError(t, err)
	return nested.Wrap(tensor.Vector(data), sizes)
}

func matrixOf[T tensor.DType](t *testing.T, shape tensor.Shape, data []T) *tensor.RawTensor {
	t.Helper()
	m, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return m
}

func seq(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i)
	}
	return out
}

// panicMessage runs fn and returns the message of the error it panics with.
func panicMessage(t *testing.T, fn func()) string {
	t.Helper()
	var msg string
	require.Panics(t, func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					msg = err.Error()
				}
				panic(r)
			}
		}()
		fn()
	})
	return msg
}
