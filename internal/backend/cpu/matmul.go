package cpu

import (
	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"k8s.io/klog/v2"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N)
//
// float32 and float64 go through gonum BLAS GEMM. float16 and bfloat16 are
// widened to float32, multiplied with BLAS and rounded back. Integer types use
// a plain triple loop accumulating in the element type.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	// Validate dimensions
	if len(aShape) != 2 || len(bShape) != 2 {
		exceptions.Panicf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape))
	}
	if a.DType() != b.DType() {
		exceptions.Panicf("matmul: dtype mismatch %s @ %s", a.DType(), b.DType())
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		exceptions.Panicf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n)
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if m == 0 || n == 0 {
		return result
	}
	if k == 0 {
		// Empty contraction: result is all zeros, which fresh storage already is.
		return result
	}

	klog.V(4).Infof("cpu matmul %s [%d,%d]@[%d,%d]", a.DType(), m, k, k, n)
	dispatchMatMul.Dispatch(a.DType(), result, a, b, m, k, n)
	return result
}

var dispatchMatMul = tensor.NewDTypeDispatcher("MatMul")

func init() {
	dispatchMatMul.Register(tensor.Int8, matmulGeneric[int8])
	dispatchMatMul.Register(tensor.Int16, matmulGeneric[int16])
	dispatchMatMul.Register(tensor.Int32, matmulGeneric[int32])
	dispatchMatMul.Register(tensor.Int64, matmulGeneric[int64])
	dispatchMatMul.Register(tensor.Uint8, matmulGeneric[uint8])
	dispatchMatMul.Register(tensor.Uint16, matmulGeneric[uint16])
	dispatchMatMul.Register(tensor.Uint32, matmulGeneric[uint32])
	dispatchMatMul.Register(tensor.Uint64, matmulGeneric[uint64])
	dispatchMatMul.Register(tensor.Float32, matmulFloat32)
	dispatchMatMul.Register(tensor.Float64, matmulFloat64)
	dispatchMatMul.Register(tensor.Float16, matmulHalf[float16.Float16])
	dispatchMatMul.Register(tensor.BFloat16, matmulHalf[bfloat16.BFloat16])
}

// matmulGeneric computes C[i,j] = sum_k A[i,k] * B[k,j] in the element type.
func matmulGeneric[T tensor.Integer](params ...any) {
	result, a, b := params[0].(*tensor.RawTensor), params[1].(*tensor.RawTensor), params[2].(*tensor.RawTensor)
	m, k, n := params[3].(int), params[4].(int), params[5].(int)
	c, x, y := tensor.Flat[T](result), tensor.Flat[T](a), tensor.Flat[T](b)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum T
			for kIdx := 0; kIdx < k; kIdx++ {
				sum += x[i*k+kIdx] * y[kIdx*n+j]
			}
			c[i*n+j] = sum
		}
	}
}

func matmulFloat32(params ...any) {
	result, a, b := params[0].(*tensor.RawTensor), params[1].(*tensor.RawTensor), params[2].(*tensor.RawTensor)
	m, k, n := params[3].(int), params[4].(int), params[5].(int)
	gemm32(tensor.Flat[float32](result), tensor.Flat[float32](a), tensor.Flat[float32](b), m, k, n)
}

func matmulFloat64(params ...any) {
	result, a, b := params[0].(*tensor.RawTensor), params[1].(*tensor.RawTensor), params[2].(*tensor.RawTensor)
	m, k, n := params[3].(int), params[4].(int), params[5].(int)
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas64.General{Rows: m, Cols: k, Stride: k, Data: tensor.Flat[float64](a)},
		blas64.General{Rows: k, Cols: n, Stride: n, Data: tensor.Flat[float64](b)},
		0,
		blas64.General{Rows: m, Cols: n, Stride: n, Data: tensor.Flat[float64](result)})
}

// matmulHalf widens reduced-precision operands to float32 for the product.
func matmulHalf[T tensor.HalfFloat](params ...any) {
	result, a, b := params[0].(*tensor.RawTensor), params[1].(*tensor.RawTensor), params[2].(*tensor.RawTensor)
	m, k, n := params[3].(int), params[4].(int), params[5].(int)

	c := make([]float32, m*n)
	gemm32(c, widen(tensor.Flat[T](a)), widen(tensor.Flat[T](b)), m, k, n)
	narrow(tensor.Flat[T](result), c)
}

func gemm32(c, a, b []float32, m, k, n int) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c})
}

// widen converts reduced-precision values to float32.
func widen[T tensor.HalfFloat](src []T) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = v.Float32()
	}
	return out
}

// narrow rounds float32 values into dst's reduced-precision format.
func narrow[T tensor.HalfFloat](dst []T, src []float32) {
	switch d := any(dst).(type) {
	case []float16.Float16:
		for i, v := range src {
			d[i] = float16.Fromfloat32(v)
		}
	case []bfloat16.BFloat16:
		for i, v := range src {
			d[i] = bfloat16.FromFloat32(v)
		}
	}
}
