package cpu

import (
	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x, _ := tensor.FromSlice(data, tensor.Shape{2, 3, 4})
//	y := backend.SumDim(x, -1, true)   // shape: [2, 3, 1]
//	z := backend.SumDim(x, 0, false)   // shape: [3, 4]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	// Normalize negative dimension
	if dim < 0 {
		dim = ndim + dim
	}

	// Validate dimension
	if dim < 0 || dim >= ndim {
		exceptions.Panicf("sumdim: dimension %d out of range for %dD tensor", dim, ndim)
	}

	// Calculate output shape
	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, ndim-1)
		for i := 0; i < ndim; i++ {
			if i != dim {
				outShape = append(outShape, shape[i])
			}
		}
	}

	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)

	// The input viewed as [outer, reduced, inner] covers every reduction.
	outer := shape[:dim].NumElements()
	inner := shape[dim+1:].NumElements()
	dispatchSumDim.Dispatch(x.DType(), result, x, outer, shape[dim], inner)
	return result
}

var dispatchSumDim = tensor.NewDTypeDispatcher("SumDim")

func init() {
	dispatchSumDim.Register(tensor.Int8, sumDimGeneric[int8])
	dispatchSumDim.Register(tensor.Int16, sumDimGeneric[int16])
	dispatchSumDim.Register(tensor.Int32, sumDimGeneric[int32])
	dispatchSumDim.Register(tensor.Int64, sumDimGeneric[int64])
	dispatchSumDim.Register(tensor.Uint8, sumDimGeneric[uint8])
	dispatchSumDim.Register(tensor.Uint16, sumDimGeneric[uint16])
	dispatchSumDim.Register(tensor.Uint32, sumDimGeneric[uint32])
	dispatchSumDim.Register(tensor.Uint64, sumDimGeneric[uint64])
	dispatchSumDim.Register(tensor.Float32, sumDimGeneric[float32])
	dispatchSumDim.Register(tensor.Float64, sumDimGeneric[float64])
	dispatchSumDim.Register(tensor.Float16, sumDimHalf[float16.Float16])
	dispatchSumDim.Register(tensor.BFloat16, sumDimHalf[bfloat16.BFloat16])
}

// sumDimGeneric: use dispatchSumDim to call it.
func sumDimGeneric[T tensor.Integer | tensor.Float](params ...any) {
	result, x := params[0].(*tensor.RawTensor), params[1].(*tensor.RawTensor)
	outer, reduced, inner := params[2].(int), params[3].(int), params[4].(int)
	dst, src := tensor.Flat[T](result), tensor.Flat[T](x)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var sum T
			for r := 0; r < reduced; r++ {
				sum += src[(o*reduced+r)*inner+in]
			}
			dst[o*inner+in] = sum
		}
	}
}

// sumDimHalf accumulates reduced-precision values in float32.
func sumDimHalf[T tensor.HalfFloat](params ...any) {
	result, x := params[0].(*tensor.RawTensor), params[1].(*tensor.RawTensor)
	outer, reduced, inner := params[2].(int), params[3].(int), params[4].(int)
	src := tensor.Flat[T](x)

	acc := make([]float32, outer*inner)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var sum float32
			for r := 0; r < reduced; r++ {
				sum += src[(o*reduced+r)*inner+in].Float32()
			}
			acc[o*inner+in] = sum
		}
	}
	narrow(tensor.Flat[T](result), acc)
}
