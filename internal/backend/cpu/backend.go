// Package cpu implements the CPU backend with gonum BLAS integration.
package cpu

import (
	"github.com/born-ml/nested/internal/parallel"
	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend using cfg for data-parallel kernels.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	if err := cfg.Validate(); err != nil {
		exceptions.Panicf("cpu: %v", err)
	}
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// ParallelConfig returns the configuration used for data-parallel kernels.
func (cpu *CPUBackend) ParallelConfig() parallel.Config {
	return cpu.parallel
}

// Reshape returns a view of t with a new shape (zero-copy).
// A single -1 entry is inferred from the element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	return t.View(inferShape(newShape, t.NumElements()))
}

// inferShape resolves a single -1 entry of shape against numElements.
func inferShape(shape tensor.Shape, numElements int) tensor.Shape {
	resolved := shape.Clone()
	inferAt := -1
	known := 1
	for i, dim := range resolved {
		switch {
		case dim == -1:
			if inferAt >= 0 {
				exceptions.Panicf("reshape: only one dimension can be inferred, got %s", shape)
			}
			inferAt = i
		case dim < 0:
			exceptions.Panicf("reshape: invalid dimension %d in %s", dim, shape)
		default:
			known *= dim
		}
	}
	if inferAt < 0 {
		return resolved
	}
	if known == 0 || numElements%known != 0 {
		exceptions.Panicf("reshape: cannot infer %s from %d elements", shape, numElements)
	}
	resolved[inferAt] = numElements / known
	return resolved
}

// Transpose transposes the tensor by permuting its dimensions.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	// Validate axes
	if len(axes) != ndim {
		exceptions.Panicf("transpose: axes length %d != ndim %d", len(axes), ndim)
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			exceptions.Panicf("transpose: invalid axis %d for %dD tensor", ax, ndim)
		}
		if seen[ax] {
			exceptions.Panicf("transpose: duplicate axis %d", ax)
		}
		seen[ax] = true
	}

	// Compute new shape
	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := tensor.MustNewRaw(newShape, t.DType(), cpu.device)
	dispatchTranspose.Dispatch(t.DType(), result, t, axes)
	return result
}

var dispatchTranspose = tensor.NewDTypeDispatcher("Transpose")

func init() {
	dispatchTranspose.Register(tensor.Int8, transposeGeneric[int8])
	dispatchTranspose.Register(tensor.Int16, transposeGeneric[int16])
	dispatchTranspose.Register(tensor.Int32, transposeGeneric[int32])
	dispatchTranspose.Register(tensor.Int64, transposeGeneric[int64])
	dispatchTranspose.Register(tensor.Uint8, transposeGeneric[uint8])
	dispatchTranspose.Register(tensor.Uint16, transposeGeneric[uint16])
	dispatchTranspose.Register(tensor.Uint32, transposeGeneric[uint32])
	dispatchTranspose.Register(tensor.Uint64, transposeGeneric[uint64])
	dispatchTranspose.Register(tensor.Float32, transposeGeneric[float32])
	dispatchTranspose.Register(tensor.Float64, transposeGeneric[float64])
	dispatchTranspose.Register(tensor.Float16, transposeGeneric[float16.Float16])
	dispatchTranspose.Register(tensor.BFloat16, transposeGeneric[bfloat16.BFloat16])
}

// transposeGeneric: use dispatchTranspose to call it.
func transposeGeneric[T tensor.DType](params ...any) {
	result, src, axes := params[0].(*tensor.RawTensor), params[1].(*tensor.RawTensor), params[2].([]int)
	dst, data := tensor.Flat[T](result), tensor.Flat[T](src)

	shape := src.Shape()
	ndim := len(shape)
	srcStrides := shape.ComputeStrides()
	dstStrides := result.Shape().ComputeStrides()

	coords := make([]int, ndim)
	for i := range data {
		// Multi-dimensional coordinates in source
		idx := i
		for dim := 0; dim < ndim; dim++ {
			coords[dim] = idx / srcStrides[dim]
			idx %= srcStrides[dim]
		}

		dstIdx := 0
		for dstDim, srcDim := range axes {
			dstIdx += coords[srcDim] * dstStrides[dstDim]
		}
		dst[dstIdx] = data[i]
	}
}
