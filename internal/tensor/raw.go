package tensor

import (
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level dense tensor representation: a flat byte buffer
// interpreted through a shape and a runtime dtype.
//
// RawTensors handed to the backward kernels are treated as immutable. Views
// created by View share the byte buffer with their source.
type RawTensor struct {
	data   []byte   // Row-major element storage
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major)
	dtype  DataType // Runtime type information
	device Device   // Compute device
}

// allocBytes returns a zeroed byte slice of size n whose first byte is
// 8-byte aligned, so it can be reinterpreted as any supported element type.
func allocBytes(n int) []byte {
	if n == 0 {
		return []byte{}
	}
	words := make([]uint64, (n+7)/8)
	//nolint:gosec // unsafe.Slice for aligned storage, length bounded by the word slice
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is zeroed.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	if dtype <= Invalid || dtype >= numDataTypes {
		return nil, errors.Errorf("invalid data type %d", int(dtype))
	}

	return &RawTensor{
		data:   allocBytes(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// MustNewRaw is NewRaw for callers that treat a failure as a bug.
func MustNewRaw(shape Shape, dtype DataType, device Device) *RawTensor {
	r, err := NewRaw(shape, dtype, device)
	if err != nil {
		exceptions.Panicf("allocating %s%s: %v", dtype, shape, err)
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Rank returns the number of dimensions.
func (r *RawTensor) Rank() int {
	return len(r.shape)
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// View returns a tensor sharing r's storage under a new shape.
// The element count must be preserved; a mismatch is a caller bug.
func (r *RawTensor) View(shape Shape) *RawTensor {
	if err := shape.Validate(); err != nil {
		exceptions.Panicf("view: %v", err)
	}
	if shape.NumElements() != r.NumElements() {
		exceptions.Panicf("view: cannot view %s%s as %s (different number of elements)", r.dtype, r.shape, shape)
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Slice returns a 1-D view over elements [start, end) of the flattened tensor.
func (r *RawTensor) Slice(start, end int) *RawTensor {
	n := r.NumElements()
	if start < 0 || end < start || end > n {
		exceptions.Panicf("slice: range [%d, %d) out of bounds for %d elements", start, end, n)
	}
	size := r.dtype.Size()
	return &RawTensor{
		data:   r.data[start*size : end*size],
		shape:  Shape{end - start},
		stride: []int{1},
		dtype:  r.dtype,
		device: r.device,
	}
}

// Clone creates a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	c := MustNewRaw(r.shape, r.dtype, r.device)
	copy(c.data, r.data)
	return c
}

// String returns a short description such as "float32[2 3] on CPU".
func (r *RawTensor) String() string {
	return r.dtype.String() + r.shape.String() + " on " + r.device.String()
}
