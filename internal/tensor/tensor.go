package tensor

import (
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Flat returns a typed slice view of the tensor's data.
// The slice directly accesses the underlying memory (zero-copy).
// Panics if T does not match the tensor's dtype.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func Flat[T DType](r *RawTensor) []T {
	if want := DataTypeOf[T](); r.dtype != want {
		exceptions.Panicf("tensor dtype is %s, not %s", r.dtype, want)
	}
	n := r.NumElements()
	if n == 0 {
		return []T{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&r.data[0])), n)
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %s requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, DataTypeOf[T](), CPU)
	if err != nil {
		return nil, err
	}
	copy(Flat[T](raw), data)
	return raw, nil
}

// Vector creates a 1-D tensor holding a copy of data.
func Vector[T DType](data []T) *RawTensor {
	raw, err := FromSlice(data, Shape{len(data)})
	if err != nil {
		exceptions.Panicf("vector: %v", err)
	}
	return raw
}

// ToSlice returns a copy of the tensor's elements.
func ToSlice[T DType](r *RawTensor) []T {
	src := Flat[T](r)
	out := make([]T, len(src))
	copy(out, src)
	return out
}
