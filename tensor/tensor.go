// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/nested/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
type DType = tensor.DType

// DataType represents the runtime element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Int8     DataType = tensor.Int8
	Int16    DataType = tensor.Int16
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Uint16   DataType = tensor.Uint16
	Uint32   DataType = tensor.Uint32
	Uint64   DataType = tensor.Uint64
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
)

// DataTypes lists every supported data type.
var DataTypes = tensor.DataTypes

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only device currently supported.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the low-level dense tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Zero-copy reinterpretation via View() and Slice()
//   - Deep copies via Clone()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := tensor.Flat[float32](raw)  // Typed, zero-copy access
type RawTensor = tensor.RawTensor

// Backend defines the dense operations a compute backend provides.
//
// Implementations:
//   - backend/cpu: Pure Go, gonum BLAS for floating types
type Backend = tensor.Backend

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Vector creates a 1-D tensor holding a copy of data.
func Vector[T DType](data []T) *RawTensor {
	return tensor.Vector(data)
}

// Flat returns a typed, zero-copy view of the tensor's elements.
// Panics if T does not match the tensor's dtype.
func Flat[T DType](r *RawTensor) []T {
	return tensor.Flat[T](r)
}

// ToSlice returns a copy of the tensor's elements.
func ToSlice[T DType](r *RawTensor) []T {
	return tensor.ToSlice[T](r)
}

// DataTypeOf returns the DataType of T.
func DataTypeOf[T DType]() DataType {
	return tensor.DataTypeOf[T]()
}
