// Package tensor provides the dense tensor types shared by the nested backward kernels.
package tensor

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// DType is a constraint for supported element types.
// It uses Go generics to ensure compile-time type safety.
type DType interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64 |
		float16.Float16 | bfloat16.BFloat16
}

// Integer covers the integer element types.
type Integer interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// Float covers the full-width floating element types.
type Float interface {
	float32 | float64
}

// HalfFloat covers the reduced-precision floating formats. Arithmetic on them
// is carried out in float32.
type HalfFloat interface {
	float16.Float16 | bfloat16.BFloat16
	Float32() float32
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Invalid DataType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Float16
	BFloat16

	numDataTypes
)

// DataTypes lists every supported data type.
var DataTypes = []DataType{
	Int8, Int16, Int32, Int64,
	Uint8, Uint16, Uint32, Uint64,
	Float32, Float64,
	Float16, BFloat16,
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Int8, Uint8:
		return 1
	case Int16, Uint16, Float16, BFloat16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		exceptions.Panicf("unknown data type %d", int(dt))
		return 0
	}
}

// IsFloat reports whether the type is a floating format of any width.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64 || dt.IsHalf()
}

// IsHalf reports whether the type is one of the reduced-precision formats.
func (dt DataType) IsHalf() bool {
	return dt == Float16 || dt == BFloat16
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	default:
		return "invalid"
	}
}

// DataTypeOf returns the DataType for the Go type T.
func DataTypeOf[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	case float16.Float16:
		return Float16
	case bfloat16.BFloat16:
		return BFloat16
	default:
		exceptions.Panicf("unsupported type %T", dummy)
		return Invalid
	}
}
