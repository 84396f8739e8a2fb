// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensor types used by the nested backward kernels.
//
// # Overview
//
// A RawTensor is a flat, row-major byte buffer interpreted through a Shape and
// a runtime DataType. Nested tensors (see package nested) store all of their
// components in a single 1-D RawTensor, and the gradient kernels do their
// arithmetic on dense RawTensors through a Backend.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/nested/backend/cpu"
//	    "github.com/born-ml/nested/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    a, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	    b := backend.Transpose(a)
//	    c := backend.MatMul(a, b)        // [2, 2]
//	    fmt.Println(tensor.Flat[float32](c))
//	}
//
// # Supported Data Types
//
// The DType constraint covers:
//   - int8, int16, int32, int64 (signed integers)
//   - uint8, uint16, uint32, uint64 (unsigned integers)
//   - float32, float64 (floating-point)
//   - float16.Float16 (IEEE half, github.com/x448/float16)
//   - bfloat16.BFloat16 (brain float, github.com/gomlx/gopjrt/dtypes/bfloat16)
//
// Half-precision arithmetic is carried out in float32 and rounded back.
//
// # Memory Management
//
// Views (RawTensor.View, RawTensor.Slice, Backend.Reshape) share storage with
// their source. Tensors passed to the backward kernels are never modified.
package tensor
