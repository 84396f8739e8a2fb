// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nested provides nested (ragged) tensors: batches of same-rank dense
// components whose extents may differ from one component to the next.
//
// # Data Model
//
// A NestedTensor stores every component back to back in one 1-D buffer and
// describes them with an N×D SizeMatrix, one row per component:
//
//	sizes = [[2, 4],    component 0: 2×4, elements 0..7
//	         [1, 4]]    component 1: 1×4, elements 8..11
//
// A dimension is homogeneous when every component has the same extent there
// (dimension 1 above) and Ragged otherwise (dimension 0 above).
//
// # Basic Usage
//
//	a, _ := tensor.FromSlice(make([]float32, 8), tensor.Shape{2, 4})
//	b, _ := tensor.FromSlice(make([]float32, 4), tensor.Shape{1, 4})
//	nt, err := nested.FromComponents([]*tensor.RawTensor{a, b})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(nt.OptSizes()) // [-1 4]
//
// Wrap and WrapStrided build a NestedTensor around an existing buffer. They
// panic when the buffer and the size matrix disagree, since that is always a
// bug in the caller.
package nested

import (
	"github.com/born-ml/nested/internal/nested"
	"github.com/born-ml/nested/internal/tensor"
)

// Ragged marks a dimension whose extent differs between components.
const Ragged = nested.Ragged

// NestedTensor is a batch of dense components packed into one 1-D buffer.
type NestedTensor = nested.NestedTensor

// SizeMatrix is the N×D table of component shapes.
type SizeMatrix = nested.SizeMatrix

// NewSizeMatrix builds a size matrix from one shape per component.
func NewSizeMatrix(rows [][]int) (*SizeMatrix, error) {
	return nested.NewSizeMatrix(rows)
}

// UniformSizeMatrix returns a size matrix of n components all shaped shape.
func UniformSizeMatrix(n int, shape tensor.Shape) *SizeMatrix {
	return nested.UniformSizeMatrix(n, shape)
}

// Wrap packs a 1-D buffer and a size matrix into a contiguous nested tensor.
func Wrap(buffer *tensor.RawTensor, sizes *SizeMatrix) *NestedTensor {
	return nested.Wrap(buffer, sizes)
}

// WrapStrided builds a nested tensor whose components start at explicit
// storage offsets.
func WrapStrided(buffer *tensor.RawTensor, sizes *SizeMatrix, offsets []int) *NestedTensor {
	return nested.WrapStrided(buffer, sizes, offsets)
}

// FromComponents copies dense components into a new nested tensor.
func FromComponents(parts []*tensor.RawTensor) (*NestedTensor, error) {
	return nested.FromComponents(parts)
}

// FromDense views a dense tensor as a nested tensor batched along dimension 0.
func FromDense(t *tensor.RawTensor) (*NestedTensor, error) {
	return nested.FromDense(t)
}
