// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides backward passes for operations on nested tensors.
//
// Each function computes the gradient of one forward operation from the
// recorded forward inputs and the upstream gradient. The dense algebra runs on
// the given backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/nested/autodiff"
//	    "github.com/born-ml/nested/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // y = x·Wᵗ + b applied to every component of x
//	    grads := autodiff.LinearBackward(x, gradY, w, autodiff.AllOutputs, backend)
//	    if grads.HasWeight {
//	        fmt.Println(grads.Weight.Shape())
//	    }
//	}
//
// Inconsistent shapes or size matrices panic with a github.com/pkg/errors
// error; wrap calls in exceptions.Try (github.com/gomlx/exceptions) to recover
// them as values.
package autodiff

import (
	"github.com/born-ml/nested/internal/autodiff/ops"
	"github.com/born-ml/nested/internal/nested"
	"github.com/born-ml/nested/internal/tensor"
)

// OutputMask selects which linear gradients to compute: input, weight, bias.
type OutputMask = ops.OutputMask

// AllOutputs requests every linear gradient.
var AllOutputs = ops.AllOutputs

// LinearGrads holds the gradients produced by LinearBackward.
type LinearGrads = ops.LinearGrads

// Operation is a recorded forward operation on nested tensors.
type Operation = ops.Operation

// Recorded operations.
type (
	LinearOp  = ops.LinearOp
	ReshapeOp = ops.ReshapeOp
	SumDimOp  = ops.SumDimOp
)

// LinearBackward computes the gradients of y = x·Wᵗ + b for a nested input x
// and a [out_features, in_features] weight W.
func LinearBackward(input, gradOutput *nested.NestedTensor, weight *tensor.RawTensor, mask OutputMask, backend tensor.Backend) LinearGrads {
	return ops.LinearBackward(input, gradOutput, weight, mask, backend)
}

// ReshapeBackward views the upstream gradient in the input's component shapes.
func ReshapeBackward(input, gradOutput *nested.NestedTensor) *nested.NestedTensor {
	return ops.ReshapeBackward(input, gradOutput)
}

// SumDimBackward computes the gradient of a sum over each component's
// trailing dimension.
func SumDimBackward(gradOutput *nested.NestedTensor, sizes, dims []int, keepdim bool, self *nested.NestedTensor, backend tensor.Backend) *nested.NestedTensor {
	return ops.SumDimBackward(gradOutput, sizes, dims, keepdim, self, backend)
}

// SumDimBackwardDense is SumDimBackward for a dense upstream gradient batched
// along dimension 0.
func SumDimBackwardDense(gradOutput *tensor.RawTensor, sizes, dims []int, keepdim bool, self *nested.NestedTensor, backend tensor.Backend) *nested.NestedTensor {
	return ops.SumDimBackwardDense(gradOutput, sizes, dims, keepdim, self, backend)
}

// NewLinearOp records a linear transform.
func NewLinearOp(input *nested.NestedTensor, weight *tensor.RawTensor, output *nested.NestedTensor) *LinearOp {
	return ops.NewLinearOp(input, weight, output)
}

// NewReshapeOp records a per-component reshape.
func NewReshapeOp(input, output *nested.NestedTensor) *ReshapeOp {
	return ops.NewReshapeOp(input, output)
}

// NewSumDimOp records a trailing-dimension sum.
func NewSumDimOp(input, output *nested.NestedTensor) *SumDimOp {
	return ops.NewSumDimOp(input, output)
}
