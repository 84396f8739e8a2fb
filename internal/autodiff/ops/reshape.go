package ops

import (
	"github.com/born-ml/nested/internal/nested"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// ReshapeBackward reinterprets the upstream gradient in the input's shapes.
//
// The forward reshape kept every component's element count and order, so
// no arithmetic is needed: the gradient buffer is viewed under a shape list
// built from the input, where homogeneous dimensions are pinned to their
// extent and ragged ones are copied per component from the input's size
// matrix.
func ReshapeBackward(input, gradOutput *nested.NestedTensor) *nested.NestedTensor {
	if input == nil || gradOutput == nil {
		exceptions.Panicf("reshape backward: input and upstream gradient are required")
	}
	if input.Numel() != gradOutput.Numel() {
		exceptions.Panicf("reshape backward: input %s has %d elements, upstream gradient %s has %d",
			input, input.Numel(), gradOutput, gradOutput.Numel())
	}

	shape := input.OptSizes()
	klog.V(2).Infof("reshape backward: %s -> shape %v", gradOutput.SizeMatrix(), shape)

	grad := nested.ViewAs(gradOutput, nested.ResolveSizes(shape, input.SizeMatrix()))
	if grad.Numel() != input.Numel() {
		exceptions.Panicf("reshape backward: produced %d elements for an input of %d", grad.Numel(), input.Numel())
	}
	return grad
}

// ReshapeOp records a per-component reshape for autodiff.
//
// Forward: output = Reshape(input, newShape)
//
// Backward:
//   - d_input: upstream gradient viewed in input's shapes
type ReshapeOp struct {
	input  *nested.NestedTensor
	output *nested.NestedTensor
}

// NewReshapeOp creates a new Reshape operation.
func NewReshapeOp(input, output *nested.NestedTensor) *ReshapeOp {
	return &ReshapeOp{input: input, output: output}
}

// Name returns "reshape".
func (op *ReshapeOp) Name() string { return "reshape" }

// Output returns the forward output.
func (op *ReshapeOp) Output() *nested.NestedTensor { return op.output }

// Backward computes the input gradient.
func (op *ReshapeOp) Backward(outputGrad *nested.NestedTensor) *nested.NestedTensor {
	return ReshapeBackward(op.input, outputGrad)
}
