package ops

import (
	"github.com/born-ml/nested/internal/nested"
	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// OutputMask selects which linear gradients to compute: input, weight, bias.
type OutputMask [3]bool

// AllOutputs requests every gradient.
var AllOutputs = OutputMask{true, true, true}

// Input reports whether the input gradient is requested.
func (m OutputMask) Input() bool { return m[0] }

// Weight reports whether the weight gradient is requested.
func (m OutputMask) Weight() bool { return m[1] }

// Bias reports whether the bias gradient is requested.
func (m OutputMask) Bias() bool { return m[2] }

// LinearGrads holds the gradients produced by LinearBackward.
// A field is meaningful only when its Has flag is set; an unset flag means the
// gradient was not requested (or no upstream gradient existed), never that it
// was computed as empty.
type LinearGrads struct {
	Input  *nested.NestedTensor // same nested shape as the forward input
	Weight *tensor.RawTensor    // [out_features, in_features]
	Bias   *tensor.RawTensor    // [out_features]

	HasInput  bool
	HasWeight bool
	HasBias   bool
}

// Any reports whether at least one gradient is present.
func (g LinearGrads) Any() bool {
	return g.HasInput || g.HasWeight || g.HasBias
}

// LinearBackward computes the gradients of y = x·Wᵗ + b applied to every
// component of the nested input x.
//
// The transform only touches the trailing (homogeneous) dimension, so the
// buffers of gradOutput and input are viewed as dense [rows, out_features]
// and [rows, in_features] matrices and the problem becomes ordinary dense
// algebra:
//
//	grad_x = grad_y @ W          (wrapped with a clone of x's size matrix)
//	grad_W = grad_yᵗ @ x
//	grad_b = Σ_rows grad_y
//
// A nil gradOutput means no gradient flows to this operation and yields an
// empty LinearGrads. gradOutput must be contiguous.
func LinearBackward(input, gradOutput *nested.NestedTensor, weight *tensor.RawTensor, mask OutputMask, backend tensor.Backend) LinearGrads {
	if gradOutput == nil {
		return LinearGrads{}
	}
	if input == nil || weight == nil {
		exceptions.Panicf("linear backward: input and weight are required")
	}
	if !gradOutput.IsContiguous() {
		exceptions.Panicf("linear backward: upstream gradient %s is not contiguous", gradOutput)
	}
	if weight.Rank() != 2 {
		exceptions.Panicf("linear backward: weight must be 2-D [out, in], got %s", weight.Shape())
	}
	outFeatures, inFeatures := weight.Shape()[0], weight.Shape()[1]
	if outFeatures <= 0 || inFeatures <= 0 {
		exceptions.Panicf("linear backward: weight shape %s has an empty feature dimension", weight.Shape())
	}

	gradFlat := backend.Reshape(gradOutput.Buffer(), tensor.Shape{-1, outFeatures})
	rows := gradFlat.Shape()[0]
	klog.V(2).Infof("linear backward: %d rows, %d -> %d features, mask %v, dtype %s",
		rows, inFeatures, outFeatures, mask, gradOutput.DType())

	var grads LinearGrads
	if mask.Input() {
		gradInputFlat := backend.MatMul(gradFlat, weight)
		grads.Input = nested.Wrap(backend.Reshape(gradInputFlat, tensor.Shape{-1}), input.SizeMatrix().Clone())
		grads.HasInput = true
	}
	if mask.Weight() {
		if !input.IsContiguous() {
			exceptions.Panicf("linear backward: input %s is not contiguous", input)
		}
		inputFlat := backend.Reshape(input.Buffer(), tensor.Shape{-1, inFeatures})
		if inputFlat.Shape()[0] != rows {
			exceptions.Panicf("linear backward: input has %d rows, upstream gradient has %d", inputFlat.Shape()[0], rows)
		}
		grads.Weight = backend.MatMul(backend.Transpose(gradFlat), inputFlat)
		grads.HasWeight = true
	}
	if mask.Bias() {
		grads.Bias = backend.SumDim(gradFlat, 0, false)
		grads.HasBias = true
	}
	return grads
}

// LinearOp records a nested linear transform for autodiff.
//
// Forward: output = input·Wᵗ + b
//
// Backward: see LinearBackward.
type LinearOp struct {
	input  *nested.NestedTensor
	weight *tensor.RawTensor
	output *nested.NestedTensor
}

// NewLinearOp creates a new LinearOp.
func NewLinearOp(input *nested.NestedTensor, weight *tensor.RawTensor, output *nested.NestedTensor) *LinearOp {
	return &LinearOp{input: input, weight: weight, output: output}
}

// Name returns "linear".
func (op *LinearOp) Name() string { return "linear" }

// Output returns the forward output.
func (op *LinearOp) Output() *nested.NestedTensor { return op.output }

// Backward computes the gradients selected by mask.
func (op *LinearOp) Backward(outputGrad *nested.NestedTensor, mask OutputMask, backend tensor.Backend) LinearGrads {
	return LinearBackward(op.input, outputGrad, op.weight, mask, backend)
}
