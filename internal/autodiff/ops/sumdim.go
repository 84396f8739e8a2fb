package ops

import (
	"github.com/born-ml/nested/internal/nested"
	"github.com/born-ml/nested/internal/parallel"
	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
	"k8s.io/klog/v2"
)

// SumDimBackward computes the gradient of a sum over each component's
// trailing dimension.
//
// Forward reduced every segment of L consecutive elements of a component to
// one scalar. Since d(sum)/d(addend) = 1, backward copies each upstream scalar
// onto every element of its segment, unchanged.
//
// Parameters mirror the generic reduction backward:
//   - sizes: unused, accepted for signature compatibility
//   - dims: empty, or the single trailing dimension (-1 or self.Rank(), the
//     batch dimension counting as 0)
//   - keepdim: must be false
//   - self: the forward input; required
//
// gradOutput must be contiguous and have self's dtype. Any other
// configuration panics.
func SumDimBackward(gradOutput *nested.NestedTensor, sizes, dims []int, keepdim bool, self *nested.NestedTensor, backend tensor.Backend) *nested.NestedTensor {
	_ = sizes
	if self == nil {
		exceptions.Panicf("sum dim backward: the forward input is required")
	}
	if gradOutput == nil {
		exceptions.Panicf("sum dim backward: upstream gradient is required")
	}
	checkTrailingReduction(dims, keepdim, self.Rank())
	if !gradOutput.IsContiguous() {
		exceptions.Panicf("sum dim backward: upstream gradient %s is not contiguous", gradOutput)
	}
	if gradOutput.DType() != self.DType() {
		exceptions.Panicf("sum dim backward: upstream gradient dtype %s differs from input dtype %s",
			gradOutput.DType(), self.DType())
	}

	selfSizes := self.SizeMatrix()
	walker := nested.NewSegmentWalker(selfSizes, gradOutput.SizeMatrix())
	cfg := parallelConfig(backend)
	klog.V(2).Infof("sum dim backward: %s -> %s over %d components", gradOutput.SizeMatrix(), selfSizes, walker.NumComponents())

	buffer := tensor.MustNewRaw(tensor.Shape{selfSizes.TotalNumel()}, self.DType(), self.Buffer().Device())
	dispatchSegmentFill.Dispatch(self.DType(), walker, gradOutput.Buffer(), buffer, cfg)

	return nested.Wrap(buffer, selfSizes.Clone())
}

// SumDimBackwardDense is SumDimBackward for an upstream gradient that is a
// dense tensor whose first dimension indexes components. This is the case when
// every reduced component has the same shape, e.g. rank-1 components each
// summed to a scalar give a dense [N] gradient.
func SumDimBackwardDense(gradOutput *tensor.RawTensor, sizes, dims []int, keepdim bool, self *nested.NestedTensor, backend tensor.Backend) *nested.NestedTensor {
	if gradOutput == nil {
		exceptions.Panicf("sum dim backward: upstream gradient is required")
	}
	grad, err := nested.FromDense(gradOutput)
	if err != nil {
		exceptions.Panicf("sum dim backward: dense upstream gradient %s: %v", gradOutput, err)
	}
	return SumDimBackward(grad, sizes, dims, keepdim, self, backend)
}

// checkTrailingReduction rejects reductions other than the trailing dimension
// with keepdim=false.
func checkTrailingReduction(dims []int, keepdim bool, rank int) {
	if keepdim {
		exceptions.Panicf("sum dim backward: keepdim=true is not supported for nested tensors")
	}
	switch len(dims) {
	case 0:
	case 1:
		if dims[0] != -1 && dims[0] != rank {
			exceptions.Panicf("sum dim backward: only the trailing dimension (%d) can be reduced, got %d", rank, dims[0])
		}
	default:
		exceptions.Panicf("sum dim backward: reducing several dimensions %v is not supported", dims)
	}
}

var dispatchSegmentFill = tensor.NewDTypeDispatcher("SegmentFill")

func init() {
	dispatchSegmentFill.Register(tensor.Int8, segmentFillGeneric[int8])
	dispatchSegmentFill.Register(tensor.Int16, segmentFillGeneric[int16])
	dispatchSegmentFill.Register(tensor.Int32, segmentFillGeneric[int32])
	dispatchSegmentFill.Register(tensor.Int64, segmentFillGeneric[int64])
	dispatchSegmentFill.Register(tensor.Uint8, segmentFillGeneric[uint8])
	dispatchSegmentFill.Register(tensor.Uint16, segmentFillGeneric[uint16])
	dispatchSegmentFill.Register(tensor.Uint32, segmentFillGeneric[uint32])
	dispatchSegmentFill.Register(tensor.Uint64, segmentFillGeneric[uint64])
	dispatchSegmentFill.Register(tensor.Float32, segmentFillGeneric[float32])
	dispatchSegmentFill.Register(tensor.Float64, segmentFillGeneric[float64])
	dispatchSegmentFill.Register(tensor.Float16, segmentFillGeneric[float16.Float16])
	dispatchSegmentFill.Register(tensor.BFloat16, segmentFillGeneric[bfloat16.BFloat16])
}

// segmentFillGeneric: use dispatchSegmentFill to call it.
//
// Components are independent, so they are split across workers; each worker
// walks its own component range with its own cursors.
func segmentFillGeneric[T tensor.DType](params ...any) {
	walker := params[0].(*nested.SegmentWalker)
	grad, out := params[1].(*tensor.RawTensor), params[2].(*tensor.RawTensor)
	cfg := params[3].(parallel.Config)
	src, dst := tensor.Flat[T](grad), tensor.Flat[T](out)

	fill := func(s, d, length int) {
		v := src[s]
		segment := dst[d : d+length]
		for k := range segment {
			segment[k] = v
		}
	}

	n := walker.NumComponents()
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		walker.Walk(fill)
		return
	}
	parallel.ForChunks(n, func(start, end int) {
		walker.WalkRange(start, end, fill)
	}, cfg)
}

// SumDimOp records a trailing-dimension sum over a nested tensor for autodiff.
//
// Forward: output = sum(input, dim=-1, keepdim=false)
//
// Backward: see SumDimBackward.
type SumDimOp struct {
	input  *nested.NestedTensor
	output *nested.NestedTensor
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(input, output *nested.NestedTensor) *SumDimOp {
	return &SumDimOp{input: input, output: output}
}

// Name returns "sum_dim".
func (op *SumDimOp) Name() string { return "sum_dim" }

// Output returns the forward output.
func (op *SumDimOp) Output() *nested.NestedTensor { return op.output }

// Backward computes the input gradient.
func (op *SumDimOp) Backward(outputGrad *nested.NestedTensor, backend tensor.Backend) *nested.NestedTensor {
	return SumDimBackward(outputGrad, nil, []int{-1}, false, op.input, backend)
}
