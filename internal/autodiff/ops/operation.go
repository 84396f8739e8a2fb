// Package ops implements backward passes for operations on nested tensors.
//
// Each backward pass is a pure function of the recorded forward inputs and
// the upstream gradient:
//   - LinearBackward: y = x·Wᵗ + b (d/dx = grad@W, d/dW = gradᵗ@x, d/db = Σ grad)
//   - ReshapeBackward: per-component reshape (d/dx = grad viewed in x's shapes)
//   - SumDimBackward: sum over the trailing dimension (d/dx = grad repeated per segment)
//
// The matching *Op records (LinearOp, ReshapeOp, SumDimOp) keep what an
// executor has to hold between the forward and the backward pass.
//
// Inconsistent shapes or sizes are bugs in the calling machinery, not user
// errors, so they panic via github.com/gomlx/exceptions instead of returning errors.
package ops

import (
	"github.com/born-ml/nested/internal/nested"
	"github.com/born-ml/nested/internal/parallel"
	"github.com/born-ml/nested/internal/tensor"
)

// Operation is a recorded forward operation whose result is a nested tensor.
type Operation interface {
	// Name identifies the operation in logs and panics.
	Name() string

	// Output returns the nested tensor produced by the forward pass.
	Output() *nested.NestedTensor
}

// ParallelConfigurer is implemented by backends that tune data-parallel kernels.
type ParallelConfigurer interface {
	ParallelConfig() parallel.Config
}

// parallelConfig returns the backend's parallel configuration, or the default.
func parallelConfig(backend tensor.Backend) parallel.Config {
	if pc, ok := backend.(ParallelConfigurer); ok {
		return pc.ParallelConfig()
	}
	return parallel.DefaultConfig()
}
