// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/nested/internal/backend/cpu"
	"github.com/born-ml/nested/internal/parallel"
	"github.com/born-ml/nested/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// ParallelConfig controls how data-parallel kernels split their work.
type ParallelConfig = parallel.Config

// DefaultParallelConfig uses one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// SequentialConfig runs every kernel in the calling goroutine.
func SequentialConfig() ParallelConfig {
	return parallel.Sequential()
}

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/nested/backend/cpu"
//	    "github.com/born-ml/nested/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    c := backend.MatMul(a, a)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
// It panics if cfg is invalid.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
