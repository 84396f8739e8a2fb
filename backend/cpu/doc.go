// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for the dense tensor operations
// used by the nested backward kernels.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS for float32 and float64 matrix multiplication
//   - float16 and bfloat16 computed in float32
//   - Naive kernels for integer types
//
// # Parallelism
//
// Kernels that split over independent components use the backend's
// ParallelConfig. NewWithConfig(SequentialConfig()) disables it.
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
