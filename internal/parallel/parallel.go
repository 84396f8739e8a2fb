// Package parallel provides the parallel-for used by the nested backward kernels.
package parallel

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Sequential returns a Config that always runs in the calling goroutine.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// Validate rejects configurations that cannot schedule work.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.NumWorkers < 1 {
		return errors.Errorf("parallel: NumWorkers must be >= 1, got %d", c.NumWorkers)
	}
	if c.MinChunkSize < 1 {
		return errors.Errorf("parallel: MinChunkSize must be >= 1, got %d", c.MinChunkSize)
	}
	return nil
}

// ForChunks splits [0, n) into contiguous chunks and calls f(start, end) once
// per chunk. Chunks are disjoint and cover the range exactly.
// Falls back to a single sequential call if parallelism is disabled or n is too small.
func ForChunks(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}
