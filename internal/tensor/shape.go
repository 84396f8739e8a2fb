package tensor

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Shape represents the dimensions of a dense tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// A zero extent anywhere yields zero elements.
func (s Shape) NumElements() int {
	n := 1 // Scalar has 1 element
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
// Zero extents are allowed: an empty component is a legal member of a nested batch.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return errors.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String renders the shape as "[2 3 4]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprint(dim)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
