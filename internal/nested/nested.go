package nested

import (
	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Ragged marks a dimension whose extent differs between components.
const Ragged = -1

// NestedTensor is a batch of same-rank dense components packed into a single
// 1-D buffer, described by a SizeMatrix.
//
// A NestedTensor is immutable: every operation returns a new one, possibly
// sharing the buffer with its source.
type NestedTensor struct {
	buffer  *tensor.RawTensor
	sizes   *SizeMatrix
	offsets []int // storage offset of each component in buffer
}

// Wrap packs buffer and sizes into a contiguous nested tensor.
//
// The buffer must be 1-D and hold exactly the sum of the component element
// counts. A mismatch is a bug in the caller and panics.
func Wrap(buffer *tensor.RawTensor, sizes *SizeMatrix) *NestedTensor {
	if buffer == nil || sizes == nil {
		exceptions.Panicf("nested: Wrap requires a buffer and a size matrix")
	}
	if buffer.Rank() != 1 {
		exceptions.Panicf("nested: buffer must be 1-D, got shape %s", buffer.Shape())
	}
	if total := sizes.TotalNumel(); total != buffer.NumElements() {
		exceptions.Panicf("nested: size matrix %s describes %d elements, buffer holds %d",
			sizes, total, buffer.NumElements())
	}
	return &NestedTensor{
		buffer:  buffer,
		sizes:   sizes,
		offsets: sizes.Offsets(),
	}
}

// WrapStrided builds a nested tensor whose components start at explicit
// storage offsets. Each component range must lie inside the buffer; ranges may
// be out of order or leave gaps, in which case IsContiguous reports false.
func WrapStrided(buffer *tensor.RawTensor, sizes *SizeMatrix, offsets []int) *NestedTensor {
	if buffer == nil || sizes == nil {
		exceptions.Panicf("nested: WrapStrided requires a buffer and a size matrix")
	}
	if buffer.Rank() != 1 {
		exceptions.Panicf("nested: buffer must be 1-D, got shape %s", buffer.Shape())
	}
	if len(offsets) != sizes.NumComponents() {
		exceptions.Panicf("nested: %d offsets for %d components", len(offsets), sizes.NumComponents())
	}
	n := buffer.NumElements()
	for i, off := range offsets {
		if off < 0 || off+sizes.Numel(i) > n {
			exceptions.Panicf("nested: component %d range [%d, %d) outside buffer of %d elements",
				i, off, off+sizes.Numel(i), n)
		}
	}
	o := make([]int, len(offsets))
	copy(o, offsets)
	return &NestedTensor{buffer: buffer, sizes: sizes, offsets: o}
}

// FromComponents copies dense components into a new contiguous nested tensor.
// All parts must share a dtype and a rank.
func FromComponents(parts []*tensor.RawTensor) (*NestedTensor, error) {
	if len(parts) == 0 {
		return nil, errors.New("nested: at least one component is required")
	}
	dtype := parts[0].DType()
	rows := make([][]int, len(parts))
	for i, p := range parts {
		if p.DType() != dtype {
			return nil, errors.Errorf("nested: component %d has dtype %s, expected %s", i, p.DType(), dtype)
		}
		rows[i] = p.Shape()
	}
	sizes, err := NewSizeMatrix(rows)
	if err != nil {
		return nil, errors.Wrap(err, "nested: building size matrix")
	}

	buffer, err := tensor.NewRaw(tensor.Shape{sizes.TotalNumel()}, dtype, parts[0].Device())
	if err != nil {
		return nil, errors.Wrap(err, "nested: allocating buffer")
	}
	data := buffer.Data()
	pos := 0
	for _, p := range parts {
		pos += copy(data[pos:], p.Data()[:p.ByteSize()])
	}
	return Wrap(buffer, sizes), nil
}

// FromDense treats dimension 0 of t as the batch dimension and returns the
// equivalent nested tensor whose components all have shape t.Shape()[1:].
// The buffer is shared with t.
func FromDense(t *tensor.RawTensor) (*NestedTensor, error) {
	if t.Rank() == 0 {
		return nil, errors.New("nested: a dense tensor needs a batch dimension")
	}
	shape := t.Shape()
	sizes := UniformSizeMatrix(shape[0], shape[1:])
	return Wrap(t.View(tensor.Shape{t.NumElements()}), sizes), nil
}

// Buffer returns the flat storage. Callers must not modify it.
func (nt *NestedTensor) Buffer() *tensor.RawTensor {
	return nt.buffer
}

// SizeMatrix returns the N×D component shape table.
func (nt *NestedTensor) SizeMatrix() *SizeMatrix {
	return nt.sizes
}

// Offsets returns a copy of the per-component storage offsets.
func (nt *NestedTensor) Offsets() []int {
	o := make([]int, len(nt.offsets))
	copy(o, nt.offsets)
	return o
}

// Rank returns D, the rank of every component.
func (nt *NestedTensor) Rank() int {
	return nt.sizes.Rank()
}

// NumComponents returns N.
func (nt *NestedTensor) NumComponents() int {
	return nt.sizes.NumComponents()
}

// DType returns the element type.
func (nt *NestedTensor) DType() tensor.DataType {
	return nt.buffer.DType()
}

// Numel returns the total number of elements across components.
func (nt *NestedTensor) Numel() int {
	return nt.sizes.TotalNumel()
}

// HomogeneousSize returns the extent shared by every component at dimension d.
// It returns (Ragged, false) when components disagree or there are none.
func (nt *NestedTensor) HomogeneousSize(d int) (int, bool) {
	if d < 0 || d >= nt.Rank() {
		exceptions.Panicf("nested: dimension %d out of range for rank %d", d, nt.Rank())
	}
	n := nt.NumComponents()
	if n == 0 {
		return Ragged, false
	}
	size := nt.sizes.At(0, d)
	for i := 1; i < n; i++ {
		if nt.sizes.At(i, d) != size {
			return Ragged, false
		}
	}
	return size, true
}

// OptSizes returns, per dimension, the homogeneous extent or Ragged.
func (nt *NestedTensor) OptSizes() []int {
	out := make([]int, nt.Rank())
	for d := range out {
		out[d], _ = nt.HomogeneousSize(d)
	}
	return out
}

// IsContiguous reports whether components are stored back to back in index
// order and the buffer holds nothing else.
func (nt *NestedTensor) IsContiguous() bool {
	acc := 0
	for i, off := range nt.offsets {
		if off != acc {
			return false
		}
		acc += nt.sizes.Numel(i)
	}
	return acc == nt.buffer.NumElements()
}

// Component returns a dense view of component i.
func (nt *NestedTensor) Component(i int) *tensor.RawTensor {
	if i < 0 || i >= nt.NumComponents() {
		exceptions.Panicf("nested: component %d out of range for %d components", i, nt.NumComponents())
	}
	start := nt.offsets[i]
	return nt.buffer.Slice(start, start+nt.sizes.Numel(i)).View(nt.sizes.Row(i))
}

// Unbind returns dense views of every component.
func (nt *NestedTensor) Unbind() []*tensor.RawTensor {
	parts := make([]*tensor.RawTensor, nt.NumComponents())
	for i := range parts {
		parts[i] = nt.Component(i)
	}
	return parts
}

// String describes the tensor, e.g. "nested float32 [[2 4] [1 3]]".
func (nt *NestedTensor) String() string {
	return "nested " + nt.DType().String() + " " + nt.sizes.String()
}
