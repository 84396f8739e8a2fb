package nested

import "github.com/gomlx/exceptions"

// ResolveSizes expands a per-dimension shape list into a full size matrix.
// Entries equal to Ragged take the corresponding column of template verbatim;
// other entries pin every component to that extent.
func ResolveSizes(shape []int, template *SizeMatrix) *SizeMatrix {
	if len(shape) != template.Rank() {
		exceptions.Panicf("nested: shape %v has %d dimensions, template has rank %d", shape, len(shape), template.Rank())
	}
	n := template.NumComponents()
	out := &SizeMatrix{rows: n, cols: len(shape), data: make([]int, 0, n*len(shape))}
	for i := 0; i < n; i++ {
		for d, extent := range shape {
			switch {
			case extent == Ragged:
				extent = template.At(i, d)
			case extent < 0:
				exceptions.Panicf("nested: invalid extent %d at dimension %d", extent, d)
			}
			out.data = append(out.data, extent)
		}
	}
	return out
}

// ViewAs reinterprets nt's buffer under new component shapes without moving
// any element. nt must be contiguous and every component must keep its
// element count.
func ViewAs(nt *NestedTensor, sizes *SizeMatrix) *NestedTensor {
	if !nt.IsContiguous() {
		exceptions.Panicf("nested: cannot reinterpret a non-contiguous nested tensor")
	}
	if sizes.NumComponents() != nt.NumComponents() {
		exceptions.Panicf("nested: cannot view %d components as %d", nt.NumComponents(), sizes.NumComponents())
	}
	for i := 0; i < sizes.NumComponents(); i++ {
		if have, want := nt.sizes.Numel(i), sizes.Numel(i); have != want {
			exceptions.Panicf("nested: component %d has %d elements (%s), cannot view as %s (%d elements)",
				i, have, nt.sizes.Row(i), sizes.Row(i), want)
		}
	}
	return Wrap(nt.buffer, sizes)
}
