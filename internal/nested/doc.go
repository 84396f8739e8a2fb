// Package nested implements the nested (ragged) tensor view used by the
// backward kernels.
//
// A nested tensor is N dense components of equal rank D and possibly
// different extents, stored as one flat buffer plus an N×D SizeMatrix:
//
//	components: [[a b c d] [e f g h]]   shape [2 4]
//	            [[i j k]]               shape [1 3]
//	buffer:     [a b c d e f g h i j k]
//	sizes:      [[2 4] [1 3]]
//
// Component i occupies buffer[offset_i : offset_i+numel_i], where offset_i is
// the element count of all preceding components. Wrap enforces that the sizes
// account for exactly the buffer length.
//
// Internal consistency failures (size/buffer mismatches, broken cursor
// bookkeeping) panic through github.com/gomlx/exceptions: they indicate a bug
// in the caller, not bad input. Constructors that take user data
// (NewSizeMatrix, FromComponents, FromDense) return errors instead.
package nested
