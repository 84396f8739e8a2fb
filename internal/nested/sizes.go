package nested

import (
	"fmt"
	"strings"

	"github.com/born-ml/nested/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// SizeMatrix is the N×D table of component shapes of a nested tensor.
// Row i is the shape of component i. It is immutable once built.
type SizeMatrix struct {
	rows int
	cols int
	data []int // row-major, rows*cols entries
}

// NewSizeMatrix builds a size matrix from one shape per component.
// Every row must have the same length and no extent may be negative.
func NewSizeMatrix(rows [][]int) (*SizeMatrix, error) {
	m := &SizeMatrix{rows: len(rows)}
	if len(rows) > 0 {
		m.cols = len(rows[0])
	}
	m.data = make([]int, 0, m.rows*m.cols)
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, errors.Errorf("component %d has rank %d, expected %d", i, len(row), m.cols)
		}
		for d, v := range row {
			if v < 0 {
				return nil, errors.Errorf("component %d has negative extent %d at dimension %d", i, v, d)
			}
		}
		m.data = append(m.data, row...)
	}
	return m, nil
}

// MustSizeMatrix is NewSizeMatrix for literals and internal callers.
func MustSizeMatrix(rows [][]int) *SizeMatrix {
	m, err := NewSizeMatrix(rows)
	if err != nil {
		exceptions.Panicf("size matrix: %v", err)
	}
	return m
}

// UniformSizeMatrix returns n rows all equal to shape. The rank is kept even
// when n is zero.
func UniformSizeMatrix(n int, shape tensor.Shape) *SizeMatrix {
	if err := shape.Validate(); err != nil {
		exceptions.Panicf("size matrix: %v", err)
	}
	m := &SizeMatrix{rows: n, cols: len(shape), data: make([]int, 0, n*len(shape))}
	for i := 0; i < n; i++ {
		m.data = append(m.data, shape...)
	}
	return m
}

// NumComponents returns N.
func (m *SizeMatrix) NumComponents() int {
	return m.rows
}

// Rank returns D, the rank shared by all components.
func (m *SizeMatrix) Rank() int {
	return m.cols
}

// At returns the extent of component i at dimension d.
func (m *SizeMatrix) At(i, d int) int {
	return m.data[i*m.cols+d]
}

// Row returns a copy of component i's shape.
func (m *SizeMatrix) Row(i int) tensor.Shape {
	row := make(tensor.Shape, m.cols)
	copy(row, m.data[i*m.cols:(i+1)*m.cols])
	return row
}

// Column returns the extents of every component at dimension d.
func (m *SizeMatrix) Column(d int) []int {
	col := make([]int, m.rows)
	for i := range col {
		col[i] = m.At(i, d)
	}
	return col
}

// Numel returns the element count of component i (1 for a rank-0 component).
func (m *SizeMatrix) Numel(i int) int {
	n := 1
	for _, v := range m.data[i*m.cols : (i+1)*m.cols] {
		n *= v
	}
	return n
}

// Numels returns the element count of every component.
func (m *SizeMatrix) Numels() []int {
	out := make([]int, m.rows)
	for i := range out {
		out[i] = m.Numel(i)
	}
	return out
}

// TotalNumel returns the sum of all component element counts.
func (m *SizeMatrix) TotalNumel() int {
	total := 0
	for i := 0; i < m.rows; i++ {
		total += m.Numel(i)
	}
	return total
}

// Offsets returns the contiguous storage offset of every component: the
// cumulative element count of all preceding components.
func (m *SizeMatrix) Offsets() []int {
	offsets := make([]int, m.rows)
	acc := 0
	for i := range offsets {
		offsets[i] = acc
		acc += m.Numel(i)
	}
	return offsets
}

// DropLast returns the size matrix with the trailing column removed, i.e. the
// shapes left after reducing each component's last dimension.
func (m *SizeMatrix) DropLast() *SizeMatrix {
	if m.cols == 0 {
		exceptions.Panicf("size matrix: cannot drop a column from rank-0 components")
	}
	out := &SizeMatrix{rows: m.rows, cols: m.cols - 1, data: make([]int, 0, m.rows*(m.cols-1))}
	for i := 0; i < m.rows; i++ {
		out.data = append(out.data, m.data[i*m.cols:(i+1)*m.cols-1]...)
	}
	return out
}

// Clone returns an independent copy.
func (m *SizeMatrix) Clone() *SizeMatrix {
	data := make([]int, len(m.data))
	copy(data, m.data)
	return &SizeMatrix{rows: m.rows, cols: m.cols, data: data}
}

// Equal reports whether both matrices describe the same shapes.
func (m *SizeMatrix) Equal(other *SizeMatrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// String renders the matrix as "[[2 4] [1 3]]".
func (m *SizeMatrix) String() string {
	parts := make([]string, m.rows)
	for i := range parts {
		parts[i] = m.Row(i).String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}
