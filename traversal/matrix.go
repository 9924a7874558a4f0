// Package traversal - Row-major vs column-major traversal trials over 2-D containers.
package traversal

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidDimensions is returned for matrices with a non-positive dimension.
var ErrInvalidDimensions = errors.New("matrix dimensions must be positive")

// Matrix is a sequence of rows, stored row-major.
//
// Rows are views into a single backing slice, so the same storage can be
// handed to a gonum matrix. The dimensions never change after construction.
type Matrix struct {
	rows [][]float64
	data []float64
	r, c int
}

// NewMatrix allocates a zeroed r×c matrix.
//
// Arguments:
//   - r: Number of rows.
//   - c: Number of columns.
//
// Returns:
//   - *Matrix: The matrix.
//   - error: ErrInvalidDimensions when r or c is not positive.
func NewMatrix(r, c int) (*Matrix, error) {
	if r <= 0 || c <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d", r, c)
	}

	data := make([]float64, r*c)
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = data[i*c : (i+1)*c : (i+1)*c]
	}
	return &Matrix{rows: rows, data: data, r: r, c: c}, nil
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (r, c int) { return m.r, m.c }

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.rows[i][j] }

// Set stores v at row i, column j.
func (m *Matrix) Set(i, j int, v float64) { m.rows[i][j] = v }

// Fill sets every element to v.
func (m *Matrix) Fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

// All reports whether every element equals v.
func (m *Matrix) All(v float64) bool {
	for _, row := range m.rows {
		for _, x := range row {
			if x != v {
				return false
			}
		}
	}
	return true
}

// Intact reports whether the row structure still matches the construction dimensions.
func (m *Matrix) Intact() bool {
	if len(m.rows) != m.r || len(m.data) != m.r*m.c {
		return false
	}
	for _, row := range m.rows {
		if len(row) != m.c {
			return false
		}
	}
	return true
}

// Dense returns a gonum matrix sharing the backing storage.
func (m *Matrix) Dense() *mat.Dense {
	return mat.NewDense(m.r, m.c, m.data)
}
