package dataset

import (
	"fmt"
	"iter"
)

// Matrix is a sparse examples-by-features matrix in CSR layout. Zero entries
// are not materialized.
type Matrix struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// NewDense builds a Matrix from dense rows, dropping zero entries. All rows
// must share the same length.
func NewDense(rows [][]float64) (*Matrix, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}

	m := &Matrix{
		rows:   len(rows),
		cols:   cols,
		indptr: make([]int, 1, len(rows)+1),
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("dataset: row %d has %d columns, row 0 has %d", i, len(row), cols)
		}
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.indices = append(m.indices, j)
			m.data = append(m.data, v)
		}
		m.indptr = append(m.indptr, len(m.indices))
	}
	return m, nil
}

// Rows returns the number of example rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of feature columns.
func (m *Matrix) Cols() int { return m.cols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.data) }

// Row iterates the stored (column, value) entries of row i in column order.
func (m *Matrix) Row(i int) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			if !yield(m.indices[p], m.data[p]) {
				return
			}
		}
	}
}

// DenseRow materializes row i. dst is reused when it has sufficient
// capacity.
func (m *Matrix) DenseRow(i int, dst []float64) []float64 {
	if cap(dst) < m.cols {
		dst = make([]float64, m.cols)
	}
	dst = dst[:m.cols]
	for j := range dst {
		dst[j] = 0
	}
	for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
		dst[m.indices[p]] = m.data[p]
	}
	return dst
}

// Dense materializes the whole matrix. Intended for tests and small data.
func (m *Matrix) Dense() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = m.DenseRow(i, nil)
	}
	return out
}

// SelectRows gathers the given rows into a new Matrix, in index order.
// Row indices may repeat.
func (m *Matrix) SelectRows(idx []int) *Matrix {
	sel := &Matrix{
		rows:   len(idx),
		cols:   m.cols,
		indptr: make([]int, 1, len(idx)+1),
	}
	for _, i := range idx {
		start, end := m.indptr[i], m.indptr[i+1]
		sel.indices = append(sel.indices, m.indices[start:end]...)
		sel.data = append(sel.data, m.data[start:end]...)
		sel.indptr = append(sel.indptr, len(sel.indices))
	}
	return sel
}
