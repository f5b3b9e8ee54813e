// Copyright 2025 FoldConv Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"

	"github.com/foldconv-ml/foldconv/internal/parallel"
)

// Matrix is a dense row-major matrix of float64 values.
type Matrix struct {
	rows, cols int
	data       []float64 // flat backing storage, length == rows*cols
}

// NewMatrix creates a rows×cols zero matrix.
// Panics on non-positive dimensions (programming defect).
func NewMatrix(rows, cols int) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("tensor: invalid matrix dimensions %dx%d", rows, cols))
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return m.cols
}

// At returns the element at (row, col).
// Panics if the position is out of bounds.
func (m *Matrix) At(row, col int) float64 {
	m.check(row, col)
	return m.data[row*m.cols+col]
}

// Set sets the element at (row, col).
// Panics if the position is out of bounds.
func (m *Matrix) Set(row, col int, value float64) {
	m.check(row, col)
	m.data[row*m.cols+col] = value
}

// Row returns a view of row r.
//
// WARNING: Modifications to the returned slice will modify the matrix.
func (m *Matrix) Row(r int) []float64 {
	m.check(r, 0)
	return m.data[r*m.cols : (r+1)*m.cols]
}

// MulVec multiplies the matrix against a column vector, returning a new
// vector of length Rows(). Panics if len(x) != Cols().
func (m *Matrix) MulVec(x []float64) []float64 {
	if len(x) != m.cols {
		panic(fmt.Sprintf("tensor: matrix is %dx%d, vector has length %d", m.rows, m.cols, len(x)))
	}
	out := make([]float64, m.rows)
	parallel.For(m.rows, func(r int) {
		row := m.data[r*m.cols : (r+1)*m.cols]
		sum := 0.0
		for c, v := range row {
			sum += v * x[c]
		}
		out[r] = sum
	}, parallel.DefaultConfig())
	return out
}

func (m *Matrix) check(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("tensor: position (%d,%d) out of bounds for %dx%d matrix", row, col, m.rows, m.cols))
	}
}

// String returns a human-readable representation of the matrix.
func (m *Matrix) String() string {
	return fmt.Sprintf("Matrix(%dx%d)", m.rows, m.cols)
}
