// Copyright 2025 FoldConv Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// Dense is an N-D float64 array stored in a flat row-major slice
// (last axis fastest).
type Dense struct {
	shape Shape
	data  []float64
}

// NewDense creates a Dense from a shape and a row-major data slice.
// The data is copied into the array's own storage.
func NewDense(shape Shape, data []float64) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("tensor: shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	d := &Dense{
		shape: shape.Clone(),
		data:  make([]float64, len(data)),
	}
	copy(d.data, data)
	return d, nil
}

// Zeros creates a zero-filled Dense of the given shape.
// Panics on an invalid shape (programming defect).
func Zeros(shape Shape) *Dense {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return &Dense{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}
}

// Shape returns the array's shape.
func (d *Dense) Shape() Shape {
	return d.shape
}

// NumElements returns the total number of elements.
func (d *Dense) NumElements() int {
	return len(d.data)
}

// Data returns the flat row-major backing slice.
//
// WARNING: Modifications to the returned slice will modify the array.
func (d *Dense) Data() []float64 {
	return d.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (d *Dense) At(indices ...int) float64 {
	return d.data[d.shape.Offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (d *Dense) Set(value float64, indices ...int) {
	d.data[d.shape.Offset(indices)] = value
}

// Clone creates a deep copy of the array.
func (d *Dense) Clone() *Dense {
	clone := &Dense{
		shape: d.shape.Clone(),
		data:  make([]float64, len(d.data)),
	}
	copy(clone.data, d.data)
	return clone
}

// String returns a human-readable representation of the array.
func (d *Dense) String() string {
	return fmt.Sprintf("Dense%v %v", d.shape, d.data)
}
