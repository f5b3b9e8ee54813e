// Copyright 2025 FoldConv Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the small array primitives FoldConv builds on.
//
// # Overview
//
//   - Shape: N-D dimensions with row-major stride and offset arithmetic
//   - Dense: an N-D float64 array over a flat row-major slice
//   - Matrix: a dense row-major float64 matrix
//   - PadAxis: appending constant slices along one axis of a flat array
//
// All arrays are row-major with the last axis fastest. Recoverable problems
// (bad construction arguments) return errors; indexing violations are
// programming defects and panic.
//
// # Basic Usage
//
//	x, err := tensor.NewDense(tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
//	if err != nil {
//	    // shape and data disagree
//	}
//	v := x.At(1, 2) // 6
package tensor
