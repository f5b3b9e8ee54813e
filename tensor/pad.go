// Copyright 2025 FoldConv Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// PadAxis appends count constant slices of fill along one axis of a flat
// row-major array, returning the grown data and its new shape. The input
// slice is not modified.
//
// A block along axis spans shape[axis] * inner elements, where inner is the
// product of the dimensions after axis; padding appends count * inner fill
// values after each block.
func PadAxis[T any](data []T, shape Shape, axis, count int, fill T) ([]T, Shape) {
	if axis < 0 || axis >= len(shape) {
		panic(fmt.Sprintf("tensor: pad axis %d out of range for shape %v", axis, shape))
	}
	if count < 0 {
		panic(fmt.Sprintf("tensor: negative pad count %d", count))
	}
	if len(data) != shape.NumElements() {
		panic(fmt.Sprintf("tensor: data length %d does not match shape %v", len(data), shape))
	}

	outer := 1
	for _, dim := range shape[:axis] {
		outer *= dim
	}
	inner := 1
	for _, dim := range shape[axis+1:] {
		inner *= dim
	}

	newShape := shape.Clone()
	newShape[axis] += count

	block := shape[axis] * inner
	grown := block + count*inner
	out := make([]T, outer*grown)

	for o := 0; o < outer; o++ {
		copy(out[o*grown:], data[o*block:(o+1)*block])
		pad := out[o*grown+block : (o+1)*grown]
		for i := range pad {
			pad[i] = fill
		}
	}
	return out, newShape
}
