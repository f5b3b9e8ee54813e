// Copyright 2025 FoldConv Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fold is the public API for converting N-dimensional convolutions
// into flat matrix-multiplication problems.
//
// # Overview
//
// An N-D convolution over an arbitrary filter shape, stride, padding and
// dilation is re-expressed in one dimension by "folding": dimensions are
// recursively interleaved with filler gaps sized so that a 1-D sliding
// window over the fold can never bridge a dimension boundary. The folded
// problem is then an ordinary Toeplitz matrix multiplication.
//
// # Basic Usage
//
//	import (
//	    "github.com/foldconv-ml/foldconv/fold"
//	    "github.com/foldconv-ml/foldconv/tensor"
//	)
//
//	// 1-D convolution: filter [1 2 3] over 5 inputs, stride 1, no padding.
//	f, err := fold.New([]int{3}, []int{5}, []int{1}, []int{0}, []int{1})
//	if err != nil {
//	    // invalid configuration: skip it
//	}
//
//	mask := f.InputSpacerMask() // real cells vs structural filler
//	m, err := f.MakeMatrix(filter)
//	// m multiplied by the flattened input reproduces the convolution
//
// Dimension 0 is the innermost (fastest-varying) axis of the fold, i.e. the
// last axis of the filter array. All derived structures are pure functions
// of the immutable configuration and safe for concurrent use.
package fold
