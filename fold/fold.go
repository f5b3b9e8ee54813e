// Copyright 2025 FoldConv Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package fold

import (
	"github.com/foldconv-ml/foldconv/internal/axismask"
	"github.com/foldconv-ml/foldconv/internal/fold"
)

// Fold converts an N-dimensional convolution into an equivalent flat
// matrix-multiplication problem. See the internal fold package for the
// full contract.
type Fold = fold.Fold

// AxisMaskBuilder supplies per-dimension output-validity masks.
type AxisMaskBuilder = fold.AxisMaskBuilder

// Error taxonomy. ErrConfiguration marks a configuration that should be
// skipped; ErrShapeMismatch marks filter values that disagree with the
// configured filter size.
var (
	ErrConfiguration = fold.ErrConfiguration
	ErrShapeMismatch = fold.ErrShapeMismatch
)

// New constructs a Fold with the default axis-mask builder. All five
// sequences are per-dimension with dimension 0 innermost.
func New(filterSize, inputSize, stride, padding, dilation []int) (*Fold, error) {
	return fold.New(filterSize, inputSize, stride, padding, dilation, axismask.Builder{})
}

// NewWithMasks constructs a Fold with a caller-supplied axis-mask builder.
func NewWithMasks(filterSize, inputSize, stride, padding, dilation []int, masks AxisMaskBuilder) (*Fold, error) {
	return fold.New(filterSize, inputSize, stride, padding, dilation, masks)
}
