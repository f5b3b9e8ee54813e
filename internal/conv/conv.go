// Package conv applies N-D convolutions two independent ways — through the
// fold package's flat matrix-multiplication and through a direct
// sliding-window evaluation — so the two can be checked against each other.
//
// Unlike the fold package, which orders dimensions innermost first, this
// package takes all per-axis parameters in array-axis order (outermost
// first), matching how filter and input arrays are shaped.
package conv

import (
	"fmt"

	"github.com/foldconv-ml/foldconv/internal/axismask"
	"github.com/foldconv-ml/foldconv/internal/fold"
	"github.com/foldconv-ml/foldconv/tensor"
)

// Padding-mode names reported by PaddingType.
const (
	PaddingValid  = "VALID"
	PaddingSame   = "SAME"
	PaddingCustom = "CUSTOM"
)

// Spec is an immutable convolution configuration: the filter values plus
// per-axis stride, padding and dilation.
type Spec struct {
	filter   *tensor.Dense
	stride   []int
	padding  []int
	dilation []int
}

// NewSpec validates and builds a convolution Spec. All three parameter
// slices must have one entry per filter axis; stride and dilation must be
// >= 1 and padding >= 0.
//
// Dilation is carried through to the fold configuration, which stores but
// does not apply it; both evaluation paths therefore share the same
// undilated semantics.
func NewSpec(filter *tensor.Dense, stride, padding, dilation []int) (*Spec, error) {
	ndim := len(filter.Shape())
	if ndim == 0 {
		return nil, fmt.Errorf("%w: scalar filter", fold.ErrConfiguration)
	}
	if len(stride) != ndim || len(padding) != ndim || len(dilation) != ndim {
		return nil, fmt.Errorf("%w: filter has %d axes but stride %d, padding %d, dilation %d",
			fold.ErrConfiguration, ndim, len(stride), len(padding), len(dilation))
	}
	for a := 0; a < ndim; a++ {
		if stride[a] < 1 {
			return nil, fmt.Errorf("%w: axis %d: stride %d (must be >= 1)", fold.ErrConfiguration, a, stride[a])
		}
		if padding[a] < 0 {
			return nil, fmt.Errorf("%w: axis %d: padding %d (must be >= 0)", fold.ErrConfiguration, a, padding[a])
		}
		if dilation[a] < 1 {
			return nil, fmt.Errorf("%w: axis %d: dilation %d (must be >= 1)", fold.ErrConfiguration, a, dilation[a])
		}
	}
	return &Spec{
		filter:   filter.Clone(),
		stride:   cloneInts(stride),
		padding:  cloneInts(padding),
		dilation: cloneInts(dilation),
	}, nil
}

// SamePadding returns the per-axis padding that keeps one output per input
// position at stride 1 with the lower-biased center: (filterLen-1)/2.
func SamePadding(filterShape tensor.Shape) []int {
	pad := make([]int, len(filterShape))
	for a, dim := range filterShape {
		pad[a] = (dim - 1) / 2
	}
	return pad
}

// ValidPadding returns all-zero padding for ndim axes.
func ValidPadding(ndim int) []int {
	return make([]int, ndim)
}

// PaddingType reports the padding mode: VALID for all-zero padding, SAME
// when every axis uses (filterLen-1)/2, CUSTOM otherwise.
func (s *Spec) PaddingType() string {
	valid, same := true, true
	for a, pad := range s.padding {
		if pad != 0 {
			valid = false
		}
		if pad != (s.filter.Shape()[a]-1)/2 {
			same = false
		}
	}
	switch {
	case valid:
		return PaddingValid
	case same:
		return PaddingSame
	default:
		return PaddingCustom
	}
}

// Filter returns the configured filter values.
func (s *Spec) Filter() *tensor.Dense {
	return s.filter
}

// Result holds a convolution evaluation: one output value per input
// position in row-major order, and the validity mask selecting which of
// those positions are defined under the stride and padding.
type Result struct {
	Out   []float64
	Valid []bool
}

// ValidValues returns the defined output values in order.
func (r *Result) ValidValues() []float64 {
	vals := make([]float64, 0, len(r.Out))
	for i, ok := range r.Valid {
		if ok {
			vals = append(vals, r.Out[i])
		}
	}
	return vals
}

// Matrix evaluates the convolution through the folded matrix: the fold's
// square matrix multiplied against the row-major flattened input.
func (s *Spec) Matrix(input *tensor.Dense) (*Result, error) {
	f, err := s.foldFor(input.Shape())
	if err != nil {
		return nil, err
	}
	mat, err := f.MakeMatrix(s.filter)
	if err != nil {
		return nil, err
	}
	return &Result{
		Out:   mat.MulVec(input.Data()),
		Valid: f.ValidityMask(),
	}, nil
}

// Direct evaluates the convolution by sliding the filter window over the
// input, anchored at the lower-biased center, with zeros outside the real
// extent. It is the in-repo oracle the matrix path is checked against.
func (s *Spec) Direct(input *tensor.Dense) (*Result, error) {
	shape := input.Shape()
	fshape := s.filter.Shape()
	if len(shape) != len(fshape) {
		return nil, fmt.Errorf("%w: input has %d axes, filter has %d", fold.ErrConfiguration, len(shape), len(fshape))
	}

	ndim := len(shape)
	center := make([]int, ndim)
	for a, dim := range fshape {
		center[a] = dim / 2
	}

	inStrides := shape.ComputeStrides()
	fStrides := fshape.ComputeStrides()
	inData := input.Data()
	fData := s.filter.Data()

	out := make([]float64, shape.NumElements())
	idx := make([]int, ndim)
	src := make([]int, ndim)
	fidx := make([]int, ndim)
	for i := range out {
		unflatten(i, inStrides, shape, idx)

		sum := 0.0
		for j := range fData {
			unflatten(j, fStrides, fshape, fidx)
			inside := true
			for a := 0; a < ndim; a++ {
				src[a] = idx[a] + fidx[a] - center[a]
				if src[a] < 0 || src[a] >= shape[a] {
					inside = false
					break
				}
			}
			if inside {
				sum += fData[j] * inData[shape.Offset(src)]
			}
		}
		out[i] = sum
	}

	return &Result{Out: out, Valid: s.validity(shape)}, nil
}

// validity combines the per-axis tap validity across all axes.
func (s *Spec) validity(shape tensor.Shape) []bool {
	ndim := len(shape)
	axisValid := make([][]bool, ndim)
	for a := 0; a < ndim; a++ {
		axisValid[a] = axismask.Valid(shape[a], s.filter.Shape()[a], s.stride[a], s.padding[a])
	}

	strides := shape.ComputeStrides()
	valid := make([]bool, shape.NumElements())
	idx := make([]int, ndim)
	for i := range valid {
		unflatten(i, strides, shape, idx)
		ok := true
		for a := 0; a < ndim; a++ {
			if !axisValid[a][idx[a]] {
				ok = false
				break
			}
		}
		valid[i] = ok
	}
	return valid
}

// foldFor builds the fold configuration for an input shape. The fold package
// orders dimensions innermost first, so every sequence is reversed.
func (s *Spec) foldFor(inputShape tensor.Shape) (*fold.Fold, error) {
	fshape := s.filter.Shape()
	if len(inputShape) != len(fshape) {
		return nil, fmt.Errorf("%w: input has %d axes, filter has %d", fold.ErrConfiguration, len(inputShape), len(fshape))
	}
	return fold.New(
		reversedInts(fshape),
		reversedInts(inputShape),
		reversedInts(s.stride),
		reversedInts(s.padding),
		reversedInts(s.dilation),
		axismask.Builder{},
	)
}

// unflatten decomposes flat offset i into the multi-index idx.
func unflatten(i int, strides []int, shape tensor.Shape, idx []int) {
	for a := range shape {
		idx[a] = (i / strides[a]) % shape[a]
	}
}

func reversedInts(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
