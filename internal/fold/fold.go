// Package fold converts an N-dimensional convolution with arbitrary filter
// shape, stride, padding and dilation into an equivalent flat
// matrix-multiplication problem.
//
// The conversion works by recursively interleaving dimensions with filler
// gaps ("folding") so that a 1-D sliding-window (Toeplitz) operation on the
// fold reproduces the N-D convolution. The package derives, per
// configuration:
//
//   - how many scalar cells the folded 1-D sequence needs;
//   - where the filter's center tap lands in folded coordinates;
//   - boolean spacer masks separating real cells from structural filler;
//   - the dense square matrix that, multiplied against the flattened real
//     input, reproduces the convolution's output at every position.
//
// Dimension 0 is the innermost (fastest-varying) axis of the fold and
// corresponds to the LAST axis of the supplied filter array. All derived
// quantities are pure functions of the immutable configuration.
package fold

import (
	"errors"
	"fmt"

	"github.com/foldconv-ml/foldconv/tensor"
)

// ErrConfiguration reports mismatched or non-positive per-dimension
// parameters. A configuration that fails this way is never retried; callers
// sweeping many configurations skip it and continue.
var ErrConfiguration = errors.New("fold: invalid configuration")

// ErrShapeMismatch reports filter values whose shape disagrees with the
// configured filter size. No partial result is returned.
var ErrShapeMismatch = errors.New("fold: filter shape mismatch")

// AxisMaskBuilder supplies per-dimension output-validity masks.
//
// BuildAxisMasks returns one boolean sequence per output tap t in
// [0, inputLen), each of length inputLen: entry j is true iff tap t is a
// structurally valid output position for the given stride and padding AND
// real input cell j lies under the filter window anchored at t. An invalid
// tap yields an all-false sequence.
type AxisMaskBuilder interface {
	BuildAxisMasks(inputLen, filterLen, stride, padding int) [][]bool
}

// Fold holds the per-dimension convolution geometry. It is immutable after
// construction; every method is a deterministic pure function of it, so a
// Fold may be shared freely across goroutines.
type Fold struct {
	ndim       int
	filterSize []int
	inputSize  []int
	stride     []int
	padding    []int
	dilation   []int // accepted and stored; not consumed by folding or masking
	masks      AxisMaskBuilder
}

// New constructs a Fold from per-dimension parameters, dimension 0 innermost.
// All five sequences must have the same positive length; filter, input and
// stride entries must be >= 1, padding >= 0 and dilation >= 1.
func New(filterSize, inputSize, stride, padding, dilation []int, masks AxisMaskBuilder) (*Fold, error) {
	ndim := len(filterSize)
	if ndim == 0 {
		return nil, fmt.Errorf("%w: empty filter size", ErrConfiguration)
	}
	if len(inputSize) != ndim || len(stride) != ndim || len(padding) != ndim || len(dilation) != ndim {
		return nil, fmt.Errorf("%w: sequence lengths disagree: filter %d, input %d, stride %d, padding %d, dilation %d",
			ErrConfiguration, ndim, len(inputSize), len(stride), len(padding), len(dilation))
	}
	for d := 0; d < ndim; d++ {
		if filterSize[d] < 1 || inputSize[d] < 1 || stride[d] < 1 {
			return nil, fmt.Errorf("%w: dimension %d: filter %d, input %d, stride %d (all must be >= 1)",
				ErrConfiguration, d, filterSize[d], inputSize[d], stride[d])
		}
		if padding[d] < 0 {
			return nil, fmt.Errorf("%w: dimension %d: padding %d (must be >= 0)", ErrConfiguration, d, padding[d])
		}
		if dilation[d] < 1 {
			return nil, fmt.Errorf("%w: dimension %d: dilation %d (must be >= 1)", ErrConfiguration, d, dilation[d])
		}
	}
	if masks == nil {
		return nil, fmt.Errorf("%w: nil axis mask builder", ErrConfiguration)
	}

	return &Fold{
		ndim:       ndim,
		filterSize: cloneInts(filterSize),
		inputSize:  cloneInts(inputSize),
		stride:     cloneInts(stride),
		padding:    cloneInts(padding),
		dilation:   cloneInts(dilation),
		masks:      masks,
	}, nil
}

// NDim returns the number of dimensions.
func (f *Fold) NDim() int {
	return f.ndim
}

// extent carries the folded quantities for dimensions 0..d.
type extent struct {
	input  int // folded input length
	filter int // folded filter length
	center int // folded position of the filter's center tap
}

// extent accumulates the folded extents up to dimension d. Moving to an outer
// dimension lays out that dimension's count of inner blocks, separated by
// enough filler to keep the filter window from bridging dimension boundaries.
func (f *Fold) extent(d int) extent {
	f.checkDim(d)
	e := extent{
		input:  f.inputSize[0],
		filter: f.filterSize[0],
		center: f.filterSize[0] / 2,
	}
	for k := 1; k <= d; k++ {
		sepInput := e.filter - 1 // gap between repeated input blocks
		sepFilter := e.input - 1 // gap between repeated filter blocks
		e = extent{
			input:  repeatInterleaveScalar(e.input, f.inputSize[k], sepInput),
			filter: repeatInterleaveScalar(e.filter, f.filterSize[k], sepFilter),
			center: (e.filter+sepFilter)*(f.filterSize[k]/2) + e.center,
		}
	}
	return e
}

// FoldedInputLen returns the folded input length for dimension d.
func (f *Fold) FoldedInputLen(d int) int {
	return f.extent(d).input
}

// FoldedFilterLen returns the folded filter length for dimension d.
func (f *Fold) FoldedFilterLen(d int) int {
	return f.extent(d).filter
}

// CenterIndex returns the folded position of the filter's center tap for
// dimension d. The center is lower-biased for even filter sizes and always
// satisfies 0 <= CenterIndex(d) < FoldedFilterLen(d).
func (f *Fold) CenterIndex(d int) int {
	return f.extent(d).center
}

// InputSpacerMask returns the boolean mask over the fully folded input
// space: true at cells holding real input data, false at structural filler.
//
// The mask is built on padded scaffolding: an all-true array shaped like the
// input grows filterSize[d]-1 false slices along each inner dimension's axis,
// is flattened row-major, and is truncated just past the last real cell.
// The truncation, not the padding, removes the trailing filler that would
// exceed the true folded length.
func (f *Fold) InputSpacerMask() []bool {
	shape := f.scaffoldShape(f.inputSize)
	mask := make([]bool, shape.NumElements())
	for i := range mask {
		mask[i] = true
	}

	// Dimension d lives on array axis ndim-1-d; pad the innermost first so
	// outer gaps span the already-grown inner blocks.
	for d := 0; d <= f.ndim-2; d++ {
		mask, shape = tensor.PadAxis(mask, shape, f.ndim-1-d, f.filterSize[d]-1, false)
	}

	end := shape.Offset(lastIndex(f.scaffoldShape(f.inputSize)))
	return mask[:end+1]
}

// FilterSpacerMask returns the spacer mask for the filter's folded space:
// true at cells holding filter weights, false at filler.
func (f *Fold) FilterSpacerMask() []bool {
	mask := make([]bool, f.filterSize[0])
	for i := range mask {
		mask[i] = true
	}
	foldedInput := f.inputSize[0]
	foldedFilter := f.filterSize[0]
	for d := 1; d < f.ndim; d++ {
		sepFilter := foldedInput - 1
		sepInput := foldedFilter - 1
		mask = repeatInterleaveBools(mask, f.filterSize[d], sepFilter)
		foldedFilter = repeatInterleaveScalar(foldedFilter, f.filterSize[d], sepFilter)
		foldedInput = repeatInterleaveScalar(foldedInput, f.inputSize[d], sepInput)
	}
	return mask
}

// UnfoldFilter re-expresses the filter's weights in folded 1-D coordinates,
// zero-filled at filler positions, and returns them together with the folded
// index of the center tap.
//
// The filter array's shape must equal the configured filter size with axes
// outermost first (the reverse of the filterSize sequence).
func (f *Fold) UnfoldFilter(filter *tensor.Dense) ([]float64, int, error) {
	want := f.scaffoldShape(f.filterSize)
	if !filter.Shape().Equal(want) {
		return nil, 0, fmt.Errorf("%w: got %v, configured %v", ErrShapeMismatch, filter.Shape(), want)
	}

	data := make([]float64, filter.NumElements())
	copy(data, filter.Data())
	shape := want.Clone()

	for d := 0; d <= f.ndim-2; d++ {
		data, shape = tensor.PadAxis(data, shape, f.ndim-1-d, f.inputSize[d]-1, 0.0)
	}

	end := shape.Offset(lastIndex(want))
	center := shape.Offset(centerIndex(want))
	return data[:end+1], center, nil
}

// ValidityMask returns one boolean per real-input position, in the same
// order as the compacted matrix rows, marking which output positions of the
// convolution are defined under the configured stride and padding.
//
// Per dimension, each output tap's contributor sequence from the
// AxisMaskBuilder reduces to a single tap-valid bit (a valid tap always
// covers its own real cell, so an all-false sequence means an invalid tap);
// dimensions combine by logical AND over the Cartesian product of taps,
// dimension 0 fastest.
func (f *Fold) ValidityMask() []bool {
	v := []bool{true}
	for d := 0; d < f.ndim; d++ {
		taps := f.masks.BuildAxisMasks(f.inputSize[d], f.filterSize[d], f.stride[d], f.padding[d])
		next := make([]bool, 0, len(taps)*len(v))
		for _, contributors := range taps {
			ok := anyTrue(contributors)
			for _, b := range v {
				next = append(next, b && ok)
			}
		}
		v = next
	}
	return v
}

// scaffoldShape returns the array shape for per-dimension sizes, outermost
// axis first (dimension 0 is the last, fastest axis).
func (f *Fold) scaffoldShape(sizes []int) tensor.Shape {
	return tensor.Shape(sizes).Reversed()
}

func (f *Fold) checkDim(d int) {
	if d < 0 || d >= f.ndim {
		panic(fmt.Sprintf("fold: dimension %d out of range [0,%d)", d, f.ndim))
	}
}

// repeatInterleaveScalar returns the length of rep copies of a block of
// length v separated by gaps of length sep.
func repeatInterleaveScalar(v, rep, sep int) int {
	return (v+sep)*(rep-1) + v
}

// repeatInterleaveBools lays out rep copies of block separated by sepLen
// false cells.
func repeatInterleaveBools(block []bool, rep, sepLen int) []bool {
	out := make([]bool, 0, repeatInterleaveScalar(len(block), rep, sepLen))
	for r := 0; r < rep; r++ {
		if r > 0 {
			out = append(out, make([]bool, sepLen)...)
		}
		out = append(out, block...)
	}
	return out
}

// lastIndex returns the coordinate of the last element of shape.
func lastIndex(shape tensor.Shape) []int {
	idx := make([]int, len(shape))
	for i, dim := range shape {
		idx[i] = dim - 1
	}
	return idx
}

// centerIndex returns the lower-biased center coordinate of shape.
func centerIndex(shape tensor.Shape) []int {
	idx := make([]int, len(shape))
	for i, dim := range shape {
		idx[i] = dim / 2
	}
	return idx
}

func anyTrue(mask []bool) bool {
	for _, b := range mask {
		if b {
			return true
		}
	}
	return false
}

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
