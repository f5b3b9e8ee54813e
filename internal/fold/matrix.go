package fold

import (
	"fmt"

	"github.com/foldconv-ml/foldconv/internal/parallel"
	"github.com/foldconv-ml/foldconv/tensor"
)

// MakeMatrix builds the dense square convolution matrix for the given filter
// values. Multiplying it against the row-major flattened real input
// reproduces the N-D convolution's output at every input position; the
// ValidityMask selects which of those outputs are defined.
//
// Construction is the classical convolution-as-matmul Toeplitz trick applied
// to the fold: the unfolded filter values are embedded in a strip of length
// 2n-1 (n the folded input length) so that the center tap sits at offset
// n-1, each full-space row i is the length-n window of the strip starting at
// n-1-i, and rows and columns are then compacted through the input spacer
// mask. The result is square with side equal to the number of real input
// cells.
func (f *Fold) MakeMatrix(filter *tensor.Dense) (*tensor.Matrix, error) {
	values, center, err := f.UnfoldFilter(filter)
	if err != nil {
		return nil, err
	}
	isMask := f.InputSpacerMask()
	n := len(isMask)

	loff := n - center - 1
	roff := n - len(values) + center

	lzero, ltrim := max(loff, 0), max(-loff, 0)
	rzero, rtrim := max(roff, 0), max(-roff, 0)

	strip := make([]float64, 0, 2*n-1)
	strip = append(strip, make([]float64, lzero)...)
	strip = append(strip, values[ltrim:len(values)-rtrim]...)
	strip = append(strip, make([]float64, rzero)...)
	if len(strip) != 2*n-1 {
		panic(fmt.Sprintf("fold: values strip length %d, want %d", len(strip), 2*n-1))
	}

	keep := make([]int, 0, n)
	for i, isReal := range isMask {
		if isReal {
			keep = append(keep, i)
		}
	}

	mat := tensor.NewMatrix(len(keep), len(keep))
	parallel.For(len(keep), func(r int) {
		window := strip[n-1-keep[r] : 2*n-1-keep[r]]
		for c, j := range keep {
			mat.Set(r, c, window[j])
		}
	}, parallel.DefaultConfig())
	return mat, nil
}
