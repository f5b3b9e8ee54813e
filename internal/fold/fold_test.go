package fold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldconv-ml/foldconv/internal/axismask"
	"github.com/foldconv-ml/foldconv/tensor"
)

func mustFold(t *testing.T, filterSize, inputSize, stride, padding, dilation []int) *Fold {
	t.Helper()
	f, err := New(filterSize, inputSize, stride, padding, dilation, axismask.Builder{})
	require.NoError(t, err)
	return f
}

func ones(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

// fold1d builds a 1-D fold with stride 1 and no padding.
func fold1d(t *testing.T, filterLen, inputLen int) *Fold {
	t.Helper()
	return mustFold(t, []int{filterLen}, []int{inputLen}, []int{1}, []int{0}, []int{1})
}

func TestNew_ConfigurationErrors(t *testing.T) {
	builder := axismask.Builder{}

	cases := []struct {
		name   string
		filter []int
		input  []int
		stride []int
		pad    []int
		dil    []int
	}{
		{"empty", nil, nil, nil, nil, nil},
		{"length mismatch", []int{3}, []int{5, 5}, []int{1}, []int{0}, []int{1}},
		{"zero filter", []int{0}, []int{5}, []int{1}, []int{0}, []int{1}},
		{"zero input", []int{3}, []int{0}, []int{1}, []int{0}, []int{1}},
		{"zero stride", []int{3}, []int{5}, []int{0}, []int{0}, []int{1}},
		{"negative padding", []int{3}, []int{5}, []int{1}, []int{-1}, []int{1}},
		{"zero dilation", []int{3}, []int{5}, []int{1}, []int{0}, []int{0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.filter, tc.input, tc.stride, tc.pad, tc.dil, builder)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	_, err := New([]int{3}, []int{5}, []int{1}, []int{0}, []int{1}, nil)
	assert.ErrorIs(t, err, ErrConfiguration, "nil mask builder")
}

func TestFold_Extents1D(t *testing.T) {
	f := fold1d(t, 3, 5)
	assert.Equal(t, 5, f.FoldedInputLen(0))
	assert.Equal(t, 3, f.FoldedFilterLen(0))
	assert.Equal(t, 1, f.CenterIndex(0))
}

func TestFold_Extents2D(t *testing.T) {
	// Inner dimension: filter 2 over input 4; outer: filter 3 over input 5.
	f := mustFold(t, []int{2, 3}, []int{4, 5}, ones(2), []int{0, 0}, ones(2))

	// 5 blocks of 4 separated by gaps of foldedFilter(0)-1 = 1.
	assert.Equal(t, 24, f.FoldedInputLen(1))
	// 3 blocks of 2 separated by gaps of foldedInput(0)-1 = 3.
	assert.Equal(t, 12, f.FoldedFilterLen(1))
	// One whole (filter+gap) block before the outer center, plus the inner center.
	assert.Equal(t, 6, f.CenterIndex(1))
}

func TestFold_CenterIndexEvenFilter(t *testing.T) {
	f := fold1d(t, 4, 6)
	assert.Equal(t, 2, f.CenterIndex(0), "even sizes take the lower-biased center")
}

// TestFold_CenteringLaw sweeps small configurations and checks
// 0 <= CenterIndex(d) < FoldedFilterLen(d) for every dimension.
func TestFold_CenteringLaw(t *testing.T) {
	for f0 := 1; f0 <= 4; f0++ {
		for f1 := 1; f1 <= 4; f1++ {
			for i0 := f0; i0 <= f0+3; i0++ {
				for i1 := f1; i1 <= f1+3; i1++ {
					f := mustFold(t, []int{f0, f1}, []int{i0, i1}, ones(2), []int{0, 0}, ones(2))
					for d := 0; d < 2; d++ {
						center := f.CenterIndex(d)
						require.GreaterOrEqual(t, center, 0,
							"filter %v input %v dim %d", []int{f0, f1}, []int{i0, i1}, d)
						require.Less(t, center, f.FoldedFilterLen(d),
							"filter %v input %v dim %d", []int{f0, f1}, []int{i0, i1}, d)
					}
				}
			}
		}
	}
}

func TestFold_InputSpacerMask1D(t *testing.T) {
	f := fold1d(t, 3, 5)
	assert.Equal(t, []bool{true, true, true, true, true}, f.InputSpacerMask())
}

func TestFold_InputSpacerMask2D(t *testing.T) {
	f := mustFold(t, []int{2, 3}, []int{4, 5}, ones(2), []int{0, 0}, ones(2))
	mask := f.InputSpacerMask()

	// 5 blocks of 4 real cells, gaps of 1 filler, no trailing filler.
	want := []bool{
		true, true, true, true, false,
		true, true, true, true, false,
		true, true, true, true, false,
		true, true, true, true, false,
		true, true, true, true,
	}
	assert.Equal(t, want, mask)
}

// TestFold_SpacerMaskProperties checks the structural laws relating each
// spacer mask to the folded extents: mask length equals the folded length
// and the count of true cells equals the product of the raw sizes.
func TestFold_SpacerMaskProperties(t *testing.T) {
	configs := []struct {
		filterSize, inputSize []int
	}{
		{[]int{1}, []int{1}},
		{[]int{3}, []int{7}},
		{[]int{2, 3}, []int{4, 5}},
		{[]int{3, 3}, []int{5, 4}},
		{[]int{2, 2, 2}, []int{3, 4, 2}},
	}
	for _, cfg := range configs {
		ndim := len(cfg.filterSize)
		f := mustFold(t, cfg.filterSize, cfg.inputSize, ones(ndim), make([]int, ndim), ones(ndim))

		isMask := f.InputSpacerMask()
		assert.Len(t, isMask, f.FoldedInputLen(ndim-1), "input mask length, config %+v", cfg)
		assert.Equal(t, product(cfg.inputSize), countTrue(isMask), "input mask population, config %+v", cfg)

		fsMask := f.FilterSpacerMask()
		assert.Len(t, fsMask, f.FoldedFilterLen(ndim-1), "filter mask length, config %+v", cfg)
		assert.Equal(t, product(cfg.filterSize), countTrue(fsMask), "filter mask population, config %+v", cfg)
	}
}

func TestFold_UnfoldFilter1D(t *testing.T) {
	f := fold1d(t, 3, 5)
	filter, err := tensor.NewDense(tensor.Shape{3}, []float64{1, 2, 3})
	require.NoError(t, err)

	values, center, err := f.UnfoldFilter(filter)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values)
	assert.Equal(t, 1, center)
}

func TestFold_UnfoldFilter2D(t *testing.T) {
	f := mustFold(t, []int{2, 3}, []int{4, 5}, ones(2), []int{0, 0}, ones(2))

	// Filter array axes are outermost first: shape {3, 2}.
	filter, err := tensor.NewDense(tensor.Shape{3, 2}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	values, center, err := f.UnfoldFilter(filter)
	require.NoError(t, err)

	// Rows of 2 weights separated by inputSize[0]-1 = 3 zeros, truncated
	// after the last weight.
	want := []float64{1, 2, 0, 0, 0, 3, 4, 0, 0, 0, 5, 6}
	assert.Equal(t, want, values)

	// The scaffold-derived center must agree with the recursive folder.
	assert.Equal(t, f.CenterIndex(1), center)
	assert.Equal(t, 6, center)

	// Nonzero layout matches the filter spacer mask.
	fsMask := f.FilterSpacerMask()
	require.Len(t, values, len(fsMask))
	for i, isReal := range fsMask {
		if !isReal {
			assert.Zerof(t, values[i], "filler position %d", i)
		}
	}
}

func TestFold_UnfoldFilterShapeMismatch(t *testing.T) {
	f := fold1d(t, 3, 5)
	filter, err := tensor.NewDense(tensor.Shape{4}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	_, _, err = f.UnfoldFilter(filter)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

// TestFold_Idempotence verifies repeated calls yield identical results:
// there is no hidden mutable state.
func TestFold_Idempotence(t *testing.T) {
	f := mustFold(t, []int{2, 3}, []int{4, 5}, ones(2), []int{0, 0}, ones(2))
	filter, err := tensor.NewDense(tensor.Shape{3, 2}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.Equal(t, f.InputSpacerMask(), f.InputSpacerMask())
	assert.Equal(t, f.ValidityMask(), f.ValidityMask())

	v1, c1, err := f.UnfoldFilter(filter)
	require.NoError(t, err)
	v2, c2, err := f.UnfoldFilter(filter)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, c1, c2)
}

func TestFold_ValidityMask1D(t *testing.T) {
	f := fold1d(t, 3, 5)
	// Center 1: taps 0 and 4 clip the window without padding.
	assert.Equal(t, []bool{false, true, true, true, false}, f.ValidityMask())
}

// TestFold_ValidityMaskCombination checks the mask combination law: the
// combined mask equals the AND of per-dimension tap validity over the
// Cartesian product of output positions, dimension 0 fastest.
func TestFold_ValidityMaskCombination(t *testing.T) {
	filterSize := []int{2, 3}
	inputSize := []int{4, 5}
	stride := []int{1, 1}
	padding := []int{0, 0}
	f := mustFold(t, filterSize, inputSize, stride, padding, ones(2))

	got := f.ValidityMask()
	require.Len(t, got, product(inputSize))

	inner := axismask.Valid(inputSize[0], filterSize[0], stride[0], padding[0])
	outer := axismask.Valid(inputSize[1], filterSize[1], stride[1], padding[1])
	for t1 := 0; t1 < inputSize[1]; t1++ {
		for t0 := 0; t0 < inputSize[0]; t0++ {
			want := inner[t0] && outer[t1]
			assert.Equalf(t, want, got[t1*inputSize[0]+t0], "tap (%d,%d)", t0, t1)
		}
	}
}

// TestFold_DilationStoredNotApplied pins the current behavior: dilation is
// accepted but does not change any folded structure.
func TestFold_DilationStoredNotApplied(t *testing.T) {
	a := mustFold(t, []int{3, 2}, []int{5, 4}, ones(2), []int{1, 0}, []int{1, 1})
	b := mustFold(t, []int{3, 2}, []int{5, 4}, ones(2), []int{1, 0}, []int{3, 2})

	assert.Equal(t, a.InputSpacerMask(), b.InputSpacerMask())
	assert.Equal(t, a.FilterSpacerMask(), b.FilterSpacerMask())
	assert.Equal(t, a.ValidityMask(), b.ValidityMask())
	assert.Equal(t, a.CenterIndex(1), b.CenterIndex(1))
}

func product(s []int) int {
	p := 1
	for _, v := range s {
		p *= v
	}
	return p
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
