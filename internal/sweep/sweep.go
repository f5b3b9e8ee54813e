// Package sweep drives the convolution correctness harness: it evaluates a
// combinatorial sweep of stride/dilation/padding/filter configurations with
// both the folded-matrix method and the direct sliding-window oracle, and
// checks that the two agree at every valid output position.
package sweep

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/foldconv-ml/foldconv/internal/conv"
	"github.com/foldconv-ml/foldconv/tensor"
)

// DefaultTolerance is the absolute tolerance for comparing the two methods.
// Sweep inputs are small integers, so agreement is expected to be exact up
// to float64 accumulation order.
const DefaultTolerance = 1e-9

// Config describes a 1-D sweep: a single random integer input convolved
// under the Cartesian product of the parameter lists.
type Config struct {
	InputSize   int
	MaxInputVal int
	Seed        int64
	Strides     []int
	Dilations   []int
	Paddings    []int
	Filters     [][]float64
	Tolerance   float64
}

// Result is the outcome of one configuration in the sweep.
type Result struct {
	Filter      []float64 `json:"filter"`
	Stride      int       `json:"stride"`
	Dilation    int       `json:"dilation"`
	Padding     int       `json:"padding"`
	PaddingType string    `json:"padding_type"`
	Match       bool      `json:"match"`
	ValidCount  int       `json:"valid_count"`
	Skipped     bool      `json:"skipped,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// Report collects the sweep's input and per-configuration results.
type Report struct {
	Input   []float64 `json:"input"`
	Results []Result  `json:"results"`
}

// Run evaluates the full Cartesian product of the configured parameter
// lists. Invalid combinations are recorded as skipped and the sweep
// continues; an error is returned only for an unusable Config itself.
func Run(cfg Config) (*Report, error) {
	if cfg.InputSize < 1 {
		return nil, fmt.Errorf("sweep: input size %d (must be >= 1)", cfg.InputSize)
	}
	if cfg.MaxInputVal < 2 {
		return nil, fmt.Errorf("sweep: max input value %d (must be >= 2)", cfg.MaxInputVal)
	}
	if len(cfg.Strides) == 0 || len(cfg.Dilations) == 0 || len(cfg.Paddings) == 0 || len(cfg.Filters) == 0 {
		return nil, errors.New("sweep: empty parameter list")
	}
	tol := cfg.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	inputData := make([]float64, cfg.InputSize)
	for i := range inputData {
		inputData[i] = float64(1 + rng.Intn(cfg.MaxInputVal-1))
	}
	input, err := tensor.NewDense(tensor.Shape{cfg.InputSize}, inputData)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	report := &Report{Input: inputData}
	for _, filterVals := range cfg.Filters {
		for _, stride := range cfg.Strides {
			for _, dilation := range cfg.Dilations {
				for _, padding := range cfg.Paddings {
					report.Results = append(report.Results,
						runOne(input, filterVals, stride, dilation, padding, tol))
				}
			}
		}
	}
	return report, nil
}

func runOne(input *tensor.Dense, filterVals []float64, stride, dilation, padding int, tol float64) Result {
	res := Result{
		Filter:   filterVals,
		Stride:   stride,
		Dilation: dilation,
		Padding:  padding,
	}

	skip := func(err error) Result {
		res.Skipped = true
		res.Reason = err.Error()
		return res
	}

	filter, err := tensor.NewDense(tensor.Shape{len(filterVals)}, filterVals)
	if err != nil {
		return skip(err)
	}
	spec, err := conv.NewSpec(filter, []int{stride}, []int{padding}, []int{dilation})
	if err != nil {
		return skip(err)
	}
	res.PaddingType = spec.PaddingType()

	matrix, err := spec.Matrix(input)
	if err != nil {
		return skip(err)
	}
	direct, err := spec.Direct(input)
	if err != nil {
		return skip(err)
	}

	// Only structurally valid positions are comparable; invalid folded rows
	// may alias across block boundaries.
	mv, dv := matrix.ValidValues(), direct.ValidValues()
	res.ValidCount = len(mv)
	res.Match = len(mv) == len(dv)
	if res.Match {
		for i := range mv {
			if math.Abs(mv[i]-dv[i]) > tol {
				res.Match = false
				break
			}
		}
	}
	return res
}

// WriteTSV renders the report as a tab-separated table, one configuration
// per row.
func (r *Report) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, strings.Join([]string{
		"FILT", "ILEN", "STRIDE", "DIL", "PAD", "TYPE", "VALID", "MATCH",
	}, "\t")); err != nil {
		return err
	}
	for _, res := range r.Results {
		status := strconv.FormatBool(res.Match)
		if res.Skipped {
			status = "skipped: " + res.Reason
		}
		row := strings.Join([]string{
			formatFilter(res.Filter),
			strconv.Itoa(len(r.Input)),
			strconv.Itoa(res.Stride),
			strconv.Itoa(res.Dilation),
			strconv.Itoa(res.Padding),
			res.PaddingType,
			strconv.Itoa(res.ValidCount),
			status,
		}, "\t")
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// AllMatch reports whether every non-skipped configuration agreed.
func (r *Report) AllMatch() bool {
	for _, res := range r.Results {
		if !res.Skipped && !res.Match {
			return false
		}
	}
	return true
}

// Skipped returns the skipped configurations.
func (r *Report) Skipped() []Result {
	var skipped []Result
	for _, res := range r.Results {
		if res.Skipped {
			skipped = append(skipped, res)
		}
	}
	return skipped
}

func formatFilter(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
