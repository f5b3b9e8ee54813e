// Package main provides the FoldConv convolution correctness harness CLI.
//
// It sweeps the Cartesian product of the requested strides, dilations,
// paddings and filters over a random integer input, evaluates every
// combination with both the folded-matrix method and the direct
// sliding-window oracle, and reports agreement per configuration.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/foldconv-ml/foldconv/internal/sweep"
)

func main() {
	inputSize := flag.Int("input-size", 50, "size of the input array for the convolution")
	strides := flag.String("strides", "1", "comma-separated strides to sweep")
	dilations := flag.String("dilations", "1", "comma-separated dilations to sweep")
	paddings := flag.String("paddings", "0", "comma-separated paddings to sweep")
	filters := flag.String("filters", "1,2,3", "filters to sweep: comma-separated values, multiple filters separated by semicolons")
	maxInputVal := flag.Int("max-input-val", 100, "maximum value in input cells")
	seed := flag.Int64("seed", 1, "random seed for the input")
	asJSON := flag.Bool("json", false, "emit the report as JSON instead of a TSV table")
	flag.Parse()

	cfg := sweep.Config{
		InputSize:   *inputSize,
		MaxInputVal: *maxInputVal,
		Seed:        *seed,
	}

	var err error
	if cfg.Strides, err = parseIntList(*strides); err != nil {
		fatalf("invalid --strides: %v", err)
	}
	if cfg.Dilations, err = parseIntList(*dilations); err != nil {
		fatalf("invalid --dilations: %v", err)
	}
	if cfg.Paddings, err = parseIntList(*paddings); err != nil {
		fatalf("invalid --paddings: %v", err)
	}
	if cfg.Filters, err = parseFilters(*filters); err != nil {
		fatalf("invalid --filters: %v", err)
	}

	report, err := sweep.Run(cfg)
	if err != nil {
		fatalf("%v", err)
	}

	if *asJSON {
		err = report.WriteJSON(os.Stdout)
	} else {
		err = report.WriteTSV(os.Stdout)
	}
	if err != nil {
		fatalf("write report: %v", err)
	}

	if !report.AllMatch() {
		os.Exit(1)
	}
}

// parseIntList parses "1,2,3" into []int{1, 2, 3}.
func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseFilters parses "1,2,3;2,4" into two filters.
func parseFilters(s string) ([][]float64, error) {
	var out [][]float64
	for _, group := range strings.Split(s, ";") {
		parts := strings.Split(group, ",")
		vals := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		out = append(out, vals)
	}
	return out, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "foldconv: "+format+"\n", args...)
	os.Exit(1)
}
