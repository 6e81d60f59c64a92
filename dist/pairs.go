// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A Pair is a point of a density function,
// the interchange format
// used to submit or display a distribution.
type Pair struct {
	X       float64
	Density float64
}

// A Pairser is a distribution
// that can export itself
// as a sequence of (value, density) pairs.
type Pairser interface {
	Dist
	ToPairs() []Pair
}

var pairsHeader = []string{
	"x",
	"density",
}

// ReadPairs reads a sequence of density pairs
// from a TSV file.
//
// The TSV must contain the following fields:
//
//   - x, the value on the true domain
//   - density, the probability density at x
//
// Here is an example file:
//
//	# fitted density
//	x	density
//	0.25	0.125
//	0.75	1.875
func ReadPairs(r io.Reader) ([]Pair, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range pairsHeader {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	var pairs []Pair
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "x"
		x, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
		}

		f = "density"
		d, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("on row %d, field %q: negative density %.6g", ln, f, d)
		}
		pairs = append(pairs, Pair{X: x, Density: d})
	}
	return pairs, nil
}

// WritePairs writes a sequence of density pairs
// into a TSV file.
func WritePairs(w io.Writer, pairs []Pair) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(pairsHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, p := range pairs {
		row := []string{
			strconv.FormatFloat(p.X, 'g', 10, 64),
			strconv.FormatFloat(p.Density, 'g', 10, 64),
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}
	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
