// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package condfile implements reading
// of a set of fitting conditions
// from a TSV file.
package condfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/distfit/condition"
	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

var header = []string{
	"condition",
	"parameters",
}

// Read reads a set of conditions from a TSV file.
// The scale defines the true domain
// used for any reference density file.
//
// The TSV must contain the following fields:
//
//   - condition, the kind of the condition
//   - parameters, a comma separated list of values
//
// An optional weight field sets the condition weight
// (default 1).
//
// Valid conditions and their parameters are:
//
//   - percentile, with "<percentile>,<value>"
//   - interval, with "<probability>,<min>,<max>"
//     (use "-inf" or "inf" for an open bound)
//   - mean, with "<mean>"
//   - shape, with the name of a density pairs file
//   - cross-entropy, with the name of a density pairs file
//   - max-entropy, without parameters
//
// Here is an example file:
//
//	# fitting conditions
//	condition	parameters	weight
//	percentile	0.5,2.5	1
//	interval	0.8,1,4	1
//	max-entropy		0.01
func Read(name string, sc scale.Scale) ([]condition.Condition, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	var conds []condition.Condition
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		weight := 1.0
		if i, ok := fields["weight"]; ok && row[i] != "" {
			weight, err = strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, "weight", err)
			}
		}

		kind := strings.ToLower(row[fields["condition"]])
		param := row[fields["parameters"]]
		c, err := newCondition(kind, param, weight, sc)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func newCondition(kind, param string, weight float64, sc scale.Scale) (condition.Condition, error) {
	switch condition.Kind(kind) {
	case condition.KindPercentile:
		vs, err := numParams(param, 2)
		if err != nil {
			return nil, err
		}
		c, err := condition.NewPercentile(vs[0], vs[1], weight)
		if err != nil {
			return nil, err
		}
		return c, nil
	case condition.KindInterval:
		vs, err := numParams(param, 3)
		if err != nil {
			return nil, err
		}
		c, err := condition.NewInterval(vs[0], vs[1], vs[2], weight)
		if err != nil {
			return nil, err
		}
		return c, nil
	case condition.KindMean:
		vs, err := numParams(param, 1)
		if err != nil {
			return nil, err
		}
		c, err := condition.NewMean(vs[0], weight)
		if err != nil {
			return nil, err
		}
		return c, nil
	case condition.KindHistogramShape, "shape":
		pairs, err := readPairsFile(param)
		if err != nil {
			return nil, err
		}
		c, err := condition.NewHistogramShape(pairs, weight)
		if err != nil {
			return nil, err
		}
		return c, nil
	case condition.KindCrossEntropy:
		pairs, err := readPairsFile(param)
		if err != nil {
			return nil, err
		}
		ref, err := dist.PointDensityFromPairs(pairs, sc)
		if err != nil {
			return nil, err
		}
		c, err := condition.NewCrossEntropy(ref, weight)
		if err != nil {
			return nil, err
		}
		return c, nil
	case condition.KindMaxEntropy:
		c, err := condition.NewMaxEntropy(weight)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown condition %q", kind)
}

func numParams(param string, want int) ([]float64, error) {
	ps := strings.Split(param, ",")
	if len(ps) != want {
		return nil, fmt.Errorf("condition with %d parameters, want %d", len(ps), want)
	}
	vs := make([]float64, len(ps))
	for i, p := range ps {
		p = strings.ToLower(strings.TrimSpace(p))
		switch p {
		case "-inf":
			vs[i] = math.Inf(-1)
			continue
		case "inf", "+inf":
			vs[i] = math.Inf(1)
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %v", p, err)
		}
		vs[i] = v
	}
	return vs, nil
}

func readPairsFile(name string) ([]dist.Pair, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs, err := dist.ReadPairs(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return pairs, nil
}
