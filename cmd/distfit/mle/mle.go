// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mle implements a command to fit a distribution
// to a sample by maximum likelihood.
package mle

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/fit"
	"github.com/js-arias/distfit/scale"
)

var Command = &command.Command{
	Usage: `mle [--family <name>] [--comp <number>]
	[--tries <number>] [--runs <number>] [--iter <number>]
	[--seed <value>]
	[-o|--output <file>]
	<samples-file>`,
	Short: "fit a distribution to a sample",
	Long: `
Command mle reads a sample and fits a distribution of the indicated family by
maximizing the likelihood of the sample.

The argument of the command is the name of the samples file, a tab delimited
file with a column called "sample" with one value per row.

The flag --family indicates the family of the fitted distribution, either
"logistic" (the default) or "normal". The flag --comp indicates the number of
mixture components, by default 1. With a single component the location and
scale of the fitted distribution are printed to the standard output.

The flag --tries sets the number of random initializations, the flag --runs
the number of optimizer runs per initialization, and the flag --iter the
iteration cap of a single run; by default the family defaults will be used.
The flag --seed sets the random seed.

The fitted distribution is stored as a pairs file with the density over the
range of the sample. The default output file name is "mle.tab"; use the flag
--output, or -o, to set a different name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var familyFlag string
var numComp int
var numTries int
var numRuns int
var numIter int
var seed uint64
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&familyFlag, "family", "logistic", "")
	c.Flags().IntVar(&numComp, "comp", 1, "")
	c.Flags().IntVar(&numTries, "tries", 0, "")
	c.Flags().IntVar(&numRuns, "runs", 0, "")
	c.Flags().IntVar(&numIter, "iter", 0, "")
	c.Flags().Uint64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&output, "output", "mle.tab", "")
	c.Flags().StringVar(&output, "o", "mle.tab", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		c.UsageError("expecting samples file")
	}

	var fam fit.Family
	switch strings.ToLower(familyFlag) {
	case "logistic":
		fam = fit.LogisticMixture
	case "normal":
		fam = fit.NormalMixture
	default:
		return fmt.Errorf("unknown family %q", familyFlag)
	}

	samples, err := readSamples(args[0])
	if err != nil {
		return err
	}

	opts := &fit.Options{
		InitTries: numTries,
		OptTries:  numRuns,
		MaxIter:   numIter,
		Seed:      seed,
	}
	p := fit.Params{NumComponents: numComp}
	d, err := fit.FromSamples(samples, fam, p, opts)
	if err != nil {
		return err
	}

	if numComp == 1 {
		m := d.(dist.Mixture).Members()[0]
		loc, sc := m.Params()
		fmt.Fprintf(c.Stdout(), "%s: loc %.6g, scale %.6g\n", familyFlag, loc, sc)
	}

	min := slices.Min(samples)
	max := slices.Max(samples)
	sc, err := scale.New(min, max)
	if err != nil {
		return err
	}
	if err := writeDist(output, d, sc); err != nil {
		return err
	}
	return nil
}

func readSamples(name string) ([]float64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.Comment = '#'

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	col, ok := fields["sample"]
	if !ok {
		return nil, fmt.Errorf("on file %q: expecting field %q", name, "sample")
	}

	var samples []float64
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := r.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, "sample", err)
		}
		samples = append(samples, v)
	}
	return samples, nil
}

func writeDist(name string, d dist.Dist, sc scale.Scale) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	pairs := make([]dist.Pair, 0, dist.NumPoints)
	for _, u := range dist.Grid() {
		x := sc.DenormalizePoint(u)
		pairs = append(pairs, dist.Pair{X: x, Density: d.Prob(x)})
	}

	w := bufio.NewWriter(f)
	if err := dist.WritePairs(w, pairs); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
