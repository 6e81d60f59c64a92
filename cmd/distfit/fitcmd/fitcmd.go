// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fitcmd implements a command to fit a distribution
// to a set of conditions.
package fitcmd

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/distfit/condfile"
	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/fit"
	"github.com/js-arias/distfit/scale"
)

var Command = &command.Command{
	Usage: `fit [--family <name>]
	[--comp <number>] [--bins <number>]
	[--floor <value>] [--ceiling <value>]
	--min <value> --max <value> [--base <value>]
	[--tries <number>] [--runs <number>] [--iter <number>]
	[--seed <value>]
	[-o|--output <file>]
	<conditions-file>`,
	Short: "fit a distribution to a set of conditions",
	Long: `
Command fit reads a conditions file and searches for the distribution of the
indicated family that is the closest match to all the conditions at the same
time.

The argument of the command is the name of the conditions file, a tab
delimited file with the following columns:

	condition   the kind of the condition
	parameters  the parameters of the condition, separated by commas
	weight      an optional weight, by default 1

The implemented conditions are:

	percentile   "<p>,<value>": the value at cumulative probability p
	interval     "<p>,<min>,<max>": probability mass p between min and
	             max; min and max can be "-inf" or "inf"
	mean         "<value>": the expectation of the distribution
	shape        "<pairs-file>": match the density values of the file
	cross-entropy "<pairs-file>": minimize the cross-entropy against the
	             distribution defined by the file
	max-entropy  "": prefer the least informative distribution

The domain of the fit is defined with the required flags --min and --max. By
default the domain scale is linear; to fit over a logarithmic scale use the
flag --base with the base of the logarithm.

The flag --family indicates the family of the fitted distribution. Valid
family names are:

	logistic      a mixture of logistic distributions (the default)
	normal        a mixture of normal distributions
	truncated     a mixture of logistics truncated to a sub-domain
	histogram     a histogram with uniform bins
	pointdensity  a free form density over a uniform grid

The flag --comp indicates the number of mixture components, by default 3.
The flag --bins indicates the number of histogram bins, by default 100. For
the truncated family, the flags --floor and --ceiling define the truncation
bounds; by default the bounds of the domain.

Mixture fits start from multiple random initializations. The flag --tries
sets the number of initializations, the flag --runs the number of optimizer
runs per initialization, and the flag --iter the iteration cap of a single
run; by default the family defaults will be used. The flag --seed sets the
random seed, so results are reproducible.

The fitted distribution is stored as a pairs file, a tab delimited file with
the density at each point of the grid. The default output file name is
"fit.tab"; use the flag --output, or -o, to set a different name. A
diagnostic of each condition is printed to the standard output.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var familyFlag string
var numComp int
var numBins int
var minFlag float64
var maxFlag float64
var baseFlag float64
var floorFlag float64
var ceilingFlag float64
var numTries int
var numRuns int
var numIter int
var seed uint64
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&familyFlag, "family", "logistic", "")
	c.Flags().IntVar(&numComp, "comp", 3, "")
	c.Flags().IntVar(&numBins, "bins", 100, "")
	c.Flags().Float64Var(&minFlag, "min", math.NaN(), "")
	c.Flags().Float64Var(&maxFlag, "max", math.NaN(), "")
	c.Flags().Float64Var(&baseFlag, "base", 0, "")
	c.Flags().Float64Var(&floorFlag, "floor", math.NaN(), "")
	c.Flags().Float64Var(&ceilingFlag, "ceiling", math.NaN(), "")
	c.Flags().IntVar(&numTries, "tries", 0, "")
	c.Flags().IntVar(&numRuns, "runs", 0, "")
	c.Flags().IntVar(&numIter, "iter", 0, "")
	c.Flags().Uint64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&output, "output", "fit.tab", "")
	c.Flags().StringVar(&output, "o", "fit.tab", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		c.UsageError("expecting conditions file")
	}
	if math.IsNaN(minFlag) || math.IsNaN(maxFlag) {
		c.UsageError("flags --min and --max must be defined")
	}

	sc, err := newScale()
	if err != nil {
		return err
	}
	fam, p, err := newFamily(sc)
	if err != nil {
		return err
	}

	conds, err := condfile.Read(args[0], sc)
	if err != nil {
		return err
	}
	if len(conds) == 0 {
		return fmt.Errorf("on file %q: no conditions defined", args[0])
	}

	opts := &fit.Options{
		InitTries: numTries,
		OptTries:  numRuns,
		MaxIter:   numIter,
		Seed:      seed,
	}
	d, err := fit.Fit(conds, fam, p, sc, opts)
	if err != nil {
		return err
	}

	for _, cn := range conds {
		r := cn.DescribeFit(d)
		fmt.Fprintf(c.Stdout(), "%v: loss %.6g, actual %.6g\n", cn, r.Loss, r.Actual)
	}

	if err := writeDist(output, d, sc); err != nil {
		return err
	}
	return nil
}

func newScale() (scale.Scale, error) {
	if baseFlag > 1 {
		s, err := scale.NewLog(minFlag, maxFlag, baseFlag)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := scale.New(minFlag, maxFlag)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newFamily(sc scale.Scale) (fit.Family, fit.Params, error) {
	var p fit.Params
	switch strings.ToLower(familyFlag) {
	case "logistic":
		p.NumComponents = numComp
		return fit.LogisticMixture, p, nil
	case "normal":
		p.NumComponents = numComp
		return fit.NormalMixture, p, nil
	case "truncated":
		p.NumComponents = numComp
		p.Floor = floorFlag
		p.Ceiling = ceilingFlag
		if math.IsNaN(p.Floor) {
			p.Floor = sc.Low()
		}
		if math.IsNaN(p.Ceiling) {
			p.Ceiling = sc.High()
		}
		return fit.TruncatedLogisticMixture, p, nil
	case "histogram":
		p.NumBins = numBins
		return fit.Histogram, p, nil
	case "pointdensity":
		return fit.PointDensity, p, nil
	}
	return nil, p, fmt.Errorf("unknown family %q", familyFlag)
}

// writeDist stores a fitted distribution as a pairs file.
// Grid distributions report their own pairs;
// any other distribution is evaluated
// over the standard grid of the domain.
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

	var pairs []dist.Pair
	if pd, ok := d.(dist.Pairser); ok {
		pairs = pd.ToPairs()
	} else {
		for _, u := range dist.Grid() {
			x := sc.DenormalizePoint(u)
			pairs = append(pairs, dist.Pair{X: x, Density: d.Prob(x)})
		}
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
