// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package plotcmd implements a command to plot
// the density of a fitted distribution.
package plotcmd

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/distfit/dist"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `plot [-o|--output <file>]
	<pairs-file>...`,
	Short: "plot the density of a fitted distribution",
	Long: `
Command plot reads one or more pairs files, as produced by the fit and mle
commands, and draws their density curves on a single plot.

One or more pairs files can be given as arguments. The output is an image
file; the default name is the name of the first pairs file with a ".png"
extension. Use the flag --output, or -o, to set a different name. The format
of the image is inferred from the extension of the output file, for example
".png" or ".svg".
	`,
	SetFlags: setFlags,
	Run:      run,
}

var palette = []color.RGBA{
	{0, 84, 147, 255},
	{202, 80, 57, 255},
	{127, 188, 165, 255},
	{230, 159, 0, 255},
}

var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		c.UsageError("expecting pairs file")
	}
	if output == "" {
		output = strings.TrimSuffix(args[0], ".tab") + ".png"
	}

	p := plot.New()
	p.X.Label.Text = "x"
	p.Y.Label.Text = "density"

	for i, a := range args {
		pairs, err := readPairs(a)
		if err != nil {
			return err
		}
		l, err := plotter.NewLine(pairsXY(pairs))
		if err != nil {
			return err
		}
		l.Color = palette[i%len(palette)]
		p.Add(l)
		if len(args) > 1 {
			p.Legend.Add(a, l)
		}
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, output); err != nil {
		return err
	}
	return nil
}

func readPairs(name string) ([]dist.Pair, error) {
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

func pairsXY(pairs []dist.Pair) plotter.XYs {
	xy := make(plotter.XYs, len(pairs))
	for i, p := range pairs {
		xy[i].X = p.X
		xy[i].Y = p.Density
	}
	return xy
}
