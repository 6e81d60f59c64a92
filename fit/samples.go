// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package fit

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// A samplesFamily is a family
// with a maximum likelihood fit from raw samples.
type samplesFamily interface {
	samplesOK()
}

func (mixtureFamily) samplesOK()   {}
func (truncatedFamily) samplesOK() {}

// FromSamples returns the distribution of a family
// that maximizes the likelihood
// of a finite sequence of samples,
// bypassing the condition machinery.
// It is used to summarize empirical draws
// into a parametric approximation.
//
// Only location-scale mixture families support it.
// It fails with ErrDiverged
// if the sample set degenerates.
func FromSamples(samples []float64, fam Family, p Params, opts *Options) (dist.Dist, error) {
	if _, ok := fam.(samplesFamily); !ok {
		return nil, fmt.Errorf("fit: %w: family %v cannot be fitted from samples", dist.ErrUnsupported, fam)
	}
	if err := checkParams(fam, p); err != nil {
		return nil, err
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("fit: %w: got %d samples, want at least 2", ErrDiverged, len(samples))
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("fit: %w: sample %d is %.6g", ErrDiverged, i, v)
		}
	}
	low := floats.Min(samples)
	high := floats.Max(samples)
	if high <= low || stat.Variance(samples, nil) == 0 {
		return nil, fmt.Errorf("fit: %w: samples without variance", ErrDiverged)
	}

	s, err := scale.New(low, high)
	if err != nil {
		return nil, err
	}
	ns := s.NormalizePoints(samples)
	np := fam.NormalizeParams(p, s)

	o := opts.fill(fam)
	nll := func(x []float64) float64 {
		d := fam.FromParams(np, x)
		total := 0.0
		for _, v := range ns {
			lp := d.LogProb(v)
			if math.IsNaN(lp) || math.IsInf(lp, 1) {
				return math.Inf(1)
			}
			total -= lp
		}
		return total
	}
	init := func(rng *rand.Rand) []float64 {
		return fam.InitParams(np, rng)
	}

	x, _, err := multiStart(nll, init, o)
	if err != nil {
		return nil, err
	}
	return fam.FromParams(np, x).Denormalize(s), nil
}

// LogisticFromSamples returns the logistic distribution
// that maximizes the likelihood
// of a finite sequence of samples.
func LogisticFromSamples(samples []float64, opts *Options) (dist.Logistic, error) {
	d, err := FromSamples(samples, LogisticMixture, Params{NumComponents: 1}, opts)
	if err != nil {
		return dist.Logistic{}, err
	}
	m := d.(dist.Mixture)
	return m.Members()[0].(dist.Logistic), nil
}
