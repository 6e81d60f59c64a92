// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package condition

import (
	"fmt"
	"slices"

	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// HistogramShape is the condition
// that the density function of the distribution
// looks like a target density,
// given as an ordered set of (value, density) pairs.
type HistogramShape struct {
	pairs  []dist.Pair
	weight float64
}

// NewHistogramShape returns the condition
// that the density at each pair value
// is close to the pair density.
func NewHistogramShape(pairs []dist.Pair, weight float64) (HistogramShape, error) {
	if len(pairs) == 0 {
		return HistogramShape{}, fmt.Errorf("%w: histogram shape without pairs", ErrBadCondition)
	}
	if err := checkWeight(weight); err != nil {
		return HistogramShape{}, err
	}
	ps := make([]dist.Pair, len(pairs))
	copy(ps, pairs)
	slices.SortFunc(ps, func(a, b dist.Pair) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})
	return HistogramShape{pairs: ps, weight: weight}, nil
}

// Loss returns the weighted mean
// of the squared differences
// between the candidate density
// and the target density at each pair.
func (c HistogramShape) Loss(d dist.Dist) float64 {
	total := 0.0
	for _, p := range c.pairs {
		diff := d.Prob(p.X) - p.Density
		total += diff * diff
	}
	return c.weight * total / float64(len(c.pairs))
}

// Validate returns an error
// if the condition cannot be evaluated on the candidate.
func (c HistogramShape) Validate(d dist.Dist) error { return nil }

// Weight returns the weight of the condition.
func (c HistogramShape) Weight() float64 { return c.weight }

// Normalize returns the condition
// with its pairs on the normalized [0,1] domain.
func (c HistogramShape) Normalize(s scale.Scale) Condition {
	ps := make([]dist.Pair, len(c.pairs))
	for i, p := range c.pairs {
		u := s.NormalizePoint(p.X)
		ps[i] = dist.Pair{X: u, Density: s.NormalizeDensity(u, p.Density)}
	}
	return HistogramShape{pairs: ps, weight: c.weight}
}

// Denormalize returns the condition
// with its pairs on the true domain of the scale.
func (c HistogramShape) Denormalize(s scale.Scale) Condition {
	ps := make([]dist.Pair, len(c.pairs))
	for i, p := range c.pairs {
		ps[i] = dist.Pair{X: s.DenormalizePoint(p.X), Density: s.DenormalizeDensity(p.X, p.Density)}
	}
	return HistogramShape{pairs: ps, weight: c.weight}
}

// Destructure returns the static token
// and the numeric state of the condition:
// the value and density of each pair
// followed by the weight.
func (c HistogramShape) Destructure() (Token, []float64) {
	num := make([]float64, 0, 2*len(c.pairs)+1)
	for _, p := range c.pairs {
		num = append(num, p.X, p.Density)
	}
	num = append(num, c.weight)
	return Token{Kind: KindHistogramShape, N: len(c.pairs)}, num
}

// DescribeFit reports the candidate density
// at the first pair value.
func (c HistogramShape) DescribeFit(d dist.Dist) Report {
	return Report{Loss: c.Loss(d), Actual: d.Prob(c.pairs[0].X)}
}

// String output in a human readable form.
func (c HistogramShape) String() string {
	return fmt.Sprintf("the density function looks like the given density at %d points", len(c.pairs))
}

func structureHistogramShape(tok Token, num []float64) (Condition, error) {
	if len(num) != 2*tok.N+1 {
		return nil, fmt.Errorf("%w: histogram shape of %d pairs: got %d values", ErrBadCondition, tok.N, len(num))
	}
	ps := make([]dist.Pair, tok.N)
	for i := 0; i < tok.N; i++ {
		ps[i] = dist.Pair{X: num[2*i], Density: num[2*i+1]}
	}
	c, err := NewHistogramShape(ps, num[2*tok.N])
	if err != nil {
		return nil, err
	}
	return c, nil
}
