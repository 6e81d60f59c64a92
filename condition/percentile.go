// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package condition

import (
	"fmt"
	"math"

	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// Percentile is the condition
// that a given percentile of the distribution
// falls at a given value.
type Percentile struct {
	p      float64
	value  float64
	weight float64
}

// NewPercentile returns the condition
// that the value is at the given percentile.
// The percentile must be in [0,1].
func NewPercentile(p, value, weight float64) (Percentile, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return Percentile{}, fmt.Errorf("%w: percentile %.6g outside [0,1]", ErrBadCondition, p)
	}
	if err := checkWeight(weight); err != nil {
		return Percentile{}, err
	}
	return Percentile{p: p, value: value, weight: weight}, nil
}

// Loss returns the weighted squared difference
// between the cumulative probability at the value
// and the target percentile.
func (c Percentile) Loss(d dist.Dist) float64 {
	diff := d.CDF(c.value) - c.p
	return c.weight * diff * diff
}

// Validate returns an error
// if the condition cannot be evaluated on the candidate.
func (c Percentile) Validate(d dist.Dist) error { return nil }

// Weight returns the weight of the condition.
func (c Percentile) Weight() float64 { return c.weight }

// Normalize returns the condition
// with its value on the normalized [0,1] domain.
func (c Percentile) Normalize(s scale.Scale) Condition {
	return Percentile{p: c.p, value: s.NormalizePoint(c.value), weight: c.weight}
}

// Denormalize returns the condition
// with its value on the true domain of the scale.
func (c Percentile) Denormalize(s scale.Scale) Condition {
	return Percentile{p: c.p, value: s.DenormalizePoint(c.value), weight: c.weight}
}

// Destructure returns the static token
// and the numeric state of the condition.
func (c Percentile) Destructure() (Token, []float64) {
	return Token{Kind: KindPercentile}, []float64{c.p, c.value, c.weight}
}

// DescribeFit reports the cumulative probability
// that the candidate assigns to the value.
func (c Percentile) DescribeFit(d dist.Dist) Report {
	return Report{Loss: c.Loss(d), Actual: d.CDF(c.value)}
}

// String output in a human readable form.
func (c Percentile) String() string {
	return fmt.Sprintf("there is a %.0f%% chance that the value is < %.6g", c.p*100, c.value)
}

func structurePercentile(num []float64) (Condition, error) {
	if len(num) != 3 {
		return nil, fmt.Errorf("%w: percentile: got %d values, want 3", ErrBadCondition, len(num))
	}
	c, err := NewPercentile(num[0], num[1], num[2])
	if err != nil {
		return nil, err
	}
	return c, nil
}
