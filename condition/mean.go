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

// Mean is the condition
// that the distribution has a given expected value.
type Mean struct {
	mean   float64
	weight float64
}

// NewMean returns the condition
// that the expected value of the distribution is mean.
func NewMean(mean, weight float64) (Mean, error) {
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return Mean{}, fmt.Errorf("%w: mean %.6g is not finite", ErrBadCondition, mean)
	}
	if err := checkWeight(weight); err != nil {
		return Mean{}, err
	}
	return Mean{mean: mean, weight: weight}, nil
}

// Loss returns the weighted squared difference
// between the expected value of the candidate
// and the target mean.
func (c Mean) Loss(d dist.Dist) float64 {
	diff := d.Mean() - c.mean
	return c.weight * diff * diff
}

// Validate returns an error
// if the condition cannot be evaluated on the candidate.
func (c Mean) Validate(d dist.Dist) error { return nil }

// Weight returns the weight of the condition.
func (c Mean) Weight() float64 { return c.weight }

// Normalize returns the condition
// with its mean on the normalized [0,1] domain.
func (c Mean) Normalize(s scale.Scale) Condition {
	return Mean{mean: s.NormalizePoint(c.mean), weight: c.weight}
}

// Denormalize returns the condition
// with its mean on the true domain of the scale.
func (c Mean) Denormalize(s scale.Scale) Condition {
	return Mean{mean: s.DenormalizePoint(c.mean), weight: c.weight}
}

// Destructure returns the static token
// and the numeric state of the condition.
func (c Mean) Destructure() (Token, []float64) {
	return Token{Kind: KindMean}, []float64{c.mean, c.weight}
}

// DescribeFit reports the expected value of the candidate.
func (c Mean) DescribeFit(d dist.Dist) Report {
	return Report{Loss: c.Loss(d), Actual: d.Mean()}
}

// String output in a human readable form.
func (c Mean) String() string {
	return fmt.Sprintf("the mean is %.6g", c.mean)
}

func structureMean(num []float64) (Condition, error) {
	if len(num) != 2 {
		return nil, fmt.Errorf("%w: mean: got %d values, want 2", ErrBadCondition, len(num))
	}
	c, err := NewMean(num[0], num[1])
	if err != nil {
		return nil, err
	}
	return c, nil
}
