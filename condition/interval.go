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

// Interval is the condition
// that the distribution assigns a given probability
// to a value interval.
// An infinite bound is an open side of the interval.
type Interval struct {
	p        float64
	min, max float64
	weight   float64
}

// NewInterval returns the condition
// that the probability of [min, max] is p.
// Use -Inf or +Inf for an open bound.
func NewInterval(p, min, max, weight float64) (Interval, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return Interval{}, fmt.Errorf("%w: probability %.6g outside [0,1]", ErrBadCondition, p)
	}
	if max <= min {
		return Interval{}, fmt.Errorf("%w: max %.6g is not greater than min %.6g", ErrBadCondition, max, min)
	}
	if err := checkWeight(weight); err != nil {
		return Interval{}, err
	}
	return Interval{p: p, min: min, max: max, weight: weight}, nil
}

// mass returns the probability
// that the candidate assigns to the interval.
func (c Interval) mass(d dist.Dist) float64 {
	cMin := 0.0
	if !math.IsInf(c.min, -1) {
		cMin = d.CDF(c.min)
	}
	cMax := 1.0
	if !math.IsInf(c.max, 1) {
		cMax = d.CDF(c.max)
	}
	return cMax - cMin
}

// Loss returns the weighted squared difference
// between the probability mass of the interval
// and the target probability.
func (c Interval) Loss(d dist.Dist) float64 {
	diff := c.mass(d) - c.p
	return c.weight * diff * diff
}

// Validate returns an error
// if the condition cannot be evaluated on the candidate.
func (c Interval) Validate(d dist.Dist) error { return nil }

// Weight returns the weight of the condition.
func (c Interval) Weight() float64 { return c.weight }

// mapBound rescales an interval bound,
// preserving open (infinite) bounds.
func mapBound(v float64, fn func(float64) float64) float64 {
	if math.IsInf(v, 0) {
		return v
	}
	return fn(v)
}

// Normalize returns the condition
// with its bounds on the normalized [0,1] domain.
func (c Interval) Normalize(s scale.Scale) Condition {
	return Interval{
		p:      c.p,
		min:    mapBound(c.min, s.NormalizePoint),
		max:    mapBound(c.max, s.NormalizePoint),
		weight: c.weight,
	}
}

// Denormalize returns the condition
// with its bounds on the true domain of the scale.
func (c Interval) Denormalize(s scale.Scale) Condition {
	return Interval{
		p:      c.p,
		min:    mapBound(c.min, s.DenormalizePoint),
		max:    mapBound(c.max, s.DenormalizePoint),
		weight: c.weight,
	}
}

// Destructure returns the static token
// and the numeric state of the condition.
func (c Interval) Destructure() (Token, []float64) {
	return Token{Kind: KindInterval}, []float64{c.p, c.min, c.max, c.weight}
}

// DescribeFit reports the probability mass
// that the candidate assigns to the interval.
func (c Interval) DescribeFit(d dist.Dist) Report {
	return Report{Loss: c.Loss(d), Actual: c.mass(d)}
}

// String output in a human readable form.
func (c Interval) String() string {
	return fmt.Sprintf("there is a %.0f%% chance that the value is in [%.6g, %.6g]", c.p*100, c.min, c.max)
}

func structureInterval(num []float64) (Condition, error) {
	if len(num) != 4 {
		return nil, fmt.Errorf("%w: interval: got %d values, want 4", ErrBadCondition, len(num))
	}
	c, err := NewInterval(num[0], num[1], num[2], num[3])
	if err != nil {
		return nil, err
	}
	return c, nil
}
