// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package condition

import (
	"fmt"

	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// CrossEntropy is the condition
// that the distribution is close
// to a reference point density distribution,
// penalizing the cross-entropy
// between the reference and the candidate.
type CrossEntropy struct {
	ref    dist.PointDensity
	weight float64
}

// NewCrossEntropy returns the condition
// that the candidate is close
// to the reference distribution.
func NewCrossEntropy(ref dist.PointDensity, weight float64) (CrossEntropy, error) {
	if err := checkWeight(weight); err != nil {
		return CrossEntropy{}, err
	}
	return CrossEntropy{ref: ref, weight: weight}, nil
}

// Ref returns the reference distribution.
func (c CrossEntropy) Ref() dist.PointDensity { return c.ref }

// Loss returns the weighted cross-entropy
// between the reference and the candidate.
// Both must be defined over the same bins.
func (c CrossEntropy) Loss(d dist.Dist) float64 {
	b := d.(dist.Binned)
	return c.weight * c.ref.CrossEntropy(b)
}

// Validate returns an error
// if the candidate is not a binned distribution
// over the same bins as the reference.
func (c CrossEntropy) Validate(d dist.Dist) error {
	b, ok := d.(dist.Binned)
	if !ok {
		return fmt.Errorf("%w: cross-entropy over a %T candidate", dist.ErrUnsupported, d)
	}
	if len(b.BinProbs()) != len(c.ref.BinProbs()) {
		return fmt.Errorf("%w: cross-entropy: candidate with %d bins, reference with %d", ErrBadCondition, len(b.BinProbs()), len(c.ref.BinProbs()))
	}
	return nil
}

// Weight returns the weight of the condition.
func (c CrossEntropy) Weight() float64 { return c.weight }

// Normalize returns the condition
// with its reference on the normalized [0,1] domain.
func (c CrossEntropy) Normalize(s scale.Scale) Condition {
	return CrossEntropy{ref: c.ref.Normalize(s).(dist.PointDensity), weight: c.weight}
}

// Denormalize returns the condition
// with its reference on the true domain of the scale.
func (c CrossEntropy) Denormalize(s scale.Scale) Condition {
	return CrossEntropy{ref: c.ref.Denormalize(s).(dist.PointDensity), weight: c.weight}
}

// Destructure returns the static token
// and the numeric state of the condition:
// the numeric state of the reference distribution
// followed by the weight.
func (c CrossEntropy) Destructure() (Token, []float64) {
	rTok, rNum := c.ref.Destructure()
	num := make([]float64, 0, len(rNum)+1)
	num = append(num, rNum...)
	num = append(num, c.weight)
	return Token{Kind: KindCrossEntropy, N: rTok.N, Scale: rTok.Scale}, num
}

// DescribeFit reports the cross-entropy
// between the reference and the candidate.
func (c CrossEntropy) DescribeFit(d dist.Dist) Report {
	return Report{Loss: c.Loss(d), Actual: c.ref.CrossEntropy(d.(dist.Binned))}
}

// String output in a human readable form.
func (c CrossEntropy) String() string {
	return fmt.Sprintf("the distribution is close to the reference %v", c.ref)
}

func structureCrossEntropy(tok Token, num []float64) (Condition, error) {
	if len(num) < tok.N+1 {
		return nil, fmt.Errorf("%w: cross-entropy: got %d values", ErrBadCondition, len(num))
	}
	rd, err := dist.Structure(dist.Token{Kind: dist.KindPointDensity, N: tok.N, Scale: tok.Scale}, num[:len(num)-1])
	if err != nil {
		return nil, err
	}
	c, err := NewCrossEntropy(rd.(dist.PointDensity), num[len(num)-1])
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MaxEntropy is the condition
// that the distribution is as flat as possible,
// penalizing the negative entropy of the candidate.
type MaxEntropy struct {
	weight float64
}

// NewMaxEntropy returns the condition
// that the candidate has maximum entropy.
func NewMaxEntropy(weight float64) (MaxEntropy, error) {
	if err := checkWeight(weight); err != nil {
		return MaxEntropy{}, err
	}
	return MaxEntropy{weight: weight}, nil
}

// Loss returns the weighted negative entropy of the candidate.
func (c MaxEntropy) Loss(d dist.Dist) float64 {
	b := d.(dist.Binned)
	return -c.weight * b.Entropy()
}

// Validate returns an error
// if the candidate is not a binned distribution.
func (c MaxEntropy) Validate(d dist.Dist) error {
	if _, ok := d.(dist.Binned); !ok {
		return fmt.Errorf("%w: entropy of a %T candidate", dist.ErrUnsupported, d)
	}
	return nil
}

// Weight returns the weight of the condition.
func (c MaxEntropy) Weight() float64 { return c.weight }

// Normalize returns the condition itself:
// it has no values to rescale.
func (c MaxEntropy) Normalize(s scale.Scale) Condition { return c }

// Denormalize returns the condition itself:
// it has no values to rescale.
func (c MaxEntropy) Denormalize(s scale.Scale) Condition { return c }

// Destructure returns the static token
// and the numeric state of the condition.
func (c MaxEntropy) Destructure() (Token, []float64) {
	return Token{Kind: KindMaxEntropy}, []float64{c.weight}
}

// DescribeFit reports the entropy of the candidate.
func (c MaxEntropy) DescribeFit(d dist.Dist) Report {
	return Report{Loss: c.Loss(d), Actual: d.(dist.Binned).Entropy()}
}

// String output in a human readable form.
func (c MaxEntropy) String() string {
	return "the distribution is as flat as possible"
}

func structureMaxEntropy(num []float64) (Condition, error) {
	if len(num) != 1 {
		return nil, fmt.Errorf("%w: max-entropy: got %d values, want 1", ErrBadCondition, len(num))
	}
	c, err := NewMaxEntropy(num[0])
	if err != nil {
		return nil, err
	}
	return c, nil
}
