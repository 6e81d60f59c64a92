// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/js-arias/distfit/scale"
)

// scaleFloor is the smallest scale parameter
// accepted by a location-scale member,
// so that a member is never singular.
const scaleFloor = 1e-7

// A Member is a location-scale family distribution,
// usable as a mixture component.
type Member interface {
	Dist

	// Params returns the location and scale parameters.
	Params() (loc, scale float64)

	// With returns a member of the same family
	// with the given location and scale parameters.
	With(loc, scale float64) Member
}

// Logistic is a logistic distribution
// parametrized by location and scale.
type Logistic struct {
	loc   float64
	scale float64

	// Src is the source of randomness used for sampling.
	// If nil, the global random source will be used.
	Src rand.Source
}

// NewLogistic returns a logistic distribution.
// The scale parameter is clamped to a small positive floor.
func NewLogistic(loc, sc float64) Logistic {
	if sc < scaleFloor {
		sc = scaleFloor
	}
	return Logistic{loc: loc, scale: sc}
}

// Prob returns the probability density at x.
func (l Logistic) Prob(x float64) float64 {
	z := math.Abs((x - l.loc) / l.scale)
	e := math.Exp(-z)
	return e / (l.scale * (1 + e) * (1 + e))
}

// LogProb returns the log of the probability density at x.
func (l Logistic) LogProb(x float64) float64 {
	z := math.Abs((x - l.loc) / l.scale)
	return -z - 2*math.Log1p(math.Exp(-z)) - math.Log(l.scale)
}

// CDF returns the cumulative probability at x.
func (l Logistic) CDF(x float64) float64 {
	z := (x - l.loc) / l.scale
	return 1 / (1 + math.Exp(-z))
}

// Quantile returns the inverse of the CDF at probability p.
func (l Logistic) Quantile(p float64) float64 {
	if p < 0 || p > 1 {
		panic("dist: quantile out of range")
	}
	return l.loc + l.scale*math.Log(p/(1-p))
}

// Mean returns the expected value.
func (l Logistic) Mean() float64 { return l.loc }

// Rand returns a random sample
// drawn with inverse transform sampling.
func (l Logistic) Rand() (float64, error) {
	var u float64
	if l.Src == nil {
		u = rand.Float64()
	} else {
		u = rand.New(l.Src).Float64()
	}
	return l.Quantile(u), nil
}

// Params returns the location and scale parameters.
func (l Logistic) Params() (loc, sc float64) { return l.loc, l.scale }

// With returns a logistic distribution
// with the given location and scale parameters.
func (l Logistic) With(loc, sc float64) Member {
	n := NewLogistic(loc, sc)
	n.Src = l.Src
	return n
}

// Normalize returns the distribution
// rescaled onto the normalized [0,1] domain.
func (l Logistic) Normalize(s scale.Scale) Dist {
	w := s.High() - s.Low()
	return l.With(s.NormalizePoint(l.loc), l.scale/w)
}

// Denormalize returns the distribution
// rescaled onto the true domain of the given scale.
func (l Logistic) Denormalize(s scale.Scale) Dist {
	w := s.High() - s.Low()
	return l.With(s.DenormalizePoint(l.loc), l.scale*w)
}

// Destructure returns the static token
// and the numeric state of the distribution.
func (l Logistic) Destructure() (Token, []float64) {
	return Token{Kind: KindLogistic}, []float64{l.loc, l.scale}
}

// String output for the family and parameters.
func (l Logistic) String() string {
	return fmt.Sprintf("logistic(loc=%.6g, scale=%.6g)", l.loc, l.scale)
}

func structureLogistic(num []float64) (Dist, error) {
	if len(num) != 2 {
		return nil, fmt.Errorf("%w: logistic: got %d values, want 2", ErrBadDist, len(num))
	}
	return NewLogistic(num[0], num[1]), nil
}

// Normal is a normal distribution
// parametrized by location and scale.
type Normal struct {
	norm distuv.Normal
}

// NewNormal returns a normal distribution.
// The scale parameter is clamped to a small positive floor.
func NewNormal(loc, sc float64) Normal {
	if sc < scaleFloor {
		sc = scaleFloor
	}
	return Normal{norm: distuv.Normal{Mu: loc, Sigma: sc}}
}

// SetSrc sets the source of randomness used for sampling.
func (n *Normal) SetSrc(src rand.Source) {
	n.norm.Src = src
}

// Prob returns the probability density at x.
func (n Normal) Prob(x float64) float64 { return n.norm.Prob(x) }

// LogProb returns the log of the probability density at x.
func (n Normal) LogProb(x float64) float64 { return n.norm.LogProb(x) }

// CDF returns the cumulative probability at x.
func (n Normal) CDF(x float64) float64 { return n.norm.CDF(x) }

// Quantile returns the inverse of the CDF at probability p.
func (n Normal) Quantile(p float64) float64 { return n.norm.Quantile(p) }

// Mean returns the expected value.
func (n Normal) Mean() float64 { return n.norm.Mu }

// Rand returns a random sample.
func (n Normal) Rand() (float64, error) {
	return n.norm.Rand(), nil
}

// Params returns the location and scale parameters.
func (n Normal) Params() (loc, sc float64) { return n.norm.Mu, n.norm.Sigma }

// With returns a normal distribution
// with the given location and scale parameters.
func (n Normal) With(loc, sc float64) Member {
	nn := NewNormal(loc, sc)
	nn.norm.Src = n.norm.Src
	return nn
}

// Normalize returns the distribution
// rescaled onto the normalized [0,1] domain.
func (n Normal) Normalize(s scale.Scale) Dist {
	w := s.High() - s.Low()
	return n.With(s.NormalizePoint(n.norm.Mu), n.norm.Sigma/w)
}

// Denormalize returns the distribution
// rescaled onto the true domain of the given scale.
func (n Normal) Denormalize(s scale.Scale) Dist {
	w := s.High() - s.Low()
	return n.With(s.DenormalizePoint(n.norm.Mu), n.norm.Sigma*w)
}

// Destructure returns the static token
// and the numeric state of the distribution.
func (n Normal) Destructure() (Token, []float64) {
	return Token{Kind: KindNormal}, []float64{n.norm.Mu, n.norm.Sigma}
}

// String output for the family and parameters.
func (n Normal) String() string {
	return fmt.Sprintf("normal(loc=%.6g, scale=%.6g)", n.norm.Mu, n.norm.Sigma)
}

func structureNormal(num []float64) (Dist, error) {
	if len(num) != 2 {
		return nil, fmt.Errorf("%w: normal: got %d values, want 2", ErrBadDist, len(num))
	}
	return NewNormal(num[0], num[1]), nil
}

// newMember returns a member of the given family kind.
func newMember(kind Kind, loc, sc float64) (Member, error) {
	switch kind {
	case KindLogistic:
		return NewLogistic(loc, sc), nil
	case KindNormal:
		return NewNormal(loc, sc), nil
	}
	return nil, fmt.Errorf("%w: invalid member kind %q", ErrBadDist, kind)
}
