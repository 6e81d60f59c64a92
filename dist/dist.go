// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dist implements probability distributions
// over a bounded true-value domain,
// with a lossless conversion
// between each distribution
// and a static token plus a flat numeric array.
package dist

import (
	"errors"
	"fmt"

	"github.com/js-arias/distfit/scale"
)

// ErrUnsupported is returned by operations
// that are not implemented for a distribution variant,
// such as sampling from a histogram.
var ErrUnsupported = errors.New("unsupported operation")

// ErrBadDist is returned when a distribution is defined
// with invalid parameters.
var ErrBadDist = errors.New("invalid distribution")

// A Dist is a continuous probability distribution
// over a bounded domain.
type Dist interface {
	// Prob returns the value of the probability density function
	// at x.
	Prob(x float64) float64

	// LogProb returns the natural logarithm
	// of the probability density function at x.
	LogProb(x float64) float64

	// CDF returns the value of the cumulative distribution function
	// at x.
	CDF(x float64) float64

	// Quantile returns the inverse of the CDF at probability p.
	Quantile(p float64) float64

	// Mean returns the expected value of the distribution.
	// Discretized variants compute it
	// over their discretized support.
	Mean() float64

	// Rand returns a random sample
	// drawn from the distribution.
	// Variants without a sampling form
	// return ErrUnsupported.
	Rand() (float64, error)

	// Normalize returns the distribution
	// rescaled onto the normalized [0,1] domain
	// of the given scale.
	Normalize(s scale.Scale) Dist

	// Denormalize returns the distribution
	// rescaled from the normalized [0,1] domain
	// onto the true domain of the given scale.
	Denormalize(s scale.Scale) Dist

	// Destructure returns the static token
	// and the flat numeric state of the distribution.
	Destructure() (Token, []float64)
}

// A Binned distribution defines its probability mass
// over a fixed grid of bins.
type Binned interface {
	Dist

	// BinProbs returns the probability mass of each bin.
	BinProbs() []float64

	// Entropy returns the entropy of the bin probabilities.
	Entropy() float64

	// CrossEntropy returns the cross-entropy
	// between the receiver and q.
	// Both distributions must be defined
	// over the same number of bins.
	CrossEntropy(q Binned) float64
}

// Kind identifies a distribution variant.
type Kind string

// Valid distribution kinds.
const (
	KindLogistic     Kind = "logistic"
	KindNormal       Kind = "normal"
	KindMixture      Kind = "mixture"
	KindTruncated    Kind = "truncated"
	KindHistogram    Kind = "histogram"
	KindPointDensity Kind = "points"
)

// A Token is the static, comparable descriptor
// of a distribution's non-differentiable shape.
// It is hashable and used as a compilation-cache key:
// any change on a static field
// produces a distinct cache entry.
type Token struct {
	Kind   Kind
	Member Kind // member kind of a mixture
	N      int  // number of components, bins, or grid points
	Scale  scale.Token
}

// Structure restores a distribution
// from a static token and its flat numeric state.
// It is the exact inverse of Destructure.
func Structure(tok Token, num []float64) (Dist, error) {
	switch tok.Kind {
	case KindLogistic:
		return structureLogistic(num)
	case KindNormal:
		return structureNormal(num)
	case KindMixture:
		return structureMixture(tok, num)
	case KindTruncated:
		return structureTruncated(tok, num)
	case KindHistogram:
		return structureHistogram(tok, num)
	case KindPointDensity:
		return structurePointDensity(tok, num)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrBadDist, tok.Kind)
}
