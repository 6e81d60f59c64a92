// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package condition implements weighted constraints
// that a fitted distribution
// should approximately satisfy.
package condition

import (
	"errors"
	"fmt"

	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// ErrBadCondition is returned when a condition is defined
// with invalid parameters.
var ErrBadCondition = errors.New("invalid condition")

// A Condition is an immutable weighted constraint
// over a candidate distribution.
// Its loss is a scalar
// scaled by the weight of the condition.
type Condition interface {
	// Loss returns the penalty of the candidate distribution
	// under the condition.
	Loss(d dist.Dist) float64

	// Validate returns an error
	// if the condition cannot be evaluated
	// on distributions like the candidate.
	Validate(d dist.Dist) error

	// Weight returns the weight of the condition.
	Weight() float64

	// Normalize returns a condition of the same variant
	// with its values rescaled
	// onto the normalized [0,1] domain of the scale.
	Normalize(s scale.Scale) Condition

	// Denormalize returns a condition of the same variant
	// with its values rescaled
	// onto the true domain of the scale.
	Denormalize(s scale.Scale) Condition

	// Destructure returns the static token
	// and the flat numeric state of the condition.
	Destructure() (Token, []float64)

	// DescribeFit returns a diagnostic
	// of the candidate distribution
	// under the condition.
	DescribeFit(d dist.Dist) Report

	// String output in a human readable form.
	String() string
}

// Kind identifies a condition variant.
type Kind string

// Valid condition kinds.
const (
	KindPercentile     Kind = "percentile"
	KindInterval       Kind = "interval"
	KindMean           Kind = "mean"
	KindHistogramShape Kind = "histogram-shape"
	KindCrossEntropy   Kind = "cross-entropy"
	KindMaxEntropy     Kind = "max-entropy"
)

// A Token is the static, comparable descriptor
// of a condition's shape,
// used as part of compilation-cache keys.
type Token struct {
	Kind  Kind
	N     int         // number of pairs or grid points
	Scale scale.Token // scale of the reference distribution
}

// A Report is a structured diagnostic
// of a candidate distribution under a condition,
// for logging and reporting collaborators.
type Report struct {
	// Loss is the weighted penalty of the candidate.
	Loss float64

	// Actual is the value the condition constrains,
	// as taken by the candidate:
	// a cumulative probability,
	// an interval mass,
	// a mean,
	// or an entropy.
	Actual float64
}

// Structure restores a condition
// from a static token and its flat numeric state.
// It is the exact inverse of Destructure.
func Structure(tok Token, num []float64) (Condition, error) {
	switch tok.Kind {
	case KindPercentile:
		return structurePercentile(num)
	case KindInterval:
		return structureInterval(num)
	case KindMean:
		return structureMean(num)
	case KindHistogramShape:
		return structureHistogramShape(tok, num)
	case KindCrossEntropy:
		return structureCrossEntropy(tok, num)
	case KindMaxEntropy:
		return structureMaxEntropy(num)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrBadCondition, tok.Kind)
}

// checkWeight validates a condition weight.
func checkWeight(w float64) error {
	if w < 0 {
		return fmt.Errorf("%w: weight %.6g is negative", ErrBadCondition, w)
	}
	return nil
}
