// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package scale implements bidirectional transforms
// between a normalized [0,1] working domain
// and a true-value domain,
// either linear or logarithmic.
package scale

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadScale is returned when a scale is defined
// with invalid bounds or an invalid base.
var ErrBadScale = errors.New("invalid scale")

// A Scale is a bijection between a normalized [0,1] working domain
// and a true-value domain.
// Density transforms multiply or divide
// by the local derivative of the denormalizing transform,
// so that probability integrals are preserved.
type Scale interface {
	// NormalizePoint maps a true value into [0,1].
	NormalizePoint(x float64) float64

	// DenormalizePoint maps a normalized value
	// back to the true domain.
	// It is the exact inverse of NormalizePoint.
	DenormalizePoint(u float64) float64

	// NormalizePoints maps a sequence of true values into [0,1].
	NormalizePoints(xs []float64) []float64

	// DenormalizePoints maps a sequence of normalized values
	// back to the true domain.
	DenormalizePoints(us []float64) []float64

	// NormalizeDensity transforms a true-domain density value,
	// given at the normalized coordinate u,
	// into a density on the normalized domain.
	NormalizeDensity(u, density float64) float64

	// DenormalizeDensity transforms a normalized density value,
	// given at the normalized coordinate u,
	// into a density on the true domain.
	DenormalizeDensity(u, density float64) float64

	// Low returns the lower bound of the true domain.
	Low() float64

	// High returns the upper bound of the true domain.
	High() float64

	// Destructure returns the static token
	// and the numeric state of the scale.
	Destructure() (Token, []float64)

	// String output for the scale kind and bounds.
	String() string
}

// Kind identifies the transform used by a scale.
type Kind string

// Valid scale kinds.
const (
	KindLinear Kind = "linear"
	KindLog    Kind = "log"
)

// A Token is the static, comparable descriptor of a scale,
// used as part of compilation-cache keys.
type Token struct {
	Kind Kind
}

// Linear is a linear scale between two bounds.
type Linear struct {
	low, high float64
}

// New returns a linear scale with the given bounds.
func New(low, high float64) (Linear, error) {
	if high <= low {
		return Linear{}, fmt.Errorf("%w: high %.6g is not greater than low %.6g", ErrBadScale, high, low)
	}
	return Linear{low: low, high: high}, nil
}

// MustNew is like New but panics on an invalid scale.
// Use it only with constant bounds.
func MustNew(low, high float64) Linear {
	s, err := New(low, high)
	if err != nil {
		panic(err)
	}
	return s
}

// NormalizePoint maps a true value into [0,1].
func (s Linear) NormalizePoint(x float64) float64 {
	return (x - s.low) / (s.high - s.low)
}

// DenormalizePoint maps a normalized value back to the true domain.
func (s Linear) DenormalizePoint(u float64) float64 {
	return s.low + u*(s.high-s.low)
}

// NormalizePoints maps a sequence of true values into [0,1].
func (s Linear) NormalizePoints(xs []float64) []float64 {
	return mapPoints(xs, s.NormalizePoint)
}

// DenormalizePoints maps a sequence of normalized values
// back to the true domain.
func (s Linear) DenormalizePoints(us []float64) []float64 {
	return mapPoints(us, s.DenormalizePoint)
}

// NormalizeDensity transforms a true-domain density
// at the normalized coordinate u
// into a normalized-domain density.
func (s Linear) NormalizeDensity(u, density float64) float64 {
	return density * (s.high - s.low)
}

// DenormalizeDensity transforms a normalized-domain density
// at the normalized coordinate u
// into a true-domain density.
func (s Linear) DenormalizeDensity(u, density float64) float64 {
	return density / (s.high - s.low)
}

// Low returns the lower bound of the true domain.
func (s Linear) Low() float64 { return s.low }

// High returns the upper bound of the true domain.
func (s Linear) High() float64 { return s.high }

// Destructure returns the static token
// and the numeric state of the scale.
func (s Linear) Destructure() (Token, []float64) {
	return Token{Kind: KindLinear}, []float64{s.low, s.high}
}

// String output for the scale kind and bounds.
func (s Linear) String() string {
	return fmt.Sprintf("linear[%.6g,%.6g]", s.low, s.high)
}

// logFloor is the smallest argument accepted by the log transform,
// so points slightly below the lower bound
// do not produce an infinite normalized value.
const logFloor = 1e-9

// Log is a logarithmic scale between two bounds,
// with a fixed base greater than 1.
type Log struct {
	low, high float64
	base      float64
}

// NewLog returns a logarithmic scale with the given bounds and base.
func NewLog(low, high, base float64) (Log, error) {
	if high <= low {
		return Log{}, fmt.Errorf("%w: high %.6g is not greater than low %.6g", ErrBadScale, high, low)
	}
	if base <= 1 {
		return Log{}, fmt.Errorf("%w: log base %.6g is not greater than 1", ErrBadScale, base)
	}
	return Log{low: low, high: high, base: base}, nil
}

// MustNewLog is like NewLog but panics on an invalid scale.
// Use it only with constant parameters.
func MustNewLog(low, high, base float64) Log {
	s, err := NewLog(low, high, base)
	if err != nil {
		panic(err)
	}
	return s
}

// NormalizePoint maps a true value into [0,1].
func (s Log) NormalizePoint(x float64) float64 {
	w := s.high - s.low
	t := 1 + (x-s.low)*(s.base-1)/w
	if t < logFloor {
		t = logFloor
	}
	return math.Log(t) / math.Log(s.base)
}

// DenormalizePoint maps a normalized value back to the true domain.
func (s Log) DenormalizePoint(u float64) float64 {
	w := s.high - s.low
	return s.low + w*(math.Pow(s.base, u)-1)/(s.base-1)
}

// NormalizePoints maps a sequence of true values into [0,1].
func (s Log) NormalizePoints(xs []float64) []float64 {
	return mapPoints(xs, s.NormalizePoint)
}

// DenormalizePoints maps a sequence of normalized values
// back to the true domain.
func (s Log) DenormalizePoints(us []float64) []float64 {
	return mapPoints(us, s.DenormalizePoint)
}

// deriv is the derivative of the denormalizing transform at u.
func (s Log) deriv(u float64) float64 {
	w := s.high - s.low
	return w * math.Log(s.base) * math.Pow(s.base, u) / (s.base - 1)
}

// NormalizeDensity transforms a true-domain density
// at the normalized coordinate u
// into a normalized-domain density.
func (s Log) NormalizeDensity(u, density float64) float64 {
	return density * s.deriv(u)
}

// DenormalizeDensity transforms a normalized-domain density
// at the normalized coordinate u
// into a true-domain density.
func (s Log) DenormalizeDensity(u, density float64) float64 {
	return density / s.deriv(u)
}

// Low returns the lower bound of the true domain.
func (s Log) Low() float64 { return s.low }

// High returns the upper bound of the true domain.
func (s Log) High() float64 { return s.high }

// Base returns the base of the logarithmic transform.
func (s Log) Base() float64 { return s.base }

// Destructure returns the static token
// and the numeric state of the scale.
func (s Log) Destructure() (Token, []float64) {
	return Token{Kind: KindLog}, []float64{s.low, s.high, s.base}
}

// String output for the scale kind, bounds and base.
func (s Log) String() string {
	return fmt.Sprintf("log[%.6g,%.6g;base=%.6g]", s.low, s.high, s.base)
}

// Structure restores a scale from a static token
// and its numeric state.
// It is the exact inverse of Destructure.
func Structure(tok Token, num []float64) (Scale, error) {
	switch tok.Kind {
	case KindLinear:
		if len(num) != 2 {
			return nil, fmt.Errorf("%w: linear scale: got %d values, want 2", ErrBadScale, len(num))
		}
		s, err := New(num[0], num[1])
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindLog:
		if len(num) != 3 {
			return nil, fmt.Errorf("%w: log scale: got %d values, want 3", ErrBadScale, len(num))
		}
		s, err := NewLog(num[0], num[1], num[2])
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrBadScale, tok.Kind)
}

func mapPoints(vs []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = fn(v)
	}
	return out
}
