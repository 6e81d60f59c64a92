// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fit implements fitting a distribution
// to a set of weighted conditions
// with multi-start gradient based optimization.
package fit

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// Params is the structural parameter set of a family:
// the values that define the shape of a distribution
// and are not subject to optimization.
type Params struct {
	// NumBins is the number of bins
	// of a histogram distribution.
	NumBins int

	// NumComponents is the number of members
	// of a mixture distribution.
	NumComponents int

	// Floor and Ceiling are the truncation bounds
	// of a truncated mixture,
	// on the true domain.
	Floor, Ceiling float64
}

// A Token is the static, comparable descriptor
// of a family and its structural parameters,
// used as a compilation-cache key.
type Token struct {
	Family string
	Params Params
}

// A Family is a distribution family
// that can be produced from conditions
// by gradient based optimization
// over a flat numeric parameter array.
type Family interface {
	// InitParams returns an initial parameter array
	// with a deterministic shape and randomized values.
	InitParams(p Params, rng *rand.Rand) []float64

	// FromParams reconstructs a distribution
	// on the normalized [0,1] domain
	// from the structural and optimizable parameters.
	// It is pure:
	// no randomness and no input-output,
	// so it can be invoked repeatedly
	// inside a loss or gradient evaluation.
	FromParams(p Params, opt []float64) dist.Dist

	// NormalizeParams rescales any structural value
	// given on the true domain
	// onto the normalized [0,1] domain of the scale.
	NormalizeParams(p Params, s scale.Scale) Params

	// Token returns the static descriptor
	// of the family with the given structural parameters.
	Token(p Params) Token

	// Tries returns the default number
	// of random initializations
	// and of optimizer runs per initialization.
	Tries() (initTries, optTries int)

	// String output for the family name.
	String() string
}

// Available families.
var (
	PointDensity             Family = pointDensityFamily{}
	Histogram                Family = histogramFamily{}
	LogisticMixture          Family = mixtureFamily{member: dist.KindLogistic}
	NormalMixture            Family = mixtureFamily{member: dist.KindNormal}
	TruncatedLogisticMixture Family = truncatedFamily{member: dist.KindLogistic}
)

// unitScale is the normalized working domain.
var unitScale = scale.MustNew(0, 1)

type pointDensityFamily struct{}

func (pointDensityFamily) InitParams(p Params, rng *rand.Rand) []float64 {
	opt := make([]float64, dist.NumPoints)
	for i := range opt {
		opt[i] = 1
	}
	return opt
}

func (pointDensityFamily) FromParams(p Params, opt []float64) dist.Dist {
	ds := softmax(opt)
	floats.Scale(float64(len(ds)), ds)
	pd, err := dist.NewPointDensity(ds, unitScale)
	if err != nil {
		panic(err)
	}
	return pd
}

func (pointDensityFamily) NormalizeParams(p Params, s scale.Scale) Params { return p }

func (f pointDensityFamily) Token(p Params) Token {
	return Token{Family: f.String()}
}

func (pointDensityFamily) Tries() (initTries, optTries int) { return 1, 1 }

func (pointDensityFamily) String() string { return "points" }

type histogramFamily struct{}

func (histogramFamily) InitParams(p Params, rng *rand.Rand) []float64 {
	opt := make([]float64, p.NumBins)
	for i := range opt {
		opt[i] = -float64(p.NumBins)
	}
	return opt
}

func (histogramFamily) FromParams(p Params, opt []float64) dist.Dist {
	h, err := dist.NewHistogram(logSoftmax(opt), dist.UniformBins(len(opt)), unitScale)
	if err != nil {
		panic(err)
	}
	return h
}

func (histogramFamily) NormalizeParams(p Params, s scale.Scale) Params { return p }

func (f histogramFamily) Token(p Params) Token {
	return Token{Family: f.String(), Params: Params{NumBins: p.NumBins}}
}

func (histogramFamily) Tries() (initTries, optTries int) { return 1, 1 }

func (histogramFamily) String() string { return "histogram" }

type mixtureFamily struct {
	member dist.Kind
}

// initMixture returns the initial parameter array
// of a mixture of n members.
// Each member takes a (location, scale, weight) triplet.
// Weights are given in log space
// with a strong negative bias,
// so the mixture starts near uniform.
func initMixture(n int, rng *rand.Rand) []float64 {
	opt := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		opt[3*i] = rng.Float64() - 0.5
		opt[3*i+1] = rng.Float64() * 0.2
		opt[3*i+2] = -float64(n)
	}
	return opt
}

func (f mixtureFamily) InitParams(p Params, rng *rand.Rand) []float64 {
	return initMixture(p.NumComponents, rng)
}

func (f mixtureFamily) FromParams(p Params, opt []float64) dist.Dist {
	n := p.NumComponents
	if len(opt) != 3*n {
		panic("fit: parameter length mismatch")
	}
	ms := make([]dist.Member, n)
	logits := make([]float64, n)
	for i := 0; i < n; i++ {
		ms[i] = newMember(f.member, opt[3*i], math.Abs(opt[3*i+1]))
		logits[i] = opt[3*i+2]
	}
	m, err := dist.NewMixture(ms, softmax(logits))
	if err != nil {
		panic(err)
	}
	return m
}

func (mixtureFamily) NormalizeParams(p Params, s scale.Scale) Params { return p }

func (f mixtureFamily) Token(p Params) Token {
	return Token{Family: f.String(), Params: Params{NumComponents: p.NumComponents}}
}

func (mixtureFamily) Tries() (initTries, optTries int) { return 20, 2 }

func (f mixtureFamily) String() string { return string(f.member) + "-mixture" }

type truncatedFamily struct {
	member dist.Kind
}

func (f truncatedFamily) InitParams(p Params, rng *rand.Rand) []float64 {
	return initMixture(p.NumComponents, rng)
}

func (f truncatedFamily) FromParams(p Params, opt []float64) dist.Dist {
	n := p.NumComponents
	if len(opt) != 3*n {
		panic("fit: parameter length mismatch")
	}

	// Member locations are constrained
	// to a window around the truncation interval.
	w := p.Ceiling - p.Floor
	locFloor := p.Floor - 2*w
	locCeiling := p.Floor + 3*w

	ms := make([]dist.Member, n)
	logits := make([]float64, n)
	for i := 0; i < n; i++ {
		loc := locFloor + expit(opt[3*i])*(locCeiling-locFloor)
		ms[i] = newMember(f.member, loc, math.Abs(opt[3*i+1]))
		logits[i] = opt[3*i+2]
	}
	m, err := dist.NewMixture(ms, softmax(logits))
	if err != nil {
		panic(err)
	}
	t, err := dist.NewTruncated(m, p.Floor, p.Ceiling)
	if err != nil {
		panic(err)
	}
	return t
}

func (truncatedFamily) NormalizeParams(p Params, s scale.Scale) Params {
	np := p
	np.Floor = s.NormalizePoint(p.Floor)
	np.Ceiling = s.NormalizePoint(p.Ceiling)
	return np
}

func (f truncatedFamily) Token(p Params) Token {
	return Token{Family: f.String(), Params: Params{
		NumComponents: p.NumComponents,
		Floor:         p.Floor,
		Ceiling:       p.Ceiling,
	}}
}

func (truncatedFamily) Tries() (initTries, optTries int) { return 20, 2 }

func (f truncatedFamily) String() string { return "truncated-" + string(f.member) + "-mixture" }

// checkParams validates the structural parameters of a family.
// It is called before any optimization,
// so a bad configuration is reported as an error
// and never reaches a worker goroutine.
func checkParams(fam Family, p Params) error {
	switch fam.(type) {
	case histogramFamily:
		if p.NumBins < 2 {
			return fmt.Errorf("fit: %w: histogram of %d bins, want at least 2", dist.ErrBadDist, p.NumBins)
		}
	case mixtureFamily:
		if p.NumComponents < 1 {
			return fmt.Errorf("fit: %w: mixture of %d members", dist.ErrBadDist, p.NumComponents)
		}
	case truncatedFamily:
		if p.NumComponents < 1 {
			return fmt.Errorf("fit: %w: mixture of %d members", dist.ErrBadDist, p.NumComponents)
		}
		if math.IsNaN(p.Floor) || math.IsNaN(p.Ceiling) || p.Ceiling <= p.Floor {
			return fmt.Errorf("fit: %w: truncation ceiling %.6g is not greater than floor %.6g", dist.ErrBadDist, p.Ceiling, p.Floor)
		}
	}
	return nil
}

func newMember(kind dist.Kind, loc, sc float64) dist.Member {
	switch kind {
	case dist.KindLogistic:
		return dist.NewLogistic(loc, sc)
	case dist.KindNormal:
		return dist.NewNormal(loc, sc)
	}
	panic(fmt.Sprintf("fit: invalid member kind %q", kind))
}

// softmax maps a raw parameter array
// to weights that are non-negative
// and sum to 1.
func softmax(raw []float64) []float64 {
	lse := floats.LogSumExp(raw)
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = math.Exp(v - lse)
	}
	return out
}

// logSoftmax maps a raw parameter array
// to log-probabilities.
func logSoftmax(raw []float64) []float64 {
	lse := floats.LogSumExp(raw)
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v - lse
	}
	return out
}

// expit is the standard logistic function.
func expit(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
