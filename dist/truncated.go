// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/js-arias/distfit/scale"
)

// Truncated is a mixture of location-scale distributions
// truncated to the interval [floor, ceiling]
// and renormalized so that its mass
// integrates to 1 over that interval.
type Truncated struct {
	base    Mixture
	floor   float64
	ceiling float64

	pInside    float64
	logPInside float64
}

// NewTruncated returns the truncation of a mixture
// to the interval [floor, ceiling].
func NewTruncated(m Mixture, floor, ceiling float64) (Truncated, error) {
	if ceiling <= floor {
		return Truncated{}, fmt.Errorf("%w: truncation ceiling %.6g is not greater than floor %.6g", ErrBadDist, ceiling, floor)
	}
	pIn := m.CDF(ceiling) - m.CDF(floor)
	if pIn < scaleFloor {
		pIn = scaleFloor
	}
	return Truncated{
		base:       m,
		floor:      floor,
		ceiling:    ceiling,
		pInside:    pIn,
		logPInside: math.Log(pIn),
	}, nil
}

// Base returns the mixture before truncation.
func (t Truncated) Base() Mixture { return t.base }

// Bounds returns the truncation interval.
func (t Truncated) Bounds() (floor, ceiling float64) {
	return t.floor, t.ceiling
}

// Prob returns the probability density at x.
// The density is 0 outside the truncation interval.
func (t Truncated) Prob(x float64) float64 {
	if x < t.floor || x > t.ceiling {
		return 0
	}
	return t.base.Prob(x) / t.pInside
}

// LogProb returns the log of the probability density at x.
func (t Truncated) LogProb(x float64) float64 {
	if x < t.floor || x > t.ceiling {
		return math.Inf(-1)
	}
	return t.base.LogProb(x) - t.logPInside
}

// CDF returns the cumulative probability at x.
func (t Truncated) CDF(x float64) float64 {
	if x < t.floor {
		return 0
	}
	if x > t.ceiling {
		return 1
	}
	p := (t.base.CDF(x) - t.base.CDF(t.floor)) / t.pInside
	return math.Min(math.Max(p, 0), 1)
}

// Quantile returns the inverse of the CDF at probability p,
// searched by bisection inside the truncation interval.
func (t Truncated) Quantile(p float64) float64 {
	if p < 0 || p > 1 {
		panic("dist: quantile out of range")
	}
	return bisectCDF(t.CDF, p, t.floor, t.ceiling)
}

// meanGrid is the number of cells
// used to discretize the truncation interval
// for the expected value.
const meanGrid = 200

// Mean returns the expected value,
// computed over a discretization
// of the truncation interval.
func (t Truncated) Mean() float64 {
	dx := (t.ceiling - t.floor) / meanGrid
	v := 0.0
	for i := 0; i < meanGrid; i++ {
		x := t.floor + (float64(i)+0.5)*dx
		v += x * t.Prob(x) * dx
	}
	return v
}

// Rand returns a random sample
// drawn with inverse transform sampling.
func (t Truncated) Rand() (float64, error) {
	var u float64
	if t.base.Src == nil {
		u = rand.Float64()
	} else {
		u = rand.New(t.base.Src).Float64()
	}
	return t.Quantile(u), nil
}

// Normalize returns the distribution
// rescaled onto the normalized [0,1] domain.
func (t Truncated) Normalize(s scale.Scale) Dist {
	nt, err := NewTruncated(t.base.Normalize(s).(Mixture), s.NormalizePoint(t.floor), s.NormalizePoint(t.ceiling))
	if err != nil {
		panic(err)
	}
	return nt
}

// Denormalize returns the distribution
// rescaled onto the true domain of the given scale.
func (t Truncated) Denormalize(s scale.Scale) Dist {
	nt, err := NewTruncated(t.base.Denormalize(s).(Mixture), s.DenormalizePoint(t.floor), s.DenormalizePoint(t.ceiling))
	if err != nil {
		panic(err)
	}
	return nt
}

// Destructure returns the static token
// and the numeric state of the distribution:
// the member parameters and weights of the base mixture
// followed by the truncation bounds.
func (t Truncated) Destructure() (Token, []float64) {
	tok, num := t.base.Destructure()
	tok.Kind = KindTruncated
	num = append(num, t.floor, t.ceiling)
	return tok, num
}

// String output for the base mixture and the truncation bounds.
func (t Truncated) String() string {
	return fmt.Sprintf("truncated[%.6g,%.6g]%v", t.floor, t.ceiling, t.base)
}

func structureTruncated(tok Token, num []float64) (Dist, error) {
	if len(num) != 3*tok.N+2 {
		return nil, fmt.Errorf("%w: truncated mixture of %d members: got %d values", ErrBadDist, tok.N, len(num))
	}
	ms, ws, err := memberParams(tok, num)
	if err != nil {
		return nil, err
	}
	m, err := NewMixture(ms, ws)
	if err != nil {
		return nil, err
	}
	t, err := NewTruncated(m, num[3*tok.N], num[3*tok.N+1])
	if err != nil {
		return nil, err
	}
	return t, nil
}
