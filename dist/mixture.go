// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/js-arias/distfit/scale"
)

// Mixture is a finite mixture
// of location-scale family distributions.
// All members belong to the same family
// and the mixing weights sum to 1.
type Mixture struct {
	members []Member
	weights []float64
	kind    Kind // member family

	// Src is the source of randomness used for sampling.
	// If nil, the global random source will be used.
	Src rand.Source
}

// NewMixture returns a mixture
// from a set of members of the same family
// and their mixing weights.
// Weights must be non-negative with a positive sum;
// they are rescaled to sum to 1.
func NewMixture(members []Member, weights []float64) (Mixture, error) {
	if len(members) == 0 {
		return Mixture{}, fmt.Errorf("%w: mixture without members", ErrBadDist)
	}
	if len(members) != len(weights) {
		return Mixture{}, fmt.Errorf("%w: mixture with %d members and %d weights", ErrBadDist, len(members), len(weights))
	}

	tok, _ := members[0].Destructure()
	kind := tok.Kind
	for i, m := range members[1:] {
		t, _ := m.Destructure()
		if t.Kind != kind {
			return Mixture{}, fmt.Errorf("%w: mixture member %d is %q, want %q", ErrBadDist, i+1, t.Kind, kind)
		}
	}

	sum := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return Mixture{}, fmt.Errorf("%w: mixture weight %d is %.6g", ErrBadDist, i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return Mixture{}, fmt.Errorf("%w: mixture weights sum to %.6g", ErrBadDist, sum)
	}
	ws := make([]float64, len(weights))
	copy(ws, weights)
	floats.Scale(1/sum, ws)

	ms := make([]Member, len(members))
	copy(ms, members)
	return Mixture{members: ms, weights: ws, kind: kind}, nil
}

// Members returns the member distributions of the mixture.
func (m Mixture) Members() []Member { return m.members }

// Weights returns the mixing weights of the mixture.
func (m Mixture) Weights() []float64 { return m.weights }

// Prob returns the probability density at x.
func (m Mixture) Prob(x float64) float64 {
	p := 0.0
	for i, c := range m.members {
		p += m.weights[i] * c.Prob(x)
	}
	return p
}

// LogProb returns the log of the probability density at x.
func (m Mixture) LogProb(x float64) float64 {
	scores := make([]float64, len(m.members))
	for i, c := range m.members {
		scores[i] = math.Log(m.weights[i]) + c.LogProb(x)
	}
	return floats.LogSumExp(scores)
}

// CDF returns the cumulative probability at x.
func (m Mixture) CDF(x float64) float64 {
	p := 0.0
	for i, c := range m.members {
		p += m.weights[i] * c.CDF(x)
	}
	return p
}

// Quantile returns the inverse of the CDF at probability p,
// searched by bisection between the member quantiles.
func (m Mixture) Quantile(p float64) float64 {
	if p < 0 || p > 1 {
		panic("dist: quantile out of range")
	}
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, c := range m.members {
		q := c.Quantile(p)
		lo = math.Min(lo, q)
		hi = math.Max(hi, q)
	}
	return bisectCDF(m.CDF, p, lo, hi)
}

// Mean returns the expected value of the mixture.
func (m Mixture) Mean() float64 {
	v := 0.0
	for i, c := range m.members {
		v += m.weights[i] * c.Mean()
	}
	return v
}

// Rand returns a random sample,
// picking a member by weight
// and sampling from it.
func (m Mixture) Rand() (float64, error) {
	var u float64
	if m.Src == nil {
		u = rand.Float64()
	} else {
		u = rand.New(m.Src).Float64()
	}
	acc := 0.0
	for i, c := range m.members {
		acc += m.weights[i]
		if u <= acc {
			return c.Rand()
		}
	}
	return m.members[len(m.members)-1].Rand()
}

// Normalize returns the mixture
// rescaled onto the normalized [0,1] domain.
func (m Mixture) Normalize(s scale.Scale) Dist {
	return m.rescale(func(c Member) Member {
		return c.Normalize(s).(Member)
	})
}

// Denormalize returns the mixture
// rescaled onto the true domain of the given scale.
func (m Mixture) Denormalize(s scale.Scale) Dist {
	return m.rescale(func(c Member) Member {
		return c.Denormalize(s).(Member)
	})
}

func (m Mixture) rescale(fn func(Member) Member) Mixture {
	ms := make([]Member, len(m.members))
	for i, c := range m.members {
		ms[i] = fn(c)
	}
	nm, err := NewMixture(ms, m.weights)
	if err != nil {
		panic(err)
	}
	nm.Src = m.Src
	return nm
}

// Destructure returns the static token
// and the numeric state of the mixture:
// the location and scale of each member
// followed by the mixing weights.
func (m Mixture) Destructure() (Token, []float64) {
	num := make([]float64, 0, 3*len(m.members))
	for _, c := range m.members {
		loc, sc := c.Params()
		num = append(num, loc, sc)
	}
	num = append(num, m.weights...)
	return Token{Kind: KindMixture, Member: m.kind, N: len(m.members)}, num
}

// String output for the members and weights of the mixture.
func (m Mixture) String() string {
	var sb strings.Builder
	sb.WriteString("mixture[")
	for i, c := range m.members {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v*%.4f", c, m.weights[i])
	}
	sb.WriteString("]")
	return sb.String()
}

func structureMixture(tok Token, num []float64) (Dist, error) {
	if len(num) != 3*tok.N {
		return nil, fmt.Errorf("%w: mixture of %d members: got %d values", ErrBadDist, tok.N, len(num))
	}
	ms, ws, err := memberParams(tok, num)
	if err != nil {
		return nil, err
	}
	m, err := NewMixture(ms, ws)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// memberParams reads the members and weights of a mixture
// from a flat numeric array
// with the layout written by Mixture.Destructure.
// Any values after the weights are left to the caller.
func memberParams(tok Token, num []float64) ([]Member, []float64, error) {
	n := tok.N
	if len(num) < 3*n {
		return nil, nil, fmt.Errorf("%w: mixture of %d members: got %d values", ErrBadDist, n, len(num))
	}
	ms := make([]Member, n)
	for i := 0; i < n; i++ {
		c, err := newMember(tok.Member, num[2*i], num[2*i+1])
		if err != nil {
			return nil, nil, err
		}
		ms[i] = c
	}
	ws := make([]float64, n)
	copy(ws, num[2*n:3*n])
	return ms, ws, nil
}

// bisectCDF searches for the point
// in which a non-decreasing cdf reaches probability p.
func bisectCDF(cdf func(float64) float64, p, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	for it := 0; it < 200; it++ {
		mid := (lo + hi) / 2
		if cdf(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1e-12 {
			break
		}
	}
	return (lo + hi) / 2
}
