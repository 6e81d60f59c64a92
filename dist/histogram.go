// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/js-arias/distfit/scale"
)

// Histogram is a distribution specified
// through log-probabilities
// over an ordered grid of normalized bin positions.
// The cumulative probabilities are computed eagerly
// at construction
// and the distribution is immutable afterwards.
type Histogram struct {
	logps []float64
	ps    []float64
	cum   []float64
	bins  []float64 // normalized bin positions, increasing in [0,1]
	sc    scale.Scale
}

// NewHistogram returns a histogram distribution
// from the log-probability of each bin
// and the normalized bin positions.
// The log-probabilities are taken as given,
// without renormalization,
// so the caller must provide values
// whose exponentials sum to 1;
// otherwise the resulting mass will not sum to 1.
// Use HistogramFromPairs
// to build a histogram from raw densities.
func NewHistogram(logps, bins []float64, sc scale.Scale) (Histogram, error) {
	if len(logps) < 2 {
		return Histogram{}, fmt.Errorf("%w: histogram: got %d bins, want at least 2", ErrBadDist, len(logps))
	}
	if len(logps) != len(bins) {
		return Histogram{}, fmt.Errorf("%w: histogram: %d log-probabilities over %d bins", ErrBadDist, len(logps), len(bins))
	}
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			return Histogram{}, fmt.Errorf("%w: histogram: unsorted bin %d", ErrBadDist, i)
		}
	}

	lps := make([]float64, len(logps))
	copy(lps, logps)
	ps := make([]float64, len(lps))
	for i, lp := range lps {
		ps[i] = math.Exp(lp)
	}
	cum := make([]float64, len(ps))
	acc := 0.0
	for i, p := range ps {
		acc += p
		cum[i] = acc
	}

	bs := make([]float64, len(bins))
	copy(bs, bins)
	return Histogram{logps: lps, ps: ps, cum: cum, bins: bs, sc: sc}, nil
}

// UniformBins returns n normalized bin positions
// evenly spaced over [0,1].
func UniformBins(n int) []float64 {
	bins := make([]float64, n)
	for i := range bins {
		bins[i] = float64(i) / float64(n-1)
	}
	return bins
}

// HistogramFromPairs returns a histogram distribution
// from a sequence of (value, density) pairs
// on the true domain of the given scale.
// Densities are rescaled
// so that the bin probabilities sum to 1.
func HistogramFromPairs(pairs []Pair, sc scale.Scale) (Histogram, error) {
	if len(pairs) < 2 {
		return Histogram{}, fmt.Errorf("%w: histogram: got %d pairs, want at least 2", ErrBadDist, len(pairs))
	}
	ps := make([]Pair, len(pairs))
	copy(ps, pairs)
	slices.SortFunc(ps, func(a, b Pair) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	sum := 0.0
	for _, p := range ps {
		sum += p.Density
	}
	if sum <= 0 {
		return Histogram{}, fmt.Errorf("%w: histogram: densities sum to %.6g", ErrBadDist, sum)
	}
	logps := make([]float64, len(ps))
	xs := make([]float64, len(ps))
	for i, p := range ps {
		logps[i] = math.Log(p.Density / sum)
		xs[i] = p.X
	}
	return NewHistogram(logps, sc.NormalizePoints(xs), sc)
}

// bin returns the first bin at or after
// the normalized coordinate u.
func (h Histogram) bin(u float64) int {
	i := sort.SearchFloat64s(h.bins, u)
	if i >= len(h.bins) {
		i = len(h.bins) - 1
	}
	return i
}

// Prob returns the probability density at x
// on the true domain.
// The density is 0 outside the domain of the scale.
func (h Histogram) Prob(x float64) float64 {
	u := h.sc.NormalizePoint(x)
	if u < 0 || u > 1 {
		return 0
	}
	i := h.bin(u)
	w := h.binWidth(i)
	return h.sc.DenormalizeDensity(h.bins[i], h.ps[i]/w)
}

// binWidth returns the normalized width of a bin.
func (h Histogram) binWidth(i int) float64 {
	if i == 0 {
		return h.bins[1] - h.bins[0]
	}
	return h.bins[i] - h.bins[i-1]
}

// LogProb returns the log of the probability density at x.
func (h Histogram) LogProb(x float64) float64 {
	return math.Log(h.Prob(x))
}

// CDF returns the cumulative probability at x.
func (h Histogram) CDF(x float64) float64 {
	u := h.sc.NormalizePoint(x)
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return h.cum[h.bin(u)]
}

// Quantile returns the inverse of the CDF at probability p:
// the position of the first bin
// with a cumulative probability at or over p.
func (h Histogram) Quantile(p float64) float64 {
	if p < 0 || p > 1 {
		panic("dist: quantile out of range")
	}
	i := sort.SearchFloat64s(h.cum, p)
	if i >= len(h.bins) {
		i = len(h.bins) - 1
	}
	return h.sc.DenormalizePoint(h.bins[i])
}

// Mean returns the expected value
// over the bin positions.
func (h Histogram) Mean() float64 {
	xs := h.sc.DenormalizePoints(h.bins)
	v := 0.0
	for i, x := range xs {
		v += h.ps[i] * x
	}
	return v
}

// Rand returns ErrUnsupported:
// a histogram distribution has no sampling form.
func (h Histogram) Rand() (float64, error) {
	return 0, fmt.Errorf("%w: sample of a histogram distribution", ErrUnsupported)
}

// BinProbs returns the probability mass of each bin.
func (h Histogram) BinProbs() []float64 { return h.ps }

// Entropy returns the entropy of the bin probabilities.
func (h Histogram) Entropy() float64 {
	e := 0.0
	for i, p := range h.ps {
		if p <= 0 {
			continue
		}
		e -= p * h.logps[i]
	}
	return e
}

// CrossEntropy returns the cross-entropy
// between the receiver and q.
// Both distributions must be defined
// over the same number of bins.
func (h Histogram) CrossEntropy(q Binned) float64 {
	qp := q.BinProbs()
	if len(qp) != len(h.ps) {
		panic("dist: bin length mismatch")
	}
	ce := 0.0
	for i, p := range h.ps {
		if p <= 0 {
			continue
		}
		ce -= p * math.Log(qp[i])
	}
	return ce
}

// Normalize returns the distribution
// on the normalized [0,1] domain.
// The numeric state is already normalized,
// so only the scale changes.
func (h Histogram) Normalize(s scale.Scale) Dist {
	return Histogram{logps: h.logps, ps: h.ps, cum: h.cum, bins: h.bins, sc: scale.MustNew(0, 1)}
}

// Denormalize returns the distribution
// onto the true domain of the given scale.
func (h Histogram) Denormalize(s scale.Scale) Dist {
	return Histogram{logps: h.logps, ps: h.ps, cum: h.cum, bins: h.bins, sc: s}
}

// Destructure returns the static token
// and the numeric state of the distribution:
// the log-probabilities,
// the normalized bin positions,
// and the numeric state of the scale.
func (h Histogram) Destructure() (Token, []float64) {
	sTok, sNum := h.sc.Destructure()
	num := make([]float64, 0, 2*len(h.logps)+len(sNum))
	num = append(num, h.logps...)
	num = append(num, h.bins...)
	num = append(num, sNum...)
	return Token{Kind: KindHistogram, N: len(h.logps), Scale: sTok}, num
}

// String output for the variant, size and scale.
func (h Histogram) String() string {
	return fmt.Sprintf("histogram[%d]@%v", len(h.logps), h.sc)
}

func structureHistogram(tok Token, num []float64) (Dist, error) {
	if len(num) < 2*tok.N {
		return nil, fmt.Errorf("%w: histogram of %d bins: got %d values", ErrBadDist, tok.N, len(num))
	}
	sc, err := scale.Structure(tok.Scale, num[2*tok.N:])
	if err != nil {
		return nil, err
	}
	h, err := NewHistogram(num[:tok.N], num[tok.N:2*tok.N], sc)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ToPairs returns the (value, density) pairs
// of the distribution on its true domain,
// one pair per bin
// at the midpoint between consecutive bin positions.
func (h Histogram) ToPairs() []Pair {
	xs := h.sc.DenormalizePoints(h.bins)
	pairs := make([]Pair, 0, len(xs)-1)
	for i := 0; i < len(xs)-1; i++ {
		w := xs[i+1] - xs[i]
		pairs = append(pairs, Pair{
			X:       (xs[i] + xs[i+1]) / 2,
			Density: h.ps[i] / w,
		})
	}
	return pairs
}
