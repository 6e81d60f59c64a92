// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/js-arias/distfit/scale"
)

// NumPoints is the size of the density grid
// of a point density distribution.
const NumPoints = 200

// Grid returns the grid of a point density distribution:
// the normalized midpoints
// of NumPoints equal-sized cells of [0,1].
func Grid() []float64 {
	xs := make([]float64, NumPoints)
	for i := range xs {
		xs[i] = (2*float64(i) + 1) / (2 * NumPoints)
	}
	return xs
}

// PointDensity is a distribution specified
// through density values
// over the normalized grid of its scale.
// The cumulative probabilities are computed eagerly
// at construction
// and the distribution is immutable afterwards.
type PointDensity struct {
	ds    []float64 // normalized densities at the grid points
	probs []float64 // probability mass of each grid cell
	cum   []float64 // cumulative mass at cell edges, NumPoints+1 values
	sc    scale.Scale
}

// NewPointDensity returns a point density distribution
// from the normalized density at each grid point.
// Densities must be non-negative;
// they are rescaled so that their mass sums to 1.
func NewPointDensity(densities []float64, sc scale.Scale) (PointDensity, error) {
	if len(densities) != NumPoints {
		return PointDensity{}, fmt.Errorf("%w: point density: got %d densities, want %d", ErrBadDist, len(densities), NumPoints)
	}
	sum := 0.0
	for i, d := range densities {
		if d < 0 || math.IsNaN(d) {
			return PointDensity{}, fmt.Errorf("%w: point density: density %d is %.6g", ErrBadDist, i, d)
		}
		sum += d
	}
	if sum <= 0 {
		return PointDensity{}, fmt.Errorf("%w: point density: densities sum to %.6g", ErrBadDist, sum)
	}

	ds := make([]float64, NumPoints)
	copy(ds, densities)
	floats.Scale(NumPoints/sum, ds)

	probs := make([]float64, NumPoints)
	for i, d := range ds {
		probs[i] = d / NumPoints
	}
	cum := make([]float64, NumPoints+1)
	floats.CumSum(cum[1:], probs)

	return PointDensity{ds: ds, probs: probs, cum: cum, sc: sc}, nil
}

// PointDensityFromPairs returns a point density distribution
// from a sequence of (value, density) pairs
// on the true domain of the given scale.
// Densities are reinterpolated onto the grid
// and rescaled so that their mass sums to 1.
func PointDensityFromPairs(pairs []Pair, sc scale.Scale) (PointDensity, error) {
	if len(pairs) < 2 {
		return PointDensity{}, fmt.Errorf("%w: point density: got %d pairs, want at least 2", ErrBadDist, len(pairs))
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

	us := make([]float64, len(ps))
	nds := make([]float64, len(ps))
	for i, p := range ps {
		us[i] = sc.NormalizePoint(p.X)
		nds[i] = sc.NormalizeDensity(us[i], p.Density)
	}
	for i := 1; i < len(us); i++ {
		if us[i] <= us[i-1] {
			return PointDensity{}, fmt.Errorf("%w: point density: repeated value %.6g", ErrBadDist, ps[i].X)
		}
	}

	grid := Grid()
	ds := nds
	if !onGrid(us, grid) {
		var pl interp.PiecewiseLinear
		if err := pl.Fit(us, nds); err != nil {
			return PointDensity{}, fmt.Errorf("%w: point density: %v", ErrBadDist, err)
		}
		ds = make([]float64, NumPoints)
		for i, u := range grid {
			ds[i] = math.Max(pl.Predict(u), 0)
		}
	}
	return NewPointDensity(ds, sc)
}

// onGrid reports whether a sequence of normalized points
// is already the density grid.
func onGrid(us, grid []float64) bool {
	if len(us) != len(grid) {
		return false
	}
	for i, u := range us {
		if math.Abs(u-grid[i]) > 1e-4 {
			return false
		}
	}
	return true
}

// cell returns the grid cell that contains
// the normalized coordinate u.
func cell(u float64) int {
	i := int(u * NumPoints)
	if i < 0 {
		i = 0
	}
	if i >= NumPoints {
		i = NumPoints - 1
	}
	return i
}

// Prob returns the probability density at x
// on the true domain.
// The density is 0 outside the domain of the scale.
func (pd PointDensity) Prob(x float64) float64 {
	u := pd.sc.NormalizePoint(x)
	if u < 0 || u > 1 {
		return 0
	}
	i := cell(u)
	grid := (2*float64(i) + 1) / (2 * NumPoints)
	return pd.sc.DenormalizeDensity(grid, pd.ds[i])
}

// LogProb returns the log of the probability density at x.
func (pd PointDensity) LogProb(x float64) float64 {
	return math.Log(pd.Prob(x))
}

// CDF returns the cumulative probability at x.
// It is 0 below the domain of the scale
// and 1 above it.
func (pd PointDensity) CDF(x float64) float64 {
	u := pd.sc.NormalizePoint(x)
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	i := cell(u)
	edge := float64(i) / NumPoints
	return pd.cum[i] + (u-edge)*pd.ds[i]
}

// Quantile returns the inverse of the CDF at probability p.
func (pd PointDensity) Quantile(p float64) float64 {
	if p < 0 || p > 1 {
		panic("dist: quantile out of range")
	}
	i := sort.SearchFloat64s(pd.cum, p)
	if i > 0 {
		i--
	}
	if i >= NumPoints {
		i = NumPoints - 1
	}
	u := float64(i) / NumPoints
	if pd.ds[i] > 0 {
		u += (p - pd.cum[i]) / pd.ds[i]
	}
	return pd.sc.DenormalizePoint(math.Min(u, 1))
}

// Mean returns the expected value
// over the discretized support.
func (pd PointDensity) Mean() float64 {
	xs := pd.sc.DenormalizePoints(Grid())
	return floats.Dot(pd.probs, xs)
}

// Variance returns the variance
// over the discretized support.
func (pd PointDensity) Variance() float64 {
	mean := pd.Mean()
	xs := pd.sc.DenormalizePoints(Grid())
	v := 0.0
	for i, x := range xs {
		v += pd.probs[i] * (x - mean) * (x - mean)
	}
	return v
}

// Rand returns ErrUnsupported:
// a point density distribution has no sampling form.
func (pd PointDensity) Rand() (float64, error) {
	return 0, fmt.Errorf("%w: sample of a point density distribution", ErrUnsupported)
}

// BinProbs returns the probability mass of each grid cell.
func (pd PointDensity) BinProbs() []float64 { return pd.probs }

// Entropy returns the entropy of the cell probabilities.
func (pd PointDensity) Entropy() float64 {
	e := 0.0
	for _, p := range pd.probs {
		if p <= 0 {
			continue
		}
		e -= p * math.Log(p)
	}
	return e
}

// CrossEntropy returns the cross-entropy
// between the receiver and q.
// Both distributions must be defined
// over the same number of bins.
func (pd PointDensity) CrossEntropy(q Binned) float64 {
	qp := q.BinProbs()
	if len(qp) != len(pd.probs) {
		panic("dist: bin length mismatch")
	}
	ce := 0.0
	for i, p := range pd.probs {
		if p <= 0 {
			continue
		}
		ce -= p * math.Log(qp[i])
	}
	return ce
}

// Normalize returns the distribution
// on the normalized [0,1] domain.
// The density values are already normalized,
// so only the scale changes.
func (pd PointDensity) Normalize(s scale.Scale) Dist {
	return PointDensity{ds: pd.ds, probs: pd.probs, cum: pd.cum, sc: scale.MustNew(0, 1)}
}

// Denormalize returns the distribution
// onto the true domain of the given scale.
func (pd PointDensity) Denormalize(s scale.Scale) Dist {
	return PointDensity{ds: pd.ds, probs: pd.probs, cum: pd.cum, sc: s}
}

// Destructure returns the static token
// and the numeric state of the distribution:
// the normalized densities
// followed by the numeric state of the scale.
func (pd PointDensity) Destructure() (Token, []float64) {
	sTok, sNum := pd.sc.Destructure()
	num := make([]float64, 0, NumPoints+len(sNum))
	num = append(num, pd.ds...)
	num = append(num, sNum...)
	return Token{Kind: KindPointDensity, N: NumPoints, Scale: sTok}, num
}

// String output for the variant and its scale.
func (pd PointDensity) String() string {
	return fmt.Sprintf("points[%d]@%v", NumPoints, pd.sc)
}

func structurePointDensity(tok Token, num []float64) (Dist, error) {
	if len(num) < NumPoints {
		return nil, fmt.Errorf("%w: point density: got %d values", ErrBadDist, len(num))
	}
	sc, err := scale.Structure(tok.Scale, num[NumPoints:])
	if err != nil {
		return nil, err
	}
	pd, err := NewPointDensity(num[:NumPoints], sc)
	if err != nil {
		return nil, err
	}
	return pd, nil
}

// ToPairs returns the (value, density) pairs
// of the distribution on its true domain.
func (pd PointDensity) ToPairs() []Pair {
	xs := pd.sc.DenormalizePoints(Grid())
	pairs := make([]Pair, NumPoints)
	for i, x := range xs {
		grid := (2*float64(i) + 1) / (2 * NumPoints)
		pairs[i] = Pair{X: x, Density: pd.sc.DenormalizeDensity(grid, pd.ds[i])}
	}
	return pairs
}

// AddEndpoints extends a normalized grid and its densities
// to the edges of the [0,1] domain,
// extrapolating the density linearly
// from the two nearest points
// and clamping it at 0.
// It is an ad hoc heuristic for export,
// not a guaranteed density reconstruction.
func AddEndpoints(xs, densities []float64) ([]float64, []float64) {
	if len(xs) < 2 || len(xs) != len(densities) {
		return xs, densities
	}
	if xs[0] != 0 {
		ratio := (xs[1] - xs[0]) / xs[0]
		d := (densities[0]-densities[1])/ratio + densities[0]
		xs = append([]float64{0}, xs...)
		densities = append([]float64{math.Max(d, 0)}, densities...)
	}
	if last := len(xs) - 1; xs[last] != 1 {
		ratio := (xs[last] - xs[last-1]) / (1 - xs[last])
		d := (densities[last]-densities[last-1])/ratio + densities[last]
		xs = append(append([]float64{}, xs...), 1)
		densities = append(append([]float64{}, densities...), math.Max(d, 0))
	}
	return xs, densities
}
