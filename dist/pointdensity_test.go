// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// truthPairs samples the density of a distribution
// over the grid of a scale.
func truthPairs(d dist.Dist, sc scale.Scale) []dist.Pair {
	pairs := make([]dist.Pair, 0, dist.NumPoints)
	for _, u := range dist.Grid() {
		x := sc.DenormalizePoint(u)
		pairs = append(pairs, dist.Pair{X: x, Density: d.Prob(x)})
	}
	return pairs
}

// A point density built from the sampled density
// of a known distribution
// must approximate its density,
// cumulative and quantile functions.
func TestPointDensityFromKnown(t *testing.T) {
	truth := dist.NewLogistic(2.5, 0.15)

	scales := []scale.Scale{
		scale.MustNew(0, 5),
		scale.MustNew(-2, 7),
		scale.MustNewLog(0.1, 5, 10),
	}
	for _, sc := range scales {
		pd, err := dist.PointDensityFromPairs(truthPairs(truth, sc), sc)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", sc, err)
		}
		testAgainstTruth(t, sc.String(), pd, truth, sc)

		// the distribution survives a destructure-structure round trip
		tok, num := pd.Destructure()
		r, err := dist.Structure(tok, num)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", sc, err)
		}
		testAgainstTruth(t, sc.String()+" restored", r, truth, sc)

		// and a normalize-denormalize round trip
		nd := pd.Normalize(sc).Denormalize(sc)
		testAgainstTruth(t, sc.String()+" rescaled", nd, truth, sc)
	}
}

// A point density built from pairs
// at points outside the standard grid
// is reinterpolated onto the grid.
func TestPointDensityInterpolated(t *testing.T) {
	truth := dist.NewLogistic(2.5, 0.15)
	sc := scale.MustNew(0, 5)

	const num = 500
	pairs := make([]dist.Pair, 0, num+1)
	for i := 0; i <= num; i++ {
		x := 5 * float64(i) / num
		pairs = append(pairs, dist.Pair{X: x, Density: truth.Prob(x)})
	}
	pd, err := dist.PointDensityFromPairs(pairs, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testAgainstTruth(t, "interpolated", pd, truth, sc)
}

func testAgainstTruth(t testing.TB, name string, pd dist.Dist, truth dist.Logistic, sc scale.Scale) {
	t.Helper()

	for _, u := range dist.Grid() {
		x := sc.DenormalizePoint(u)
		if got, want := pd.Prob(x), truth.Prob(x); math.Abs(got-want) > 0.05 {
			t.Errorf("%s: density at %.6g: got %.6g, want %.6g", name, x, got, want)
		}
		if got, want := pd.CDF(x), truth.CDF(x); math.Abs(got-want) > 0.05 {
			t.Errorf("%s: cumulative at %.6g: got %.6g, want %.6g", name, x, got, want)
		}
	}
	for _, p := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		if got, want := pd.Quantile(p), truth.Quantile(p); math.Abs(got-want) > 0.1 {
			t.Errorf("%s: quantile at %.6g: got %.6g, want %.6g", name, p, got, want)
		}
	}
}

func TestPointDensityUniform(t *testing.T) {
	sc := scale.MustNew(0, 5)
	ds := make([]float64, dist.NumPoints)
	for i := range ds {
		ds[i] = 3 // any constant: densities are rescaled
	}
	pd, err := dist.NewPointDensity(ds, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := pd.Prob(2); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("uniform density: got %.6g, want 0.2", got)
	}
	if got := pd.Prob(-1); got != 0 {
		t.Errorf("density outside the domain: got %.6g, want 0", got)
	}
	if got := pd.CDF(0); got != 0 {
		t.Errorf("cumulative at the lower bound: got %.6g, want 0", got)
	}
	if got := pd.CDF(5); math.Abs(got-1) > 1e-9 {
		t.Errorf("cumulative at the upper bound: got %.6g, want 1", got)
	}
	if got := pd.CDF(2.5); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("cumulative at the midpoint: got %.6g, want 0.5", got)
	}
	if got := pd.Quantile(0); math.Abs(got) > 1e-9 {
		t.Errorf("quantile at 0: got %.6g, want 0", got)
	}
	if got := pd.Quantile(1); math.Abs(got-5) > 1e-9 {
		t.Errorf("quantile at 1: got %.6g, want 5", got)
	}
	if got := pd.Mean(); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("mean: got %.6g, want 2.5", got)
	}
	if got := pd.Variance(); math.Abs(got-25.0/12) > 0.01 {
		t.Errorf("variance: got %.6g, want %.6g", got, 25.0/12)
	}
	if got := pd.Entropy(); math.Abs(got-math.Log(dist.NumPoints)) > 1e-9 {
		t.Errorf("entropy: got %.6g, want %.6g", got, math.Log(dist.NumPoints))
	}
	if got, want := pd.CrossEntropy(pd), pd.Entropy(); math.Abs(got-want) > 1e-9 {
		t.Errorf("self cross-entropy: got %.6g, want %.6g", got, want)
	}

	if _, err := pd.Rand(); !errors.Is(err, dist.ErrUnsupported) {
		t.Errorf("sampling: got error %v, want %v", err, dist.ErrUnsupported)
	}
}

func TestPointDensityErrors(t *testing.T) {
	sc := scale.MustNew(0, 1)

	if _, err := dist.NewPointDensity([]float64{1, 2, 3}, sc); !errors.Is(err, dist.ErrBadDist) {
		t.Errorf("wrong grid size: got error %v, want %v", err, dist.ErrBadDist)
	}

	ds := make([]float64, dist.NumPoints)
	ds[10] = -1
	if _, err := dist.NewPointDensity(ds, sc); !errors.Is(err, dist.ErrBadDist) {
		t.Errorf("negative density: got error %v, want %v", err, dist.ErrBadDist)
	}

	if _, err := dist.NewPointDensity(make([]float64, dist.NumPoints), sc); !errors.Is(err, dist.ErrBadDist) {
		t.Errorf("zero mass: got error %v, want %v", err, dist.ErrBadDist)
	}

	if _, err := dist.PointDensityFromPairs([]dist.Pair{{X: 1, Density: 1}}, sc); !errors.Is(err, dist.ErrBadDist) {
		t.Errorf("single pair: got error %v, want %v", err, dist.ErrBadDist)
	}

	pairs := []dist.Pair{{X: 0.5, Density: 1}, {X: 0.5, Density: 2}}
	if _, err := dist.PointDensityFromPairs(pairs, sc); !errors.Is(err, dist.ErrBadDist) {
		t.Errorf("repeated value: got error %v, want %v", err, dist.ErrBadDist)
	}
}

func TestAddEndpoints(t *testing.T) {
	xs, ds := dist.AddEndpoints([]float64{0.25, 0.5, 0.75}, []float64{1, 2, 1})
	wantX := []float64{0, 0.25, 0.5, 0.75, 1}
	wantD := []float64{0, 1, 2, 1, 0}
	if len(xs) != len(wantX) {
		t.Fatalf("points: got %d, want %d", len(xs), len(wantX))
	}
	for i := range xs {
		if math.Abs(xs[i]-wantX[i]) > 1e-9 || math.Abs(ds[i]-wantD[i]) > 1e-9 {
			t.Errorf("point %d: got (%.6g, %.6g), want (%.6g, %.6g)", i, xs[i], ds[i], wantX[i], wantD[i])
		}
	}

	// extrapolation is clamped at 0
	_, ds = dist.AddEndpoints([]float64{0.25, 0.5, 0.75}, []float64{1, 3, 1})
	if ds[0] != 0 || ds[len(ds)-1] != 0 {
		t.Errorf("clamped extrapolation: got %.6g and %.6g, want 0", ds[0], ds[len(ds)-1])
	}

	// already at the edges: nothing to add
	xs, ds = dist.AddEndpoints([]float64{0, 0.5, 1}, []float64{1, 2, 1})
	if len(xs) != 3 || len(ds) != 3 {
		t.Errorf("edges present: got %d points, want 3", len(xs))
	}
}

func TestPointDensityToPairs(t *testing.T) {
	truth := dist.NewLogistic(2.5, 0.15)
	sc := scale.MustNew(0, 5)

	pd, err := dist.PointDensityFromPairs(truthPairs(truth, sc), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pairs := pd.ToPairs()
	if len(pairs) != dist.NumPoints {
		t.Fatalf("pairs: got %d, want %d", len(pairs), dist.NumPoints)
	}
	for _, p := range pairs {
		if got := pd.Prob(p.X); math.Abs(got-p.Density) > 1e-9 {
			t.Errorf("density at %.6g: got %.6g, want %.6g", p.X, p.Density, got)
		}
	}

	// the pairs define the same distribution
	back, err := dist.PointDensityFromPairs(pairs, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testAgainstTruth(t, "pairs round trip", back, truth, sc)
}
