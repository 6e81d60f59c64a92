// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package fit_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/js-arias/distfit/condition"
	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/fit"
	"github.com/js-arias/distfit/scale"
)

// testOpts keeps the unit tests fast
// while staying deterministic.
var testOpts = &fit.Options{
	InitTries: 5,
	OptTries:  1,
	MaxIter:   300,
	Seed:      1,
}

func mustCond(c condition.Condition, err error) condition.Condition {
	if err != nil {
		panic(err)
	}
	return c
}

func TestFitPercentile(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewPercentile(0.5, 2.5, 1)),
	}

	d, err := fit.Fit(conds, fit.LogisticMixture, fit.Params{NumComponents: 1}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.CDF(2.5); math.Abs(got-0.5) > 0.01 {
		t.Errorf("cumulative at 2.5: got %.6g, want 0.5", got)
	}
}

func TestFitInterval(t *testing.T) {
	s := scale.MustNew(0, 3)
	conds := []condition.Condition{
		mustCond(condition.NewInterval(0.5, math.Inf(-1), 1, 1)),
	}

	d, err := fit.Fit(conds, fit.LogisticMixture, fit.Params{NumComponents: 1}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.Quantile(0.5); math.Abs(got-1) > 0.1 {
		t.Errorf("median: got %.6g, want 1", got)
	}
}

func TestFitMean(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewMean(2.5, 1)),
	}

	d, err := fit.Fit(conds, fit.LogisticMixture, fit.Params{NumComponents: 2}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.Mean(); math.Abs(got-2.5) > 0.05 {
		t.Errorf("mean: got %.6g, want 2.5", got)
	}
}

func TestFitMaxEntropy(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewMaxEntropy(1)),
	}

	d, err := fit.Fit(conds, fit.PointDensity, fit.Params{}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// maximum entropy over a bounded domain is uniform
	for _, x := range []float64{0.5, 1.5, 2.5, 3.5, 4.5} {
		if got := d.Prob(x); math.Abs(got-0.2) > 0.02 {
			t.Errorf("density at %.6g: got %.6g, want 0.2", x, got)
		}
	}
	if got := d.Prob(-1); got != 0 {
		t.Errorf("density below the domain: got %.6g, want 0", got)
	}
	if got := d.Prob(6); got != 0 {
		t.Errorf("density above the domain: got %.6g, want 0", got)
	}
}

func TestFitHistogramMaxEntropy(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewMaxEntropy(1)),
	}

	d, err := fit.Fit(conds, fit.Histogram, fit.Params{NumBins: 20}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := d.(dist.Binned)
	if !ok {
		t.Fatalf("fitted distribution is a %T", d)
	}
	for i, p := range b.BinProbs() {
		if math.Abs(p-0.05) > 0.01 {
			t.Errorf("bin %d: got %.6g, want 0.05", i, p)
		}
	}
}

func TestFitIntervalWithMaxEntropy(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewInterval(0.4, 1, 2, 1)),
		mustCond(condition.NewMaxEntropy(0.0001)),
	}

	d, err := fit.Fit(conds, fit.PointDensity, fit.Params{}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.CDF(2) - d.CDF(1); math.Abs(got-0.4) > 0.02 {
		t.Errorf("interval mass: got %.6g, want 0.4", got)
	}

	// the weak entropy preference flattens the density
	// inside and outside the interval
	testFlat(t, "inside", d, 1.1, 1.9)
	testFlat(t, "outside", d, 2.5, 4.5)
}

func testFlat(t testing.TB, name string, d dist.Dist, low, high float64) {
	t.Helper()

	min := math.Inf(1)
	max := math.Inf(-1)
	for i := 0; i < 20; i++ {
		x := low + (high-low)*float64(i)/19
		p := d.Prob(x)
		min = math.Min(min, p)
		max = math.Max(max, p)
	}
	if max-min > 0.1 {
		t.Errorf("%s [%.6g,%.6g]: density from %.6g to %.6g", name, low, high, min, max)
	}
}

func TestFitCrossEntropy(t *testing.T) {
	s := scale.MustNew(-1, 6)
	truth := dist.NewLogistic(2.5, 0.15)
	pairs := make([]dist.Pair, 0, dist.NumPoints)
	for _, u := range dist.Grid() {
		x := s.DenormalizePoint(u)
		pairs = append(pairs, dist.Pair{X: x, Density: truth.Prob(x)})
	}
	ref, err := dist.PointDensityFromPairs(pairs, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conds := []condition.Condition{
		mustCond(condition.NewCrossEntropy(ref, 1)),
	}
	d, err := fit.Fit(conds, fit.PointDensity, fit.Params{}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// cross-entropy is minimal
	// when the candidate matches the reference
	for _, x := range []float64{1.5, 2, 2.5, 3, 3.5} {
		if got, want := d.Prob(x), ref.Prob(x); math.Abs(got-want) > 0.1 {
			t.Errorf("density at %.6g: got %.6g, want %.6g", x, got, want)
		}
		if got, want := d.CDF(x), ref.CDF(x); math.Abs(got-want) > 0.05 {
			t.Errorf("cumulative at %.6g: got %.6g, want %.6g", x, got, want)
		}
	}
}

func TestFitTruncated(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewPercentile(0.5, 2, 1)),
	}

	p := fit.Params{NumComponents: 1, Floor: 1, Ceiling: 4}
	d, err := fit.Fit(conds, fit.TruncatedLogisticMixture, p, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, ok := d.(dist.Truncated)
	if !ok {
		t.Fatalf("fitted distribution is a %T", d)
	}
	floor, ceiling := tr.Bounds()
	if math.Abs(floor-1) > 1e-6 || math.Abs(ceiling-4) > 1e-6 {
		t.Errorf("bounds: got [%.6g, %.6g], want [1, 4]", floor, ceiling)
	}
	if got := d.Prob(0.5); got != 0 {
		t.Errorf("density below the floor: got %.6g, want 0", got)
	}
	if got := d.Quantile(0.5); math.Abs(got-2) > 0.1 {
		t.Errorf("median: got %.6g, want 2", got)
	}
}

func TestFitValidation(t *testing.T) {
	s := scale.MustNew(0, 5)

	// an entropy condition needs a binned candidate
	conds := []condition.Condition{
		mustCond(condition.NewMaxEntropy(1)),
	}
	if _, err := fit.Fit(conds, fit.LogisticMixture, fit.Params{NumComponents: 1}, s, testOpts); !errors.Is(err, dist.ErrUnsupported) {
		t.Errorf("entropy over a mixture: got error %v, want %v", err, dist.ErrUnsupported)
	}
}

func TestFitBadParams(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewPercentile(0.5, 2.5, 1)),
	}

	tests := map[string]struct {
		fam fit.Family
		p   fit.Params
	}{
		"single bin":       {fam: fit.Histogram, p: fit.Params{NumBins: 1}},
		"no members":       {fam: fit.LogisticMixture, p: fit.Params{}},
		"inverted ceiling": {fam: fit.TruncatedLogisticMixture, p: fit.Params{NumComponents: 1, Floor: 4, Ceiling: 1}},
		"nan truncation":   {fam: fit.TruncatedLogisticMixture, p: fit.Params{NumComponents: 1, Floor: math.NaN(), Ceiling: 1}},
	}
	for name, test := range tests {
		if _, err := fit.Fit(conds, test.fam, test.p, s, testOpts); !errors.Is(err, dist.ErrBadDist) {
			t.Errorf("%s: got error %v, want %v", name, err, dist.ErrBadDist)
		}
	}
}

func TestFitLogScale(t *testing.T) {
	s := scale.MustNewLog(1, 1000, 10)
	conds := []condition.Condition{
		mustCond(condition.NewPercentile(0.5, 100, 1)),
	}

	d, err := fit.Fit(conds, fit.LogisticMixture, fit.Params{NumComponents: 1}, s, testOpts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.CDF(100); math.Abs(got-0.5) > 0.01 {
		t.Errorf("cumulative at 100: got %.6g, want 0.5", got)
	}
	if got := d.Quantile(0.5); math.Abs(got-100) > 5 {
		t.Errorf("median: got %.6g, want 100", got)
	}
}

func TestFitDeterminism(t *testing.T) {
	s := scale.MustNew(0, 5)
	conds := []condition.Condition{
		mustCond(condition.NewPercentile(0.25, 1, 1)),
		mustCond(condition.NewPercentile(0.75, 3, 1)),
	}

	var nums [2][]float64
	for i := range nums {
		d, err := fit.Fit(conds, fit.LogisticMixture, fit.Params{NumComponents: 2}, s, testOpts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, nums[i] = d.Destructure()
	}
	if !reflect.DeepEqual(nums[0], nums[1]) {
		t.Errorf("same seed: got %v, then %v", nums[0], nums[1])
	}
}
