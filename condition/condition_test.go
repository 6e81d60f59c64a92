// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package condition_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/distfit/condition"
	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

func TestPercentile(t *testing.T) {
	l := dist.NewLogistic(0, 1)

	c, err := condition.NewPercentile(0.5, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Loss(l); got != 0 {
		t.Errorf("satisfied condition: got loss %.6g, want 0", got)
	}

	// loss is the weighted squared difference
	// of the cumulative probability
	c, err = condition.NewPercentile(0.5, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := l.CDF(2) - 0.5
	if got, want := c.Loss(l), 3*diff*diff; math.Abs(got-want) > 1e-12 {
		t.Errorf("loss: got %.6g, want %.6g", got, want)
	}
	r := c.DescribeFit(l)
	if math.Abs(r.Actual-l.CDF(2)) > 1e-12 {
		t.Errorf("report: got actual %.6g, want %.6g", r.Actual, l.CDF(2))
	}

	if _, err := condition.NewPercentile(1.5, 0, 1); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("percentile over 1: got error %v, want %v", err, condition.ErrBadCondition)
	}
	if _, err := condition.NewPercentile(0.5, 0, -1); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("negative weight: got error %v, want %v", err, condition.ErrBadCondition)
	}
}

func TestInterval(t *testing.T) {
	l := dist.NewLogistic(0, 1)

	// a symmetric interval around the location
	p := l.CDF(1) - l.CDF(-1)
	c, err := condition.NewInterval(p, -1, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Loss(l); math.Abs(got) > 1e-12 {
		t.Errorf("satisfied condition: got loss %.6g, want 0", got)
	}

	// open bounds
	c, err = condition.NewInterval(0.5, math.Inf(-1), 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Loss(l); math.Abs(got) > 1e-12 {
		t.Errorf("open lower bound: got loss %.6g, want 0", got)
	}
	c, err = condition.NewInterval(0.5, 0, math.Inf(1), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Loss(l); math.Abs(got) > 1e-12 {
		t.Errorf("open upper bound: got loss %.6g, want 0", got)
	}

	// an open bound survives normalization
	s := scale.MustNew(-10, 10)
	n := c.Normalize(s)
	if got := n.Loss(l.Normalize(s)); math.Abs(got) > 1e-9 {
		t.Errorf("normalized condition: got loss %.6g, want 0", got)
	}

	if _, err := condition.NewInterval(0.5, 1, -1, 1); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("inverted bounds: got error %v, want %v", err, condition.ErrBadCondition)
	}
	if _, err := condition.NewInterval(2, -1, 1, 1); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("probability over 1: got error %v, want %v", err, condition.ErrBadCondition)
	}
}

func TestMean(t *testing.T) {
	l := dist.NewLogistic(2.5, 0.15)

	c, err := condition.NewMean(2.5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Loss(l); got != 0 {
		t.Errorf("satisfied condition: got loss %.6g, want 0", got)
	}

	c, err = condition.NewMean(3.5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Loss(l); math.Abs(got-2) > 1e-12 {
		t.Errorf("loss: got %.6g, want 2", got)
	}

	if _, err := condition.NewMean(math.NaN(), 1); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("undefined mean: got error %v, want %v", err, condition.ErrBadCondition)
	}
	if _, err := condition.NewMean(math.Inf(1), 1); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("infinite mean: got error %v, want %v", err, condition.ErrBadCondition)
	}
}

func TestHistogramShape(t *testing.T) {
	l := dist.NewLogistic(0, 1)

	pairs := []dist.Pair{
		{X: -1, Density: l.Prob(-1)},
		{X: 0, Density: l.Prob(0)},
		{X: 1, Density: l.Prob(1)},
	}
	c, err := condition.NewHistogramShape(pairs, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Loss(l); math.Abs(got) > 1e-12 {
		t.Errorf("satisfied condition: got loss %.6g, want 0", got)
	}

	// loss is the weighted mean of the squared differences
	flat := []dist.Pair{
		{X: -1, Density: 0.1},
		{X: 0, Density: 0.1},
		{X: 1, Density: 0.1},
	}
	c, err = condition.NewHistogramShape(flat, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.0
	for _, p := range flat {
		diff := l.Prob(p.X) - p.Density
		want += diff * diff
	}
	want = 2 * want / 3
	if got := c.Loss(l); math.Abs(got-want) > 1e-12 {
		t.Errorf("loss: got %.6g, want %.6g", got, want)
	}

	if _, err := condition.NewHistogramShape(nil, 1); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("empty shape: got error %v, want %v", err, condition.ErrBadCondition)
	}
}

func TestEntropy(t *testing.T) {
	sc := scale.MustNew(0, 1)
	uniform := make([]float64, dist.NumPoints)
	for i := range uniform {
		uniform[i] = 1
	}
	pd, err := dist.NewPointDensity(uniform, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	me, err := condition.NewMaxEntropy(1.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := me.Validate(pd); err != nil {
		t.Fatalf("validate: unexpected error: %v", err)
	}
	if got, want := me.Loss(pd), -1.5*pd.Entropy(); math.Abs(got-want) > 1e-9 {
		t.Errorf("loss: got %.6g, want %.6g", got, want)
	}

	// a non binned candidate is rejected
	l := dist.NewLogistic(0, 1)
	if err := me.Validate(l); !errors.Is(err, dist.ErrUnsupported) {
		t.Errorf("validate a logistic: got error %v, want %v", err, dist.ErrUnsupported)
	}

	ce, err := condition.NewCrossEntropy(pd, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ce.Validate(pd); err != nil {
		t.Fatalf("validate: unexpected error: %v", err)
	}
	if got, want := ce.Loss(pd), pd.Entropy(); math.Abs(got-want) > 1e-9 {
		t.Errorf("self loss: got %.6g, want %.6g", got, want)
	}
	if err := ce.Validate(l); !errors.Is(err, dist.ErrUnsupported) {
		t.Errorf("validate a logistic: got error %v, want %v", err, dist.ErrUnsupported)
	}

	// any other distribution has a larger cross-entropy
	peaked := make([]float64, dist.NumPoints)
	for i := range peaked {
		peaked[i] = 0.1
	}
	peaked[100] = 10
	qd, err := dist.NewPointDensity(peaked, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ce.Loss(qd); got <= ce.Loss(pd) {
		t.Errorf("peaked candidate: got loss %.6g, want over %.6g", got, ce.Loss(pd))
	}
}

func TestConditionStructure(t *testing.T) {
	sc := scale.MustNew(0, 1)
	uniform := make([]float64, dist.NumPoints)
	for i := range uniform {
		uniform[i] = 1
	}
	pd, err := dist.NewPointDensity(uniform, sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conds := []condition.Condition{
		mustCond(condition.NewPercentile(0.25, 3, 1)),
		mustCond(condition.NewInterval(0.9, -5, 5, 2)),
		mustCond(condition.NewInterval(0.5, math.Inf(-1), 0, 1)),
		mustCond(condition.NewMean(2.5, 1)),
		mustCond(condition.NewHistogramShape([]dist.Pair{{X: 0, Density: 1}, {X: 1, Density: 2}}, 1)),
		mustCond(condition.NewCrossEntropy(pd, 1)),
		mustCond(condition.NewMaxEntropy(0.05)),
	}

	probe := pd
	for _, c := range conds {
		tok, num := c.Destructure()
		r, err := condition.Structure(tok, num)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", c, err)
		}
		rt, _ := r.Destructure()
		if rt != tok {
			t.Errorf("%v: restored token %v, want %v", c, rt, tok)
		}
		if got, want := r.Weight(), c.Weight(); got != want {
			t.Errorf("%v: restored weight %.6g, want %.6g", c, got, want)
		}
		if r.Validate(probe) == nil && c.Validate(probe) == nil {
			if got, want := r.Loss(probe), c.Loss(probe); math.Abs(got-want) > 1e-9 {
				t.Errorf("%v: restored loss %.6g, want %.6g", c, got, want)
			}
		}
	}

	if _, err := condition.Structure(condition.Token{Kind: "mode"}, []float64{1}); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("unknown kind: got error %v, want %v", err, condition.ErrBadCondition)
	}
	if _, err := condition.Structure(condition.Token{Kind: condition.KindMean}, []float64{1}); !errors.Is(err, condition.ErrBadCondition) {
		t.Errorf("bad payload: got error %v, want %v", err, condition.ErrBadCondition)
	}
}

func mustCond(c condition.Condition, err error) condition.Condition {
	if err != nil {
		panic(err)
	}
	return c
}

func TestConditionRescale(t *testing.T) {
	s := scale.MustNew(0, 5)
	l := dist.NewLogistic(2.5, 0.15)
	nl := l.Normalize(s)

	conds := []condition.Condition{
		mustCond(condition.NewPercentile(0.5, 2.5, 1)),
		mustCond(condition.NewInterval(0.8, 2, 3, 1)),
		mustCond(condition.NewMean(2.5, 1)),
		mustCond(condition.NewHistogramShape([]dist.Pair{{X: 2, Density: l.Prob(2)}, {X: 2.5, Density: l.Prob(2.5)}}, 1)),
	}
	for _, c := range conds {
		n := c.Normalize(s)
		if got, want := n.Loss(nl), c.Loss(l); math.Abs(got-want) > 0.05 {
			t.Errorf("%v: normalized loss %.6g, want close to %.6g", c, got, want)
		}
		back := n.Denormalize(s)
		if got, want := back.Loss(l), c.Loss(l); math.Abs(got-want) > 1e-9 {
			t.Errorf("%v: round trip loss %.6g, want %.6g", c, got, want)
		}
	}
}
