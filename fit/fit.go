// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package fit

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/js-arias/distfit/condition"
	"github.com/js-arias/distfit/dist"
	"github.com/js-arias/distfit/scale"
)

// ErrDiverged is returned when every optimizer run
// produced non-finite losses,
// gradients,
// or parameters.
var ErrDiverged = errors.New("optimization diverged")

// defMaxIter is the default iteration cap
// of a single optimizer run.
// The cap is a soft limit:
// a capped run yields the best point found so far.
const defMaxIter = 500

// Options control a fit.
type Options struct {
	// InitTries is the number of random initializations.
	// If zero,
	// the default of the family will be used.
	InitTries int

	// OptTries is the number of optimizer runs
	// per initialization.
	// If zero,
	// the default of the family will be used.
	OptTries int

	// MaxIter is the iteration cap
	// of a single optimizer run.
	MaxIter int

	// Seed is the seed of the random initializations.
	// Fits with the same seed are deterministic.
	Seed uint64
}

func (o *Options) fill(fam Family) Options {
	var v Options
	if o != nil {
		v = *o
	}
	di, do := fam.Tries()
	if v.InitTries <= 0 {
		v.InitTries = di
	}
	if v.OptTries <= 0 {
		v.OptTries = do
	}
	if v.MaxIter <= 0 {
		v.MaxIter = defMaxIter
	}
	return v
}

// Fit returns the distribution of a family
// whose shape is the closest match
// to all the given conditions,
// on the true domain of the given scale.
//
// Conditions and structural parameters are normalized
// onto the [0,1] working domain,
// the total weighted loss and its gradient
// are minimized from one or more random initializations,
// and the best scoring candidate
// is denormalized back onto the scale.
func Fit(conds []condition.Condition, fam Family, p Params, s scale.Scale, opts *Options) (dist.Dist, error) {
	if err := checkParams(fam, p); err != nil {
		return nil, err
	}
	o := opts.fill(fam)
	np := fam.NormalizeParams(p, s)

	rng := rand.New(rand.NewSource(o.Seed))
	probe := fam.FromParams(np, fam.InitParams(np, rng))
	nc := make([]condition.Condition, len(conds))
	for i, c := range conds {
		if err := c.Validate(probe); err != nil {
			return nil, fmt.Errorf("fit: condition %d [%v]: %w", i, c, err)
		}
		nc[i] = c.Normalize(s)
	}

	toks := make([]condition.Token, len(nc))
	payloads := make([][]float64, len(nc))
	for i, c := range nc {
		toks[i], payloads[i] = c.Destructure()
	}

	loss := compiledLoss(fam, np, toks)
	f := func(x []float64) float64 {
		return loss(x, payloads)
	}
	init := func(rng *rand.Rand) []float64 {
		return fam.InitParams(np, rng)
	}

	x, _, err := multiStart(f, init, o)
	if err != nil {
		return nil, err
	}
	return fam.FromParams(np, x).Denormalize(s), nil
}

// runResult is the outcome of an independent optimizer run.
type runResult struct {
	x    []float64
	loss float64
	ok   bool
}

// multiStart minimizes f
// from InitTries random initializations,
// with OptTries optimizer runs per initialization,
// and returns the parameters of the run
// with the lowest final loss.
// Runs are independent
// and dispatched concurrently;
// the selection is a deterministic min-reduction
// with ties resolved by run order.
func multiStart(f func([]float64) float64, init func(*rand.Rand) []float64, o Options) ([]float64, float64, error) {
	results := make([]runResult, o.InitTries)

	var wg sync.WaitGroup
	for r := 0; r < o.InitTries; r++ {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(o.Seed + uint64(r) + 1))
			x0 := init(rng)

			var best runResult
			for t := 0; t < o.OptTries; t++ {
				x, loss, ok := minimize(f, x0, o.MaxIter)
				if ok && (!best.ok || loss < best.loss) {
					best = runResult{x: x, loss: loss, ok: true}
				}

				// Restart from a perturbation
				// of the best point of the run,
				// or from a fresh initialization
				// if every try failed so far.
				if best.ok {
					x0 = make([]float64, len(best.x))
					for i, v := range best.x {
						x0[i] = v + rng.NormFloat64()*0.1
					}
				} else {
					x0 = init(rng)
				}
			}
			results[r] = best
		}()
	}
	wg.Wait()

	best := runResult{loss: math.Inf(1)}
	for _, r := range results {
		if r.ok && r.loss < best.loss {
			best = r
			best.ok = true
		}
	}
	if !best.ok {
		return nil, 0, fmt.Errorf("fit: %w: all %d runs failed", ErrDiverged, o.InitTries)
	}
	return best.x, best.loss, nil
}

// minimize runs a single gradient based minimization of f,
// with the gradient taken by central finite differences.
// A run that produces non-finite loss or parameters
// is reported as failed;
// a run that only exhausts its iteration cap
// yields the best point found so far.
func minimize(f func([]float64) float64, x0 []float64, maxIter int) (x []float64, loss float64, ok bool) {
	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, nil)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: 1e-6,
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if res == nil {
		return nil, 0, false
	}
	if math.IsNaN(res.F) || math.IsInf(res.F, 0) {
		return nil, 0, false
	}
	for _, v := range res.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, false
		}
	}
	// An error from the iteration cap
	// or a stalled line search
	// still leaves a usable best point.
	_ = err
	return res.X, res.F, true
}
