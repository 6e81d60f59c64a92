// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package fit

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/js-arias/distfit/condition"
)

// A lossFunc is a total loss function
// specialized to a static structure:
// a family with structural parameters
// and an ordered set of condition shapes.
// It takes the optimizable parameters
// and the numeric state of each condition.
type lossFunc func(opt []float64, payloads [][]float64) float64

// lossKey is the compilation-cache key of a loss function.
// Two fits with the same family,
// structural parameters,
// and condition shapes
// share the same compiled loss.
type lossKey struct {
	family Token
	conds  string
}

// lossCache holds the compiled loss functions.
// Insertion is insert-if-absent:
// a race that builds the same function twice
// is wasteful but not incorrect.
var lossCache sync.Map

// condsKey encodes an ordered set of condition tokens
// as a comparable string.
func condsKey(toks []condition.Token) string {
	var sb strings.Builder
	for _, t := range toks {
		fmt.Fprintf(&sb, "%s/%d/%s;", t.Kind, t.N, t.Scale.Kind)
	}
	return sb.String()
}

// compiledLoss returns the loss function
// for the given static structure,
// building and caching it on first use.
func compiledLoss(fam Family, p Params, toks []condition.Token) lossFunc {
	key := lossKey{family: fam.Token(p), conds: condsKey(toks)}
	if fn, ok := lossCache.Load(key); ok {
		return fn.(lossFunc)
	}
	fn, _ := lossCache.LoadOrStore(key, buildLoss(fam, p, toks))
	return fn.(lossFunc)
}

// buildLoss builds the total weighted loss
// for a family and an ordered set of condition shapes.
// The conditions are restructured
// from their numeric state on every evaluation,
// so the same compiled function serves any fit
// with the same static structure.
func buildLoss(fam Family, p Params, toks []condition.Token) lossFunc {
	ts := make([]condition.Token, len(toks))
	copy(ts, toks)

	return func(opt []float64, payloads [][]float64) float64 {
		d := fam.FromParams(p, opt)
		total := 0.0
		for i, t := range ts {
			c, err := condition.Structure(t, payloads[i])
			if err != nil {
				return math.Inf(1)
			}
			total += c.Loss(d)
		}
		return total
	}
}
