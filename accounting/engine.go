//
// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package accounting

import (
	"fmt"
	"math"

	log "github.com/golang/glog"
	"github.com/google/shuffle-gaussian-accounting/checks"
	"gonum.org/v1/gonum/floats"
)

const (
	// fastSearchMaxLambda caps the moment domain of EpsilonFast for
	// mechanisms with a closed-form moment bound.
	fastSearchMaxLambda = 512
	// shuffleFastMaxLambda caps the moment domain of EpsilonFast for the
	// partition-series mechanisms: the number of integer partitions, and with
	// it the cost of a single bound evaluation, grows superpolynomially in
	// the order. Use the table search with an explicit MaxLambda to optimize
	// beyond this cap.
	shuffleFastMaxLambda = 64
	// fastSearchMaxIterations bounds both the bracketing and the narrowing
	// loop of EpsilonFast.
	fastSearchMaxIterations = 64
)

// searchEngine minimizes the converted ε over the moment order for one
// mechanism. Mechanism types embed it, supplying their moment bound; its
// exported methods form the query surface of every mechanism.
//
// Not thread-safe: Prepare replaces the table and EpsilonFast may extend
// mechanism-side memoization. Once Prepare has succeeded the table is
// read-only, so concurrent Epsilon queries against a prepared engine are
// safe.
type searchEngine struct {
	label       string
	maxLambda   int
	fastCeiling int
	bound       func(lambda int) (float64, error)

	// table[λ-1] = α(λ) for λ in [1, maxLambda]; nil until Prepare succeeds.
	table []float64
}

// Prepare computes the moment bound for every λ in [1, MaxLambda] and stores
// the table. It must be called before Epsilon. Calling it again recomputes
// the table from scratch; a failed call leaves the previous table in place.
func (e *searchEngine) Prepare() error {
	table := make([]float64, e.maxLambda)
	for lambda := 1; lambda <= e.maxLambda; lambda++ {
		alpha, err := e.bound(lambda)
		if err != nil {
			return fmt.Errorf("%s: preparing moment %d of %d: %w", e.label, lambda, e.maxLambda, err)
		}
		table[lambda-1] = alpha
		log.V(2).Infof("%s: prepared moment %d of %d", e.label, lambda, e.maxLambda)
	}
	e.table = table
	return nil
}

// Epsilon scans the prepared moment table and returns the smallest ε
// reachable for the target δ after k compositions, together with the moment
// order achieving it. When several orders are floating-point equal, the
// smallest one is returned.
func (e *searchEngine) Epsilon(delta float64, k int64) (EpsilonResult, error) {
	if err := checks.CheckDeltaStrict(e.label, delta); err != nil {
		return EpsilonResult{}, err
	}
	if err := checks.CheckCompositions(e.label, k); err != nil {
		return EpsilonResult{}, err
	}
	if e.table == nil {
		return EpsilonResult{}, fmt.Errorf("%w: %s: call Prepare before Epsilon", ErrNotPrepared, e.label)
	}

	eps := make([]float64, len(e.table))
	for i, alpha := range e.table {
		v, err := ToEpsilon(alpha, i+1, delta, k)
		if err != nil {
			return EpsilonResult{}, fmt.Errorf("%s: moment %d: %w", e.label, i+1, err)
		}
		eps[i] = v
	}
	// MinIdx returns the first minimum, so ties resolve to the smallest order.
	best := floats.MinIdx(eps)
	lambda := best + 1
	if lambda == 1 {
		log.Warningf("%s: ε is minimized at the smallest moment λ=1", e.label)
	}
	if lambda == e.maxLambda {
		log.Warningf("%s: ε is minimized at λ=MaxLambda=%d; a larger MaxLambda may yield a smaller ε", e.label, e.maxLambda)
	}
	return EpsilonResult{Epsilon: eps[best], Lambda: float64(lambda)}, nil
}

// EpsilonFast returns the smallest ε reachable for the target δ after k
// compositions without materializing a moment table; no Prepare call is
// needed. ε(λ) = k·α(λ) + ln(1/δ)/λ is unimodal in λ for the mechanisms in
// this package, so the minimum is bracketed by doubling an upper bound and
// then narrowed by a discrete ternary search over the integer orders.
//
// For pathological configurations that break unimodality the search still
// terminates but may return a locally rather than globally optimal ε. The
// same caveat applies when the optimum sits at the search ceiling, which is
// logged as a warning.
func (e *searchEngine) EpsilonFast(delta float64, k int64) (EpsilonResult, error) {
	if err := checks.CheckDeltaStrict(e.label, delta); err != nil {
		return EpsilonResult{}, err
	}
	if err := checks.CheckCompositions(e.label, k); err != nil {
		return EpsilonResult{}, err
	}

	ceiling := e.fastCeiling
	if ceiling == 0 {
		ceiling = fastSearchMaxLambda
	}

	cache := make(map[int]float64)
	f := func(lambda int) (float64, error) {
		if v, ok := cache[lambda]; ok {
			return v, nil
		}
		alpha, err := e.bound(lambda)
		if err != nil {
			return 0, fmt.Errorf("%s: moment %d: %w", e.label, lambda, err)
		}
		v, err := ToEpsilon(alpha, lambda, delta, k)
		if err != nil {
			return 0, fmt.Errorf("%s: moment %d: %w", e.label, lambda, err)
		}
		cache[lambda] = v
		return v, nil
	}

	// Bracket: ε is decreasing left of the optimum, so double the upper
	// bound until ε stops improving.
	lo, hi := 1, 2
	for iter := 0; hi < ceiling && iter < fastSearchMaxIterations; iter++ {
		fHi, err := f(hi)
		if err != nil {
			return EpsilonResult{}, err
		}
		next := 2 * hi
		if next > ceiling {
			next = ceiling
		}
		fNext, err := f(next)
		if err != nil {
			return EpsilonResult{}, err
		}
		if fNext >= fHi {
			hi = next
			break
		}
		lo, hi = hi, next
	}

	// Narrow [lo, hi] by discrete ternary search.
	for iter := 0; hi-lo > 2 && iter < fastSearchMaxIterations; iter++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		f1, err := f(m1)
		if err != nil {
			return EpsilonResult{}, err
		}
		f2, err := f(m2)
		if err != nil {
			return EpsilonResult{}, err
		}
		if f1 <= f2 {
			hi = m2 - 1
		} else {
			lo = m1 + 1
		}
	}

	best := EpsilonResult{Epsilon: math.Inf(1)}
	for lambda := lo; lambda <= hi; lambda++ {
		v, err := f(lambda)
		if err != nil {
			return EpsilonResult{}, err
		}
		if v < best.Epsilon {
			best = EpsilonResult{Epsilon: v, Lambda: float64(lambda)}
		}
	}
	if int(best.Lambda) == ceiling {
		log.Warningf("%s: fast search stopped at the moment ceiling %d; the returned ε may not be the global minimum", e.label, ceiling)
	}
	return best, nil
}
