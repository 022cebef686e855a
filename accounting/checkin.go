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

	"github.com/google/shuffle-gaussian-accounting/checks"
)

// defaultCheckInError is the displacement fraction of the check-in pool used
// when ShuffledCheckInOptions.Error is unset.
const defaultCheckInError = 0.5

// ShuffledCheckIn is the moment accountant of the approximate shuffled
// check-in Gaussian mechanism: each round, each of the n users independently
// checks in with probability m/n, and the reports of the users that checked
// in are shuffled before aggregation. The number of check-ins concentrates
// around m; the bound combines a branch where at least (1-err)·m users
// checked in with a Chernoff-discounted single-user branch covering the
// complementary event.
//
// Not thread-safe.
type ShuffledCheckIn struct {
	sigma      float64
	n          float64
	m          float64
	gamma      float64
	checkInErr float64
	// chernoff is the log-probability bound exp(-m·err²/2) of fewer than
	// (1-err)·m check-ins.
	chernoff  float64
	displaced shuffleSeries
	single    shuffleSeries
	searchEngine
}

// ShuffledCheckInOptions contains the options necessary to initialize a
// ShuffledCheckIn.
type ShuffledCheckInOptions struct {
	Sigma float64 // Noise scale σ of each user's Gaussian report. Required.
	N     float64 // Population size. Required.
	M     float64 // Expected number of check-ins per round, at most N. Required.
	// MaxLambda is the largest moment order the table search considers.
	// Required; EpsilonFast does not use it.
	MaxLambda int
	// Error is the tolerated displacement fraction of the check-in count,
	// within (0, 1). Defaults to 0.5.
	Error float64
}

// NewShuffledCheckIn returns a new ShuffledCheckIn accountant from opt.
func NewShuffledCheckIn(opt *ShuffledCheckInOptions) (*ShuffledCheckIn, error) {
	if opt == nil {
		opt = &ShuffledCheckInOptions{}
	}
	const label = "accounting.NewShuffledCheckIn"
	if err := checks.CheckSigma(label, opt.Sigma); err != nil {
		return nil, err
	}
	if err := checks.CheckPopulation(label, opt.N); err != nil {
		return nil, err
	}
	if err := checks.CheckSampleSize(label, opt.M, opt.N); err != nil {
		return nil, err
	}
	if err := checks.CheckMaxLambda(label, opt.MaxLambda); err != nil {
		return nil, err
	}
	e := opt.Error
	if e == 0 {
		e = defaultCheckInError
	}
	if err := checks.CheckCheckInError(label, e); err != nil {
		return nil, err
	}

	displacedN := math.Floor((1-e)*opt.M) + 1
	sc := &ShuffledCheckIn{
		sigma:      opt.Sigma,
		n:          opt.N,
		m:          opt.M,
		gamma:      opt.M / opt.N,
		checkInErr: e,
		chernoff:   -opt.M * e * e / 2,
		displaced:  shuffleSeries{sigma: opt.Sigma, n: displacedN},
		single:     shuffleSeries{sigma: opt.Sigma, n: 1},
	}
	sc.searchEngine = searchEngine{
		label:       "accounting.ShuffledCheckIn",
		maxLambda:   opt.MaxLambda,
		fastCeiling: shuffleFastMaxLambda,
		bound:       sc.Bound,
	}
	return sc, nil
}

// Bound returns the moment bound α(λ) of the shuffled check-in mechanism at
// Rényi order a = λ+1: the log-sum-exp of the Chernoff-discounted
// single-user branch and the displaced-population branch, both amplified by
// the check-in rate γ = m/n, divided by a-1.
func (sc *ShuffledCheckIn) Bound(lambda int) (float64, error) {
	if err := checks.CheckLambda("accounting.ShuffledCheckIn.Bound", lambda); err != nil {
		return 0, err
	}
	a := lambda + 1

	singleBase, err := sc.single.upTo(a)
	if err != nil {
		return 0, err
	}
	singleAmp, err := amplifiedRDP(a, sc.gamma, singleBase)
	if err != nil {
		return 0, err
	}

	displacedBase, err := sc.displaced.upTo(a)
	if err != nil {
		return 0, err
	}
	displacedAmp, err := amplifiedRDP(a, sc.gamma, displacedBase)
	if err != nil {
		return 0, err
	}

	am1 := float64(a - 1)
	s, err := logSumExp([]float64{am1*singleAmp + sc.chernoff, am1 * displacedAmp})
	if err != nil {
		return 0, fmt.Errorf("check-in branch combination at order %d: %w", a, err)
	}
	return s / am1, nil
}
