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
)

// expensiveOrderWarning is the Rényi order beyond which the partition series
// becomes noticeably slow to sum.
const expensiveOrderWarning = 100

// shuffleGaussRDP evaluates the Rényi divergence of order a ≥ 2 of the
// shuffled Gaussian mechanism with noise scale sigma over n shuffled users,
// via the partition series of Liew and Takahashi's shuffle-Gaussian
// analysis. Each integer
// partition (k₁,…,k_l) of a contributes its arranged multinomial weight times
// exp((Σkᵢ² - a)/(2σ²))/nᵃ; the series is summed in log space.
func shuffleGaussRDP(a int, sigma, n float64) (float64, error) {
	if a > expensiveOrderWarning {
		log.Warningf("summing the shuffle partition series at order %d; this may take a long time", a)
	}
	parts := partitions(a)
	terms := make([]float64, 0, len(parts))
	twoSigmaSq := 2 * sigma * sigma
	for _, p := range parts {
		if float64(len(p)) > n {
			continue
		}
		sq := 0
		for _, ki := range p {
			sq += ki * ki
		}
		terms = append(terms, logArrangedMultinomial(p, n)+(float64(sq)-float64(a))/twoSigmaSq-float64(a)*math.Log(n))
	}
	s, err := logSumExp(terms)
	if err != nil {
		return 0, fmt.Errorf("shuffle series at order %d: %w", a, err)
	}
	rdp := s / float64(a-1)
	// The divergence is nonnegative; values a hair below zero are series
	// round-off.
	if rdp < 0 && rdp > -1e-12 {
		rdp = 0
	}
	return rdp, nil
}

// shuffleSeries memoizes the shuffle-Gaussian divergences of one (σ, n) pair
// across orders, so that amplification series needing all orders up to a
// evaluate each partition series once instead of once per call.
type shuffleSeries struct {
	sigma float64
	n     float64
	rdps  []float64
}

// upTo returns the divergences for orders 2..a, extending the memo as needed.
// The returned slice is indexed by order (entries 0 and 1 are identically
// zero) and must not be modified.
func (s *shuffleSeries) upTo(a int) ([]float64, error) {
	if len(s.rdps) == 0 {
		s.rdps = make([]float64, 2)
	}
	for j := len(s.rdps); j <= a; j++ {
		v, err := shuffleGaussRDP(j, s.sigma, s.n)
		if err != nil {
			return nil, err
		}
		s.rdps = append(s.rdps, v)
	}
	return s.rdps, nil
}

// ShuffledGaussian is the moment accountant of the shuffled Gaussian
// mechanism: each of n users submits a report with Gaussian noise of scale σ,
// and the reports are uniformly shuffled before aggregation. Shuffling
// amplifies the per-report guarantee, so the resulting ε is smaller than that
// of a single unshuffled Gaussian report.
//
// Not thread-safe.
type ShuffledGaussian struct {
	sigma float64
	n     float64
	searchEngine
}

// ShuffledGaussianOptions contains the options necessary to initialize a
// ShuffledGaussian.
type ShuffledGaussianOptions struct {
	Sigma float64 // Noise scale σ of each user's Gaussian report. Required.
	N     float64 // Number of shuffled users. Required.
	// MaxLambda is the largest moment order the table search considers.
	// Required; EpsilonFast does not use it.
	MaxLambda int
}

// NewShuffledGaussian returns a new ShuffledGaussian accountant from opt.
func NewShuffledGaussian(opt *ShuffledGaussianOptions) (*ShuffledGaussian, error) {
	if opt == nil {
		opt = &ShuffledGaussianOptions{}
	}
	const label = "accounting.NewShuffledGaussian"
	if err := checks.CheckSigma(label, opt.Sigma); err != nil {
		return nil, err
	}
	if err := checks.CheckPopulation(label, opt.N); err != nil {
		return nil, err
	}
	if err := checks.CheckMaxLambda(label, opt.MaxLambda); err != nil {
		return nil, err
	}
	sg := &ShuffledGaussian{sigma: opt.Sigma, n: opt.N}
	sg.searchEngine = searchEngine{
		label:       "accounting.ShuffledGaussian",
		maxLambda:   opt.MaxLambda,
		fastCeiling: shuffleFastMaxLambda,
		bound:       sg.Bound,
	}
	return sg, nil
}

// Bound returns the moment bound α(λ) of the shuffled Gaussian mechanism,
// the Rényi divergence of order λ+1 of the shuffled output.
func (sg *ShuffledGaussian) Bound(lambda int) (float64, error) {
	if err := checks.CheckLambda("accounting.ShuffledGaussian.Bound", lambda); err != nil {
		return 0, err
	}
	return shuffleGaussRDP(lambda+1, sg.sigma, sg.n)
}
