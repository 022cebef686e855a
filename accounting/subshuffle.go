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
	"github.com/google/shuffle-gaussian-accounting/checks"
)

// SubsampledShuffledGaussian is the moment accountant of the subsampled and
// shuffled Gaussian mechanism: each round independently samples m of the n
// users, and the sampled users' Gaussian reports are shuffled before
// aggregation. The shuffle divergence over the m sampled users is amplified
// by the sampling rate γ = m/n.
//
// Not thread-safe.
type SubsampledShuffledGaussian struct {
	sigma  float64
	n      float64
	m      float64
	gamma  float64
	series shuffleSeries
	searchEngine
}

// SubsampledShuffledGaussianOptions contains the options necessary to
// initialize a SubsampledShuffledGaussian.
type SubsampledShuffledGaussianOptions struct {
	Sigma float64 // Noise scale σ of each user's Gaussian report. Required.
	N     float64 // Population size. Required.
	M     float64 // Per-round sample size, at most N. Required.
	// MaxLambda is the largest moment order the table search considers.
	// Required; EpsilonFast does not use it.
	MaxLambda int
}

// NewSubsampledShuffledGaussian returns a new SubsampledShuffledGaussian
// accountant from opt.
func NewSubsampledShuffledGaussian(opt *SubsampledShuffledGaussianOptions) (*SubsampledShuffledGaussian, error) {
	if opt == nil {
		opt = &SubsampledShuffledGaussianOptions{}
	}
	const label = "accounting.NewSubsampledShuffledGaussian"
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
	sg := &SubsampledShuffledGaussian{
		sigma:  opt.Sigma,
		n:      opt.N,
		m:      opt.M,
		gamma:  opt.M / opt.N,
		series: shuffleSeries{sigma: opt.Sigma, n: opt.M},
	}
	sg.searchEngine = searchEngine{
		label:       "accounting.SubsampledShuffledGaussian",
		maxLambda:   opt.MaxLambda,
		fastCeiling: shuffleFastMaxLambda,
		bound:       sg.Bound,
	}
	return sg, nil
}

// Bound returns the moment bound α(λ) of the subsampled shuffled Gaussian
// mechanism: the shuffle divergences over the m sampled users at orders up to
// λ+1, run through the subsampling amplification series.
func (sg *SubsampledShuffledGaussian) Bound(lambda int) (float64, error) {
	if err := checks.CheckLambda("accounting.SubsampledShuffledGaussian.Bound", lambda); err != nil {
		return 0, err
	}
	a := lambda + 1
	base, err := sg.series.upTo(a)
	if err != nil {
		return 0, err
	}
	return amplifiedRDP(a, sg.gamma, base)
}
