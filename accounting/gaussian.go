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

// SubsampledGaussian is the moment accountant of the subsampled Gaussian
// mechanism: each round independently samples m of the n users and releases
// their aggregate with Gaussian noise of scale σ. The plain Gaussian
// divergence is amplified by the sampling rate γ = m/n.
//
// Not thread-safe.
type SubsampledGaussian struct {
	sigma float64
	n     float64
	m     float64
	gamma float64
	searchEngine
}

// SubsampledGaussianOptions contains the options necessary to initialize a
// SubsampledGaussian.
type SubsampledGaussianOptions struct {
	Sigma float64 // Noise scale σ of the per-round Gaussian. Required.
	N     float64 // Population size. Required.
	M     float64 // Per-round sample size, at most N. Required.
	// MaxLambda is the largest moment order the table search considers.
	// Required; EpsilonFast does not use it.
	MaxLambda int
}

// NewSubsampledGaussian returns a new SubsampledGaussian accountant from opt.
func NewSubsampledGaussian(opt *SubsampledGaussianOptions) (*SubsampledGaussian, error) {
	if opt == nil {
		opt = &SubsampledGaussianOptions{}
	}
	const label = "accounting.NewSubsampledGaussian"
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
	sg := &SubsampledGaussian{
		sigma: opt.Sigma,
		n:     opt.N,
		m:     opt.M,
		gamma: opt.M / opt.N,
	}
	sg.searchEngine = searchEngine{
		label:     "accounting.SubsampledGaussian",
		maxLambda: opt.MaxLambda,
		bound:     sg.Bound,
	}
	return sg, nil
}

// Bound returns the moment bound α(λ) of the subsampled Gaussian mechanism:
// the plain Gaussian divergence j/(2σ²) at orders j up to λ+1, run through
// the subsampling amplification series.
func (sg *SubsampledGaussian) Bound(lambda int) (float64, error) {
	if err := checks.CheckLambda("accounting.SubsampledGaussian.Bound", lambda); err != nil {
		return 0, err
	}
	a := lambda + 1
	base := make([]float64, a+1)
	twoSigmaSq := 2 * sg.sigma * sg.sigma
	for j := 2; j <= a; j++ {
		base[j] = float64(j) / twoSigmaSq
	}
	return amplifiedRDP(a, sg.gamma, base)
}
