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

// Package accounting converts Rényi differential privacy (RDP) bounds of
// Gaussian-noise mechanisms into (ε,δ)-differential privacy guarantees.
//
// Four mechanisms are supported: the subsampled Gaussian mechanism
// (SubsampledGaussian), the shuffled Gaussian mechanism (ShuffledGaussian),
// the subsampled-and-shuffled Gaussian mechanism (SubsampledShuffledGaussian)
// and the shuffled check-in Gaussian mechanism (ShuffledCheckIn). Each
// mechanism exposes its per-round moment bound α(λ), the Rényi divergence of
// order λ+1 between the mechanism's output distributions on adjacent inputs,
// via the MomentBound interface.
//
// Since RDP composes additively, k rounds of a mechanism satisfy
// (ε,δ)-differential privacy with
//
//	ε = k·α(λ) + ln(1/δ)/λ
//
// for every moment order λ ≥ 1. The accountant minimizes ε over λ in one of
// two ways: Prepare followed by Epsilon computes α over the integer range
// [1, MaxLambda] once and scans the resulting table for each (δ, k) query,
// while EpsilonFast exploits the unimodality of ε in λ to locate the optimum
// with a bracketing and ternary search, without materializing a table.
//
// The moment bounds involve binomial- and multinomial-weighted exponential
// series over populations that may reach 10⁵–10⁶ users; all series are
// evaluated in log space, and computations that leave the float64 range
// report ErrOverflow instead of returning a silently wrong ε.
package accounting
