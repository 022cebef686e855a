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

// Package checks contains parameter checks for the RDP accounting routines.
package checks

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
)

// ErrDomain is wrapped by every error returned from this package. Callers can
// classify validation failures with errors.Is(err, checks.ErrDomain).
var ErrDomain = errors.New("parameter out of domain")

// CheckSigma returns an error if σ is nonpositive, NaN or ±∞.
func CheckSigma(label string, sigma float64) error {
	if sigma <= 0 || math.IsInf(sigma, 0) || math.IsNaN(sigma) {
		return fmt.Errorf("%w: %s: Sigma is %f, must be strictly positive and finite", ErrDomain, label, sigma)
	}
	return nil
}

// CheckDeltaStrict returns an error if δ is outside the open interval (0,1).
// The RDP→DP conversion divides by ln(1/δ), so the interval boundaries are
// rejected rather than producing a degenerate ε.
func CheckDeltaStrict(label string, delta float64) error {
	if math.IsNaN(delta) {
		return fmt.Errorf("%w: %s: Delta is %e, cannot be NaN", ErrDomain, label, delta)
	}
	if delta <= 0 {
		return fmt.Errorf("%w: %s: Delta is %e, must be strictly positive", ErrDomain, label, delta)
	}
	if delta >= 1 {
		return fmt.Errorf("%w: %s: Delta is %e, must be strictly less than 1", ErrDomain, label, delta)
	}
	return nil
}

// CheckLambda returns an error if the moment order λ is smaller than 1. The
// moment bound at λ is the Rényi divergence of order λ+1, so λ ≥ 1 keeps the
// Rényi order strictly above 1.
func CheckLambda(label string, lambda int) error {
	if lambda < 1 {
		return fmt.Errorf("%w: %s: Lambda is %d, must be at least 1", ErrDomain, label, lambda)
	}
	return nil
}

// CheckMaxLambda returns an error if the moment range bound is smaller than 1.
func CheckMaxLambda(label string, maxLambda int) error {
	if maxLambda < 1 {
		return fmt.Errorf("%w: %s: MaxLambda is %d, must be at least 1", ErrDomain, label, maxLambda)
	}
	return nil
}

// CheckPopulation returns an error if the population size n is smaller than 1,
// NaN or ±∞.
func CheckPopulation(label string, n float64) error {
	if n < 1 || math.IsInf(n, 0) || math.IsNaN(n) {
		return fmt.Errorf("%w: %s: N is %f, must be at least 1 and finite", ErrDomain, label, n)
	}
	return nil
}

// CheckSampleSize returns an error if the per-round sample size m is
// nonpositive, NaN, ±∞ or larger than the population size n.
func CheckSampleSize(label string, m, n float64) error {
	if m <= 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return fmt.Errorf("%w: %s: M is %f, must be strictly positive and finite", ErrDomain, label, m)
	}
	if m > n {
		return fmt.Errorf("%w: %s: M is %f, must not be larger than N (%f)", ErrDomain, label, m, n)
	}
	if m == n {
		log.Warningf("%s: M is equal to N: the sampling rate is 1 and subsampling provides no amplification", label)
	}
	return nil
}

// CheckCompositions returns an error if the composition count k is smaller
// than 1.
func CheckCompositions(label string, k int64) error {
	if k < 1 {
		return fmt.Errorf("%w: %s: K is %d, must be at least 1", ErrDomain, label, k)
	}
	return nil
}

// CheckCheckInError returns an error if the check-in displacement error is
// outside the open interval (0,1).
func CheckCheckInError(label string, e float64) error {
	if !(e > 0 && e < 1) {
		return fmt.Errorf("%w: %s: Error is %f, must be within (0, 1)", ErrDomain, label, e)
	}
	return nil
}
