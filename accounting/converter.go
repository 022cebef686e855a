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

// ToEpsilon converts a per-round moment bound α at moment order λ into the DP
// guarantee ε that holds with probability 1-δ after k compositions:
//
//	ε = k·α + ln(1/δ)/λ
//
// RDP composes additively, so the per-round bound is scaled by k before
// conversion. α must be the Rényi divergence of order λ+1, the convention
// every MomentBound in this package follows.
func ToEpsilon(alpha float64, lambda int, delta float64, k int64) (float64, error) {
	const label = "accounting.ToEpsilon"
	if err := checks.CheckDeltaStrict(label, delta); err != nil {
		return 0, err
	}
	if err := checks.CheckLambda(label, lambda); err != nil {
		return 0, err
	}
	if err := checks.CheckCompositions(label, k); err != nil {
		return 0, err
	}
	if alpha < 0 || math.IsNaN(alpha) {
		return 0, fmt.Errorf("%w: %s: moment bound is %f, must be nonnegative", checks.ErrDomain, label, alpha)
	}
	eps := float64(k)*alpha + math.Log(1/delta)/float64(lambda)
	if math.IsInf(eps, 0) || math.IsNaN(eps) {
		return 0, fmt.Errorf("%w: %s: ε is not finite at λ=%d for δ=%e, k=%d", ErrOverflow, label, lambda, delta, k)
	}
	return eps, nil
}
