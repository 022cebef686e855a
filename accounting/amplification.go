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
)

// amplifiedRDP applies the subsampling amplification bound of Wang, Balle and
// Kasiviswanathan, "Subsampled Rényi Differential Privacy and Analytical
// Moments Accountant" (Theorem 9, https://arxiv.org/abs/1808.00087), at Rényi
// order a ≥ 2 with sampling rate gamma.
//
// base[j] must hold the unamplified Rényi divergence of order j of the inner
// mechanism for j = 2..a. The binomial series is summed in log space; its
// leading term is the j ∈ {0,1} contribution, which is exactly 1.
func amplifiedRDP(a int, gamma float64, base []float64) (float64, error) {
	logGamma := math.Log(gamma)
	moments := make([]float64, 0, a)
	moments = append(moments, 0)

	expEps2 := math.Exp(base[2])
	if math.IsInf(expEps2, 1) {
		return 0, fmt.Errorf("%w: exp of the order-2 divergence %f at order %d", ErrOverflow, base[2], a)
	}
	minTerm := math.Min(4*expEps2-4, 2*expEps2)
	moments = append(moments, 2*logGamma+logBinom(a, 2)+math.Log(minTerm))

	for j := 3; j <= a; j++ {
		moments = append(moments, float64(j)*logGamma+logBinom(a, j)+float64(j-1)*base[j])
	}

	logE, err := logSumExp(moments)
	if err != nil {
		return 0, fmt.Errorf("subsampling amplification at order %d: %w", a, err)
	}
	return logE / float64(a-1), nil
}
