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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
)

// partitions returns all partitions of a into positive integer parts, each
// partition in non-decreasing order. Uses Kelleher's accelerated
// ascending-composition generation, which emits every partition in constant
// amortized time.
func partitions(a int) [][]int {
	if a < 1 {
		return nil
	}
	var out [][]int
	buf := make([]int, a+1)
	k := 1
	y := a - 1
	for k != 0 {
		x := buf[k-1] + 1
		k--
		for 2*x <= y {
			buf[k] = x
			y -= x
			k++
		}
		l := k + 1
		for x <= y {
			buf[k] = x
			buf[l] = y
			out = append(out, append([]int(nil), buf[:k+2]...))
			x++
			y--
		}
		buf[k] = x + y
		y = x + y - 1
		out = append(out, append([]int(nil), buf[:k+1]...))
	}
	return out
}

// logArrangedMultinomial returns, in log space, the number of ordered
// assignments of Σparts items to n users that realize the given partition:
// the multinomial coefficient of the parts times the number of ways to
// distribute the distinct part values over the n users. The parts must be
// sorted; returns -∞ when the partition has more parts than users.
func logArrangedMultinomial(parts []int, n float64) float64 {
	if float64(len(parts)) > n {
		return math.Inf(-1)
	}
	order := 0
	for _, p := range parts {
		order += p
	}
	lg, _ := math.Lgamma(float64(order) + 1)
	for _, p := range parts {
		t, _ := math.Lgamma(float64(p) + 1)
		lg -= t
	}
	// Falling factorial n·(n-1)···(n-len+1), corrected for repeated part
	// values: assignments differing only in the order of equal parts are the
	// same assignment.
	for i := range parts {
		lg += math.Log(n - float64(i))
	}
	run := 1
	for i := 1; i <= len(parts); i++ {
		if i < len(parts) && parts[i] == parts[i-1] {
			run++
			continue
		}
		t, _ := math.Lgamma(float64(run) + 1)
		lg -= t
		run = 1
	}
	return lg
}

// logBinom returns ln C(n, k).
func logBinom(n, k int) float64 {
	return combin.LogGeneralizedBinomial(float64(n), float64(k))
}

// logSumExp returns ln Σ exp(termᵢ), delegating to gonum's shifted
// summation. A +∞ or NaN result means a term left the float64 range and is
// reported as ErrOverflow; -∞ (an empty sum) is a valid value.
func logSumExp(terms []float64) (float64, error) {
	s := floats.LogSumExp(terms)
	if math.IsInf(s, 1) || math.IsNaN(s) {
		return 0, fmt.Errorf("%w: log-sum-exp over %d terms is not finite", ErrOverflow, len(terms))
	}
	return s, nil
}
