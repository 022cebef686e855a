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

import "errors"

var (
	// ErrNotPrepared is wrapped by errors returned from table queries that
	// are issued before a successful Prepare call. The table is never built
	// implicitly: preparation is expensive and stays under caller control.
	ErrNotPrepared = errors.New("moment table is not prepared")

	// ErrOverflow is wrapped by errors reported when an intermediate
	// computation leaves the representable float64 range.
	ErrOverflow = errors.New("numeric overflow")
)

// EpsilonResult is the outcome of minimizing the converted DP guarantee over
// the moment order.
type EpsilonResult struct {
	// Epsilon is the smallest ε found for the queried (δ, k).
	Epsilon float64
	// Lambda is the moment order achieving Epsilon. Table searches always
	// return an integral value inside [1, MaxLambda].
	Lambda float64
}

// MomentBound is the per-round Rényi moment bound of a mechanism. Bound
// returns α(λ), the Rényi divergence of order λ+1 between the mechanism's
// output distributions on adjacent inputs, before composition.
//
// All four mechanism types in this package implement MomentBound.
type MomentBound interface {
	Bound(lambda int) (float64, error)
}
