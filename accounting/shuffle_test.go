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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// With a single user the shuffle is a no-op and the partition series
// degenerates to its single-partition term, the plain Gaussian divergence
// (λ+1)/(2σ²).
func TestShuffledGaussianSingleUserMatchesPlainGaussian(t *testing.T) {
	for _, sigma := range []float64{0.5, 1, 2, 8} {
		sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: sigma, N: 1, MaxLambda: 10})
		if err != nil {
			t.Fatalf("NewShuffledGaussian(σ=%f) returned error %v", sigma, err)
		}
		for lambda := 1; lambda <= 10; lambda++ {
			got, err := sg.Bound(lambda)
			if err != nil {
				t.Fatalf("Bound(%d) returned error %v", lambda, err)
			}
			want := float64(lambda+1) / (2 * sigma * sigma)
			if math.Abs(got-want) > 1e-10 {
				t.Errorf("Bound(σ=%f, λ=%d): got %g, want %g", sigma, lambda, got, want)
			}
		}
	}
}

func TestShuffledGaussianBoundNonDecreasing(t *testing.T) {
	sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: 1, N: 1000, MaxLambda: 15})
	if err != nil {
		t.Fatalf("NewShuffledGaussian returned error %v", err)
	}
	prev := 0.0
	for lambda := 1; lambda <= 15; lambda++ {
		alpha, err := sg.Bound(lambda)
		if err != nil {
			t.Fatalf("Bound(%d) returned error %v", lambda, err)
		}
		if alpha < 0 {
			t.Errorf("Bound(%d): got negative divergence %g", lambda, alpha)
		}
		if alpha < prev-1e-12 {
			t.Errorf("Bound(%d): divergence dropped from %g to %g", lambda, prev, alpha)
		}
		prev = alpha
	}
}

func TestShuffledGaussianBoundDomainError(t *testing.T) {
	sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: 1, N: 100, MaxLambda: 10})
	if err != nil {
		t.Fatalf("NewShuffledGaussian returned error %v", err)
	}
	for _, lambda := range []int{0, -1} {
		if _, err := sg.Bound(lambda); err == nil {
			t.Errorf("Bound(%d) expected a domain error", lambda)
		}
	}
}

// Scenario from the shuffle-Gaussian analysis: σ=1 over 6·10⁵ shuffled users
// with δ = 1/n. Shuffling must amplify privacy well past the unshuffled
// Gaussian guarantee, and composing more rounds must cost more ε.
func TestShuffledGaussianAmplification(t *testing.T) {
	const (
		sigma = 1.0
		n     = 6e5
	)
	delta := 1.0 / n

	sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: sigma, N: n, MaxLambda: 20})
	if err != nil {
		t.Fatalf("NewShuffledGaussian returned error %v", err)
	}
	if err := sg.Prepare(); err != nil {
		t.Fatalf("Prepare returned error %v", err)
	}

	one, err := sg.Epsilon(delta, 1)
	if err != nil {
		t.Fatalf("Epsilon(δ, 1) returned error %v", err)
	}
	if !(one.Epsilon > 0) || math.IsInf(one.Epsilon, 0) {
		t.Fatalf("Epsilon(δ, 1): got ε=%f, want finite and strictly positive", one.Epsilon)
	}
	if one.Lambda < 1 || one.Lambda > 20 {
		t.Errorf("Epsilon(δ, 1): λ is %f, want within [1, 20]", one.Lambda)
	}

	// The unshuffled Gaussian guarantee over the same moment range.
	unshuffled := math.Inf(1)
	for lambda := 1; lambda <= 20; lambda++ {
		eps := float64(lambda+1)/(2*sigma*sigma) + math.Log(1/delta)/float64(lambda)
		unshuffled = math.Min(unshuffled, eps)
	}
	if one.Epsilon >= unshuffled {
		t.Errorf("shuffled ε=%f is not smaller than the unshuffled ε=%f", one.Epsilon, unshuffled)
	}

	ten, err := sg.Epsilon(delta, 10)
	if err != nil {
		t.Fatalf("Epsilon(δ, 10) returned error %v", err)
	}
	if ten.Epsilon <= one.Epsilon {
		t.Errorf("Epsilon(δ, 10)=%f is not larger than Epsilon(δ, 1)=%f", ten.Epsilon, one.Epsilon)
	}
}

func TestShuffledGaussianDeterministic(t *testing.T) {
	sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: 2, N: 500, MaxLambda: 12})
	if err != nil {
		t.Fatalf("NewShuffledGaussian returned error %v", err)
	}
	if err := sg.Prepare(); err != nil {
		t.Fatalf("Prepare returned error %v", err)
	}
	first, err := sg.Epsilon(1e-5, 4)
	if err != nil {
		t.Fatalf("Epsilon returned error %v", err)
	}
	second, err := sg.Epsilon(1e-5, 4)
	if err != nil {
		t.Fatalf("repeated Epsilon returned error %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated query changed the result (-first +second):\n%s", diff)
	}
}

func TestShuffledGaussianNotPrepared(t *testing.T) {
	sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: 1, N: 100, MaxLambda: 10})
	if err != nil {
		t.Fatalf("NewShuffledGaussian returned error %v", err)
	}
	if _, err := sg.Epsilon(1e-4, 1); !errors.Is(err, ErrNotPrepared) {
		t.Errorf("Epsilon before Prepare: got error %v, want ErrNotPrepared", err)
	}
}

func TestShuffledGaussianFastAgreesWithTable(t *testing.T) {
	sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: 1, N: 100, MaxLambda: 40})
	if err != nil {
		t.Fatalf("NewShuffledGaussian returned error %v", err)
	}
	if err := sg.Prepare(); err != nil {
		t.Fatalf("Prepare returned error %v", err)
	}

	delta, k := 1e-4, int64(50)
	table, err := sg.Epsilon(delta, k)
	if err != nil {
		t.Fatalf("Epsilon returned error %v", err)
	}
	fast, err := sg.EpsilonFast(delta, k)
	if err != nil {
		t.Fatalf("EpsilonFast returned error %v", err)
	}
	if rel := math.Abs(table.Epsilon-fast.Epsilon) / table.Epsilon; rel > 1e-3 {
		t.Errorf("fast ε=%f deviates from table ε=%f by relative %g", fast.Epsilon, table.Epsilon, rel)
	}
}

func TestShuffledGaussianMonotoneInDelta(t *testing.T) {
	sg, err := NewShuffledGaussian(&ShuffledGaussianOptions{Sigma: 1, N: 1000, MaxLambda: 16})
	if err != nil {
		t.Fatalf("NewShuffledGaussian returned error %v", err)
	}
	if err := sg.Prepare(); err != nil {
		t.Fatalf("Prepare returned error %v", err)
	}
	prev := math.Inf(1)
	for _, delta := range []float64{1e-8, 1e-6, 1e-4, 1e-2} {
		res, err := sg.Epsilon(delta, 5)
		if err != nil {
			t.Fatalf("Epsilon(δ=%e) returned error %v", delta, err)
		}
		if res.Epsilon > prev {
			t.Errorf("ε grew from %f to %f when δ grew to %e", prev, res.Epsilon, delta)
		}
		prev = res.Epsilon
	}
}
