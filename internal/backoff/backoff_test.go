/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package backoff

import "testing"

func TestPolicyIterationsIncrement(t *testing.T) {
	var p Policy
	if p.Iterations() != 0 {
		t.Fatalf("Iterations() = %d, want 0 before any Backoff call", p.Iterations())
	}
	for i := uint64(1); i <= 25; i++ {
		if got := p.Backoff(); got != i {
			t.Fatalf("Backoff() = %d, want %d", got, i)
		}
	}
	if p.Iterations() != 25 {
		t.Fatalf("Iterations() = %d, want 25", p.Iterations())
	}
}

func TestPolicyReset(t *testing.T) {
	var p Policy
	p.Backoff()
	p.Backoff()
	p.Reset()
	if p.Iterations() != 0 {
		t.Fatalf("Iterations() = %d after Reset, want 0", p.Iterations())
	}
}

func TestPolicyZeroValueUsable(t *testing.T) {
	var p Policy
	p.Backoff()
}
