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

package clock

import "testing"

func TestMonotonicNonNegative(t *testing.T) {
	if got := Monotonic(); got < 0 {
		t.Fatalf("Monotonic() = %d, want >= 0", got)
	}
}

func TestMonotonicNeverGoesBackward(t *testing.T) {
	prev := Monotonic()
	for i := 0; i < 1000; i++ {
		next := Monotonic()
		if next < prev {
			t.Fatalf("Monotonic() went backward: %d then %d", prev, next)
		}
		prev = next
	}
}
