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

// Package backoff implements the spin/yield backoff policy used by the
// MWMR publisher's safety retry loop. It does not affect core
// correctness; it is a policy-layer concern.
package backoff

import "runtime"

// SpinThreshold is the number of tight relax-hint iterations attempted
// before falling back to an OS yield.
const SpinThreshold = 10

// Policy counts a caller's backoff steps. It enforces no iteration cap
// itself; callers compare Iterations against their own limit.
type Policy struct {
	iter uint64
}

// Backoff performs one step of the policy and reports the running
// iteration count. Every step, both within the first SpinThreshold
// iterations and after them, calls runtime.Gosched, which yields to the Go
// scheduler; no OS-level yield (sched_yield) is issued.
func (p *Policy) Backoff() uint64 {
	p.iter++
	if p.iter <= SpinThreshold {
		// A tight relax hint; Go has no portable PAUSE intrinsic, so we
		// rely on the scheduler yield which is the idiom the surrounding
		// examples (mpmc.MPMCRing) already use for spin loops.
		runtime.Gosched()
		return p.iter
	}
	runtime.Gosched()
	return p.iter
}

// Reset zeroes the iteration counter, e.g. after a successful reservation.
func (p *Policy) Reset() {
	p.iter = 0
}

// Iterations returns the number of Backoff calls made so far.
func (p *Policy) Iterations() uint64 {
	return p.iter
}
