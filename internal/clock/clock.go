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

// Package clock provides the single monotonic time source used to stamp
// slot headers. The source repository this system was ported from mixes
// CLOCK_MONOTONIC and CLOCK_REALTIME across publishers; this port picks
// monotonic only and never mixes the two.
package clock

import "time"

// start anchors all readings so Monotonic never depends on wall-clock time.
var start = time.Now()

// Monotonic returns nanoseconds elapsed since process start, sourced from
// Go's monotonic clock reading. It never regresses within a process and is
// never derived from wall-clock (CLOCK_REALTIME) time.
func Monotonic() int64 {
	return int64(time.Since(start))
}
