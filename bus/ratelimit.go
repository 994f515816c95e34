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

package bus

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/vedarsh/usrl-core/pubsub"
)

// RateLimit is golang.org/x/time/rate.Limit, re-exported so callers don't
// need to import the rate package themselves for the common case.
type RateLimit = rate.Limit

// RateLimitedPublisher decorates a Publisher with a token-bucket limiter.
// It never touches the lock-free publish path itself; it only delays the
// call to Publish. This is the backpressure policy layer, not core.
type RateLimitedPublisher struct {
	inner   pubsub.Publisher
	limiter *rate.Limiter
}

// NewRateLimitedPublisher wraps inner with a limiter allowing r events per
// second and bursts of up to burst.
func NewRateLimitedPublisher(inner pubsub.Publisher, r RateLimit, burst int) *RateLimitedPublisher {
	return &RateLimitedPublisher{inner: inner, limiter: rate.NewLimiter(r, burst)}
}

// Publish blocks until the limiter admits one token, then delegates to
// the wrapped publisher.
func (p *RateLimitedPublisher) Publish(payload []byte) error {
	if err := p.limiter.Wait(context.Background()); err != nil {
		return err
	}
	return p.inner.Publish(payload)
}
