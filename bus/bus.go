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

// Package bus is the façade over region and pubsub: one Bus owns one
// mapped region and hands out cached Publishers and Subscribers per
// topic, the way a listener owns one segment per address.
package bus

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/vedarsh/usrl-core/config"
	"github.com/vedarsh/usrl-core/pubsub"
	"github.com/vedarsh/usrl-core/region"
)

// Bus owns a region and lazily creates one Publisher and one Subscriber
// per topic name on first use, caching both for the lifetime of the Bus.
// All publishers created by one Bus share the same pub_id, derived once
// from the host and process id: pub_id identifies a writer process, not
// an individual topic.
type Bus struct {
	region *region.Region
	logger zerolog.Logger
	pubID  uint16

	mu          sync.Mutex
	publishers  map[string]pubsub.Publisher
	subscribers map[string]*pubsub.Subscriber
}

// Open builds (or attaches to) the region described by cfg and returns a
// ready-to-use Bus. A zero-value logger disables logging entirely.
func Open(cfg *config.Config, logger zerolog.Logger) (*Bus, error) {
	topics, err := cfg.RegionTopics()
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}

	r, result, err := region.Build(cfg.RegionPath, cfg.RegionSize, topics)
	if err != nil {
		return nil, fmt.Errorf("bus: open region: %w", err)
	}

	logger.Info().
		Str("path", cfg.RegionPath).
		Str("result", result.String()).
		Int("topics", r.TopicCount()).
		Msg("region opened")

	return &Bus{
		region:      r,
		logger:      logger,
		pubID:       derivePubID(),
		publishers:  make(map[string]pubsub.Publisher),
		subscribers: make(map[string]*pubsub.Subscriber),
	}, nil
}

// derivePubID hashes the host name and process id into a stable 16-bit
// publisher identity, so slot metadata can be traced back to the process
// that wrote it without a separate registration step.
func derivePubID() uint16 {
	host, _ := os.Hostname()
	sum := xxhash.Sum64String(fmt.Sprintf("%s:%d", host, os.Getpid()))
	return uint16(sum)
}

// Send publishes payload to topic, creating and caching a Publisher for
// it on first use.
func (b *Bus) Send(topic string, payload []byte) error {
	pub, err := b.publisherFor(topic)
	if err != nil {
		return err
	}
	if err := pub.Publish(payload); err != nil {
		b.logger.Warn().Str("topic", topic).Err(err).Msg("publish failed")
		return err
	}
	return nil
}

// Recv reads at most one message from topic into buf, creating and
// caching a Subscriber for it on first use.
func (b *Bus) Recv(topic string, buf []byte) (pubsub.Message, pubsub.Result, error) {
	sub, err := b.subscriberFor(topic)
	if err != nil {
		return pubsub.Message{}, pubsub.Empty, err
	}
	msg, result, err := sub.Next(buf)
	if err != nil {
		b.logger.Warn().Str("topic", topic).Err(err).Msg("consume failed")
	}
	return msg, result, err
}

// EnableRateLimit wraps topic's cached publisher with a token-bucket
// limiter (see ratelimit.go). If the topic has no cached publisher yet, it
// creates one first.
func (b *Bus) EnableRateLimit(topic string, limit RateLimit, burst int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pub, err := b.publisherForLocked(topic)
	if err != nil {
		return err
	}
	b.publishers[topic] = NewRateLimitedPublisher(pub, limit, burst)
	return nil
}

func (b *Bus) publisherFor(topic string) (pubsub.Publisher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.publisherForLocked(topic)
}

func (b *Bus) publisherForLocked(topic string) (pubsub.Publisher, error) {
	if pub, ok := b.publishers[topic]; ok {
		return pub, nil
	}
	t, err := b.region.Lookup(topic)
	if err != nil {
		return nil, err
	}
	pub, err := pubsub.NewPublisher(t, b.pubID)
	if err != nil {
		return nil, err
	}
	b.publishers[topic] = pub
	return pub, nil
}

func (b *Bus) subscriberFor(topic string) (*pubsub.Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[topic]; ok {
		return sub, nil
	}
	t, err := b.region.Lookup(topic)
	if err != nil {
		return nil, err
	}
	sub, err := pubsub.NewSubscriber(t)
	if err != nil {
		return nil, err
	}
	b.subscribers[topic] = sub
	return sub, nil
}

// Close unmaps the underlying region. It does not remove the backing
// shared-memory object; call region.Remove out of band for that.
func (b *Bus) Close() error {
	return b.region.Close()
}
