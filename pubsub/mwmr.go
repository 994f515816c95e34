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

package pubsub

import (
	"github.com/vedarsh/usrl-core/internal/backoff"
	"github.com/vedarsh/usrl-core/internal/clock"
	"github.com/vedarsh/usrl-core/region"
)

// DefaultMWMRSpinLimit bounds the safety spin in Publish before it gives
// up with a Timeout. It exists solely to prevent livelock when a lagging
// writer has died mid-write; it is not expected to trip under healthy
// load.
const DefaultMWMRSpinLimit = 100_000

// MWMRPublisher implements the multi-writer/multi-reader publish
// algorithm: it extends SWMR with a per-slot generation
// check so concurrent reservers can never collide with a lagging prior
// writer.
type MWMRPublisher struct {
	topic     *region.Topic
	pubID     uint16
	spinLimit uint64
}

// Publish reserves a sequence, waits for the target slot to belong to a
// strictly earlier generation (or be untouched), then writes and commits.
// Publishers never wait on readers; the safety spin only ever waits on
// another writer finishing its own commit.
func (p *MWMRPublisher) Publish(payload []byte) error {
	if p.topic == nil {
		return invalidArgs("MWMRPublisher.Publish", errNilTopic)
	}
	if len(payload) > p.topic.PayloadCapacity() {
		return payloadTooLarge("MWMRPublisher.Publish")
	}

	prior := p.topic.FetchAddHead(1)
	commit := prior + 1
	slotCount := p.topic.SlotCount()
	index := (commit - 1) & p.topic.Mask()
	slot := p.topic.Slot(index)

	limit := p.spinLimit
	if limit == 0 {
		limit = DefaultMWMRSpinLimit
	}

	var bo backoff.Policy
	for {
		current := slot.LoadSeq()
		// Safe to overwrite iff the resident message was never written,
		// or belongs to a strictly earlier generation. Comparing
		// commit/slotCount against current/slotCount is wrap-safe for
		// 64-bit sequences, unlike a naive commit-current>=slotCount
		// difference test.
		if current == 0 || current/slotCount < commit/slotCount {
			break
		}
		if bo.Iterations() >= limit {
			// The reserved sequence is leaked: this slot's seq will never
			// be updated for this generation. Subscribers skip over it
			// naturally via the overrun rule.
			return timeoutErr("MWMRPublisher.Publish")
		}
		bo.Backoff()
	}

	slot.WritePayload(payload)
	slot.WriteMeta(uint32(len(payload)), p.pubID, clock.Monotonic())
	slot.StoreSeq(commit)
	return nil
}
