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
	"github.com/vedarsh/usrl-core/internal/clock"
	"github.com/vedarsh/usrl-core/region"
)

// SWMRPublisher implements the single-writer/multi-reader publish
// algorithm. It assumes at most one writer per topic; the
// fetch-add on w_head is only needed for monotonicity under that
// assumption, but sequentially consistent ordering is retained (Go's
// sync/atomic gives us at least acquire/release for free) so SWMR
// publishers can safely coexist with debuggers or a future multi-writer
// variant without a code change.
type SWMRPublisher struct {
	topic *region.Topic
	pubID uint16
}

// Publish reserves the next sequence, writes the payload and slot header,
// then commits by releasing the sequence. Size validation happens before
// the reservation: an oversized payload consumes no sequence.
func (p *SWMRPublisher) Publish(payload []byte) error {
	if p.topic == nil {
		return invalidArgs("SWMRPublisher.Publish", errNilTopic)
	}
	if len(payload) > p.topic.PayloadCapacity() {
		return payloadTooLarge("SWMRPublisher.Publish")
	}

	prior := p.topic.FetchAddHead(1)
	commit := prior + 1
	index := (commit - 1) & p.topic.Mask()

	slot := p.topic.Slot(index)
	slot.WritePayload(payload)
	slot.WriteMeta(uint32(len(payload)), p.pubID, clock.Monotonic())
	// Release-store: the last field written, making the slot visible.
	slot.StoreSeq(commit)
	return nil
}
