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

package region

import "unsafe"

// Topic is a typed handle to one topic's ring descriptor and slot array.
// It is the only reference pubsub needs; it never exposes a raw pointer.
type Topic struct {
	name            string
	ringType        RingType
	ring            ringView
	base            unsafe.Pointer
	slotArrayOffset uint64
	slotCount       uint64
	slotSize        uint64
	mask            uint64
}

// Name returns the topic's name as stored in the topic table.
func (t *Topic) Name() string { return t.name }

// Type returns SWMR or MWMR.
func (t *Topic) Type() RingType { return t.ringType }

// SlotCount returns the topic's ring capacity in slots (a power of two).
func (t *Topic) SlotCount() uint64 { return t.slotCount }

// Mask returns slotCount-1, valid because slotCount is a power of two.
func (t *Topic) Mask() uint64 { return t.mask }

// PayloadCapacity returns the maximum payload size a message may carry.
func (t *Topic) PayloadCapacity() int {
	return int(t.slotSize) - slotHeaderSize
}

// LoadHead performs an acquire-load of w_head.
func (t *Topic) LoadHead() uint64 { return t.ring.LoadHead() }

// FetchAddHead atomically reserves delta sequences, returning the value of
// w_head prior to the reservation. No two callers ever observe the same
// prior value.
func (t *Topic) FetchAddHead(delta uint64) uint64 { return t.ring.FetchAddHead(delta) }

// Slot returns a handle to the slot at the given ring index (already
// masked by the caller via Mask()).
func (t *Topic) Slot(index uint64) Slot {
	return Slot{v: slotView{
		base:     t.base,
		offset:   t.slotArrayOffset + index*t.slotSize,
		slotSize: t.slotSize,
	}}
}

// Slot is a typed reference to a single slot: header plus payload area.
type Slot struct{ v slotView }

// LoadSeq is an acquire-load of the slot's commit sequence. seq == 0 means
// the slot has never been written.
func (s Slot) LoadSeq() uint64 { return s.v.LoadSeq() }

// StoreSeq is a release-store of the commit sequence. It must be the last
// field a publisher writes, after WritePayload and WriteMeta.
func (s Slot) StoreSeq(seq uint64) { s.v.StoreSeq(seq) }

// WriteMeta stores payload_len, pub_id, and timestamp_ns with ordinary
// stores. Must happen before StoreSeq.
func (s Slot) WriteMeta(payloadLen uint32, pubID uint16, timestampNs int64) {
	s.v.WriteMeta(payloadLen, pubID, timestampNs)
}

// WritePayload copies data into the slot's payload area. Must happen
// before WriteMeta/StoreSeq.
func (s Slot) WritePayload(data []byte) { s.v.WritePayload(data) }

// ReadPayload copies up to n payload bytes into buf and returns the count
// copied.
func (s Slot) ReadPayload(buf []byte, n int) int { return s.v.ReadPayload(buf, n) }

// PayloadCapacity returns the slot's payload byte capacity.
func (s Slot) PayloadCapacity() int { return s.v.PayloadCapacity() }

// PayloadLen returns the last-committed payload length.
func (s Slot) PayloadLen() uint32 { return s.v.PayloadLen() }

// PubID returns the last-committed publisher id.
func (s Slot) PubID() uint16 { return s.v.PubID() }

// TimestampNs returns the last-committed monotonic timestamp.
func (s Slot) TimestampNs() int64 { return s.v.TimestampNs() }

// TopicInfo is a read-only snapshot of a topic's configuration and current
// ring state, used by diagnostics (usrl-inspect) and health reporting.
type TopicInfo struct {
	Name      string
	Type      RingType
	SlotCount uint64
	SlotSize  uint64
	WHead     uint64
}
