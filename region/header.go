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

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// RingType selects the publish discipline for a topic.
type RingType uint32

const (
	// SWMR is single-writer, multi-reader.
	SWMR RingType = 0
	// MWMR is multi-writer, multi-reader.
	MWMR RingType = 1
)

func (t RingType) String() string {
	if t == MWMR {
		return "MWMR"
	}
	return "SWMR"
}

// TopicConfig describes one topic requested at build time.
type TopicConfig struct {
	Name        string
	SlotCount   int
	PayloadSize int
	Type        RingType
}

var (
	regionMagic          = [4]byte{'U', 'S', 'R', 'L'}
	regionVersion uint32 = 1

	errNoTopics = errors.New("no topics configured")
)

func errDuplicateName(name string) error {
	return fmt.Errorf("duplicate topic name %q", name)
}

func errBadSlotCount(name string) error {
	return fmt.Errorf("topic %q: slot count must be >= 1", name)
}

func errPayloadTooBig(name string) error {
	return fmt.Errorf("topic %q: payload size exceeds slot capacity", name)
}

// Byte-exact on-disk layout. Field order and sizes must match the wire format
// exactly: little-endian, naturally aligned.

// regionHeader is the fixed record at offset 0, 32 bytes.
type regionHeader struct {
	magic            [4]byte
	version          uint32
	mmapSize         uint64
	topicTableOffset uint64
	topicCount       uint32
	_pad             uint32
}

const regionHeaderSize = int(unsafe.Sizeof(regionHeader{}))

// topicTableEntry is one per configured topic, 96 bytes.
type topicTableEntry struct {
	name           [64]byte
	ringDescOffset uint64
	slotCount      uint32
	slotSize       uint32
	ringType       uint32
	_pad           [12]byte
}

const topicEntrySize = int(unsafe.Sizeof(topicTableEntry{}))

// ringDescriptor is one per topic, cache-line aligned (64 bytes). The
// reserved tail pads slotCount+slotSize+baseOffset+wHead (24 bytes) up to
// the mandated 64-byte cache-line size.
type ringDescriptor struct {
	slotCount  uint32
	slotSize   uint32
	baseOffset uint64
	wHead      uint64 // atomic, monotonic next-sequence-to-assign
	_reserved  [40]byte
}

const ringDescSize = int(unsafe.Sizeof(ringDescriptor{}))

// slotHeader is 24 bytes, 8-byte aligned; payload follows immediately.
type slotHeader struct {
	seq         uint64 // atomic
	timestampNs uint64
	payloadLen  uint32
	pubID       uint16
	_pad        uint16
}

const slotHeaderSize = int(unsafe.Sizeof(slotHeader{}))

func init() {
	// Guard the byte-exact contract at package init: these sizes are part
	// of the wire format and must never silently drift with struct field
	// reordering.
	if regionHeaderSize != 32 {
		panic(fmt.Sprintf("region: header size drifted to %d, want 32", regionHeaderSize))
	}
	if topicEntrySize != 96 {
		panic(fmt.Sprintf("region: topic entry size drifted to %d, want 96", topicEntrySize))
	}
	if ringDescSize != 64 {
		panic(fmt.Sprintf("region: ring descriptor size drifted to %d, want 64", ringDescSize))
	}
	if slotHeaderSize != 24 {
		panic(fmt.Sprintf("region: slot header size drifted to %d, want 24", slotHeaderSize))
	}
}

// headerView provides typed, offset-based access to the region header
// living inside a mapped byte slice. Besides the *View types, only Topic
// holds the mapping's base pointer, and it uses it solely to build
// slotViews.
type headerView struct {
	base unsafe.Pointer
}

func (h *headerView) ptr() *regionHeader { return (*regionHeader)(h.base) }

func (h *headerView) Magic() [4]byte  { return h.ptr().magic }
func (h *headerView) SetMagic(m [4]byte) { h.ptr().magic = m }

func (h *headerView) Version() uint32     { return atomic.LoadUint32(&h.ptr().version) }
func (h *headerView) SetVersion(v uint32) { atomic.StoreUint32(&h.ptr().version, v) }

func (h *headerView) MmapSize() uint64     { return atomic.LoadUint64(&h.ptr().mmapSize) }
func (h *headerView) SetMmapSize(v uint64) { atomic.StoreUint64(&h.ptr().mmapSize, v) }

func (h *headerView) TopicTableOffset() uint64 {
	return atomic.LoadUint64(&h.ptr().topicTableOffset)
}
func (h *headerView) SetTopicTableOffset(v uint64) {
	atomic.StoreUint64(&h.ptr().topicTableOffset, v)
}

func (h *headerView) TopicCount() uint32     { return atomic.LoadUint32(&h.ptr().topicCount) }
func (h *headerView) SetTopicCount(v uint32) { atomic.StoreUint32(&h.ptr().topicCount, v) }

// topicView provides typed access to one topic table entry.
type topicView struct {
	base   unsafe.Pointer
	offset uint64
}

func (t *topicView) ptr() *topicTableEntry {
	return (*topicTableEntry)(unsafe.Pointer(uintptr(t.base) + uintptr(t.offset)))
}

func (t *topicView) Name() string {
	raw := t.ptr().name
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}

func (t *topicView) SetName(name string) {
	var buf [64]byte
	copy(buf[:63], name)
	t.ptr().name = buf
}

func (t *topicView) RingDescOffset() uint64     { return t.ptr().ringDescOffset }
func (t *topicView) SetRingDescOffset(v uint64) { t.ptr().ringDescOffset = v }

func (t *topicView) SlotCount() uint32     { return t.ptr().slotCount }
func (t *topicView) SetSlotCount(v uint32) { t.ptr().slotCount = v }

func (t *topicView) SlotSize() uint32     { return t.ptr().slotSize }
func (t *topicView) SetSlotSize(v uint32) { t.ptr().slotSize = v }

func (t *topicView) RingType() RingType     { return RingType(t.ptr().ringType) }
func (t *topicView) SetRingType(v RingType) { t.ptr().ringType = uint32(v) }

// ringView provides typed access to a topic's ring descriptor.
type ringView struct {
	base   unsafe.Pointer
	offset uint64
}

func (r *ringView) ptr() *ringDescriptor {
	return (*ringDescriptor)(unsafe.Pointer(uintptr(r.base) + uintptr(r.offset)))
}

func (r *ringView) SlotCount() uint64     { return uint64(r.ptr().slotCount) }
func (r *ringView) SetSlotCount(v uint32) { r.ptr().slotCount = v }

func (r *ringView) SlotSize() uint64     { return uint64(r.ptr().slotSize) }
func (r *ringView) SetSlotSize(v uint32) { r.ptr().slotSize = v }

func (r *ringView) BaseOffset() uint64     { return r.ptr().baseOffset }
func (r *ringView) SetBaseOffset(v uint64) { r.ptr().baseOffset = v }

// LoadHead is an acquire-load of w_head, the next-sequence-to-assign.
func (r *ringView) LoadHead() uint64 { return atomic.LoadUint64(&r.ptr().wHead) }

// SetHead initializes w_head; only used during Build.
func (r *ringView) SetHead(v uint64) { atomic.StoreUint64(&r.ptr().wHead, v) }

// FetchAddHead atomically reserves delta sequences and returns the prior
// value of w_head, giving fetch-add uniqueness across concurrent
// reservers. Go's sync/atomic operations are sequentially consistent,
// which subsumes the acquire/release ordering the publish algorithms require.
func (r *ringView) FetchAddHead(delta uint64) uint64 {
	return atomic.AddUint64(&r.ptr().wHead, delta) - delta
}

// slotView provides typed access to one slot: header plus payload area.
type slotView struct {
	base     unsafe.Pointer
	offset   uint64
	slotSize uint64
}

func (s *slotView) hdr() *slotHeader {
	return (*slotHeader)(unsafe.Pointer(uintptr(s.base) + uintptr(s.offset)))
}

func (s *slotView) payloadPtr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(s.base) + uintptr(s.offset) + uintptr(slotHeaderSize))
}

// PayloadCapacity returns the number of payload bytes this slot can hold.
func (s *slotView) PayloadCapacity() int {
	return int(s.slotSize) - slotHeaderSize
}

// LoadSeq is an acquire-load of the slot's commit sequence.
func (s *slotView) LoadSeq() uint64 { return atomic.LoadUint64(&s.hdr().seq) }

// StoreSeq is a release-store of the slot's commit sequence; it must be
// the last field written by a publisher.
func (s *slotView) StoreSeq(v uint64) { atomic.StoreUint64(&s.hdr().seq, v) }

// WriteMeta writes payload_len, pub_id, and timestamp_ns with ordinary
// (non-atomic) stores. Callers must issue a release fence (via StoreSeq,
// which uses an atomic release store) after these writes and before the
// slot is considered committed.
func (s *slotView) WriteMeta(payloadLen uint32, pubID uint16, timestampNs int64) {
	h := s.hdr()
	h.timestampNs = uint64(timestampNs)
	h.payloadLen = payloadLen
	h.pubID = pubID
}

func (s *slotView) PayloadLen() uint32   { return s.hdr().payloadLen }
func (s *slotView) PubID() uint16        { return s.hdr().pubID }
func (s *slotView) TimestampNs() int64   { return int64(s.hdr().timestampNs) }

// WritePayload copies data into the slot's payload area. Caller must
// ensure len(data) <= PayloadCapacity().
func (s *slotView) WritePayload(data []byte) {
	if len(data) == 0 {
		return
	}
	dst := unsafe.Slice((*byte)(s.payloadPtr()), len(data))
	copy(dst, data)
}

// ReadPayload copies up to n payload bytes into buf, returning the number
// of bytes copied.
func (s *slotView) ReadPayload(buf []byte, n int) int {
	if n <= 0 {
		return 0
	}
	src := unsafe.Slice((*byte)(s.payloadPtr()), n)
	return copy(buf, src)
}
