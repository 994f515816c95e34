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
	"testing"
	"unsafe"
)

func unsafeBase(mem []byte) unsafe.Pointer { return unsafe.Pointer(&mem[0]) }

func TestWireStructSizes(t *testing.T) {
	if regionHeaderSize != 32 {
		t.Errorf("regionHeader size = %d, want 32", regionHeaderSize)
	}
	if topicEntrySize != 96 {
		t.Errorf("topicTableEntry size = %d, want 96", topicEntrySize)
	}
	if ringDescSize != 64 {
		t.Errorf("ringDescriptor size = %d, want 64", ringDescSize)
	}
	if slotHeaderSize != 24 {
		t.Errorf("slotHeader size = %d, want 24", slotHeaderSize)
	}
}

func TestTopicViewNameRoundTrip(t *testing.T) {
	mem := make([]byte, topicEntrySize)
	tv := topicView{base: unsafeBase(mem), offset: 0}

	tv.SetName("events")
	if got := tv.Name(); got != "events" {
		t.Fatalf("Name() = %q, want %q", got, "events")
	}

	tv.SetName("")
	if got := tv.Name(); got != "" {
		t.Fatalf("Name() = %q, want empty string", got)
	}
}

func TestHeaderViewFields(t *testing.T) {
	mem := make([]byte, regionHeaderSize)
	hv := headerView{base: unsafeBase(mem)}

	hv.SetMagic(regionMagic)
	if got := hv.Magic(); got != regionMagic {
		t.Fatalf("Magic() = %v, want %v", got, regionMagic)
	}

	hv.SetVersion(3)
	if hv.Version() != 3 {
		t.Fatalf("Version() = %d, want 3", hv.Version())
	}

	hv.SetMmapSize(1 << 20)
	if hv.MmapSize() != 1<<20 {
		t.Fatalf("MmapSize() = %d, want %d", hv.MmapSize(), 1<<20)
	}

	hv.SetTopicTableOffset(64)
	if hv.TopicTableOffset() != 64 {
		t.Fatalf("TopicTableOffset() = %d, want 64", hv.TopicTableOffset())
	}

	hv.SetTopicCount(5)
	if hv.TopicCount() != 5 {
		t.Fatalf("TopicCount() = %d, want 5", hv.TopicCount())
	}
}

func TestRingViewFetchAddHead(t *testing.T) {
	mem := make([]byte, ringDescSize)
	rv := ringView{base: unsafeBase(mem), offset: 0}

	if got := rv.FetchAddHead(1); got != 0 {
		t.Fatalf("first FetchAddHead = %d, want 0", got)
	}
	if got := rv.FetchAddHead(1); got != 1 {
		t.Fatalf("second FetchAddHead = %d, want 1", got)
	}
	if got := rv.LoadHead(); got != 2 {
		t.Fatalf("LoadHead() = %d, want 2", got)
	}
}

func TestSlotViewPayloadRoundTrip(t *testing.T) {
	const slotSize = slotHeaderSize + 16
	mem := make([]byte, slotSize)
	sv := slotView{base: unsafeBase(mem), offset: 0, slotSize: uint64(slotSize)}

	if sv.PayloadCapacity() != 16 {
		t.Fatalf("PayloadCapacity() = %d, want 16", sv.PayloadCapacity())
	}

	payload := []byte("0123456789abcdef")
	sv.WritePayload(payload)
	sv.WriteMeta(uint32(len(payload)), 7, 42)
	sv.StoreSeq(1)

	if sv.LoadSeq() != 1 {
		t.Fatalf("LoadSeq() = %d, want 1", sv.LoadSeq())
	}
	if sv.PayloadLen() != uint32(len(payload)) {
		t.Fatalf("PayloadLen() = %d, want %d", sv.PayloadLen(), len(payload))
	}
	if sv.PubID() != 7 {
		t.Fatalf("PubID() = %d, want 7", sv.PubID())
	}
	if sv.TimestampNs() != 42 {
		t.Fatalf("TimestampNs() = %d, want 42", sv.TimestampNs())
	}

	out := make([]byte, len(payload))
	n := sv.ReadPayload(out, int(sv.PayloadLen()))
	if n != len(payload) {
		t.Fatalf("ReadPayload returned %d, want %d", n, len(payload))
	}
	if string(out) != string(payload) {
		t.Fatalf("ReadPayload = %q, want %q", out, payload)
	}
}
