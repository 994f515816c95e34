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

// Package region implements the shared-memory region layout: the header,
// topic table, ring descriptors, and slot arrays that make up a mapped
// USRL region, plus the builder and attacher that create and open one.
//
// All pointer arithmetic into the mapped region is confined to this
// package's typed views (headerView, topicView, ringView, slotView).
// Callers outside region never see a raw pointer or byte offset.
package region

// AlignUp rounds size up to the next multiple of boundary. boundary must be
// a power of two.
func AlignUp(size, boundary uint64) uint64 {
	return (size + boundary - 1) &^ (boundary - 1)
}

// IsPow2 reports whether n is a nonzero power of two.
func IsPow2(n uint64) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPow2 returns the smallest power of two >= n, with a floor of 1.
func NextPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	if IsPow2(n) {
		return n
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

const (
	// MinRegionSize is the smallest byte size Build will accept.
	MinRegionSize = 4096
	// MaxTopicNameLen is the usable length of a topic name; longer names
	// are truncated at this length with a NUL terminator.
	MaxTopicNameLen = 63
	// cacheLine is the alignment used for the topic table, ring descriptor
	// array, and each topic's slot array, matching the ring descriptor's
	// own cache-line size to prevent false sharing between topics.
	cacheLine = 64
)

// topicLayout captures the computed placement for a single configured
// topic after the region builder's single layout pass.
type topicLayout struct {
	cfg             TopicConfig
	slotCount       uint64
	slotSize        uint64
	ringDescOffset  uint64
	slotArrayOffset uint64
}

// computedLayout is the result of laying out a full region for a set of
// topic configs, leaves first: header, topic table, ring descriptors, then
// slot arrays.
type computedLayout struct {
	topicTableOffset    uint64
	ringDescArrayOffset uint64
	topics              []topicLayout
	totalSize           uint64
}

// computeLayout performs a single pass over the topic configs to place the
// topic table, ring descriptor array, and each topic's slot array. It
// never mutates memory; Build uses the result to both size the backing
// file and initialize it.
func computeLayout(topics []TopicConfig) (*computedLayout, *Error) {
	if len(topics) == 0 {
		return nil, newErr(KindInvalidConfig, "computeLayout", errNoTopics)
	}

	seen := make(map[string]struct{}, len(topics))
	tls := make([]topicLayout, 0, len(topics))

	topicTableOffset := AlignUp(uint64(regionHeaderSize), cacheLine)
	ringDescArrayOffset := AlignUp(topicTableOffset+uint64(len(topics))*uint64(topicEntrySize), cacheLine)
	running := AlignUp(ringDescArrayOffset+uint64(len(topics))*uint64(ringDescSize), cacheLine)

	for i, cfg := range topics {
		name := truncateName(cfg.Name)
		if _, dup := seen[name]; dup {
			return nil, newErr(KindInvalidConfig, "computeLayout", errDuplicateName(name))
		}
		seen[name] = struct{}{}

		if cfg.SlotCount < 1 {
			return nil, newErr(KindInvalidConfig, "computeLayout", errBadSlotCount(cfg.Name))
		}
		if cfg.PayloadSize < 0 {
			return nil, newErr(KindInvalidConfig, "computeLayout", errPayloadTooBig(cfg.Name))
		}
		slotCount := NextPow2(uint64(cfg.SlotCount))
		slotSize := AlignUp(uint64(slotHeaderSize+cfg.PayloadSize), 8)
		payloadCap := slotSize - uint64(slotHeaderSize)
		if uint64(cfg.PayloadSize) > payloadCap {
			return nil, newErr(KindInvalidConfig, "computeLayout", errPayloadTooBig(cfg.Name))
		}

		tl := topicLayout{
			cfg:             cfg,
			slotCount:       slotCount,
			slotSize:        slotSize,
			ringDescOffset:  ringDescArrayOffset + uint64(i)*uint64(ringDescSize),
			slotArrayOffset: running,
		}
		tls = append(tls, tl)

		footprint := slotCount * slotSize
		running = AlignUp(running+footprint, cacheLine)
	}

	return &computedLayout{
		topicTableOffset:    topicTableOffset,
		ringDescArrayOffset: ringDescArrayOffset,
		topics:              tls,
		totalSize:           running,
	}, nil
}

func truncateName(name string) string {
	if len(name) > MaxTopicNameLen {
		return name[:MaxTopicNameLen]
	}
	return name
}
