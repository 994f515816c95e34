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
	"fmt"
	"os"
	"unsafe"
)

// BuildResult reports which of the two non-error outcomes Build produced.
type BuildResult int

const (
	// Created means this call laid out and initialized a fresh region.
	Created BuildResult = iota
	// RegionExists means a valid region was already present at path; the
	// returned Region is attached to it. This is informational, not an
	// error: concurrent attachers rely on racing to create and losing
	// gracefully.
	RegionExists
)

func (r BuildResult) String() string {
	if r == RegionExists {
		return "Exists"
	}
	return "Created"
}

// Build creates a new shared-memory region at path, sized at least size
// bytes, laid out for the given topics. If a valid region already exists
// at path, Build attaches to it instead of failing: this is the
// mandated pre-existence-is-success policy, not the
// unlink-then-create variant.
func Build(path string, size int64, topics []TopicConfig) (*Region, BuildResult, error) {
	if !platformSupported {
		return nil, Created, newErr(KindIoError, "Build", errUnsupportedPlatform)
	}
	if path == "" {
		return nil, Created, newErr(KindInvalidArgs, "Build", fmt.Errorf("empty path"))
	}
	if size < MinRegionSize {
		return nil, Created, newErr(KindInvalidArgs, "Build", fmt.Errorf("size %d below minimum %d", size, MinRegionSize))
	}

	layout, lerr := computeLayout(topics)
	if lerr != nil {
		return nil, Created, lerr
	}
	if layout.totalSize > uint64(size) {
		return nil, Created, newErr(KindOutOfSpace, "Build",
			fmt.Errorf("layout needs %d bytes, region size is %d", layout.totalSize, size))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if os.IsExist(err) {
			region, aerr := Attach(path)
			if aerr != nil {
				return nil, Created, newErr(KindIoError, "Build", aerr)
			}
			return region, RegionExists, nil
		}
		return nil, Created, newErr(KindIoError, "Build", err)
	}

	region, err := initRegion(file, path, size, layout)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, Created, newErr(KindIoError, "Build", err)
	}
	return region, Created, nil
}

// initRegion sizes the file, maps it, and writes the header, topic table,
// ring descriptors, and zeroed slot headers in leaves-first order: the
// header is written last so a concurrent Attach never observes a valid
// magic/version over a partially-initialized region.
func initRegion(file *os.File, path string, size int64, layout *computedLayout) (*Region, error) {
	if err := file.Truncate(size); err != nil {
		return nil, fmt.Errorf("truncate: %w", err)
	}

	mem, err := mmapFile(file, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	base := unsafe.Pointer(&mem[0])

	for i, tl := range layout.topics {
		tv := topicView{base: base, offset: layout.topicTableOffset + uint64(i)*uint64(topicEntrySize)}
		tv.SetName(truncateName(tl.cfg.Name))
		tv.SetRingDescOffset(tl.ringDescOffset)
		tv.SetSlotCount(uint32(tl.slotCount))
		tv.SetSlotSize(uint32(tl.slotSize))
		tv.SetRingType(tl.cfg.Type)

		rv := ringView{base: base, offset: tl.ringDescOffset}
		rv.SetSlotCount(uint32(tl.slotCount))
		rv.SetSlotSize(uint32(tl.slotSize))
		rv.SetBaseOffset(tl.slotArrayOffset)
		rv.SetHead(0)

		for s := uint64(0); s < tl.slotCount; s++ {
			sv := slotView{base: base, offset: tl.slotArrayOffset + s*tl.slotSize, slotSize: tl.slotSize}
			sv.StoreSeq(0)
		}
	}

	hdr := headerView{base: base}
	hdr.SetMagic(regionMagic)
	hdr.SetVersion(regionVersion)
	hdr.SetMmapSize(uint64(size))
	hdr.SetTopicTableOffset(layout.topicTableOffset)
	hdr.SetTopicCount(uint32(len(layout.topics)))

	topics, byName, _ := bindTopics(mem)

	return &Region{
		file:   file,
		mem:    mem,
		hdr:    hdr,
		topics: topics,
		byName: byName,
		path:   path,
	}, nil
}
