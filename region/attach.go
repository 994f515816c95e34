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

// Attach opens an existing shared-memory region at path. The mapped size
// is authoritative from the OS (via fstat), never from the caller. Attach
// validates the header's magic and version before exposing the region.
func Attach(path string) (*Region, error) {
	if !platformSupported {
		return nil, newErr(KindIoError, "Attach", errUnsupportedPlatform)
	}
	if path == "" {
		return nil, newErr(KindInvalidArgs, "Attach", fmt.Errorf("empty path"))
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, newErr(KindIoError, "Attach", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, newErr(KindIoError, "Attach", err)
	}
	size := info.Size()
	if size < int64(regionHeaderSize) {
		file.Close()
		return nil, newErr(KindIoError, "Attach", fmt.Errorf("region file too small: %d bytes", size))
	}

	mem, err := mmapFile(file, int(size))
	if err != nil {
		file.Close()
		return nil, newErr(KindIoError, "Attach", err)
	}

	base := unsafe.Pointer(&mem[0])
	hdr := headerView{base: base}

	if err := validateHeader(&hdr, size); err != nil {
		munmapFile(mem)
		file.Close()
		return nil, newErr(KindIoError, "Attach", err)
	}

	topics, byName, err := bindTopics(mem)
	if err != nil {
		munmapFile(mem)
		file.Close()
		return nil, newErr(KindIoError, "Attach", err)
	}

	return &Region{
		file:   file,
		mem:    mem,
		hdr:    hdr,
		topics: topics,
		byName: byName,
		path:   path,
	}, nil
}

func validateHeader(hdr *headerView, mappedSize int64) error {
	if hdr.Magic() != regionMagic {
		return fmt.Errorf("invalid magic bytes")
	}
	if hdr.Version() != regionVersion {
		return fmt.Errorf("unsupported version %d, expected %d", hdr.Version(), regionVersion)
	}
	if hdr.MmapSize() != uint64(mappedSize) {
		return fmt.Errorf("header mmap_size %d does not match mapped file size %d", hdr.MmapSize(), mappedSize)
	}
	if hdr.TopicCount() == 0 {
		return fmt.Errorf("region has no topics")
	}
	return nil
}
