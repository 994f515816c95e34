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
	"os"
	"unsafe"
)

// Region is an owning handle to a mapped shared-memory region: the header,
// topic table, ring descriptors, and slot arrays it contains. Created by
// Build, opened by Attach. Ring descriptors and slot arrays are shared by
// all mappers; writers mutate them through atomics, readers read through
// acquire loads only.
type Region struct {
	file   *os.File
	mem    []byte
	hdr    headerView
	topics []*Topic
	byName map[string]*Topic
	path   string
}

// Path returns the platform-native shared-memory path this region is
// backed by.
func (r *Region) Path() string { return r.path }

// TopicCount returns the number of topics configured in this region.
func (r *Region) TopicCount() int { return len(r.topics) }

// Lookup finds a topic by name in the name index built from the topic
// table when the region was bound.
func (r *Region) Lookup(name string) (*Topic, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, newErr(KindInvalidArgs, "Lookup", errUnknownTopic(name))
	}
	return t, nil
}

// Describe returns a snapshot of every topic's configuration and current
// w_head, for diagnostics tooling (usrl-inspect) and health reporting.
func (r *Region) Describe() []TopicInfo {
	out := make([]TopicInfo, 0, len(r.topics))
	for _, t := range r.topics {
		out = append(out, TopicInfo{
			Name:      t.Name(),
			Type:      t.Type(),
			SlotCount: t.SlotCount(),
			SlotSize:  t.slotSize,
			WHead:     t.LoadHead(),
		})
	}
	return out
}

// Close unmaps the region and closes the backing file descriptor. It does
// not remove the backing shared-memory object; there is no teardown state
// in the core. Use Remove to unlink the object out of band.
func (r *Region) Close() error {
	var firstErr error
	if r.mem != nil {
		if err := munmapFile(r.mem); err != nil && firstErr == nil {
			firstErr = err
		}
		r.mem = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.file = nil
	}
	return firstErr
}

// Remove unlinks the backing shared-memory object at path. External
// tooling is expected to call this after all mappers have detached; the
// core never calls it itself.
func Remove(path string) error {
	return os.Remove(path)
}

// Exists reports whether a region already exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func errUnknownTopic(name string) error {
	return &unknownTopicError{name: name}
}

type unknownTopicError struct{ name string }

func (e *unknownTopicError) Error() string { return "unknown topic: " + e.name }

// bindTopics reads the topic table out of a validated, mapped region and
// constructs the Topic handles used by pubsub. It is shared by Build
// (after initializing a fresh region) and Attach (after validating an
// existing one).
func bindTopics(mem []byte) ([]*Topic, map[string]*Topic, error) {
	base := unsafe.Pointer(&mem[0])
	hdr := headerView{base: base}

	count := hdr.TopicCount()
	tableOff := hdr.TopicTableOffset()

	topics := make([]*Topic, 0, count)
	byName := make(map[string]*Topic, count)

	for i := uint32(0); i < count; i++ {
		tv := topicView{base: base, offset: tableOff + uint64(i)*uint64(topicEntrySize)}
		rv := ringView{base: base, offset: tv.RingDescOffset()}

		slotCount := rv.SlotCount()
		t := &Topic{
			name:            tv.Name(),
			ringType:        tv.RingType(),
			ring:            rv,
			base:            base,
			slotArrayOffset: rv.BaseOffset(),
			slotCount:       slotCount,
			slotSize:        rv.SlotSize(),
			mask:            slotCount - 1,
		}
		topics = append(topics, t)
		byName[t.name] = t
	}

	return topics, byName, nil
}
