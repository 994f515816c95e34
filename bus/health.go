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

package bus

import "github.com/vedarsh/usrl-core/region"

// TopicHealth snapshots one topic's ring state and, for topics this Bus
// has a live Subscriber on, that subscriber's lag and skip count.
type TopicHealth struct {
	Name         string
	Type         region.RingType
	WHead        uint64
	HasConsumer  bool
	LastSeq      uint64
	LagMessages  uint64
	SkippedTotal uint64
}

// HealthSnapshot is a point-in-time view of every topic in the Bus's
// region, suitable for feeding a metrics exporter or a status endpoint.
type HealthSnapshot struct {
	Topics []TopicHealth
}

// Health returns a snapshot of every topic's current ring state.
func (b *Bus) Health() HealthSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	infos := b.region.Describe()
	snap := HealthSnapshot{Topics: make([]TopicHealth, 0, len(infos))}
	for _, info := range infos {
		th := TopicHealth{Name: info.Name, Type: info.Type, WHead: info.WHead}
		if sub, ok := b.subscribers[info.Name]; ok {
			th.HasConsumer = true
			th.LastSeq = sub.LastSeq()
			th.SkippedTotal = sub.Skips()
			if info.WHead > sub.LastSeq() {
				th.LagMessages = info.WHead - sub.LastSeq()
			}
		}
		snap.Topics = append(snap.Topics, th)
	}
	return snap
}
