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
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vedarsh/usrl-core/region"
)

func openTestRegion(t *testing.T, topics []region.TopicConfig) *region.Region {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.usrl")
	r, _, err := region.Build(path, 1<<20, topics)
	if err != nil {
		t.Fatalf("region.Build: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSWMRPublishSubscribeRoundTrip(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 8, PayloadSize: 32, Type: region.SWMR},
	})
	topic, err := r.Lookup("events")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	pub, err := NewPublisher(topic, 1)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	sub, err := NewSubscriber(topic)
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}

	messages := [][]byte{[]byte("hello"), []byte("world"), []byte("!")}
	for _, m := range messages {
		if err := pub.Publish(m); err != nil {
			t.Fatalf("Publish(%q): %v", m, err)
		}
	}

	buf := make([]byte, 32)
	for i, want := range messages {
		msg, result, err := sub.Next(buf)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if result != Bytes {
			t.Fatalf("message %d: result = %v, want Bytes", i, result)
		}
		if !bytes.Equal(buf[:msg.N], want) {
			t.Fatalf("message %d: got %q, want %q", i, buf[:msg.N], want)
		}
		if msg.Seq != uint64(i+1) {
			t.Fatalf("message %d: seq = %d, want %d", i, msg.Seq, i+1)
		}
		if msg.PubID != 1 {
			t.Fatalf("message %d: pubID = %d, want 1", i, msg.PubID)
		}
	}

	_, result, err := sub.Next(buf)
	if err != nil {
		t.Fatalf("Next on empty ring: %v", err)
	}
	if result != Empty {
		t.Fatalf("result = %v, want Empty", result)
	}
}

func TestSubscriberEmptyBeforeAnyPublish(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 8, PayloadSize: 32, Type: region.SWMR},
	})
	topic, _ := r.Lookup("events")
	sub, err := NewSubscriber(topic)
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}

	buf := make([]byte, 32)
	_, result, err := sub.Next(buf)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result != Empty {
		t.Fatalf("result = %v, want Empty", result)
	}
}

func TestPublishRejectsOversizedPayload(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 8, PayloadSize: 8, Type: region.SWMR},
	})
	topic, _ := r.Lookup("events")
	pub, err := NewPublisher(topic, 1)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	oversized := make([]byte, topic.PayloadCapacity()+1)
	err = pub.Publish(oversized)
	if err == nil {
		t.Fatal("expected error for oversized payload")
	}
	if k, ok := region.KindOf(err); !ok || k != region.KindPayloadTooLarge {
		t.Fatalf("Kind = %v, want KindPayloadTooLarge", k)
	}

	// Rejecting an oversized payload must not consume a sequence.
	if topic.LoadHead() != 0 {
		t.Fatalf("w_head = %d after rejected publish, want 0", topic.LoadHead())
	}
}

func TestPublishAcceptsExactCapacity(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 4, PayloadSize: 16, Type: region.SWMR},
	})
	topic, _ := r.Lookup("events")
	pub, err := NewPublisher(topic, 1)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	exact := bytes.Repeat([]byte{0xAB}, topic.PayloadCapacity())
	if err := pub.Publish(exact); err != nil {
		t.Fatalf("Publish at exact capacity: %v", err)
	}
}

func TestSubscriberOverrunSkip(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 4, PayloadSize: 16, Type: region.SWMR},
	})
	topic, _ := r.Lookup("events")
	pub, err := NewPublisher(topic, 1)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	sub, err := NewSubscriber(topic)
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}

	// Lap the 4-slot ring by publishing far more than slotCount messages
	// before the subscriber reads anything.
	const total = 20
	for i := 0; i < total; i++ {
		if err := pub.Publish([]byte{byte(i)}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}

	buf := make([]byte, 16)
	msg, result, err := sub.Next(buf)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result != Bytes {
		t.Fatalf("result = %v, want Bytes", result)
	}
	if sub.Skips() == 0 {
		t.Fatal("expected Skips() > 0 after overrun")
	}
	if msg.Seq <= total-topic.SlotCount() {
		t.Fatalf("seq = %d, expected the subscriber to have jumped forward past the overrun window", msg.Seq)
	}
}

func TestMWMRConcurrentPublishNoCollision(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "commands", SlotCount: 1024, PayloadSize: 16, Type: region.MWMR},
	})
	topic, _ := r.Lookup("commands")

	const writers = 8
	const perWriter = 64

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			pub, err := NewPublisher(topic, uint16(id))
			if err != nil {
				errs <- err
				return
			}
			for i := 0; i < perWriter; i++ {
				if err := pub.Publish([]byte{byte(id), byte(i)}); err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent publish failed: %v", err)
	}

	if got := topic.LoadHead(); got != writers*perWriter {
		t.Fatalf("w_head = %d, want %d", got, writers*perWriter)
	}

	sub, err := NewSubscriber(topic)
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}
	buf := make([]byte, 16)
	seen := make(map[uint64]bool)
	for {
		msg, result, err := sub.Next(buf)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if result == Empty {
			break
		}
		if result != Bytes {
			continue
		}
		if seen[msg.Seq] {
			t.Fatalf("sequence %d delivered twice", msg.Seq)
		}
		seen[msg.Seq] = true
	}
	if len(seen) != writers*perWriter {
		t.Fatalf("delivered %d distinct messages, want %d (ring large enough to avoid overrun)", len(seen), writers*perWriter)
	}
}

func TestSubscriberWaitBlocksUntilPublish(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 8, PayloadSize: 32, Type: region.SWMR},
	})
	topic, _ := r.Lookup("events")
	pub, _ := NewPublisher(topic, 1)
	sub, _ := NewSubscriber(topic)

	go func() {
		time.Sleep(5 * time.Millisecond)
		pub.Publish([]byte("delayed"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	buf := make([]byte, 32)
	msg, result, err := sub.Wait(ctx, buf)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result != Bytes {
		t.Fatalf("result = %v, want Bytes", result)
	}
	if string(buf[:msg.N]) != "delayed" {
		t.Fatalf("got %q, want %q", buf[:msg.N], "delayed")
	}
}

func TestSubscriberWaitRespectsContextCancellation(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 8, PayloadSize: 32, Type: region.SWMR},
	})
	topic, _ := r.Lookup("events")
	sub, _ := NewSubscriber(topic)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	buf := make([]byte, 32)
	_, _, err := sub.Wait(ctx, buf)
	if err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestNewPublisherRejectsNilTopic(t *testing.T) {
	if _, err := NewPublisher(nil, 1); err == nil {
		t.Fatal("expected error for nil topic")
	}
}

func TestNewSubscriberRejectsNilTopic(t *testing.T) {
	if _, err := NewSubscriber(nil); err == nil {
		t.Fatal("expected error for nil topic")
	}
}

func TestSubscriberTruncatesUndersizedBuffer(t *testing.T) {
	r := openTestRegion(t, []region.TopicConfig{
		{Name: "events", SlotCount: 8, PayloadSize: 32, Type: region.SWMR},
	})
	topic, _ := r.Lookup("events")
	pub, _ := NewPublisher(topic, 1)
	sub, _ := NewSubscriber(topic)

	if err := pub.Publish([]byte("a longer message than the buffer")[:20]); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	tiny := make([]byte, 4)
	_, result, err := sub.Next(tiny)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if result != Truncated {
		t.Fatalf("result = %v, want Truncated", result)
	}
	if sub.LastSeq() != 1 {
		t.Fatalf("LastSeq = %d, want 1 (truncated message still consumed)", sub.LastSeq())
	}
}
