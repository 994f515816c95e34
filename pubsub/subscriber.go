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
	"context"
	"time"

	"github.com/vedarsh/usrl-core/region"
)

// waitPollInterval bounds how long Wait sleeps between empty polls. It is
// deliberately short: Wait is for consumers that would otherwise spin in
// a tight caller-managed loop, not a replacement for the hot path.
const waitPollInterval = time.Millisecond

// Result classifies the outcome of a Subscriber.Next call.
type Result int

const (
	// Bytes means a message was returned; see Message.N for its length.
	Bytes Result = iota
	// Empty means no message is currently available. Repeated Next calls
	// on an Empty ring are side-effect free unless an overrun jump or a
	// writer-ahead adjustment occurred.
	Empty
	// Truncated means the caller's buffer was too small; the message is
	// still counted as consumed and last_seq advances past it.
	Truncated
)

func (r Result) String() string {
	switch r {
	case Bytes:
		return "Bytes"
	case Truncated:
		return "Truncated"
	default:
		return "Empty"
	}
}

// Message describes one delivered payload's metadata.
type Message struct {
	Seq         uint64
	PubID       uint16
	TimestampNs int64
	N           int
}

// Subscriber tracks one consumer's cursor into a topic. Subscriber state
// is per-process and never shared between processes or goroutines; each
// reader owns its own cursor. Next never blocks (Wait is an opt-in polling
// wrapper that does), and subscribers never mutate any shared state — they
// only read slot headers.
type Subscriber struct {
	topic   *region.Topic
	lastSeq uint64
	skips   uint64
}

// NewSubscriber creates a cursor over topic starting before the first
// sequence (last_seq = 0), so the first Next call attempts to read
// sequence 1.
func NewSubscriber(topic *region.Topic) (*Subscriber, error) {
	if topic == nil {
		return nil, invalidArgs("NewSubscriber", errNilTopic)
	}
	return &Subscriber{topic: topic}, nil
}

// LastSeq returns the highest sequence this subscriber has fully consumed.
func (s *Subscriber) LastSeq() uint64 { return s.lastSeq }

// Skips returns the number of overrun-jump and torn-read-discard events
// observed so far, surfaced for external health monitoring.
func (s *Subscriber) Skips() uint64 { return s.skips }

// Next returns at most one message. It handles:
// empty detection, overrun catch-up, writer-ahead single-cursor-advance,
// truncation, and the seqlock-style torn-read verify.
func (s *Subscriber) Next(buf []byte) (Message, Result, error) {
	if s.topic == nil {
		return Message{}, Empty, invalidArgs("Subscriber.Next", errNilTopic)
	}

	mask := s.topic.Mask()
	slotCount := s.topic.SlotCount()

	head := s.topic.LoadHead()
	next := s.lastSeq + 1
	if next > head {
		return Message{}, Empty, nil
	}

	// Overrun catch-up: the writer has lapped us by a full ring.
	if head-next >= slotCount {
		s.lastSeq = head - slotCount
		next = s.lastSeq + 1
		s.skips++
		head = s.topic.LoadHead()
		if next > head {
			return Message{}, Empty, nil
		}
	}

	index := (next - 1) & mask
	slot := s.topic.Slot(index)
	seq := slot.LoadSeq()

	if seq == 0 || seq < next {
		// Not yet committed; common during tight polling.
		return Message{}, Empty, nil
	}
	if seq > next {
		// We fell behind between the head load and this slot load.
		// Advance once and let the caller re-enter on its own schedule,
		// rather than spinning here (anti-starvation).
		s.lastSeq = seq - 1
		return Message{}, Empty, nil
	}

	payloadLen := int(slot.PayloadLen())
	if len(buf) < payloadLen {
		s.lastSeq = next
		return Message{}, Truncated, nil
	}

	n := slot.ReadPayload(buf, payloadLen)
	pubID := slot.PubID()
	ts := slot.TimestampNs()

	// Torn-read check: acquire-load seq again. If it moved, a writer
	// lapped us mid-copy; discard and fast-forward to the newest visible
	// commit.
	if slot.LoadSeq() != seq {
		s.lastSeq = s.topic.LoadHead()
		s.skips++
		return Message{}, Empty, nil
	}

	s.lastSeq = next
	return Message{Seq: seq, PubID: pubID, TimestampNs: ts, N: n}, Bytes, nil
}

// Wait is Next with a bounded poll loop: it retries on Empty until a
// message arrives, ctx is canceled, or a non-Empty result is produced.
// It never touches the ring outside of Next; it exists for consumers
// that would otherwise hand-roll the same retry loop themselves.
func (s *Subscriber) Wait(ctx context.Context, buf []byte) (Message, Result, error) {
	for {
		msg, result, err := s.Next(buf)
		if err != nil || result != Empty {
			return msg, result, err
		}
		select {
		case <-ctx.Done():
			return Message{}, Empty, ctx.Err()
		case <-time.After(waitPollInterval):
		}
	}
}
