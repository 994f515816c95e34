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

// Package pubsub implements the publish/consume protocol over a
// region.Topic: the SWMR and MWMR publish algorithms and the subscriber's
// cursor-based consume loop. Correctness depends on the per-slot
// generation check, the release-store commit barrier, and the
// seqlock-style read-verify.
package pubsub

import (
	"errors"

	"github.com/vedarsh/usrl-core/region"
)

// Publisher publishes fixed-size messages to one topic. A publisher is
// bound to a topic and a stable publisher id at construction.
type Publisher interface {
	// Publish writes payload to the topic. It returns a *region.Error with
	// Kind KindPayloadTooLarge, KindTimeout (MWMR only), or KindInvalidArgs
	// on failure; nil on success.
	Publish(payload []byte) error
}

var errNilTopic = errors.New("nil topic")

// NewPublisher constructs the publish algorithm matching the topic's ring
// type: SWMR for single-writer topics, MWMR for multi-writer topics.
func NewPublisher(topic *region.Topic, pubID uint16) (Publisher, error) {
	if topic == nil {
		return nil, invalidArgs("NewPublisher", errNilTopic)
	}
	switch topic.Type() {
	case region.SWMR:
		return &SWMRPublisher{topic: topic, pubID: pubID}, nil
	case region.MWMR:
		return &MWMRPublisher{topic: topic, pubID: pubID, spinLimit: DefaultMWMRSpinLimit}, nil
	default:
		return nil, invalidArgs("NewPublisher", errors.New("unknown ring type"))
	}
}

func invalidArgs(op string, cause error) *region.Error {
	return &region.Error{Kind: region.KindInvalidArgs, Op: op, Err: cause}
}

func payloadTooLarge(op string) *region.Error {
	return &region.Error{Kind: region.KindPayloadTooLarge, Op: op}
}

func timeoutErr(op string) *region.Error {
	return &region.Error{Kind: region.KindTimeout, Op: op}
}
