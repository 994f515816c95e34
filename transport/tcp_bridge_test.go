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

package transport

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vedarsh/usrl-core/pubsub"
	"github.com/vedarsh/usrl-core/region"
)

func TestBridgeForwardsMessagesOverTCP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.usrl")
	r, _, err := region.Build(path, 1<<16, []region.TopicConfig{
		{Name: "events", SlotCount: 8, PayloadSize: 32, Type: region.SWMR},
	})
	if err != nil {
		t.Fatalf("region.Build: %v", err)
	}
	defer r.Close()

	topic, err := r.Lookup("events")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	pub, err := pubsub.NewPublisher(topic, 1)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	sub, err := pubsub.NewSubscriber(topic)
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer ln.Close()

	bridge := NewBridge(sub, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() { serveDone <- bridge.Serve(ctx, ln) }()
	defer bridge.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial: %v", err)
	}
	defer conn.Close()

	// Give the accept loop a moment to register the connection before
	// publishing, since the bridge only fans out to already-registered
	// consumers.
	time.Sleep(20 * time.Millisecond)

	if err := pub.Publish([]byte("bridged")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 64)
	n, err := readFrame(conn, buf)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if string(buf[:n]) != "bridged" {
		t.Fatalf("received %q, want %q", buf[:n], "bridged")
	}
}
