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

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vedarsh/usrl-core/config"
	"github.com/vedarsh/usrl-core/pubsub"
)

func zerologNop() zerolog.Logger {
	return zerolog.Nop()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		RegionPath: filepath.Join(t.TempDir(), "region.usrl"),
		RegionSize: 1 << 20,
		Topics: []config.TopicSpec{
			{Name: "events", SlotCount: 16, PayloadSize: 64, Type: "swmr"},
			{Name: "commands", SlotCount: 16, PayloadSize: 64, Type: "mwmr"},
		},
	}
}

func TestBusSendRecvRoundTrip(t *testing.T) {
	b, err := Open(testConfig(t), zerologNop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Send("events", []byte("hello")))

	buf := make([]byte, 64)
	msg, result, err := b.Recv("events", buf)
	require.NoError(t, err)
	require.Equal(t, pubsub.Bytes, result)
	require.Equal(t, "hello", string(buf[:msg.N]))
}

func TestBusRecvOnUnknownTopic(t *testing.T) {
	b, err := Open(testConfig(t), zerologNop())
	require.NoError(t, err)
	defer b.Close()

	_, _, err = b.Recv("nonexistent", make([]byte, 64))
	require.Error(t, err)
}

func TestBusHealthReflectsActivity(t *testing.T) {
	b, err := Open(testConfig(t), zerologNop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Send("events", []byte("a")))
	require.NoError(t, b.Send("events", []byte("b")))

	buf := make([]byte, 64)
	_, _, err = b.Recv("events", buf)
	require.NoError(t, err)

	snap := b.Health()
	require.Len(t, snap.Topics, 2)

	var events TopicHealth
	for _, th := range snap.Topics {
		if th.Name == "events" {
			events = th
		}
	}
	require.Equal(t, uint64(2), events.WHead)
	require.True(t, events.HasConsumer)
	require.Equal(t, uint64(1), events.LastSeq)
	require.Equal(t, uint64(1), events.LagMessages)
}

func TestBusEnableRateLimit(t *testing.T) {
	b, err := Open(testConfig(t), zerologNop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.EnableRateLimit("events", rate.Limit(1000), 1))
	require.NoError(t, b.Send("events", []byte("throttled")))

	buf := make([]byte, 64)
	msg, result, err := b.Recv("events", buf)
	require.NoError(t, err)
	require.Equal(t, pubsub.Bytes, result)
	require.Equal(t, "throttled", string(buf[:msg.N]))
}

func TestDerivePubIDStable(t *testing.T) {
	a := derivePubID()
	b := derivePubID()
	require.Equal(t, a, b)
}

func TestBusClose(t *testing.T) {
	b, err := Open(testConfig(t), zerologNop())
	require.NoError(t, err)
	require.NoError(t, b.Close())
}
