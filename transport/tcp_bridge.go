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
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vedarsh/usrl-core/pubsub"
)

// ErrBridgeClosed is returned by Bridge.Serve after Close.
var ErrBridgeClosed = errors.New("transport: bridge closed")

// Bridge fans one topic's Subscriber out to any number of TCP consumers.
// Each accepted connection gets its own drain goroutine and buffered
// channel. Since pubsub.Subscriber is not safe for concurrent use, Bridge
// owns one Subscriber (one shared cursor) and polls it from a single pump
// goroutine, broadcasting each message to every connection's channel.
type Bridge struct {
	sub    *pubsub.Subscriber
	logger zerolog.Logger

	closed atomic.Bool
	cancel context.CancelFunc

	mu    sync.Mutex
	conns map[net.Conn]chan []byte
}

// NewBridge creates a Bridge draining sub. A zero-value logger disables
// logging.
func NewBridge(sub *pubsub.Subscriber, logger zerolog.Logger) *Bridge {
	return &Bridge{
		sub:    sub,
		logger: logger,
		conns:  make(map[net.Conn]chan []byte),
	}
}

// Serve accepts connections on ln and forwards messages from the topic to
// each one until ctx is canceled or Close is called.
func (b *Bridge) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	defer cancel()

	go b.pump(ctx)
	go func() {
		// Unblock Accept once ctx is canceled or Close is called.
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if b.closed.Load() || ctx.Err() != nil {
				return ErrBridgeClosed
			}
			return err
		}
		b.addConn(conn)
		go b.drain(ctx, conn)
	}
}

// pump polls the Subscriber and fans out every delivered message. It is
// the only goroutine that ever calls sub.Next, since Subscriber cursors
// are not safe for concurrent use.
func (b *Bridge) pump(ctx context.Context) {
	buf := make([]byte, 1<<20)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for {
			msg, result, err := b.sub.Next(buf)
			if err != nil {
				b.logger.Warn().Err(err).Msg("bridge: subscriber error")
				return
			}
			if result != pubsub.Bytes {
				break
			}
			payload := append([]byte(nil), buf[:msg.N]...)
			b.broadcast(payload)
		}
	}
}

func (b *Bridge) broadcast(payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, ch := range b.conns {
		select {
		case ch <- payload:
		default:
			b.logger.Warn().Str("remote", conn.RemoteAddr().String()).Msg("bridge: slow consumer, dropping message")
		}
	}
}

func (b *Bridge) addConn(conn net.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[conn] = make(chan []byte, 256)
}

func (b *Bridge) removeConn(conn net.Conn) {
	b.mu.Lock()
	ch, ok := b.conns[conn]
	delete(b.conns, conn)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

func (b *Bridge) drain(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	defer b.removeConn(conn)

	b.mu.Lock()
	ch := b.conns[conn]
	b.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			if err := writeFrame(conn, payload); err != nil {
				b.logger.Warn().Str("remote", conn.RemoteAddr().String()).Err(err).Msg("bridge: write failed")
				return
			}
		}
	}
}

// Close stops Serve and disconnects every consumer.
func (b *Bridge) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		conn.Close()
	}
	return nil
}
