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

// Package transport bridges a topic's Subscriber to a TCP socket, for
// consumers that cannot map the region themselves. It never touches
// region or pubsub internals beyond the Publisher/Subscriber interfaces.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame to guard against a corrupt length
// prefix turning into an unbounded allocation.
const maxFrameSize = 16 << 20

// writeFrame writes a 4-byte big-endian length prefix followed by
// payload.
func writeFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("transport: write frame length: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("transport: write frame body: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed frame into buf, returning the
// number of bytes read. It returns an error if the frame is larger than
// len(buf) or exceeds maxFrameSize.
func readFrame(r io.Reader, buf []byte) (int, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, err
	}
	n := int(binary.BigEndian.Uint32(lenBuf[:]))
	if n > maxFrameSize {
		return 0, fmt.Errorf("transport: frame size %d exceeds maximum %d", n, maxFrameSize)
	}
	if n > len(buf) {
		return 0, fmt.Errorf("transport: frame size %d exceeds buffer size %d", n, len(buf))
	}
	if n == 0 {
		return 0, nil
	}
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return 0, fmt.Errorf("transport: read frame body: %w", err)
	}
	return n, nil
}
