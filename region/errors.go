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
	"errors"
	"fmt"
)

// Kind classifies the error taxonomy shared by the region and pubsub
// packages. It is a kind, not a type hierarchy: callers switch on Kind
// rather than doing type assertions.
type Kind int

const (
	// KindInvalidArgs covers a null handle, an impossible size, or an
	// unknown topic name.
	KindInvalidArgs Kind = iota
	// KindInvalidConfig covers a zero slot count, a payload larger than
	// the slot, or a duplicate topic name at build time.
	KindInvalidConfig
	// KindOutOfSpace means the requested topics do not fit in the region.
	KindOutOfSpace
	// KindAlreadyExists is informational: a region already exists at the
	// requested path. Concurrent attachers rely on this not being an error.
	KindAlreadyExists
	// KindIoError wraps an underlying OS call failure during build/attach.
	KindIoError
	// KindPayloadTooLarge means the payload exceeds slot capacity; no
	// sequence is consumed.
	KindPayloadTooLarge
	// KindTimeout means an MWMR safety spin exceeded its iteration cap.
	KindTimeout
	// KindEmpty means no message is currently available to a subscriber.
	KindEmpty
	// KindTruncated means the caller's buffer was too small; the message
	// still counts as consumed.
	KindTruncated
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgs:
		return "InvalidArgs"
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindOutOfSpace:
		return "OutOfSpace"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindIoError:
		return "IoError"
	case KindPayloadTooLarge:
		return "PayloadTooLarge"
	case KindTimeout:
		return "Timeout"
	case KindEmpty:
		return "Empty"
	case KindTruncated:
		return "Truncated"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by region and pubsub
// operations. All failures are returned by value from the call that
// produced them; none propagate through panics or non-local control flow.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("usrl: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("usrl: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err is a *Error with the given Kind, so callers can
// write errors.Is(err, &region.Error{Kind: region.KindEmpty})-style checks
// against a sentinel.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// newErr constructs an *Error, wrapping cause when present.
func newErr(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// KindOf returns the Kind carried by err if err is (or wraps) a *Error,
// and false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
