//go:build !linux || !(amd64 || arm64)

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
	"os"
)

// platformSupported is false here: the lock-free protocol's memory-ordering
// contract is only validated on Linux amd64/arm64.
const platformSupported = false

var errUnsupportedPlatform = errors.New("usrl/region: shared-memory regions require linux/amd64 or linux/arm64")

func mmapFile(f *os.File, size int) ([]byte, error) {
	return nil, errUnsupportedPlatform
}

func munmapFile(mem []byte) error {
	return errUnsupportedPlatform
}
