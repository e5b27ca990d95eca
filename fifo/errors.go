/*
 * Copyright (C) 2015 The Android Open Source Project
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fifo

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Timeout expiry is not an error: it is
// reported as a short (possibly zero) transfer count, never one of these.
var (
	// ErrIO indicates the rear/front indices are corrupted beyond what diff
	// can explain as a plausible overrun. Fatal for the call; the caller
	// decides whether to reset the FIFO.
	ErrIO = errors.New("fifo: corrupted indices")

	// ErrOverflow indicates a reader's diff exceeded the FIFO capacity: the
	// writer lapped this reader. The reader auto-resyncs before returning.
	ErrOverflow = errors.New("fifo: reader overrun")

	// ErrClosed indicates the FIFO (or its backing segment) has been closed.
	//
	// A would-block outcome (non-blocking call, nothing to transfer, or a
	// blocking call whose timeout elapsed with no progress) is not one of
	// these: it is reported as a zero frame count with a nil error,
	// mirroring the original C++ obtain() returning 0 rather than a
	// negative errno. Timeout expiry is likewise not an error.
	ErrClosed = errors.New("fifo: closed")

	// ErrObtainPending indicates obtain was called again before the
	// outstanding obtain was released. See DESIGN.md for why this endpoint
	// rejects rather than implicitly releasing.
	ErrObtainPending = errors.New("fifo: previous obtain not released")

	// ErrReleaseTooMany indicates release(k) was called with k greater than
	// the number of frames currently obtained.
	ErrReleaseTooMany = errors.New("fifo: release exceeds obtained frames")

	// errOutOfRange is the sentinel wrapped by ErrOutOfRange.
	errOutOfRange = errors.New("fifo: value out of range")
)

// ErrOutOfRange wraps errOutOfRange with the offending field, value, and
// limit, for the hysteresis and effective-frames setters.
func ErrOutOfRange(field string, value, limit uint32) error {
	return fmt.Errorf("fifo: %s=%d out of range (limit %d): %w", field, value, limit, errOutOfRange)
}
