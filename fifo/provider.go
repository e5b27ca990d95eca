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

import "time"

// Iovec describes one virtually contiguous fragment of a logically
// contiguous frame range, analogous to struct iovec for readv(2)/writev(2).
// Offset and Length are in frames, relative to the FIFO's backing buffer.
type Iovec struct {
	Offset uint32
	Length uint32
}

// Provider is the scatter-gather interface common to Writer and Reader,
// letting callers that only need direction-neutral buffer handling treat
// either endpoint uniformly.
//
// A call to Obtain does not replace an outstanding batch from a previous
// Obtain: this package rejects a second Obtain made before the first is
// fully released (ErrObtainPending) rather than silently releasing it for
// the caller. See DESIGN.md for why that Open Question was resolved this way.
type Provider interface {
	// Obtain returns up to two fragments describing at most count frames,
	// blocking according to timeout (0 is non-blocking, negative blocks
	// without limit; see timing.go) until at least one frame is available,
	// an error occurs, or the timeout elapses.
	Obtain(count uint32, timeout time.Duration) (frames uint32, iov [2]Iovec, err error)

	// Release returns k of the frames most recently obtained back to the
	// FIFO, advancing this endpoint's local index and publishing it (a
	// non-throttling Reader keeps its index private and does not publish).
	Release(k uint32) error

	// Obtained reports the number of frames handed out by the most recent
	// Obtain that have not yet been released.
	Obtained() uint32
}

var (
	_ Provider = (*Writer)(nil)
	_ Provider = (*Reader)(nil)
)
