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
	"fmt"
	"time"
)

// Reader is a consumer endpoint of a FIFO. Any number of readers may attach
// to the same FIFO, but at most one may throttle the writer (the one built
// with throttles=true); the rest drain opportunistically and can be lapped
// by the writer without slowing it down.
type Reader struct {
	obtainedState

	fifo *FIFO

	localFront uint32
	initFront  bool

	throttles bool // true if this reader publishes to fifo.throttleFront

	// Hysteresis state for waking a blocked writer. Defaults make the
	// reader wake on every full-to-non-full transition, matching the
	// simplest correct behavior when no tuning is configured.
	armed           bool
	highLevelArm    uint32
	lowLevelTrigger uint32

	lastLost uint32 // frames reported lost by the most recent ErrOverflow
}

// NewReader builds a Reader endpoint of f. If throttles is true, this
// reader's Release publishes its front index to f's throttling-front slot
// and the writer blocks on it; f must have been constructed with a
// throttling front (NewFIFO(..., true) or NewFIFOShared with a non-nil
// throttleFront), and at most one throttling Reader may exist per FIFO.
func NewReader(f *FIFO, throttles bool) (*Reader, error) {
	if throttles {
		if !f.Throttled() {
			return nil, fmt.Errorf("fifo: NewReader(throttles=true) on a FIFO with no throttling front")
		}
		if !f.claimThrottle() {
			return nil, fmt.Errorf("fifo: FIFO already has a throttling reader")
		}
	}
	return &Reader{
		fifo:            f,
		throttles:       throttles,
		armed:           true,
		highLevelArm:    f.frameCount,
		lowLevelTrigger: f.frameCount - 1,
	}, nil
}

// SetHighLevelArm and the paired lowLevelTrigger tune this reader's
// hysteresis for waking the writer, mirroring Writer.SetHighLevelTrigger.
// Only meaningful when Throttles() is true.
func (r *Reader) SetHighLevelArm(highLevelArm, lowLevelTrigger uint32) error {
	if lowLevelTrigger > highLevelArm || highLevelArm > r.fifo.frameCount {
		return ErrOutOfRange("highLevelArm", highLevelArm, r.fifo.frameCount)
	}
	r.highLevelArm = highLevelArm
	r.lowLevelTrigger = lowLevelTrigger
	return nil
}

// Throttles reports whether this reader throttles the writer.
func (r *Reader) Throttles() bool { return r.throttles }

func (r *Reader) loadFront() uint32 {
	if !r.initFront {
		if r.throttles {
			r.localFront = r.fifo.throttleFront.Load()
		}
		r.initFront = true
	}
	return r.localFront
}

// Lost reports the number of frames the writer overwrote before this reader
// could consume them, as of the most recent Obtain that returned ErrOverflow.
// Stale (left at its previous value) after any other return from Obtain.
func (r *Reader) Lost() uint32 { return r.lastLost }

// Obtain reserves up to count frames for reading, satisfying Provider. On
// ErrOverflow, Lost reports how many frames the writer overwrote before
// this reader could consume them.
func (r *Reader) Obtain(count uint32, timeout time.Duration) (uint32, [2]Iovec, error) {
	if err := r.beginObtain(); err != nil {
		return 0, [2]Iovec{}, err
	}

	at, blocking := deadline(timeout)
	front := r.loadFront()

	for {
		rear := r.fifo.rear.Load()
		frames, lostFrames, kind := r.fifo.diff(rear, front)

		switch kind {
		case diffIOError:
			return 0, [2]Iovec{}, ErrIO
		case diffOverflow:
			// Resync to the oldest frame still valid: one full lap (P raw
			// units) behind rear lands on rear's own slot, the start of
			// the currently buffered range. See DESIGN.md for why this is
			// P, the power-of-two ceiling, rather than N as a literal
			// rear-minus-frameCount reading would suggest: only the P
			// form keeps the resynced front's slot aligned with data
			// actually written for non-power-of-two capacities.
			front = rear - r.fifo.frameCountP2
			r.localFront = front
			r.initFront = true
			r.lastLost = lostFrames
			return 0, [2]Iovec{}, ErrOverflow
		}

		if frames > 0 {
			toObtain := frames
			if toObtain > count {
				toObtain = count
			}
			if toObtain > 0 {
				iov := r.fifo.splitIovec(front, toObtain)
				r.setObtained(toObtain)
				return toObtain, iov, nil
			}
		}

		remaining, ok := waitBudget(at, blocking)
		if !ok {
			return 0, [2]Iovec{}, nil // would-block
		}
		if err := r.fifo.rear.Wait(rear, remaining); err != nil {
			return 0, [2]Iovec{}, err
		}
	}
}

// Release returns k of the most recently obtained frames, advancing this
// reader's local front. If this reader throttles the writer, Release also
// publishes the new front and runs the hysteresis wake described in
// SetHighLevelArm.
func (r *Reader) Release(k uint32) error {
	if err := r.takeRelease(k); err != nil {
		return err
	}
	if k == 0 {
		return nil
	}

	newFront := r.fifo.sum(r.loadFront(), k)
	r.localFront = newFront

	if !r.throttles {
		return nil
	}
	r.fifo.throttleFront.Store(newFront)

	rear := r.fifo.rear.Load()
	fill, _, kind := r.fifo.diff(rear, newFront)
	if kind == diffOverflow {
		fill = r.fifo.frameCount
	} else if kind == diffIOError {
		return nil
	}

	// Rearm against the fill seen before this release's own k frames were
	// drained, which reflects how far the writer has filled; then test the
	// trigger.
	if !r.armed && fill+k >= r.highLevelArm {
		r.armed = true
	}
	if r.armed && fill <= r.lowLevelTrigger {
		r.fifo.throttleFront.Wake(1)
		r.armed = false
	}
	return nil
}

// Read copies up to count frames from the FIFO into dst (which must hold at
// least count*FrameSize() bytes), looping obtain/copy/release until count
// frames are read, an overflow is encountered, or timeout elapses without
// further progress. On ErrOverflow it returns the frames successfully read
// so far and the error; the caller's next Read starts fresh past the gap.
func (r *Reader) Read(dst []byte, count uint32, timeout time.Duration) (uint32, error) {
	at, blocking := deadline(timeout)
	var read uint32
	for read < count {
		remaining := count - read
		n, iov, err := r.Obtain(remaining, remainingTimeout(at, blocking, timeout))
		if err != nil {
			return read, err
		}
		if n == 0 {
			break
		}
		copyFrames(r.fifo, iov, dst[uint64(read)*uint64(r.fifo.frameSize):], false)
		if err := r.Release(n); err != nil {
			return read, err
		}
		read += n
	}
	return read, nil
}
