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

import "fmt"

// maxBufferBytes is 2^31 - 1: the largest N*frameSize this package will
// address, since raw indices are carried in a signed 32-bit comparison
// window (see base.diff).
const maxBufferBytes = 1<<31 - 1

// FIFO is the immutable description of a fixed-capacity ring of frameCount
// frames of frameSize bytes each. It owns no I/O logic itself -- Writer and
// Reader endpoints built on top of it do that -- and nothing about it
// changes after construction except the atomic indices it points at.
//
// FIFO does not own the backing buffer's memory; the caller supplies it and
// must keep it alive for as long as any endpoint built on this FIFO is in
// use.
type FIFO struct {
	base

	frameSize uint32
	buffer    []byte // frameCount*frameSize bytes, caller-owned

	rear *Index // writer's published rear index, read by every reader

	// throttleFront is the published front index of the single reader
	// that throttles the writer, or nil if no reader throttles it. Both
	// Writer and the throttling Reader read and write through this same
	// pointer; see writer.go and reader.go.
	throttleFront *Index

	// throttleClaimed guards "at most one throttling reader" -- set the
	// first time NewReader is called with throttles=true.
	throttleClaimed bool

	// private records whether the writer and every reader share a single
	// address space. It is always true today: the multi-process Segment
	// path (segment.go) provides real shared memory, but the
	// condition-variable wait fallback on platforms without a kernel
	// futex (wait_other.go) only wakes waiters within one process, so
	// cross-process operation is not yet a supported combination. See
	// DESIGN.md for the reasoning; the field stays as the documented
	// extension point.
	private bool
}

// NewFIFO constructs a single-process FIFO over buffer, which must contain
// at least frameCount*frameSize bytes. If throttlesWriter is true, the FIFO
// allocates its own throttling-front index; pass it to exactly one call to
// NewReader with throttles=true.
func NewFIFO(frameCount, frameSize uint32, buffer []byte, throttlesWriter bool) (*FIFO, error) {
	if err := validateFIFOParams(frameCount, frameSize, buffer); err != nil {
		return nil, err
	}
	f := &FIFO{
		base:      newBase(frameCount),
		frameSize: frameSize,
		buffer:    buffer,
		rear:      new(Index),
		private:   true,
	}
	if throttlesWriter {
		f.throttleFront = new(Index)
	}
	return f, nil
}

// NewFIFOShared constructs a FIFO over buffer using a caller-supplied rear
// index, for the case where the rear index lives in memory shared with
// other peers (see segment.go for one way to obtain such memory).
// throttleFront may be nil if no reader throttles the writer.
func NewFIFOShared(frameCount, frameSize uint32, buffer []byte, rear, throttleFront *Index) (*FIFO, error) {
	if err := validateFIFOParams(frameCount, frameSize, buffer); err != nil {
		return nil, err
	}
	if rear == nil {
		return nil, fmt.Errorf("fifo: shared rear index must not be nil")
	}
	return &FIFO{
		base:          newBase(frameCount),
		frameSize:     frameSize,
		buffer:        buffer,
		rear:          rear,
		throttleFront: throttleFront,
		private:       true,
	}, nil
}

func validateFIFOParams(frameCount, frameSize uint32, buffer []byte) error {
	if frameCount == 0 {
		return fmt.Errorf("fifo: frameCount must be >= 1")
	}
	if frameSize == 0 {
		return fmt.Errorf("fifo: frameSize must be >= 1")
	}
	total := uint64(frameCount) * uint64(frameSize)
	if total > maxBufferBytes {
		return fmt.Errorf("fifo: frameCount*frameSize = %d exceeds the %d limit", total, uint64(maxBufferBytes))
	}
	if uint64(len(buffer)) < total {
		return fmt.Errorf("fifo: buffer has %d bytes, need %d", len(buffer), total)
	}
	return nil
}

// FrameCount returns N, the FIFO's capacity in frames.
func (f *FIFO) FrameCount() uint32 { return f.frameCount }

// FrameSize returns the size of each frame in bytes.
func (f *FIFO) FrameSize() uint32 { return f.frameSize }

// Throttled reports whether a reader throttles the writer.
func (f *FIFO) Throttled() bool { return f.throttleFront != nil }

// PowerOfTwoCeiling returns P, the smallest power of two >= FrameCount().
func (f *FIFO) PowerOfTwoCeiling() uint32 { return f.frameCountP2 }

// FudgeFactor returns F = PowerOfTwoCeiling() - FrameCount(), the number of
// raw index values skipped at each wrap.
func (f *FIFO) FudgeFactor() uint32 { return f.fudgeFactor }

// claimThrottle marks the throttling reader slot used, returning false if
// it was already claimed by another Reader.
func (f *FIFO) claimThrottle() bool {
	if f.throttleClaimed {
		return false
	}
	f.throttleClaimed = true
	return true
}

// bytesOf converts an Iovec (frame-granularity) into the corresponding
// byte slice of the backing buffer.
func (f *FIFO) bytesOf(iov Iovec) []byte {
	start := uint64(iov.Offset) * uint64(f.frameSize)
	length := uint64(iov.Length) * uint64(f.frameSize)
	return f.buffer[start : start+length]
}

// splitIovec turns a [start, start+frames) logical frame range into up to
// two fragments, splitting at the backing buffer's wrap point so that
// neither fragment crosses it.
func (f *FIFO) splitIovec(rawStart, frames uint32) [2]Iovec {
	var iov [2]Iovec
	if frames == 0 {
		return iov
	}
	slot := f.slot(rawStart)
	firstLen := frames
	if remaining := f.frameCount - slot; frames > remaining {
		firstLen = remaining
	}
	iov[0] = Iovec{Offset: slot, Length: firstLen}
	if firstLen < frames {
		iov[1] = Iovec{Offset: 0, Length: frames - firstLen}
	}
	return iov
}
