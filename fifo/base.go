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

import "math/bits"

// base holds the index arithmetic shared by FIFO, Writer, and Reader: the
// capacity, its power-of-two ceiling, and the wrap-skip fudge factor. It is
// unexported so that the arithmetic and the buffer pointer stay visible only
// to endpoints within this package, not to callers -- the module-private
// equivalent of the C++ friend relationship between the original FIFO base
// class and its writer/reader subclasses (see DESIGN.md).
type base struct {
	frameCount   uint32 // N: max significant frames
	frameCountP2 uint32 // P: smallest power of two >= N
	fudgeFactor  uint32 // F: P - N, raw values skipped at each wrap
}

func newBase(frameCount uint32) base {
	p2 := nextPow2(frameCount)
	return base{
		frameCount:   frameCount,
		frameCountP2: p2,
		fudgeFactor:  p2 - frameCount,
	}
}

// nextPow2 returns the smallest power of two >= n, for n >= 1.
func nextPow2(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len32(n-1)
}

// mask returns the value used to extract a slot position from a raw index
// via a cheap bitwise AND instead of a modulo.
func (b *base) mask() uint32 {
	return b.frameCountP2 - 1
}

// slot returns the backing-buffer position in [0, frameCount) for a raw
// index maintained by sum. Valid only for indices produced by sum/newBase,
// never for an index mid-corruption.
func (b *base) slot(index uint32) uint32 {
	return index & b.mask()
}

// sum returns a new raw index as index advanced by increment (0 <= increment
// <= frameCount), skipping the fudge region at each wrap so that slot
// extraction stays a mask. See spec §4.2: the raw index's low bits (index &
// mask) always sit in [0, frameCount) for a non-corrupted index; advancing
// past frameCount-1 jumps over the fudgeFactor unused raw values up to the
// next power-of-two boundary.
func (b *base) sum(index, increment uint32) uint32 {
	newSlot := b.slot(index) + increment
	if newSlot > b.frameCount-1 {
		return index + increment + b.fudgeFactor
	}
	return index + increment
}

// diffKind distinguishes the two corruption shapes diff can report.
type diffKind int

const (
	diffOK diffKind = iota
	diffOverflow
	diffIOError
)

// diff computes rear-front in frames, detecting corruption. The raw
// difference is taken modulo 2^32 and reinterpreted as signed to decide
// whether front appears to trail or lead rear; see spec §4.2 and §7.
//
// On diffOK, the returned frame count is in [0, frameCount] and lost is 0.
// On diffOverflow, the reader has been lapped by the writer; lost estimates
// the number of frames skipped and the caller should resync front to
// rear-frameCountP2, which diff then reports as frameCount frames on rear's
// own slot (see Reader.Obtain). On diffIOError, the indices cannot be
// reconciled at all.
func (b *base) diff(rear, front uint32) (frames uint32, lost uint32, kind diffKind) {
	rawDelta := rear - front // uint32 wraparound subtraction
	signed := int32(rawDelta)

	if signed < 0 {
		// front appears to lead rear within a 2^31 window. A writer that
		// has lapped the reader by an enormous margin can produce this;
		// treat it as a plausible (if extreme) overrun only if collapsing
		// it back through one more sweep keeps it inside a single
		// frameCountP2 period, otherwise the indices are unrecoverable.
		magnitude := uint32(-signed)
		if magnitude <= b.frameCountP2 {
			return b.frameCount, b.frameCount, diffOverflow
		}
		return 0, 0, diffIOError
	}

	// sweeps is how many frameCountP2 boundaries rear and front have each
	// individually crossed, not rawDelta/frameCountP2: front can sit just
	// past a wrap that rear hasn't reached yet (or vice versa) while the
	// raw delta between them stays small, so dividing the delta directly
	// misses the fudge already paid by whichever operand wrapped.
	sweeps := rear/b.frameCountP2 - front/b.frameCountP2
	frames = rawDelta - sweeps*b.fudgeFactor

	if frames > b.frameCount {
		lost = frames - b.frameCount
		return b.frameCount, lost, diffOverflow
	}
	return frames, 0, diffOK
}
