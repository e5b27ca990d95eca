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
	"sync/atomic"
	"unsafe"
)

// segmentMagic identifies a mapped region as one of ours, guarding against
// attaching to a stale or foreign file at the same path.
var segmentMagic = [8]byte{'A', 'U', 'F', 'I', 'F', 'O', '1', 0}

const segmentVersion = 1

// segmentHeaderSize is kept well above the 32 bytes segmentHeader's named
// fields occupy (the rest is padding) so the layout can grow without
// shifting the buffer offset every peer must agree on.
const segmentHeaderSize = 64

// segmentHeader is the POD control block at the start of every segment. Its
// rear and throttleFront fields are the FIFO's shared Index words --
// Index's own POD layout (a single uint32) makes reinterpreting a field of
// this struct as an *Index legal and exactly how a multi-process FIFO's
// rear index is meant to be placed in memory.
type segmentHeader struct {
	magic         [8]byte
	version       uint32
	frameCount    uint32
	frameSize     uint32
	hasThrottle   uint32
	rear          uint32
	throttleFront uint32
	_             [segmentHeaderSize - 8 - 4*6]byte
}

// CalculateSegmentLayout returns the total byte size of a segment holding
// frameCount frames of frameSize bytes, and the byte offset of the frame
// buffer within it.
func CalculateSegmentLayout(frameCount, frameSize uint32) (totalSize uint64, bufOffset uint64, err error) {
	if frameCount == 0 || frameSize == 0 {
		return 0, 0, fmt.Errorf("fifo: frameCount and frameSize must both be >= 1")
	}
	bufBytes := uint64(frameCount) * uint64(frameSize)
	if bufBytes > maxBufferBytes {
		return 0, 0, fmt.Errorf("fifo: frameCount*frameSize = %d exceeds the %d limit", bufBytes, uint64(maxBufferBytes))
	}
	return segmentHeaderSize + bufBytes, segmentHeaderSize, nil
}

func headerAt(mem []byte) *segmentHeader {
	return (*segmentHeader)(unsafe.Pointer(&mem[0]))
}

// ValidateSegmentHeader checks that mem begins with a header this version
// of the package wrote: right magic, a version it understands, and a
// frameCount/frameSize pair whose buffer actually fits within mem.
func ValidateSegmentHeader(mem []byte) error {
	if len(mem) < segmentHeaderSize {
		return fmt.Errorf("fifo: segment too small for a header: %d bytes", len(mem))
	}
	h := headerAt(mem)
	if h.magic != segmentMagic {
		return fmt.Errorf("fifo: segment has wrong magic %v", h.magic)
	}
	if v := atomic.LoadUint32(&h.version); v != segmentVersion {
		return fmt.Errorf("fifo: segment version %d, want %d", v, segmentVersion)
	}
	frameCount := atomic.LoadUint32(&h.frameCount)
	frameSize := atomic.LoadUint32(&h.frameSize)
	need := segmentHeaderSize + uint64(frameCount)*uint64(frameSize)
	if uint64(len(mem)) < need {
		return fmt.Errorf("fifo: segment holds %d bytes, header declares %d", len(mem), need)
	}
	return nil
}

// Segment is a region of memory -- mapped from a file on platforms with a
// kernel futex (segment_mmap_linux.go), or a plain process-local allocation
// elsewhere (segment_mmap_other.go) -- laid out as a segmentHeader followed
// by the frame buffer, from which a FIFO can be reconstructed by any peer
// that can see the same bytes.
type Segment struct {
	mem    []byte
	path   string
	closer func() error
}

func newSegment(mem []byte, path string, closer func() error) *Segment {
	return &Segment{mem: mem, path: path, closer: closer}
}

func (s *Segment) header() *segmentHeader { return headerAt(s.mem) }

// Path returns the filesystem path backing this segment, or "" for a
// process-local segment with no such path.
func (s *Segment) Path() string { return s.path }

// FrameCount returns the capacity this segment's FIFO was created with.
func (s *Segment) FrameCount() uint32 { return atomic.LoadUint32(&s.header().frameCount) }

// FrameSize returns the per-frame byte size this segment's FIFO was created
// with.
func (s *Segment) FrameSize() uint32 { return atomic.LoadUint32(&s.header().frameSize) }

// RearIndex returns the shared rear Index living in this segment.
func (s *Segment) RearIndex() *Index {
	h := s.header()
	return (*Index)(unsafe.Pointer(&h.rear))
}

// ThrottleFrontIndex returns the shared throttling-front Index living in
// this segment, or nil if the segment was created without one.
func (s *Segment) ThrottleFrontIndex() *Index {
	h := s.header()
	if atomic.LoadUint32(&h.hasThrottle) == 0 {
		return nil
	}
	return (*Index)(unsafe.Pointer(&h.throttleFront))
}

// Buffer returns the frame buffer region of this segment.
func (s *Segment) Buffer() []byte {
	bufBytes := uint64(s.FrameCount()) * uint64(s.FrameSize())
	return s.mem[segmentHeaderSize : segmentHeaderSize+bufBytes]
}

// FIFO reconstructs the FIFO this segment was created to hold, sharing its
// rear (and, if present, throttling-front) index and frame buffer with
// every other peer attached to the same segment.
func (s *Segment) FIFO() (*FIFO, error) {
	return NewFIFOShared(s.FrameCount(), s.FrameSize(), s.Buffer(), s.RearIndex(), s.ThrottleFrontIndex())
}

// Close releases this segment's backing memory. Peers that have already
// built a FIFO, Writer, or Reader on top of it must stop using those before
// calling Close.
func (s *Segment) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func initSegmentHeader(mem []byte, frameCount, frameSize uint32, throttled bool) {
	h := headerAt(mem)
	h.magic = segmentMagic
	atomic.StoreUint32(&h.version, segmentVersion)
	atomic.StoreUint32(&h.frameCount, frameCount)
	atomic.StoreUint32(&h.frameSize, frameSize)
	if throttled {
		atomic.StoreUint32(&h.hasThrottle, 1)
	}
}
