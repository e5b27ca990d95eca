//go:build linux && (amd64 || arm64)

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
	"os"
	"path/filepath"
	"syscall"
)

// CreateSegment creates a new shared-memory-backed segment at name, sized
// to hold frameCount frames of frameSize bytes. If throttled, the segment
// reserves a throttling-front index for a single Reader. name identifies
// the segment for OpenSegment; it is not a full path.
func CreateSegment(name string, frameCount, frameSize uint32, throttled bool) (*Segment, error) {
	path := segmentPath(name)

	totalSize, _, err := CalculateSegmentLayout(frameCount, frameSize)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("fifo: create segment file %s: %w", path, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	if err := file.Truncate(int64(totalSize)); err != nil {
		cleanup()
		return nil, fmt.Errorf("fifo: resize segment file: %w", err)
	}

	mem, err := mmapFile(file, int(totalSize))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("fifo: mmap segment: %w", err)
	}

	initSegmentHeader(mem, frameCount, frameSize, throttled)

	return newSegment(mem, path, func() error {
		err := syscall.Munmap(mem)
		file.Close()
		return err
	}), nil
}

// OpenSegment attaches to an existing segment previously created with
// CreateSegment under the same name.
func OpenSegment(name string) (*Segment, error) {
	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fifo: open segment file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("fifo: stat segment file: %w", err)
	}
	if info.Size() < segmentHeaderSize {
		file.Close()
		return nil, fmt.Errorf("fifo: segment file too small: %d bytes", info.Size())
	}

	mem, err := mmapFile(file, int(info.Size()))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("fifo: mmap segment: %w", err)
	}

	if err := ValidateSegmentHeader(mem); err != nil {
		syscall.Munmap(mem)
		file.Close()
		return nil, err
	}

	return newSegment(mem, path, func() error {
		err := syscall.Munmap(mem)
		file.Close()
		return err
	}), nil
}

// RemoveSegment deletes a segment's backing file. Safe to call once every
// peer has closed its Segment.
func RemoveSegment(name string) error {
	return os.Remove(segmentPath(name))
}

// SegmentExists reports whether a segment with the given name exists.
func SegmentExists(name string) bool {
	_, err := os.Stat(segmentPath(name))
	return err == nil
}

func segmentPath(name string) string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", "audiofifo_"+name)
	}
	return filepath.Join(os.TempDir(), "audiofifo_"+name)
}

func mmapFile(file *os.File, size int) ([]byte, error) {
	return syscall.Mmap(int(file.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
}
