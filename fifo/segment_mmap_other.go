//go:build !linux || !(amd64 || arm64)

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
	"sync"
)

// On platforms without a kernel futex, a Segment cannot be real
// cross-process shared memory: wait_other.go's condition-variable fallback
// only wakes waiters in the process that owns the *uint32 address, so a
// second process mapping the same file would never be woken by the first.
// This file keeps CreateSegment/OpenSegment's signatures and behavior
// identical for same-process callers (useful for tests that exercise the
// Segment path without a Linux target) by backing "segments" with a
// process-local registry of plain byte slices instead of mmap.
var (
	registryMu sync.Mutex
	registry   = map[string][]byte{}
)

// CreateSegment creates a new in-process segment named name, sized to hold
// frameCount frames of frameSize bytes. See the package-level note above:
// on this platform the segment is only reachable by OpenSegment calls in
// the same process.
func CreateSegment(name string, frameCount, frameSize uint32, throttled bool) (*Segment, error) {
	totalSize, _, err := CalculateSegmentLayout(frameCount, frameSize)
	if err != nil {
		return nil, err
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return nil, fmt.Errorf("fifo: segment %q already exists", name)
	}

	mem := make([]byte, totalSize)
	initSegmentHeader(mem, frameCount, frameSize, throttled)
	registry[name] = mem

	return newSegment(mem, "", func() error {
		registryMu.Lock()
		delete(registry, name)
		registryMu.Unlock()
		return nil
	}), nil
}

// OpenSegment attaches to an in-process segment previously created with
// CreateSegment under the same name.
func OpenSegment(name string) (*Segment, error) {
	registryMu.Lock()
	mem, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("fifo: segment %q does not exist", name)
	}
	if err := ValidateSegmentHeader(mem); err != nil {
		return nil, err
	}
	return newSegment(mem, "", func() error { return nil }), nil
}

// RemoveSegment deletes a segment from the process-local registry. Safe to
// call once every peer has closed its Segment.
func RemoveSegment(name string) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; !ok {
		return fmt.Errorf("fifo: segment %q does not exist", name)
	}
	delete(registry, name)
	return nil
}

// SegmentExists reports whether a segment with the given name exists.
func SegmentExists(name string) bool {
	registryMu.Lock()
	defer registryMu.Unlock()
	_, ok := registry[name]
	return ok
}
