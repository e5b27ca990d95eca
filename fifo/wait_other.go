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
	"sync"
	"time"
	"unsafe"
)

// waitWord/wakeWord here stand in for a kernel futex on platforms (or
// architectures) without one. There is no portable way to park a goroutine
// on an arbitrary memory address across process boundaries, so this
// fallback only coalesces wakeups within one process -- exactly the
// intra-process-only limitation FIFO.private documents. It still lets every
// Writer/Reader in this package work unmodified on any GOOS/GOARCH; only
// the cross-process Segment combination is narrowed (see segment.go).
//
// Each address gets its own *sync.Cond, keyed for the lifetime of this
// process; entries are never evicted, which is acceptable since the number
// of distinct Index words in a process is bounded by the number of FIFOs it
// constructs, not by any per-call churn.
var (
	condsMu sync.Mutex
	conds   = map[*uint32]*sync.Cond{}
)

func condFor(addr *uint32) *sync.Cond {
	condsMu.Lock()
	defer condsMu.Unlock()
	c, ok := conds[addr]
	if !ok {
		c = sync.NewCond(&sync.Mutex{})
		conds[addr] = c
	}
	return c
}

func loadWord(addr *uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}

// waitWord blocks until the word at addr no longer equals expected, a
// waiter on addr is woken, or timeout elapses. timeout <= 0 waits
// indefinitely. Always returns nil; like the futex path, spurious wakeups
// and timeout expiry are not errors -- the caller rechecks its condition.
func waitWord(addr *uint32, expected uint32, timeout time.Duration) error {
	c := condFor(addr)
	c.L.Lock()
	defer c.L.Unlock()

	if loadWord(addr) != expected {
		return nil
	}

	if timeout <= 0 {
		c.Wait()
		return nil
	}

	// Broadcast does not require c.L held by its caller, so the timer's
	// own goroutine may call it directly; it races harmlessly with a
	// genuine wake arriving at the same instant.
	timer := time.AfterFunc(timeout, c.Broadcast)
	defer timer.Stop()
	c.Wait()
	return nil
}

// wakeWord wakes goroutines parked in waitWord on addr. n is advisory only:
// sync.Cond has no notion of "wake exactly n," so a single-waiter Wake(1)
// and a broadcast Wake(-1) both broadcast here; the difference only matters
// for syscall-count tuning, which this fallback does not attempt.
func wakeWord(addr *uint32, _ int) {
	c := condFor(addr)
	c.L.Lock()
	c.Broadcast()
	c.L.Unlock()
}
