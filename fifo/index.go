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
	"sync/atomic"
	"time"
)

// Index is a 32-bit counter, monotonically increasing modulo 2^32, that may
// be placed in memory shared between address spaces. It is Plain Old Data:
// exactly one uint32 field, naturally aligned, no embedded pointers or
// virtual dispatch, so that peers built by a different compiler or a
// different process still agree on its layout.
//
// Exactly one peer must construct (zero-initialize) an Index; every other
// peer attaches to the existing word and only ever loads, stores, or waits
// on it.
type Index struct {
	word uint32
}

// Load reads the index with acquire ordering.
func (ix *Index) Load() uint32 {
	return atomic.LoadUint32(&ix.word)
}

// Store writes the index with release ordering.
func (ix *Index) Store(v uint32) {
	atomic.StoreUint32(&ix.word, v)
}

// CompareAndSwap atomically swaps the index from old to new, returning
// whether the swap took place. Neither Writer nor Reader calls it.
func (ix *Index) CompareAndSwap(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(&ix.word, old, new)
}

// Wait blocks until the word no longer holds expected, a waiter on this word
// is woken, or timeout elapses. A non-positive timeout waits indefinitely;
// callers wanting non-blocking semantics must check the condition themselves
// before calling Wait, not rely on a zero timeout here.
//
// Wait may return spuriously with the word still equal to expected; callers
// must always re-check the logical condition in a loop.
func (ix *Index) Wait(expected uint32, timeout time.Duration) error {
	return waitWord(&ix.word, expected, timeout)
}

// Wake wakes up to n goroutines parked in Wait on this word. n == 1 wakes a
// single waiter (the single throttling reader or the single writer); a
// larger n broadcasts to multiple non-throttling readers.
func (ix *Index) Wake(n int) {
	wakeWord(&ix.word, n)
}
