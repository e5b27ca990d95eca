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
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"
)

const (
	futexWait = 0 // FUTEX_WAIT, without FUTEX_PRIVATE_FLAG so peers in other processes can share the word
	futexWake = 1 // FUTEX_WAKE, likewise shared
)

// waitWord parks the calling goroutine on addr via the real Linux futex,
// usable across address spaces since it addresses the word directly rather
// than through any Go-runtime-managed object. timeout <= 0 waits
// indefinitely.
//
// Spurious wakeups, EAGAIN (the value already changed) and ETIMEDOUT are all
// reported as a nil error: Index.Wait's contract is "recheck the condition
// yourself," not "tell me why you woke up."
func waitWord(addr *uint32, expected uint32, timeout time.Duration) error {
	// Re-check before entering the syscall: closes the race where the
	// value changes and a wake fires between the caller's load and here.
	if atomic.LoadUint32(addr) != expected {
		return nil
	}

	var ts syscall.Timespec
	var timeoutArg uintptr
	if timeout > 0 {
		ts.Sec = int64(timeout / time.Second)
		ts.Nsec = int64(timeout % time.Second)
		timeoutArg = uintptr(unsafe.Pointer(&ts))
	}

	// Syscall6, not RawSyscall6: the wait may block, and the runtime must be
	// told so that it can hand this thread's P to other goroutines meanwhile.
	_, _, errno := syscall.Syscall6(
		syscall.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWait,
		uintptr(expected),
		timeoutArg,
		0,
		0,
	)

	switch errno {
	case 0, syscall.EAGAIN, syscall.EINTR, syscall.ETIMEDOUT:
		return nil
	default:
		return fmt.Errorf("fifo: futex wait: %w", errno)
	}
}

// wakeWord wakes up to n goroutines parked in waitWord on addr. n < 0 wakes
// all of them. Wake failures are not actionable by any caller in this
// package (there is no correctness difference between "woke 0" and "the
// syscall errored"), so they are dropped rather than threaded back through
// Index.Wake's signature -- matching the original obtain/release API, which
// has no error path for the wake side either.
func wakeWord(addr *uint32, n int) {
	count := n
	if count < 0 {
		count = 1<<31 - 1
	}
	syscall.RawSyscall6(
		syscall.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWake,
		uintptr(count),
		0,
		0,
		0,
	)
}
