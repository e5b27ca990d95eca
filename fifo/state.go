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

// FIFOState is a read-only, atomically-sampled snapshot of a FIFO's
// indices. It is not a synchronization point: by the time the caller reads
// the returned value, the live indices may already have moved further.
// Intended for diagnostics and tests, not the hot read/write path.
type FIFOState struct {
	FrameCount    uint32
	FrameSize     uint32
	Rear          uint32
	Throttled     bool
	ThrottleFront uint32 // valid only if Throttled
	Used          uint32 // frames buffered from the throttling front's perspective; 0 if !Throttled
}

// State takes a snapshot of f's current indices.
func (f *FIFO) State() FIFOState {
	st := FIFOState{
		FrameCount: f.frameCount,
		FrameSize:  f.frameSize,
		Rear:       f.rear.Load(),
	}
	if f.Throttled() {
		st.Throttled = true
		st.ThrottleFront = f.throttleFront.Load()
		if frames, _, kind := f.diff(st.Rear, st.ThrottleFront); kind != diffIOError {
			st.Used = frames
		}
	}
	return st
}

// DiagnoseStall compares two States of the same FIFO, taken some interval
// apart, and reports whether they show the writer and its throttling
// reader both stalled: the buffer full in both snapshots with neither the
// rear nor the throttling-front index having moved between them.
//
// This is diagnostic only. A legitimately idle FIFO (nobody has data to
// write) looks identical to a deadlocked one from the outside; callers
// should only treat a true verdict as meaningful when they also know both
// endpoints were expected to be making progress over the interval sampled.
func DiagnoseStall(before, after FIFOState) (stalled bool, detail string) {
	if !before.Throttled || !after.Throttled {
		return false, "FIFO has no throttling reader to stall against"
	}
	if before.Rear != after.Rear {
		return false, "writer made progress"
	}
	if before.ThrottleFront != after.ThrottleFront {
		return false, "reader made progress"
	}
	if after.Used < after.FrameCount {
		return false, "buffer not full, no reason for the writer to be blocked"
	}
	return true, fmt.Sprintf("rear and throttleFront unchanged with buffer full (%d/%d frames)", after.Used, after.FrameCount)
}
