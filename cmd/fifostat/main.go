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

// Command fifostat probes a FIFO's capacity arithmetic, effective-frame
// shrinkage, and hysteresis configuration, for manual inspection during
// development. It is not part of the library's public contract.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/supremegamers/android-system-media/fifo"
)

const frameSize = 4 // e.g. one stereo 16-bit sample pair

func main() {
	fmt.Println("=== Capacity Arithmetic ===")
	for _, n := range []uint32{1, 6, 7, 8, 100, 1000} {
		f, err := fifo.NewFIFO(n, frameSize, make([]byte, n*frameSize), false)
		if err != nil {
			log.Fatalf("NewFIFO(%d): %v", n, err)
		}
		fmt.Printf("N=%-6d  P=%-6d  F=%-4d\n", f.FrameCount(), f.PowerOfTwoCeiling(), f.FudgeFactor())
	}

	fmt.Println("\n=== Effective-Frame Shrinkage ===")
	const n = 100
	f, err := fifo.NewFIFO(n, frameSize, make([]byte, n*frameSize), true)
	if err != nil {
		log.Fatalf("NewFIFO: %v", err)
	}
	w := fifo.NewWriter(f)
	r, err := fifo.NewReader(f, true)
	if err != nil {
		log.Fatalf("NewReader: %v", err)
	}

	for _, eff := range []uint32{100, 50, 10} {
		if err := w.SetEffectiveFrames(eff); err != nil {
			log.Fatalf("SetEffectiveFrames(%d): %v", eff, err)
		}
		written, _, err := w.Obtain(n, 0)
		if err != nil {
			log.Fatalf("writer Obtain: %v", err)
		}
		if err := w.Release(written); err != nil {
			log.Fatalf("writer Release: %v", err)
		}
		fmt.Printf("effectiveFrames=%-4d  Obtain(%d) granted %d frames\n", eff, n, written)

		read, _, err := r.Obtain(written, 0)
		if err != nil {
			log.Fatalf("reader Obtain: %v", err)
		}
		if err := r.Release(read); err != nil {
			log.Fatalf("reader Release: %v", err)
		}
	}

	fmt.Println("\n=== Hysteresis Wake Boundaries ===")
	if err := w.SetHighLevelTrigger(20, 5); err != nil {
		log.Fatalf("SetHighLevelTrigger: %v", err)
	}
	if err := r.SetHighLevelArm(90, 80); err != nil {
		log.Fatalf("SetHighLevelArm: %v", err)
	}
	fmt.Println("writer wakes the reader once fill >= 20, rearms at <= 5")
	fmt.Println("reader wakes the writer once fill <= 80, rearms at >= 90")

	fmt.Println("\n=== Stall Diagnosis ===")
	before := f.State()
	time.Sleep(time.Millisecond)
	after := f.State()
	if stalled, detail := fifo.DiagnoseStall(before, after); stalled {
		fmt.Printf("stall detected: %s\n", detail)
	} else {
		fmt.Printf("no stall: %s\n", detail)
	}
}
