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

// Package fifo implements a lock-free single-producer, single-or-multi-
// consumer ring buffer of fixed-size frames, suitable for placement in
// memory shared between address spaces (see Segment) or used entirely
// within one process.
//
// A FIFO holds capacity, frame size, a buffer pointer, and the shared rear
// index every Reader watches. A Writer and any number of Readers attach to
// it; at most one Reader may throttle the writer by publishing its own
// front index back into the FIFO, which the writer then treats as the
// limit on how far ahead of that reader it's allowed to get.
// Readers that don't throttle the writer may be lapped and will observe
// ErrOverflow, after which they resynchronize automatically.
//
// The buffer's capacity need not be a power of two. Internally, raw index
// values skip a small "fudge" region at each wrap so that extracting a
// buffer slot from a raw index stays a single mask instead of a modulo;
// see base.go.
package fifo
