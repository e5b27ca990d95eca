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

// obtainedState tracks the single outstanding batch between an endpoint's
// Obtain and Release, embedded by both Writer and Reader. Mirrors the
// mObtained bookkeeping shared by the original writer and reader classes.
type obtainedState struct {
	obtained uint32
}

func (o *obtainedState) beginObtain() error {
	if o.obtained != 0 {
		return ErrObtainPending
	}
	return nil
}

func (o *obtainedState) setObtained(n uint32) { o.obtained = n }

func (o *obtainedState) takeRelease(k uint32) error {
	if k > o.obtained {
		return ErrReleaseTooMany
	}
	o.obtained -= k
	return nil
}

// Obtained reports the number of frames handed out by the most recent
// Obtain that have not yet been released.
func (o *obtainedState) Obtained() uint32 { return o.obtained }
