package fifo

import (
	"bytes"
	"testing"
)

func newThrottledFIFO(t *testing.T, n, frameSize uint32) (*FIFO, *Writer, *Reader) {
	t.Helper()
	f, err := NewFIFO(n, frameSize, make([]byte, n*frameSize), true)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	w := NewWriter(f)
	r, err := NewReader(f, true)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return f, w, r
}

func TestWriteReadRoundTrip(t *testing.T) {
	_, w, r := newThrottledFIFO(t, 6, 4)

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} // 3 frames
	written, err := w.Write(src, 3, -1)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written != 3 {
		t.Fatalf("written = %d, want 3", written)
	}

	dst := make([]byte, 12)
	read, err := r.Read(dst, 3, -1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if read != 3 {
		t.Fatalf("read = %d, want 3", read)
	}
	if !bytes.Equal(src, dst) {
		t.Fatalf("data mismatch: wrote %v, read %v", src, dst)
	}
}

func TestWriterObtainNonBlockingWouldBlock(t *testing.T) {
	f, err := NewFIFO(4, 4, make([]byte, 16), true)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	w := NewWriter(f)
	r, err := NewReader(f, true)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	n, _, err := w.Obtain(4, 0)
	if err != nil || n != 4 {
		t.Fatalf("first Obtain = (%d, %v), want (4, nil)", n, err)
	}
	if err := w.Release(4); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// Buffer is now full from the throttling reader's perspective; a
	// non-blocking Obtain must report would-block, not an error.
	n, _, err = w.Obtain(1, 0)
	if err != nil {
		t.Fatalf("Obtain on a full FIFO returned an error: %v", err)
	}
	if n != 0 {
		t.Fatalf("Obtain on a full FIFO returned %d frames, want 0 (would-block)", n)
	}

	_ = r // reader untouched: writer alone observes the throttle front at 0
}

func TestObtainRejectsSecondCallBeforeRelease(t *testing.T) {
	_, w, _ := newThrottledFIFO(t, 6, 4)
	if _, _, err := w.Obtain(2, 0); err != nil {
		t.Fatalf("first Obtain: %v", err)
	}
	if _, _, err := w.Obtain(1, 0); err != ErrObtainPending {
		t.Fatalf("second Obtain error = %v, want ErrObtainPending", err)
	}
}

func TestReleaseRejectsMoreThanObtained(t *testing.T) {
	_, w, _ := newThrottledFIFO(t, 6, 4)
	if _, _, err := w.Obtain(2, 0); err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	if err := w.Release(3); err != ErrReleaseTooMany {
		t.Fatalf("Release(3) after Obtain(2) error = %v, want ErrReleaseTooMany", err)
	}
}

func TestReaderOverflowResyncs(t *testing.T) {
	// A throttling reader ("drain") consumes every release immediately so
	// the writer never blocks; a second, non-throttling reader ("lagging")
	// never consumes at all, so the writer eventually laps it.
	f, err := NewFIFO(6, 4, make([]byte, 24), true)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	w := NewWriter(f)
	drain, err := NewReader(f, true)
	if err != nil {
		t.Fatalf("NewReader(throttles=true): %v", err)
	}
	lagging, err := NewReader(f, false)
	if err != nil {
		t.Fatalf("NewReader(throttles=false): %v", err)
	}

	for lap := 0; lap < 20; lap++ {
		n, _, err := w.Obtain(6, -1)
		if err != nil {
			t.Fatalf("lap %d: Obtain: %v", lap, err)
		}
		if err := w.Release(n); err != nil {
			t.Fatalf("lap %d: Release: %v", lap, err)
		}
		dn, _, err := drain.Obtain(n, -1)
		if err != nil {
			t.Fatalf("lap %d: drain Obtain: %v", lap, err)
		}
		if err := drain.Release(dn); err != nil {
			t.Fatalf("lap %d: drain Release: %v", lap, err)
		}
	}

	_, _, err = lagging.Obtain(6, 0)
	if err != ErrOverflow {
		t.Fatalf("lagging Obtain error = %v, want ErrOverflow after %d laps", err, 20)
	}
	if lagging.Lost() == 0 {
		t.Fatal("Lost() == 0 after ErrOverflow")
	}

	// After the overflow, the reader has resynced and the next Obtain
	// should see a full buffer's worth of data.
	n, _, err := lagging.Obtain(6, -1)
	if err != nil {
		t.Fatalf("Obtain after resync: %v", err)
	}
	if n != 6 {
		t.Fatalf("Obtain after resync = %d frames, want 6", n)
	}
}

func TestWriterHysteresisDefaultsWakeOnFirstByte(t *testing.T) {
	_, w, _ := newThrottledFIFO(t, 6, 4)
	if !w.armed {
		t.Fatal("writer should start armed")
	}
	n, _, err := w.Obtain(1, 0)
	if err != nil || n != 1 {
		t.Fatalf("Obtain(1) = (%d, %v)", n, err)
	}
	if err := w.Release(1); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if w.armed {
		t.Fatal("writer should disarm after crossing the default highLevelTrigger=1")
	}
}

func TestSetEffectiveFramesShrinksAvailable(t *testing.T) {
	_, w, _ := newThrottledFIFO(t, 10, 4)
	if err := w.SetEffectiveFrames(3); err != nil {
		t.Fatalf("SetEffectiveFrames: %v", err)
	}
	n, _, err := w.Obtain(10, 0)
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	if n != 3 {
		t.Fatalf("Obtain(10) with effectiveFrames=3 granted %d, want 3", n)
	}
}

func TestSetEffectiveFramesRejectsOutOfRange(t *testing.T) {
	_, w, _ := newThrottledFIFO(t, 10, 4)
	if err := w.SetEffectiveFrames(0); err == nil {
		t.Fatal("expected an error for effectiveFrames=0")
	}
	if err := w.SetEffectiveFrames(11); err == nil {
		t.Fatal("expected an error for effectiveFrames > frameCount")
	}
}
