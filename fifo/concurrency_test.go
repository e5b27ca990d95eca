package fifo

import (
	"bytes"
	"context"
	"testing"
	"time"
)

// TestConcurrentWriterReaderPreservesOrder runs one writer goroutine and one
// throttling reader goroutine concurrently over many small writes and
// confirms every byte arrives, in order, exactly once -- the core liveness
// and ordering property (P1/P2 in spirit) a lock-free SPSC ring must hold
// under real concurrency, not just sequential calls.
func TestConcurrentWriterReaderPreservesOrder(t *testing.T) {
	const frameSize = 1
	const frameCount = 17 // deliberately not a power of two
	const totalFrames = 50000

	f, err := NewFIFO(frameCount, frameSize, make([]byte, frameCount*frameSize), true)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	w := NewWriter(f)
	r, err := NewReader(f, true)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	src := make([]byte, totalFrames)
	for i := range src {
		src[i] = byte(i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	writeDone := make(chan error, 1)
	go func() {
		var written uint32
		for written < totalFrames {
			n, err := w.Write(src[written:], 1, -1)
			if err != nil {
				writeDone <- err
				return
			}
			written += n
		}
		writeDone <- nil
	}()

	readDone := make(chan error, 1)
	got := make([]byte, totalFrames)
	go func() {
		var read uint32
		for read < totalFrames {
			n, err := r.Read(got[read:], 1, -1)
			if err != nil {
				readDone <- err
				return
			}
			read += n
		}
		readDone <- nil
	}()

	select {
	case err := <-writeDone:
		if err != nil {
			t.Fatalf("writer: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("writer did not finish before the deadline")
	}
	select {
	case err := <-readDone:
		if err != nil {
			t.Fatalf("reader: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("reader did not finish before the deadline")
	}

	if !bytes.Equal(src, got) {
		for i := range src {
			if src[i] != got[i] {
				t.Fatalf("first mismatch at frame %d: wrote %d, read %d", i, src[i], got[i])
			}
		}
	}
}

// TestNonThrottlingReaderNeverBlocksWriter confirms a writer with no
// throttling reader attached always reports the requested count available,
// regardless of whether any reader is draining.
func TestNonThrottlingReaderNeverBlocksWriter(t *testing.T) {
	f, err := NewFIFO(4, 4, make([]byte, 16), false)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	w := NewWriter(f)
	for i := 0; i < 100; i++ {
		n, _, err := w.Obtain(4, 0)
		if err != nil {
			t.Fatalf("iteration %d: Obtain: %v", i, err)
		}
		if n != 4 {
			t.Fatalf("iteration %d: Obtain(4) = %d, want 4 (unthrottled writer never blocks)", i, n)
		}
		if err := w.Release(n); err != nil {
			t.Fatalf("iteration %d: Release: %v", i, err)
		}
	}
}
