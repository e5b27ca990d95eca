package fifo

import (
	"fmt"
	"testing"
	"time"
)

func uniqueSegmentName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("test-%s-%d", t.Name(), time.Now().UnixNano())
}

func TestCreateOpenSegmentRoundTrip(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := CreateSegment(name, 10, 4, true)
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}
	t.Cleanup(func() {
		seg.Close()
		RemoveSegment(name)
	})

	if !SegmentExists(name) {
		t.Fatal("SegmentExists = false right after CreateSegment")
	}

	opened, err := OpenSegment(name)
	if err != nil {
		t.Fatalf("OpenSegment: %v", err)
	}
	t.Cleanup(func() { opened.Close() })

	if opened.FrameCount() != 10 || opened.FrameSize() != 4 {
		t.Fatalf("opened segment has FrameCount=%d FrameSize=%d, want 10,4", opened.FrameCount(), opened.FrameSize())
	}
}

func TestCreateSegmentRejectsDuplicateName(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := CreateSegment(name, 10, 4, false)
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}
	t.Cleanup(func() {
		seg.Close()
		RemoveSegment(name)
	})

	if _, err := CreateSegment(name, 10, 4, false); err == nil {
		t.Fatal("expected an error creating a segment that already exists")
	}
}

func TestOpenSegmentMissingFails(t *testing.T) {
	if _, err := OpenSegment(uniqueSegmentName(t)); err == nil {
		t.Fatal("expected an error opening a segment that was never created")
	}
}

func TestSegmentFIFOSharesIndicesAcrossPeers(t *testing.T) {
	name := uniqueSegmentName(t)
	writerSeg, err := CreateSegment(name, 6, 4, true)
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}
	t.Cleanup(func() {
		writerSeg.Close()
		RemoveSegment(name)
	})

	readerSeg, err := OpenSegment(name)
	if err != nil {
		t.Fatalf("OpenSegment: %v", err)
	}
	t.Cleanup(func() { readerSeg.Close() })

	writerFIFO, err := writerSeg.FIFO()
	if err != nil {
		t.Fatalf("writerSeg.FIFO: %v", err)
	}
	readerFIFO, err := readerSeg.FIFO()
	if err != nil {
		t.Fatalf("readerSeg.FIFO: %v", err)
	}

	w := NewWriter(writerFIFO)
	r, err := NewReader(readerFIFO, true)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	n, _, err := w.Obtain(3, 0)
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	if err := w.Release(n); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if got := readerFIFO.State().Rear; got != n {
		t.Fatalf("reader-side FIFO observed Rear=%d after writer released %d frames, want %d", got, n, n)
	}

	rn, _, err := r.Obtain(n, 0)
	if err != nil {
		t.Fatalf("reader Obtain: %v", err)
	}
	if rn != n {
		t.Fatalf("reader Obtain = %d, want %d", rn, n)
	}
}
