package fifo

import "testing"

func TestNewFIFORejectsZeroFrameCount(t *testing.T) {
	if _, err := NewFIFO(0, 4, make([]byte, 100), false); err == nil {
		t.Fatal("expected an error for frameCount=0")
	}
}

func TestNewFIFORejectsZeroFrameSize(t *testing.T) {
	if _, err := NewFIFO(10, 0, make([]byte, 100), false); err == nil {
		t.Fatal("expected an error for frameSize=0")
	}
}

func TestNewFIFORejectsUndersizedBuffer(t *testing.T) {
	if _, err := NewFIFO(10, 4, make([]byte, 39), false); err == nil {
		t.Fatal("expected an error for a buffer one byte short of 10*4")
	}
}

func TestNewFIFORejectsOversizedCapacity(t *testing.T) {
	if _, err := NewFIFO(1<<30, 4, nil, false); err == nil {
		t.Fatal("expected an error for frameCount*frameSize beyond the 2^31-1 limit")
	}
}

func TestNewFIFOSharedRejectsNilRear(t *testing.T) {
	if _, err := NewFIFOShared(10, 4, make([]byte, 40), nil, nil); err == nil {
		t.Fatal("expected an error for a nil shared rear index")
	}
}

func TestFIFOCapacityArithmeticExposed(t *testing.T) {
	f, err := NewFIFO(6, 4, make([]byte, 24), false)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	if f.PowerOfTwoCeiling() != 8 {
		t.Errorf("PowerOfTwoCeiling() = %d, want 8", f.PowerOfTwoCeiling())
	}
	if f.FudgeFactor() != 2 {
		t.Errorf("FudgeFactor() = %d, want 2", f.FudgeFactor())
	}
}

func TestFIFOThrottled(t *testing.T) {
	f, err := NewFIFO(6, 4, make([]byte, 24), true)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	if !f.Throttled() {
		t.Fatal("Throttled() = false, want true after NewFIFO(..., throttlesWriter=true)")
	}

	unthrottled, err := NewFIFO(6, 4, make([]byte, 24), false)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	if unthrottled.Throttled() {
		t.Fatal("Throttled() = true, want false after NewFIFO(..., throttlesWriter=false)")
	}
}

func TestFIFOSplitIovecNoWrap(t *testing.T) {
	f, err := NewFIFO(10, 4, make([]byte, 40), false)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	iov := f.splitIovec(2, 3)
	if iov[0] != (Iovec{Offset: 2, Length: 3}) || iov[1] != (Iovec{}) {
		t.Fatalf("splitIovec(2,3) = %+v, want [{2 3} {0 0}]", iov)
	}
}

func TestFIFOSplitIovecAcrossWrap(t *testing.T) {
	f, err := NewFIFO(10, 4, make([]byte, 40), false)
	if err != nil {
		t.Fatalf("NewFIFO: %v", err)
	}
	iov := f.splitIovec(8, 5)
	if iov[0] != (Iovec{Offset: 8, Length: 2}) {
		t.Fatalf("first fragment = %+v, want {8 2}", iov[0])
	}
	if iov[1] != (Iovec{Offset: 0, Length: 3}) {
		t.Fatalf("second fragment = %+v, want {0 3}", iov[1])
	}
}
