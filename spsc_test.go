package mnemosyne

import (
	"sync"
	"testing"

	"github.com/agilira/mnemosyne/membuf"
)

func newSPSCBuffer(t *testing.T, capacity int32) (*SPSCRingBuffer, *membuf.AtomicBuffer) {
	t.Helper()
	buf := membuf.New(make([]byte, capacity+TrailerLength))
	rb, err := NewSPSC(buf)
	if err != nil {
		t.Fatalf("NewSPSC: %v", err)
	}
	return rb, buf
}

func TestNewSPSCRejectsNonPowerOfTwoCapacity(t *testing.T) {
	buf := membuf.New(make([]byte, 1000+TrailerLength))
	if _, err := NewSPSC(buf); err != ErrCapacityNotPowerOfTwo {
		t.Fatalf("err = %v, want ErrCapacityNotPowerOfTwo", err)
	}
}

func TestNewSPSCRejectsRegionSmallerThanTrailer(t *testing.T) {
	buf := membuf.New(make([]byte, 10))
	if _, err := NewSPSC(buf); err != ErrRegionTooSmall {
		t.Fatalf("err = %v, want ErrRegionTooSmall", err)
	}
}

func TestSPSCMaxMsgLengthIsOneEighthOfCapacity(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1024)
	if got := rb.MaxMsgLength(); got != 128 {
		t.Fatalf("MaxMsgLength = %d, want 128", got)
	}
}

func TestSPSCWriteTypeGuardPanics(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1024)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for typeID < 1")
		}
	}()
	rb.Write(0, []byte("x"), 0, 1)
}

func TestSPSCWriteLengthGuardPanics(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1024)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for length > MaxMsgLength")
		}
	}()
	rb.Write(1, make([]byte, rb.MaxMsgLength()+1), 0, rb.MaxMsgLength()+1)
}

func TestSPSCWriteToEmptyBuffer(t *testing.T) {
	rb, buf := newSPSCBuffer(t, 1024)
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	if ok := rb.Write(101, src, 0, 8); !ok {
		t.Fatal("Write returned false")
	}

	header := buf.GetInt64(0)
	if got := recordLength(header); got != 16 {
		t.Errorf("recordLength = %d, want 16", got)
	}
	if got := messageTypeID(header); got != 101 {
		t.Errorf("messageTypeID = %d, want 101", got)
	}
	if got := rb.trailer.tailPosition(); got != 16 {
		t.Errorf("tail_position = %d, want 16", got)
	}
}

func TestSPSCWriteRejectsInsufficientSpace(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1024)
	rb.trailer.putHeadPositionOrdered(0)
	rb.trailer.putTailPositionOrdered(928)
	rb.trailer.putHeadCachePosition(0)

	src := make([]byte, 100)
	if ok := rb.Write(101, src, 0, 100); ok {
		t.Fatal("Write returned true, want false")
	}
	if got := rb.trailer.tailPosition(); got != 928 {
		t.Errorf("tail_position = %d, want unchanged 928", got)
	}
}

// A write that would cross the wrap point publishes a padding record over
// the tail-end slack and lands the message at offset 0.
func TestSPSCWriteWrapsWithPadding(t *testing.T) {
	rb, buf := newSPSCBuffer(t, 1024)
	rb.trailer.putHeadPositionOrdered(1016)
	rb.trailer.putTailPositionOrdered(1016)
	rb.trailer.putHeadCachePosition(1016)

	src := make([]byte, 100)
	for i := range src {
		src[i] = byte(i)
	}

	if ok := rb.Write(101, src, 0, 100); !ok {
		t.Fatal("Write returned false")
	}

	padHeader := buf.GetInt64(1016)
	if got := recordLength(padHeader); got != 8 {
		t.Errorf("padding length = %d, want 8", got)
	}
	if got := messageTypeID(padHeader); got != PaddingMsgTypeID {
		t.Errorf("padding type = %d, want %d", got, PaddingMsgTypeID)
	}

	msgHeader := buf.GetInt64(0)
	if got := recordLength(msgHeader); got != 108 {
		t.Errorf("message length = %d, want 108", got)
	}
	if got := messageTypeID(msgHeader); got != 101 {
		t.Errorf("message type = %d, want 101", got)
	}

	if got := rb.trailer.tailPosition(); got != 1136 {
		t.Errorf("tail_position = %d, want 1136", got)
	}
}

func TestSPSCReadTwoThenIdempotentReRead(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1024)
	src := []byte("12345678")

	if !rb.Write(101, src, 0, 8) {
		t.Fatal("first Write failed")
	}
	if !rb.Write(101, src, 0, 8) {
		t.Fatal("second Write failed")
	}

	var dispatched [][]byte
	n := rb.Read(func(typeID int32, buf *membuf.AtomicBuffer, offset, length int32) {
		dispatched = append(dispatched, append([]byte{}, buf.Bytes(offset, length)...))
	}, 1<<20)

	if n != 2 {
		t.Fatalf("Read dispatched %d messages, want 2", n)
	}
	if got := rb.trailer.headPosition(); got != 32 {
		t.Errorf("head_position = %d, want 32", got)
	}
	for i, payload := range dispatched {
		if string(payload) != "12345678" {
			t.Errorf("message %d payload = %q, want %q", i, payload, "12345678")
		}
	}

	n = rb.Read(func(int32, *membuf.AtomicBuffer, int32, int32) {
		t.Fatal("handler should not be called on an idempotent re-read")
	}, 1<<20)
	if n != 0 {
		t.Fatalf("second Read dispatched %d messages, want 0", n)
	}
}

func TestSPSCRoundTripPreservesOrderAndContent(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 4096)
	const n = 50

	for i := 0; i < n; i++ {
		payload := []byte{byte(i), byte(i + 1), byte(i + 2)}
		if !rb.Write(int32(i+1), payload, 0, 3) {
			t.Fatalf("Write %d failed", i)
		}
	}

	var seen []int32
	dispatched := rb.Read(func(typeID int32, buf *membuf.AtomicBuffer, offset, length int32) {
		seen = append(seen, typeID)
		payload := buf.Bytes(offset, length)
		want := byte(typeID - 1)
		if payload[0] != want {
			t.Errorf("message type %d payload[0] = %d, want %d", typeID, payload[0], want)
		}
	}, n)

	if int(dispatched) != n {
		t.Fatalf("dispatched %d messages, want %d", dispatched, n)
	}
	for i, typeID := range seen {
		if typeID != int32(i+1) {
			t.Fatalf("FIFO violated: seen[%d] = %d, want %d", i, typeID, i+1)
		}
	}
}

func TestSPSCReclaimOnExitZerosConsumedBytes(t *testing.T) {
	rb, buf := newSPSCBuffer(t, 1024)
	if !rb.Write(1, []byte("hello"), 0, 5) {
		t.Fatal("Write failed")
	}

	rb.Read(func(int32, *membuf.AtomicBuffer, int32, int32) {}, 1)

	for i := int32(0); i < 8; i++ {
		if got := buf.GetInt32(i); got != 0 {
			t.Errorf("byte offset %d not zeroed after reclaim, got %d", i, got)
		}
	}
}

func TestSPSCHandlerPanicStillReclaims(t *testing.T) {
	rb, buf := newSPSCBuffer(t, 1024)
	if !rb.Write(1, []byte("hello"), 0, 5) {
		t.Fatal("Write failed")
	}

	func() {
		defer func() { recover() }()
		rb.Read(func(int32, *membuf.AtomicBuffer, int32, int32) {
			panic("handler failure")
		}, 1)
	}()

	if got := rb.trailer.headPosition(); got != 16 {
		t.Errorf("head_position after panicking handler = %d, want 16", got)
	}
	if got := buf.GetInt64(0); got != 0 {
		t.Errorf("header not zeroed after panicking handler, got %d", got)
	}
}

func TestSPSCCapacityConservation(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 256)
	payload := make([]byte, 8)

	for i := 0; i < 1000; i++ {
		rb.Write(1, payload, 0, 8)
		rb.Read(func(int32, *membuf.AtomicBuffer, int32, int32) {}, 1<<20)

		tail := rb.trailer.tailPosition()
		head := rb.trailer.headPosition()
		if tail-head > int64(rb.Capacity()) {
			t.Fatalf("iteration %d: tail-head = %d exceeds capacity %d", i, tail-head, rb.Capacity())
		}
		if head > tail {
			t.Fatalf("iteration %d: head %d exceeds tail %d", i, head, tail)
		}
	}
}

func TestSPSCUnblockAlwaysFalse(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1024)
	if rb.Unblock() {
		t.Fatal("SPSC Unblock must always return false")
	}
}

func TestSPSCConcurrentProducerConsumer(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1<<16)
	const total = 20000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		payload := []byte("payload-bytes")
		for i := 0; i < total; i++ {
			for !rb.Write(1, payload, 0, int32(len(payload))) {
			}
		}
	}()

	received := 0
	go func() {
		defer wg.Done()
		for received < total {
			received += int(rb.Read(func(int32, *membuf.AtomicBuffer, int32, int32) {}, 256))
		}
	}()

	wg.Wait()
	if received != total {
		t.Fatalf("received %d messages, want %d", received, total)
	}
}

func TestSPSCNextCorrelationIDIsMonotonic(t *testing.T) {
	rb, _ := newSPSCBuffer(t, 1024)
	prev := rb.NextCorrelationID()
	for i := 0; i < 1000; i++ {
		next := rb.NextCorrelationID()
		if next != prev+1 {
			t.Fatalf("correlation id jumped from %d to %d", prev, next)
		}
		prev = next
	}
}
