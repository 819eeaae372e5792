// spsc.go: wait-free single-producer, single-consumer ring buffer
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemosyne

import "github.com/agilira/mnemosyne/membuf"

// SPSCRingBuffer is a wait-free single-producer, single-consumer ring
// buffer over a caller-supplied byte region.
//
// A SPSCRingBuffer is safe to share between exactly one producer goroutine
// and exactly one consumer goroutine (or, if the backing buffer is genuine
// shared memory, one producer process and one consumer process). Calling
// Write from more than one goroutine, or Read from more than one, is not
// supported and will corrupt the stream.
type SPSCRingBuffer struct {
	buf      *membuf.AtomicBuffer
	capacity int32
	mask     int64
	trailer  trailer
}

// NewSPSC wraps buf as a SPSC ring buffer. buf's length must equal
// capacity+TrailerLength for some positive power-of-two capacity;
// otherwise construction fails with ErrCapacityNotPowerOfTwo, or with
// ErrRegionTooSmall if buf is no longer than TrailerLength.
func NewSPSC(buf *membuf.AtomicBuffer) (*SPSCRingBuffer, error) {
	capacity, err := dataRegionCapacity(buf)
	if err != nil {
		return nil, err
	}
	return &SPSCRingBuffer{
		buf:      buf,
		capacity: capacity,
		mask:     int64(capacity) - 1,
		trailer:  newTrailer(buf, capacity),
	}, nil
}

// Capacity returns the size in bytes of the data region.
func (rb *SPSCRingBuffer) Capacity() int32 { return rb.capacity }

// MaxMsgLength returns the largest payload length accepted by Write.
func (rb *SPSCRingBuffer) MaxMsgLength() int32 { return maxMsgLength(rb.capacity) }

// NextCorrelationID atomically returns a fresh, globally monotonic
// correlation id.
func (rb *SPSCRingBuffer) NextCorrelationID() int64 { return rb.trailer.nextCorrelationID() }

// Write enqueues a message of the given type, copying length bytes from
// src starting at srcOffset. It returns false if there is not enough
// contiguous capacity available right now; the caller decides whether to
// retry, drop, or escalate.
//
// Write panics if typeID < 1 or length exceeds MaxMsgLength; both are
// programming errors, and neither check touches the buffer's shared state.
func (rb *SPSCRingBuffer) Write(typeID int32, src []byte, srcOffset, length int32) bool {
	validateWrite(typeID, length, rb.MaxMsgLength())

	recordLen := length + HeaderLength
	aligned := alignUp(recordLen, Alignment)
	required := aligned + HeaderLength // slack header for pre-zeroing the next slot

	head := rb.trailer.headCachePosition()
	tail := rb.trailer.tailPosition()

	if int64(required) > int64(rb.capacity)-(tail-head) {
		head = rb.trailer.headPositionVolatile()
		if int64(required) > int64(rb.capacity)-(tail-head) {
			return false
		}
		rb.trailer.putHeadCachePosition(head)
	}

	recordIndex := int32(tail & rb.mask)
	toEnd := rb.capacity - recordIndex

	var padding int32
	if required > toEnd {
		if int64(required) > int64(head&rb.mask) {
			head = rb.trailer.headPositionVolatile()
			if int64(required) > int64(head&rb.mask) {
				return false
			}
			rb.trailer.putHeadCachePositionOrdered(head)
		}
		padding = toEnd
	}

	// Advance the tail before the record is committed: the claimed region
	// is reserved but, until the final header store below, still looks
	// incomplete to a reader (its length word is zero, from pre-zeroing).
	rb.trailer.putTailPositionOrdered(tail + int64(aligned) + int64(padding))

	if padding > 0 {
		rb.buf.PutInt64(0, 0)
		rb.buf.PutInt64Ordered(recordIndex, makeHeader(padding, PaddingMsgTypeID))
		recordIndex = 0
	}

	rb.buf.PutInt64(recordIndex+aligned, 0)
	rb.buf.PutBytes(payloadOffset(recordIndex), src, srcOffset, length)
	rb.buf.PutInt64Ordered(recordIndex, makeHeader(recordLen, typeID))
	return true
}

// Read invokes handler for up to limit committed records, in write order,
// and reclaims the bytes it dispatches. It returns the number of records
// dispatched.
//
// The head advance and zeroing of consumed bytes run on every exit path —
// normal return, early stop at an uncommitted record, or a panicking
// handler — so a panicking handler does not corrupt the buffer; it merely
// aborts the remainder of this Read call after cleanup runs.
func (rb *SPSCRingBuffer) Read(handler Handler, limit uint32) uint32 {
	head := rb.trailer.headPosition()
	headIndex := int32(head & rb.mask)
	contiguous := rb.capacity - headIndex

	var bytesRead int32
	var messagesRead uint32

	defer func() {
		if bytesRead > 0 {
			rb.buf.SetMemory(headIndex, bytesRead, 0)
			rb.trailer.putHeadPositionOrdered(head + int64(bytesRead))
		}
	}()

	for bytesRead < contiguous && messagesRead < limit {
		recordStart := headIndex + bytesRead
		header := rb.buf.GetInt64Volatile(recordStart)
		length := recordLength(header)
		if length <= 0 {
			break
		}
		aligned := alignUp(length, Alignment)
		bytesRead += aligned

		typeID := messageTypeID(header)
		if typeID == PaddingMsgTypeID {
			continue
		}
		messagesRead++
		handler(typeID, rb.buf, payloadOffset(recordStart), length-HeaderLength)
	}

	return messagesRead
}

// Unblock always returns false: with a single producer, the consumer can
// never observe an orphaned reservation it cannot itself already resolve
// by waiting for that one producer.
func (rb *SPSCRingBuffer) Unblock() bool { return false }
