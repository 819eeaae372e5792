// mpsc.go: lock-free multi-producer, single-consumer ring buffer
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemosyne

import "github.com/agilira/mnemosyne/membuf"

// insufficientCapacity is the sentinel claimCapacity returns when no
// producer can currently reserve the requested span.
const insufficientCapacity = -2

// MPSCRingBuffer is a lock-free multi-producer, single-consumer ring
// buffer over a caller-supplied byte region.
//
// Any number of producer goroutines may call Write concurrently. Exactly
// one goroutine may call Read or Unblock at a time.
type MPSCRingBuffer struct {
	buf      *membuf.AtomicBuffer
	capacity int32
	mask     int64
	trailer  trailer
}

// NewMPSC wraps buf as a MPSC ring buffer, under the same layout
// requirements as NewSPSC.
func NewMPSC(buf *membuf.AtomicBuffer) (*MPSCRingBuffer, error) {
	capacity, err := dataRegionCapacity(buf)
	if err != nil {
		return nil, err
	}
	return &MPSCRingBuffer{
		buf:      buf,
		capacity: capacity,
		mask:     int64(capacity) - 1,
		trailer:  newTrailer(buf, capacity),
	}, nil
}

// Capacity returns the size in bytes of the data region.
func (rb *MPSCRingBuffer) Capacity() int32 { return rb.capacity }

// MaxMsgLength returns the largest payload length accepted by Write.
func (rb *MPSCRingBuffer) MaxMsgLength() int32 { return maxMsgLength(rb.capacity) }

// NextCorrelationID atomically returns a fresh, globally monotonic
// correlation id.
func (rb *MPSCRingBuffer) NextCorrelationID() int64 { return rb.trailer.nextCorrelationID() }

// claimCapacity races other producers to reserve a contiguous aligned span
// of required bytes, returning either the data-region index the caller may
// write into or insufficientCapacity.
func (rb *MPSCRingBuffer) claimCapacity(required int32) int32 {
	for {
		head := rb.trailer.headCachePositionVolatile()
		tail := rb.trailer.tailPositionVolatile()
		available := int64(rb.capacity) - (tail - head)

		if int64(required) > available {
			head = rb.trailer.headPositionVolatile()
			if int64(required) > int64(rb.capacity)-(tail-head) {
				return insufficientCapacity
			}
			rb.trailer.putHeadCachePositionOrdered(head)
		}

		tailIndex := int32(tail & rb.mask)
		toEnd := rb.capacity - tailIndex
		var padding int32

		if required > toEnd {
			headIndex := int32(head & rb.mask)
			if required > headIndex {
				head = rb.trailer.headPositionVolatile()
				headIndex = int32(head & rb.mask)
				if required > headIndex {
					return insufficientCapacity
				}
				rb.trailer.putHeadCachePositionOrdered(head)
			}
			padding = toEnd
		}

		if !rb.trailer.casTailPosition(tail, tail+int64(required)+int64(padding)) {
			continue
		}

		if padding > 0 {
			rb.buf.PutInt64Ordered(tailIndex, makeHeader(padding, PaddingMsgTypeID))
			tailIndex = 0
		}
		return tailIndex
	}
}

// Write enqueues a message of the given type. It is safe to call
// concurrently from any number of producer goroutines.
//
// Write panics if typeID < 1 or length exceeds MaxMsgLength; both are
// programming errors, and neither check touches the buffer's shared state.
func (rb *MPSCRingBuffer) Write(typeID int32, src []byte, srcOffset, length int32) bool {
	validateWrite(typeID, length, rb.MaxMsgLength())

	recordLen := length + HeaderLength
	required := alignUp(recordLen, Alignment)

	recordIndex := rb.claimCapacity(required)
	if recordIndex == insufficientCapacity {
		return false
	}

	rb.buf.PutInt64Ordered(recordIndex, makeHeader(-recordLen, typeID))
	rb.buf.PutBytes(payloadOffset(recordIndex), src, srcOffset, length)
	rb.buf.PutInt32Ordered(lengthOffset(recordIndex), recordLen)
	return true
}

// Read invokes handler for up to limit committed records, in write order,
// and reclaims the bytes it dispatches. It returns the number of records
// dispatched.
//
// A record with a negative length field marks a producer's reservation
// still in progress; Read stops there for this pass rather than waiting.
func (rb *MPSCRingBuffer) Read(handler Handler, limit uint32) uint32 {
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

// Unblock attempts to recover from a producer that reserved a slot and
// died before committing it, converting the orphaned reservation into a
// padding record so the consumer can make forward progress. It is
// advisory: call it only after deciding, by an external timeout, that the
// consumer has stalled.
func (rb *MPSCRingBuffer) Unblock() bool {
	head := rb.trailer.headPositionVolatile()
	tail := rb.trailer.tailPositionVolatile()
	if head == tail {
		return false
	}

	consumerIndex := int32(head & rb.mask)
	producerIndex := int32(tail & rb.mask)

	length := rb.buf.GetInt32Volatile(lengthOffset(consumerIndex))
	switch {
	case length < 0:
		rb.buf.PutInt64Ordered(consumerIndex, makeHeader(-length, PaddingMsgTypeID))
		return true
	case length > 0:
		return false
	}

	limit := rb.capacity
	if producerIndex > consumerIndex {
		limit = producerIndex
	}

	for i := consumerIndex + Alignment; i < limit; i += Alignment {
		candidate := rb.buf.GetInt32Volatile(lengthOffset(i))
		if candidate == 0 {
			continue
		}
		for j := i - Alignment; j >= consumerIndex; j -= Alignment {
			if rb.buf.GetInt32Volatile(lengthOffset(j)) != 0 {
				return false
			}
		}
		rb.buf.PutInt64Ordered(consumerIndex, makeHeader(i-consumerIndex, PaddingMsgTypeID))
		return true
	}
	return false
}
