// trailer.go: the control-counter region placed after the data region
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemosyne

import "github.com/agilira/mnemosyne/membuf"

// Trailer counter offsets, relative to the start of the trailer (i.e. to
// capacity, not to the start of the backing region). Each counter lives on
// its own padded cache-line-sized slot so producers and the consumer never
// false-share a cache line.
const (
	tailPositionOffset       = 2 * CacheLineLength
	headCachePositionOffset  = 4 * CacheLineLength
	headPositionOffset       = 6 * CacheLineLength
	correlationCounterOffset = 8 * CacheLineLength
	consumerHeartbeatOffset  = 10 * CacheLineLength

	// TrailerLength is the total size in bytes of the trailer that follows
	// the data region.
	TrailerLength = 12 * CacheLineLength
)

// ConsumerHeartbeatOffset is the trailer-relative offset of the reserved
// consumer-heartbeat slot. The core never reads or writes it; it exists so
// external tooling (see the heartbeat package) can use it for liveness
// probing without redefining the layout.
const ConsumerHeartbeatOffset = consumerHeartbeatOffset

// trailer wraps the control counters for a ring buffer of the given
// capacity, translating the logical offsets above into absolute positions
// in the backing buffer.
type trailer struct {
	buf      *membuf.AtomicBuffer
	capacity int32
}

func newTrailer(buf *membuf.AtomicBuffer, capacity int32) trailer {
	return trailer{buf: buf, capacity: capacity}
}

func (t trailer) abs(relOffset int32) int32 { return t.capacity + relOffset }

func (t trailer) tailPosition() int64 {
	return t.buf.GetInt64(t.abs(tailPositionOffset))
}

func (t trailer) tailPositionVolatile() int64 {
	return t.buf.GetInt64Volatile(t.abs(tailPositionOffset))
}

func (t trailer) putTailPositionOrdered(v int64) {
	t.buf.PutInt64Ordered(t.abs(tailPositionOffset), v)
}

func (t trailer) casTailPosition(expected, desired int64) bool {
	return t.buf.CompareAndSwapInt64(t.abs(tailPositionOffset), expected, desired)
}

func (t trailer) headPosition() int64 {
	return t.buf.GetInt64(t.abs(headPositionOffset))
}

func (t trailer) headPositionVolatile() int64 {
	return t.buf.GetInt64Volatile(t.abs(headPositionOffset))
}

func (t trailer) putHeadPositionOrdered(v int64) {
	t.buf.PutInt64Ordered(t.abs(headPositionOffset), v)
}

func (t trailer) headCachePosition() int64 {
	return t.buf.GetInt64(t.abs(headCachePositionOffset))
}

func (t trailer) headCachePositionVolatile() int64 {
	return t.buf.GetInt64Volatile(t.abs(headCachePositionOffset))
}

func (t trailer) putHeadCachePosition(v int64) {
	t.buf.PutInt64(t.abs(headCachePositionOffset), v)
}

func (t trailer) putHeadCachePositionOrdered(v int64) {
	t.buf.PutInt64Ordered(t.abs(headCachePositionOffset), v)
}

func (t trailer) nextCorrelationID() int64 {
	return t.buf.FetchAddInt64(t.abs(correlationCounterOffset), 1)
}
