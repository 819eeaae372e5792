// heartbeat.go: liveness probing over the reserved consumer-heartbeat slot
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package heartbeat reports and reads consumer liveness through the
// trailer's reserved consumer-heartbeat slot. The ring buffer core never
// touches this slot; it exists so an external watchdog can detect a
// wedged consumer without redefining the trailer layout. A Reporter and a
// Reader operate on the same byte offset from opposite ends of a process
// boundary, exactly as the ring buffer's own counters do.
package heartbeat

import (
	"time"

	timecache "github.com/agilira/go-timecache"
	"github.com/agilira/mnemosyne/membuf"
)

// Reporter stamps the consumer-heartbeat slot with the current time,
// typically called once per consumer poll loop iteration.
type Reporter struct {
	buf    *membuf.AtomicBuffer
	offset int32
	clock  *timecache.TimeCache
}

// NewReporter returns a Reporter that writes to offset within buf. offset
// is normally mnemosyne.ConsumerHeartbeatOffset translated to an absolute
// position (capacity + that constant).
func NewReporter(buf *membuf.AtomicBuffer, offset int32) *Reporter {
	return &Reporter{buf: buf, offset: offset, clock: timecache.NewWithResolution(time.Millisecond)}
}

// Beat release-stores the current Unix nanosecond timestamp into the
// heartbeat slot.
func (r *Reporter) Beat() {
	r.buf.PutInt64Ordered(r.offset, r.clock.CachedTime().UnixNano())
}

// Close stops the Reporter's background clock refresh.
func (r *Reporter) Close() {
	r.clock.Stop()
}

// Reader observes a Reporter's heartbeat slot from the outside.
type Reader struct {
	buf    *membuf.AtomicBuffer
	offset int32
}

// NewReader returns a Reader observing offset within buf.
func NewReader(buf *membuf.AtomicBuffer, offset int32) *Reader {
	return &Reader{buf: buf, offset: offset}
}

// LastBeat returns the time of the most recent Beat, or the zero Time if
// none has been recorded yet.
func (r *Reader) LastBeat() time.Time {
	nanos := r.buf.GetInt64Volatile(r.offset)
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// Stale reports whether the most recent Beat is older than max, or no
// Beat has ever been recorded.
func (r *Reader) Stale(max time.Duration) bool {
	last := r.LastBeat()
	if last.IsZero() {
		return true
	}
	return time.Since(last) > max
}
