// ring.go: helpers shared between the SPSC and MPSC ring buffer variants
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemosyne

import "github.com/agilira/mnemosyne/membuf"

// Handler is invoked by Read for each committed record dispatched. buf is
// the ring buffer's own backing buffer; offset and length delimit the
// record's payload within it. A handler must not retain buf.Bytes(offset,
// length) beyond the call.
type Handler func(typeID int32, buf *membuf.AtomicBuffer, offset, length int32)

// dataRegionCapacity validates that buf is large enough to carry a
// TrailerLength trailer plus a positive power-of-two data region, and
// returns that data region's length.
func dataRegionCapacity(buf *membuf.AtomicBuffer) (int32, error) {
	total := buf.Len()
	if total <= TrailerLength {
		return 0, ErrRegionTooSmall
	}
	capacity := int32(total - TrailerLength)
	if !isPowerOfTwo(capacity) {
		return 0, ErrCapacityNotPowerOfTwo
	}
	return capacity, nil
}

// maxMsgLength returns the largest payload length Write accepts for a data
// region of the given capacity: one eighth of it, so a single message can
// never monopolize the ring.
func maxMsgLength(capacity int32) int32 {
	return capacity / 8
}

// validateWrite enforces Write's two fatal preconditions: typeID must be a
// positive, non-reserved message-type id, and length must not exceed what
// the ring buffer accepts. Violations are programming errors, not
// back-pressure, so they panic instead of returning false.
func validateWrite(typeID, length, maxLength int32) {
	if typeID < 1 {
		fatalf("message type id must be >= 1, got %d", typeID)
	}
	if length > maxLength {
		fatalf("message length %d exceeds max message length %d", length, maxLength)
	}
}
