// errors.go: construction-time errors and fatal-precondition panics
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemosyne

import (
	"errors"
	"fmt"
)

// Construction-time errors. These are ordinary Go errors, not panics,
// because a bad capacity is caller input the caller is expected to
// validate and recover from.
var (
	// ErrCapacityNotPowerOfTwo is returned by NewSPSC/NewMPSC when the data
	// region (buffer length minus TrailerLength) is not a positive power
	// of two.
	ErrCapacityNotPowerOfTwo = errors.New("mnemosyne: capacity must be a positive power of two")

	// ErrRegionTooSmall is returned when the supplied buffer is not even
	// large enough to hold the trailer.
	ErrRegionTooSmall = errors.New("mnemosyne: backing buffer is smaller than the trailer")
)

// fatalf panics with a descriptive message. It is used for Write's two
// programmer-error preconditions: an invalid message-type id and an
// over-length message. The panic happens before any write to the backing
// buffer, so the buffer's shared state is never modified.
func fatalf(format string, args ...any) {
	panic(fmt.Sprintf("mnemosyne: "+format, args...))
}
