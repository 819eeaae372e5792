// record.go: record header encoding and offset helpers
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemosyne

// HeaderLength is the size in bytes of a record header: a 32-bit length
// field followed by a 32-bit message-type id, packed into one 64-bit
// little-endian-on-the-wire word.
const HeaderLength = 8

// PaddingMsgTypeID is the reserved message-type id that marks a padding
// record, inserted by a producer to skip the tail-end slack left when a
// message would otherwise cross the buffer's wrap point.
const PaddingMsgTypeID = -1

// makeHeader packs a record length and message-type id into the 64-bit
// header word: low 32 bits hold length, high 32 bits hold the type id.
func makeHeader(length, typeID int32) int64 {
	return int64(uint64(uint32(typeID))<<32 | uint64(uint32(length)))
}

// recordLength extracts the low 32 bits (length) of a header word.
func recordLength(header int64) int32 {
	return int32(uint32(header))
}

// messageTypeID extracts the high 32 bits (message-type id) of a header
// word.
func messageTypeID(header int64) int32 {
	return int32(uint32(header >> 32))
}

// lengthOffset returns the offset of the length field of the record
// starting at index i. It is i itself: length occupies the low bytes.
func lengthOffset(i int32) int32 { return i }

// typeOffset returns the offset of the message-type field of the record
// starting at index i.
func typeOffset(i int32) int32 { return i + 4 }

// payloadOffset returns the offset of the payload of the record starting
// at index i.
func payloadOffset(i int32) int32 { return i + HeaderLength }
