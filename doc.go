// doc.go: package overview
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package mnemosyne provides lock-free, fixed-capacity, shared-memory ring
// buffers for exchanging variable-length typed messages between cooperating
// producers and a single consumer.
//
// Two variants are provided:
//
//   - SPSCRingBuffer: single-producer, single-consumer. Wait-free on the
//     producer side.
//   - MPSCRingBuffer: many-producer, single-consumer. Producers claim space
//     via an atomic CAS loop; still single-consumer.
//
// Both wrap a caller-supplied byte region (see the membuf and shmregion
// packages) that may live in shared memory: a memory-mapped file, an
// anonymous mapping, or ordinary process memory. The region's layout is
// byte-exact, so two processes compiled independently can agree on
// semantics as long as they share byte order.
//
// # Quick start
//
// Allocate a region of a power-of-two data capacity plus the trailer, and
// wrap it:
//
//	region, err := shmregion.Anonymous(1<<20 + mnemosyne.TrailerLength)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer region.Close()
//
//	rb, err := mnemosyne.NewSPSC(membuf.New(region.Bytes()))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rb.Write(1, []byte("hello"), 0, 5)
//
//	rb.Read(func(msgType int32, buf *membuf.AtomicBuffer, offset, length int32) {
//		fmt.Println(msgType, string(buf.Bytes(offset, length)))
//	}, 1)
//
// # Multiple producers
//
//	rb, err := mnemosyne.NewMPSC(membuf.New(region.Bytes()))
//
// Any number of goroutines (or, if the region is genuinely shared memory,
// processes) may call Write concurrently; Read must only ever be called
// from one goroutine at a time.
//
// # What this package does not do
//
// No multi-consumer semantics, no built-in blocking or signaling (see the
// idle package for waiting strategies external callers can use), no
// message fragmentation, no cross-endian portability.
package mnemosyne
