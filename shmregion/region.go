// region.go: memory-mapped backing regions for ring buffers
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package shmregion allocates the byte regions a ring buffer is wrapped
// around: an anonymous mapping for same-process producer/consumer pairs,
// or a file-backed mapping at a fixed path for cross-process sharing.
package shmregion

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Region is a memory-mapped byte slice. Its lifetime must outlive every
// ring buffer wrapped around it; call Close to unmap.
type Region struct {
	data []byte
	file *os.File
}

// Bytes returns the region's backing slice.
func (r *Region) Bytes() []byte { return r.data }

// Anonymous maps a private, zeroed region of length bytes, usable only
// within the current process (shared between goroutines, not processes).
func Anonymous(length int) (*Region, error) {
	if length <= 0 {
		return nil, fmt.Errorf("shmregion: length must be positive, got %d", length)
	}
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("shmregion: anonymous mmap of %d bytes: %w", length, err)
	}
	return &Region{data: data}, nil
}

// File maps a region backed by the file at path, creating and truncating
// it to length if necessary, for sharing across processes. The ring
// buffers assume a zeroed region; Truncate extends a fresh file with zero
// bytes, but reusing an existing file's previous contents is the caller's
// problem.
func File(path string, length int) (*Region, error) {
	if length <= 0 {
		return nil, fmt.Errorf("shmregion: length must be positive, got %d", length)
	}

	var f *os.File
	err := retryFileOperation(func() error {
		var openErr error
		f, openErr = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
		return openErr
	}, 3, 10*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("shmregion: open %s: %w", path, err)
	}

	if err := f.Truncate(int64(length)); err != nil {
		f.Close()
		return nil, fmt.Errorf("shmregion: truncate %s to %d: %w", path, length, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shmregion: mmap %s: %w", path, err)
	}

	return &Region{data: data, file: f}, nil
}

// Close unmaps the region and, for a file-backed Region, closes the
// underlying file descriptor. It does not remove the file.
func (r *Region) Close() error {
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("shmregion: munmap: %w", err)
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// retryFileOperation executes operation with retry logic for cross-platform
// reliability: container overlay filesystems and network shares can surface
// transient open/truncate failures that succeed moments later.
func retryFileOperation(operation func() error, retryCount int, retryDelay time.Duration) error {
	if retryCount <= 0 {
		retryCount = 3
	}
	if retryDelay <= 0 {
		retryDelay = 10 * time.Millisecond
	}

	var lastErr error
	for i := 0; i < retryCount; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		if i < retryCount-1 {
			time.Sleep(retryDelay)
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", retryCount, lastErr)
}
