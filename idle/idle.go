// idle.go: idle strategies for callers waiting outside the ring buffer core
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package idle provides waiting strategies for producer/consumer loops
// built around a ring buffer. The ring buffer core never blocks or sleeps
// internally; a caller whose Write keeps returning false, or
// whose Read keeps dispatching zero messages, consults a Strategy to
// decide how hard to spin before trying again.
package idle

import (
	"runtime"
	"time"
)

// Strategy is consulted once per unsuccessful iteration of a caller's
// wait loop. idleCount is the number of consecutive unsuccessful
// iterations so far, starting at 0.
type Strategy interface {
	Idle(idleCount int)
}

// BusySpin never yields; it is appropriate only when the caller has a
// dedicated core to spin on.
type BusySpin struct{}

// Idle does nothing.
func (BusySpin) Idle(idleCount int) {}

// Sleeping yields the goroutine's P for a handful of iterations, then
// sleeps a fixed duration.
type Sleeping struct {
	Duration time.Duration
}

// Idle calls runtime.Gosched for the first few idle iterations, then
// sleeps for Duration.
func (s Sleeping) Idle(idleCount int) {
	if idleCount < 100 {
		runtime.Gosched()
		return
	}
	time.Sleep(s.Duration)
}

// Backoff escalates from spinning to yielding to sleeping, with the sleep
// duration doubling up to Max.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// Idle spins for a short run of iterations, yields for the next run, then
// sleeps with exponential backoff capped at Max.
func (b Backoff) Idle(idleCount int) {
	switch {
	case idleCount < 10:
		return
	case idleCount < 100:
		runtime.Gosched()
	default:
		min := b.Min
		if min <= 0 {
			min = time.Microsecond
		}
		max := b.Max
		if max <= 0 {
			max = time.Millisecond
		}
		shift := idleCount - 100
		if shift > 20 {
			shift = 20
		}
		d := min << uint(shift)
		if d > max || d <= 0 {
			d = max
		}
		time.Sleep(d)
	}
}
