// config.go: configuration parsing and construction from string sizes
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package mnemosyne

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/mnemosyne/shmregion"
)

// Config collects what a caller must decide before allocating a ring
// buffer's backing region: its capacity and, optionally, how often a
// heartbeat.Reporter built on top of it should beat.
type Config struct {
	// CapacityStr is the data-region size, e.g. "64KB", "1MB". It must
	// parse (via ParseSize) to a positive power of two.
	CapacityStr string

	// FilePath, if non-empty, makes the region file-backed at that path
	// instead of an anonymous same-process mapping.
	FilePath string

	// HeartbeatIntervalStr, if non-empty, is parsed with ParseDuration
	// and returned alongside the region for the caller's own poll loop;
	// Config itself does not start a heartbeat.Reporter.
	HeartbeatIntervalStr string
}

// NewFromConfig allocates a shmregion.Region sized per cfg and returns it
// together with the parsed heartbeat interval (zero if cfg did not
// specify one). The caller wraps the region in NewSPSC or NewMPSC.
func NewFromConfig(cfg Config) (*shmregion.Region, time.Duration, error) {
	capacity, err := ParseSize(cfg.CapacityStr)
	if err != nil {
		return nil, 0, fmt.Errorf("mnemosyne: parsing CapacityStr: %w", err)
	}
	if capacity <= 0 || capacity > 1<<31 {
		return nil, 0, fmt.Errorf("mnemosyne: capacity %d out of range", capacity)
	}

	var interval time.Duration
	if cfg.HeartbeatIntervalStr != "" {
		interval, err = ParseDuration(cfg.HeartbeatIntervalStr)
		if err != nil {
			return nil, 0, fmt.Errorf("mnemosyne: parsing HeartbeatIntervalStr: %w", err)
		}
	}

	length := int(capacity) + TrailerLength

	var region *shmregion.Region
	if cfg.FilePath != "" {
		region, err = shmregion.File(cfg.FilePath, length)
	} else {
		region, err = shmregion.Anonymous(length)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("mnemosyne: allocating region: %w", err)
	}

	return region, interval, nil
}

// ParseSize converts size strings like "100MB", "1GB" to bytes. Supports
// case-insensitive input and single-letter units (K, M, G, T).
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if val, err := strconv.ParseInt(s, 10, 64); err == nil {
		return val, nil
	}

	s = strings.ToUpper(s)

	var multiplier int64
	var numStr string

	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "TB"):
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "T"):
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = s[:len(s)-1]
	default:
		return 0, fmt.Errorf("unknown size suffix in %q (supported: KB/K, MB/M, GB/G, TB/T)", s)
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number in %q: %v", s, err)
	}

	result := val * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size %q too large", s)
	}

	return result, nil
}

// ParseDuration converts duration strings like "7d", "24h" to
// time.Duration. Supports Go durations plus day/week/year suffixes.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	s = strings.ToLower(s)

	var multiplier time.Duration
	var numStr string

	switch {
	case strings.HasSuffix(s, "d"):
		multiplier = 24 * time.Hour
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "w"):
		multiplier = 7 * 24 * time.Hour
		numStr = s[:len(s)-1]
	case strings.HasSuffix(s, "y"):
		multiplier = 365 * 24 * time.Hour
		numStr = s[:len(s)-1]
	default:
		return 0, fmt.Errorf("unknown duration suffix in %q", s)
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration number in %q: %v", s, err)
	}

	return time.Duration(val) * multiplier, nil
}
