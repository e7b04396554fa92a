// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package kvstore

import (
	"errors"
	"time"
)

// Config holds BadgerDB settings for the persistent cache.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit. Cache data is regenerable, so the
	// default is false.
	SyncWrites bool

	// Compression enables Snappy block compression.
	Compression bool

	// MemTableSize is the size of each memtable in bytes.
	MemTableSize int64

	// ValueLogFileSize is the size of each value log file in bytes.
	ValueLogFileSize int64

	// NumCompactors is the number of compaction workers. Badger needs at least 2.
	NumCompactors int

	// GCRatio is the discard ratio passed to value log GC.
	GCRatio float64

	// CloseTimeout bounds Close.
	CloseTimeout time.Duration
}

// DefaultConfig returns settings for an on-disk store.
func DefaultConfig() Config {
	return Config{
		Path:             "/data/weather-cache",
		SyncWrites:       false,
		Compression:      true,
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		NumCompactors:    2,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// InMemoryConfig returns settings for a RAM-only store.
func InMemoryConfig() Config {
	cfg := DefaultConfig()
	cfg.Path = ""
	cfg.InMemory = true
	return cfg
}

// Config errors.
var (
	ErrPathRequired   = errors.New("kvstore: path is required for an on-disk store")
	ErrInvalidGCRatio = errors.New("kvstore: gc ratio must be between 0 and 1")
	ErrMemTableSize   = errors.New("kvstore: memtable size must be at least 8MB")
	ErrCompactors     = errors.New("kvstore: at least 2 compactors are required")
)

// minMemTableSize keeps the max batch size above Badger's value threshold.
const minMemTableSize = 8 * 1024 * 1024

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return ErrPathRequired
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return ErrInvalidGCRatio
	}
	if c.MemTableSize < minMemTableSize {
		return ErrMemTableSize
	}
	if c.NumCompactors < 2 {
		return ErrCompactors
	}
	return nil
}
