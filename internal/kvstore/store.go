// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/cache"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
)

// SchemaVersion is the current on-disk layout version.
const SchemaVersion = 1

// maxConflictRetries bounds retries of a transaction that lost a write conflict.
const maxConflictRetries = 3

// Errors
var (
	// ErrStoreClosed is returned by operations after Close.
	ErrStoreClosed = errors.New("kvstore: store is closed")

	// ErrSchemaTooNew is returned by Open when the data was written by a newer version.
	ErrSchemaTooNew = errors.New("kvstore: schema version is newer than supported")
)

// BadgerStore is a cache.Backend on BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

var _ cache.Backend = (*BadgerStore)(nil)

// Open opens (or creates) the store and brings its schema up to date.
func Open(cfg Config) (*BadgerStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kvstore config: %w", err)
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.MemTableSize = cfg.MemTableSize
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	opts.NumCompactors = cfg.NumCompactors
	if cfg.Compression {
		opts.Compression = options.Snappy
	} else {
		opts.Compression = options.None
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &BadgerStore{db: db, config: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Bool("compression", cfg.Compression).
		Msg("Persistent cache opened")
	return s, nil
}

// migrate stamps a fresh store, discards tables of an older schema and
// rejects a newer one.
func (s *BadgerStore) migrate() error {
	version, found, err := s.schemaVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch {
	case !found:
	case version == SchemaVersion:
		return nil
	case version > SchemaVersion:
		return fmt.Errorf("%w: found %d, supported %d", ErrSchemaTooNew, version, SchemaVersion)
	default:
		logging.Warn().Int("from", version).Int("to", SchemaVersion).
			Msg("Persistent cache schema is outdated, discarding cached tables")
		if err := s.db.DropPrefix([]byte(prefixTables)); err != nil {
			return fmt.Errorf("discard outdated tables: %w", err)
		}
	}
	return s.stampSchema(SchemaVersion)
}

func (s *BadgerStore) schemaVersion() (int, bool, error) {
	var version int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySchema))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v, err := strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("parse schema version %q: %w", val, err)
			}
			version = v
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, true, nil
}

func (s *BadgerStore) stampSchema(version int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keySchema), []byte(strconv.Itoa(version)))
	})
}

// acquire takes the read lock for one operation.
func (s *BadgerStore) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	return nil
}

func (s *BadgerStore) release() {
	s.mu.RUnlock()
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func withBackstopTTL(e *badger.Entry, expiresAt time.Time) *badger.Entry {
	if ttl := time.Until(expiresAt); ttl > 0 {
		return e.WithTTL(ttl)
	}
	return e
}

func (s *BadgerStore) Get(ctx context.Context, table, key string) (_ []byte, _ bool, err error) {
	if err := validTable(table); err != nil {
		return nil, false, err
	}
	if err := s.acquire(ctx); err != nil {
		return nil, false, err
	}
	defer s.release()

	start := time.Now()
	defer func() { metrics.RecordKVStoreOp("get", time.Since(start), err) }()

	var data []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(table, key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		_, data, err = decodeEnvelope(raw)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kvstore get %s/%s: %w", table, key, err)
	}
	return data, true, nil
}

// previousExpiry reads the expiry of the current value under dk, if any.
func previousExpiry(txn *badger.Txn, dk []byte) (uint64, bool, error) {
	item, err := txn.Get(dk)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var exp uint64
	err = item.Value(func(val []byte) error {
		e, _, derr := decodeEnvelope(val)
		exp = e
		return derr
	})
	if errors.Is(err, errCorruptEnvelope) {
		return 0, false, nil
	}
	return exp, err == nil, err
}

func (s *BadgerStore) Put(ctx context.Context, table, key string, value []byte, expiresAt time.Time) (err error) {
	if err := validTable(table); err != nil {
		return err
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	start := time.Now()
	defer func() { metrics.RecordKVStoreOp("put", time.Since(start), err) }()

	dk := dataKey(table, key)
	ik := indexKey(table, expiresAt, key)
	err = s.update(func(txn *badger.Txn) error {
		prev, found, err := previousExpiry(txn, dk)
		if err != nil {
			return err
		}
		if found && prev != expiryNanos(expiresAt) {
			if err := txn.Delete(indexKey(table, time.Unix(0, int64(prev)), key)); err != nil {
				return err
			}
		}
		if err := txn.SetEntry(withBackstopTTL(badger.NewEntry(dk, encodeEnvelope(expiresAt, value)), expiresAt)); err != nil {
			return err
		}
		return txn.SetEntry(withBackstopTTL(badger.NewEntry(ik, nil), expiresAt))
	})
	if err != nil {
		return fmt.Errorf("kvstore put %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, table, key string) (err error) {
	if err := validTable(table); err != nil {
		return err
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	start := time.Now()
	defer func() { metrics.RecordKVStoreOp("delete", time.Since(start), err) }()

	dk := dataKey(table, key)
	err = s.update(func(txn *badger.Txn) error {
		prev, found, err := previousExpiry(txn, dk)
		if err != nil {
			return err
		}
		if found {
			if err := txn.Delete(indexKey(table, time.Unix(0, int64(prev)), key)); err != nil {
				return err
			}
		}
		return txn.Delete(dk)
	})
	if err != nil {
		return fmt.Errorf("kvstore delete %s/%s: %w", table, key, err)
	}
	return nil
}

type expiredCandidate struct {
	index []byte
	key   string
}

// DeleteExpired removes up to limit entries expiring at or before now. The
// index is read in one transaction and the deletions applied in another;
// an entry re-set in between keeps its new value.
func (s *BadgerStore) DeleteExpired(ctx context.Context, table string, now time.Time, limit int) (removed int, err error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	if limit <= 0 {
		return 0, nil
	}
	if err := s.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.release()

	start := time.Now()
	defer func() { metrics.RecordKVStoreOp("delete_expired", time.Since(start), err) }()

	cutoff := expiryNanos(now)
	var candidates []expiredCandidate
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := indexPrefix(table)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(candidates) < limit; it.Next() {
			exp, key, ok := parseIndexKey(table, it.Item().Key())
			if !ok {
				continue
			}
			if exp > cutoff {
				break
			}
			candidates = append(candidates, expiredCandidate{index: it.Item().KeyCopy(nil), key: key})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("kvstore scan expired %s: %w", table, err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	err = s.update(func(txn *badger.Txn) error {
		removed = 0
		for _, c := range candidates {
			if err := txn.Delete(c.index); err != nil {
				return err
			}
			dk := dataKey(table, c.key)
			exp, found, err := previousExpiry(txn, dk)
			if err != nil {
				return err
			}
			if !found || exp > cutoff {
				continue
			}
			if err := txn.Delete(dk); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("kvstore delete expired %s: %w", table, err)
	}
	return removed, nil
}

func (s *BadgerStore) Clear(ctx context.Context, table string) (err error) {
	if err := validTable(table); err != nil {
		return err
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	start := time.Now()
	defer func() { metrics.RecordKVStoreOp("clear", time.Since(start), err) }()

	if err = s.db.DropPrefix(tablePrefix(table)); err != nil {
		return fmt.Errorf("kvstore clear %s: %w", table, err)
	}
	return nil
}

// Count returns the number of entries expiring after now.
func (s *BadgerStore) Count(ctx context.Context, table string, now time.Time) (n int, err error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	if err := s.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.release()

	start := time.Now()
	defer func() { metrics.RecordKVStoreOp("count", time.Since(start), err) }()

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := indexPrefix(table)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexSeek(table, now.Add(time.Nanosecond))); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("kvstore count %s: %w", table, err)
	}
	return n, nil
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
// It is a no-op for in-memory stores.
func (s *BadgerStore) RunGC() (err error) {
	if err := s.acquire(context.Background()); err != nil {
		return err
	}
	defer s.release()

	if s.config.InMemory {
		return nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordKVStoreOp("gc", time.Since(start), err)
		metrics.UpdateKVStoreSize(s.size())
	}()

	for {
		err := s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Size returns the LSM plus value log size in bytes.
func (s *BadgerStore) Size() int64 {
	if err := s.acquire(context.Background()); err != nil {
		return 0
	}
	defer s.release()
	return s.size()
}

func (s *BadgerStore) size() int64 {
	lsm, vlog := s.db.Size()
	return lsm + vlog
}

// Config returns the store configuration.
func (s *BadgerStore) Config() Config {
	return s.config
}

// Close waits for in-flight operations, then closes the database within
// CloseTimeout. It is safe to call more than once.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	timeout := s.config.CloseTimeout
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("Persistent cache closed")
		return nil
	case <-time.After(timeout):
		logging.Warn().Dur("timeout", timeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", timeout)
	}
}
