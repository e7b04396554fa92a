// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package kvstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	prefixTables  = "t/"
	keySchema     = "m/schema_version"
	segmentData   = "/k/"
	segmentIndex  = "/x/"
	envelopeBytes = 8
)

var errCorruptEnvelope = errors.New("kvstore: value envelope too short")

func validTable(table string) error {
	if table == "" || strings.Contains(table, "/") {
		return fmt.Errorf("kvstore: invalid table name %q", table)
	}
	return nil
}

func tablePrefix(table string) []byte {
	return []byte(prefixTables + table + "/")
}

func dataKey(table, key string) []byte {
	return []byte(prefixTables + table + segmentData + key)
}

func indexPrefix(table string) []byte {
	return []byte(prefixTables + table + segmentIndex)
}

func expiryNanos(t time.Time) uint64 {
	n := t.UnixNano()
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// indexSeek returns the index position of the first entry expiring at or after t.
func indexSeek(table string, t time.Time) []byte {
	p := indexPrefix(table)
	return binary.BigEndian.AppendUint64(p, expiryNanos(t))
}

func indexKey(table string, expiresAt time.Time, key string) []byte {
	k := indexSeek(table, expiresAt)
	k = append(k, '/')
	return append(k, key...)
}

// parseIndexKey splits an index key into its expiry and cache key.
func parseIndexKey(table string, raw []byte) (uint64, string, bool) {
	p := len(indexPrefix(table))
	if len(raw) < p+envelopeBytes+1 || raw[p+envelopeBytes] != '/' {
		return 0, "", false
	}
	return binary.BigEndian.Uint64(raw[p : p+envelopeBytes]), string(raw[p+envelopeBytes+1:]), true
}

// The value envelope is the expiry in big-endian nanoseconds followed by the payload.
func encodeEnvelope(expiresAt time.Time, data []byte) []byte {
	buf := make([]byte, envelopeBytes, envelopeBytes+len(data))
	binary.BigEndian.PutUint64(buf, expiryNanos(expiresAt))
	return append(buf, data...)
}

func decodeEnvelope(raw []byte) (uint64, []byte, error) {
	if len(raw) < envelopeBytes {
		return 0, nil, errCorruptEnvelope
	}
	return binary.BigEndian.Uint64(raw[:envelopeBytes]), raw[envelopeBytes:], nil
}
