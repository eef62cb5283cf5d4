// Package codec implements the two binary formats the store persists:
// the latest-tier (timestamp, value) pair (C1) and the packed
// multi-version SegmentValue blob (C2).
package codec

import "encoding/binary"

// latestHeaderSize is the width of the big-endian timestamp prefix on every
// latest-tier value.
const latestHeaderSize = 8

// EncodeLatest encodes a (value, timestamp) pair for the latest tier: an
// 8-byte big-endian timestamp followed by the raw value bytes.
//
// value must not be a tombstone (nil) — the latest tier never holds
// tombstones (invariant 2); callers that would otherwise pass nil here have
// a programmer error, not a recoverable one.
func EncodeLatest(value []byte, timestamp int64) []byte {
	if value == nil {
		panic("codec: refusing to encode a tombstone into the latest tier")
	}
	out := make([]byte, latestHeaderSize+len(value))
	binary.BigEndian.PutUint64(out[:latestHeaderSize], uint64(timestamp))
	copy(out[latestHeaderSize:], value)
	return out
}

// DecodeLatestTimestamp returns the timestamp prefix of a latest-tier value.
func DecodeLatestTimestamp(raw []byte) int64 {
	return int64(binary.BigEndian.Uint64(raw[:latestHeaderSize]))
}

// DecodeLatestValue returns the value bytes of a latest-tier value.
func DecodeLatestValue(raw []byte) []byte {
	return raw[latestHeaderSize:]
}
