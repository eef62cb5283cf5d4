// Package client implements the Versioned-Store Client (C4): the narrow
// six-operation adapter the put/get algorithms are written against, so the
// same algorithm code can one day drive a restore-path sandbox without
// duplicating itself (spec.md §9's "generic segment client" note).
package client

import (
	"github.com/embeddedkv/versionedstore/internal/kvengine"
	"github.com/embeddedkv/versionedstore/internal/segments"
)

// Client is the six operations internal/algorithm needs.
type Client interface {
	GetLatestValue(key []byte) ([]byte, error)
	PutLatestValue(key, encoded []byte) error
	DeleteLatestValue(key []byte) error
	GetOrCreateSegmentIfLive(id uint64, streamTime int64) (*segments.Segment, bool, error)
	ReverseSegmentsFrom(fromTimestamp int64) ([]*segments.Segment, error)
	SegmentIDForTimestamp(t int64) uint64
}

// Live is the Client implementation backing a real, open store: a latest-
// tier column family plus a segment registry.
type Live struct {
	latest   kvengine.Column
	registry *segments.Registry
}

// NewLive builds a live Client over an already-opened latest-tier column
// and segment registry.
func NewLive(latest kvengine.Column, registry *segments.Registry) *Live {
	return &Live{latest: latest, registry: registry}
}

func (l *Live) GetLatestValue(key []byte) ([]byte, error) {
	return l.latest.Get(key)
}

func (l *Live) PutLatestValue(key, encoded []byte) error {
	return l.latest.Put(key, encoded)
}

func (l *Live) DeleteLatestValue(key []byte) error {
	return l.latest.Delete(key)
}

func (l *Live) GetOrCreateSegmentIfLive(id uint64, streamTime int64) (*segments.Segment, bool, error) {
	return l.registry.GetOrCreateIfLive(id, streamTime)
}

func (l *Live) ReverseSegmentsFrom(fromTimestamp int64) ([]*segments.Segment, error) {
	return l.registry.SegmentsCoveringFrom(fromTimestamp)
}

func (l *Live) SegmentIDForTimestamp(t int64) uint64 {
	return l.registry.SegmentID(t)
}

var _ Client = (*Live)(nil)
