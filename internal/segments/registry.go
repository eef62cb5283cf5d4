// Package segments implements the Segment Registry (C3): segment id
// arithmetic, lazy segment creation, reverse-ordered lookup, and
// retention-driven expiry, all realized over one kvengine.Column ("the
// segments column family") whose sub-columns are individual segments.
package segments

import (
	"go.uber.org/zap"

	"github.com/embeddedkv/versionedstore/internal/kvengine"
)

// Segment is a handle to one live segment's storage.
type Segment struct {
	ID  uint64
	col kvengine.Column
}

// Get reads a key's SegmentValue blob from this segment, or (nil, nil) if
// the key has no version packed here.
func (s *Segment) Get(key []byte) ([]byte, error) { return s.col.Get(key) }

// Put writes a key's SegmentValue blob into this segment.
func (s *Segment) Put(key, value []byte) error { return s.col.Put(key, value) }

// Registry manages the segment tier: it owns the "<name>.segments" column
// family and creates, looks up, and expires the per-segment sub-columns
// within it.
type Registry struct {
	root      kvengine.Column
	interval  int64 // S
	retention int64 // H
	log       *zap.SugaredLogger
}

// NewRegistry builds a registry over root, the segments column family, with
// segment interval S and history retention H.
func NewRegistry(root kvengine.Column, segmentInterval, historyRetention int64, log *zap.SugaredLogger) *Registry {
	return &Registry{root: root, interval: segmentInterval, retention: historyRetention, log: log}
}

// floorDiv computes floor(a/b) for the signs timestamps can take — Go's
// native integer division truncates toward zero, which is only equivalent
// to floor for non-negative operands. Kept mathematically correct for both
// signs even though SegmentID below documents a non-negative-timestamp
// precondition: a caller that violates the precondition should get the
// right segment id and fail loudly elsewhere (or not at all), not silently
// get a wrong one from truncating division on top of an already-unsupported
// input.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// SegmentID returns floor(t / S), the id of the segment owning timestamp t.
//
// Precondition: t must be non-negative. Segment ids are stored and compared
// as uint64 (the backing engine's sub-column keys, and both
// SubColumnIDsDescendingFrom implementations, order them as plain unsigned
// integers). A negative t produces a negative floorDiv result that wraps to
// a huge uint64 and sorts as the newest id rather than the oldest, inverting
// SegmentsCoveringFrom's newest-first order and the reverse-scan early exit
// built on it. Every timestamp this store accepts is expected to come from
// a real-world clock or sequence counter, so this precondition is not
// enforced at the API boundary; it is a documented constraint on valid
// input, not a runtime-checked invariant.
func (r *Registry) SegmentID(t int64) uint64 {
	return uint64(floorDiv(t, r.interval))
}

// segmentEnd returns the last timestamp owned by segment id, i.e. the upper
// bound of its [id*S, (id+1)*S) range.
func (r *Registry) segmentEnd(id uint64) int64 {
	return int64(id+1)*r.interval - 1
}

// isLive reports whether any part of segment id's range is still within
// the retention window as of streamTime.
func (r *Registry) isLive(id uint64, streamTime int64) bool {
	return r.segmentEnd(id) >= streamTime-r.retention
}

// GetOrCreateIfLive ensures segment id exists and returns a handle to it,
// unless the segment's entire time range already lies before the retention
// horizon, in which case it returns (nil, false, nil) without creating
// anything. Every call also opportunistically expires any segment that has
// aged out as of streamTime — this is the "on each call that advances
// streamTime" trigger point §4.3 describes, folded into the one C4
// operation that already carries streamTime.
func (r *Registry) GetOrCreateIfLive(id uint64, streamTime int64) (*Segment, bool, error) {
	if err := r.Expire(streamTime); err != nil {
		return nil, false, err
	}
	if !r.isLive(id, streamTime) {
		return nil, false, nil
	}
	col, err := r.root.CreateSubColumnIfNotExists(id)
	if err != nil {
		return nil, false, err
	}
	return &Segment{ID: id, col: col}, true, nil
}

// SegmentsCoveringFrom returns every existing segment whose end is >=
// fromTimestamp, newest first.
func (r *Registry) SegmentsCoveringFrom(fromTimestamp int64) ([]*Segment, error) {
	minID := r.SegmentID(fromTimestamp)
	ids, err := r.root.SubColumnIDsDescendingFrom(minID)
	if err != nil {
		return nil, err
	}
	segs := make([]*Segment, 0, len(ids))
	for _, id := range ids {
		col, existed, err := r.root.SubColumn(id)
		if err != nil {
			return nil, err
		}
		if !existed {
			continue
		}
		segs = append(segs, &Segment{ID: id, col: col})
	}
	return segs, nil
}

// Expire drops every segment whose entire range has aged out of the
// retention window as of streamTime — bulk erasure of whole segments,
// never per-key deletion, so the backing engine's per-sub-column delete
// stays one transaction per segment.
func (r *Registry) Expire(streamTime int64) error {
	ids, err := r.root.SubColumnIDsDescendingFrom(0)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if r.isLive(id, streamTime) {
			continue
		}
		if err := r.root.DeleteSubColumn(id); err != nil {
			return err
		}
		if r.log != nil {
			r.log.Debugw("expired segment", "segmentId", id, "streamTime", streamTime)
		}
	}
	return nil
}
