// Package algorithm implements the Put Algorithm (C5) and Get-As-Of
// Algorithm (C6) as free functions over a client.Client, never as methods
// on a stateful receiver — observedStreamTime and the StreamContext are
// always explicit arguments, per spec.md §9's instruction to avoid hidden
// context so the same algorithm could one day drive a restore-path sandbox
// unchanged.
package algorithm

import (
	"github.com/embeddedkv/versionedstore/internal/client"
	"github.com/embeddedkv/versionedstore/internal/codec"
	"github.com/embeddedkv/versionedstore/internal/segments"
)

// StreamContext is the narrow slice of the surrounding stream-processor
// context the algorithms touch: a place to count retention-dropped and
// retention-denied operations. It is never an error path (§7 category 4/5).
type StreamContext interface {
	RecordExpired()
}

// Put places (key, value, timestamp) into the store reachable through c.
// value == nil means a tombstone (delete marker). observedStreamTime is
// the value the facade already advanced to max(previous, timestamp) before
// calling in; historyRetention is H.
func Put(c client.Client, ctx StreamContext, observedStreamTime, historyRetention int64, key, value []byte, timestamp int64) error {
	// foundTs is nil for the sentinel described in §4.5: "new record
	// belongs in the latest tier". Once non-nil it holds the smallest
	// timestamp seen so far strictly greater than `timestamp` — the
	// current best guess for the new record's validTo.
	var foundTs *int64

	raw, err := c.GetLatestValue(key)
	if err != nil {
		return err
	}

	if raw != nil {
		latestTs := codec.DecodeLatestTimestamp(raw)
		switch {
		case timestamp < latestTs:
			foundTs = &latestTs

		case timestamp == latestTs:
			if value == nil {
				return c.DeleteLatestValue(key)
			}
			return c.PutLatestValue(key, codec.EncodeLatest(value, timestamp))

		default: // timestamp > latestTs: demote the current latest.
			oldValue := append([]byte(nil), codec.DecodeLatestValue(raw)...)
			demoteSegID := c.SegmentIDForTimestamp(timestamp)
			segment, live, err := c.GetOrCreateSegmentIfLive(demoteSegID, observedStreamTime)
			if err != nil {
				return err
			}
			if live {
				existing, err := segment.Get(key)
				if err != nil {
					return err
				}
				if existing == nil {
					sv := codec.NewSegmentValueWithRecord(oldValue, latestTs, timestamp)
					if err := segment.Put(key, sv.Serialize()); err != nil {
						return err
					}
				} else {
					sv, err := codec.Deserialize(existing)
					if err != nil {
						return err
					}
					if err := sv.InsertAsLatest(latestTs, timestamp, oldValue); err != nil {
						return err
					}
					// Persistence ordering: the segment write lands before
					// the latest-tier update below, so a crash between the
					// two yields a duplicate, never a loss (§5).
					if err := segment.Put(key, sv.Serialize()); err != nil {
						return err
					}
				}
			}

			if value != nil {
				return c.PutLatestValue(key, codec.EncodeLatest(value, timestamp))
			}
			// Tombstone: demote is done, but the tombstone itself still
			// needs placing. Delete from the latest tier and fall through
			// to Phase 3 with the sentinel.
			if err := c.DeleteLatestValue(key); err != nil {
				return err
			}
			foundTs = nil
			return phase3(c, ctx, observedStreamTime, historyRetention, key, value, timestamp, foundTs)
		}
	}

	return phase2(c, ctx, observedStreamTime, historyRetention, key, value, timestamp, foundTs)
}

func phase2(c client.Client, ctx StreamContext, observedStreamTime, historyRetention int64, key, value []byte, timestamp int64, foundTs *int64) error {
	segs, err := c.ReverseSegmentsFrom(timestamp)
	if err != nil {
		return err
	}

	for _, seg := range segs {
		raw, err := seg.Get(key)
		if err != nil {
			return err
		}
		if raw == nil {
			continue
		}

		nextTs, err := codec.GetNextTimestamp(raw)
		if err != nil {
			return err
		}
		minTs, err := codec.GetMinTimestamp(raw)
		if err != nil {
			return err
		}

		switch {
		case nextTs <= timestamp:
			// Case A: nothing in this or earlier segments will be
			// displaced. Stop scanning.
			return phase3(c, ctx, observedStreamTime, historyRetention, key, value, timestamp, foundTs)

		case minTs <= timestamp && timestamp < nextTs:
			// Case B: the record belongs inside this segment.
			return putToSegment(c, seg, raw, key, value, timestamp, observedStreamTime)

		case minTs > timestamp && minTs < observedStreamTime-historyRetention:
			// Case C: the incoming record is itself older than retention.
			ctx.RecordExpired()
			return nil

		default:
			// Case D: tentatively narrow foundTs and keep scanning older
			// segments.
			mt := minTs
			foundTs = &mt
		}
	}

	return phase3(c, ctx, observedStreamTime, historyRetention, key, value, timestamp, foundTs)
}

// putToSegment implements §4.5.3: the new record lands inside an existing
// segment, possibly displacing a predecessor into an older one.
func putToSegment(c client.Client, seg *segments.Segment, raw []byte, key, value []byte, timestamp, observedStreamTime int64) error {
	sv, err := codec.Deserialize(raw)
	if err != nil {
		return err
	}

	wantedID := c.SegmentIDForTimestamp(timestamp)
	needMove := wantedID != seg.ID
	sr := sv.Find(timestamp, needMove)

	switch {
	case sr.Index < sv.Len() && sr.ValidFrom == timestamp:
		sv.UpdateRecord(timestamp, value, sr.Index)
		return seg.Put(key, sv.Serialize())

	case sr.Found && needMove:
		olderID := wantedID
		older, live, err := c.GetOrCreateSegmentIfLive(olderID, observedStreamTime)
		if err != nil {
			return err
		}
		if live {
			existing, err := older.Get(key)
			if err != nil {
				return err
			}
			if existing == nil {
				olderSv := codec.NewSegmentValueWithRecord(sr.Value, sr.ValidFrom, timestamp)
				if err := older.Put(key, olderSv.Serialize()); err != nil {
					return err
				}
			} else {
				olderSv, err := codec.Deserialize(existing)
				if err != nil {
					return err
				}
				if err := olderSv.InsertAsLatest(sr.ValidFrom, timestamp, sr.Value); err != nil {
					return err
				}
				if err := older.Put(key, olderSv.Serialize()); err != nil {
					return err
				}
			}
		}
		// The write to `older` must be persisted before the write to
		// `seg` below — same partial-failure rationale as Phase 1.
		sv.UpdateRecord(timestamp, value, sr.Index)
		return seg.Put(key, sv.Serialize())

	default:
		sv.Insert(timestamp, value, sr.Index)
		return seg.Put(key, sv.Serialize())
	}
}

// phase3 implements §4.5.4: placement once no existing segment owns the
// new record's position.
func phase3(c client.Client, ctx StreamContext, observedStreamTime, historyRetention int64, key, value []byte, timestamp int64, foundTs *int64) error {
	if foundTs == nil {
		if value != nil {
			return c.PutLatestValue(key, codec.EncodeLatest(value, timestamp))
		}
		return placeTombstoneAsLatest(c, ctx, observedStreamTime, key, timestamp)
	}
	return placeWithValidTo(c, ctx, observedStreamTime, key, value, timestamp, *foundTs)
}

func placeTombstoneAsLatest(c client.Client, ctx StreamContext, observedStreamTime int64, key []byte, timestamp int64) error {
	segID := c.SegmentIDForTimestamp(timestamp)
	segment, live, err := c.GetOrCreateSegmentIfLive(segID, observedStreamTime)
	if err != nil {
		return err
	}
	if !live {
		ctx.RecordExpired()
		return nil
	}

	raw, err := segment.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		sv := codec.NewSegmentValueWithRecord(nil, timestamp, timestamp)
		return segment.Put(key, sv.Serialize())
	}

	nextTs, err := codec.GetNextTimestamp(raw)
	if err != nil {
		return err
	}
	if nextTs == timestamp {
		return nil // already represented
	}

	sv, err := codec.Deserialize(raw)
	if err != nil {
		return err
	}
	if err := sv.InsertAsLatest(nextTs, timestamp, nil); err != nil {
		return err
	}
	return segment.Put(key, sv.Serialize())
}

func placeWithValidTo(c client.Client, ctx StreamContext, observedStreamTime int64, key, value []byte, timestamp, validTo int64) error {
	segID := c.SegmentIDForTimestamp(validTo)
	segment, live, err := c.GetOrCreateSegmentIfLive(segID, observedStreamTime)
	if err != nil {
		return err
	}
	if !live {
		ctx.RecordExpired()
		return nil
	}

	raw, err := segment.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		sv := codec.NewSegmentValueWithRecord(value, timestamp, validTo)
		return segment.Put(key, sv.Serialize())
	}

	nextTs, err := codec.GetNextTimestamp(raw)
	if err != nil {
		return err
	}
	sv, err := codec.Deserialize(raw)
	if err != nil {
		return err
	}
	if nextTs <= timestamp {
		if err := sv.InsertAsLatest(timestamp, validTo, value); err != nil {
			return err
		}
	} else {
		if err := sv.InsertAsEarliest(timestamp, value); err != nil {
			return err
		}
	}
	return segment.Put(key, sv.Serialize())
}
