package algorithm

import (
	"github.com/embeddedkv/versionedstore/internal/client"
	"github.com/embeddedkv/versionedstore/internal/codec"
)

// Get implements the current-value read (§4.6): the latest tier alone is
// authoritative for "what is the value of key right now", so there is no
// segment tier to consult.
func Get(c client.Client, key []byte) (value []byte, validFrom int64, found bool, err error) {
	raw, err := c.GetLatestValue(key)
	if err != nil {
		return nil, 0, false, err
	}
	if raw == nil {
		return nil, 0, false, nil
	}
	return codec.DecodeLatestValue(raw), codec.DecodeLatestTimestamp(raw), true, nil
}

// GetAsOf implements §4.6's as-of query: the retention boundary check, the
// latest-tier short-circuit, and the reverse segment scan with its early
// exit once a segment's nextTimestamp already precedes asOf.
func GetAsOf(c client.Client, observedStreamTime, historyRetention, asOf int64, key []byte) (value []byte, validFrom int64, found bool, err error) {
	if asOf < observedStreamTime-historyRetention {
		return nil, 0, false, nil
	}

	raw, err := c.GetLatestValue(key)
	if err != nil {
		return nil, 0, false, err
	}
	if raw != nil {
		if ts := codec.DecodeLatestTimestamp(raw); ts <= asOf {
			return codec.DecodeLatestValue(raw), ts, true, nil
		}
	}

	segs, err := c.ReverseSegmentsFrom(asOf)
	if err != nil {
		return nil, 0, false, err
	}

	for _, seg := range segs {
		raw, err := seg.Get(key)
		if err != nil {
			return nil, 0, false, err
		}
		if raw == nil {
			continue
		}

		nextTs, err := codec.GetNextTimestamp(raw)
		if err != nil {
			return nil, 0, false, err
		}
		if nextTs <= asOf {
			// No record in this segment, or any earlier one, can cover
			// asOf: segment placement keys on validTo, so an earlier
			// segment's newest record would have an even smaller validTo.
			return nil, 0, false, nil
		}

		minTs, err := codec.GetMinTimestamp(raw)
		if err != nil {
			return nil, 0, false, err
		}
		if minTs > asOf {
			continue
		}

		sv, err := codec.Deserialize(raw)
		if err != nil {
			return nil, 0, false, err
		}
		sr := sv.Find(asOf, true)
		if !sr.Found || sr.Tombstone {
			return nil, 0, false, nil
		}
		return sr.Value, sr.ValidFrom, true, nil
	}

	return nil, 0, false, nil
}
