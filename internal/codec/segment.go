package codec

import (
	"encoding/binary"

	apperrors "github.com/embeddedkv/versionedstore/pkg/errors"
)

// segmentHeaderSize is the width of the nextTimestamp+minTimestamp header
// that precedes the descriptor table.
const segmentHeaderSize = 16

// descriptorSize is the width of one (validFrom int64, valueLength int32)
// record descriptor.
const descriptorSize = 12

// tombstoneLength is the sentinel valueLength marking a tombstone descriptor.
const tombstoneLength = -1

// Record is one logical version of a key: its validFrom boundary and its
// value, or nil for a tombstone.
type Record struct {
	ValidFrom int64
	Value     []byte
}

// IsTombstone reports whether this record is a delete marker.
func (r Record) IsTombstone() bool { return r.Value == nil }

// SegmentValue is the decoded form of one key's packed multi-version blob.
// records is held physically newest-first (index 0 is the most recent
// version) — this mirrors the wire format exactly (a new record is
// prepended to both the descriptor table and the value heap) rather than
// the ascending logical order the spec describes records in; the two views
// carry the same information; this type just never materializes the
// reversed one.
type SegmentValue struct {
	nextTimestamp int64
	minTimestamp  int64
	records       []Record
}

// NewSegmentValueWithRecord builds a one-record SegmentValue. Supports the
// degenerate form (validFrom == validTo, value == nil) produced when the
// latest version of a key is a tombstone with no prior segment to extend.
func NewSegmentValueWithRecord(value []byte, validFrom, validTo int64) *SegmentValue {
	return &SegmentValue{
		nextTimestamp: validTo,
		minTimestamp:  validFrom,
		records:       []Record{{ValidFrom: validFrom, Value: value}},
	}
}

// NextTimestamp returns the validTo of the newest record packed inside.
func (sv *SegmentValue) NextTimestamp() int64 { return sv.nextTimestamp }

// MinTimestamp returns the validFrom of the oldest record packed inside.
func (sv *SegmentValue) MinTimestamp() int64 { return sv.minTimestamp }

// Len returns the number of records packed inside.
func (sv *SegmentValue) Len() int { return len(sv.records) }

// RecordAt returns the record at physical index i (0 = newest).
func (sv *SegmentValue) RecordAt(i int) Record { return sv.records[i] }

// ValidToAt returns the validTo of the record at physical index i, computed
// from the chain: nextTimestamp for the newest record, else the validFrom
// of the next-newer record.
func (sv *SegmentValue) ValidToAt(i int) int64 {
	if i == 0 {
		return sv.nextTimestamp
	}
	return sv.records[i-1].ValidFrom
}

// FindResult is the outcome of locating the record whose validity interval
// contains a timestamp.
type FindResult struct {
	Found     bool
	Index     int
	ValidFrom int64
	ValidTo   int64
	Value     []byte
	Tombstone bool
}

// Find locates the record at or covering asOf. Records are walked
// newest-first; the first one whose ValidFrom <= asOf is always the right
// answer for two different questions at once:
//
//   - Found reports whether its interval [validFrom, validTo) actually
//     covers asOf (false for a gap, or for asOf landing exactly on a
//     degenerate zero-width interval — the spec's half-open contract
//     excludes a zero-width interval's own boundary point).
//   - Index is always valid even when Found is false: it is the physical
//     slot a brand-new record with ValidFrom == asOf must be inserted
//     before to keep the newest-first ordering intact (callers that fall
//     through to Insert rely on this).
//
// When asOf precedes every record's ValidFrom, Index is len(records) — an
// append at the tail, same as InsertAsEarliest's position.
//
// includeValue = false skips nothing today (values are already decoded
// during Deserialize), but is kept to mirror the lazy-decode contract the
// spec describes and to let callers express intent.
func (sv *SegmentValue) Find(asOf int64, includeValue bool) FindResult {
	for i, rec := range sv.records {
		if rec.ValidFrom > asOf {
			continue
		}
		validTo := sv.ValidToAt(i)
		res := FindResult{
			Index:     i,
			ValidFrom: rec.ValidFrom,
			ValidTo:   validTo,
		}
		if asOf < validTo {
			res.Found = true
			res.Tombstone = rec.IsTombstone()
			if includeValue && !rec.IsTombstone() {
				res.Value = rec.Value
			}
		}
		return res
	}
	return FindResult{Index: len(sv.records)}
}

// InsertAsLatest prepends a new newest record. prevValidTo becomes the new
// record's validFrom and must not precede the current nextTimestamp.
// newValidTo becomes the new nextTimestamp. When prevValidTo lies past
// nextTimestamp (a gap left by a deletion), the gap is recorded as a
// tombstone starting at nextTimestamp, unless the newest record is already
// a tombstone, which then simply extends to prevValidTo.
func (sv *SegmentValue) InsertAsLatest(prevValidTo, newValidTo int64, value []byte) error {
	if len(sv.records) > 0 && prevValidTo < sv.nextTimestamp {
		return apperrors.NewSegmentError(nil, apperrors.ErrorCodeSegmentCorrupted,
			"insertAsLatest: prevValidTo precedes current nextTimestamp").
			WithOperation("insertAsLatest").
			WithDetail("prevValidTo", prevValidTo).
			WithDetail("nextTimestamp", sv.nextTimestamp)
	}
	if len(sv.records) > 0 && prevValidTo > sv.nextTimestamp && !sv.records[0].IsTombstone() {
		sv.records = append([]Record{{ValidFrom: sv.nextTimestamp, Value: nil}}, sv.records...)
	}
	sv.records = append([]Record{{ValidFrom: prevValidTo, Value: value}}, sv.records...)
	sv.nextTimestamp = newValidTo
	if len(sv.records) == 1 {
		sv.minTimestamp = prevValidTo
	}
	return nil
}

// InsertAsEarliest appends a new oldest record at the tail.
func (sv *SegmentValue) InsertAsEarliest(validFrom int64, value []byte) error {
	if len(sv.records) > 0 && validFrom >= sv.minTimestamp {
		return apperrors.NewSegmentError(nil, apperrors.ErrorCodeSegmentCorrupted,
			"insertAsEarliest: validFrom does not precede current minTimestamp").
			WithOperation("insertAsEarliest").
			WithDetail("validFrom", validFrom).
			WithDetail("minTimestamp", sv.minTimestamp)
	}
	sv.records = append(sv.records, Record{ValidFrom: validFrom, Value: value})
	sv.minTimestamp = validFrom
	if len(sv.records) == 1 {
		sv.nextTimestamp = validFrom
	}
	return nil
}

// Insert places a new record at physical index, shifting existing
// descriptors. The caller is responsible for choosing index so strict
// validFrom ordering is preserved; this is the general-purpose operation
// §4.2.3 describes, used when neither the newest nor oldest position fits.
func (sv *SegmentValue) Insert(validFrom int64, value []byte, index int) {
	sv.records = append(sv.records, Record{})
	copy(sv.records[index+1:], sv.records[index:])
	sv.records[index] = Record{ValidFrom: validFrom, Value: value}
	if index == len(sv.records)-1 {
		sv.minTimestamp = validFrom
	}
}

// UpdateRecord replaces the record at index with (validFrom, value). Most
// call sites pass the existing record's own validFrom (a same-timestamp
// overwrite, where validFrom is purely informational); the put algorithm's
// displacement path also uses it to retarget a slot to an entirely new
// validFrom, so this never asserts the two match. Retargeting the oldest
// record also moves minTimestamp to the new validFrom.
func (sv *SegmentValue) UpdateRecord(validFrom int64, value []byte, index int) {
	sv.records[index] = Record{ValidFrom: validFrom, Value: value}
	if index == len(sv.records)-1 {
		sv.minTimestamp = validFrom
	}
}

// Serialize encodes the SegmentValue back to its binary wire form.
func (sv *SegmentValue) Serialize() []byte {
	total := segmentHeaderSize + descriptorSize*len(sv.records)
	for _, rec := range sv.records {
		if !rec.IsTombstone() {
			total += len(rec.Value)
		}
	}

	out := make([]byte, total)
	binary.BigEndian.PutUint64(out[0:8], uint64(sv.nextTimestamp))
	binary.BigEndian.PutUint64(out[8:16], uint64(sv.minTimestamp))

	descPos := segmentHeaderSize
	heapPos := total
	for _, rec := range sv.records {
		binary.BigEndian.PutUint64(out[descPos:descPos+8], uint64(rec.ValidFrom))
		if rec.IsTombstone() {
			length := int32(tombstoneLength)
			binary.BigEndian.PutUint32(out[descPos+8:descPos+12], uint32(length))
		} else {
			heapPos -= len(rec.Value)
			copy(out[heapPos:heapPos+len(rec.Value)], rec.Value)
			binary.BigEndian.PutUint32(out[descPos+8:descPos+12], uint32(int32(len(rec.Value))))
		}
		descPos += descriptorSize
	}
	return out
}

// GetNextTimestamp reads the nextTimestamp header field without parsing the
// rest of the blob — the cheap check Phase 2 of the put algorithm and the
// as-of get use to decide whether to even deserialize.
func GetNextTimestamp(raw []byte) (int64, error) {
	if len(raw) < segmentHeaderSize {
		return 0, apperrors.NewHeaderReadError(0, "", len(raw))
	}
	return int64(binary.BigEndian.Uint64(raw[0:8])), nil
}

// GetMinTimestamp reads the minTimestamp header field without parsing the
// rest of the blob.
func GetMinTimestamp(raw []byte) (int64, error) {
	if len(raw) < segmentHeaderSize {
		return 0, apperrors.NewHeaderReadError(0, "", len(raw))
	}
	return int64(binary.BigEndian.Uint64(raw[8:16])), nil
}

// Deserialize decodes a SegmentValue blob.
//
// The wire format stores no explicit record count: decoding walks the
// descriptor table downward from offset 16 while simultaneously walking the
// value heap upward from the end of the buffer ("meet in the middle"). The
// two cursors are guaranteed to land on the same offset exactly when the
// last descriptor has been read, because total size is always
// 16 + 12*n + sum(valueLengths) for the true n — no other n admits a fixed
// point, so reaching descPos == heapPos is both necessary and sufficient
// for "done", and descPos > heapPos can only mean a corrupted blob.
func Deserialize(raw []byte) (*SegmentValue, error) {
	if len(raw) < segmentHeaderSize {
		return nil, apperrors.NewHeaderReadError(0, "", len(raw))
	}

	sv := &SegmentValue{
		nextTimestamp: int64(binary.BigEndian.Uint64(raw[0:8])),
		minTimestamp:  int64(binary.BigEndian.Uint64(raw[8:16])),
	}

	descPos := segmentHeaderSize
	heapPos := len(raw)
	var records []Record

	for descPos < heapPos {
		if descPos+descriptorSize > heapPos {
			return nil, apperrors.NewDescriptorReadError(0, "", len(records))
		}
		validFrom := int64(binary.BigEndian.Uint64(raw[descPos : descPos+8]))
		length := int32(binary.BigEndian.Uint32(raw[descPos+8 : descPos+12]))
		descPos += descriptorSize

		if length == tombstoneLength {
			records = append(records, Record{ValidFrom: validFrom, Value: nil})
			continue
		}
		if length < 0 || int(length) > heapPos-descPos {
			return nil, apperrors.NewSegmentCorruptedError(0, "", len(raw), nil)
		}
		heapPos -= int(length)
		value := make([]byte, length)
		copy(value, raw[heapPos:heapPos+int(length)])
		records = append(records, Record{ValidFrom: validFrom, Value: value})
	}

	if descPos != heapPos {
		return nil, apperrors.NewSegmentCorruptedError(0, "", len(raw), nil)
	}

	sv.records = records
	return sv, nil
}
