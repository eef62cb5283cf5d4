package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentValueRoundTrip(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("v1"), 5, 25)
	require.NoError(t, sv.InsertAsLatest(25, 35, []byte("v2")))

	raw := sv.Serialize()

	nextTs, err := GetNextTimestamp(raw)
	require.NoError(t, err)
	require.Equal(t, int64(35), nextTs)

	minTs, err := GetMinTimestamp(raw)
	require.NoError(t, err)
	require.Equal(t, int64(5), minTs)

	decoded, err := Deserialize(raw)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Len())
	require.Equal(t, Record{ValidFrom: 25, Value: []byte("v2")}, decoded.RecordAt(0))
	require.Equal(t, Record{ValidFrom: 5, Value: []byte("v1")}, decoded.RecordAt(1))
}

func TestSegmentValueFindWithinInterval(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("v1"), 5, 25)
	require.NoError(t, sv.InsertAsLatest(25, 35, []byte("v2")))

	sr := sv.Find(30, true)
	require.True(t, sr.Found)
	require.Equal(t, 0, sr.Index)
	require.Equal(t, []byte("v2"), sr.Value)

	sr = sv.Find(10, true)
	require.True(t, sr.Found)
	require.Equal(t, 1, sr.Index)
	require.Equal(t, []byte("v1"), sr.Value)
}

func TestSegmentValueFindDegenerateTombstoneExcludesOwnBoundary(t *testing.T) {
	sv := NewSegmentValueWithRecord(nil, 20, 20)
	sr := sv.Find(20, true)
	require.False(t, sr.Found)
	require.Equal(t, int64(20), sr.ValidFrom)
}

func TestSegmentValueFindBeforeEarliestReturnsAppendIndex(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("v1"), 10, 20)
	sr := sv.Find(1, false)
	require.False(t, sr.Found)
	require.Equal(t, sv.Len(), sr.Index)
}

func TestSegmentValueInsertAsEarliestRejectsNonDecreasing(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("v1"), 10, 20)
	err := sv.InsertAsEarliest(15, []byte("v0"))
	require.Error(t, err)
}

func TestSegmentValueUpdateRecordRetargetsValidFrom(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("v1"), 5, 25)
	sv.UpdateRecord(1, []byte("v1-moved"), 0)
	require.Equal(t, Record{ValidFrom: 1, Value: []byte("v1-moved")}, sv.RecordAt(0))
}

func TestDeserializeRejectsTruncatedHeader(t *testing.T) {
	_, err := Deserialize(make([]byte, 4))
	require.Error(t, err)
}

func TestDeserializeRejectsTruncatedDescriptorTable(t *testing.T) {
	raw := make([]byte, segmentHeaderSize+4)
	_, err := Deserialize(raw)
	require.Error(t, err)
}

func TestSegmentValueMultipleTombstonesAndValuesRoundTrip(t *testing.T) {
	sv := NewSegmentValueWithRecord([]byte("oldest"), 0, 10)
	require.NoError(t, sv.InsertAsLatest(10, 20, nil)) // tombstone
	require.NoError(t, sv.InsertAsLatest(20, 30, []byte("newest")))

	raw := sv.Serialize()
	decoded, err := Deserialize(raw)
	require.NoError(t, err)
	require.Equal(t, 3, decoded.Len())
	require.True(t, decoded.RecordAt(1).IsTombstone())
	require.Equal(t, []byte("newest"), decoded.RecordAt(0).Value)
	require.Equal(t, []byte("oldest"), decoded.RecordAt(2).Value)
}
