package client

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embeddedkv/versionedstore/internal/kvengine/memory"
	"github.com/embeddedkv/versionedstore/internal/segments"
)

func newTestClient(t *testing.T, interval, retention int64) *Live {
	t.Helper()
	e := memory.New()
	latest, err := e.Column("latest")
	require.NoError(t, err)
	segCol, err := e.Column("segments")
	require.NoError(t, err)
	registry := segments.NewRegistry(segCol, interval, retention, zap.NewNop().Sugar())
	return NewLive(latest, registry)
}

func TestLiveLatestValueRoundTrip(t *testing.T) {
	c := newTestClient(t, 10, 100)

	v, err := c.GetLatestValue([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, c.PutLatestValue([]byte("k"), []byte("v1")))
	v, err = c.GetLatestValue([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)

	require.NoError(t, c.DeleteLatestValue([]byte("k")))
	v, err = c.GetLatestValue([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestLiveSegmentIDForTimestampMatchesRegistry(t *testing.T) {
	c := newTestClient(t, 10, 100)
	require.Equal(t, uint64(3), c.SegmentIDForTimestamp(37))
}

func TestLiveGetOrCreateSegmentIfLiveDelegatesToRegistry(t *testing.T) {
	c := newTestClient(t, 10, 5)

	seg, live, err := c.GetOrCreateSegmentIfLive(0, 100)
	require.NoError(t, err)
	require.False(t, live)
	require.Nil(t, seg)

	seg, live, err = c.GetOrCreateSegmentIfLive(1, 10)
	require.NoError(t, err)
	require.True(t, live)
	require.NotNil(t, seg)
}

func TestLiveReverseSegmentsFromOrdering(t *testing.T) {
	c := newTestClient(t, 10, 1000)

	for _, id := range []uint64{1, 4, 2} {
		_, live, err := c.GetOrCreateSegmentIfLive(id, 0)
		require.NoError(t, err)
		require.True(t, live)
	}

	segs, err := c.ReverseSegmentsFrom(15)
	require.NoError(t, err)
	ids := make([]uint64, len(segs))
	for i, s := range segs {
		ids[i] = s.ID
	}
	require.Equal(t, []uint64{4, 2, 1}, ids)
}
