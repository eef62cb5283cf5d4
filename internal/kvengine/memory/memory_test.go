package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embeddedkv/versionedstore/internal/kvengine"
)

func TestColumnGetPutDelete(t *testing.T) {
	e := New()
	col, err := e.Column("latest")
	require.NoError(t, err)

	v, err := col.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, col.Put([]byte("a"), []byte("1")))
	v, err = col.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	require.NoError(t, col.Delete([]byte("a")))
	v, err = col.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSubColumnLifecycle(t *testing.T) {
	e := New()
	col, err := e.Column("segments")
	require.NoError(t, err)

	_, existed, err := col.SubColumn(7)
	require.NoError(t, err)
	require.False(t, existed)

	sub, err := col.CreateSubColumnIfNotExists(7)
	require.NoError(t, err)
	require.NoError(t, sub.Put([]byte("k"), []byte("v")))

	again, existed, err := col.SubColumn(7)
	require.NoError(t, err)
	require.True(t, existed)
	v, err := again.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)

	require.NoError(t, col.DeleteSubColumn(7))
	_, existed, err = col.SubColumn(7)
	require.NoError(t, err)
	require.False(t, existed)
}

func TestSubColumnIDsDescendingFrom(t *testing.T) {
	e := New()
	col, err := e.Column("segments")
	require.NoError(t, err)

	for _, id := range []uint64{3, 1, 5, 2} {
		_, err := col.CreateSubColumnIfNotExists(id)
		require.NoError(t, err)
	}

	ids, err := col.SubColumnIDsDescendingFrom(2)
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 3, 2}, ids)
}

func TestEngineRejectsOperationsAfterClose(t *testing.T) {
	e := New()
	require.NoError(t, e.Close())
	_, err := e.Column("latest")
	require.ErrorIs(t, err, kvengine.ErrClosed)
}
