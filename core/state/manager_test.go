package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shellchain/storage"
)

type record struct {
	Name  string
	Count uint64
}

func TestKVRoundTripAndCommit(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)

	require.NoError(t, mgr.KVPut([]byte("rec"), record{Name: "a", Count: 7}))
	var got record
	ok, err := mgr.KVGet([]byte("rec"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record{Name: "a", Count: 7}, got)
	require.Zero(t, db.Len(), "staged writes must not reach the database")

	require.NoError(t, mgr.Commit())
	require.Equal(t, 1, db.Len())
	require.Zero(t, mgr.Pending())

	fresh := NewManager(db)
	ok, err = fresh.KVGet([]byte("rec"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), got.Count)
}

func TestKVDiscardDropsStagedWrites(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	require.NoError(t, mgr.KVPut([]byte("keep"), uint64(1)))
	require.NoError(t, mgr.Commit())

	require.NoError(t, mgr.KVPut([]byte("keep"), uint64(2)))
	require.NoError(t, mgr.KVPut([]byte("other"), uint64(3)))
	mgr.Discard()

	var v uint64
	ok, err := mgr.KVGet([]byte("keep"), &v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), v)
	ok, err = mgr.KVGet([]byte("other"), &v)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKVDeleteShadowsCommittedValue(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	require.NoError(t, mgr.KVPut([]byte("k"), uint64(9)))
	require.NoError(t, mgr.Commit())

	require.NoError(t, mgr.KVDelete([]byte("k")))
	ok, err := mgr.KVGet([]byte("k"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mgr.Commit())
	require.Zero(t, db.Len())
}

func TestKVGetListMissingKey(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	var list []record
	require.NoError(t, mgr.KVGetList([]byte("none"), &list))
	require.NotNil(t, list)
	require.Empty(t, list)

	require.NoError(t, mgr.KVPut([]byte("list"), []record{{Name: "x"}, {Name: "y"}}))
	require.NoError(t, mgr.KVGetList([]byte("list"), &list))
	require.Len(t, list, 2)
}

func TestKVRejectsEmptyKey(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	require.Error(t, mgr.KVPut(nil, uint64(1)))
	_, err := mgr.KVGet(nil, nil)
	require.Error(t, err)
	require.Error(t, mgr.KVDelete(nil))
}
