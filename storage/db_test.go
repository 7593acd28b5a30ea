package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()

	_, err := db.Get([]byte("missing"))
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	value, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value)

	batch := new(leveldb.Batch)
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("a"))
	require.NoError(t, db.Write(batch))

	ok, err := db.Has([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)
	value, err = db.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)

	require.NoError(t, db.Delete([]byte("b")))
	require.NoError(t, db.Delete([]byte("never-written")))
	ok, err = db.Has([]byte("b"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemDB(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	exerciseDatabase(t, db)
	require.Zero(t, db.Len())
}

func TestMemDBGetReturnsCopy(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Put([]byte("k"), []byte("value")))
	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	got[0] = 'X'
	again, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), again)
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	defer db.Close()
	exerciseDatabase(t, db)
}
