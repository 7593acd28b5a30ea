package nft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"shellchain/core/state"
	"shellchain/storage"
)

var (
	issuer = [20]byte{0x01}
	alice  = [20]byte{0xa1}
	bob    = [20]byte{0xb0}
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(state.NewManager(storage.NewMemDB()))
}

func TestMintBurnAndCounts(t *testing.T) {
	r := newTestRegistry(t)
	col, err := r.CreateCollection(issuer, 2, "SHELL", "origin of shells")
	require.NoError(t, err)
	second, err := r.CreateCollection(issuer, 0, "SPIRIT", "")
	require.NoError(t, err)
	require.Equal(t, col+1, second)

	first, err := r.Mint(col, alice, "a")
	require.NoError(t, err)
	next, err := r.Mint(col, alice, "b")
	require.NoError(t, err)
	require.Equal(t, first+1, next)

	_, err = r.Mint(col, bob, "c")
	require.True(t, errors.Is(err, ErrCollectionFull))

	count, err := r.CountOwned(col, alice)
	require.NoError(t, err)
	require.Equal(t, uint32(2), count)

	require.NoError(t, r.SetAttribute(col, first, "race", []byte{1}))
	require.NoError(t, r.Burn(col, first))

	_, ok, err := r.OwnerOf(col, first)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = r.Attribute(col, first, "race")
	require.NoError(t, err)
	require.False(t, ok, "burn must remove attributes")
	count, err = r.CountOwned(col, alice)
	require.NoError(t, err)
	require.Equal(t, uint32(1), count)

	_, err = r.Mint(col, bob, "c")
	require.NoError(t, err, "burn frees supply")

	_, err = r.Mint(99, bob, "")
	require.True(t, errors.Is(err, ErrCollectionNotFound))
	require.True(t, errors.Is(r.Burn(col, 42), ErrTokenNotFound))
}

func TestAttributes(t *testing.T) {
	r := newTestRegistry(t)
	col, err := r.CreateCollection(issuer, 0, "X", "")
	require.NoError(t, err)
	id, err := r.Mint(col, alice, "")
	require.NoError(t, err)

	require.NoError(t, r.SetAttribute(col, id, "career", []byte{3}))
	require.NoError(t, r.SetAttribute(col, id, "career", []byte{4}))
	value, ok, err := r.Attribute(col, id, "career")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{4}, value)

	long := make([]byte, MaxAttributeKeyLen+1)
	for i := range long {
		long[i] = 'k'
	}
	require.True(t, errors.Is(r.SetAttribute(col, id, string(long), nil), ErrAttributeKeyTooLong))
	require.True(t, errors.Is(r.SetAttribute(col, 7, "race", nil), ErrTokenNotFound))
}

func TestFreezeBlocksTransfer(t *testing.T) {
	r := newTestRegistry(t)
	col, err := r.CreateCollection(issuer, 0, "SPIRIT", "")
	require.NoError(t, err)
	id, err := r.Mint(col, alice, "")
	require.NoError(t, err)

	require.True(t, errors.Is(r.Transfer(col, id, bob, alice), ErrNotOwner))
	require.NoError(t, r.Transfer(col, id, alice, bob))
	owner, ok, err := r.OwnerOf(col, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bob, owner)

	require.NoError(t, r.Freeze(col, id))
	frozen, err := r.Frozen(col, id)
	require.NoError(t, err)
	require.True(t, frozen)
	require.True(t, errors.Is(r.Transfer(col, id, bob, alice), ErrFrozen))
}

func TestResources(t *testing.T) {
	r := newTestRegistry(t)
	col, err := r.CreateCollection(issuer, 0, "SHELL", "")
	require.NoError(t, err)
	id, err := r.Mint(col, alice, "")
	require.NoError(t, err)

	res, err := r.AddResource(col, id, "ar://shell.png")
	require.NoError(t, err)
	list, err := r.Resources(col, id)
	require.NoError(t, err)
	require.Equal(t, []Resource{{ID: res, Src: "ar://shell.png", Pending: true}}, list)

	require.NoError(t, r.AcceptResource(col, id, res))
	list, err = r.Resources(col, id)
	require.NoError(t, err)
	require.False(t, list[0].Pending)

	require.True(t, errors.Is(r.AcceptResource(col, id, res+1), ErrResourceNotFound))
	_, err = r.AddResource(col, id+1, "x")
	require.True(t, errors.Is(err, ErrTokenNotFound))
}
