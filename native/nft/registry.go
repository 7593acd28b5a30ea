package nft

import (
	"encoding/binary"
	"errors"
	"fmt"

	coreerrors "shellchain/core/errors"
)

// MaxAttributeKeyLen bounds attribute keys.
const MaxAttributeKeyLen = 32

var (
	ErrCollectionNotFound  = coreerrors.New(coreerrors.ErrConfiguration, "nft: collection not found")
	ErrCollectionFull      = coreerrors.New(coreerrors.ErrScarcity, "nft: collection max supply reached")
	ErrTokenNotFound       = coreerrors.New(coreerrors.ErrIneligible, "nft: token not found")
	ErrNotOwner            = coreerrors.New(coreerrors.ErrIneligible, "nft: not token owner")
	ErrFrozen              = coreerrors.New(coreerrors.ErrIneligible, "nft: token frozen")
	ErrResourceNotFound    = coreerrors.New(coreerrors.ErrIntegrity, "nft: resource not found")
	ErrAttributeKeyTooLong = coreerrors.New(coreerrors.ErrIntegrity, "nft: attribute key too long")
)

// Store is the subset of the state manager the registry persists through.
type Store interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// Collection describes a token collection.
type Collection struct {
	ID       uint32
	Issuer   [20]byte
	Max      uint32
	Symbol   string
	Metadata string
	NextNft  uint32
	Supply   uint32
}

type tokenRecord struct {
	Owner    [20]byte
	Metadata string
	Frozen   bool
	AttrKeys []string
}

// Resource is a payload attached to a token. Resources added by someone other
// than the owner start pending until accepted.
type Resource struct {
	ID      uint32
	Src     string
	Pending bool
}

// Registry is a state-backed token registry.
type Registry struct {
	store Store
}

// NewRegistry creates a registry persisting through store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

var nextCollectionKey = []byte("nft/nextCollection")

func u32(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

func collectionKey(id uint32) []byte {
	return append([]byte("nft/collection/"), u32(id)...)
}

func tokenKey(collection, nft uint32) []byte {
	key := append([]byte("nft/token/"), u32(collection)...)
	return append(key, u32(nft)...)
}

func attributeKey(collection, nft uint32, name string) []byte {
	key := append([]byte("nft/attr/"), u32(collection)...)
	key = append(key, u32(nft)...)
	return append(append(key, '/'), name...)
}

func ownedKey(collection uint32, account [20]byte) []byte {
	key := append([]byte("nft/owned/"), u32(collection)...)
	return append(key, account[:]...)
}

func resourcesKey(collection, nft uint32) []byte {
	key := append([]byte("nft/resources/"), u32(collection)...)
	return append(key, u32(nft)...)
}

// CreateCollection registers a new collection. A zero max leaves the supply
// unbounded.
func (r *Registry) CreateCollection(issuer [20]byte, max uint32, symbol, metadata string) (uint32, error) {
	var next uint32
	if _, err := r.store.KVGet(nextCollectionKey, &next); err != nil {
		return 0, err
	}
	col := Collection{ID: next, Issuer: issuer, Max: max, Symbol: symbol, Metadata: metadata}
	if err := r.store.KVPut(collectionKey(next), col); err != nil {
		return 0, err
	}
	if err := r.store.KVPut(nextCollectionKey, next+1); err != nil {
		return 0, err
	}
	return next, nil
}

// Collection returns the collection with the given id.
func (r *Registry) Collection(id uint32) (*Collection, error) {
	var col Collection
	ok, err := r.store.KVGet(collectionKey(id), &col)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCollectionNotFound
	}
	return &col, nil
}

func (r *Registry) token(collection, nft uint32) (*tokenRecord, error) {
	var rec tokenRecord
	ok, err := r.store.KVGet(tokenKey(collection, nft), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &rec, nil
}

func (r *Registry) adjustOwned(collection uint32, account [20]byte, delta int) error {
	count, err := r.CountOwned(collection, account)
	if err != nil {
		return err
	}
	switch {
	case delta > 0:
		count++
	case count > 0:
		count--
	}
	if count == 0 {
		return r.store.KVDelete(ownedKey(collection, account))
	}
	return r.store.KVPut(ownedKey(collection, account), count)
}

// Mint creates a token owned by owner and returns its id.
func (r *Registry) Mint(collection uint32, owner [20]byte, metadata string) (uint32, error) {
	col, err := r.Collection(collection)
	if err != nil {
		return 0, err
	}
	if col.Max > 0 && col.Supply >= col.Max {
		return 0, ErrCollectionFull
	}
	id := col.NextNft
	if err := r.store.KVPut(tokenKey(collection, id), tokenRecord{Owner: owner, Metadata: metadata}); err != nil {
		return 0, err
	}
	col.NextNft++
	col.Supply++
	if err := r.store.KVPut(collectionKey(collection), col); err != nil {
		return 0, err
	}
	if err := r.adjustOwned(collection, owner, 1); err != nil {
		return 0, err
	}
	return id, nil
}

// Burn destroys a token together with its attributes and resources.
func (r *Registry) Burn(collection, nft uint32) error {
	rec, err := r.token(collection, nft)
	if err != nil {
		return err
	}
	for _, name := range rec.AttrKeys {
		if err := r.store.KVDelete(attributeKey(collection, nft, name)); err != nil {
			return err
		}
	}
	if err := r.store.KVDelete(resourcesKey(collection, nft)); err != nil {
		return err
	}
	if err := r.store.KVDelete(tokenKey(collection, nft)); err != nil {
		return err
	}
	col, err := r.Collection(collection)
	if err != nil {
		return err
	}
	if col.Supply > 0 {
		col.Supply--
	}
	if err := r.store.KVPut(collectionKey(collection), col); err != nil {
		return err
	}
	return r.adjustOwned(collection, rec.Owner, -1)
}

// SetAttribute stores value under name on the token.
func (r *Registry) SetAttribute(collection, nft uint32, name string, value []byte) error {
	if len(name) > MaxAttributeKeyLen {
		return ErrAttributeKeyTooLong
	}
	rec, err := r.token(collection, nft)
	if err != nil {
		return err
	}
	if err := r.store.KVPut(attributeKey(collection, nft, name), value); err != nil {
		return err
	}
	for _, existing := range rec.AttrKeys {
		if existing == name {
			return nil
		}
	}
	rec.AttrKeys = append(rec.AttrKeys, name)
	return r.store.KVPut(tokenKey(collection, nft), rec)
}

// Attribute returns the value stored under name. The boolean reports whether
// the attribute is set.
func (r *Registry) Attribute(collection, nft uint32, name string) ([]byte, bool, error) {
	var value []byte
	ok, err := r.store.KVGet(attributeKey(collection, nft, name), &value)
	if err != nil || !ok {
		return nil, false, err
	}
	return value, true, nil
}

// OwnerOf returns the owner of the token. The boolean is false if the token
// does not exist.
func (r *Registry) OwnerOf(collection, nft uint32) ([20]byte, bool, error) {
	rec, err := r.token(collection, nft)
	if errors.Is(err, ErrTokenNotFound) {
		return [20]byte{}, false, nil
	}
	if err != nil {
		return [20]byte{}, false, err
	}
	return rec.Owner, true, nil
}

// Metadata returns the metadata the token was minted with.
func (r *Registry) Metadata(collection, nft uint32) (string, error) {
	rec, err := r.token(collection, nft)
	if err != nil {
		return "", err
	}
	return rec.Metadata, nil
}

// CountOwned returns how many tokens of collection account holds.
func (r *Registry) CountOwned(collection uint32, account [20]byte) (uint32, error) {
	var count uint32
	if _, err := r.store.KVGet(ownedKey(collection, account), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Freeze locks the token against transfer.
func (r *Registry) Freeze(collection, nft uint32) error {
	rec, err := r.token(collection, nft)
	if err != nil {
		return err
	}
	rec.Frozen = true
	return r.store.KVPut(tokenKey(collection, nft), rec)
}

// Frozen reports whether the token is locked against transfer.
func (r *Registry) Frozen(collection, nft uint32) (bool, error) {
	rec, err := r.token(collection, nft)
	if err != nil {
		return false, err
	}
	return rec.Frozen, nil
}

// Transfer moves a token between accounts.
func (r *Registry) Transfer(collection, nft uint32, from, to [20]byte) error {
	rec, err := r.token(collection, nft)
	if err != nil {
		return err
	}
	if rec.Owner != from {
		return ErrNotOwner
	}
	if rec.Frozen {
		return ErrFrozen
	}
	if from == to {
		return nil
	}
	rec.Owner = to
	if err := r.store.KVPut(tokenKey(collection, nft), rec); err != nil {
		return err
	}
	if err := r.adjustOwned(collection, from, -1); err != nil {
		return err
	}
	return r.adjustOwned(collection, to, 1)
}

// AddResource attaches a pending resource to the token and returns its id.
func (r *Registry) AddResource(collection, nft uint32, src string) (uint32, error) {
	if _, err := r.token(collection, nft); err != nil {
		return 0, err
	}
	resources, err := r.Resources(collection, nft)
	if err != nil {
		return 0, err
	}
	id := uint32(len(resources))
	resources = append(resources, Resource{ID: id, Src: src, Pending: true})
	if err := r.store.KVPut(resourcesKey(collection, nft), resources); err != nil {
		return 0, fmt.Errorf("nft: store resource: %w", err)
	}
	return id, nil
}

// AcceptResource clears the pending flag of a resource.
func (r *Registry) AcceptResource(collection, nft, resource uint32) error {
	resources, err := r.Resources(collection, nft)
	if err != nil {
		return err
	}
	for i := range resources {
		if resources[i].ID == resource {
			resources[i].Pending = false
			return r.store.KVPut(resourcesKey(collection, nft), resources)
		}
	}
	return ErrResourceNotFound
}

// Resources lists the resources attached to a token.
func (r *Registry) Resources(collection, nft uint32) ([]Resource, error) {
	var resources []Resource
	if _, err := r.store.KVGet(resourcesKey(collection, nft), &resources); err != nil {
		return nil, err
	}
	return resources, nil
}
