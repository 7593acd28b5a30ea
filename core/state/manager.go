package state

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"

	"shellchain/storage"
)

// Manager provides typed access to world state. Writes are staged in memory
// until Commit flushes them to the backing database as a single batch, or
// Discard drops them. A Manager is not safe for concurrent use; callers are
// expected to serialise access.
type Manager struct {
	db    storage.Database
	dirty map[string]entry
}

type entry struct {
	value   []byte
	deleted bool
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, dirty: make(map[string]entry)}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func (m *Manager) read(hashed []byte) ([]byte, error) {
	if e, ok := m.dirty[string(hashed)]; ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	data, err := m.db.Get(hashed)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

// KVPut stores the RLP encoding of value under the supplied key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.dirty[string(kvKey(key))] = entry{value: encoded}
	return nil
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.read(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the key from state.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.dirty[string(kvKey(key))] = entry{deleted: true}
	return nil
}

// KVGetList decodes the RLP list stored under key into out, which must be a
// pointer to a slice. Missing keys yield an empty slice.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.read(kvKey(key))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		val := reflect.ValueOf(out)
		if val.Kind() != reflect.Ptr || val.IsNil() {
			return fmt.Errorf("kv: destination must be a non-nil pointer")
		}
		elem := val.Elem()
		if elem.Kind() != reflect.Slice {
			return fmt.Errorf("kv: destination must point to a slice")
		}
		elem.Set(reflect.MakeSlice(elem.Type(), 0, 0))
		return nil
	}
	return rlp.DecodeBytes(data, out)
}

// Pending reports the number of staged writes.
func (m *Manager) Pending() int {
	return len(m.dirty)
}

// Commit writes every staged mutation to the database in one batch. Keys are
// applied in sorted order so the batch contents are deterministic.
func (m *Manager) Commit() error {
	if len(m.dirty) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m.dirty))
	for k := range m.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	batch := new(leveldb.Batch)
	for _, k := range keys {
		e := m.dirty[k]
		if e.deleted {
			batch.Delete([]byte(k))
			continue
		}
		batch.Put([]byte(k), e.value)
	}
	if err := m.db.Write(batch); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	m.dirty = make(map[string]entry)
	return nil
}

// Discard drops all staged mutations.
func (m *Manager) Discard() {
	if len(m.dirty) == 0 {
		return
	}
	m.dirty = make(map[string]entry)
}
