package incubation

import (
	"time"

	"shellchain/core/events"
	"shellchain/core/types"
	"shellchain/native/world"
)

// WorldView is the part of the sale engine incubation depends on.
type WorldView interface {
	EnsureOverlord(origin types.Origin) ([20]byte, error)
	OriginOfShellCollectionID() (uint32, bool, error)
	Era() (uint64, error)
	OriginOfShell(collection, nft uint32) (world.OriginOfShell, bool, error)
	PutOriginOfShell(collection, nft uint32, info world.OriginOfShell) error
	DeleteOriginOfShell(collection, nft uint32) error
}

// TokenRegistry is the token ledger used to read and transform tokens.
type TokenRegistry interface {
	Mint(collection uint32, owner [20]byte, metadata string) (uint32, error)
	Burn(collection, nft uint32) error
	SetAttribute(collection, nft uint32, key string, value []byte) error
	Attribute(collection, nft uint32, key string) ([]byte, bool, error)
	OwnerOf(collection, nft uint32) ([20]byte, bool, error)
	CountOwned(collection uint32, account [20]byte) (uint32, error)
	AddResource(collection, nft uint32, src string) (uint32, error)
	AcceptResource(collection, nft, resource uint32) error
}

// Store is the typed key-value state the engine persists through.
type Store interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// Params holds the feeding quotas and incubation length.
type Params struct {
	// FoodPerEra is the number of feedings an account may give per era.
	FoodPerEra            uint32
	// MaxFoodFeedSelf caps how often one account feeds the same token per era.
	MaxFoodFeedSelf       uint32
	// MaxFoodFedPerEra caps how often a token may be fed per era. Zero disables the cap.
	MaxFoodFedPerEra      uint32
	IncubationDurationSec uint64
}

// DefaultParams mirrors the production incubation configuration.
func DefaultParams() Params {
	return Params{
		FoodPerEra:            5,
		MaxFoodFeedSelf:       2,
		MaxFoodFedPerEra:      0,
		IncubationDurationSec: 604_800,
	}
}

// Engine runs the incubation lifecycle of origin of shell tokens.
type Engine struct {
	state    Store
	world    WorldView
	registry TokenRegistry
	emitter  events.Emitter
	params   Params
	nowFn    func() int64
}

// NewEngine builds an engine with params. Collaborators are attached with
// the setters before use.
func NewEngine(params Params) *Engine {
	return &Engine{params: params, emitter: events.NoopEmitter{}, nowFn: func() int64 { return time.Now().Unix() }}
}

// SetState attaches the transactional store.
func (e *Engine) SetState(state Store) { e.state = state }

// SetWorld attaches the world state the engine reads.
func (e *Engine) SetWorld(w WorldView) { e.world = w }

// SetRegistry attaches the token registry.
func (e *Engine) SetRegistry(r TokenRegistry) { e.registry = r }

// Params returns the configured incubation parameters.
func (e *Engine) Params() Params { return e.params }

// SetNowFunc overrides the clock used for hatch times.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	e.nowFn = now
}

// SetEmitter routes engine events; nil discards them.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(wrapEvent(evt))
}

func (e *Engine) now() uint64 {
	ts := e.nowFn()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) ready() error {
	switch {
	case e == nil || e.state == nil:
		return errNilState
	case e.world == nil:
		return errNilWorld
	case e.registry == nil:
		return errNilRegistry
	}
	return nil
}

// requireOriginCollection reports ErrWrongCollectionId unless collection is
// the configured origin of shell collection.
func (e *Engine) requireOriginCollection(collection uint32) error {
	id, ok, err := e.world.OriginOfShellCollectionID()
	if err != nil {
		return err
	}
	if !ok || id != collection {
		return ErrWrongCollectionId
	}
	return nil
}
