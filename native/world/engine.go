package world

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"shellchain/core/events"
	"shellchain/core/types"
)

// TokenRegistry is the token ledger the engine mints into.
type TokenRegistry interface {
	Mint(collection uint32, owner [20]byte, metadata string) (uint32, error)
	Burn(collection, nft uint32) error
	SetAttribute(collection, nft uint32, key string, value []byte) error
	Attribute(collection, nft uint32, key string) ([]byte, bool, error)
	OwnerOf(collection, nft uint32) ([20]byte, bool, error)
	CountOwned(collection uint32, account [20]byte) (uint32, error)
	Freeze(collection, nft uint32) error
}

// Ledger is the account balance service used for payments and reserves.
type Ledger interface {
	CanReserve(account [20]byte, amount *uint256.Int) (bool, error)
	Reserve(account [20]byte, amount *uint256.Int) error
	Unreserve(account [20]byte, amount *uint256.Int) (*uint256.Int, error)
	Transfer(from, to [20]byte, amount *uint256.Int, keepAlive bool) error
	FreeBalance(account [20]byte) (*uint256.Int, error)
}

// Signer verifies Overlord-issued proofs.
type Signer interface {
	Verify(signature, message []byte, signer [20]byte) bool
}

// Store is the typed key-value state the engine persists through.
type Store interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// Params holds the economic and timing constants of the sale.
type Params struct {
	SecondsPerEra           uint64
	MinBalanceToClaimSpirit *uint256.Int
	LegendaryPrice          *uint256.Int
	MagicPrice              *uint256.Int
	HeroPrice               *uint256.Int
	MaxMetadataLen          int
}

// DefaultParams mirrors the production sale configuration.
func DefaultParams() Params {
	unit := uint256.NewInt(1_000_000_000_000)
	return Params{
		SecondsPerEra:           604_800,
		MinBalanceToClaimSpirit: new(uint256.Int).Mul(unit, uint256.NewInt(10)),
		LegendaryPrice:          new(uint256.Int).Mul(unit, uint256.NewInt(15_000)),
		MagicPrice:              new(uint256.Int).Mul(unit, uint256.NewInt(10_000)),
		HeroPrice:               new(uint256.Int).Mul(unit, uint256.NewInt(100)),
		MaxMetadataLen:          256,
	}
}

// Price returns the sale price of tier.
func (p Params) Price(t Tier) (*uint256.Int, error) {
	var price *uint256.Int
	switch t {
	case TierLegendary:
		price = p.LegendaryPrice
	case TierMagic:
		price = p.MagicPrice
	case TierHero:
		price = p.HeroPrice
	default:
		return nil, ErrInvalidPurchase
	}
	if price == nil {
		return new(uint256.Int), nil
	}
	return price.Clone(), nil
}

// Validate checks that the parameters are usable.
func (p Params) Validate() error {
	if p.SecondsPerEra == 0 {
		return fmt.Errorf("world params: seconds per era must be positive")
	}
	if p.MaxMetadataLen < 0 {
		return fmt.Errorf("world params: max metadata length must not be negative")
	}
	return nil
}

// Engine runs the sale state machine: world clock, phases, inventory,
// purchases and preorders. It performs no locking or rollback itself; the
// caller runs each operation inside a single serialised state transition.
type Engine struct {
	state    Store
	registry TokenRegistry
	ledger   Ledger
	signer   Signer
	emitter  events.Emitter
	params   Params
	nowFn    func() int64
}

// NewEngine creates a world engine with a no-op emitter.
func NewEngine(params Params) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		params:  params,
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state Store) { e.state = state }

// SetRegistry configures the token registry.
func (e *Engine) SetRegistry(r TokenRegistry) { e.registry = r }

// SetLedger configures the balance ledger.
func (e *Engine) SetLedger(l Ledger) { e.ledger = l }

// SetSigner configures the proof verifier.
func (e *Engine) SetSigner(s Signer) { e.signer = s }

// Params returns the configured sale parameters.
func (e *Engine) Params() Params { return e.params }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() uint64 {
	var ts int64
	if e == nil || e.nowFn == nil {
		ts = time.Now().Unix()
	} else {
		ts = e.nowFn()
	}
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) ready() error {
	switch {
	case e == nil || e.state == nil:
		return errNilState
	case e.registry == nil:
		return errNilRegistry
	case e.ledger == nil:
		return errNilLedger
	}
	return nil
}

func (e *Engine) checkMetadata(metadata string) error {
	if e.params.MaxMetadataLen > 0 && len(metadata) > e.params.MaxMetadataLen {
		return ErrMetadataTooLong
	}
	return nil
}

// EnsureOverlord returns the signing account of origin if it is the Overlord.
func (e *Engine) EnsureOverlord(origin types.Origin) ([20]byte, error) {
	sender, err := types.EnsureSigned(origin)
	if err != nil {
		return [20]byte{}, err
	}
	if e == nil || e.state == nil {
		return [20]byte{}, errNilState
	}
	overlord, ok, err := e.Overlord()
	if err != nil {
		return [20]byte{}, err
	}
	if !ok || overlord != sender {
		return [20]byte{}, ErrRequireOverlordAccount
	}
	return sender, nil
}

func (e *Engine) requireOverlord() ([20]byte, error) {
	overlord, ok, err := e.Overlord()
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, ErrOverlordNotSet
	}
	return overlord, nil
}

func (e *Engine) requireSpiritCollection() (uint32, error) {
	id, ok, err := e.SpiritCollectionID()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrSpiritCollectionNotSet
	}
	return id, nil
}

func (e *Engine) requireOriginCollection() (uint32, error) {
	id, ok, err := e.OriginOfShellCollectionID()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrOriginOfShellCollectionNotSet
	}
	return id, nil
}

func (e *Engine) ownsSpirit(spiritCollection uint32, account [20]byte) error {
	count, err := e.registry.CountOwned(spiritCollection, account)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMustOwnSpiritToPurchase
	}
	return nil
}

// attributeValue encodes a closed enum value as a single-byte attribute.
func attributeValue(v uint8) []byte { return []byte{v} }

func (e *Engine) setOriginAttributes(collection, nft uint32, info OriginOfShell) error {
	attrs := []struct {
		key   string
		value uint8
	}{
		{AttributeRace, uint8(info.Race)},
		{AttributeCareer, uint8(info.Career)},
		{AttributeTier, uint8(info.Tier)},
	}
	for _, attr := range attrs {
		if len(attr.key) > maxAttributeKeyLen {
			return ErrKeyTooLong
		}
		if err := e.registry.SetAttribute(collection, nft, attr.key, attributeValue(attr.value)); err != nil {
			return fmt.Errorf("%w: %v", ErrUnableToAddAttributes, err)
		}
	}
	return nil
}

const maxAttributeKeyLen = 32
