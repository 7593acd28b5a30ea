package world

import (
	"strconv"

	"github.com/holiman/uint256"

	"shellchain/core/events"
	"shellchain/core/types"
	"shellchain/crypto"
)

const (
	// EventTypeOverlordChanged is emitted when root replaces the Overlord.
	EventTypeOverlordChanged = "world.overlord.changed"
	// EventTypeWorldClockStarted is emitted once when zero day is recorded.
	EventTypeWorldClockStarted = "world.clock.started"
	// EventTypeNewEra is emitted at most once per tick when the era advances.
	EventTypeNewEra = "world.era.new"
	// EventTypePhaseChanged is emitted when a sale phase flag is toggled.
	EventTypePhaseChanged = "world.phase.changed"
	// EventTypeSpiritCollectionSet is emitted when the spirit collection is configured.
	EventTypeSpiritCollectionSet = "world.collection.spirit_set"
	// EventTypeOriginOfShellCollectionSet is emitted when the origin collection is configured.
	EventTypeOriginOfShellCollectionSet = "world.collection.origin_set"
	// EventTypeInventoryUpdated is emitted after an inventory top-up.
	EventTypeInventoryUpdated = "world.inventory.updated"
	// EventTypeSpiritClaimed is emitted when an account receives its spirit.
	EventTypeSpiritClaimed = "world.spirit.claimed"
	// EventTypeRareOriginOfShellPurchased is emitted for Magic and Legendary purchases.
	EventTypeRareOriginOfShellPurchased = "world.origin.rare_purchased"
	// EventTypeHeroOriginOfShellPurchased is emitted for whitelisted Hero purchases.
	EventTypeHeroOriginOfShellPurchased = "world.origin.hero_purchased"
	// EventTypeOriginOfShellPreordered is emitted when a preorder is recorded.
	EventTypeOriginOfShellPreordered = "world.preorder.created"
	// EventTypePreorderResultChanged is emitted when the Overlord resolves a preorder.
	EventTypePreorderResultChanged = "world.preorder.status_changed"
	// EventTypeOriginOfShellMinted is emitted when a chosen preorder is minted.
	EventTypeOriginOfShellMinted = "world.origin.minted"
	// EventTypeRefundWasClaimed is emitted when a not chosen preorder is refunded.
	EventTypeRefundWasClaimed = "world.preorder.refunded"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

// OverlordChangedEvent reports the previous Overlord, empty when unset.
func OverlordChangedEvent(old *[20]byte, next [20]byte) *types.Event {
	attrs := map[string]string{"overlord": crypto.FormatAccount(next)}
	if old != nil {
		attrs["previous"] = crypto.FormatAccount(*old)
	}
	return &types.Event{Type: EventTypeOverlordChanged, Attributes: attrs}
}

func WorldClockStartedEvent(startTime uint64) *types.Event {
	return &types.Event{
		Type:       EventTypeWorldClockStarted,
		Attributes: map[string]string{"startTime": u64(startTime)},
	}
}

func NewEraEvent(now, era uint64) *types.Event {
	return &types.Event{
		Type: EventTypeNewEra,
		Attributes: map[string]string{
			"time": u64(now),
			"era":  u64(era),
		},
	}
}

func PhaseChangedEvent(phase Phase, status bool) *types.Event {
	return &types.Event{
		Type: EventTypePhaseChanged,
		Attributes: map[string]string{
			"phase":  phase.String(),
			"status": strconv.FormatBool(status),
		},
	}
}

func SpiritCollectionSetEvent(collection uint32) *types.Event {
	return &types.Event{
		Type:       EventTypeSpiritCollectionSet,
		Attributes: map[string]string{"collectionId": u32(collection)},
	}
}

func OriginOfShellCollectionSetEvent(collection uint32) *types.Event {
	return &types.Event{
		Type:       EventTypeOriginOfShellCollectionSet,
		Attributes: map[string]string{"collectionId": u32(collection)},
	}
}

func InventoryUpdatedEvent(tier Tier, forSale, giveaway uint32) *types.Event {
	return &types.Event{
		Type: EventTypeInventoryUpdated,
		Attributes: map[string]string{
			"tier":     tier.String(),
			"forSale":  u32(forSale),
			"giveaway": u32(giveaway),
		},
	}
}

func SpiritClaimedEvent(owner [20]byte, collection, nft uint32) *types.Event {
	return &types.Event{
		Type: EventTypeSpiritClaimed,
		Attributes: map[string]string{
			"owner":        crypto.FormatAccount(owner),
			"collectionId": u32(collection),
			"nftId":        u32(nft),
		},
	}
}

func originPurchasedEvent(kind string, collection, nft uint32, owner [20]byte, info OriginOfShell, price *uint256.Int) *types.Event {
	return &types.Event{
		Type: kind,
		Attributes: map[string]string{
			"collectionId": u32(collection),
			"nftId":        u32(nft),
			"owner":        crypto.FormatAccount(owner),
			"tier":         info.Tier.String(),
			"race":         info.Race.String(),
			"career":       info.Career.String(),
			"price":        price.Dec(),
		},
	}
}

func RareOriginOfShellPurchasedEvent(collection, nft uint32, owner [20]byte, info OriginOfShell, price *uint256.Int) *types.Event {
	return originPurchasedEvent(EventTypeRareOriginOfShellPurchased, collection, nft, owner, info, price)
}

func HeroOriginOfShellPurchasedEvent(collection, nft uint32, owner [20]byte, info OriginOfShell, price *uint256.Int) *types.Event {
	return originPurchasedEvent(EventTypeHeroOriginOfShellPurchased, collection, nft, owner, info, price)
}

func OriginOfShellPreorderedEvent(p Preorder) *types.Event {
	return &types.Event{
		Type: EventTypeOriginOfShellPreordered,
		Attributes: map[string]string{
			"owner":      crypto.FormatAccount(p.Owner),
			"preorderId": u32(p.ID),
			"race":       p.Race.String(),
			"career":     p.Career.String(),
		},
	}
}

func PreorderResultChangedEvent(id uint32, status PreorderStatus) *types.Event {
	return &types.Event{
		Type: EventTypePreorderResultChanged,
		Attributes: map[string]string{
			"preorderId": u32(id),
			"status":     status.String(),
		},
	}
}

func OriginOfShellMintedEvent(collection, nft uint32, owner [20]byte, preorderID uint32) *types.Event {
	return &types.Event{
		Type: EventTypeOriginOfShellMinted,
		Attributes: map[string]string{
			"collectionId": u32(collection),
			"nftId":        u32(nft),
			"owner":        crypto.FormatAccount(owner),
			"preorderId":   u32(preorderID),
		},
	}
}

func RefundWasClaimedEvent(id uint32, owner [20]byte, amount *uint256.Int) *types.Event {
	return &types.Event{
		Type: EventTypeRefundWasClaimed,
		Attributes: map[string]string{
			"preorderId": u32(id),
			"owner":      crypto.FormatAccount(owner),
			"amount":     amount.Dec(),
		},
	}
}
