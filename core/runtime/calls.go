package runtime

import (
	"context"

	"github.com/holiman/uint256"

	"shellchain/core/types"
	"shellchain/native/incubation"
	"shellchain/native/world"
)

// InitGenesis seeds inventory and the initial Overlord.
func (r *Runtime) InitGenesis(ctx context.Context, g world.Genesis) error {
	return r.dispatch(ctx, call{name: "init_genesis", admin: true}, types.RootOrigin(), func() error {
		return r.world.InitGenesis(g)
	})
}

// Endow credits free balance to account. Only root may mint funds.
func (r *Runtime) Endow(ctx context.Context, origin types.Origin, account [20]byte, amount *uint256.Int) error {
	return r.dispatch(ctx, call{name: "endow", admin: true}, origin, func() error {
		if err := types.EnsureRoot(origin); err != nil {
			return err
		}
		return r.ledger.Credit(account, amount)
	})
}

// CreateCollection registers a token collection issued by the Overlord and
// returns its id.
func (r *Runtime) CreateCollection(ctx context.Context, origin types.Origin, max uint32, symbol, metadata string) (uint32, error) {
	var id uint32
	err := r.dispatch(ctx, call{name: "create_collection", admin: true}, origin, func() error {
		issuer, err := r.world.EnsureOverlord(origin)
		if err != nil {
			return err
		}
		id, err = r.nfts.CreateCollection(issuer, max, symbol, metadata)
		return err
	})
	return id, err
}

// SetOverlord hands the Overlord role to account.
func (r *Runtime) SetOverlord(ctx context.Context, origin types.Origin, account [20]byte) error {
	return r.dispatch(ctx, call{name: "set_overlord", admin: true}, origin, func() error {
		return r.world.SetOverlord(origin, account)
	})
}

// InitializeWorldClock records the current time as zero day.
func (r *Runtime) InitializeWorldClock(ctx context.Context, origin types.Origin) error {
	return r.dispatch(ctx, call{name: "initialize_world_clock", admin: true}, origin, func() error {
		return r.world.InitializeWorldClock(origin)
	})
}

// SetPhase opens or closes a sale phase.
func (r *Runtime) SetPhase(ctx context.Context, origin types.Origin, phase world.Phase, status bool) error {
	return r.dispatch(ctx, call{name: "set_phase", admin: true}, origin, func() error {
		return r.world.SetPhase(origin, phase, status)
	})
}

// SetSpiritCollectionID binds the Spirit collection.
func (r *Runtime) SetSpiritCollectionID(ctx context.Context, origin types.Origin, collection uint32) error {
	return r.dispatch(ctx, call{name: "set_spirit_collection_id", admin: true}, origin, func() error {
		return r.world.SetSpiritCollectionID(origin, collection)
	})
}

// SetOriginOfShellCollectionID binds the Origin of Shell collection.
func (r *Runtime) SetOriginOfShellCollectionID(ctx context.Context, origin types.Origin, collection uint32) error {
	return r.dispatch(ctx, call{name: "set_origin_of_shell_collection_id", admin: true}, origin, func() error {
		return r.world.SetOriginOfShellCollectionID(origin, collection)
	})
}

// SetShellCollectionID binds the collection hatched shells are minted into.
func (r *Runtime) SetShellCollectionID(ctx context.Context, origin types.Origin, collection uint32) error {
	return r.dispatch(ctx, call{name: "set_shell_collection_id", admin: true}, origin, func() error {
		return r.incubation.SetShellCollectionID(origin, collection)
	})
}

// UpdateInventoryCounts tops up the Hero tier for-sale and giveaway counts.
func (r *Runtime) UpdateInventoryCounts(ctx context.Context, origin types.Origin, tier world.Tier, forSale, giveaway uint32) error {
	return r.dispatch(ctx, call{name: "update_inventory_counts", admin: true}, origin, func() error {
		return r.world.UpdateInventoryCounts(origin, tier, forSale, giveaway)
	})
}

// ClaimSpirit mints a Spirit to a sender able to reserve the minimum balance.
func (r *Runtime) ClaimSpirit(ctx context.Context, origin types.Origin, metadata string) error {
	return r.dispatch(ctx, call{name: "claim_spirit"}, origin, func() error {
		return r.world.ClaimSpirit(origin, metadata)
	})
}

// RedeemSpirit mints a Spirit against an Overlord signed redemption ticket.
func (r *Runtime) RedeemSpirit(ctx context.Context, origin types.Origin, signature []byte) error {
	return r.dispatch(ctx, call{name: "redeem_spirit", attrs: signatureAttrs(signature)}, origin, func() error {
		return r.world.RedeemSpirit(origin, signature)
	})
}

// BuyRareOriginOfShell buys a Legendary or Magic Origin of Shell.
func (r *Runtime) BuyRareOriginOfShell(ctx context.Context, origin types.Origin, tier world.Tier, race world.Race, career world.Career, metadata string) error {
	return r.dispatch(ctx, call{name: "buy_rare_origin_of_shell"}, origin, func() error {
		return r.world.BuyRareOriginOfShell(origin, tier, race, career, metadata)
	})
}

// BuyHeroOriginOfShell buys a Hero Origin of Shell with a whitelist signature.
func (r *Runtime) BuyHeroOriginOfShell(ctx context.Context, origin types.Origin, signature []byte, race world.Race, career world.Career, metadata string) error {
	return r.dispatch(ctx, call{name: "buy_hero_origin_of_shell", attrs: signatureAttrs(signature)}, origin, func() error {
		return r.world.BuyHeroOriginOfShell(origin, signature, race, career, metadata)
	})
}

// PreorderOriginOfShell reserves the Hero price and queues a preorder.
func (r *Runtime) PreorderOriginOfShell(ctx context.Context, origin types.Origin, race world.Race, career world.Career, metadata string) error {
	return r.dispatch(ctx, call{name: "preorder_origin_of_shell"}, origin, func() error {
		return r.world.PreorderOriginOfShell(origin, race, career, metadata)
	})
}

// SetPreorderStatus resolves one pending preorder.
func (r *Runtime) SetPreorderStatus(ctx context.Context, origin types.Origin, id uint32, status world.PreorderStatus) error {
	return r.dispatch(ctx, call{name: "set_preorder_status", admin: true}, origin, func() error {
		return r.world.SetPreorderStatus(origin, id, status)
	})
}

// PreorderDecision is one lottery outcome.
type PreorderDecision struct {
	ID     uint32
	Status world.PreorderStatus
}

// ApplyPreorderResults resolves many preorders in one transition; either
// every decision is applied or none is.
func (r *Runtime) ApplyPreorderResults(ctx context.Context, origin types.Origin, decisions []PreorderDecision) error {
	return r.dispatch(ctx, call{name: "apply_preorder_results", admin: true}, origin, func() error {
		for _, d := range decisions {
			if err := r.world.SetPreorderStatus(origin, d.ID, d.Status); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClaimChosenPreorders mints every chosen preorder of the sender.
func (r *Runtime) ClaimChosenPreorders(ctx context.Context, origin types.Origin) error {
	return r.dispatch(ctx, call{name: "claim_chosen_preorders"}, origin, func() error {
		return r.world.ClaimChosenPreorders(origin)
	})
}

// ClaimRefundPreorders releases the reserve of every preorder that was not
// chosen.
func (r *Runtime) ClaimRefundPreorders(ctx context.Context, origin types.Origin) error {
	return r.dispatch(ctx, call{name: "claim_refund_preorders"}, origin, func() error {
		return r.world.ClaimRefundPreorders(origin)
	})
}

// SetCanStartIncubationStatus toggles whether owners may begin incubation.
func (r *Runtime) SetCanStartIncubationStatus(ctx context.Context, origin types.Origin, status bool) error {
	return r.dispatch(ctx, call{name: "set_can_start_incubation_status", admin: true}, origin, func() error {
		return r.incubation.SetCanStartIncubationStatus(origin, status)
	})
}

// StartIncubation starts the hatch timer of an owned Origin of Shell.
func (r *Runtime) StartIncubation(ctx context.Context, origin types.Origin, collection, nft uint32) error {
	return r.dispatch(ctx, call{name: "start_incubation"}, origin, func() error {
		return r.incubation.StartIncubation(origin, collection, nft)
	})
}

// FeedOriginOfShell spends one of the sender's feedings for the current era.
func (r *Runtime) FeedOriginOfShell(ctx context.Context, origin types.Origin, collection, nft uint32) error {
	err := r.dispatch(ctx, call{name: "feed_origin_of_shell"}, origin, func() error {
		return r.incubation.FeedOriginOfShell(origin, collection, nft)
	})
	if err == nil {
		r.metrics.IncFeeds()
	}
	return err
}

// HatchOriginOfShell burns a ready Origin of Shell and mints its shell to
// owner.
func (r *Runtime) HatchOriginOfShell(ctx context.Context, origin types.Origin, owner [20]byte, collection, nft uint32, resourceSrc string) error {
	err := r.dispatch(ctx, call{name: "hatch_origin_of_shell", admin: true}, origin, func() error {
		return r.incubation.HatchOriginOfShell(origin, owner, collection, nft, resourceSrc)
	})
	if err == nil {
		r.metrics.IncHatches()
	}
	return err
}

// UpdateIncubationTime shortens hatch times by the given reductions.
func (r *Runtime) UpdateIncubationTime(ctx context.Context, origin types.Origin, reductions []incubation.HatchTimeReduction) error {
	return r.dispatch(ctx, call{name: "update_incubation_time", admin: true}, origin, func() error {
		return r.incubation.UpdateIncubationTime(origin, reductions)
	})
}

// Tick advances the world era when a boundary has passed. It reports whether
// the era moved.
func (r *Runtime) Tick(ctx context.Context) (bool, error) {
	var moved bool
	err := r.dispatch(ctx, call{name: "on_finalize"}, types.RootOrigin(), func() error {
		var err error
		moved, err = r.world.OnFinalize()
		return err
	})
	return moved, err
}
