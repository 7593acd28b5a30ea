package world

import (
	"math"

	"github.com/holiman/uint256"

	"shellchain/core/types"
	"shellchain/native/common"
)

// PreorderOriginOfShell reserves the Hero price and records a pending
// preorder for the chosen race and career.
func (e *Engine) PreorderOriginOfShell(origin types.Origin, race Race, career Career, metadata string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := common.Guard(e, ErrPreorderOriginOfShellNotAvailable, PhasePreorder.String()); err != nil {
		return err
	}
	sender, err := types.EnsureSigned(origin)
	if err != nil {
		return err
	}
	spirits, err := e.requireSpiritCollection()
	if err != nil {
		return err
	}
	if err := e.ownsSpirit(spirits, sender); err != nil {
		return err
	}
	if err := validateChoice(race, career); err != nil {
		return err
	}
	if err := e.checkMetadata(metadata); err != nil {
		return err
	}
	id, err := e.PreorderIndex()
	if err != nil {
		return err
	}
	if id == math.MaxUint32 {
		return ErrNoAvailablePreorderId
	}
	if err := e.state.KVPut(preorderIndexKey, id+1); err != nil {
		return err
	}
	price, err := e.params.Price(TierHero)
	if err != nil {
		return err
	}
	if err := e.ledger.Reserve(sender, price); err != nil {
		return err
	}
	p := Preorder{ID: id, Owner: sender, Race: race, Career: career, Metadata: metadata, Status: PreorderPending}
	if err := e.state.KVPut(preorderKey(id), p); err != nil {
		return err
	}
	if err := e.adjustPendingCount(1); err != nil {
		return err
	}
	e.emit(OriginOfShellPreorderedEvent(p))
	return nil
}

// SetPreorderStatus resolves a pending preorder and moves it into the owner's
// results.
func (e *Engine) SetPreorderStatus(origin types.Origin, id uint32, status PreorderStatus) error {
	if _, err := e.EnsureOverlord(origin); err != nil {
		return err
	}
	if status != PreorderChosen && status != PreorderNotChosen {
		return ErrInvalidStatusType
	}
	p, ok, err := e.Preorder(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoAvailablePreorderId
	}
	if err := e.state.KVDelete(preorderKey(id)); err != nil {
		return err
	}
	if err := e.adjustPendingCount(-1); err != nil {
		return err
	}
	if err := e.advancePreorderHead(); err != nil {
		return err
	}
	p.Status = status
	results, err := e.PreorderResults(p.Owner)
	if err != nil {
		return err
	}
	results = append(results, p)
	if err := e.putPreorderResults(p.Owner, results); err != nil {
		return err
	}
	e.emit(PreorderResultChangedEvent(id, status))
	return nil
}

// settleResults walks the resolved preorders of sender. Entries with status
// want are handed to settle and removed; the other resolved status is kept
// for the opposite claim path. A pending entry aborts the walk. It returns the
// number of settled entries.
func (e *Engine) settleResults(sender [20]byte, want PreorderStatus, settle func(Preorder) error) (int, error) {
	results, err := e.PreorderResults(sender)
	if err != nil {
		return 0, err
	}
	var kept []Preorder
	settled := 0
	for _, p := range results {
		switch p.Status {
		case want:
			if p.Owner != sender {
				return 0, ErrNotPreorderOwner
			}
			if err := settle(p); err != nil {
				return 0, err
			}
			settled++
		case PreorderChosen, PreorderNotChosen:
			kept = append(kept, p)
		default:
			return 0, ErrPreorderIsPending
		}
	}
	if settled == 0 {
		return 0, nil
	}
	return settled, e.putPreorderResults(sender, kept)
}

// ClaimChosenPreorders mints every chosen preorder of the caller, paying the
// reserved Hero price to the Overlord. It is only available once preorders
// have closed.
func (e *Engine) ClaimChosenPreorders(origin types.Origin) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := common.GuardClosed(e, ErrPreorderClaimNotAvailable, PhasePreorder.String()); err != nil {
		return err
	}
	sender, err := types.EnsureSigned(origin)
	if err != nil {
		return err
	}
	overlord, err := e.requireOverlord()
	if err != nil {
		return err
	}
	collection, err := e.purchaseEligibility(sender)
	if err != nil {
		return err
	}
	price, err := e.params.Price(TierHero)
	if err != nil {
		return err
	}
	settled, err := e.settleResults(sender, PreorderChosen, func(p Preorder) error {
		if _, err := e.ledger.Unreserve(sender, price); err != nil {
			return err
		}
		if err := e.ledger.Transfer(sender, overlord, price, true); err != nil {
			return err
		}
		nft, err := e.registry.Mint(collection, p.Owner, p.Metadata)
		if err != nil {
			return err
		}
		info := OriginOfShell{Tier: TierHero, Race: p.Race, Career: p.Career}
		if err := e.setOriginAttributes(collection, nft, info); err != nil {
			return err
		}
		if err := e.recordMint(TierHero, p.Race); err != nil {
			return err
		}
		if err := e.incrementCareer(p.Career); err != nil {
			return err
		}
		if err := e.PutOriginOfShell(collection, nft, info); err != nil {
			return err
		}
		e.emit(OriginOfShellMintedEvent(collection, nft, p.Owner, p.ID))
		return nil
	})
	if err != nil {
		return err
	}
	if settled == 0 {
		return ErrPreorderClaimNotDetected
	}
	return nil
}

// ClaimRefundPreorders releases the reserved Hero price of every preorder of
// the caller that was not chosen.
func (e *Engine) ClaimRefundPreorders(origin types.Origin) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := common.GuardClosed(e, ErrPreorderClaimNotAvailable, PhasePreorder.String()); err != nil {
		return err
	}
	sender, err := types.EnsureSigned(origin)
	if err != nil {
		return err
	}
	price, err := e.params.Price(TierHero)
	if err != nil {
		return err
	}
	settled, err := e.settleResults(sender, PreorderNotChosen, func(p Preorder) error {
		short, err := e.ledger.Unreserve(sender, price)
		if err != nil {
			return err
		}
		refunded := new(uint256.Int).Sub(price, short)
		e.emit(RefundWasClaimedEvent(p.ID, sender, refunded))
		return nil
	})
	if err != nil {
		return err
	}
	if settled == 0 {
		return ErrRefundClaimNotDetected
	}
	return nil
}
