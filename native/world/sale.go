package world

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"shellchain/core/types"
	"shellchain/native/common"
)

// RedeemSpiritMessage returns the bytes the Overlord signs to let account
// redeem a spirit without the minimum balance.
func RedeemSpiritMessage(account [20]byte) ([]byte, error) {
	return rlp.EncodeToBytes(OverlordMessage{Account: account, Purpose: PurposeRedeemSpirit})
}

// WhitelistMessage returns the bytes the Overlord signs to whitelist account
// for a Hero purchase carrying metadata.
func WhitelistMessage(account [20]byte, metadata string) ([]byte, error) {
	return rlp.EncodeToBytes(WhitelistClaim{Account: account, Metadata: metadata})
}

func (e *Engine) verifyOverlordSignature(signature, msg []byte, overlord [20]byte) error {
	if e.signer == nil {
		return errNilSigner
	}
	if !e.signer.Verify(signature, msg, overlord) {
		return ErrWhitelistVerificationFailed
	}
	return nil
}

// spiritPreconditions runs the checks shared by both spirit claim variants and
// returns the Overlord and spirit collection.
func (e *Engine) spiritPreconditions(origin types.Origin) ([20]byte, [20]byte, uint32, error) {
	if err := e.ready(); err != nil {
		return [20]byte{}, [20]byte{}, 0, err
	}
	if err := common.Guard(e, ErrSpiritClaimNotAvailable, PhaseClaimSpirits.String()); err != nil {
		return [20]byte{}, [20]byte{}, 0, err
	}
	sender, err := types.EnsureSigned(origin)
	if err != nil {
		return [20]byte{}, [20]byte{}, 0, err
	}
	overlord, err := e.requireOverlord()
	if err != nil {
		return [20]byte{}, [20]byte{}, 0, err
	}
	collection, err := e.requireSpiritCollection()
	if err != nil {
		return [20]byte{}, [20]byte{}, 0, err
	}
	owned, err := e.registry.CountOwned(collection, sender)
	if err != nil {
		return [20]byte{}, [20]byte{}, 0, err
	}
	if owned > 0 {
		return [20]byte{}, [20]byte{}, 0, ErrSpiritAlreadyClaimed
	}
	return sender, overlord, collection, nil
}

func (e *Engine) mintSpirit(owner [20]byte, collection uint32, metadata string) error {
	nft, err := e.registry.Mint(collection, owner, metadata)
	if err != nil {
		return err
	}
	if err := e.registry.Freeze(collection, nft); err != nil {
		return err
	}
	e.emit(SpiritClaimedEvent(owner, collection, nft))
	return nil
}

// ClaimSpirit mints a non-transferable spirit to an account that can reserve
// the minimum balance.
func (e *Engine) ClaimSpirit(origin types.Origin, metadata string) error {
	sender, _, collection, err := e.spiritPreconditions(origin)
	if err != nil {
		return err
	}
	ok, err := e.ledger.CanReserve(sender, e.params.MinBalanceToClaimSpirit)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBelowMinimumBalanceThreshold
	}
	if err := e.checkMetadata(metadata); err != nil {
		return err
	}
	return e.mintSpirit(sender, collection, metadata)
}

// RedeemSpirit mints a spirit to an account holding an Overlord-signed
// redemption ticket. The minimum balance requirement does not apply.
func (e *Engine) RedeemSpirit(origin types.Origin, signature []byte) error {
	sender, overlord, collection, err := e.spiritPreconditions(origin)
	if err != nil {
		return err
	}
	msg, err := RedeemSpiritMessage(sender)
	if err != nil {
		return err
	}
	if err := e.verifyOverlordSignature(signature, msg, overlord); err != nil {
		return err
	}
	return e.mintSpirit(sender, collection, "")
}

type purchase struct {
	sender   [20]byte
	overlord [20]byte
	tier     Tier
	race     Race
	career   Career
	metadata string
	price    *uint256.Int
}

// purchaseEligibility checks the spirit and one-per-account rules and returns
// the origin collection.
func (e *Engine) purchaseEligibility(sender [20]byte) (uint32, error) {
	spirits, err := e.requireSpiritCollection()
	if err != nil {
		return 0, err
	}
	origins, err := e.requireOriginCollection()
	if err != nil {
		return 0, err
	}
	if err := e.ownsSpirit(spirits, sender); err != nil {
		return 0, err
	}
	lastDay, err := e.PhaseOpen(PhaseLastDayOfSale)
	if err != nil {
		return 0, err
	}
	if !lastDay {
		owned, err := e.registry.CountOwned(origins, sender)
		if err != nil {
			return 0, err
		}
		if owned > 0 {
			return 0, ErrOriginOfShellAlreadyPurchased
		}
	}
	return origins, nil
}

func validateChoice(race Race, career Career) error {
	if !race.Valid() {
		return ErrInvalidRace
	}
	if !career.Valid() {
		return ErrInvalidCareer
	}
	return nil
}

// settlePurchase charges the buyer, mints the token and updates the counters.
// Callers have already checked eligibility and capacity.
func (e *Engine) settlePurchase(collection uint32, p purchase) (uint32, OriginOfShell, error) {
	if err := e.ledger.Transfer(p.sender, p.overlord, p.price, true); err != nil {
		return 0, OriginOfShell{}, err
	}
	nft, err := e.registry.Mint(collection, p.sender, p.metadata)
	if err != nil {
		return 0, OriginOfShell{}, err
	}
	info := OriginOfShell{Tier: p.tier, Race: p.race, Career: p.career}
	if err := e.setOriginAttributes(collection, nft, info); err != nil {
		return 0, OriginOfShell{}, err
	}
	if err := e.recordSale(p.tier, p.race); err != nil {
		return 0, OriginOfShell{}, err
	}
	if err := e.incrementCareer(p.career); err != nil {
		return 0, OriginOfShell{}, err
	}
	if err := e.PutOriginOfShell(collection, nft, info); err != nil {
		return 0, OriginOfShell{}, err
	}
	return nft, info, nil
}

// BuyRareOriginOfShell sells a Magic or Legendary Origin of Shell at its tier
// price while the rare sale or the last day of sale is open.
func (e *Engine) BuyRareOriginOfShell(origin types.Origin, tier Tier, race Race, career Career, metadata string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := common.Guard(e, ErrRareOriginOfShellPurchaseNotAvailable,
		PhasePurchaseRare.String(), PhaseLastDayOfSale.String()); err != nil {
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
	if tier != TierMagic && tier != TierLegendary {
		return ErrInvalidPurchase
	}
	price, err := e.params.Price(tier)
	if err != nil {
		return err
	}
	if err := validateChoice(race, career); err != nil {
		return err
	}
	if err := e.checkMetadata(metadata); err != nil {
		return err
	}
	if err := e.hasRaceTypeLeft(tier, race); err != nil {
		return err
	}
	nft, info, err := e.settlePurchase(collection, purchase{
		sender: sender, overlord: overlord, tier: tier, race: race, career: career,
		metadata: metadata, price: price,
	})
	if err != nil {
		return err
	}
	e.emit(RareOriginOfShellPurchasedEvent(collection, nft, sender, info, price))
	return nil
}

// BuyHeroOriginOfShell sells a Hero Origin of Shell to an account holding an
// Overlord signature over its address and metadata.
func (e *Engine) BuyHeroOriginOfShell(origin types.Origin, signature []byte, race Race, career Career, metadata string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := common.Guard(e, ErrHeroOriginOfShellPurchaseNotAvailable,
		PhasePurchaseHero.String(), PhaseLastDayOfSale.String()); err != nil {
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
	if err := e.checkMetadata(metadata); err != nil {
		return err
	}
	msg, err := WhitelistMessage(sender, metadata)
	if err != nil {
		return err
	}
	if err := e.verifyOverlordSignature(signature, msg, overlord); err != nil {
		return err
	}
	collection, err := e.purchaseEligibility(sender)
	if err != nil {
		return err
	}
	if err := validateChoice(race, career); err != nil {
		return err
	}
	price, err := e.params.Price(TierHero)
	if err != nil {
		return err
	}
	if err := e.hasRaceTypeLeft(TierHero, race); err != nil {
		return err
	}
	nft, info, err := e.settlePurchase(collection, purchase{
		sender: sender, overlord: overlord, tier: TierHero, race: race, career: career,
		metadata: metadata, price: price,
	})
	if err != nil {
		return err
	}
	e.emit(HeroOriginOfShellPurchasedEvent(collection, nft, sender, info, price))
	return nil
}
