package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	coreerrors "shellchain/core/errors"
	"shellchain/core/types"
)

func TestClaimSpiritAtMostOnce(t *testing.T) {
	f := newFixture(t)
	alice := account(0xa1)
	f.fund(alice, 100)

	err := f.engine.ClaimSpirit(types.SignedOrigin(alice), "")
	require.True(t, errors.Is(err, ErrSpiritClaimNotAvailable))
	require.True(t, errors.Is(err, coreerrors.ErrPhaseClosed))

	f.open(PhaseClaimSpirits)
	require.NoError(t, f.engine.ClaimSpirit(types.SignedOrigin(alice), "alice"))
	require.Equal(t, EventTypeSpiritClaimed, f.events.last().Type)

	owned, err := f.registry.CountOwned(f.spirits, alice)
	require.NoError(t, err)
	require.Equal(t, uint32(1), owned)
	frozen, err := f.registry.Frozen(f.spirits, 0)
	require.NoError(t, err)
	require.True(t, frozen, "spirits are non-transferable")

	for i := 0; i < 3; i++ {
		err = f.engine.ClaimSpirit(types.SignedOrigin(alice), "")
		require.True(t, errors.Is(err, ErrSpiritAlreadyClaimed), "attempt %d: %v", i, err)
	}
	require.Equal(t, uint64(100), f.free(alice), "claiming reserves nothing")
}

func TestClaimSpiritRequiresMinimumBalance(t *testing.T) {
	f := newFixture(t)
	f.open(PhaseClaimSpirits)
	bob := account(0xb0)
	f.fund(bob, 9)

	err := f.engine.ClaimSpirit(types.SignedOrigin(bob), "")
	require.True(t, errors.Is(err, ErrBelowMinimumBalanceThreshold))

	f.fund(bob, 1)
	require.NoError(t, f.engine.ClaimSpirit(types.SignedOrigin(bob), ""))
}

func TestClaimSpiritRejectsRootAndLongMetadata(t *testing.T) {
	f := newFixture(t)
	f.open(PhaseClaimSpirits)
	require.True(t, errors.Is(f.engine.ClaimSpirit(types.RootOrigin(), ""), types.ErrBadOrigin))

	carol := account(0xc0)
	f.fund(carol, 100)
	long := make([]byte, 65)
	err := f.engine.ClaimSpirit(types.SignedOrigin(carol), string(long))
	require.True(t, errors.Is(err, ErrMetadataTooLong))
}

func TestRedeemSpiritWithOverlordTicket(t *testing.T) {
	f := newFixture(t)
	f.open(PhaseClaimSpirits)
	bob := account(0xb0)

	msg, err := RedeemSpiritMessage(bob)
	require.NoError(t, err)
	require.NoError(t, f.engine.RedeemSpirit(types.SignedOrigin(bob), f.sign(msg)))

	err = f.engine.RedeemSpirit(types.SignedOrigin(bob), f.sign(msg))
	require.True(t, errors.Is(err, ErrSpiritAlreadyClaimed))

	carol := account(0xc0)
	err = f.engine.RedeemSpirit(types.SignedOrigin(carol), f.sign(msg))
	require.True(t, errors.Is(err, ErrWhitelistVerificationFailed), "ticket is bound to the account")
}

func TestRareOriginOfShellScarcity(t *testing.T) {
	f := newFixture(t)
	alice, bob := account(0xa1), account(0xb0)
	f.withSpirit(alice, 5000)
	f.withSpirit(bob, 5000)
	f.open(PhasePurchaseRare)

	require.Equal(t, uint32(1), f.inventory(TierLegendary, RaceAISpectre).RaceForSale)
	require.NoError(t, f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierLegendary, RaceAISpectre, CareerWeb3Monk, "a"))

	info := f.inventory(TierLegendary, RaceAISpectre)
	require.Equal(t, uint32(0), info.RaceForSale)
	require.Equal(t, uint32(1), info.RaceCount)
	require.Equal(t, uint64(4000), f.free(alice))
	require.Equal(t, uint64(1000), f.free(f.overlord))

	err := f.engine.BuyRareOriginOfShell(types.SignedOrigin(bob), TierLegendary, RaceAISpectre, CareerHackerWizard, "b")
	require.True(t, errors.Is(err, ErrRaceMintMaxReached))
	require.True(t, errors.Is(err, coreerrors.ErrScarcity))
	require.Equal(t, uint64(5000), f.free(bob))

	record, ok, err := f.engine.OriginOfShell(f.origins, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, OriginOfShell{Tier: TierLegendary, Race: RaceAISpectre, Career: CareerWeb3Monk}, record)

	for key, want := range map[string]byte{AttributeRace: byte(RaceAISpectre), AttributeCareer: byte(CareerWeb3Monk), AttributeTier: byte(TierLegendary)} {
		value, ok, err := f.registry.Attribute(f.origins, 0, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		require.Equal(t, []byte{want}, value, key)
	}
	careers, err := f.engine.CareerCount(CareerWeb3Monk)
	require.NoError(t, err)
	require.Equal(t, uint32(1), careers)
}

func TestRareInventoryCountsDownToZero(t *testing.T) {
	f := newFixture(t)
	whale := account(0xee)
	f.withSpirit(whale, 100_000)
	f.open(PhaseLastDayOfSale)

	genesis := f.inventory(TierMagic, RaceCyborg).RaceForSale
	for n := uint32(1); n <= genesis; n++ {
		require.NoError(t, f.engine.BuyRareOriginOfShell(types.SignedOrigin(whale), TierMagic, RaceCyborg, CareerRoboWarrior, ""))
		require.Equal(t, genesis-n, f.inventory(TierMagic, RaceCyborg).RaceForSale)
	}
	err := f.engine.BuyRareOriginOfShell(types.SignedOrigin(whale), TierMagic, RaceCyborg, CareerRoboWarrior, "")
	require.True(t, errors.Is(err, ErrRaceMintMaxReached))
	require.Equal(t, uint32(0), f.inventory(TierMagic, RaceCyborg).RaceForSale)
	require.Equal(t, genesis, f.inventory(TierMagic, RaceCyborg).RaceCount)
}

func TestRareOriginOfShellEligibility(t *testing.T) {
	f := newFixture(t)
	alice, nobody := account(0xa1), account(0x0f)
	f.withSpirit(alice, 5000)
	f.fund(nobody, 5000)

	err := f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierMagic, RaceXGene, CareerWeb3Monk, "")
	require.True(t, errors.Is(err, ErrRareOriginOfShellPurchaseNotAvailable))

	f.open(PhasePurchaseRare)
	err = f.engine.BuyRareOriginOfShell(types.SignedOrigin(nobody), TierMagic, RaceXGene, CareerWeb3Monk, "")
	require.True(t, errors.Is(err, ErrMustOwnSpiritToPurchase))

	err = f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierHero, RaceXGene, CareerWeb3Monk, "")
	require.True(t, errors.Is(err, ErrInvalidPurchase))

	err = f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierMagic, Race(9), CareerWeb3Monk, "")
	require.True(t, errors.Is(err, ErrInvalidRace))

	require.NoError(t, f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierMagic, RaceXGene, CareerWeb3Monk, ""))
	err = f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierMagic, RacePandroid, CareerWeb3Monk, "")
	require.True(t, errors.Is(err, ErrOriginOfShellAlreadyPurchased))

	f.open(PhaseLastDayOfSale)
	require.NoError(t, f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierMagic, RacePandroid, CareerWeb3Monk, ""))
}

func TestRareOriginOfShellKeepAlive(t *testing.T) {
	f := newFixture(t)
	poor := account(0x99)
	f.withSpirit(poor, 500)
	f.open(PhasePurchaseRare)

	err := f.engine.BuyRareOriginOfShell(types.SignedOrigin(poor), TierMagic, RaceCyborg, CareerWeb3Monk, "")
	require.Error(t, err, "the payment must leave the existential deposit behind")
	require.Equal(t, uint32(15), f.inventory(TierMagic, RaceCyborg).RaceForSale)
}

func TestBuyHeroOriginOfShellRequiresWhitelist(t *testing.T) {
	f := newFixture(t)
	alice := account(0xa1)
	f.withSpirit(alice, 1000)
	f.open(PhasePurchaseHero)

	good, err := WhitelistMessage(alice, "alice-meta")
	require.NoError(t, err)
	tampered, err := WhitelistMessage(alice, "other-meta")
	require.NoError(t, err)

	err = f.engine.BuyHeroOriginOfShell(types.SignedOrigin(alice), f.sign(tampered), RaceCyborg, CareerHardwareDruid, "alice-meta")
	require.True(t, errors.Is(err, ErrWhitelistVerificationFailed))

	require.NoError(t, f.engine.BuyHeroOriginOfShell(types.SignedOrigin(alice), f.sign(good), RaceCyborg, CareerHardwareDruid, "alice-meta"))
	require.Equal(t, EventTypeHeroOriginOfShellPurchased, f.events.last().Type)
	require.Equal(t, uint32(1249), f.inventory(TierHero, RaceCyborg).RaceForSale)
	require.Equal(t, uint64(900), f.free(alice))

	err = f.engine.BuyHeroOriginOfShell(types.SignedOrigin(alice), f.sign(good), RaceCyborg, CareerHardwareDruid, "alice-meta")
	require.True(t, errors.Is(err, ErrOriginOfShellAlreadyPurchased))
}

func TestPurchasesRequireOverlord(t *testing.T) {
	f := newFixture(t)
	alice := account(0xa1)
	f.withSpirit(alice, 5000)
	f.open(PhasePurchaseRare)
	require.NoError(t, f.mgr.KVDelete(overlordKey))

	err := f.engine.BuyRareOriginOfShell(types.SignedOrigin(alice), TierMagic, RaceCyborg, CareerWeb3Monk, "")
	require.True(t, errors.Is(err, ErrOverlordNotSet))
}
