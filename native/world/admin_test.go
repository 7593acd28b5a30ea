package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	coreerrors "shellchain/core/errors"
	"shellchain/core/types"
)

func TestSetOverlordIsRootOnly(t *testing.T) {
	f := newFixture(t)
	next := account(0x42)

	err := f.engine.SetOverlord(f.admin(), next)
	require.True(t, errors.Is(err, types.ErrBadOrigin))
	require.True(t, errors.Is(err, coreerrors.ErrUnauthorized))

	require.NoError(t, f.engine.SetOverlord(types.RootOrigin(), next))
	got, ok, err := f.engine.Overlord()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, next, got)
	require.Equal(t, EventTypeOverlordChanged, f.events.last().Type)

	err = f.engine.SetPhase(f.admin(), PhasePurchaseRare, true)
	require.True(t, errors.Is(err, ErrRequireOverlordAccount), "the previous overlord loses its rights")
}

func TestCollectionsAreSetOnce(t *testing.T) {
	f := newFixture(t)
	require.True(t, errors.Is(f.engine.SetSpiritCollectionID(f.admin(), 9), ErrSpiritCollectionIdAlreadySet))
	require.True(t, errors.Is(f.engine.SetOriginOfShellCollectionID(f.admin(), 9), ErrOriginOfShellCollectionIdAlreadySet))

	id, ok, err := f.engine.SpiritCollectionID()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, f.spirits, id)
}

func TestAdminCallsRequireOverlord(t *testing.T) {
	f := newFixture(t)
	stranger := types.SignedOrigin(account(0x77))
	require.True(t, errors.Is(f.engine.SetPhase(stranger, PhaseClaimSpirits, true), ErrRequireOverlordAccount))
	require.True(t, errors.Is(f.engine.UpdateInventoryCounts(stranger, TierHero, 1, 1), ErrRequireOverlordAccount))
	require.True(t, errors.Is(f.engine.SetPhase(types.RootOrigin(), PhaseClaimSpirits, true), types.ErrBadOrigin))
	require.True(t, errors.Is(f.engine.SetPhase(f.admin(), Phase(12), true), ErrInvalidStatusType))
}

func TestPhaseFlags(t *testing.T) {
	f := newFixture(t)
	for _, p := range []Phase{PhaseClaimSpirits, PhasePurchaseRare, PhasePurchaseHero, PhasePreorder, PhaseLastDayOfSale} {
		open, err := f.engine.PhaseOpen(p)
		require.NoError(t, err)
		require.False(t, open, p.String())
	}
	f.open(PhasePurchaseHero)
	open, err := f.engine.GateOpen("purchase_hero")
	require.NoError(t, err)
	require.True(t, open)
	require.Equal(t, "true", f.events.last().Attributes["status"])
}

func TestUpdateInventoryCounts(t *testing.T) {
	f := newFixture(t)
	err := f.engine.UpdateInventoryCounts(f.admin(), TierMagic, 10, 0)
	require.True(t, errors.Is(err, ErrWrongOriginOfShellType))

	require.NoError(t, f.engine.UpdateInventoryCounts(f.admin(), TierHero, 10, 2))
	for _, race := range Races {
		info := f.inventory(TierHero, race)
		require.Equal(t, uint32(1260), info.RaceForSale, race.String())
		require.Equal(t, uint32(52), info.RaceGiveaway, race.String())
	}
	require.Equal(t, EventTypeInventoryUpdated, f.events.last().Type)
}

func TestInitGenesisOnce(t *testing.T) {
	f := newFixture(t)
	require.True(t, errors.Is(f.engine.InitGenesis(Genesis{}), ErrGenesisAlreadyApplied))

	legendary := f.inventory(TierLegendary, RaceXGene)
	require.Equal(t, SaleInfo{RaceForSale: 1, RaceReserved: 1}, legendary)
}

func TestPriceTable(t *testing.T) {
	p := testParams()
	for tier, want := range map[Tier]uint64{TierLegendary: 1000, TierMagic: 500, TierHero: 100} {
		price, err := p.Price(tier)
		require.NoError(t, err)
		require.Equal(t, want, price.Uint64())
		price.SetUint64(1)
	}
	price, err := p.Price(TierLegendary)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), price.Uint64(), "Price returns a copy")

	_, err = p.Price(Tier(7))
	require.True(t, errors.Is(err, ErrInvalidPurchase))
	require.NoError(t, DefaultParams().Validate())
}

func TestParseEnums(t *testing.T) {
	race, err := ParseRace("ai_spectre")
	require.NoError(t, err)
	require.Equal(t, RaceAISpectre, race)
	_, err = ParseRace("elf")
	require.True(t, errors.Is(err, ErrInvalidRace))

	career, err := ParseCareer("web3_monk")
	require.NoError(t, err)
	require.Equal(t, CareerWeb3Monk, career)

	phase, err := ParsePhase("last_day_of_sale")
	require.NoError(t, err)
	require.Equal(t, PhaseLastDayOfSale, phase)
}
