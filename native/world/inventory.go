package world

import (
	"math"

	"shellchain/core/types"
)

func (e *Engine) loadInventory(t Tier, r Race) (SaleInfo, error) {
	info, ok, err := e.Inventory(t, r)
	if err != nil {
		return SaleInfo{}, err
	}
	if !ok {
		return SaleInfo{}, ErrOriginOfShellInventoryCorrupted
	}
	return info, nil
}

// hasRaceTypeLeft checks that (tier, race) still has units for sale.
func (e *Engine) hasRaceTypeLeft(t Tier, r Race) error {
	info, err := e.loadInventory(t, r)
	if err != nil {
		return err
	}
	if info.RaceForSale == 0 {
		return ErrRaceMintMaxReached
	}
	return nil
}

func saturatingAdd32(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

// recordSale decrements the for-sale counter and increments the minted
// counter of (tier, race).
func (e *Engine) recordSale(t Tier, r Race) error {
	info, err := e.loadInventory(t, r)
	if err != nil {
		return err
	}
	if info.RaceForSale == 0 {
		return ErrRaceMintMaxReached
	}
	info.RaceForSale--
	info.RaceCount = saturatingAdd32(info.RaceCount, 1)
	return e.putInventory(t, r, info)
}

// recordMint increments the minted counter of (tier, race) without touching
// the for-sale pool.
func (e *Engine) recordMint(t Tier, r Race) error {
	info, err := e.loadInventory(t, r)
	if err != nil {
		return err
	}
	info.RaceCount = saturatingAdd32(info.RaceCount, 1)
	return e.putInventory(t, r, info)
}

func (e *Engine) incrementCareer(c Career) error {
	count, err := e.CareerCount(c)
	if err != nil {
		return err
	}
	return e.state.KVPut(careerCountKey(c), saturatingAdd32(count, 1))
}

// UpdateInventoryCounts tops up the for-sale and giveaway counters of every
// race of tier. Only the Hero tier can be topped up.
func (e *Engine) UpdateInventoryCounts(origin types.Origin, tier Tier, forSale, giveaway uint32) error {
	if _, err := e.EnsureOverlord(origin); err != nil {
		return err
	}
	if tier != TierHero {
		return ErrWrongOriginOfShellType
	}
	for _, race := range Races {
		info, err := e.loadInventory(tier, race)
		if err != nil {
			return err
		}
		info.RaceForSale = saturatingAdd32(info.RaceForSale, forSale)
		info.RaceGiveaway = saturatingAdd32(info.RaceGiveaway, giveaway)
		if err := e.putInventory(tier, race, info); err != nil {
			return err
		}
	}
	e.emit(InventoryUpdatedEvent(tier, forSale, giveaway))
	return nil
}
