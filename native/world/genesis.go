package world

// Allocation is the genesis inventory of one tier, applied to every race.
type Allocation struct {
	ForSale  uint32
	Giveaway uint32
	Reserved uint32
}

// Genesis seeds the world state before any call is dispatched.
type Genesis struct {
	Overlord  *[20]byte
	Inventory map[Tier]Allocation
}

// DefaultInventory returns the production per-race allocation of each tier.
func DefaultInventory() map[Tier]Allocation {
	return map[Tier]Allocation{
		TierLegendary: {ForSale: 1, Giveaway: 0, Reserved: 1},
		TierMagic:     {ForSale: 15, Giveaway: 0, Reserved: 5},
		TierHero:      {ForSale: 1250, Giveaway: 50, Reserved: 0},
	}
}

// InitGenesis seeds the inventory for every (tier, race) pair and the optional
// initial Overlord. It may run only once.
func (e *Engine) InitGenesis(g Genesis) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	var applied bool
	if _, err := e.state.KVGet(genesisKey, &applied); err != nil {
		return err
	}
	if applied {
		return ErrGenesisAlreadyApplied
	}
	inventory := g.Inventory
	if inventory == nil {
		inventory = DefaultInventory()
	}
	for _, tier := range Tiers {
		alloc, ok := inventory[tier]
		if !ok {
			return ErrOriginOfShellInventoryCorrupted
		}
		for _, race := range Races {
			info := SaleInfo{
				RaceForSale:  alloc.ForSale,
				RaceGiveaway: alloc.Giveaway,
				RaceReserved: alloc.Reserved,
			}
			if err := e.putInventory(tier, race, info); err != nil {
				return err
			}
		}
	}
	if g.Overlord != nil {
		if err := e.state.KVPut(overlordKey, *g.Overlord); err != nil {
			return err
		}
	}
	return e.state.KVPut(genesisKey, true)
}
