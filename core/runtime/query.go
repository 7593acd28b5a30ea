package runtime

import (
	"github.com/holiman/uint256"

	"shellchain/native/incubation"
	"shellchain/native/world"
)

// WorldInfo is a point-in-time view of the sale configuration.
type WorldInfo struct {
	Overlord          *[20]byte
	ZeroDay           *uint64
	Era               uint64
	Phases            map[world.Phase]bool
	SpiritCollection  *uint32
	OriginCollection  *uint32
	ShellCollection   *uint32
	PreorderIndex     uint32
	IncubationEnabled bool
	OfficialHatchTime uint64
}

// InventoryEntry is the sale counters of one (tier, race) pair.
type InventoryEntry struct {
	Tier world.Tier
	Race world.Race
	world.SaleInfo
}

// IncubationStatus describes the incubation progress of one token.
type IncubationStatus struct {
	Collection uint32
	Nft        uint32
	Owner      [20]byte
	Exists     bool
	Origin     *world.OriginOfShell
	HatchTime  uint64
	CanHatch   bool
	FedThisEra uint32
}

func optional[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

// World returns the current configuration snapshot.
func (r *Runtime) World() (WorldInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var info WorldInfo
	overlord, ok, err := r.world.Overlord()
	if err != nil {
		return WorldInfo{}, err
	}
	info.Overlord = optional(overlord, ok)
	zero, ok, err := r.world.ZeroDay()
	if err != nil {
		return WorldInfo{}, err
	}
	info.ZeroDay = optional(zero, ok)
	if info.Era, err = r.world.Era(); err != nil {
		return WorldInfo{}, err
	}
	info.Phases = make(map[world.Phase]bool, len(world.Phases))
	for _, p := range world.Phases {
		open, err := r.world.PhaseOpen(p)
		if err != nil {
			return WorldInfo{}, err
		}
		info.Phases[p] = open
	}
	id, ok, err := r.world.SpiritCollectionID()
	if err != nil {
		return WorldInfo{}, err
	}
	info.SpiritCollection = optional(id, ok)
	id, ok, err = r.world.OriginOfShellCollectionID()
	if err != nil {
		return WorldInfo{}, err
	}
	info.OriginCollection = optional(id, ok)
	id, ok, err = r.incubation.ShellCollectionID()
	if err != nil {
		return WorldInfo{}, err
	}
	info.ShellCollection = optional(id, ok)
	if info.PreorderIndex, err = r.world.PreorderIndex(); err != nil {
		return WorldInfo{}, err
	}
	if info.IncubationEnabled, err = r.incubation.CanStartIncubation(); err != nil {
		return WorldInfo{}, err
	}
	if info.OfficialHatchTime, err = r.incubation.OfficialHatchTime(); err != nil {
		return WorldInfo{}, err
	}
	return info, nil
}

// Inventory lists the counters of every (tier, race) pair.
func (r *Runtime) Inventory() ([]InventoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]InventoryEntry, 0, len(world.Tiers)*len(world.Races))
	for _, tier := range world.Tiers {
		for _, race := range world.Races {
			info, ok, err := r.world.Inventory(tier, race)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			out = append(out, InventoryEntry{Tier: tier, Race: race, SaleInfo: info})
		}
	}
	return out, nil
}

// Preorder returns a pending preorder.
func (r *Runtime) Preorder(id uint32) (world.Preorder, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Preorder(id)
}

// PendingPreorders lists every preorder awaiting a result.
func (r *Runtime) PendingPreorders() ([]world.Preorder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.PendingPreorders()
}

// PendingPreordersFrom pages through pending preorders starting at id start.
func (r *Runtime) PendingPreordersFrom(start uint32, limit int) ([]world.Preorder, uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.PendingPreordersFrom(start, limit)
}

// PendingPreorderCount reports how many preorders await a result.
func (r *Runtime) PendingPreorderCount() (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.PendingPreorderCount()
}

// PreorderResults lists the resolved, unclaimed preorders of account.
func (r *Runtime) PreorderResults(account [20]byte) ([]world.Preorder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.PreorderResults(account)
}

// Balance returns the free and reserved balance of account.
func (r *Runtime) Balance(account [20]byte) (free, reserved *uint256.Int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if free, err = r.ledger.FreeBalance(account); err != nil {
		return nil, nil, err
	}
	if reserved, err = r.ledger.ReservedBalance(account); err != nil {
		return nil, nil, err
	}
	return free, reserved, nil
}

// Owned reports how many tokens of collection account holds.
func (r *Runtime) Owned(collection uint32, account [20]byte) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nfts.CountOwned(collection, account)
}

// Incubation reports the incubation progress of a token.
func (r *Runtime) Incubation(collection, nft uint32) (IncubationStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := IncubationStatus{Collection: collection, Nft: nft}
	owner, exists, err := r.nfts.OwnerOf(collection, nft)
	if err != nil {
		return IncubationStatus{}, err
	}
	status.Owner, status.Exists = owner, exists
	origin, ok, err := r.world.OriginOfShell(collection, nft)
	if err != nil {
		return IncubationStatus{}, err
	}
	status.Origin = optional(origin, ok)
	if status.HatchTime, err = r.incubation.HatchTime(collection, nft); err != nil {
		return IncubationStatus{}, err
	}
	if status.CanHatch, err = r.incubation.CanHatch(collection, nft); err != nil {
		return IncubationStatus{}, err
	}
	era, err := r.world.Era()
	if err != nil {
		return IncubationStatus{}, err
	}
	if status.FedThisEra, err = r.incubation.FoodStats(collection, nft, era); err != nil {
		return IncubationStatus{}, err
	}
	return status, nil
}

// FoodInfo returns the feeding log of account.
func (r *Runtime) FoodInfo(account [20]byte) (incubation.FoodInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, _, err := r.incubation.FoodInfo(account)
	return info, err
}
