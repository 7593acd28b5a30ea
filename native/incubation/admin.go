package incubation

import "shellchain/core/types"

// HatchTimeReduction shortens the hatch time of one token by Reduction seconds.
type HatchTimeReduction struct {
	Collection uint32
	Nft        uint32
	Reduction  uint64
}

// SetCanStartIncubationStatus toggles incubation and fixes the official hatch
// time relative to now.
func (e *Engine) SetCanStartIncubationStatus(origin types.Origin, status bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, err := e.world.EnsureOverlord(origin); err != nil {
		return err
	}
	start := e.now()
	official := start + e.params.IncubationDurationSec
	if official < start {
		official = ^uint64(0)
	}
	if err := e.state.KVPut(officialHatchTimeKey, official); err != nil {
		return err
	}
	if err := e.state.KVPut(enabledKey, status); err != nil {
		return err
	}
	e.emit(StatusChangedEvent(status, start, official))
	return nil
}

// SetShellCollectionID records the awakened shell collection once.
func (e *Engine) SetShellCollectionID(origin types.Origin, collection uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, err := e.world.EnsureOverlord(origin); err != nil {
		return err
	}
	if _, ok, err := e.ShellCollectionID(); err != nil {
		return err
	} else if ok {
		return ErrShellCollectionIdAlreadySet
	}
	if err := e.state.KVPut(shellCollectionKey, collection); err != nil {
		return err
	}
	e.emit(ShellCollectionSetEvent(collection))
	return nil
}

// UpdateIncubationTime applies a batch of hatch time reductions. Reductions
// saturate at zero.
func (e *Engine) UpdateIncubationTime(origin types.Origin, reductions []HatchTimeReduction) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, err := e.world.EnsureOverlord(origin); err != nil {
		return err
	}
	for _, r := range reductions {
		if err := e.requireOriginCollection(r.Collection); err != nil {
			return err
		}
		old, err := e.HatchTime(r.Collection, r.Nft)
		if err != nil {
			return err
		}
		next := uint64(0)
		if old > r.Reduction {
			next = old - r.Reduction
		}
		if err := e.state.KVPut(hatchTimeKey(r.Collection, r.Nft), next); err != nil {
			return err
		}
		e.emit(HatchTimeUpdatedEvent(r.Collection, r.Nft, old, next))
	}
	return nil
}
