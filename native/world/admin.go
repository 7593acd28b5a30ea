package world

import "shellchain/core/types"

// SetOverlord replaces the Overlord. Only root may call it.
func (e *Engine) SetOverlord(origin types.Origin, account [20]byte) error {
	if err := types.EnsureRoot(origin); err != nil {
		return err
	}
	if e == nil || e.state == nil {
		return errNilState
	}
	old, had, err := e.Overlord()
	if err != nil {
		return err
	}
	if err := e.state.KVPut(overlordKey, account); err != nil {
		return err
	}
	var prev *[20]byte
	if had {
		prev = &old
	}
	e.emit(OverlordChangedEvent(prev, account))
	return nil
}

// SetPhase toggles a sale phase flag.
func (e *Engine) SetPhase(origin types.Origin, phase Phase, status bool) error {
	if _, err := e.EnsureOverlord(origin); err != nil {
		return err
	}
	if !phase.Valid() {
		return ErrInvalidStatusType
	}
	if err := e.state.KVPut(phaseKey(phase), status); err != nil {
		return err
	}
	e.emit(PhaseChangedEvent(phase, status))
	return nil
}

// SetSpiritCollectionID records the spirit collection once.
func (e *Engine) SetSpiritCollectionID(origin types.Origin, collection uint32) error {
	if _, err := e.EnsureOverlord(origin); err != nil {
		return err
	}
	if _, ok, err := e.SpiritCollectionID(); err != nil {
		return err
	} else if ok {
		return ErrSpiritCollectionIdAlreadySet
	}
	if err := e.state.KVPut(spiritCollKey, collection); err != nil {
		return err
	}
	e.emit(SpiritCollectionSetEvent(collection))
	return nil
}

// SetOriginOfShellCollectionID records the origin collection once.
func (e *Engine) SetOriginOfShellCollectionID(origin types.Origin, collection uint32) error {
	if _, err := e.EnsureOverlord(origin); err != nil {
		return err
	}
	if _, ok, err := e.OriginOfShellCollectionID(); err != nil {
		return err
	} else if ok {
		return ErrOriginOfShellCollectionIdAlreadySet
	}
	if err := e.state.KVPut(originCollKey, collection); err != nil {
		return err
	}
	e.emit(OriginOfShellCollectionSetEvent(collection))
	return nil
}
