package world

import "shellchain/core/types"

// InitializeWorldClock records the current time as zero day.
func (e *Engine) InitializeWorldClock(origin types.Origin) error {
	if _, err := e.EnsureOverlord(origin); err != nil {
		return err
	}
	if _, ok, err := e.ZeroDay(); err != nil {
		return err
	} else if ok {
		return ErrWorldClockAlreadySet
	}
	zeroDay := e.now()
	if err := e.state.KVPut(zeroDayKey, zeroDay); err != nil {
		return err
	}
	e.emit(WorldClockStartedEvent(zeroDay))
	return nil
}

// EraAt returns the era implied by now for the given zero day. Times at or
// before zero day map to era zero.
func EraAt(zeroDay, now, secondsPerEra uint64) uint64 {
	if secondsPerEra == 0 || now <= zeroDay {
		return 0
	}
	return (now - zeroDay) / secondsPerEra
}

// OnFinalize advances the era when one or more boundaries have been crossed
// since the last tick. It emits at most one notification and is a no-op when
// the era is unchanged. The returned boolean reports whether the era moved.
func (e *Engine) OnFinalize() (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	zeroDay, ok, err := e.ZeroDay()
	if err != nil || !ok {
		return false, err
	}
	now := e.now()
	if now <= zeroDay {
		return false, nil
	}
	target := EraAt(zeroDay, now, e.params.SecondsPerEra)
	current, err := e.Era()
	if err != nil {
		return false, err
	}
	if target <= current {
		return false, nil
	}
	if err := e.state.KVPut(eraKey, target); err != nil {
		return false, err
	}
	e.emit(NewEraEvent(now, target))
	return true, nil
}
