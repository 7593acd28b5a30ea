package incubation

import (
	"fmt"

	"shellchain/core/types"
	"shellchain/native/world"
)

type shellTraits struct {
	tier   world.Tier
	race   world.Race
	career world.Career
}

// readTraits loads the tier, race and career attributes of an origin of
// shell before it is burned.
func (e *Engine) readTraits(collection, nft uint32) (shellTraits, error) {
	lookups := []struct {
		key     string
		missing error
	}{
		{world.AttributeRace, ErrRaceNotDetected},
		{world.AttributeCareer, ErrCareerNotDetected},
		{world.AttributeTier, ErrOriginOfShellTypeNotDetected},
	}
	var values [3]uint8
	for i, l := range lookups {
		raw, ok, err := e.registry.Attribute(collection, nft, l.key)
		if err != nil {
			return shellTraits{}, err
		}
		if !ok || len(raw) != 1 {
			return shellTraits{}, l.missing
		}
		values[i] = raw[0]
	}
	traits := shellTraits{race: world.Race(values[0]), career: world.Career(values[1]), tier: world.Tier(values[2])}
	switch {
	case !traits.race.Valid():
		return shellTraits{}, ErrRaceNotDetected
	case !traits.career.Valid():
		return shellTraits{}, ErrCareerNotDetected
	case !traits.tier.Valid():
		return shellTraits{}, ErrOriginOfShellTypeNotDetected
	}
	return traits, nil
}

func (e *Engine) writeTraits(collection, nft uint32, t shellTraits) error {
	attrs := []struct {
		key   string
		value uint8
	}{
		{world.AttributeRace, uint8(t.race)},
		{world.AttributeCareer, uint8(t.career)},
		{world.AttributeTier, uint8(t.tier)},
	}
	for _, attr := range attrs {
		if err := e.registry.SetAttribute(collection, nft, attr.key, []byte{attr.value}); err != nil {
			return fmt.Errorf("%w: %v", world.ErrUnableToAddAttributes, err)
		}
	}
	return nil
}

// HatchOriginOfShell burns an origin of shell past its hatch time and mints
// the awakened shell to owner. The steps are not reversed on failure; the
// caller must discard the staged state when an error is returned.
func (e *Engine) HatchOriginOfShell(origin types.Origin, owner [20]byte, collection, nft uint32, resourceSrc string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, err := e.world.EnsureOverlord(origin); err != nil {
		return err
	}
	if err := e.requireOriginCollection(collection); err != nil {
		return err
	}
	ready, err := e.CanHatch(collection, nft)
	if err != nil {
		return err
	}
	if !ready {
		return ErrCannotHatchOriginOfShell
	}
	shells, ok, err := e.ShellCollectionID()
	if err != nil {
		return err
	}
	if !ok {
		return ErrShellCollectionIdNotSet
	}
	current, exists, err := e.registry.OwnerOf(collection, nft)
	if err != nil {
		return err
	}
	if !exists || current != owner {
		return ErrNotOwner
	}
	traits, err := e.readTraits(collection, nft)
	if err != nil {
		return err
	}

	if err := e.registry.Burn(collection, nft); err != nil {
		return fmt.Errorf("incubation: burn origin of shell: %w", err)
	}
	shell, err := e.registry.Mint(shells, owner, "")
	if err != nil {
		return fmt.Errorf("incubation: mint shell: %w", err)
	}
	if err := e.writeTraits(shells, shell, traits); err != nil {
		return err
	}
	resource, err := e.registry.AddResource(shells, shell, resourceSrc)
	if err != nil {
		return fmt.Errorf("incubation: add resource: %w", err)
	}
	if err := e.registry.AcceptResource(shells, shell, resource); err != nil {
		return fmt.Errorf("incubation: accept resource: %w", err)
	}
	if err := e.world.DeleteOriginOfShell(collection, nft); err != nil {
		return err
	}
	if err := e.state.KVDelete(hatchTimeKey(collection, nft)); err != nil {
		return err
	}
	e.emit(ShellAwakenedEvent(shells, shell, owner))
	return nil
}
