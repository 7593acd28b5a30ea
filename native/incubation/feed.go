package incubation

import (
	"errors"

	"shellchain/core/types"
	"shellchain/native/common"
)

// StartIncubation gives an owned origin of shell its own hatch time.
func (e *Engine) StartIncubation(origin types.Origin, collection, nft uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	sender, err := types.EnsureSigned(origin)
	if err != nil {
		return err
	}
	enabled, err := e.CanStartIncubation()
	if err != nil {
		return err
	}
	if !enabled {
		return ErrStartIncubationNotAvailable
	}
	if err := e.requireOriginCollection(collection); err != nil {
		return err
	}
	owner, ok, err := e.registry.OwnerOf(collection, nft)
	if err != nil {
		return err
	}
	if !ok || owner != sender {
		return ErrNotOwner
	}
	if _, started, err := e.StoredHatchTime(collection, nft); err != nil {
		return err
	} else if started {
		return ErrHatchingInProgress
	}
	info, ok, err := e.world.OriginOfShell(collection, nft)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOriginOfShellTypeNotDetected
	}
	start := e.now()
	hatch := start + e.params.IncubationDurationSec
	if err := e.state.KVPut(hatchTimeKey(collection, nft), hatch); err != nil {
		return err
	}
	info.StartIncubation = start
	info.IncubationDuration = e.params.IncubationDurationSec
	if err := e.world.PutOriginOfShell(collection, nft, info); err != nil {
		return err
	}
	e.emit(StartedEvent(collection, nft, sender, start, hatch))
	return nil
}

// FeedOriginOfShell spends one of the sender's feedings for the current era
// on a token that has not reached its hatch time.
func (e *Engine) FeedOriginOfShell(origin types.Origin, collection, nft uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	sender, err := types.EnsureSigned(origin)
	if err != nil {
		return err
	}
	if err := e.requireOriginCollection(collection); err != nil {
		return err
	}
	if _, exists, err := e.registry.OwnerOf(collection, nft); err != nil {
		return err
	} else if !exists {
		return ErrCannotSendFoodToOriginOfShell
	}
	ready, err := e.CanHatch(collection, nft)
	if err != nil {
		return err
	}
	if ready {
		return ErrCannotSendFoodToOriginOfShell
	}
	owned, err := e.registry.CountOwned(collection, sender)
	if err != nil {
		return err
	}
	if owned == 0 {
		return ErrCannotSendFoodToOriginOfShell
	}
	era, err := e.world.Era()
	if err != nil {
		return err
	}

	food, _, err := e.FoodInfo(sender)
	if err != nil {
		return err
	}
	if era > food.Era {
		food = FoodInfo{Era: era}
	}
	budget := common.EraUsage{Era: food.Era, Used: uint32(len(food.Fed))}
	if _, err := common.CheckEraQuota(common.EraQuota{Max: e.params.FoodPerEra}, era, budget, 1); err != nil {
		return quotaError(err, ErrNoFoodAvailable)
	}
	token := TokenKey{Collection: collection, Nft: nft}
	if e.params.MaxFoodFeedSelf > 0 && food.fedCount(token) >= e.params.MaxFoodFeedSelf {
		return ErrAlreadySentFoodTwice
	}
	stats, err := e.FoodStats(collection, nft, era)
	if err != nil {
		return err
	}
	usage, err := common.CheckEraQuota(common.EraQuota{Max: e.params.MaxFoodFedPerEra}, era, common.EraUsage{Era: era, Used: stats}, 1)
	if err != nil {
		return quotaError(err, ErrMaxFoodFedLimitReached)
	}

	food.Fed = append(food.Fed, token)
	if err := e.state.KVPut(foodKey(sender), food); err != nil {
		return err
	}
	if err := e.state.KVPut(foodStatsKey(collection, nft, era), usage.Used); err != nil {
		return err
	}
	e.emit(FoodReceivedEvent(collection, nft, sender, era))
	return nil
}

func quotaError(err, exceeded error) error {
	if errors.Is(err, common.ErrQuotaExceeded) || errors.Is(err, common.ErrQuotaCounterOverflow) {
		return exceeded
	}
	return err
}
