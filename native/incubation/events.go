package incubation

import (
	"strconv"

	"shellchain/core/events"
	"shellchain/core/types"
	"shellchain/crypto"
)

const (
	EventTypeStatusChanged      = "incubation.status_changed"
	EventTypeShellCollectionSet = "incubation.collection.shell_set"
	EventTypeStarted            = "incubation.started"
	EventTypeFoodReceived       = "incubation.food_received"
	EventTypeHatchTimeUpdated   = "incubation.hatch_time_updated"
	EventTypeShellAwakened      = "incubation.shell_awakened"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

func wrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func StatusChangedEvent(status bool, startTime, officialHatchTime uint64) *types.Event {
	return &types.Event{
		Type: EventTypeStatusChanged,
		Attributes: map[string]string{
			"status":            strconv.FormatBool(status),
			"startTime":         u64(startTime),
			"officialHatchTime": u64(officialHatchTime),
		},
	}
}

func ShellCollectionSetEvent(collection uint32) *types.Event {
	return &types.Event{
		Type:       EventTypeShellCollectionSet,
		Attributes: map[string]string{"collectionId": u32(collection)},
	}
}

func StartedEvent(collection, nft uint32, owner [20]byte, startTime, hatchTime uint64) *types.Event {
	return &types.Event{
		Type: EventTypeStarted,
		Attributes: map[string]string{
			"collectionId": u32(collection),
			"nftId":        u32(nft),
			"owner":        crypto.FormatAccount(owner),
			"startTime":    u64(startTime),
			"hatchTime":    u64(hatchTime),
		},
	}
}

func FoodReceivedEvent(collection, nft uint32, sender [20]byte, era uint64) *types.Event {
	return &types.Event{
		Type: EventTypeFoodReceived,
		Attributes: map[string]string{
			"collectionId": u32(collection),
			"nftId":        u32(nft),
			"sender":       crypto.FormatAccount(sender),
			"era":          u64(era),
		},
	}
}

func HatchTimeUpdatedEvent(collection, nft uint32, old, next uint64) *types.Event {
	return &types.Event{
		Type: EventTypeHatchTimeUpdated,
		Attributes: map[string]string{
			"collectionId": u32(collection),
			"nftId":        u32(nft),
			"oldHatchTime": u64(old),
			"newHatchTime": u64(next),
		},
	}
}

func ShellAwakenedEvent(collection, nft uint32, owner [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeShellAwakened,
		Attributes: map[string]string{
			"collectionId": u32(collection),
			"nftId":        u32(nft),
			"owner":        crypto.FormatAccount(owner),
		},
	}
}
