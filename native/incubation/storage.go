package incubation

import "encoding/binary"

var (
	enabledKey           = []byte("incubation/enabled")
	officialHatchTimeKey = []byte("incubation/officialHatchTime")
	shellCollectionKey   = []byte("incubation/collection/shell")

	hatchTimePrefix = []byte("incubation/hatchTime/")
	foodPrefix      = []byte("incubation/food/")
	foodStatsPrefix = []byte("incubation/foodStats/")
)

// TokenKey identifies an origin of shell token.
type TokenKey struct {
	Collection uint32
	Nft        uint32
}

// FoodInfo records the tokens an account fed during Era.
type FoodInfo struct {
	Era uint64
	Fed []TokenKey
}

// fedCount returns how often token appears in the feeding log.
func (f FoodInfo) fedCount(token TokenKey) uint32 {
	var n uint32
	for _, fed := range f.Fed {
		if fed == token {
			n++
		}
	}
	return n
}

func tokenSuffix(collection, nft uint32) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[:4], collection)
	binary.BigEndian.PutUint32(buf[4:], nft)
	return buf
}

func hatchTimeKey(collection, nft uint32) []byte {
	return append(append([]byte(nil), hatchTimePrefix...), tokenSuffix(collection, nft)...)
}

func foodKey(account [20]byte) []byte {
	return append(append([]byte(nil), foodPrefix...), account[:]...)
}

func foodStatsKey(collection, nft uint32, era uint64) []byte {
	key := append(append([]byte(nil), foodStatsPrefix...), tokenSuffix(collection, nft)...)
	var eraBuf [8]byte
	binary.BigEndian.PutUint64(eraBuf[:], era)
	return append(key, eraBuf[:]...)
}

// CanStartIncubation reports whether accounts may start incubating.
func (e *Engine) CanStartIncubation() (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	var enabled bool
	if _, err := e.state.KVGet(enabledKey, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// OfficialHatchTime returns the default hatch time of every token without
// an individual one.
func (e *Engine) OfficialHatchTime() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	var ts uint64
	if _, err := e.state.KVGet(officialHatchTimeKey, &ts); err != nil {
		return 0, err
	}
	return ts, nil
}

// ShellCollectionID returns the awakened shell collection if configured.
func (e *Engine) ShellCollectionID() (uint32, bool, error) {
	if e == nil || e.state == nil {
		return 0, false, errNilState
	}
	var id uint32
	ok, err := e.state.KVGet(shellCollectionKey, &id)
	return id, ok, err
}

// StoredHatchTime returns the individual hatch time of a token, if any.
func (e *Engine) StoredHatchTime(collection, nft uint32) (uint64, bool, error) {
	if e == nil || e.state == nil {
		return 0, false, errNilState
	}
	var ts uint64
	ok, err := e.state.KVGet(hatchTimeKey(collection, nft), &ts)
	return ts, ok, err
}

// HatchTime returns the effective hatch time of a token: its own when set,
// the official hatch time otherwise.
func (e *Engine) HatchTime(collection, nft uint32) (uint64, error) {
	ts, ok, err := e.StoredHatchTime(collection, nft)
	if err != nil {
		return 0, err
	}
	if ok {
		return ts, nil
	}
	return e.OfficialHatchTime()
}

// CanHatch reports whether the token is past its hatch time.
func (e *Engine) CanHatch(collection, nft uint32) (bool, error) {
	ts, err := e.HatchTime(collection, nft)
	if err != nil {
		return false, err
	}
	return e.now() > ts, nil
}

// FoodInfo returns the feeding log of account.
func (e *Engine) FoodInfo(account [20]byte) (FoodInfo, bool, error) {
	if e == nil || e.state == nil {
		return FoodInfo{}, false, errNilState
	}
	var info FoodInfo
	ok, err := e.state.KVGet(foodKey(account), &info)
	return info, ok, err
}

// FoodStats returns how often the token was fed during era.
func (e *Engine) FoodStats(collection, nft uint32, era uint64) (uint32, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	var count uint32
	if _, err := e.state.KVGet(foodStatsKey(collection, nft, era), &count); err != nil {
		return 0, err
	}
	return count, nil
}
