package world

import (
	"encoding/binary"
	"fmt"
	"math"
)

var (
	overlordKey         = []byte("world/overlord")
	zeroDayKey          = []byte("world/zeroDay")
	eraKey              = []byte("world/era")
	spiritCollKey       = []byte("world/collection/spirit")
	originCollKey       = []byte("world/collection/origin")
	preorderIndexKey    = []byte("world/preorderIndex")
	preorderHeadKey     = []byte("world/preorderHead")
	pendingCountKey     = []byte("world/pendingPreorders")
	genesisKey          = []byte("world/genesis")
	phasePrefix         = []byte("world/phase/")
	inventoryPrefix     = []byte("world/inventory/")
	careerCountPrefix   = []byte("world/careerCount/")
	preorderPrefix      = []byte("world/preorder/")
	preorderResultsPref = []byte("world/preorderResults/")
	originPrefix        = []byte("world/origin/")
)

func be32(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

func withSuffix(prefix []byte, parts ...[]byte) []byte {
	key := append([]byte(nil), prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

func phaseKey(p Phase) []byte { return withSuffix(phasePrefix, []byte(p.String())) }

func inventoryKey(t Tier, r Race) []byte {
	return withSuffix(inventoryPrefix, []byte{uint8(t), uint8(r)})
}

func careerCountKey(c Career) []byte { return withSuffix(careerCountPrefix, []byte{uint8(c)}) }

func preorderKey(id uint32) []byte { return withSuffix(preorderPrefix, be32(id)) }

func preorderResultsKey(account [20]byte) []byte {
	return withSuffix(preorderResultsPref, account[:])
}

func originKey(collection, nft uint32) []byte {
	return withSuffix(originPrefix, be32(collection), be32(nft))
}

func (e *Engine) getUint32(key []byte) (uint32, bool, error) {
	var v uint32
	ok, err := e.state.KVGet(key, &v)
	if err != nil {
		return 0, false, fmt.Errorf("world: load %s: %w", key, err)
	}
	return v, ok, nil
}

func (e *Engine) getUint64(key []byte) (uint64, bool, error) {
	var v uint64
	ok, err := e.state.KVGet(key, &v)
	if err != nil {
		return 0, false, fmt.Errorf("world: load %s: %w", key, err)
	}
	return v, ok, nil
}

// Overlord returns the configured Overlord account.
func (e *Engine) Overlord() ([20]byte, bool, error) {
	var account [20]byte
	ok, err := e.state.KVGet(overlordKey, &account)
	if err != nil {
		return [20]byte{}, false, fmt.Errorf("world: load overlord: %w", err)
	}
	return account, ok, nil
}

// ZeroDay returns the timestamp the world clock started at.
func (e *Engine) ZeroDay() (uint64, bool, error) { return e.getUint64(zeroDayKey) }

// Era returns the current era, zero before the first boundary.
func (e *Engine) Era() (uint64, error) {
	era, _, err := e.getUint64(eraKey)
	return era, err
}

// SpiritCollectionID returns the configured spirit collection.
func (e *Engine) SpiritCollectionID() (uint32, bool, error) { return e.getUint32(spiritCollKey) }

// OriginOfShellCollectionID returns the configured origin collection.
func (e *Engine) OriginOfShellCollectionID() (uint32, bool, error) {
	return e.getUint32(originCollKey)
}

// PhaseOpen reports whether the sale phase flag is set.
func (e *Engine) PhaseOpen(p Phase) (bool, error) {
	if !p.Valid() {
		return false, ErrInvalidStatusType
	}
	var open bool
	if _, err := e.state.KVGet(phaseKey(p), &open); err != nil {
		return false, fmt.Errorf("world: load phase: %w", err)
	}
	return open, nil
}

// GateOpen adapts PhaseOpen to named gates.
func (e *Engine) GateOpen(name string) (bool, error) {
	p, err := ParsePhase(name)
	if err != nil {
		return false, ErrInvalidStatusType
	}
	return e.PhaseOpen(p)
}

// Inventory returns the counters for (tier, race). The boolean is false if
// the pair was never seeded.
func (e *Engine) Inventory(t Tier, r Race) (SaleInfo, bool, error) {
	var info SaleInfo
	ok, err := e.state.KVGet(inventoryKey(t, r), &info)
	if err != nil {
		return SaleInfo{}, false, fmt.Errorf("world: load inventory: %w", err)
	}
	return info, ok, nil
}

func (e *Engine) putInventory(t Tier, r Race, info SaleInfo) error {
	return e.state.KVPut(inventoryKey(t, r), info)
}

// CareerCount returns how many Origin of Shells of career were minted.
func (e *Engine) CareerCount(c Career) (uint32, error) {
	count, _, err := e.getUint32(careerCountKey(c))
	return count, err
}

// PreorderIndex returns the id the next preorder will receive.
func (e *Engine) PreorderIndex() (uint32, error) {
	idx, _, err := e.getUint32(preorderIndexKey)
	return idx, err
}

// Preorder returns an unresolved preorder by id.
func (e *Engine) Preorder(id uint32) (Preorder, bool, error) {
	var p Preorder
	ok, err := e.state.KVGet(preorderKey(id), &p)
	if err != nil {
		return Preorder{}, false, fmt.Errorf("world: load preorder: %w", err)
	}
	return p, ok, nil
}

// PendingPreorderCount reports how many preorders await a result.
func (e *Engine) PendingPreorderCount() (uint32, error) {
	count, _, err := e.getUint32(pendingCountKey)
	return count, err
}

// PendingPreorders lists every preorder still awaiting resolution in id order.
func (e *Engine) PendingPreorders() ([]Preorder, error) {
	out, _, err := e.PendingPreordersFrom(0, math.MaxInt)
	return out, err
}

// PendingPreordersFrom returns up to limit pending preorders with an id of at
// least start, in id order, together with the id to resume from. The returned
// cursor equals PreorderIndex once nothing is left. Ids below the resolved
// head are never visited.
func (e *Engine) PendingPreordersFrom(start uint32, limit int) ([]Preorder, uint32, error) {
	idx, err := e.PreorderIndex()
	if err != nil {
		return nil, 0, err
	}
	head, _, err := e.getUint32(preorderHeadKey)
	if err != nil {
		return nil, 0, err
	}
	id := start
	if id < head {
		id = head
	}
	var out []Preorder
	for ; id < idx && len(out) < limit; id++ {
		p, ok, err := e.Preorder(id)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, id, nil
}

// advancePreorderHead moves the head past resolved ids so scans start at the
// oldest pending preorder.
func (e *Engine) advancePreorderHead() error {
	idx, err := e.PreorderIndex()
	if err != nil {
		return err
	}
	head, _, err := e.getUint32(preorderHeadKey)
	if err != nil {
		return err
	}
	start := head
	for head < idx {
		_, ok, err := e.Preorder(head)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		head++
	}
	if head == start {
		return nil
	}
	return e.state.KVPut(preorderHeadKey, head)
}

func (e *Engine) adjustPendingCount(delta int) error {
	count, err := e.PendingPreorderCount()
	if err != nil {
		return err
	}
	if delta < 0 && count == 0 {
		return fmt.Errorf("world: pending preorder count underflow")
	}
	return e.state.KVPut(pendingCountKey, uint32(int(count)+delta))
}

// PreorderResults lists the resolved preorders of account.
func (e *Engine) PreorderResults(account [20]byte) ([]Preorder, error) {
	var results []Preorder
	if _, err := e.state.KVGet(preorderResultsKey(account), &results); err != nil {
		return nil, fmt.Errorf("world: load preorder results: %w", err)
	}
	return results, nil
}

func (e *Engine) putPreorderResults(account [20]byte, results []Preorder) error {
	if len(results) == 0 {
		return e.state.KVDelete(preorderResultsKey(account))
	}
	return e.state.KVPut(preorderResultsKey(account), results)
}

// OriginOfShell returns the record of an Origin of Shell token.
func (e *Engine) OriginOfShell(collection, nft uint32) (OriginOfShell, bool, error) {
	var info OriginOfShell
	ok, err := e.state.KVGet(originKey(collection, nft), &info)
	if err != nil {
		return OriginOfShell{}, false, fmt.Errorf("world: load origin of shell: %w", err)
	}
	return info, ok, nil
}

// PutOriginOfShell stores the record of an Origin of Shell token.
func (e *Engine) PutOriginOfShell(collection, nft uint32, info OriginOfShell) error {
	return e.state.KVPut(originKey(collection, nft), info)
}

// DeleteOriginOfShell removes the record of a burned Origin of Shell.
func (e *Engine) DeleteOriginOfShell(collection, nft uint32) error {
	return e.state.KVDelete(originKey(collection, nft))
}
