package bank

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	coreerrors "shellchain/core/errors"
)

var (
	ErrInsufficientBalance = coreerrors.New(coreerrors.ErrIneligible, "bank: insufficient balance")
	ErrWouldKillAccount    = coreerrors.New(coreerrors.ErrIneligible, "bank: transfer would drop sender below existential deposit")
)

// Store is the subset of the state manager the ledger persists through.
type Store interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

type balanceRecord struct {
	Free     *big.Int
	Reserved *big.Int
}

// Ledger tracks free and reserved balances per account.
type Ledger struct {
	store       Store
	existential *uint256.Int
}

// NewLedger creates a ledger persisting through store. Keep-alive transfers
// never leave the sender with a free balance below existential.
func NewLedger(store Store, existential *uint256.Int) *Ledger {
	if existential == nil {
		existential = new(uint256.Int)
	}
	return &Ledger{store: store, existential: existential.Clone()}
}

func balanceKey(account [20]byte) []byte {
	return append([]byte("bank/balance/"), account[:]...)
}

func (l *Ledger) load(account [20]byte) (*uint256.Int, *uint256.Int, error) {
	var rec balanceRecord
	ok, err := l.store.KVGet(balanceKey(account), &rec)
	if err != nil {
		return nil, nil, fmt.Errorf("bank: load balance: %w", err)
	}
	free, reserved := new(uint256.Int), new(uint256.Int)
	if !ok {
		return free, reserved, nil
	}
	if rec.Free != nil {
		free = uint256.MustFromBig(rec.Free)
	}
	if rec.Reserved != nil {
		reserved = uint256.MustFromBig(rec.Reserved)
	}
	return free, reserved, nil
}

func (l *Ledger) save(account [20]byte, free, reserved *uint256.Int) error {
	return l.store.KVPut(balanceKey(account), balanceRecord{Free: free.ToBig(), Reserved: reserved.ToBig()})
}

func amountOrZero(amount *uint256.Int) *uint256.Int {
	if amount == nil {
		return new(uint256.Int)
	}
	return amount
}

// Credit adds amount to the free balance of account.
func (l *Ledger) Credit(account [20]byte, amount *uint256.Int) error {
	free, reserved, err := l.load(account)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(free, amountOrZero(amount))
	if overflow {
		return fmt.Errorf("bank: balance overflow")
	}
	return l.save(account, sum, reserved)
}

// FreeBalance returns the spendable balance of account.
func (l *Ledger) FreeBalance(account [20]byte) (*uint256.Int, error) {
	free, _, err := l.load(account)
	return free, err
}

// ReservedBalance returns the balance of account held in reserve.
func (l *Ledger) ReservedBalance(account [20]byte) (*uint256.Int, error) {
	_, reserved, err := l.load(account)
	return reserved, err
}

// CanReserve reports whether amount could be moved from free to reserved.
func (l *Ledger) CanReserve(account [20]byte, amount *uint256.Int) (bool, error) {
	free, _, err := l.load(account)
	if err != nil {
		return false, err
	}
	return !free.Lt(amountOrZero(amount)), nil
}

// Reserve moves amount from the free balance into reserve.
func (l *Ledger) Reserve(account [20]byte, amount *uint256.Int) error {
	amount = amountOrZero(amount)
	free, reserved, err := l.load(account)
	if err != nil {
		return err
	}
	if free.Lt(amount) {
		return ErrInsufficientBalance
	}
	free.Sub(free, amount)
	reserved.Add(reserved, amount)
	return l.save(account, free, reserved)
}

// Unreserve moves up to amount back into the free balance and returns the
// portion that could not be released because the reserve was too small.
func (l *Ledger) Unreserve(account [20]byte, amount *uint256.Int) (*uint256.Int, error) {
	amount = amountOrZero(amount)
	free, reserved, err := l.load(account)
	if err != nil {
		return nil, err
	}
	moved := amount.Clone()
	if reserved.Lt(moved) {
		moved = reserved.Clone()
	}
	reserved.Sub(reserved, moved)
	free.Add(free, moved)
	if err := l.save(account, free, reserved); err != nil {
		return nil, err
	}
	return new(uint256.Int).Sub(amount, moved), nil
}

// Transfer moves amount of free balance from one account to another. With
// keepAlive the sender must retain at least the existential deposit.
func (l *Ledger) Transfer(from, to [20]byte, amount *uint256.Int, keepAlive bool) error {
	amount = amountOrZero(amount)
	fromFree, fromReserved, err := l.load(from)
	if err != nil {
		return err
	}
	if fromFree.Lt(amount) {
		return ErrInsufficientBalance
	}
	remaining := new(uint256.Int).Sub(fromFree, amount)
	if keepAlive && remaining.Lt(l.existential) {
		return ErrWouldKillAccount
	}
	if from == to {
		return nil
	}
	if err := l.save(from, remaining, fromReserved); err != nil {
		return err
	}
	return l.Credit(to, amount)
}
