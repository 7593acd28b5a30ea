package common

import "errors"

// Fallbacks used when no error specific to the gate was supplied.
var (
	ErrGateClosed = errors.New("gate closed")
	ErrGateOpen   = errors.New("gate open")
)

// GateView reports whether a named gate is currently open.
type GateView interface {
	GateOpen(name string) (bool, error)
}

// Guard returns closed unless at least one of the named gates is open. A nil
// closed error falls back to ErrGateClosed. Errors from the view are returned
// unchanged.
func Guard(v GateView, closed error, names ...string) error {
	if closed == nil {
		closed = ErrGateClosed
	}
	if v == nil {
		return closed
	}
	for _, name := range names {
		open, err := v.GateOpen(name)
		if err != nil {
			return err
		}
		if open {
			return nil
		}
	}
	return closed
}

// GuardClosed is the inverse of Guard: it returns open when the named gate is
// open and nil otherwise.
func GuardClosed(v GateView, open error, name string) error {
	if v == nil {
		return nil
	}
	isOpen, err := v.GateOpen(name)
	if err != nil {
		return err
	}
	if isOpen {
		if open == nil {
			return ErrGateOpen
		}
		return open
	}
	return nil
}
