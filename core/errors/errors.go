package errors

import stderrors "errors"

// Categories group every engine error. Each engine sentinel wraps exactly one
// of them so callers can branch on the class of failure with errors.Is.
var (
	ErrPhaseClosed   = stderrors.New("phase closed")
	ErrIneligible    = stderrors.New("caller ineligible")
	ErrScarcity      = stderrors.New("capacity exhausted")
	ErrConfiguration = stderrors.New("configuration")
	ErrIntegrity     = stderrors.New("integrity violation")
	ErrUnauthorized  = stderrors.New("unauthorized")
)

var categories = []error{
	ErrPhaseClosed,
	ErrIneligible,
	ErrScarcity,
	ErrConfiguration,
	ErrIntegrity,
	ErrUnauthorized,
}

// CategoryError is a sentinel carrying its category.
type CategoryError struct {
	category error
	msg      string
}

func (e *CategoryError) Error() string { return e.msg }
func (e *CategoryError) Unwrap() error { return e.category }

// New returns a sentinel error in the given category.
func New(category error, msg string) error {
	return &CategoryError{category: category, msg: msg}
}

// Category returns the category err belongs to, or nil for errors outside the
// taxonomy such as storage failures.
func Category(err error) error {
	for _, c := range categories {
		if stderrors.Is(err, c) {
			return c
		}
	}
	return nil
}

// Label returns a short metric-friendly name for the category of err.
func Label(err error) string {
	switch Category(err) {
	case ErrPhaseClosed:
		return "phase_closed"
	case ErrIneligible:
		return "ineligible"
	case ErrScarcity:
		return "scarcity"
	case ErrConfiguration:
		return "configuration"
	case ErrIntegrity:
		return "integrity"
	case ErrUnauthorized:
		return "unauthorized"
	}
	if err == nil {
		return "ok"
	}
	return "internal"
}
