package types

import coreerrors "shellchain/core/errors"

// ErrBadOrigin is returned when a call is dispatched with the wrong kind of
// origin, e.g. an account calling a root-only operation.
var ErrBadOrigin = coreerrors.New(coreerrors.ErrUnauthorized, "origin: bad origin")

// Origin identifies who dispatched a call: the root authority or a signed
// account. Authentication happens before dispatch.
type Origin struct {
	root   bool
	signed bool
	signer [20]byte
}

// RootOrigin returns the root authority origin.
func RootOrigin() Origin { return Origin{root: true} }

// SignedOrigin returns an origin for the supplied account.
func SignedOrigin(account [20]byte) Origin { return Origin{signed: true, signer: account} }

// IsRoot reports whether the origin is the root authority.
func (o Origin) IsRoot() bool { return o.root }

// Signer returns the signing account if the origin is signed.
func (o Origin) Signer() ([20]byte, bool) { return o.signer, o.signed }

// EnsureSigned returns the signing account or ErrBadOrigin.
func EnsureSigned(o Origin) ([20]byte, error) {
	if !o.signed {
		return [20]byte{}, ErrBadOrigin
	}
	return o.signer, nil
}

// EnsureRoot returns ErrBadOrigin unless o is the root origin.
func EnsureRoot(o Origin) error {
	if !o.root {
		return ErrBadOrigin
	}
	return nil
}
