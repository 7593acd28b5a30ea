package crypto

import (
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of a recoverable secp256k1 signature.
const SignatureLength = crypto.SignatureLength

// Sign produces a recoverable signature over keccak256(msg).
func Sign(key *PrivateKey, msg []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.New("crypto: nil private key")
	}
	return crypto.Sign(crypto.Keccak256(msg), key.PrivateKey)
}

// Verifier checks signatures by recovering the signing account.
type Verifier struct{}

// Verify reports whether sig is a signature over msg by the given account.
// Both 0/1 and 27/28 recovery identifiers are accepted.
func (Verifier) Verify(sig, msg []byte, signer [20]byte) bool {
	if len(sig) != SignatureLength {
		return false
	}
	normalized := append([]byte(nil), sig...)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(crypto.Keccak256(msg), normalized)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == signer
}
