package crypto

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// KeystoreParams selects the scrypt cost of an encrypted key file.
type KeystoreParams struct {
	ScryptN int
	ScryptP int
}

var (
	// StandardKeystore is used for operator keys at rest.
	StandardKeystore = KeystoreParams{ScryptN: keystore.StandardScryptN, ScryptP: keystore.StandardScryptP}
	// LightKeystore trades strength for speed and is meant for tests.
	LightKeystore = KeystoreParams{ScryptN: keystore.LightScryptN, ScryptP: keystore.LightScryptP}
)

// SaveToKeystore writes the private key to an Ethereum v3 keystore file at
// path. The parent directory is created with 0700 permissions and the file is
// replaced atomically.
func SaveToKeystore(path string, key *PrivateKey, passphrase string, params KeystoreParams) error {
	if key == nil {
		return errors.New("crypto: nil private key")
	}
	if path == "" {
		return errors.New("crypto: empty keystore path")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	encoded, err := keystore.EncryptKey(&keystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(key.PrivateKey.PublicKey),
		PrivateKey: key.PrivateKey,
	}, passphrase, params.ScryptN, params.ScryptP)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "keystore-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFromKeystore decrypts an Ethereum v3 keystore file using the supplied passphrase.
func LoadFromKeystore(path, passphrase string) (*PrivateKey, error) {
	if path == "" {
		return nil, errors.New("crypto: empty keystore path")
	}

	keyJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	decrypted, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{PrivateKey: decrypted.PrivateKey}, nil
}
