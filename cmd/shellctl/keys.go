package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"shellchain/cmd/internal/passphrase"
	"shellchain/crypto"
	"shellchain/native/world"
)

type keyFlags struct {
	keystore *string
	passEnv  *string
	empty    *bool
}

func addKeyFlags(fs *flag.FlagSet) keyFlags {
	return keyFlags{
		keystore: fs.String("keystore", "overlord.keystore", "Path to the Overlord keystore"),
		passEnv:  fs.String("pass-env", defaultPassEnv, "Environment variable containing the keystore passphrase"),
		empty:    fs.Bool("empty-passphrase", false, "Use an empty passphrase, as written for generated development configs"),
	}
}

func (k keyFlags) passphrase() (string, error) {
	if *k.empty {
		return "", nil
	}
	return passphrase.NewSource(*k.passEnv, "overlord keystore").Get()
}

func (k keyFlags) load() (*crypto.PrivateKey, error) {
	pass, err := k.passphrase()
	if err != nil {
		return nil, err
	}
	key, err := crypto.LoadFromKeystore(*k.keystore, pass)
	if err != nil {
		return nil, fmt.Errorf("open keystore %s: %w", *k.keystore, err)
	}
	return key, nil
}

func runKeygen(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	keys := addKeyFlags(fs)
	force := fs.Bool("force", false, "Overwrite an existing keystore file")
	light := fs.Bool("light", false, "Use cheap scrypt parameters (tests only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := os.Stat(*keys.keystore); err == nil && !*force {
		return fmt.Errorf("keystore %s already exists (use -force to overwrite)", *keys.keystore)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	pass, err := keys.passphrase()
	if err != nil {
		return err
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	params := crypto.StandardKeystore
	if *light {
		params = crypto.LightKeystore
	}
	if err := crypto.SaveToKeystore(*keys.keystore, key, pass, params); err != nil {
		return err
	}
	fmt.Fprintln(stdout, key.PubKey().Address().String())
	return nil
}

func runAddress(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("address", flag.ContinueOnError)
	keys := addKeyFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := keys.load()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, key.PubKey().Address().String())
	return nil
}

func runSignSpirit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sign-spirit", flag.ContinueOnError)
	keys := addKeyFlags(fs)
	account := fs.String("account", "", "Address the ticket is issued to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	acct, err := crypto.ParseAccount(strings.TrimSpace(*account))
	if err != nil {
		return fmt.Errorf("invalid -account: %w", err)
	}
	key, err := keys.load()
	if err != nil {
		return err
	}
	sig, err := signSpirit(key, acct)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, sig)
	return nil
}

func runSignWhitelist(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sign-whitelist", flag.ContinueOnError)
	keys := addKeyFlags(fs)
	account := fs.String("account", "", "Address the ticket is issued to")
	metadata := fs.String("metadata", "", "Metadata the buyer must submit with the purchase")
	if err := fs.Parse(args); err != nil {
		return err
	}
	acct, err := crypto.ParseAccount(strings.TrimSpace(*account))
	if err != nil {
		return fmt.Errorf("invalid -account: %w", err)
	}
	key, err := keys.load()
	if err != nil {
		return err
	}
	sig, err := signWhitelist(key, acct, *metadata)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, sig)
	return nil
}

func signSpirit(key *crypto.PrivateKey, account [20]byte) (string, error) {
	msg, err := world.RedeemSpiritMessage(account)
	if err != nil {
		return "", err
	}
	return sign(key, msg)
}

func signWhitelist(key *crypto.PrivateKey, account [20]byte, metadata string) (string, error) {
	msg, err := world.WhitelistMessage(account, metadata)
	if err != nil {
		return "", err
	}
	return sign(key, msg)
}

func sign(key *crypto.PrivateKey, msg []byte) (string, error) {
	sig, err := crypto.Sign(key, msg)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(sig), nil
}
