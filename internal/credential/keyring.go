// Package credential stores the IMAP password outside the config file.
package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "bugrecover"

// PasswordEnv overrides the keyring when set.
const PasswordEnv = "BUGRECOVER_IMAP_PASSWORD"

// ErrNotFound means no password is stored for the account.
var ErrNotFound = errors.New("no stored password")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/bugrecover/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("bugrecover-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func imapKey(username string) string {
	return "imap:" + username
}

// IMAPPassword returns the password for username, preferring
// PasswordEnv over the keyring.
func IMAPPassword(username string) (string, error) {
	if v := os.Getenv(PasswordEnv); v != "" {
		return v, nil
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(imapKey(username))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w for %s: set %s or run \"bugrecover credential set\"", ErrNotFound, username, PasswordEnv)
	}
	if err != nil {
		return "", fmt.Errorf("getting password for %s: %w", username, err)
	}

	return string(item.Data), nil
}

// SetIMAPPassword stores the password for username in the keyring.
func SetIMAPPassword(username, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   imapKey(username),
		Data:  []byte(password),
		Label: "bugrecover IMAP password",
	})
	if err != nil {
		return fmt.Errorf("setting password for %s: %w", username, err)
	}

	return nil
}

// DeleteIMAPPassword removes the stored password for username.
func DeleteIMAPPassword(username string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(imapKey(username)); err != nil {
		return fmt.Errorf("deleting password for %s: %w", username, err)
	}

	return nil
}
