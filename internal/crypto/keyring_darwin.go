//go:build darwin

package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keychainStore keeps the key in the macOS Keychain
type keychainStore struct{}

func newPlatformKeyring() Keyring {
	return &keychainStore{}
}

func (k *keychainStore) GetKey() (string, error) {
	key, err := keyring.Get(keyringService, keyringAccount)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", fmt.Errorf("no encryption key in keychain: %w", err)
	case err != nil:
		return "", fmt.Errorf("keychain read failed: %w", err)
	case key == "":
		return "", errEmptyKey
	}
	return key, nil
}

func (k *keychainStore) SetKey(password string) error {
	if password == "" {
		return errEmptyKey
	}
	if err := keyring.Set(keyringService, keyringAccount, password); err != nil {
		return fmt.Errorf("keychain write failed: %w", err)
	}
	return nil
}

func (k *keychainStore) DeleteKey() error {
	if err := keyring.Delete(keyringService, keyringAccount); err != nil {
		return fmt.Errorf("keychain delete failed: %w", err)
	}
	return nil
}

// IsAvailable writes and removes a scratch entry; a locked or sandboxed
// keychain fails the write.
func (k *keychainStore) IsAvailable() bool {
	const scratch = "iworked-keychain-check"
	if err := keyring.Set(keyringService, scratch, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, scratch)
	return true
}
