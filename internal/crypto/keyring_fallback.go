//go:build !darwin

package crypto

import (
	"fmt"
	"os"
)

// envKeyName is consulted on platforms without a supported credential store
const envKeyName = "IWORKED_DB_KEY"

type envStore struct{}

func newPlatformKeyring() Keyring {
	return &envStore{}
}

func (k *envStore) GetKey() (string, error) {
	key := os.Getenv(envKeyName)
	if key == "" {
		return "", fmt.Errorf("%s is not set", envKeyName)
	}
	return key, nil
}

// SetKey cannot persist anything here; it tells the user what to export
func (k *envStore) SetKey(password string) error {
	if password == "" {
		return errEmptyKey
	}
	return fmt.Errorf("no credential store on this platform: export %s=%q instead", envKeyName, password)
}

func (k *envStore) DeleteKey() error {
	return fmt.Errorf("no credential store on this platform: unset %s instead", envKeyName)
}

func (k *envStore) IsAvailable() bool {
	return os.Getenv(envKeyName) != ""
}
