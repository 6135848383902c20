package crypto

import "errors"

// Keyring stores the database encryption key outside the application's own
// files, so the key never sits on disk next to the database it unlocks.
type Keyring interface {
	// GetKey returns the stored key. Fails if no key is stored.
	GetKey() (string, error)
	// SetKey stores the key, replacing any previous value
	SetKey(password string) error
	// DeleteKey removes the stored key
	DeleteKey() error
	// IsAvailable reports whether this backend can hold a key at all
	IsAvailable() bool
}

// Entries in the OS credential store are namespaced by service; the app keeps
// exactly one key under it.
const (
	keyringService = "iworked"
	keyringAccount = "db-encryption-key"
)

var errEmptyKey = errors.New("encryption key is empty")

// NewKeyring picks the backend for the current platform: the Keychain on
// macOS, the IWORKED_DB_KEY environment variable everywhere else.
func NewKeyring() Keyring {
	return newPlatformKeyring()
}
