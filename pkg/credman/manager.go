// Package credman stores portal credentials: account names in the
// key-value store, passwords sealed with a key held by the OS keyring
// (file fallback when no keyring service is available).
package credman

import (
	"encoding/hex"
	"fmt"

	"github.com/campass/campass/pkg/credman/encryption"
	"github.com/campass/campass/pkg/credman/keyring"
	"github.com/campass/campass/pkg/store"
)

// Credentials is one portal's account/password pair.
type Credentials struct {
	Account  string
	Password string
}

// keyStore abstracts Keyring and FileKeyStore.
type keyStore interface {
	SetKey() ([]byte, error)
	GetKey() ([]byte, error)
	DeleteKey() error
}

// Manager reads and writes credentials through the shared store.
type Manager struct {
	st  store.Store
	key []byte
}

// NewManager creates a credential manager using the given encryption key.
func NewManager(st store.Store, key []byte) *Manager {
	return &Manager{st: st, key: key}
}

// LoadKey obtains the credential encryption key: OS keyring first, then
// the file fallback under configDir; a key is generated on first use.
func LoadKey(configDir string) ([]byte, error) {
	stores := []keyStore{keyring.NewKeyring(), keyring.NewFileKeyStore(configDir)}
	var lastErr error
	for _, ks := range stores {
		if key, err := ks.GetKey(); err == nil {
			return key, nil
		}
		key, err := ks.SetKey()
		if err == nil {
			return key, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no usable key store: %w", lastErr)
}

// Save persists credentials: the account name in plain text under
// accountKey, the password sealed and hex-encoded under passwordKey.
func (m *Manager) Save(accountKey, passwordKey string, c Credentials) error {
	sealed, err := encryption.EncryptValue(c.Password, m.key)
	if err != nil {
		return fmt.Errorf("seal password: %w", err)
	}
	if err := m.st.Set(accountKey, c.Account); err != nil {
		return err
	}
	return m.st.Set(passwordKey, hex.EncodeToString(sealed))
}

// Load returns the persisted credentials, or nil when either half is
// absent.
func (m *Manager) Load(accountKey, passwordKey string) (*Credentials, error) {
	account, ok, err := m.st.Get(accountKey)
	if err != nil || !ok || account == "" {
		return nil, err
	}
	sealedHex, ok, err := m.st.Get(passwordKey)
	if err != nil || !ok || sealedHex == "" {
		return nil, err
	}
	sealed, err := hex.DecodeString(sealedHex)
	if err != nil {
		return nil, fmt.Errorf("stored password is not hex: %w", err)
	}
	password, err := encryption.DecryptValue(sealed, m.key)
	if err != nil {
		return nil, fmt.Errorf("unseal password: %w", err)
	}
	return &Credentials{Account: account, Password: string(password)}, nil
}

// Delete removes both halves of the credentials.
func (m *Manager) Delete(accountKey, passwordKey string) error {
	if err := m.st.Delete(accountKey); err != nil {
		return err
	}
	return m.st.Delete(passwordKey)
}
