// Package store provides the persisted key-value store shared by the
// account, cookie and credential layers. The production backend is a
// single-file SQLite database under the config directory; an in-memory
// backend exists for tests.
package store

import (
	"os"
	"path/filepath"
)

// Keys used by the authentication core. The store is shared process-wide
// state; the discipline is read-modify-persist per logical key with no
// optimistic-concurrency check. Last writer wins.
const (
	KeyPortalAccount  = "PORTAL_ACCOUNT"
	KeyPortalPassword = "PORTAL_PASSWORD"
	KeySsoAccount     = "SSO_ACCOUNT"
	KeySsoPassword    = "SSO_PASSWORD"
	KeyPortalCookie   = "portalCookie"
	KeySsoCookie      = "ssoCookie"
	KeyVpnCookie      = "vpnCookie"
	KeyEaHost         = "EA_HOST"
	KeyEaUseVpn       = "EA_USE_VPN"
)

// ConfigDirEnv is the environment variable name used to override the
// default configuration directory.
const ConfigDirEnv = "CAMPASS_CONFIG_DIR"

// Store is the persisted key-value collaborator. Implementations must be
// safe for use from multiple goroutines.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}

// ConfigDir resolves the campass configuration directory: the
// CAMPASS_CONFIG_DIR environment variable when set, otherwise a
// "campass" directory under the OS user config dir.
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "campass"), nil
}
