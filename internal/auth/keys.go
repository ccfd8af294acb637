// internal/auth/keys.go
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "shelf-cli"
	// FallbackDir is the directory for file-based key storage (when keyring fails)
	FallbackDir = ".shelf/credentials"

	// SearchAPIKey names the search API key entry.
	SearchAPIKey = "cse_api_key"
)

// ErrNoKey is returned when no value is stored under a name.
var ErrNoKey = errors.New("no key stored")

// KeyStore keeps API credentials in the OS keyring, or in private files
// under the user's home directory where no keyring is available.
type KeyStore struct {
	service string
	dir     string
	useFile bool
}

// NewKeyStore picks the keyring when it is usable and files otherwise.
func NewKeyStore() (*KeyStore, error) {
	if useFileBasedStorage() {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		return NewFileKeyStore(filepath.Join(home, FallbackDir)), nil
	}
	return &KeyStore{service: KeyringService}, nil
}

// NewFileKeyStore stores keys as files in dir.
func NewFileKeyStore(dir string) *KeyStore {
	return &KeyStore{service: KeyringService, dir: dir, useFile: true}
}

// useFileBasedStorage is a fallback for environments where keyring isn't
// available (Codespaces, CI, headless servers).
func useFileBasedStorage() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return true
	}

	testKey := "_test_keyring_access_"
	if err := keyring.Set(KeyringService, testKey, "test"); err != nil {
		return true
	}
	_ = keyring.Delete(KeyringService, testKey)
	return false
}

// Backend names where keys are stored.
func (s *KeyStore) Backend() string {
	if s.useFile {
		return "file:" + s.dir
	}
	return "keyring"
}

func (s *KeyStore) path(name string) (string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Set stores value under name.
func (s *KeyStore) Set(name, value string) error {
	if name == "" {
		return fmt.Errorf("key name cannot be empty")
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("key value cannot be empty")
	}

	if s.useFile {
		path, err := s.path(name)
		if err != nil {
			return fmt.Errorf("failed to get key path: %w", err)
		}
		if err := os.WriteFile(path, []byte(value), 0600); err != nil {
			return fmt.Errorf("failed to save key file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(s.service, name, value); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Get returns the value stored under name, or ErrNoKey.
func (s *KeyStore) Get(name string) (string, error) {
	if s.useFile {
		path, err := s.path(name)
		if err != nil {
			return "", fmt.Errorf("failed to get key path: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", ErrNoKey
			}
			return "", fmt.Errorf("failed to load key file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	v, err := keyring.Get(s.service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoKey
		}
		return "", fmt.Errorf("failed to load from keyring: %w", err)
	}
	return v, nil
}

// Delete removes name. Deleting a missing key is not an error.
func (s *KeyStore) Delete(name string) error {
	if s.useFile {
		path, err := s.path(name)
		if err != nil {
			return fmt.Errorf("failed to get key path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete key file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(s.service, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
