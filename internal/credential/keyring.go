// Package credential keeps the panelctl API token in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const TokenKey = "api-token"

var ErrNotFound = errors.New("credential not found")

type Store struct {
	ring keyring.Keyring
}

// Open returns a Store backed by the first available system keyring, falling
// back to an encrypted file under ~/.config/<service>.
func Open(service string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + service + "/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

func NewStore(ring keyring.Keyring) *Store { return &Store{ring: ring} }

func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

func (s *Store) Set(key, value string) error {
	if err := s.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: "netpanel " + key}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := s.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
