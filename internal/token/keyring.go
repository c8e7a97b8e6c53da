package token

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"discofetch/internal/domain"
)

const (
	keyringService = "discofetch"
	keyringKey     = "discord_token"
)

// KeyringStore keeps the token in the OS secret service (libsecret, macOS
// Keychain, Windows Credential Manager).
type KeyringStore struct{}

func NewKeyringStore() *KeyringStore { return &KeyringStore{} }

func (s *KeyringStore) Name() string { return "keyring" }

func (s *KeyringStore) Load() (string, error) {
	secret, err := keyring.Get(keyringService, keyringKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring read: %w", err)
	}
	return domain.NormalizeToken(secret), nil
}

func (s *KeyringStore) Save(token string) error {
	if err := keyring.Set(keyringService, keyringKey, domain.NormalizeToken(token)); err != nil {
		return fmt.Errorf("keyring write: %w", err)
	}
	return nil
}

func (s *KeyringStore) Clear() error {
	err := keyring.Delete(keyringService, keyringKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
