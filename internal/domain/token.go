package domain

import "strings"

// TokenStore persists the user credential. Implementations cover the OS
// keyring, a plaintext file, the process environment, and an interactive
// prompt.
type TokenStore interface {
	// Name identifies the backend ("keyring", "file", "env", "prompt").
	Name() string

	// Load returns the stored token, or token.ErrNotFound.
	Load() (string, error)

	// Save persists the token. Read-only backends return token.ErrReadOnly.
	Save(token string) error

	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// NormalizeToken strips whitespace and surrounding quotes from a credential,
// tolerating tokens pasted from .env files or shell exports.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.Trim(token, `"'`)
	return strings.TrimSpace(token)
}
