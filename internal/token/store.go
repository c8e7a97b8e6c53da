// Package token implements credential storage backends for the Discord user
// token and the resolution order between them.
package token

import (
	"errors"
	"fmt"

	"discofetch/internal/config"
	"discofetch/internal/domain"
)

var (
	// ErrNotFound means the backend holds no token.
	ErrNotFound = errors.New("token not found")

	// ErrReadOnly means the backend cannot persist tokens (env, prompt).
	ErrReadOnly = errors.New("token store is read-only")
)

// NewStore builds the backend named by method ("keyring", "file", "env",
// "prompt").
func NewStore(method string) (domain.TokenStore, error) {
	switch method {
	case "keyring":
		return NewKeyringStore(), nil
	case "file":
		return NewFileStore(config.DefaultCredentialsPath()), nil
	case "env":
		return NewEnvStore(), nil
	case "prompt":
		return NewPromptStore(nil, nil), nil
	default:
		return nil, fmt.Errorf("unknown credential storage method %q", method)
	}
}
