package token

import (
	"os"
	"sync"

	"github.com/joho/godotenv"

	"discofetch/internal/domain"
)

// EnvVar is the environment variable the env backend reads.
const EnvVar = "DISCORD_TOKEN"

var loadDotenvOnce sync.Once

// EnvStore reads the token from the process environment, loading a local .env
// file first when one exists. It never persists anything.
type EnvStore struct{}

func NewEnvStore() *EnvStore { return &EnvStore{} }

func (s *EnvStore) Name() string { return "env" }

func (s *EnvStore) Load() (string, error) {
	loadDotenvOnce.Do(func() {
		// Missing .env is the normal case, not an error.
		_ = godotenv.Load()
	})

	token := os.Getenv(EnvVar)
	if token == "" {
		return "", ErrNotFound
	}
	return domain.NormalizeToken(token), nil
}

func (s *EnvStore) Save(string) error { return ErrReadOnly }

func (s *EnvStore) Clear() error { return ErrReadOnly }
