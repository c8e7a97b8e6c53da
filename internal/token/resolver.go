package token

import (
	"errors"
	"fmt"
	"log/slog"

	"discofetch/internal/config"
	"discofetch/internal/domain"
)

// Resolver applies the credential resolution order: the environment always
// wins, then the configured backend, then an interactive prompt as the last
// resort.
type Resolver struct {
	env        domain.TokenStore
	configured domain.TokenStore
	prompt     domain.TokenStore
	logger     *slog.Logger
}

func NewResolver(cfg *config.Config, logger *slog.Logger) (*Resolver, error) {
	configured, err := NewStore(cfg.CredentialStorage)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		env:        NewEnvStore(),
		configured: configured,
		prompt:     NewPromptStore(nil, nil),
		logger:     logger,
	}, nil
}

// Configured returns the backend named by the config, for save/clear
// operations.
func (r *Resolver) Configured() domain.TokenStore { return r.configured }

// Load resolves a token. The second return reports which backend produced it.
func (r *Resolver) Load() (string, string, error) {
	if tok, err := r.env.Load(); err == nil {
		r.logger.Debug("token resolved", "source", "env")
		return tok, r.env.Name(), nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", "", err
	}

	if r.configured.Name() != "env" && r.configured.Name() != "prompt" {
		tok, err := r.configured.Load()
		if err == nil {
			r.logger.Debug("token resolved", "source", r.configured.Name())
			return tok, r.configured.Name(), nil
		}
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("configured token store failed, falling back to prompt",
				"store", r.configured.Name(), "error", err)
		}
	}

	tok, err := r.prompt.Load()
	if err != nil {
		return "", "", fmt.Errorf("no credential resolved: %w", ErrNotFound)
	}
	return tok, r.prompt.Name(), nil
}

// OfferSave persists a freshly prompted token to the configured backend when
// that backend is writable. Failure to save is reported, not fatal.
func (r *Resolver) OfferSave(tok string) {
	err := r.configured.Save(tok)
	if errors.Is(err, ErrReadOnly) {
		return
	}
	if err != nil {
		r.logger.Warn("could not save token", "store", r.configured.Name(), "error", err)
		return
	}
	r.logger.Info("token saved", "store", r.configured.Name())
}
