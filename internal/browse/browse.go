// Package browse builds the catalog of reachable channels and filters it for
// interactive selection. It is pure data plus filtering; the prompting lives
// in the shell.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"discofetch/internal/discord"
	"discofetch/internal/domain"
)

// Lister is the slice of the API client the browser needs.
type Lister interface {
	ListDMs(ctx context.Context) ([]domain.Channel, error)
	ListGuilds(ctx context.Context) ([]domain.Guild, error)
	ListGuildChannels(ctx context.Context, guild domain.Guild) ([]domain.Channel, error)
}

// Scope selects which half of the catalog to load.
type Scope int

const (
	ScopeDMs Scope = iota
	ScopeGuilds
)

// Catalog is the session snapshot of reachable channels.
type Catalog struct {
	DMs    []domain.Channel
	Guilds []domain.Guild
}

// LoadCatalog fetches the channels for one scope. Guilds whose channel list is
// denied (403/404) or stays rate-limited are skipped with a warning; the rest
// of the catalog still loads.
func LoadCatalog(ctx context.Context, client Lister, scope Scope, logger *slog.Logger) (*Catalog, error) {
	cat := &Catalog{}

	switch scope {
	case ScopeDMs:
		dms, err := client.ListDMs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load DM catalog: %w", err)
		}
		cat.DMs = dms

	case ScopeGuilds:
		guilds, err := client.ListGuilds(ctx)
		if err != nil {
			return nil, fmt.Errorf("load server catalog: %w", err)
		}
		for _, g := range guilds {
			channels, err := client.ListGuildChannels(ctx, g)
			if err != nil {
				if errors.Is(err, discord.ErrSkippable) {
					logger.Warn("skipping server", "server", g.Name, "error", err)
					continue
				}
				return nil, err
			}
			if len(channels) == 0 {
				continue
			}
			g.Channels = channels
			cat.Guilds = append(cat.Guilds, g)
		}
	}

	return cat, nil
}

// FilterChannels returns the channels whose name contains query,
// case-insensitive. An empty query matches everything.
func FilterChannels(channels []domain.Channel, query string) []domain.Channel {
	if query == "" {
		return channels
	}
	q := strings.ToLower(query)
	var matches []domain.Channel
	for _, ch := range channels {
		if strings.Contains(strings.ToLower(ch.Name), q) {
			matches = append(matches, ch)
		}
	}
	return matches
}

// FilterGuilds returns the guilds whose name contains query, case-insensitive.
func FilterGuilds(guilds []domain.Guild, query string) []domain.Guild {
	if query == "" {
		return guilds
	}
	q := strings.ToLower(query)
	var matches []domain.Guild
	for _, g := range guilds {
		if strings.Contains(strings.ToLower(g.Name), q) {
			matches = append(matches, g)
		}
	}
	return matches
}
