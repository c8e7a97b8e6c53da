package discord

import (
	"context"
	"errors"

	"discofetch/internal/domain"
)

// FetchAll pages backward through a channel's history until total messages
// are collected or the platform returns an empty page. Cancellation is
// cooperative: the context is checked between pages, never mid-request.
// progress, when non-nil, is called with the running message count after each
// page.
//
// A skippable failure mid-run returns the messages collected so far together
// with the error, so callers can export a partial batch and still warn.
func (c *Client) FetchAll(ctx context.Context, channelID string, total int, progress func(fetched int)) ([]domain.Message, error) {
	if total <= 0 {
		return nil, nil
	}

	var all []domain.Message
	before := ""

	for len(all) < total {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		remaining := total - len(all)
		page, cursor, err := c.FetchMessages(ctx, channelID, remaining, before)
		if err != nil {
			if len(all) > 0 && errors.Is(err, ErrSkippable) {
				c.logger.Warn("stopped fetching early", "channel", channelID, "fetched", len(all), "error", err)
				return all, err
			}
			return all, err
		}
		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		before = cursor
		if progress != nil {
			progress(len(all))
		}
	}

	if len(all) > total {
		all = all[:total]
	}
	c.stats.AddMessages(len(all))
	return all, nil
}
