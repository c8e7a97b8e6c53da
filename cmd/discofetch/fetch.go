package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discofetch/internal/discord"
	"discofetch/internal/domain"
	"discofetch/internal/export"
	"discofetch/internal/history"
	"discofetch/internal/stats"

	"github.com/spf13/cobra"
)

// fetchCmd is the non-interactive path: one channel, one export, no menus.
func fetchCmd() *cobra.Command {
	var (
		channelID  string
		name       string
		count      int
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one channel without the interactive menu",
		Long: `Fetches message history from a single channel by ID and writes one export
file. The channel name for the filename is looked up among your DMs; pass
--name to set it explicitly for server channels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if channelID == "" {
				return fmt.Errorf("--channel is required")
			}
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if count <= 0 {
				count = cfg.DefaultCount
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			sess, err := connect(ctx, cfg, collector)
			if err != nil {
				return err
			}

			channel := resolveChannel(ctx, sess.client, channelID, name)
			started := time.Now()

			msgs, err := sess.client.FetchAll(ctx, channel.ID, count, func(fetched int) {
				fmt.Fprintf(os.Stderr, "\rfetched %d/%d", fetched, count)
			})
			fmt.Fprintln(os.Stderr)
			if err != nil && len(msgs) == 0 {
				return fmt.Errorf("fetch %s: %w", channel.Label(), err)
			}
			if err != nil {
				logger.Warn("stopped early", "messages", len(msgs), "error", err)
			}
			if len(msgs) == 0 {
				return fmt.Errorf("no messages retrieved from %s", channel.Label())
			}

			batch := domain.NewExportBatch(channel, msgs, time.Now())
			path, err := export.NewWriter(cfg.SaveDir).Write(batch, format)
			if err != nil {
				return err
			}
			fmt.Println(path)

			if store, err := history.Open(cfg.HistoryDB, logger); err == nil {
				defer store.Close()
				rec := history.Entry{
					ChannelID:    channel.ID,
					ChannelLabel: channel.Label(),
					Format:       string(format),
					FilePath:     path,
					MessageCount: len(batch.Messages),
					Duration:     time.Since(started),
				}
				if err := store.Record(ctx, rec); err != nil {
					logger.Warn("could not record export history", "error", err)
				}
			}

			snap := collector.Snapshot()
			logger.Info("fetch complete",
				"messages", len(batch.Messages),
				"requests", snap.HTTPRequests,
				"retries", snap.HTTPRetries,
				"elapsed", time.Since(started).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&channelID, "channel", "", "channel ID to fetch (required)")
	cmd.Flags().StringVar(&name, "name", "", "channel name for the export filename")
	cmd.Flags().IntVar(&count, "count", 0, "number of messages to fetch (default: config defaultCount)")
	cmd.Flags().StringVar(&formatName, "format", "txt", "export format: txt, json, or csv")
	return cmd
}

// resolveChannel finds a display name for a bare channel ID. DMs are one
// listing call away; anything else falls back to the ID (or --name).
func resolveChannel(ctx context.Context, client *discord.Client, channelID, name string) domain.Channel {
	if name != "" {
		return domain.Channel{ID: channelID, Name: name}
	}
	if dms, err := client.ListDMs(ctx); err == nil {
		for _, ch := range dms {
			if ch.ID == channelID {
				return ch
			}
		}
	}
	return domain.Channel{ID: channelID, Name: "channel_" + channelID}
}
