package main

import (
	"context"
	"fmt"

	"discofetch/internal/history"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.HistoryDB, logger)
			if err != nil {
				return fmt.Errorf("open export history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No exports recorded yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-30s %5d msgs  %-4s  %s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					e.ChannelLabel, e.MessageCount, e.Format, e.FilePath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}
