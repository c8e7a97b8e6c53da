package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"discofetch/internal/browserauth"
	"discofetch/internal/config"
	"discofetch/internal/discord"
	"discofetch/internal/domain"
	"discofetch/internal/stats"
	"discofetch/internal/token"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var (
		rawToken   string
		useBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Discord token in the configured credential store",
		Long: `Obtains a user token and saves it to the configured credential store.
By default the token is read from an interactive prompt; --token takes it from
the flag and --browser opens a visible Chrome window to capture it from a real
Discord login.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tok := domain.NormalizeToken(rawToken)
			switch {
			case tok != "":
			case useBrowser:
				capture := browserauth.New(filepath.Join(config.DefaultConfigDir(), "chrome-profile"), logger)
				tok, err = capture.Token(ctx, 5*time.Minute)
				if err != nil {
					return fmt.Errorf("browser login: %w", err)
				}
			default:
				tok, err = token.NewPromptStore(nil, nil).Load()
				if err != nil {
					return err
				}
			}

			// Verify before persisting anything.
			client := discord.New(discord.Options{
				Token:   tok,
				BaseURL: cfg.APIBase,
				Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
				Logger:  logger,
			})
			me, err := client.Me(ctx)
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			store, err := token.NewStore(cfg.CredentialStorage)
			if err != nil {
				return err
			}
			if err := store.Save(tok); err != nil {
				return fmt.Errorf("save token to %s store: %w", store.Name(), err)
			}
			logger.Info("logged in", "user", me.Username, "store", store.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&rawToken, "token", "", "token value (skips the prompt)")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "capture the token from a browser login")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the token from the configured credential store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := token.NewStore(cfg.CredentialStorage)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear token from %s store: %w", store.Name(), err)
			}
			logger.Info("logged out", "store", store.Name())
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the stored token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := connect(ctx, cfg, stats.NewCollector())
			if err != nil {
				return err
			}
			display := sess.user.GlobalName
			if display == "" {
				display = sess.user.Username
			}
			fmt.Printf("%s (id %s, token from %s)\n", display, sess.user.ID, sess.source)
			return nil
		},
	}
}
