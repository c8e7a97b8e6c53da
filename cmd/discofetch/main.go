package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discofetch/internal/config"
	"discofetch/internal/discord"
	"discofetch/internal/domain"
	"discofetch/internal/history"
	"discofetch/internal/shell"
	"discofetch/internal/stats"
	"discofetch/internal/token"

	"github.com/spf13/cobra"
)

var (
	version    = "0.3.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "discofetch",
		Short: "Fetch and export Discord message history",
		Long: `discofetch signs in to Discord with your user token, lets you browse
DMs and server channels, and exports message history to TXT, JSON, or CSV files.`,
		RunE: runShell,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.discofetch/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(loginCmd())
	root.AddCommand(logoutCmd())
	root.AddCommand(whoamiCmd())
	root.AddCommand(configCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default config file and export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.SaveDir, 0o755); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath, "exports", cfg.SaveDir)
			return nil
		},
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, string, error) {
	cfgPath := resolveConfigPath()
	cfg, err := config.LoadOrDefaults(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	return cfg, cfgPath, nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// session is an authenticated API connection plus where its token came from.
type session struct {
	client   *discord.Client
	resolver *token.Resolver
	source   string
	user     domain.User
}

// connect resolves a token, builds the API client, and verifies the session.
func connect(ctx context.Context, cfg *config.Config, collector *stats.Collector) (*session, error) {
	resolver, err := token.NewResolver(cfg, logger)
	if err != nil {
		return nil, err
	}

	tok, source, err := resolver.Load()
	if err != nil {
		return nil, fmt.Errorf("no Discord token available: %w", err)
	}

	client := discord.New(discord.Options{
		Token:           tok,
		BaseURL:         cfg.APIBase,
		PageSize:        cfg.PageSize,
		MaxRetries:      cfg.MaxRetries,
		MinRequestDelay: time.Duration(cfg.RequestDelayMs) * time.Millisecond,
		Timeout:         time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		Stats:           collector,
		Logger:          logger,
	})

	me, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	logger.Info("signed in", "user", me.Username, "source", source)

	// A token typed at the prompt is worth keeping if it just worked.
	if source == "prompt" {
		resolver.OfferSave(tok)
	}

	return &session{client: client, resolver: resolver, source: source, user: me}, nil
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	sess, err := connect(ctx, cfg, collector)
	if err != nil {
		return err
	}

	var journal shell.Recorder
	if store, err := history.Open(cfg.HistoryDB, logger); err != nil {
		logger.Warn("export history unavailable", "error", err)
	} else {
		journal = store
		defer store.Close()
	}

	sh := shell.New(shell.Options{
		Config:      cfg,
		ConfigPath:  cfgPath,
		Client:      sess.client,
		History:     journal,
		TokenStore:  sess.resolver.Configured(),
		TokenSource: sess.source,
		Stats:       collector,
		In:          os.Stdin,
		Out:         os.Stdout,
		Logger:      logger,
	})
	return sh.Run(ctx)
}
