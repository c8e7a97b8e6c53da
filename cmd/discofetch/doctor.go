package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"discofetch/internal/config"
	"discofetch/internal/discord"
	"discofetch/internal/history"
	"discofetch/internal/token"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your discofetch installation",
		Long: `Verifies that the configuration, credential store, export directory, and
history database are correctly set up, and that the Discord API is reachable.
Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("discofetch doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printWarn("Config file", fmt.Sprintf("not found at %s (defaults apply)", cfgPath))
				warned++
			} else {
				printPass("Config file", cfgPath)
				passed++
			}

			// 2. Config loads and validates
			cfg, err := config.LoadOrDefaults(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\nResults: %d passed, %d warnings, %d failed\n", passed, warned, failed)
				return fmt.Errorf("config is invalid")
			}
			printPass("Config validation", "valid")
			passed++

			// 3. Export directory writable
			if err := checkWritableDir(cfg.SaveDir); err != nil {
				printFail("Export directory", err.Error())
				failed++
			} else {
				printPass("Export directory", cfg.SaveDir)
				passed++
			}

			// 4. Token resolvable without prompting
			tok := checkToken(cfg, &passed, &warned)

			// 5. History database writable
			if err := checkHistoryDB(cfg.HistoryDB); err != nil {
				printWarn("History database", err.Error())
				warned++
			} else {
				printPass("History database", cfg.HistoryDB)
				passed++
			}

			// 6. API reachable with the stored token
			if tok == "" {
				printWarn("Discord API", "skipped, no token to test with")
				warned++
			} else if err := checkAPI(cfg, tok); err != nil {
				printFail("Discord API", err.Error())
				failed++
			} else {
				printPass("Discord API", "authenticated")
				passed++
			}

			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before fetching.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\ndiscofetch should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed.\n")
			}
			return nil
		},
	}
}

// checkToken looks for a token in the environment and the configured store
// without ever prompting. Returns the token when one is found.
func checkToken(cfg *config.Config, passed, warned *int) string {
	if tok, err := token.NewEnvStore().Load(); err == nil {
		printPass("Token", "found in environment ("+token.EnvVar+")")
		*passed++
		return tok
	}

	store, err := token.NewStore(cfg.CredentialStorage)
	if err != nil {
		printWarn("Token", err.Error())
		*warned++
		return ""
	}
	tok, err := store.Load()
	switch {
	case err == nil:
		printPass("Token", "found in "+store.Name()+" store")
		*passed++
		return tok
	case errors.Is(err, token.ErrNotFound), errors.Is(err, token.ErrReadOnly):
		printWarn("Token", "none stored, run 'discofetch login'")
		*warned++
	default:
		printWarn("Token", fmt.Sprintf("%s store: %v", store.Name(), err))
		*warned++
	}
	return ""
}

func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create: %w", err)
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	os.Remove(probe)
	return nil
}

func checkHistoryDB(dbPath string) error {
	store, err := history.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = store.Recent(ctx, 1)
	return err
}

func checkAPI(cfg *config.Config, tok string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := discord.New(discord.Options{
		Token:   tok,
		BaseURL: cfg.APIBase,
		Timeout: 10 * time.Second,
		Logger:  logger,
	})
	_, err := client.Me(ctx)
	return err
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
