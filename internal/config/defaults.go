package config

import "path/filepath"

func Defaults() *Config {
	return &Config{
		SaveDir:            filepath.Join(ExpandPath("~"), "DiscordExports"),
		CredentialStorage:  "keyring",
		LogLevel:           "info",
		DefaultCount:       1000,
		PageSize:           100,
		MaxRetries:         3,
		RequestDelayMs:     200,
		HTTPTimeoutSeconds: 30,
		HistoryDB:          filepath.Join(DefaultConfigDir(), "history.db"),
	}
}
