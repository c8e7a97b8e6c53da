package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for discofetch.
type Config struct {
	// SaveDir is the root directory exports are written under.
	SaveDir string `json:"saveDir"`

	// CredentialStorage selects the token backend: "keyring" | "file" | "env" | "prompt".
	CredentialStorage string `json:"credentialStorage"`

	LogLevel string `json:"logLevel"` // "debug" | "info" | "warn" | "error"

	// DefaultCount is the message count offered when the operator does not pick one.
	DefaultCount int `json:"defaultCount"`

	// PageSize is the per-request message limit. Discord caps this at 100.
	PageSize int `json:"pageSize"`

	// MaxRetries bounds 429/transient retries per request.
	MaxRetries int `json:"maxRetries"`

	// RequestDelayMs is the minimum delay between consecutive API requests,
	// enforced regardless of rate-limit headers.
	RequestDelayMs int `json:"requestDelayMs"`

	HTTPTimeoutSeconds int `json:"httpTimeoutSeconds"`

	// APIBase overrides the Discord API base URL. Empty means the real API.
	APIBase string `json:"apiBase,omitempty"`

	// HistoryDB is the path of the export history journal.
	HistoryDB string `json:"historyDb"`
}

// DefaultConfigDir returns the default config directory (~/.discofetch).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".discofetch"
	}
	return filepath.Join(home, ".discofetch")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// DefaultCredentialsPath is where the "file" token backend persists.
func DefaultCredentialsPath() string {
	return filepath.Join(DefaultConfigDir(), "credentials.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.SaveDir = ExpandPath(cfg.SaveDir)
	cfg.HistoryDB = ExpandPath(cfg.HistoryDB)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefaults loads the config at path, falling back to Defaults when the
// file does not exist yet. Any other error is returned as-is.
func LoadOrDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return nil, err
}

func Save(path string, cfg *Config) error {
	path = ExpandPath(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config file %s: %w", path, err)
	}
	return nil
}

func Validate(cfg *Config) error {
	switch cfg.CredentialStorage {
	case "keyring", "file", "env", "prompt":
	default:
		return fmt.Errorf("credentialStorage must be one of keyring/file/env/prompt, got %q", cfg.CredentialStorage)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logLevel must be one of debug/info/warn/error, got %q", cfg.LogLevel)
	}
	if cfg.SaveDir == "" {
		return fmt.Errorf("saveDir must not be empty")
	}
	if cfg.DefaultCount < 1 {
		return fmt.Errorf("defaultCount must be >= 1, got %d", cfg.DefaultCount)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return fmt.Errorf("pageSize must be between 1 and 100, got %d", cfg.PageSize)
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 10 {
		return fmt.Errorf("maxRetries must be between 0 and 10, got %d", cfg.MaxRetries)
	}
	if cfg.RequestDelayMs < 0 {
		return fmt.Errorf("requestDelayMs must not be negative, got %d", cfg.RequestDelayMs)
	}
	if cfg.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("httpTimeoutSeconds must be >= 1, got %d", cfg.HTTPTimeoutSeconds)
	}
	return nil
}

// ExpandPath resolves a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}
