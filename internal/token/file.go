package token

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"discofetch/internal/domain"
)

// FileStore keeps the token in a plaintext JSON file, mode 0600.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Name() string { return "file" }

type credentialsFile struct {
	DiscordToken string `json:"discord_token"`
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read credentials file: %w", err)
	}

	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parse credentials file %s: %w", s.path, err)
	}
	if creds.DiscordToken == "" {
		return "", ErrNotFound
	}
	return domain.NormalizeToken(creds.DiscordToken), nil
}

func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(credentialsFile{DiscordToken: domain.NormalizeToken(token)}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}
