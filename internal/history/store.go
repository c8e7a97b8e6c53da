// Package history keeps a journal of completed exports. It records run
// metadata only (where a batch went, how big it was), never message content,
// and nothing in the fetch path reads it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one completed export.
type Entry struct {
	ID           int64
	ChannelID    string
	ChannelLabel string
	Format       string
	FilePath     string
	MessageCount int
	Duration     time.Duration
	CreatedAt    time.Time
}

// Store persists export entries in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create history directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open history database: %w", err)
	}

	// Single connection: SQLite and a sequential CLI need no more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		channel_id     TEXT NOT NULL,
		channel_label  TEXT NOT NULL,
		format         TEXT NOT NULL,
		file_path      TEXT NOT NULL,
		message_count  INTEGER NOT NULL,
		duration_ms    INTEGER NOT NULL DEFAULT 0,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Record adds one completed export to the journal.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (channel_id, channel_label, format, file_path, message_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ChannelID, e.ChannelLabel, e.Format, e.FilePath, e.MessageCount,
		e.Duration.Milliseconds(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// Recent returns the latest exports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel_id, channel_label, format, file_path, message_count, duration_ms, created_at
		FROM exports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.ChannelID, &e.ChannelLabel, &e.Format,
			&e.FilePath, &e.MessageCount, &durationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
