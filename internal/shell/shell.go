// Package shell is the interactive menu loop: an explicit state machine over
// menu screens, reading from an injected terminal so transitions are testable
// with scripted input.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"discofetch/internal/browse"
	"discofetch/internal/config"
	"discofetch/internal/domain"
	"discofetch/internal/export"
	"discofetch/internal/history"
	"discofetch/internal/stats"
)

// State is one menu screen.
type State int

const (
	StateMainMenu State = iota
	StateChooseScope
	StateChooseServer
	StateChooseChannel
	StateChooseCount
	StateChooseFormat
	StateExecute
	StateConfigureDirectory
	StateConfigureStorage
	StateManageToken
	StateShowHistory
	StateExit
)

// Fetcher is the slice of the API client the shell drives.
type Fetcher interface {
	browse.Lister
	FetchAll(ctx context.Context, channelID string, total int, progress func(fetched int)) ([]domain.Message, error)
}

// BatchWriter writes a rendered batch and returns the file path.
type BatchWriter interface {
	Write(batch domain.ExportBatch, format export.Format) (string, error)
}

// Recorder is the export journal. A nil Recorder disables history.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Options wires the shell's collaborators.
type Options struct {
	Config      *config.Config
	ConfigPath  string
	Client      Fetcher
	History     Recorder
	TokenStore  domain.TokenStore // configured backend, for the manage-token menu
	TokenSource string            // which backend resolved the current token
	Stats       *stats.Collector
	In          io.Reader
	Out         io.Writer
	Logger      *slog.Logger

	// NewWriter builds the batch writer for a save directory. Tests override it.
	NewWriter func(root string) BatchWriter
}

// Shell runs the menu loop. One logical thread of control: network calls
// suspend the loop until they return.
type Shell struct {
	cfg     *config.Config
	cfgPath string
	client  Fetcher
	journal Recorder
	tokens  domain.TokenStore
	source  string
	stats   *stats.Collector
	in      *bufio.Scanner
	out     io.Writer
	logger  *slog.Logger

	newWriter func(root string) BatchWriter

	// fetch flow selections, reset when a flow completes or cancels
	scope   browse.Scope
	catalog *browse.Catalog
	guild   *domain.Guild
	channel *domain.Channel
	count   int
	format  export.Format
}

func New(opts Options) *Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewCollector()
	}
	if opts.NewWriter == nil {
		opts.NewWriter = func(root string) BatchWriter { return export.NewWriter(root) }
	}
	return &Shell{
		cfg:       opts.Config,
		cfgPath:   opts.ConfigPath,
		client:    opts.Client,
		journal:   opts.History,
		tokens:    opts.TokenStore,
		source:    opts.TokenSource,
		stats:     opts.Stats,
		in:        bufio.NewScanner(opts.In),
		out:       opts.Out,
		logger:    opts.Logger,
		newWriter: opts.NewWriter,
	}
}

// Run drives the state machine until the operator exits or input ends.
// A cancelled ctx ends the session cleanly.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "discofetch - Discord message fetcher")

	state := StateMainMenu
	for state != StateExit {
		if ctx.Err() != nil {
			return nil
		}
		state = s.step(ctx, state)
	}
	fmt.Fprintln(s.out, "Bye.")
	return nil
}

// step is the transition function: one screen in, the next screen out.
func (s *Shell) step(ctx context.Context, state State) State {
	switch state {
	case StateMainMenu:
		return s.stepMainMenu()
	case StateChooseScope:
		return s.stepChooseScope(ctx)
	case StateChooseServer:
		return s.stepChooseServer()
	case StateChooseChannel:
		return s.stepChooseChannel()
	case StateChooseCount:
		return s.stepChooseCount()
	case StateChooseFormat:
		return s.stepChooseFormat()
	case StateExecute:
		return s.stepExecute(ctx)
	case StateConfigureDirectory:
		return s.stepConfigureDirectory()
	case StateConfigureStorage:
		return s.stepConfigureStorage()
	case StateManageToken:
		return s.stepManageToken()
	case StateShowHistory:
		return s.stepShowHistory(ctx)
	default:
		return StateExit
	}
}

func (s *Shell) stepMainMenu() State {
	s.resetFlow()

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Main menu:")
	fmt.Fprintln(s.out, "  1. Fetch messages")
	fmt.Fprintln(s.out, "  2. Set save directory")
	fmt.Fprintln(s.out, "  3. Token storage method")
	fmt.Fprintln(s.out, "  4. Manage token")
	fmt.Fprintln(s.out, "  5. Export history")
	fmt.Fprintln(s.out, "  6. Exit")

	choice, ok := s.prompt("Select option", "1")
	if !ok {
		return StateExit
	}
	switch choice {
	case "1":
		return StateChooseScope
	case "2":
		return StateConfigureDirectory
	case "3":
		return StateConfigureStorage
	case "4":
		return StateManageToken
	case "5":
		return StateShowHistory
	case "6", "q", "quit", "exit":
		return StateExit
	default:
		fmt.Fprintln(s.out, "Invalid selection.")
		return StateMainMenu
	}
}

func (s *Shell) stepChooseScope(ctx context.Context) State {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "What do you want to fetch?")
	fmt.Fprintln(s.out, "  1. Direct messages")
	fmt.Fprintln(s.out, "  2. Server channels")

	choice, ok := s.prompt("Select option", "1")
	if !ok || isCancel(choice) {
		return StateMainMenu
	}

	switch choice {
	case "1":
		s.scope = browse.ScopeDMs
	case "2":
		s.scope = browse.ScopeGuilds
	default:
		fmt.Fprintln(s.out, "Invalid selection.")
		return StateChooseScope
	}

	fmt.Fprintln(s.out, "Loading channels...")
	cat, err := browse.LoadCatalog(ctx, s.client, s.scope, s.logger)
	if err != nil {
		fmt.Fprintf(s.out, "Could not load channels: %v\n", err)
		return StateMainMenu
	}
	s.catalog = cat

	if s.scope == browse.ScopeDMs {
		if len(cat.DMs) == 0 {
			fmt.Fprintln(s.out, "No DM channels found.")
			return StateMainMenu
		}
		return StateChooseChannel
	}
	if len(cat.Guilds) == 0 {
		fmt.Fprintln(s.out, "No accessible servers found.")
		return StateMainMenu
	}
	return StateChooseServer
}

func (s *Shell) stepChooseServer() State {
	names := make([]string, len(s.catalog.Guilds))
	for i, g := range s.catalog.Guilds {
		names[i] = fmt.Sprintf("%s (%d channels)", g.Name, len(g.Channels))
	}
	searchNames := make([]string, len(s.catalog.Guilds))
	for i, g := range s.catalog.Guilds {
		searchNames[i] = g.Name
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Available servers:")
	idx, ok := s.selectFromList(names, searchNames, "Select a server by number or enter a name to search")
	if !ok {
		return StateMainMenu
	}
	s.guild = &s.catalog.Guilds[idx]
	fmt.Fprintf(s.out, "Selected server: %s\n", s.guild.Name)
	return StateChooseChannel
}

func (s *Shell) stepChooseChannel() State {
	var channels []domain.Channel
	if s.scope == browse.ScopeDMs {
		channels = s.catalog.DMs
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "Direct messages:")
	} else {
		channels = s.guild.Channels
		fmt.Fprintln(s.out)
		fmt.Fprintf(s.out, "Channels in %s:\n", s.guild.Name)
	}

	names := make([]string, len(channels))
	for i, ch := range channels {
		if ch.Kind == domain.KindGuildText {
			names[i] = "#" + ch.Name
		} else {
			names[i] = ch.Name
		}
	}
	searchNames := make([]string, len(channels))
	for i, ch := range channels {
		searchNames[i] = ch.Name
	}

	idx, ok := s.selectFromList(names, searchNames, "Select a channel by number or enter a name to search")
	if !ok {
		if s.scope == browse.ScopeGuilds {
			return StateChooseServer
		}
		return StateMainMenu
	}
	s.channel = &channels[idx]
	fmt.Fprintf(s.out, "Selected: %s\n", s.channel.Label())
	return StateChooseCount
}

func (s *Shell) stepChooseCount() State {
	def := strconv.Itoa(s.cfg.DefaultCount)
	for {
		raw, ok := s.prompt("How many messages do you want to fetch?", def)
		if !ok || isCancel(raw) {
			return StateMainMenu
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fmt.Fprintln(s.out, "Please enter a positive number.")
			continue
		}
		s.count = n
		return StateChooseFormat
	}
}

func (s *Shell) stepChooseFormat() State {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Choose file format:")
	fmt.Fprintln(s.out, "  1. TXT  - plain text, human readable")
	fmt.Fprintln(s.out, "  2. JSON - structured data")
	fmt.Fprintln(s.out, "  3. CSV  - spreadsheet compatible")

	choice, ok := s.prompt("Select format", "1")
	if !ok || isCancel(choice) {
		return StateMainMenu
	}
	switch choice {
	case "1":
		s.format = export.FormatTXT
	case "2":
		s.format = export.FormatJSON
	case "3":
		s.format = export.FormatCSV
	default:
		if f, err := export.ParseFormat(choice); err == nil {
			s.format = f
		} else {
			fmt.Fprintln(s.out, "Invalid selection.")
			return StateChooseFormat
		}
	}
	return StateExecute
}

func (s *Shell) stepExecute(ctx context.Context) State {
	started := time.Now()

	fmt.Fprintf(s.out, "Fetching up to %d messages from %s...\n", s.count, s.channel.Label())
	msgs, err := s.client.FetchAll(ctx, s.channel.ID, s.count, func(fetched int) {
		fmt.Fprintf(s.out, "\r  fetched %d/%d", fetched, s.count)
	})
	fmt.Fprintln(s.out)

	if err != nil && len(msgs) == 0 {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(s.out, "Fetch cancelled.")
		} else {
			fmt.Fprintf(s.out, "Skipping %s: %v\n", s.channel.Label(), err)
		}
		return StateMainMenu
	}
	if err != nil {
		fmt.Fprintf(s.out, "Stopped early after %d messages: %v\n", len(msgs), err)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(s.out, "No messages were retrieved.")
		return StateMainMenu
	}

	batch := domain.NewExportBatch(*s.channel, msgs, time.Now())
	writer := s.newWriter(s.cfg.SaveDir)
	path, err := writer.Write(batch, s.format)
	if err != nil {
		fmt.Fprintf(s.out, "Could not save export: %v\n", err)
		return StateMainMenu
	}
	fmt.Fprintf(s.out, "Saved %d messages to %s\n", len(batch.Messages), path)

	if s.journal != nil {
		rec := history.Entry{
			ChannelID:    s.channel.ID,
			ChannelLabel: s.channel.Label(),
			Format:       string(s.format),
			FilePath:     path,
			MessageCount: len(batch.Messages),
			Duration:     time.Since(started),
		}
		if err := s.journal.Record(ctx, rec); err != nil {
			s.logger.Warn("could not record export history", "error", err)
		}
	}

	snap := s.stats.Snapshot()
	s.logger.Info("fetch complete",
		"messages", len(batch.Messages),
		"requests", snap.HTTPRequests,
		"retries", snap.HTTPRetries,
		"rate_limit_waits", snap.RateLimitWaits,
		"elapsed", time.Since(started).Round(time.Millisecond))

	return StateMainMenu
}

func (s *Shell) stepConfigureDirectory() State {
	fmt.Fprintf(s.out, "\nCurrent save directory: %s\n", s.cfg.SaveDir)
	dir, ok := s.prompt("New save directory", s.cfg.SaveDir)
	if !ok || isCancel(dir) {
		return StateMainMenu
	}

	dir = config.ExpandPath(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(s.out, "Could not create directory: %v\n", err)
		return StateConfigureDirectory
	}
	s.cfg.SaveDir = dir
	s.saveConfig()
	fmt.Fprintf(s.out, "Save directory set to %s\n", dir)
	return StateMainMenu
}

func (s *Shell) stepConfigureStorage() State {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Token storage method:")
	fmt.Fprintln(s.out, "  1. keyring - OS secure storage")
	fmt.Fprintln(s.out, "  2. file    - plaintext file in the config directory")
	fmt.Fprintln(s.out, "  3. env     - DISCORD_TOKEN environment variable (read-only)")
	fmt.Fprintln(s.out, "  4. prompt  - ask on every run")

	choice, ok := s.prompt("Select method", s.cfg.CredentialStorage)
	if !ok || isCancel(choice) {
		return StateMainMenu
	}

	methods := map[string]string{
		"1": "keyring", "2": "file", "3": "env", "4": "prompt",
		"keyring": "keyring", "file": "file", "env": "env", "prompt": "prompt",
	}
	method, known := methods[choice]
	if !known {
		fmt.Fprintln(s.out, "Invalid selection.")
		return StateConfigureStorage
	}
	s.cfg.CredentialStorage = method
	s.saveConfig()
	fmt.Fprintf(s.out, "Token storage set to %s. Takes effect on next start.\n", method)
	return StateMainMenu
}

func (s *Shell) stepManageToken() State {
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "Token source this session: %s\n", s.source)
	fmt.Fprintln(s.out, "  1. Save a new token to the configured store")
	fmt.Fprintln(s.out, "  2. Clear the stored token")
	fmt.Fprintln(s.out, "  3. Back")

	choice, ok := s.prompt("Select option", "3")
	if !ok || isCancel(choice) || choice == "3" {
		return StateMainMenu
	}

	if s.tokens == nil {
		fmt.Fprintln(s.out, "No writable token store configured.")
		return StateMainMenu
	}

	switch choice {
	case "1":
		raw, ok := s.prompt("Paste the new token", "")
		if !ok || isCancel(raw) || raw == "" {
			return StateManageToken
		}
		if err := s.tokens.Save(domain.NormalizeToken(raw)); err != nil {
			fmt.Fprintf(s.out, "Could not save token: %v\n", err)
		} else {
			fmt.Fprintf(s.out, "Token saved to %s store.\n", s.tokens.Name())
		}
	case "2":
		if err := s.tokens.Clear(); err != nil {
			fmt.Fprintf(s.out, "Could not clear token: %v\n", err)
		} else {
			fmt.Fprintf(s.out, "Token cleared from %s store.\n", s.tokens.Name())
		}
	default:
		fmt.Fprintln(s.out, "Invalid selection.")
		return StateManageToken
	}
	return StateMainMenu
}

func (s *Shell) stepShowHistory(ctx context.Context) State {
	if s.journal == nil {
		fmt.Fprintln(s.out, "Export history is not available.")
		return StateMainMenu
	}

	entries, err := s.journal.Recent(ctx, 10)
	if err != nil {
		fmt.Fprintf(s.out, "Could not read history: %v\n", err)
		return StateMainMenu
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No exports recorded yet.")
		return StateMainMenu
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Recent exports:")
	for _, e := range entries {
		fmt.Fprintf(s.out, "  %s  %-30s %5d msgs  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.ChannelLabel, e.MessageCount, e.FilePath)
	}
	return StateMainMenu
}

func (s *Shell) saveConfig() {
	if s.cfgPath == "" {
		return
	}
	if err := config.Save(s.cfgPath, s.cfg); err != nil {
		fmt.Fprintf(s.out, "Could not save config: %v\n", err)
	}
}

func (s *Shell) resetFlow() {
	s.catalog = nil
	s.guild = nil
	s.channel = nil
	s.count = 0
	s.format = ""
}
