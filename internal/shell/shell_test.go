package shell

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"discofetch/internal/config"
	"discofetch/internal/domain"
	"discofetch/internal/export"
	"discofetch/internal/history"
)

type fakeFetcher struct {
	dms      []domain.Channel
	guilds   []domain.Guild
	messages []domain.Message

	fetchedChannel string
	fetchedCount   int
	fetchErr       error
}

func (f *fakeFetcher) ListDMs(ctx context.Context) ([]domain.Channel, error) {
	return f.dms, nil
}

func (f *fakeFetcher) ListGuilds(ctx context.Context) ([]domain.Guild, error) {
	return f.guilds, nil
}

func (f *fakeFetcher) ListGuildChannels(ctx context.Context, g domain.Guild) ([]domain.Channel, error) {
	for _, known := range f.guilds {
		if known.ID == g.ID {
			return known.Channels, nil
		}
	}
	return nil, nil
}

func (f *fakeFetcher) FetchAll(ctx context.Context, channelID string, total int, progress func(int)) ([]domain.Message, error) {
	f.fetchedChannel = channelID
	f.fetchedCount = total
	if progress != nil {
		progress(len(f.messages))
	}
	return f.messages, f.fetchErr
}

type fakeWriter struct {
	batch  domain.ExportBatch
	format export.Format
	calls  int
}

func (w *fakeWriter) Write(batch domain.ExportBatch, format export.Format) (string, error) {
	w.calls++
	w.batch = batch
	w.format = format
	return "/exports/out." + format.Ext(), nil
}

type fakeJournal struct {
	recorded []history.Entry
}

func (j *fakeJournal) Record(ctx context.Context, e history.Entry) error {
	j.recorded = append(j.recorded, e)
	return nil
}

func (j *fakeJournal) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit < len(j.recorded) {
		return j.recorded[:limit], nil
	}
	return j.recorded, nil
}

type fakeTokenStore struct {
	saved   string
	cleared bool
}

func (s *fakeTokenStore) Name() string          { return "fake" }
func (s *fakeTokenStore) Load() (string, error) { return s.saved, nil }
func (s *fakeTokenStore) Save(tok string) error { s.saved = tok; return nil }
func (s *fakeTokenStore) Clear() error          { s.cleared = true; return nil }

func msg(id, author, content string, ts time.Time) domain.Message {
	return domain.Message{
		ID:        id,
		Author:    domain.Author{ID: "u-" + author, Username: author, Discriminator: "0"},
		Content:   content,
		Timestamp: ts,
	}
}

type fixture struct {
	shell   *Shell
	fetcher *fakeFetcher
	writer  *fakeWriter
	journal *fakeJournal
	tokens  *fakeTokenStore
	out     *strings.Builder
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()

	fetcher := &fakeFetcher{
		dms: []domain.Channel{
			{ID: "d1", Name: "DM with alice", Kind: domain.KindDM},
			{ID: "d2", Name: "DM with bob", Kind: domain.KindDM},
		},
		guilds: []domain.Guild{
			{ID: "g1", Name: "My Server", Channels: []domain.Channel{
				{ID: "c1", Name: "general", Kind: domain.KindGuildText, GuildID: "g1", GuildName: "My Server"},
				{ID: "c2", Name: "random", Kind: domain.KindGuildText, GuildID: "g1", GuildName: "My Server"},
			}},
		},
		messages: []domain.Message{
			msg("1", "alice", "hello", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
			msg("2", "bob", "hi", time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)),
		},
	}
	writer := &fakeWriter{}
	journal := &fakeJournal{}
	tokens := &fakeTokenStore{}
	out := &strings.Builder{}

	cfg := config.Defaults()
	cfg.SaveDir = t.TempDir()

	sh := New(Options{
		Config:      cfg,
		Client:      fetcher,
		History:     journal,
		TokenStore:  tokens,
		TokenSource: "env",
		In:          strings.NewReader(input),
		Out:         out,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewWriter:   func(string) BatchWriter { return writer },
	})
	return &fixture{shell: sh, fetcher: fetcher, writer: writer, journal: journal, tokens: tokens, out: out}
}

func TestShell_ExitImmediately(t *testing.T) {
	f := newFixture(t, "6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(f.out.String(), "Main menu") {
		t.Errorf("main menu never shown:\n%s", f.out.String())
	}
}

func TestShell_EOFExitsCleanly(t *testing.T) {
	f := newFixture(t, "")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestShell_FetchDMByNumber(t *testing.T) {
	// fetch -> DMs -> channel 2 -> 50 messages -> JSON -> exit
	f := newFixture(t, "1\n1\n2\n50\n2\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if f.fetcher.fetchedChannel != "d2" {
		t.Errorf("fetched channel = %q, want d2", f.fetcher.fetchedChannel)
	}
	if f.fetcher.fetchedCount != 50 {
		t.Errorf("fetched count = %d, want 50", f.fetcher.fetchedCount)
	}
	if f.writer.calls != 1 || f.writer.format != export.FormatJSON {
		t.Errorf("writer calls=%d format=%q", f.writer.calls, f.writer.format)
	}
	if len(f.journal.recorded) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(f.journal.recorded))
	}
	if f.journal.recorded[0].ChannelID != "d2" || f.journal.recorded[0].MessageCount != 2 {
		t.Errorf("journal entry = %+v", f.journal.recorded[0])
	}
}

func TestShell_FetchServerChannelBySearch(t *testing.T) {
	// fetch -> servers -> search "my" (single match) -> search "ran" -> default
	// count -> default format (txt) -> exit
	f := newFixture(t, "1\n2\nmy\nran\n\n\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if f.fetcher.fetchedChannel != "c2" {
		t.Errorf("fetched channel = %q, want c2", f.fetcher.fetchedChannel)
	}
	if f.fetcher.fetchedCount != config.Defaults().DefaultCount {
		t.Errorf("fetched count = %d, want default", f.fetcher.fetchedCount)
	}
	if f.writer.format != export.FormatTXT {
		t.Errorf("format = %q, want txt", f.writer.format)
	}
	if got := f.writer.batch.Channel.Label(); got != "#random (My Server)" {
		t.Errorf("batch channel label = %q", got)
	}
}

func TestShell_SearchMultipleMatches(t *testing.T) {
	// DMs: search "dm" matches both, pick the second from the sub-prompt.
	f := newFixture(t, "1\n1\ndm\n2\n10\n1\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.fetcher.fetchedChannel != "d2" {
		t.Errorf("fetched channel = %q, want d2", f.fetcher.fetchedChannel)
	}
	if !strings.Contains(f.out.String(), "2 matches") {
		t.Errorf("sub-prompt not shown:\n%s", f.out.String())
	}
}

func TestShell_InvalidCountReprompts(t *testing.T) {
	f := newFixture(t, "1\n1\n1\nzero\n-5\n25\n1\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.fetcher.fetchedCount != 25 {
		t.Errorf("fetched count = %d, want 25", f.fetcher.fetchedCount)
	}
	if !strings.Contains(f.out.String(), "positive number") {
		t.Errorf("no validation message:\n%s", f.out.String())
	}
}

func TestShell_CancelReturnsToMainMenu(t *testing.T) {
	// Enter the fetch flow, cancel at the channel step, then exit. Nothing
	// should be fetched or written.
	f := newFixture(t, "1\n1\nb\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.fetcher.fetchedChannel != "" {
		t.Errorf("fetch ran after cancel: %q", f.fetcher.fetchedChannel)
	}
	if f.writer.calls != 0 {
		t.Errorf("writer called after cancel")
	}
}

func TestShell_FetchErrorSkipsExport(t *testing.T) {
	f := newFixture(t, "1\n1\n1\n10\n1\n6\n")
	f.fetcher.messages = nil
	f.fetcher.fetchErr = fmt.Errorf("channel is not accessible")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.writer.calls != 0 {
		t.Errorf("writer called despite failed fetch")
	}
	if len(f.journal.recorded) != 0 {
		t.Errorf("journal recorded a failed fetch")
	}
	if !strings.Contains(f.out.String(), "Skipping") {
		t.Errorf("no skip notice:\n%s", f.out.String())
	}
}

func TestShell_PartialFetchStillExports(t *testing.T) {
	f := newFixture(t, "1\n1\n1\n10\n1\n6\n")
	f.fetcher.fetchErr = fmt.Errorf("rate limited past retry budget")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.writer.calls != 1 {
		t.Fatalf("partial batch not exported")
	}
	if len(f.writer.batch.Messages) != 2 {
		t.Errorf("batch size = %d, want 2", len(f.writer.batch.Messages))
	}
	if !strings.Contains(f.out.String(), "Stopped early") {
		t.Errorf("no partial notice:\n%s", f.out.String())
	}
}

func TestShell_ConfigureDirectory(t *testing.T) {
	dir := t.TempDir() + "/exports"
	f := newFixture(t, "2\n"+dir+"\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.shell.cfg.SaveDir != dir {
		t.Errorf("save dir = %q, want %q", f.shell.cfg.SaveDir, dir)
	}
}

func TestShell_ConfigureStorage(t *testing.T) {
	f := newFixture(t, "3\n2\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.shell.cfg.CredentialStorage != "file" {
		t.Errorf("storage = %q, want file", f.shell.cfg.CredentialStorage)
	}
}

func TestShell_ManageTokenSaveAndClear(t *testing.T) {
	f := newFixture(t, "4\n1\n  tok-123  \n4\n2\n6\n")
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.tokens.saved != "tok-123" {
		t.Errorf("saved token = %q, want normalized tok-123", f.tokens.saved)
	}
	if !f.tokens.cleared {
		t.Errorf("token not cleared")
	}
}

func TestShell_HistoryListing(t *testing.T) {
	f := newFixture(t, "5\n6\n")
	f.journal.recorded = []history.Entry{{
		ChannelLabel: "DM with alice",
		MessageCount: 42,
		FilePath:     "/exports/a.txt",
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}}
	if err := f.shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(f.out.String(), "DM with alice") {
		t.Errorf("history entry not listed:\n%s", f.out.String())
	}
}
