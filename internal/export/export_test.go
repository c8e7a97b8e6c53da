package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"discofetch/internal/domain"
)

func sampleBatch() domain.ExportBatch {
	ch := domain.Channel{ID: "c1", Name: "general", Kind: domain.KindGuildText, GuildID: "g1", GuildName: "My Server"}
	day1 := time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 18, 45, 30, 0, time.UTC)
	msgs := []domain.Message{
		{
			ID: "1", ChannelID: "c1",
			Author:    domain.Author{ID: "u1", Username: "alice", Discriminator: "1234"},
			Content:   "first message",
			Timestamp: day1,
		},
		{
			ID: "2", ChannelID: "c1",
			Author:    domain.Author{ID: "u2", Username: "bob", Discriminator: "0"},
			Content:   "",
			Timestamp: day1.Add(time.Minute),
			Attachments: []domain.Attachment{
				{ID: "a1", Filename: "cat.png", URL: "https://cdn.example/cat.png"},
				{ID: "a2", Filename: "dog.jpg", URL: "https://cdn.example/dog.jpg"},
			},
		},
		{
			ID: "3", ChannelID: "c1",
			Author:    domain.Author{ID: "u1", Username: "alice", Discriminator: "1234"},
			Content:   "next day",
			Timestamp: day2,
		},
	}
	return domain.NewExportBatch(ch, msgs, time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC))
}

// --- Sanitize ---

func TestSanitize(t *testing.T) {
	got := Sanitize("Server Name/Test!")
	if got != "Server_Name_Test" {
		t.Errorf("Sanitize = %q, want Server_Name_Test", got)
	}
	if strings.ContainsAny(got, "/\\ \t") {
		t.Errorf("sanitized name contains separators or whitespace: %q", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	for _, name := range []string{
		"Server Name/Test!",
		"#general (My Server)",
		"DM with alice",
		"___",
		"ünïcödé çhännel",
	} {
		once := Sanitize(name)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", name, once, twice)
		}
	}
}

func TestSanitize_EmptyFallsBack(t *testing.T) {
	if got := Sanitize("!!!"); got != "discord_channel" {
		t.Errorf("Sanitize(\"!!!\") = %q, want discord_channel", got)
	}
	if got := Sanitize(""); got != "discord_channel" {
		t.Errorf("Sanitize(\"\") = %q", got)
	}
}

// --- TXT ---

func TestRenderTXT_Layout(t *testing.T) {
	out := string(renderTXT(sampleBatch()))

	if !strings.HasPrefix(out, "Discord Messages from #general (My Server)\n") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat("=", 50)) {
		t.Error("missing rule line")
	}
	if !strings.Contains(out, "――――― Wednesday, May 01, 2024 ―――――") {
		t.Errorf("missing first date separator:\n%s", out)
	}
	if !strings.Contains(out, "――――― Thursday, May 02, 2024 ―――――") {
		t.Error("missing second date separator")
	}
	if !strings.Contains(out, "09:15:00 - alice: first message\n") {
		t.Errorf("missing message line:\n%s", out)
	}
	if !strings.Contains(out, "09:16:00 - bob: [No text content]\n") {
		t.Error("empty content should render the placeholder")
	}
	if !strings.Contains(out, "[Attachment: cat.png - https://cdn.example/cat.png]\n") {
		t.Error("missing attachment line")
	}

	// Chronological order within the file.
	first := strings.Index(out, "first message")
	second := strings.Index(out, "next day")
	if first == -1 || second == -1 || first > second {
		t.Error("messages out of order in TXT export")
	}
}

// --- JSON ---

func TestRenderJSON_CountAndOrder(t *testing.T) {
	batch := sampleBatch()
	data, err := renderJSON(batch)
	if err != nil {
		t.Fatalf("renderJSON: %v", err)
	}

	var doc struct {
		ChannelInfo struct {
			ChannelName  string `json:"channel_name"`
			ExportTime   string `json:"export_time"`
			MessageCount int    `json:"message_count"`
		} `json:"channel_info"`
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.ChannelInfo.MessageCount != 3 {
		t.Errorf("message_count = %d, want 3", doc.ChannelInfo.MessageCount)
	}
	if doc.ChannelInfo.ChannelName != "#general (My Server)" {
		t.Errorf("channel_name = %q", doc.ChannelInfo.ChannelName)
	}
	if len(doc.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(doc.Messages))
	}
	for i, want := range []string{"1", "2", "3"} {
		if doc.Messages[i].ID != want {
			t.Errorf("messages[%d].ID = %s, want %s", i, doc.Messages[i].ID, want)
		}
	}
	if doc.Messages[0].Author.Username != "alice" || doc.Messages[0].Content != "first message" {
		t.Errorf("author/body mismatch: %+v", doc.Messages[0])
	}
	if len(doc.Messages[1].Attachments) != 2 {
		t.Errorf("attachments not preserved: %+v", doc.Messages[1])
	}
}

// --- CSV ---

func TestRenderCSV_Columns(t *testing.T) {
	data, err := renderCSV(sampleBatch())
	if err != nil {
		t.Fatalf("renderCSV: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(rows) != 4 { // header + 3 messages
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	wantHeader := []string{"Timestamp", "Date", "Time", "Author", "Username", "Author_ID", "Message", "Attachments"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	first := rows[1]
	if first[1] != "2024-05-01" || first[2] != "09:15:00" {
		t.Errorf("date/time = %q/%q", first[1], first[2])
	}
	if first[3] != "alice" || first[4] != "alice#1234" || first[5] != "u1" {
		t.Errorf("author columns = %v", first[3:6])
	}
	if first[6] != "first message" {
		t.Errorf("message column = %q", first[6])
	}

	// Attachments joined with the delimiter; migrated account keeps bare name.
	second := rows[2]
	if second[4] != "bob" {
		t.Errorf("username tag for discriminator 0 = %q, want bob", second[4])
	}
	if second[7] != "cat.png (https://cdn.example/cat.png); dog.jpg (https://cdn.example/dog.jpg)" {
		t.Errorf("attachments column = %q", second[7])
	}
}

// --- Cross-format parity ---

func TestFormats_SameMessagesSameOrder(t *testing.T) {
	batch := sampleBatch()

	txt := string(renderTXT(batch))
	jsonData, _ := renderJSON(batch)
	csvData, _ := renderCSV(batch)

	var doc struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(csvData))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Messages) != len(batch.Messages) || len(rows)-1 != len(batch.Messages) {
		t.Fatalf("message counts diverge: json=%d csv=%d want=%d",
			len(doc.Messages), len(rows)-1, len(batch.Messages))
	}

	lastIdx := -1
	for i, msg := range batch.Messages {
		if doc.Messages[i].ID != msg.ID {
			t.Errorf("JSON order diverges at %d", i)
		}
		if rows[i+1][5] != msg.Author.ID {
			t.Errorf("CSV order diverges at %d", i)
		}
		if msg.Content != "" {
			idx := strings.Index(txt, msg.Content)
			if idx == -1 {
				t.Errorf("TXT missing content of message %s", msg.ID)
			} else if idx < lastIdx {
				t.Errorf("TXT order diverges at message %s", msg.ID)
			}
			lastIdx = idx
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"txt": FormatTXT, "TXT": FormatTXT, "text": FormatTXT,
		"json": FormatJSON, "csv": FormatCSV,
	} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
