package discord

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	// The API sends ISO 8601 with a numeric offset.
	got := parseTimestamp("2024-05-01T12:30:45.123456+00:00")
	want := time.Date(2024, 5, 1, 12, 30, 45, 123456000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Z-suffixed form.
	got = parseTimestamp("2024-05-01T12:30:45Z")
	if !got.Equal(time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}

	// Garbage yields zero time rather than failing the page.
	if !parseTimestamp("not-a-time").IsZero() {
		t.Error("expected zero time for unparseable input")
	}
}

func TestMessageToDomain(t *testing.T) {
	edited := "2024-05-01T13:00:00+00:00"
	m := apiMessage{
		ID:              "100",
		ChannelID:       "c1",
		Author:          apiUser{ID: "1", Username: "alice", Discriminator: "1234"},
		Content:         "hello",
		Timestamp:       "2024-05-01T12:00:00+00:00",
		EditedTimestamp: edited,
		Attachments: []apiAttachment{
			{ID: "a1", Filename: "pic.png", URL: "https://cdn.example/pic.png", Size: 1024},
		},
	}

	msg := m.toDomain()
	if msg.ID != "100" || msg.Author.Username != "alice" || msg.Content != "hello" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.EditedAt == nil || msg.EditedAt.Hour() != 13 {
		t.Errorf("edited timestamp not carried: %v", msg.EditedAt)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "pic.png" {
		t.Errorf("attachments not carried: %+v", msg.Attachments)
	}
}
