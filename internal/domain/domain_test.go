package domain

import (
	"testing"
	"time"
)

func TestDisplayTag(t *testing.T) {
	a := Author{Username: "alice", Discriminator: "1234"}
	if got := a.DisplayTag(); got != "alice#1234" {
		t.Errorf("DisplayTag = %q, want alice#1234", got)
	}

	// Migrated accounts have discriminator "0".
	a = Author{Username: "bob", Discriminator: "0"}
	if got := a.DisplayTag(); got != "bob" {
		t.Errorf("DisplayTag = %q, want bob", got)
	}

	a = Author{Username: "carol"}
	if got := a.DisplayTag(); got != "carol" {
		t.Errorf("DisplayTag = %q, want carol", got)
	}
}

func TestChannelLabel(t *testing.T) {
	ch := Channel{Name: "general", Kind: KindGuildText, GuildID: "1", GuildName: "My Server"}
	if got := ch.Label(); got != "#general (My Server)" {
		t.Errorf("Label = %q", got)
	}

	dm := Channel{Name: "DM with alice", Kind: KindDM}
	if got := dm.Label(); got != "DM with alice" {
		t.Errorf("Label = %q", got)
	}
}

func TestNewExportBatch_SortsOldestFirst(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "3", Timestamp: base.Add(2 * time.Hour)},
		{ID: "1", Timestamp: base},
		{ID: "2", Timestamp: base.Add(time.Hour)},
	}

	batch := NewExportBatch(Channel{Name: "general"}, msgs, time.Now())

	for i, want := range []string{"1", "2", "3"} {
		if batch.Messages[i].ID != want {
			t.Errorf("messages[%d] = %s, want %s", i, batch.Messages[i].ID, want)
		}
	}

	// The input slice must not be reordered.
	if msgs[0].ID != "3" {
		t.Error("NewExportBatch mutated its input slice")
	}
}

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"  abc  ":     "abc",
		`"abc"`:       "abc",
		"'abc'":       "abc",
		"\n\"abc\"\n": "abc",
		"abc":         "abc",
	}
	for in, want := range cases {
		if got := NormalizeToken(in); got != want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
