package domain

import "time"

// Author identifies the sender of a message.
type Author struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name,omitempty"`
}

// DisplayTag renders the classic username#discriminator tag. Accounts migrated
// to the new username system have discriminator "0" and render as the bare name.
func (a Author) DisplayTag() string {
	if a.Discriminator == "" || a.Discriminator == "0" {
		return a.Username
	}
	return a.Username + "#" + a.Discriminator
}

// Attachment is a file attached to a message, referenced by URL.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
}

// Message is a single chat message, immutable once fetched.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	Author      Author       `json:"author"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	EditedAt    *time.Time   `json:"edited_timestamp,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
