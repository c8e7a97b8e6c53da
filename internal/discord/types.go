package discord

import (
	"fmt"
	"time"

	"discofetch/internal/domain"
)

// Channel type codes used by the Discord API.
const (
	channelTypeGuildText = 0
	channelTypeDM        = 1
	channelTypeGroupDM   = 3
)

type apiUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
}

type apiGuild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiChannel struct {
	ID         string    `json:"id"`
	Type       int       `json:"type"`
	Name       string    `json:"name"`
	GuildID    string    `json:"guild_id"`
	Recipients []apiUser `json:"recipients"`
}

type apiAttachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

type apiMessage struct {
	ID              string          `json:"id"`
	ChannelID       string          `json:"channel_id"`
	Author          apiUser         `json:"author"`
	Content         string          `json:"content"`
	Timestamp       string          `json:"timestamp"`
	EditedTimestamp string          `json:"edited_timestamp"`
	Attachments     []apiAttachment `json:"attachments"`
}

// dmName mirrors the labels the original web client shows: the recipient for
// one-on-one DMs, the group name or member count for group DMs.
func (c apiChannel) dmName() string {
	switch c.Type {
	case channelTypeDM:
		if len(c.Recipients) > 0 {
			return "DM with " + c.Recipients[0].Username
		}
		return "DM"
	case channelTypeGroupDM:
		if c.Name != "" {
			return c.Name
		}
		return fmt.Sprintf("Group with %d members", len(c.Recipients))
	default:
		return c.Name
	}
}

func (c apiChannel) toDomainDM() domain.Channel {
	kind := domain.KindDM
	if c.Type == channelTypeGroupDM {
		kind = domain.KindGroupDM
	}
	return domain.Channel{
		ID:   c.ID,
		Name: c.dmName(),
		Kind: kind,
	}
}

func (c apiChannel) toDomainGuildChannel(g domain.Guild) domain.Channel {
	return domain.Channel{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      domain.KindGuildText,
		GuildID:   g.ID,
		GuildName: g.Name,
	}
}

func (m apiMessage) toDomain() domain.Message {
	msg := domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Author: domain.Author{
			ID:            m.Author.ID,
			Username:      m.Author.Username,
			Discriminator: m.Author.Discriminator,
			GlobalName:    m.Author.GlobalName,
		},
		Content:   m.Content,
		Timestamp: parseTimestamp(m.Timestamp),
	}
	if m.EditedTimestamp != "" {
		t := parseTimestamp(m.EditedTimestamp)
		msg.EditedAt = &t
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			ID:       a.ID,
			Filename: a.Filename,
			URL:      a.URL,
			Size:     a.Size,
		})
	}
	return msg
}

// parseTimestamp handles the API's ISO 8601 timestamps, which come with either
// a numeric offset or a trailing Z. An unparseable timestamp yields the zero
// time rather than failing the whole page.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
