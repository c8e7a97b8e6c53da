package domain

import "fmt"

// ChannelKind classifies a message container.
type ChannelKind int

const (
	KindDM ChannelKind = iota
	KindGroupDM
	KindGuildText
)

func (k ChannelKind) String() string {
	switch k {
	case KindDM:
		return "DM"
	case KindGroupDM:
		return "Group DM"
	case KindGuildText:
		return "Server Channel"
	default:
		return "Unknown"
	}
}

// Channel is an addressable message container: a DM, a group DM, or a text
// channel inside a guild. Snapshots are immutable for the session.
type Channel struct {
	ID        string
	Name      string
	Kind      ChannelKind
	GuildID   string // empty for DMs
	GuildName string // empty for DMs
}

// Label is the human-readable name shown in menus and used to derive export
// filenames.
func (c Channel) Label() string {
	if c.Kind == KindGuildText && c.GuildName != "" {
		return fmt.Sprintf("#%s (%s)", c.Name, c.GuildName)
	}
	return c.Name
}

// Guild is a server the user belongs to.
type Guild struct {
	ID       string
	Name     string
	Channels []Channel
}

// User is the authenticated account, as reported by the platform.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name,omitempty"`
}
