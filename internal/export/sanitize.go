package export

import "regexp"

var (
	unsafeChars     = regexp.MustCompile(`[^\w\-.]`)
	underscoreRuns  = regexp.MustCompile(`_{2,}`)
	edgeUnderscores = regexp.MustCompile(`^_+|_+$`)
)

// Sanitize reduces a channel label to a filesystem-safe token: anything
// outside [A-Za-z0-9_.-] becomes an underscore, runs collapse, edges are
// trimmed. Idempotent. A label with nothing left falls back to
// "discord_channel".
func Sanitize(name string) string {
	safe := unsafeChars.ReplaceAllString(name, "_")
	safe = underscoreRuns.ReplaceAllString(safe, "_")
	safe = edgeUnderscores.ReplaceAllString(safe, "")
	if safe == "" {
		return "discord_channel"
	}
	return safe
}
