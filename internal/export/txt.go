package export

import (
	"bytes"
	"fmt"
	"strings"

	"discofetch/internal/domain"
)

// dateSeparator uses U+2015 horizontal bars, matching what readers of the
// exports already expect.
const dateSeparator = "―――――"

const noContentPlaceholder = "[No text content]"

func renderTXT(batch domain.ExportBatch) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Discord Messages from %s\n", batch.Channel.Label())
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	var currentDate string
	for _, msg := range batch.Messages {
		ts := msg.Timestamp.UTC()
		day := ts.Format("2006-01-02")
		if day != currentDate {
			if currentDate != "" {
				buf.WriteByte('\n')
			}
			fmt.Fprintf(&buf, "\n%s %s %s\n\n", dateSeparator, ts.Format("Monday, January 02, 2006"), dateSeparator)
			currentDate = day
		}

		content := msg.Content
		if content == "" {
			content = noContentPlaceholder
		}
		fmt.Fprintf(&buf, "%s - %s: %s\n", ts.Format("15:04:05"), msg.Author.Username, content)

		for _, att := range msg.Attachments {
			fmt.Fprintf(&buf, "[Attachment: %s - %s]\n", att.Filename, att.URL)
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}
