package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"discofetch/internal/domain"
)

var csvHeader = []string{
	"Timestamp", "Date", "Time", "Author", "Username", "Author_ID",
	"Message", "Attachments",
}

// attachmentDelimiter joins multiple attachments into one CSV cell.
const attachmentDelimiter = "; "

func renderCSV(batch domain.ExportBatch) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}

	for _, msg := range batch.Messages {
		ts := msg.Timestamp.UTC()

		parts := make([]string, 0, len(msg.Attachments))
		for _, att := range msg.Attachments {
			parts = append(parts, fmt.Sprintf("%s (%s)", att.Filename, att.URL))
		}

		row := []string{
			ts.Format(time.RFC3339),
			ts.Format("2006-01-02"),
			ts.Format("15:04:05"),
			msg.Author.Username,
			msg.Author.DisplayTag(),
			msg.Author.ID,
			msg.Content,
			strings.Join(parts, attachmentDelimiter),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
