// Package export turns a finalized message batch into file content and writes
// it under the configured save directory. Rendering is pure; only the Writer
// touches the filesystem.
package export

import (
	"fmt"
	"strings"

	"discofetch/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Formats lists the supported formats in menu order.
func Formats() []Format {
	return []Format{FormatTXT, FormatJSON, FormatCSV}
}

// ParseFormat accepts a format name, case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatTXT, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown format %q (want txt, json, or csv)", s)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string { return string(f) }

// Render produces the file content for a batch. The batch is never mutated;
// every format carries the same messages in the same chronological order.
func Render(batch domain.ExportBatch, format Format) ([]byte, error) {
	switch format {
	case FormatTXT:
		return renderTXT(batch), nil
	case FormatJSON:
		return renderJSON(batch)
	case FormatCSV:
		return renderCSV(batch)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
