package domain

import (
	"sort"
	"time"
)

// ExportBatch is a finalized, chronologically ordered message set bound to one
// channel. Written once, never mutated.
type ExportBatch struct {
	Channel    Channel
	ExportedAt time.Time
	Messages   []Message
}

// NewExportBatch copies msgs and sorts them oldest-first. The input slice is
// not aliased or reordered.
func NewExportBatch(ch Channel, msgs []Message, exportedAt time.Time) ExportBatch {
	sorted := make([]Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return ExportBatch{
		Channel:    ch,
		ExportedAt: exportedAt,
		Messages:   sorted,
	}
}
