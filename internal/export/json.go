package export

import (
	"encoding/json"
	"fmt"
	"time"

	"discofetch/internal/domain"
)

type jsonChannelInfo struct {
	ChannelName  string `json:"channel_name"`
	ExportTime   string `json:"export_time"`
	MessageCount int    `json:"message_count"`
}

type jsonExport struct {
	ChannelInfo jsonChannelInfo  `json:"channel_info"`
	Messages    []domain.Message `json:"messages"`
}

func renderJSON(batch domain.ExportBatch) ([]byte, error) {
	doc := jsonExport{
		ChannelInfo: jsonChannelInfo{
			ChannelName:  batch.Channel.Label(),
			ExportTime:   batch.ExportedAt.Format(time.RFC3339),
			MessageCount: len(batch.Messages),
		},
		Messages: batch.Messages,
	}
	if doc.Messages == nil {
		doc.Messages = []domain.Message{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode JSON export: %w", err)
	}
	return append(data, '\n'), nil
}
