package store

import (
	"encoding/json"
	"fmt"

	"github.com/ditto-assistant/ai/pkg/chat"
)

func encodeMessage(m chat.Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message %s: %w", m.ID, err)
	}
	return data, nil
}

func decodeMessage(data []byte) (chat.Message, error) {
	var m chat.Message
	if err := json.Unmarshal(data, &m); err != nil {
		return chat.Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return m, nil
}
