package events

import (
	"github.com/ditto-assistant/ai/pkg/chat"
)

type ChatStreamStartEvent struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
}

func (e ChatStreamStartEvent) Subject() string { return ChatStreamStartEventName }

type ChatStreamDeltaEvent struct {
	ChatID string `json:"chat_id"`
	Delta  string `json:"delta"`
}

func (e ChatStreamDeltaEvent) Subject() string { return ChatStreamDeltaEventName }

type ChatStreamDoneEvent struct {
	ChatID  string       `json:"chat_id"`
	Message chat.Message `json:"message"`
}

func (e ChatStreamDoneEvent) Subject() string { return ChatStreamDoneEventName }

type ChatStreamErrorEvent struct {
	ChatID string `json:"chat_id"`
	Error  string `json:"error"`
}

func (e ChatStreamErrorEvent) Subject() string { return ChatStreamErrorEventName }

type ChatToolCallEvent struct {
	ChatID   string        `json:"chat_id"`
	ToolCall chat.ToolCall `json:"tool_call"`
}

func (e ChatToolCallEvent) Subject() string { return ChatToolCallEventName }

type ChatMessagesAddEvent struct {
	ChatID   string         `json:"chat_id"`
	Messages []chat.Message `json:"messages"`
}

func (e ChatMessagesAddEvent) Subject() string { return ChatMessagesAddEventName }

type CompletionDoneEvent struct {
	ChatID     string `json:"chat_id"`
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

func (e CompletionDoneEvent) Subject() string { return CompletionDoneEventName }
