package events

const (
	ChatStreamStartEventName = "chat-stream-start"
	ChatStreamDeltaEventName = "chat-stream-delta"
	ChatStreamDoneEventName  = "chat-stream-done"
	ChatStreamErrorEventName = "chat-stream-error"

	ChatToolCallEventName    = "chat-tool-call"
	ChatMessagesAddEventName = "chat-messages-add"

	CompletionDoneEventName = "completion-done"
)
