// Package stream implements the wire protocol spoken between the chat
// server and the client runtimes: a server-sent-event stream carrying the
// incremental pieces of one model response.
package stream

import (
	"github.com/ditto-assistant/ai/pkg/chat"
)

// Event types emitted during one response stream.
const (
	EventStart    = "start"
	EventDelta    = "delta"
	EventToolCall = "tool_call"
	EventData     = "data"
	EventDone     = "done"
	EventError    = "error"
)

// Event is one frame of the stream: a type tag and its raw JSON payload.
type Event struct {
	Type string
	Data []byte
}

// StartPayload opens a stream and names the chat it belongs to.
type StartPayload struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
}

// DeltaPayload carries one text fragment of the assistant message.
type DeltaPayload struct {
	Content string `json:"content"`
}

// ToolCallPayload carries a completed tool call.
type ToolCallPayload struct {
	ToolCall chat.ToolCall `json:"tool_call"`
}

// DataPayload carries an application-defined value interleaved with the
// response.
type DataPayload struct {
	Data chat.JSONValue `json:"data"`
}

// DonePayload closes a stream with the fully assembled message.
type DonePayload struct {
	Message chat.Message `json:"message"`
}

// ErrorPayload closes a stream with an error description.
type ErrorPayload struct {
	Error string `json:"error"`
}
