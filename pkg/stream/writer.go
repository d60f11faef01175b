package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ditto-assistant/ai/pkg/chat"
)

// Writer frames events onto an HTTP response as server-sent events.
type Writer struct {
	w     io.Writer
	flush func()
}

// NewWriter prepares w for event streaming and returns a Writer over it.
func NewWriter(w http.ResponseWriter) *Writer {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")

	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	return &Writer{w: w, flush: flush}
}

// NewWriterTo returns a Writer over a plain io.Writer, for tests and
// non-HTTP sinks.
func NewWriterTo(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Send frames a single event.
func (w *Writer) Send(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	if _, err := fmt.Fprintf(w.w, "event: %s\ndata: %s\n\n", eventType, data); err != nil {
		return fmt.Errorf("failed to write %s event: %w", eventType, err)
	}
	if w.flush != nil {
		w.flush()
	}
	return nil
}

// Start opens the stream.
func (w *Writer) Start(chatID, messageID string) error {
	return w.Send(EventStart, StartPayload{ChatID: chatID, MessageID: messageID})
}

// Delta emits one text fragment.
func (w *Writer) Delta(content string) error {
	return w.Send(EventDelta, DeltaPayload{Content: content})
}

// ToolCall emits a completed tool call.
func (w *Writer) ToolCall(tc chat.ToolCall) error {
	return w.Send(EventToolCall, ToolCallPayload{ToolCall: tc})
}

// Data emits an application-defined value.
func (w *Writer) Data(v chat.JSONValue) error {
	return w.Send(EventData, DataPayload{Data: v})
}

// Done closes the stream with the assembled message.
func (w *Writer) Done(m chat.Message) error {
	return w.Send(EventDone, DonePayload{Message: m})
}

// Error closes the stream with an error description.
func (w *Writer) Error(msg string) error {
	return w.Send(EventError, ErrorPayload{Error: msg})
}
