package provider

import (
	"context"

	"github.com/ditto-assistant/ai/pkg/chat"
)

// Request is the upstream chat-completion request.
type Request struct {
	Model       string
	Messages    []chat.Message
	Tools       []chat.Tool
	ToolChoice  *chat.ToolChoice
	Temperature float32
	MaxTokens   int
}

// Response is the upstream chat-completion response.
type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int         `json:"index"`
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamEvent is one incremental piece of a streamed completion: a text
// fragment, a tool-call fragment, or both empty on housekeeping chunks.
type StreamEvent struct {
	ContentDelta  string
	ToolCallDelta *ToolCallChunk
}

// ToolCallChunk is a partial tool call; chunks with the same index belong
// to the same call and their argument fragments concatenate in order.
type ToolCallChunk struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Provider is the upstream LLM a chat server forwards requests to.
type Provider interface {
	// CreateChatCompletion performs a blocking completion.
	CreateChatCompletion(ctx context.Context, req Request) (*chat.Message, error)

	// StreamChatCompletion streams a completion, invoking fn for every
	// event, and returns the fully assembled assistant message. A non-nil
	// error from fn aborts the stream.
	StreamChatCompletion(ctx context.Context, req Request, fn func(StreamEvent) error) (*chat.Message, error)
}
