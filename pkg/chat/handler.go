package chat

import "context"

// FunctionCallHandler receives the current message history and a function
// call produced by the model. Returning a non-nil ChatRequest asks the
// runtime to resubmit it; returning nil, nil takes no further action.
type FunctionCallHandler func(ctx context.Context, messages []Message, call FunctionCall) (*ChatRequest, error)

// ToolCallHandler receives the current message history and the tool calls
// produced by the model. Returning a non-nil ChatRequest asks the runtime
// to resubmit it; returning nil, nil takes no further action.
type ToolCallHandler func(ctx context.Context, messages []Message, calls []ToolCall) (*ChatRequest, error)
