package chat

import "fmt"

// RequestOptions carries extra headers and body fields merged into the
// outbound HTTP request.
type RequestOptions struct {
	Headers map[string]string    `json:"headers,omitempty"`
	Body    map[string]JSONValue `json:"body,omitempty"`
}

// ChatRequest is the outbound request shape: an ordered message list plus
// optional tool and function declarations.
type ChatRequest struct {
	Messages []Message       `json:"messages"`
	Options  *RequestOptions `json:"options,omitempty"`

	// Functions and FunctionCall are the deprecated pre-tools form. New
	// code declares Tools and a ToolChoice instead.
	Functions    []Function    `json:"functions,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`

	Data       map[string]JSONValue `json:"data,omitempty"`
	Tools      []Tool               `json:"tools,omitempty"`
	ToolChoice *ToolChoice          `json:"tool_choice,omitempty"`
}

// NewChatRequest builds a request from an ordered message list.
func NewChatRequest(messages []Message) ChatRequest {
	return ChatRequest{Messages: messages}
}

// ResolveToolChoice applies the default policy: an unset choice behaves as
// auto when tools are declared and none otherwise.
func ResolveToolChoice(tools []Tool, choice *ToolChoice) ToolChoice {
	if choice != nil && !choice.IsZero() {
		return *choice
	}
	if len(tools) > 0 {
		return ToolChoiceAuto()
	}
	return ToolChoiceNone()
}

// ResolvedToolChoice resolves the request's tool choice under the default
// policy.
func (r ChatRequest) ResolvedToolChoice() ToolChoice {
	return ResolveToolChoice(r.Tools, r.ToolChoice)
}

// Validate checks the messages, declared tools and functions, and that an
// explicit tool choice names a declared tool.
func (r ChatRequest) Validate() error {
	for i, m := range r.Messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	for _, t := range r.Tools {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, f := range r.Functions {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	if r.ToolChoice != nil && r.ToolChoice.Mode() == ToolChoiceModeFunction {
		name := r.ToolChoice.FunctionName()
		found := false
		for _, t := range r.Tools {
			if t.Function.Name == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("tool choice names undeclared function %q", name)
		}
	}
	return nil
}
