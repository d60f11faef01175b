package chat

import (
	"fmt"
	"time"
)

// Message roles. A message role is always one of these six literals.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
	RoleData      = "data"
	RoleTool      = "tool"
)

// ValidRole reports whether role is one of the six recognized roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleFunction, RoleData, RoleTool:
		return true
	}
	return false
}

// Message represents one turn in a conversation.
type Message struct {
	ID         string     `json:"id"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	Content    string     `json:"content"`

	// UI carries an optional rendering payload attached by the application.
	UI JSONValue `json:"ui,omitempty"`

	Role string `json:"role"`

	// Name identifies the function a result belongs to. Only meaningful
	// when Role is RoleFunction.
	Name string `json:"name,omitempty"`

	// FunctionCall is the deprecated single-call form. New code should use
	// ToolCalls; both may be present on foreign payloads.
	FunctionCall *FunctionCall `json:"function_call,omitempty"`

	// Data is an arbitrary application payload, typically set on messages
	// with RoleData.
	Data JSONValue `json:"data,omitempty"`

	ToolCalls   []ToolCall  `json:"tool_calls,omitempty"`
	Annotations []JSONValue `json:"annotations,omitempty"`

	// Optional sequence numbers assigned by editing/generation UIs.
	EditSeq       *int `json:"edit_seq,omitempty"`
	GenerationSeq *int `json:"generation_seq,omitempty"`
	RowSeq        *int `json:"row_seq,omitempty"`
}

// Validate checks the structural invariants of a message. It reports the
// first violation found: an unrecognized role, or a Name outside a function
// message.
func (m Message) Validate() error {
	if !ValidRole(m.Role) {
		return fmt.Errorf("invalid message role %q", m.Role)
	}
	if m.Name != "" && m.Role != RoleFunction {
		return fmt.Errorf("message name %q set with role %q, want role %q", m.Name, m.Role, RoleFunction)
	}
	return nil
}

// HasBothCallForms reports whether the message carries both the deprecated
// function_call form and tool_calls. That is legal on foreign payloads;
// callers that only handle one form can use this to notice the other.
func (m Message) HasBothCallForms() bool {
	return m.FunctionCall != nil && len(m.ToolCalls) > 0
}

// CreateMessage is a Message whose ID may be empty; the system assigns one
// before the message is persisted or sent.
type CreateMessage Message

// Materialize returns the message with an ID assigned by gen. A nil gen
// falls back to the default generator. An existing ID is kept.
func (cm CreateMessage) Materialize(gen IDGenerator) Message {
	m := Message(cm)
	if m.ID == "" {
		if gen == nil {
			gen = GenerateID
		}
		m.ID = gen()
	}
	return m
}

// NewSystemMessage builds a system message.
func NewSystemMessage(content string) Message {
	return Message{ID: GenerateID(), Role: RoleSystem, Content: content, CreatedAt: now()}
}

// NewUserMessage builds a user message.
func NewUserMessage(content string) Message {
	return Message{ID: GenerateID(), Role: RoleUser, Content: content, CreatedAt: now()}
}

// NewAssistantMessage builds the assistant variant: assistant-authored text,
// no application payload.
func NewAssistantMessage(content string) Message {
	return Message{ID: GenerateID(), Role: RoleAssistant, Content: content, CreatedAt: now()}
}

// NewDataMessage builds the data variant: an application-defined payload
// interleaved with conversational messages.
func NewDataMessage(data JSONValue) Message {
	return Message{ID: GenerateID(), Role: RoleData, Data: data, CreatedAt: now()}
}

// NewFunctionResultMessage builds a function-result message for the named
// function.
func NewFunctionResultMessage(name, content string) Message {
	return Message{ID: GenerateID(), Role: RoleFunction, Name: name, Content: content, CreatedAt: now()}
}

// NewToolResultMessage builds a tool-result message answering a tool call.
func NewToolResultMessage(toolCallID, content string) Message {
	return Message{ID: GenerateID(), Role: RoleTool, ToolCallID: toolCallID, Content: content, CreatedAt: now()}
}

func now() *time.Time {
	t := time.Now().UTC()
	return &t
}
