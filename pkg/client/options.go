// Package client implements the chat and completion runtimes: streaming
// HTTP clients that maintain conversation state, invoke function/tool-call
// handlers, and resubmit the requests those handlers return.
package client

import (
	"net/http"

	"github.com/ditto-assistant/ai/pkg/chat"
)

// Default endpoint paths, resolved against BaseURL.
const (
	DefaultChatPath       = "/api/chat"
	DefaultCompletionPath = "/api/completion"
)

// Credential modes. Omit sends requests without the HTTP client's cookie
// jar; the other modes use the configured client as-is.
const (
	CredentialsSameOrigin = "same-origin"
	CredentialsInclude    = "include"
	CredentialsOmit       = "omit"
)

// ChatOptions configures a Chat runtime.
type ChatOptions struct {
	// API is the endpoint path or absolute URL the chat posts to.
	// Defaults to DefaultChatPath.
	API string

	// BaseURL is prepended to API when API is a bare path.
	BaseURL string

	// ID identifies the chat session; generated when empty. Sent to the
	// server in the X-Chat-ID header.
	ID string

	// InitialMessages seeds the conversation history.
	InitialMessages []chat.Message

	// InitialInput seeds the pending input buffer.
	InitialInput string

	// MaxMessages caps how many trailing messages are sent per request.
	// Zero means no limit.
	MaxMessages int

	// Tools and ToolChoice are forwarded on every request. Functions is
	// the deprecated pre-tools form.
	Tools      []chat.Tool
	ToolChoice *chat.ToolChoice
	Functions  []chat.Function

	Headers     map[string]string
	Body        map[string]chat.JSONValue
	Credentials string

	// SendExtraMessageFields forwards ids, timestamps, annotations, and
	// the other non-wire message fields to the server.
	SendExtraMessageFields bool

	// GenerateID overrides the id strategy for the session and for
	// messages materialized by Append.
	GenerateID chat.IDGenerator

	OnResponse func(*http.Response) error
	OnFinish   func(chat.Message)
	OnError    func(error)

	FunctionCallHandler chat.FunctionCallHandler
	ToolCallHandler     chat.ToolCallHandler

	// HTTPClient overrides the default client. Streaming responses can
	// outlive any fixed timeout, so the default carries none.
	HTTPClient *http.Client
}

// CompletionOptions configures a Completion runtime.
type CompletionOptions struct {
	// API is the endpoint path or absolute URL completions post to.
	// Defaults to DefaultCompletionPath.
	API string

	// BaseURL is prepended to API when API is a bare path.
	BaseURL string

	// ID identifies the completion session; generated when empty.
	ID string

	// InitialInput and InitialCompletion seed the runtime state.
	InitialInput      string
	InitialCompletion string

	Headers     map[string]string
	Body        map[string]chat.JSONValue
	Credentials string

	GenerateID chat.IDGenerator

	OnResponse func(*http.Response) error
	OnFinish   func(prompt, completion string)
	OnError    func(error)

	HTTPClient *http.Client
}
