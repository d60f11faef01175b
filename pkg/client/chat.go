package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/ditto-assistant/ai/pkg/chat"
)

// maxHandlerRounds caps how many times handler-returned requests are
// resubmitted for a single Append, guarding against handler loops.
const maxHandlerRounds = 8

// Chat is a stateful chat session against a chat endpoint. Appending a
// message posts the history, consumes the response stream, and runs the
// configured function/tool-call handlers, resubmitting any request they
// return.
type Chat struct {
	opts       ChatOptions
	httpClient *http.Client
	endpoint   string
	generateID chat.IDGenerator

	mu       sync.Mutex
	id       string
	messages []chat.Message
	data     []chat.JSONValue
	input    string
	cancel   context.CancelFunc
}

// NewChat builds a chat session from opts.
func NewChat(opts ChatOptions) *Chat {
	api := opts.API
	if api == "" {
		api = DefaultChatPath
	}
	gen := opts.GenerateID
	if gen == nil {
		gen = chat.GenerateID
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	id := opts.ID
	if id == "" {
		id = gen()
	}

	c := &Chat{
		opts:       opts,
		httpClient: httpClient,
		endpoint:   resolveEndpoint(opts.BaseURL, api),
		generateID: gen,
		id:         id,
		input:      opts.InitialInput,
	}
	c.messages = append(c.messages, opts.InitialMessages...)
	return c
}

// ID returns the session identifier.
func (c *Chat) ID() string { return c.id }

// Messages returns a copy of the conversation history.
func (c *Chat) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// SetMessages replaces the conversation history.
func (c *Chat) SetMessages(messages []chat.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make([]chat.Message, len(messages))
	copy(c.messages, messages)
}

// Data returns the application payloads streamed alongside responses.
func (c *Chat) Data() []chat.JSONValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.JSONValue, len(c.data))
	copy(out, c.data)
	return out
}

// Input returns the pending input buffer.
func (c *Chat) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the pending input buffer.
func (c *Chat) SetInput(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = input
}

// Append materializes msg, adds it to the history, and triggers a request
// cycle. It returns the final assistant message.
func (c *Chat) Append(ctx context.Context, msg chat.CreateMessage) (*chat.Message, error) {
	m := msg.Materialize(c.generateID)
	if err := m.Validate(); err != nil {
		return nil, c.reportError(err)
	}

	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()

	return c.run(ctx)
}

// Submit appends the pending input buffer as a user message.
func (c *Chat) Submit(ctx context.Context) (*chat.Message, error) {
	c.mu.Lock()
	input := c.input
	c.input = ""
	c.mu.Unlock()

	if input == "" {
		return nil, fmt.Errorf("nothing to submit: input is empty")
	}
	return c.Append(ctx, chat.CreateMessage{Role: chat.RoleUser, Content: input})
}

// Reload drops the trailing assistant message and regenerates it.
func (c *Chat) Reload(ctx context.Context) (*chat.Message, error) {
	c.mu.Lock()
	for len(c.messages) > 0 && c.messages[len(c.messages)-1].Role == chat.RoleAssistant {
		c.messages = c.messages[:len(c.messages)-1]
	}
	empty := len(c.messages) == 0
	c.mu.Unlock()

	if empty {
		return nil, fmt.Errorf("nothing to reload: history is empty")
	}
	return c.run(ctx)
}

// Stop cancels the in-flight request cycle, if any.
func (c *Chat) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Chat) run(ctx context.Context) (*chat.Message, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	req := c.buildRequest()
	var last *chat.Message

	for round := 0; round < maxHandlerRounds; round++ {
		msg, err := c.doRequest(ctx, req)
		if err != nil {
			return nil, c.reportError(err)
		}

		c.mu.Lock()
		c.messages = append(c.messages, *msg)
		c.mu.Unlock()
		last = msg

		if c.opts.OnFinish != nil {
			c.opts.OnFinish(*msg)
		}

		next, err := c.applyHandlers(ctx, *msg)
		if err != nil {
			return nil, c.reportError(err)
		}
		if next == nil {
			return last, nil
		}

		// The handler decided the conversation continues from its
		// request; adopt it and resubmit.
		c.SetMessages(next.Messages)
		req = *next
	}

	return last, c.reportError(fmt.Errorf("handler resubmitted %d times without settling", maxHandlerRounds))
}

func (c *Chat) buildRequest() chat.ChatRequest {
	messages := c.Messages()
	if c.opts.MaxMessages > 0 && len(messages) > c.opts.MaxMessages {
		messages = messages[len(messages)-c.opts.MaxMessages:]
	}
	return chat.ChatRequest{
		Messages:   messages,
		Tools:      c.opts.Tools,
		ToolChoice: c.opts.ToolChoice,
		Functions:  c.opts.Functions,
	}
}

func (c *Chat) doRequest(ctx context.Context, req chat.ChatRequest) (*chat.Message, error) {
	wire := req
	if !c.opts.SendExtraMessageFields {
		wire.Messages = sanitizeMessages(wire.Messages)
	}

	var extras []map[string]chat.JSONValue
	extras = append(extras, c.opts.Body)
	var reqHeaders map[string]string
	if req.Options != nil {
		extras = append(extras, req.Options.Body)
		reqHeaders = req.Options.Headers
	}

	body, err := mergeBody(wire, extras...)
	if err != nil {
		return nil, err
	}

	resp, err := postStream(ctx, c.httpClient, body, postOptions{
		url:         c.endpoint,
		headers:     c.opts.Headers,
		reqHeaders:  reqHeaders,
		chatID:      c.id,
		credentials: c.opts.Credentials,
		onResponse:  c.opts.OnResponse,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	msg, data, err := consumeStream(resp.Body, c.generateID)
	if len(data) > 0 {
		c.mu.Lock()
		c.data = append(c.data, data...)
		c.mu.Unlock()
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *Chat) applyHandlers(ctx context.Context, msg chat.Message) (*chat.ChatRequest, error) {
	if msg.FunctionCall != nil && c.opts.FunctionCallHandler != nil {
		return c.opts.FunctionCallHandler(ctx, c.Messages(), *msg.FunctionCall)
	}
	if len(msg.ToolCalls) > 0 && c.opts.ToolCallHandler != nil {
		return c.opts.ToolCallHandler(ctx, c.Messages(), msg.ToolCalls)
	}
	return nil, nil
}

func (c *Chat) reportError(err error) error {
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
	return err
}
