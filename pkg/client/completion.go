package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/ditto-assistant/ai/pkg/chat"
)

// Completion is a stateful text-completion session against a completion
// endpoint.
type Completion struct {
	opts       CompletionOptions
	httpClient *http.Client
	endpoint   string

	mu         sync.Mutex
	id         string
	input      string
	completion string
	cancel     context.CancelFunc
}

// NewCompletion builds a completion session from opts.
func NewCompletion(opts CompletionOptions) *Completion {
	api := opts.API
	if api == "" {
		api = DefaultCompletionPath
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

	return &Completion{
		opts:       opts,
		httpClient: httpClient,
		endpoint:   resolveEndpoint(opts.BaseURL, api),
		id:         id,
		input:      opts.InitialInput,
		completion: opts.InitialCompletion,
	}
}

// ID returns the session identifier.
func (c *Completion) ID() string { return c.id }

// Text returns the last streamed completion.
func (c *Completion) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completion
}

// Input returns the pending input buffer.
func (c *Completion) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the pending input buffer.
func (c *Completion) SetInput(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = input
}

// Complete posts the prompt and streams the completion back. The streamed
// text is also retained for Text.
func (c *Completion) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	body := map[string]chat.JSONValue{"prompt": prompt}
	for k, v := range c.opts.Body {
		if k == "prompt" {
			continue
		}
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", c.reportError(fmt.Errorf("failed to marshal request: %w", err))
	}

	resp, err := postStream(ctx, c.httpClient, payload, postOptions{
		url:         c.endpoint,
		headers:     c.opts.Headers,
		chatID:      c.id,
		credentials: c.opts.Credentials,
		onResponse:  c.opts.OnResponse,
	})
	if err != nil {
		return "", c.reportError(err)
	}
	defer resp.Body.Close()

	msg, _, err := consumeStream(resp.Body, c.opts.GenerateID)
	if err != nil {
		return "", c.reportError(err)
	}

	c.mu.Lock()
	c.completion = msg.Content
	c.mu.Unlock()

	if c.opts.OnFinish != nil {
		c.opts.OnFinish(prompt, msg.Content)
	}
	return msg.Content, nil
}

// Stop cancels the in-flight completion, if any.
func (c *Completion) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Completion) reportError(err error) error {
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
	return err
}
