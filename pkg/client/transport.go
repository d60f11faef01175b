package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ditto-assistant/ai/pkg/chat"
	"github.com/ditto-assistant/ai/pkg/stream"
)

func resolveEndpoint(baseURL, api string) string {
	if strings.HasPrefix(api, "http://") || strings.HasPrefix(api, "https://") {
		return api
	}
	return strings.TrimSuffix(baseURL, "/") + api
}

// mergeBody flattens the request into a JSON object and merges the extra
// field maps into it, later maps winning.
func mergeBody(req chat.ChatRequest, extras ...map[string]chat.JSONValue) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	merged := map[string]chat.JSONValue{}
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("failed to flatten request: %w", err)
	}
	// The options envelope is client-side only.
	delete(merged, "options")
	for _, extra := range extras {
		for k, v := range extra {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// sanitizeMessages strips messages down to the wire fields the server
// needs, dropping ids, timestamps, ui payloads, and sequence numbers.
func sanitizeMessages(messages []chat.Message) []chat.Message {
	out := make([]chat.Message, len(messages))
	for i, m := range messages {
		out[i] = chat.Message{
			Role:         m.Role,
			Content:      m.Content,
			Name:         m.Name,
			ToolCallID:   m.ToolCallID,
			FunctionCall: m.FunctionCall,
			ToolCalls:    m.ToolCalls,
		}
	}
	return out
}

type postOptions struct {
	url         string
	headers     map[string]string
	reqHeaders  map[string]string
	chatID      string
	credentials string
	onResponse  func(*http.Response) error
}

func postStream(ctx context.Context, httpClient *http.Client, body []byte, opts postOptions) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", opts.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.reqHeaders {
		req.Header.Set(k, v)
	}
	if opts.chatID != "" {
		req.Header.Set("X-Chat-ID", opts.chatID)
	}

	client := httpClient
	if opts.credentials == CredentialsOmit && client.Jar != nil {
		bare := *client
		bare.Jar = nil
		client = &bare
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if opts.onResponse != nil {
		if err := opts.onResponse(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}
	return resp, nil
}

// consumeStream drains one response stream, returning the assembled
// assistant message and any interleaved data payloads.
func consumeStream(r io.Reader, gen chat.IDGenerator) (*chat.Message, []chat.JSONValue, error) {
	var (
		assembled chat.Message
		content   bytes.Buffer
		data      []chat.JSONValue
		gotDone   bool
	)

	reader := stream.NewReader(r)
	for {
		evt, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch evt.Type {
		case stream.EventStart:
			var p stream.StartPayload
			if err := json.Unmarshal(evt.Data, &p); err == nil {
				assembled.ID = p.MessageID
			}
		case stream.EventDelta:
			var p stream.DeltaPayload
			if err := json.Unmarshal(evt.Data, &p); err != nil {
				return nil, nil, fmt.Errorf("invalid delta payload: %w", err)
			}
			content.WriteString(p.Content)
		case stream.EventToolCall:
			var p stream.ToolCallPayload
			if err := json.Unmarshal(evt.Data, &p); err != nil {
				return nil, nil, fmt.Errorf("invalid tool call payload: %w", err)
			}
			assembled.ToolCalls = append(assembled.ToolCalls, p.ToolCall)
		case stream.EventData:
			var p stream.DataPayload
			if err := json.Unmarshal(evt.Data, &p); err != nil {
				return nil, nil, fmt.Errorf("invalid data payload: %w", err)
			}
			data = append(data, p.Data)
		case stream.EventDone:
			var p stream.DonePayload
			if err := json.Unmarshal(evt.Data, &p); err != nil {
				return nil, nil, fmt.Errorf("invalid done payload: %w", err)
			}
			assembled = p.Message
			gotDone = true
		case stream.EventError:
			var p stream.ErrorPayload
			if err := json.Unmarshal(evt.Data, &p); err != nil {
				return nil, nil, fmt.Errorf("invalid error payload: %w", err)
			}
			return nil, data, fmt.Errorf("stream error: %s", p.Error)
		}
	}

	if !gotDone {
		assembled.Role = chat.RoleAssistant
		assembled.Content = content.String()
		if assembled.ID == "" {
			if gen == nil {
				gen = chat.GenerateID
			}
			assembled.ID = gen()
		}
	}
	return &assembled, data, nil
}
