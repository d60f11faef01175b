package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/ditto-assistant/ai/pkg/chat"
	"github.com/ditto-assistant/ai/pkg/stream"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey     string
	apiBase    string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		apiBase: "https://api.openai.com/v1",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetAPIBase allows overriding the API base URL (for testing or using proxies)
func (c *OpenAIClient) SetAPIBase(apiBase string) {
	c.apiBase = apiBase
}

// SetHTTPClient allows setting a custom HTTP client
func (c *OpenAIClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// wireMessage is the message shape the upstream API accepts; the richer
// chat.Message fields (ui, annotations, sequence numbers) stay client-side.
type wireMessage struct {
	Role         string             `json:"role"`
	Content      string             `json:"content"`
	Name         string             `json:"name,omitempty"`
	ToolCallID   string             `json:"tool_call_id,omitempty"`
	ToolCalls    []chat.ToolCall    `json:"tool_calls,omitempty"`
	FunctionCall *chat.FunctionCall `json:"function_call,omitempty"`
}

func toWireMessages(messages []chat.Message) []wireMessage {
	wire := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		// Data messages are application-side only.
		if m.Role == chat.RoleData {
			continue
		}
		wire = append(wire, wireMessage{
			Role:         m.Role,
			Content:      m.Content,
			Name:         m.Name,
			ToolCallID:   m.ToolCallID,
			ToolCalls:    m.ToolCalls,
			FunctionCall: m.FunctionCall,
		})
	}
	return wire
}

func (wm wireMessage) toMessage() chat.Message {
	return chat.Message{
		ID:           chat.GenerateID(),
		Role:         wm.Role,
		Content:      wm.Content,
		Name:         wm.Name,
		ToolCallID:   wm.ToolCallID,
		ToolCalls:    wm.ToolCalls,
		FunctionCall: wm.FunctionCall,
	}
}

type chatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []wireMessage    `json:"messages"`
	Tools       []chat.Tool      `json:"tools,omitempty"`
	ToolChoice  *chat.ToolChoice `json:"tool_choice,omitempty"`
	Temperature float32          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

func (c *OpenAIClient) newRequest(ctx context.Context, req Request, streaming bool) (*http.Request, error) {
	if req.Model == "" {
		req.Model = "gpt-4"
	}

	body := chatCompletionRequest{
		Model:       req.Model,
		Messages:    toWireMessages(req.Messages),
		Tools:       req.Tools,
		ToolChoice:  req.ToolChoice,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      streaming,
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.apiBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	return httpReq, nil
}

func decodeAPIError(statusCode int, body []byte) error {
	var errorResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		return fmt.Errorf("upstream API error (%s): %s", errorResp.Error.Type, errorResp.Error.Message)
	}
	return fmt.Errorf("upstream API error (status %d): %s", statusCode, string(body))
}

// CreateChatCompletion performs a blocking completion and returns the
// assistant message of the first choice.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req Request) (*chat.Message, error) {
	httpReq, err := c.newRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}

	log.Printf("Upstream request - Model: %s, Messages: %d, Tools: %d",
		req.Model, len(req.Messages), len(req.Tools))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("upstream response %s has no choices", response.ID)
	}

	message := response.Choices[0].Message.toMessage()
	log.Printf("Upstream response - ID: %s, Tokens: %d, ToolCalls: %d",
		response.ID, response.Usage.TotalTokens, len(message.ToolCalls))
	return &message, nil
}

type streamChunk struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int        `json:"index"`
		Delta        chunkDelta `json:"delta"`
		FinishReason string     `json:"finish_reason"`
	} `json:"choices"`
}

type chunkDelta struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	ToolCalls []struct {
		Index    int    `json:"index"`
		ID       string `json:"id"`
		Type     string `json:"type"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
}

// StreamChatCompletion streams a completion, invoking fn per event, and
// returns the fully assembled assistant message.
func (c *OpenAIClient) StreamChatCompletion(ctx context.Context, req Request, fn func(StreamEvent) error) (*chat.Message, error) {
	httpReq, err := c.newRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var (
		content bytes.Buffer
		calls   = make(map[int]*chat.ToolCall)
	)

	reader := stream.NewReader(resp.Body)
	for {
		evt, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if string(evt.Data) == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal(evt.Data, &chunk); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		if delta.Content != "" {
			content.WriteString(delta.Content)
			if fn != nil {
				if err := fn(StreamEvent{ContentDelta: delta.Content}); err != nil {
					return nil, err
				}
			}
		}

		for _, tc := range delta.ToolCalls {
			call, ok := calls[tc.Index]
			if !ok {
				call = &chat.ToolCall{Type: chat.ToolTypeFunction}
				calls[tc.Index] = call
			}
			if tc.ID != "" {
				call.ID = tc.ID
			}
			if tc.Function.Name != "" {
				call.Function.Name = tc.Function.Name
			}
			call.Function.Arguments += tc.Function.Arguments

			if fn != nil {
				err := fn(StreamEvent{ToolCallDelta: &ToolCallChunk{
					Index:     tc.Index,
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				}})
				if err != nil {
					return nil, err
				}
			}
		}
	}

	message := chat.NewAssistantMessage(content.String())
	if len(calls) > 0 {
		indexes := make([]int, 0, len(calls))
		for i := range calls {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)
		for _, i := range indexes {
			message.ToolCalls = append(message.ToolCalls, *calls[i])
		}
	}
	return &message, nil
}
