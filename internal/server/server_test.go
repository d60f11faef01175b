package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ditto-assistant/ai/internal/eventbus"
	"github.com/ditto-assistant/ai/internal/events"
	"github.com/ditto-assistant/ai/internal/provider"
	"github.com/ditto-assistant/ai/pkg/chat"
	"github.com/ditto-assistant/ai/pkg/client"
	"github.com/ditto-assistant/ai/pkg/stream"
)

// fakeProvider streams a scripted reply and records the requests it saw.
type fakeProvider struct {
	reply    chat.Message
	requests []provider.Request
	err      error
}

func (f *fakeProvider) CreateChatCompletion(ctx context.Context, req provider.Request) (*chat.Message, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	msg := f.reply
	return &msg, nil
}

func (f *fakeProvider) StreamChatCompletion(ctx context.Context, req provider.Request, fn func(provider.StreamEvent) error) (*chat.Message, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	for _, word := range strings.SplitAfter(f.reply.Content, " ") {
		if word == "" {
			continue
		}
		if err := fn(provider.StreamEvent{ContentDelta: word}); err != nil {
			return nil, err
		}
	}
	msg := f.reply
	return &msg, nil
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Chat-ID", "chat-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleChatStreamsReply(t *testing.T) {
	fake := &fakeProvider{reply: chat.Message{Role: chat.RoleAssistant, Content: "hello world"}}
	srv := New(fake, Options{Model: "gpt-4"})

	rec := postJSON(t, srv, "/api/chat", chat.NewChatRequest([]chat.Message{chat.NewUserMessage("hi")}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q", got)
	}

	var types []string
	var done stream.DonePayload
	reader := stream.NewReader(rec.Body)
	for {
		evt, err := reader.Next()
		if err != nil {
			break
		}
		types = append(types, evt.Type)
		if evt.Type == stream.EventDone {
			if err := json.Unmarshal(evt.Data, &done); err != nil {
				t.Fatalf("done payload: %v", err)
			}
		}
	}

	if types[0] != stream.EventStart || types[len(types)-1] != stream.EventDone {
		t.Fatalf("event sequence = %v", types)
	}
	if done.Message.Content != "hello world" || done.Message.ID == "" {
		t.Fatalf("done message = %+v", done.Message)
	}
	if len(fake.requests) != 1 || fake.requests[0].Model != "gpt-4" {
		t.Fatalf("provider requests = %+v", fake.requests)
	}
}

func TestHandleChatToolChoicePolicy(t *testing.T) {
	fake := &fakeProvider{reply: chat.Message{Role: chat.RoleAssistant, Content: "ok"}}
	srv := New(fake, Options{Model: "gpt-4"})

	// Without tools the provider sees none and no choice.
	postJSON(t, srv, "/api/chat", chat.NewChatRequest([]chat.Message{chat.NewUserMessage("hi")}))
	if req := fake.requests[0]; len(req.Tools) != 0 || req.ToolChoice != nil {
		t.Fatalf("toolless request forwarded tools: %+v", req)
	}

	// With tools and no explicit choice, the provider sees auto.
	withTools := chat.NewChatRequest([]chat.Message{chat.NewUserMessage("hi")})
	withTools.Tools = []chat.Tool{chat.NewFunctionTool(chat.Function{Name: "lookup"})}
	postJSON(t, srv, "/api/chat", withTools)
	req := fake.requests[1]
	if len(req.Tools) != 1 || req.ToolChoice == nil || req.ToolChoice.Mode() != chat.ToolChoiceModeAuto {
		t.Fatalf("tooled request not resolved to auto: %+v", req)
	}
}

func TestHandleChatRejectsBadRequests(t *testing.T) {
	fake := &fakeProvider{reply: chat.Message{Role: chat.RoleAssistant}}
	srv := New(fake, Options{})

	rec := postJSON(t, srv, "/api/chat", map[string]any{"messages": []any{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty messages: status = %d", rec.Code)
	}

	bad := chat.NewChatRequest([]chat.Message{{ID: "m", Role: "bogus"}})
	rec = postJSON(t, srv, "/api/chat", bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid role: status = %d", rec.Code)
	}
}

func TestHandleChatAcceptsBothCallForms(t *testing.T) {
	fake := &fakeProvider{reply: chat.Message{Role: chat.RoleAssistant, Content: "ok"}}
	srv := New(fake, Options{Model: "gpt-4"})

	// Histories from other SDKs may carry both the deprecated function_call
	// and tool_calls on one message; that must flow through.
	both := chat.Message{
		ID:           "m1",
		Role:         chat.RoleAssistant,
		FunctionCall: &chat.FunctionCall{Name: "lookup", Arguments: `{"q":"go"}`},
		ToolCalls: []chat.ToolCall{{
			ID:       "c1",
			Type:     chat.ToolTypeFunction,
			Function: chat.FunctionCall{Name: "lookup", Arguments: `{"q":"go"}`},
		}},
	}
	req := chat.NewChatRequest([]chat.Message{
		chat.NewUserMessage("hi"),
		both,
		chat.NewToolResultMessage("c1", `{"ok":true}`),
	})

	rec := postJSON(t, srv, "/api/chat", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(fake.requests) != 1 || len(fake.requests[0].Messages) != 3 {
		t.Fatalf("provider requests = %+v", fake.requests)
	}
}

// recordingBus captures emitted events for assertions.
type recordingBus struct {
	events []eventbus.Event
}

func (b *recordingBus) Emit(event eventbus.Event) error {
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func TestHandleChatBroadcastsEvents(t *testing.T) {
	fake := &fakeProvider{reply: chat.Message{Role: chat.RoleAssistant, Content: "hello world"}}
	bus := &recordingBus{}
	srv := New(fake, Options{Model: "gpt-4", Bus: bus})

	rec := postJSON(t, srv, "/api/chat", chat.NewChatRequest([]chat.Message{chat.NewUserMessage("hi")}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	subjects := make(map[string]int)
	for _, evt := range bus.events {
		subjects[evt.Subject()]++
	}
	if subjects[events.ChatStreamStartEventName] != 1 || subjects[events.ChatStreamDoneEventName] != 1 {
		t.Fatalf("stream lifecycle events = %v", subjects)
	}
	if subjects[events.ChatStreamDeltaEventName] == 0 {
		t.Fatalf("no delta events broadcast: %v", subjects)
	}
	if subjects[events.ChatMessagesAddEventName] != 1 {
		t.Fatalf("history event not broadcast: %v", subjects)
	}

	for _, evt := range bus.events {
		if add, ok := evt.(events.ChatMessagesAddEvent); ok {
			if add.ChatID != "chat-1" || len(add.Messages) != 2 {
				t.Fatalf("history event = %+v", add)
			}
		}
	}
}

func TestHandleChatHistoryWithoutStore(t *testing.T) {
	srv := New(&fakeProvider{}, Options{})
	req := httptest.NewRequest("GET", "/api/chat/chat-1/messages", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusNotImplemented)
	}
}

func TestHandleCompletion(t *testing.T) {
	fake := &fakeProvider{reply: chat.Message{Role: chat.RoleAssistant, Content: "story text"}}
	srv := New(fake, Options{Model: "gpt-4"})

	rec := postJSON(t, srv, "/api/completion", map[string]any{"prompt": "tell a story"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(fake.requests) != 1 {
		t.Fatalf("provider requests = %d", len(fake.requests))
	}
	sent := fake.requests[0].Messages
	if len(sent) != 1 || sent[0].Role != chat.RoleUser || sent[0].Content != "tell a story" {
		t.Fatalf("prompt not wrapped as user message: %+v", sent)
	}

	rec = postJSON(t, srv, "/api/completion", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing prompt: status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := New(&fakeProvider{}, Options{})
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Service != "chat-server" || health.Status != "healthy" {
		t.Fatalf("health = %+v", health)
	}
}

func TestEndToEndWithClientRuntime(t *testing.T) {
	fake := &fakeProvider{reply: chat.Message{Role: chat.RoleAssistant, Content: "end to end"}}
	ts := httptest.NewServer(New(fake, Options{Model: "gpt-4"}))
	defer ts.Close()

	c := client.NewChat(client.ChatOptions{BaseURL: ts.URL})
	msg, err := c.Append(context.Background(), chat.CreateMessage{Role: chat.RoleUser, Content: "hi"})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if msg.Content != "end to end" {
		t.Fatalf("message = %+v", msg)
	}
	if len(c.Messages()) != 2 {
		t.Fatalf("history = %+v", c.Messages())
	}
}
