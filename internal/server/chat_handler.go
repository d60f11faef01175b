package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ditto-assistant/ai/internal/eventbus"
	"github.com/ditto-assistant/ai/internal/events"
	"github.com/ditto-assistant/ai/internal/provider"
	"github.com/ditto-assistant/ai/pkg/chat"
	"github.com/ditto-assistant/ai/pkg/stream"
)

// chatRequestBody is the POST /api/chat body: a ChatRequest plus the
// model overrides clients merge in as extra body fields.
type chatRequestBody struct {
	chat.ChatRequest
	Model       string  `json:"model,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(body.Messages) == 0 {
		http.Error(w, "request has no messages", http.StatusBadRequest)
		return
	}
	if err := body.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chatID := r.Header.Get("X-Chat-ID")
	if chatID == "" {
		chatID = chat.GenerateID()
	}

	req := s.providerRequest(body)
	log.Printf("[%s] Chat request - Messages: %d, Tools: %d, ToolChoice: %s",
		chatID, len(body.Messages), len(body.Tools), body.ResolvedToolChoice())

	messageID := chat.GenerateID()
	sw := stream.NewWriter(w)
	sw.Start(chatID, messageID)
	s.emit(events.ChatStreamStartEvent{ChatID: chatID, MessageID: messageID})

	msg, err := s.provider.StreamChatCompletion(r.Context(), req, func(evt provider.StreamEvent) error {
		if evt.ContentDelta == "" {
			return nil
		}
		s.emit(events.ChatStreamDeltaEvent{ChatID: chatID, Delta: evt.ContentDelta})
		return sw.Delta(evt.ContentDelta)
	})
	if err != nil {
		log.Printf("[%s] Provider stream failed: %v", chatID, err)
		s.emit(events.ChatStreamErrorEvent{ChatID: chatID, Error: err.Error()})
		sw.Error(err.Error())
		return
	}
	msg.ID = messageID

	for _, tc := range msg.ToolCalls {
		sw.ToolCall(tc)
		s.emit(events.ChatToolCallEvent{ChatID: chatID, ToolCall: tc})
	}

	history := append(body.Messages, *msg)
	s.persist(chatID, history)
	s.emit(events.ChatMessagesAddEvent{ChatID: chatID, Messages: history})
	s.emit(events.ChatStreamDoneEvent{ChatID: chatID, Message: *msg})
	sw.Done(*msg)
}

// providerRequest maps the API body onto an upstream request, applying the
// server defaults and the tool-choice resolution policy.
func (s *Server) providerRequest(body chatRequestBody) provider.Request {
	req := provider.Request{
		Model:       body.Model,
		Messages:    body.Messages,
		Temperature: body.Temperature,
	}
	if req.Model == "" {
		req.Model = s.opts.Model
	}
	if req.Temperature == 0 {
		req.Temperature = s.opts.Temperature
	}

	resolved := body.ResolvedToolChoice()
	if resolved.Mode() != chat.ToolChoiceModeNone {
		req.Tools = body.Tools
		req.ToolChoice = &resolved
	}
	return req
}

func (s *Server) persist(chatID string, messages []chat.Message) {
	if s.opts.Store == nil {
		return
	}
	// The client resends its full window, so replace rather than append.
	if err := s.opts.Store.DeleteMessages(chatID); err != nil {
		log.Printf("[%s] Failed to clear stored messages: %v", chatID, err)
		return
	}
	if err := s.opts.Store.AddMessages(chatID, messages); err != nil {
		log.Printf("[%s] Failed to store messages: %v", chatID, err)
	}
}

func (s *Server) emit(event eventbus.Event) {
	if s.opts.Bus == nil {
		return
	}
	if err := s.opts.Bus.Emit(event); err != nil {
		log.Printf("Failed to emit %s event: %v", event.Subject(), err)
	}
}
