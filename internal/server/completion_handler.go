package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ditto-assistant/ai/internal/events"
	"github.com/ditto-assistant/ai/internal/provider"
	"github.com/ditto-assistant/ai/pkg/chat"
	"github.com/ditto-assistant/ai/pkg/stream"
)

// completionRequestBody is the POST /api/completion body.
type completionRequestBody struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var body completionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if body.Prompt == "" {
		http.Error(w, "request has no prompt", http.StatusBadRequest)
		return
	}

	chatID := r.Header.Get("X-Chat-ID")
	if chatID == "" {
		chatID = chat.GenerateID()
	}

	req := provider.Request{
		Model:       body.Model,
		Messages:    []chat.Message{chat.NewUserMessage(body.Prompt)},
		Temperature: body.Temperature,
	}
	if req.Model == "" {
		req.Model = s.opts.Model
	}
	if req.Temperature == 0 {
		req.Temperature = s.opts.Temperature
	}

	log.Printf("[%s] Completion request - Prompt length: %d", chatID, len(body.Prompt))

	messageID := chat.GenerateID()
	sw := stream.NewWriter(w)
	sw.Start(chatID, messageID)

	msg, err := s.provider.StreamChatCompletion(r.Context(), req, func(evt provider.StreamEvent) error {
		if evt.ContentDelta == "" {
			return nil
		}
		return sw.Delta(evt.ContentDelta)
	})
	if err != nil {
		log.Printf("[%s] Provider stream failed: %v", chatID, err)
		sw.Error(err.Error())
		return
	}
	msg.ID = messageID

	s.emit(events.CompletionDoneEvent{ChatID: chatID, Prompt: body.Prompt, Completion: msg.Content})
	sw.Done(*msg)
}
