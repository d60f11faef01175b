package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ditto-assistant/ai/pkg/chat"
)

// chatHistoryResponse is the GET /api/chat/{chatID}/messages body. Total is
// the stored count, which can exceed len(Messages) when a limit is applied.
type chatHistoryResponse struct {
	ChatID   string         `json:"chat_id"`
	Total    int64          `json:"total"`
	Messages []chat.Message `json:"messages"`
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		http.Error(w, "chat history is not persisted on this server", http.StatusNotImplemented)
		return
	}
	chatID := mux.Vars(r)["chatID"]

	exists, err := s.opts.Store.Exists(chatID)
	if err != nil {
		log.Printf("[%s] Failed to check stored history: %v", chatID, err)
		http.Error(w, "failed to read chat history", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, fmt.Sprintf("no history for chat %s", chatID), http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
	}

	var messages []chat.Message
	if limit > 0 {
		messages, err = s.opts.Store.GetRecentMessages(chatID, limit)
	} else {
		messages, err = s.opts.Store.GetMessages(chatID)
	}
	if err != nil {
		log.Printf("[%s] Failed to read stored history: %v", chatID, err)
		http.Error(w, "failed to read chat history", http.StatusInternalServerError)
		return
	}

	total, err := s.opts.Store.MessageCount(chatID)
	if err != nil {
		log.Printf("[%s] Failed to count stored history: %v", chatID, err)
		http.Error(w, "failed to read chat history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatHistoryResponse{
		ChatID:   chatID,
		Total:    total,
		Messages: messages,
	})
}
