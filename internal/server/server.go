// Package server exposes the chat and completion endpoints a client
// runtime posts to, bridging them onto an upstream provider.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ditto-assistant/ai/internal/eventbus"
	"github.com/ditto-assistant/ai/internal/provider"
	"github.com/ditto-assistant/ai/internal/store"
)

const version = "0.3.0"

// Options carries the optional collaborators and model defaults.
type Options struct {
	// Model and Temperature are applied when the request body does not
	// override them.
	Model       string
	Temperature float32

	// Store persists chat histories when set.
	Store *store.ChatStore

	// Bus broadcasts stream lifecycle events when set.
	Bus eventbus.EventBus
}

// Server routes the chat API.
type Server struct {
	provider provider.Provider
	opts     Options
	router   *mux.Router
	started  time.Time
}

func New(p provider.Provider, opts Options) *Server {
	s := &Server{
		provider: p,
		opts:     opts,
		started:  time.Now(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/chat", s.handleChat).Methods("POST")
	r.HandleFunc("/api/chat/{chatID}/messages", s.handleChatHistory).Methods("GET")
	r.HandleFunc("/api/completion", s.handleCompletion).Methods("POST")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
