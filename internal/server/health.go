package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus reports the service health.
type HealthStatus struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if s.opts.Store != nil {
		if err := s.opts.Store.Ping(); err != nil {
			status = "degraded"
		}
	}

	health := HealthStatus{
		Service:   "chat-server",
		Status:    status,
		Version:   version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
