// Package api provides the JSON endpoints of the demo.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/session"
)

// Handler provides the session, chat and plan endpoints.
type Handler struct {
	sessions *session.Manager
	content  *content.Store
	chat     *chat.Handler
	interval time.Duration
	now      func() time.Time
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(sessions *session.Manager, store *content.Store, chatHandler *chat.Handler, interval time.Duration) *Handler {
	return &Handler{
		sessions: sessions,
		content:  store,
		chat:     chatHandler,
		interval: interval,
		now:      time.Now,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
