package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/kneeoa/internal/config"
	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/reveal"
)

// ErrEmptyMessage is returned by Submit for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// Handler turns user messages into conversation turns.
type Handler struct {
	responder Responder
}

// NewHandler creates a handler around a single responder strategy.
func NewHandler(responder Responder) *Handler {
	return &Handler{responder: responder}
}

// NewResponder builds the responder selected by configuration.
func NewResponder(cfg config.ResponderConfig) (Responder, error) {
	switch cfg.Mode {
	case config.ResponderRules:
		if cfg.RulesFile != "" {
			return LoadRules(cfg.RulesFile)
		}
		return NewRuleResponder(DefaultRules, ""), nil
	case config.ResponderRemote:
		var backend Backend
		switch cfg.Backend {
		case config.BackendDashScope:
			backend = &DashScope{BaseURL: cfg.BaseURL, AppID: cfg.AppID}
		case config.BackendGemini:
			backend = &Gemini{Model: cfg.Model}
		default:
			return nil, fmt.Errorf("unknown remote backend %q", cfg.Backend)
		}
		return NewRemoteResponder(backend, DefaultRemoteTimeout), nil
	default:
		return nil, fmt.Errorf("unknown responder mode %q", cfg.Mode)
	}
}

// Reply returns the responder's answer. Errors and panics become the reply
// text so the conversation always gets an assistant turn.
func (h *Handler) Reply(ctx context.Context, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Responder panicked", "panic", r)
			reply = "[Responder error] the assistant failed unexpectedly. Please try again."
		}
	}()

	out, err := h.responder.Respond(ctx, text)
	if err != nil {
		slog.Warn("Responder failed", "error", err)
		return fmt.Sprintf("[Responder error] %v", err)
	}
	return out
}

// Submit appends the user's message and the assistant's reply to st and
// reveals the whole conversation.
func (h *Handler) Submit(ctx context.Context, st *reveal.State, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	st.Append(domain.UserTurn(text))
	reply := h.Reply(ctx, text)
	st.Append(domain.AssistantTurn(reply))
	st.RevealAll()
	return reply, nil
}

// Record appends an exchange whose reply was computed elsewhere.
// The terminal UI uses it after running Reply off the UI goroutine.
func Record(st *reveal.State, text, reply string) {
	st.Append(domain.UserTurn(text), domain.AssistantTurn(reply))
	st.RevealAll()
}
