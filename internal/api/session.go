//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/identity"
	"github.com/ashureev/kneeoa/internal/render"
	"github.com/ashureev/kneeoa/internal/session"
)

// RegisterRoutes registers the JSON routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.GetSession)
		r.Post("/session/reset", h.ResetSession)
		r.Post("/chat", h.PostChat)
		r.Get("/plans/{agent}", h.GetPlan)
	})
}

type imageJSON struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// sessionJSON is the client view of one tab's state.
type sessionJSON struct {
	UserID          string        `json:"user_id"`
	Username        string        `json:"username"`
	SessionID       string        `json:"session_id"`
	Turns           []domain.Turn `json:"turns"`
	Revealed        int           `json:"revealed"`
	Total           int           `json:"total"`
	Pending         bool          `json:"pending"`
	SelectedCase    string        `json:"selected_case,omitempty"`
	SelectedImage   *imageJSON    `json:"selected_image,omitempty"`
	ImagePickerOpen bool          `json:"image_picker_open"`
	PredictionDone  bool          `json:"prediction_done"`
	TherapyStarted  bool          `json:"therapy_started"`
}

func newSessionJSON(r *http.Request, st *session.State) sessionJSON {
	visible := st.Chat.Visible()
	if visible == nil {
		visible = []domain.Turn{}
	}
	out := sessionJSON{
		UserID:          identity.UserIDFromContext(r.Context()),
		Username:        identity.UsernameFromContext(r.Context()),
		SessionID:       identity.SessionIDFromContext(r.Context()),
		Turns:           visible,
		Revealed:        st.Chat.Revealed(),
		Total:           st.Chat.Len(),
		Pending:         st.Chat.Pending(),
		SelectedCase:    st.SelectedCase,
		ImagePickerOpen: st.ImagePickerOpen,
		PredictionDone:  st.PredictionDone,
		TherapyStarted:  st.TherapyStarted,
	}
	if st.HasImage() {
		out.SelectedImage = &imageJSON{Label: st.SelectedImageLabel, Path: st.SelectedImagePath}
	}
	return out
}

func sessionKey(r *http.Request) session.Key {
	return session.Key{
		UserID:    identity.UserIDFromContext(r.Context()),
		SessionID: identity.SessionIDFromContext(r.Context()),
	}
}

// startChat loads the scripted conversation into a fresh session. A missing
// script leaves the chat empty.
func (h *Handler) startChat(st *session.State) {
	if st.Chat.Initialized {
		return
	}
	turns, err := h.content.ChatScript()
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		slog.Error("Failed to load chat script", "error", err)
	}
	st.Chat.Initialize(turns, h.now())
}

// GetSession returns the current tab's state, advancing the chat reveal
// the same way a page render does.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	var out sessionJSON
	err := h.sessions.Do(r.Context(), sessionKey(r), func(st *session.State) error {
		h.startChat(st)
		st.Chat.Tick(h.now(), h.interval)
		out = newSessionJSON(r, st)
		return nil
	})
	if err != nil {
		slog.Error("Failed to load session", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	JSON(w, http.StatusOK, out)
}

// ResetSession discards the current tab's state.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(r)
	if err := h.sessions.Reset(r.Context(), key); err != nil {
		slog.Error("Failed to reset session", "error", err, "session_id", key.SessionID)
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}
	slog.Info("Session reset", "user_id", key.UserID, "session_id", key.SessionID)
	JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply   string      `json:"reply"`
	Session sessionJSON `json:"session"`
}

// PostChat submits one user message and returns the reply with the
// updated conversation.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp chatResponse
	err := h.sessions.Do(r.Context(), sessionKey(r), func(st *session.State) error {
		h.startChat(st)
		reply, err := h.chat.Submit(r.Context(), &st.Chat, req.Message)
		if err != nil {
			return err
		}
		resp = chatResponse{Reply: reply, Session: newSessionJSON(r, st)}
		return nil
	})
	if errors.Is(err, chat.ErrEmptyMessage) {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("Failed to submit chat message", "error", err)
		Error(w, http.StatusInternalServerError, "failed to submit message")
		return
	}
	JSON(w, http.StatusOK, resp)
}

type planResponse struct {
	Agent  domain.Agent   `json:"agent"`
	Title  string         `json:"title"`
	Blocks []render.Block `json:"blocks"`
}

// GetPlan renders one agent's plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	agent := domain.Agent(chi.URLParam(r, "agent"))
	if !agent.Valid() {
		Error(w, http.StatusNotFound, "unknown agent")
		return
	}

	blocks, err := render.Agent(h.content, agent)
	switch {
	case errors.Is(err, content.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		slog.Error("Failed to render plan", "agent", agent, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, planResponse{Agent: agent, Title: render.AgentTitle(agent), Blocks: blocks})
}
