//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/identity"
	"github.com/ashureev/kneeoa/internal/render"
	"github.com/ashureev/kneeoa/internal/session"
	"github.com/ashureev/kneeoa/internal/store"
)

const testUser = "anon_0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) (http.Handler, *session.Manager) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cs, err := content.Open("")
	require.NoError(t, err)

	sessions := session.NewManager(repo)
	h := NewHandler(sessions, cs, chat.NewHandler(chat.NewRuleResponder(chat.DefaultRules, chat.FallbackReply)), time.Hour)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := identity.NewContext(r.Context(), testUser, r.Header.Get(identity.SessionHeaderName))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	h.RegisterRoutes(r)
	return r, sessions
}

func do(t *testing.T, h http.Handler, method, target, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(identity.SessionHeaderName, sessionID)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetSessionStartsChat(t *testing.T) {
	h, _ := newTestRouter(t)

	w := do(t, h, http.MethodGet, "/api/session", "tab-a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got sessionJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Equal(t, testUser, got.UserID)
	require.Equal(t, "tab-a", got.SessionID)
	require.Equal(t, 1, got.Revealed)
	require.Len(t, got.Turns, 1)
	require.True(t, got.Pending)
	require.Nil(t, got.SelectedImage)
}

func TestPostChat(t *testing.T) {
	h, _ := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/api/chat", "tab-a", chatRequest{Message: "Swelling after walks"})
	require.Equal(t, http.StatusOK, w.Code)

	var got chatResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Equal(t, chat.DefaultRules[1].Reply, got.Reply)
	require.False(t, got.Session.Pending)
	require.Equal(t, got.Session.Total, got.Session.Revealed)
	last := got.Session.Turns[len(got.Session.Turns)-1]
	require.Equal(t, domain.AssistantTurn(got.Reply), last)

	w = do(t, h, http.MethodPost, "/api/chat", "tab-a", chatRequest{Message: ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString("{"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsAreIsolatedAndResettable(t *testing.T) {
	h, sessions := newTestRouter(t)

	do(t, h, http.MethodPost, "/api/chat", "tab-a", chatRequest{Message: "Cracking"})

	w := do(t, h, http.MethodGet, "/api/session", "tab-b", nil)
	var other sessionJSON
	require.NoError(t, json.NewDecoder(w.Body).Decode(&other))
	require.Equal(t, 1, other.Revealed, "tab-b is untouched by tab-a")

	w = do(t, h, http.MethodPost, "/api/session/reset", "tab-a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	st, err := sessions.View(context.Background(), session.Key{UserID: testUser, SessionID: "tab-a"})
	require.NoError(t, err)
	require.False(t, st.Chat.Initialized)
}

func TestGetPlan(t *testing.T) {
	h, _ := newTestRouter(t)

	w := do(t, h, http.MethodGet, "/api/plans/surgical_pharma", "tab-a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got planResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Equal(t, domain.AgentSurgicalPharma, got.Agent)
	require.Equal(t, render.SurgicalPharmaAgent, got.Title)
	require.Len(t, got.Blocks, 2)
	require.Equal(t, render.StyleSurgical, got.Blocks[0].Style)
	require.Equal(t, render.StylePharma, got.Blocks[1].Style)

	w = do(t, h, http.MethodGet, "/api/plans/radiology", "tab-a", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
