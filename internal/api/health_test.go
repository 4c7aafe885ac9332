//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/domain"
)

type fakeRepo struct {
	pingErr error
}

func (f *fakeRepo) GetUser(context.Context, string) (*domain.User, error)   { return nil, nil }
func (f *fakeRepo) UpsertUser(context.Context, *domain.User) error          { return nil }
func (f *fakeRepo) UpdateLastSeen(context.Context, string, time.Time) error { return nil }
func (f *fakeRepo) GetSession(context.Context, string, string) (*domain.SessionRecord, error) {
	return nil, nil
}
func (f *fakeRepo) UpsertSession(context.Context, *domain.SessionRecord) error { return nil }
func (f *fakeRepo) DeleteSession(context.Context, string, string) error        { return nil }
func (f *fakeRepo) ListExpiredSessions(context.Context, time.Duration) ([]*domain.SessionRecord, error) {
	return nil, nil
}
func (f *fakeRepo) Ping(context.Context) error { return f.pingErr }
func (f *fakeRepo) Close() error               { return nil }

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func checkHealth(t *testing.T, h *HealthHandler) (int, healthBody) {
	t.Helper()
	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body healthBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return w.Code, body
}

func TestHealthOK(t *testing.T) {
	store, err := content.Open("")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	code, body := checkHealth(t, NewHealthHandler(&fakeRepo{}, store))
	if code != http.StatusOK || body.Status != "healthy" {
		t.Fatalf("Expected healthy 200, got %d %q", code, body.Status)
	}
	if body.Checks["database"] != "ok" || body.Checks["content"] != "ok" {
		t.Errorf("Unexpected checks: %v", body.Checks)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	store, err := content.Open("")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	code, body := checkHealth(t, NewHealthHandler(&fakeRepo{pingErr: errors.New("disk gone")}, store))
	if code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", code)
	}
	if body.Status != "degraded" || body.Checks["database"] != "unreachable" {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestHealthMissingPlansStaysUp(t *testing.T) {
	code, body := checkHealth(t, NewHealthHandler(&fakeRepo{}, content.New(fstest.MapFS{})))
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if body.Checks["content"] != "plans unavailable" {
		t.Errorf("Expected content warning, got %v", body.Checks)
	}
}
