package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	called := false
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(method, "/api/session", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if method != http.MethodOptions && !called {
		w.Code = -1
	}
	return w
}

func TestCORSWildcardNoCredentials(t *testing.T) {
	w := serve([]string{"*"}, http.MethodGet, "https://example.org")
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected handler to run, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("unexpected allow origin %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("wildcard match must not allow credentials")
	}
}

func TestCORSExplicitOriginAllowsCredentials(t *testing.T) {
	w := serve([]string{"https://app.example.org"}, http.MethodGet, "https://app.example.org")
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("expected credentials for explicit origin")
	}

	w = serve([]string{"https://app.example.org"}, http.MethodGet, "https://evil.example.org")
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unlisted origin must not be allowed")
	}
}

func TestCORSPreflight(t *testing.T) {
	w := serve([]string{"*"}, http.MethodOptions, "https://example.org")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-KOA-Session-ID" {
		t.Errorf("unexpected allow headers %q", got)
	}
}

func TestOrigins(t *testing.T) {
	if got := Origins(""); len(got) != 1 || got[0] != "*" {
		t.Errorf("expected wildcard, got %v", got)
	}
	if got := Origins("https://app.example.org/"); len(got) != 1 || got[0] != "https://app.example.org" {
		t.Errorf("unexpected origins %v", got)
	}
}
