package policy

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthorizerDisabledAllowsEverything(t *testing.T) {
	a := NewAuthorizer("")
	if a.Enabled() {
		t.Fatalf("Enabled() = true for empty token")
	}
	r := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	if !a.Allow(r) {
		t.Fatalf("Allow() = false with auth disabled")
	}
}

func TestAuthorizerChecksBearerToken(t *testing.T) {
	a := NewAuthorizer("s3cret")

	r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	if a.Allow(r) {
		t.Fatalf("Allow() = true without credentials")
	}

	r.Header.Set("Authorization", "Bearer wrong")
	if a.Allow(r) {
		t.Fatalf("Allow() = true with wrong token")
	}

	r.Header.Set("Authorization", "Bearer s3cret")
	if !a.Allow(r) {
		t.Fatalf("Allow() = false with correct token")
	}
}

func TestAuthorizerAcceptsQueryTokenForWebsockets(t *testing.T) {
	a := NewAuthorizer("s3cret")
	r := httptest.NewRequest(http.MethodGet, "/ws/chat?session_id=s1&token=s3cret", nil)
	if !a.Allow(r) {
		t.Fatalf("Allow() = false for query token")
	}
}

func TestAuthorizerMiddlewareRejectsWith401(t *testing.T) {
	a := NewAuthorizer("s3cret")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile/g1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profile/g1", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	a.Middleware(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
