package policy

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authorizer gates the coaching API behind a shared bearer token. An empty
// token disables the check, which is the local-development default.
type Authorizer struct {
	token string
}

func NewAuthorizer(token string) *Authorizer {
	return &Authorizer{token: strings.TrimSpace(token)}
}

func (a *Authorizer) Enabled() bool {
	return a.token != ""
}

// Allow reports whether the request carries the expected bearer token.
// Websocket clients cannot always set headers, so a token query parameter
// is accepted as a fallback.
func (a *Authorizer) Allow(r *http.Request) bool {
	if a.token == "" {
		return true
	}

	candidate := ""
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		candidate = strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}
	if candidate == "" {
		candidate = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.token)) == 1
}

// Middleware rejects unauthorized requests with 401 before they reach the
// API handlers.
func (a *Authorizer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Allow(r) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
