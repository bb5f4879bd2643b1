package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Middleware validates bearer tokens and, when Scope is set, requires it.
type Middleware struct {
	Config Config
	Scope  string
}

// NewMiddleware constructs a middleware that accepts any valid token.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg}
}

// Require returns a copy of m that rejects tokens lacking scope.
func (m Middleware) Require(scope string) Middleware {
	m.Scope = scope
	return m
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.parseRequest(r)
		if err != nil {
			detail := ErrInvalidToken.Error()
			if errors.Is(err, ErrMissingToken) {
				detail = ErrMissingToken.Error()
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="mapty"`)
			writeProblem(w, http.StatusUnauthorized, "unauthorized", detail)
			return
		}
		if m.Scope != "" && !claims.HasScope(m.Scope) {
			writeProblem(w, http.StatusForbidden, "forbidden", "scope "+m.Scope+" required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	switch {
	case scheme == "":
		return nil, ErrMissingToken
	case !found || !strings.EqualFold(scheme, "bearer"):
		return nil, ErrInvalidToken
	}
	return Parse(token, m.Config)
}

func writeProblem(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"type": code, "detail": detail})
}
