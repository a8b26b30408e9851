package auth

import (
	"context"
	"net/http"
	"strings"
)

// SessionCookie is the cookie carrying the session token for browser
// clients. The Authorization header takes precedence when both are sent.
const SessionCookie = "auth_token"

type contextKey struct{}

// ClaimsFrom returns the session claims attached by the middleware, or
// nil when the request was not authenticated.
func ClaimsFrom(ctx context.Context) *SessionClaims {
	claims, _ := ctx.Value(contextKey{}).(*SessionClaims)
	return claims
}

// WithClaims attaches session claims to a context. Exposed for handler tests.
func WithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ExtractToken pulls the session token from the Authorization header or
// the session cookie, header first. Empty string when neither is present.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(strings.ToLower(h), "bearer ") {
			return strings.TrimSpace(h[len("bearer "):])
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Middleware resolves session tokens into request-scoped claims.
type Middleware struct {
	tokens  *TokenService
	revoker *Revoker
}

func NewMiddleware(tokens *TokenService, revoker *Revoker) *Middleware {
	return &Middleware{tokens: tokens, revoker: revoker}
}

// RequireSession rejects requests without a valid session and attaches
// the resolved claims to the request context otherwise.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			unauthorized(w, "authentication required")
			return
		}
		claims, ok := m.tokens.Parse(token)
		if !ok || !m.revoker.Valid(claims) {
			unauthorized(w, "invalid or expired session")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRole gates a handler on the session's user type. It must be
// mounted inside RequireSession.
func (m *Middleware) RequireRole(role string, next http.Handler) http.Handler {
	return m.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		if claims == nil || claims.UserType != role {
			forbidden(w, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}

func forbidden(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusForbidden, msg)
}
