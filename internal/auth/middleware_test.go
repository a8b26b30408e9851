package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(t *testing.T, captured **SessionClaims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = ClaimsFrom(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_RequireSession(t *testing.T) {
	tokens := NewTokenService("secret", DefaultSessionTTL)
	mw := NewMiddleware(tokens, NewRevoker())

	valid, err := tokens.Issue(testUser())
	require.NoError(t, err)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "no token",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "garbage bearer token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not.a.token")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid bearer token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+valid)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "valid cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: valid})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid header beats valid cookie",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer tampered")
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: valid})
			},
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims *SessionClaims
			r := httptest.NewRequest("GET", "/khidma-api/auth/me", nil)
			tt.setup(r)
			w := httptest.NewRecorder()

			mw.RequireSession(okHandler(t, &claims)).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, claims)
				assert.Equal(t, testUser().ID, claims.Subject)
			}
		})
	}
}

func TestMiddleware_RevokedSession(t *testing.T) {
	tokens := NewTokenService("secret", DefaultSessionTTL)
	revoker := NewRevoker()
	mw := NewMiddleware(tokens, revoker)

	token, err := tokens.Issue(testUser())
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/khidma-api/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	mw.RequireSession(okHandler(t, nil)).ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	// deactivation revokes outstanding sessions
	revoker.RevokeAt(testUser().ID, time.Now().Add(time.Second))

	w = httptest.NewRecorder()
	mw.RequireSession(okHandler(t, nil)).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_RequireRole(t *testing.T) {
	tokens := NewTokenService("secret", DefaultSessionTTL)
	mw := NewMiddleware(tokens, NewRevoker())

	providerToken, err := tokens.Issue(testUser())
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/khidma-api/admin/users", nil)
	r.Header.Set("Authorization", "Bearer "+providerToken)

	w := httptest.NewRecorder()
	mw.RequireRole("admin", okHandler(t, nil)).ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	mw.RequireRole("provider", okHandler(t, nil)).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevoker_TokenIssuedAfterRevocation(t *testing.T) {
	revoker := NewRevoker()
	tokens := NewTokenService("secret", DefaultSessionTTL)

	revoker.RevokeAt(testUser().ID, time.Now().Add(-time.Hour))

	token, err := tokens.Issue(testUser())
	require.NoError(t, err)
	claims, ok := tokens.Parse(token)
	require.True(t, ok)

	// re-login after reactivation issues tokens newer than the revocation
	assert.True(t, revoker.Valid(claims))
}
