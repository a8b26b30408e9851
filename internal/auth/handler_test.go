package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khidmajo/khidma-api/internal/config"
	"github.com/khidmajo/khidma-api/internal/user/entity"
	userrepo "github.com/khidmajo/khidma-api/internal/user/repo"
)

func testLimits() config.RateLimit {
	return config.RateLimit{
		LoginMax:               5,
		LoginWindow:            time.Minute,
		RegisterMax:            3,
		RegisterWindow:         time.Hour,
		RegisterProviderMax:    2,
		RegisterProviderWindow: 24 * time.Hour,
	}
}

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	users := userrepo.NewMemoryRepo()
	svc := NewService(users, nil, PBKDF2Hasher{Iterations: 1000}, NewTokenService("secret", DefaultSessionTTL))
	return NewHandler(svc, NewRateLimiter(), testLimits(), zap.NewNop().Sugar()), svc
}

func TestHandler_LoginSuccess(t *testing.T) {
	h, svc := newTestHandler(t)

	_, _, err := svc.Register(context.Background(), registerInput(), entity.TypeCustomer)
	require.NoError(t, err)

	body := strings.NewReader(`{"email":"lina@example.com","password":"password1"}`)
	r := httptest.NewRequest("POST", "/khidma-api/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		User    entity.PublicView `json:"user"`
		Token   string            `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "lina@example.com", resp.User.Email)
	assert.Len(t, strings.Split(resp.Token, "."), 3)

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "auth_token=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=Strict")
	assert.Contains(t, cookie, "Max-Age=86400")
}

func TestHandler_CookieLifetimeTracksTokenTTL(t *testing.T) {
	users := userrepo.NewMemoryRepo()
	svc := NewService(users, nil, PBKDF2Hasher{Iterations: 1000}, NewTokenService("secret", time.Hour))
	h := NewHandler(svc, NewRateLimiter(), testLimits(), zap.NewNop().Sugar())

	_, _, err := svc.Register(context.Background(), registerInput(), entity.TypeCustomer)
	require.NoError(t, err)

	body := strings.NewReader(`{"email":"lina@example.com","password":"password1"}`)
	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest("POST", "/khidma-api/auth/login", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=3600")
}

func TestHandler_LoginFailures(t *testing.T) {
	h, svc := newTestHandler(t)

	_, _, err := svc.Register(context.Background(), registerInput(), entity.TypeCustomer)
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest},
		{"missing fields", `{}`, http.StatusBadRequest},
		{"unknown email", `{"email":"ghost@example.com","password":"password1"}`, http.StatusUnauthorized},
		{"wrong password", `{"email":"lina@example.com","password":"nope12345"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/khidma-api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Login(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	// credential failures share one message, never "user not found"
	r := httptest.NewRequest("POST", "/khidma-api/auth/login",
		strings.NewReader(`{"email":"ghost@example.com","password":"password1"}`))
	w := httptest.NewRecorder()
	h.Login(w, r)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestHandler_LoginRateLimited(t *testing.T) {
	h, _ := newTestHandler(t)
	h.limits.LoginMax = 2
	h.limits.LoginWindow = time.Minute

	doLogin := func() int {
		r := httptest.NewRequest("POST", "/khidma-api/auth/login",
			strings.NewReader(`{"email":"ghost@example.com","password":"password1"}`))
		r.RemoteAddr = "203.0.113.5:4000"
		w := httptest.NewRecorder()
		h.Login(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, doLogin())
	assert.Equal(t, http.StatusUnauthorized, doLogin())
	assert.Equal(t, http.StatusTooManyRequests, doLogin())
}

func TestHandler_RegisterProviderStricterWindow(t *testing.T) {
	h, _ := newTestHandler(t)
	h.limits.RegisterProviderMax = 1

	doRegister := func(email string) int {
		body := `{"name":"Test Provider","email":"` + email + `","phone":"0791234567","city":"Amman","password":"password1"}`
		r := httptest.NewRequest("POST", "/khidma-api/auth/register/provider", strings.NewReader(body))
		r.RemoteAddr = "203.0.113.6:4000"
		w := httptest.NewRecorder()
		h.RegisterProvider(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, doRegister("p1@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, doRegister("p2@example.com"))
}

func TestHandler_RegisterValidationStatus(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"name":"Test","email":"bad-email","phone":"0791234567","password":"password1"}`
	r := httptest.NewRequest("POST", "/khidma-api/auth/register/customer", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.RegisterCustomer(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid")
}

func TestHandler_Me(t *testing.T) {
	h, _ := newTestHandler(t)

	claims := &SessionClaims{Name: "Lina Haddad", UserType: entity.TypeCustomer}
	claims.Subject = "usr_abc"

	r := httptest.NewRequest("GET", "/khidma-api/auth/me", nil)
	r = r.WithContext(WithClaims(r.Context(), claims))
	w := httptest.NewRecorder()
	h.Me(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "usr_abc")

	// without middleware-attached claims the endpoint refuses
	w = httptest.NewRecorder()
	h.Me(w, httptest.NewRequest("GET", "/khidma-api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_LogoutClearsCookie(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest("POST", "/khidma-api/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "auth_token=;")
	assert.Contains(t, cookie, "Max-Age=0")
}
