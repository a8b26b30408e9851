package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/khidmajo/khidma-api/internal/config"
	"github.com/khidmajo/khidma-api/internal/user/entity"
)

// Handler exposes HTTP endpoints for login, registration and session
// introspection.
type Handler struct {
	svc     *Service
	limiter *RateLimiter
	limits  config.RateLimit
	logger  *zap.SugaredLogger
}

func NewHandler(svc *Service, limiter *RateLimiter, limits config.RateLimit, logger *zap.SugaredLogger) *Handler {
	if limiter == nil {
		limiter = NewRateLimiter()
	}
	return &Handler{svc: svc, limiter: limiter, limits: limits, logger: logger}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload for both user types.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Password string `json:"password"`
}

// sessionResponse is the success shape shared by login and registration.
type sessionResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    entity.PublicView `json:"user"`
	Token   string            `json:"token"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(h.limiter.ClientKey("login", r), h.limits.LoginMax, h.limits.LoginWindow) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	u, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, "login", err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{
		Success: true,
		Message: "login successful",
		User:    u.Public(),
		Token:   token,
	})
}

// RegisterCustomer handles customer signup.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, entity.TypeCustomer, "register:customer", h.limits.RegisterMax, h.limits.RegisterWindow)
}

// RegisterProvider handles provider signup with its stricter rate window.
func (h *Handler) RegisterProvider(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, entity.TypeProvider, "register:provider", h.limits.RegisterProviderMax, h.limits.RegisterProviderWindow)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, userType, op string, max int, window time.Duration) {
	if !h.limiter.Allow(h.limiter.ClientKey(op, r), max, window) {
		writeError(w, http.StatusTooManyRequests, "too many registration attempts, try again later")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	u, token, err := h.svc.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		City:     req.City,
		Password: req.Password,
	}, userType)
	if err != nil {
		h.writeAuthError(w, "register", err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, sessionResponse{
		Success: true,
		Message: "registration successful",
		User:    u.Public(),
		Token:   token,
	})
}

// Me returns the identity resolved by the session middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	if claims == nil {
		unauthorized(w, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":        claims.Subject,
			"name":      claims.Name,
			"user_type": claims.UserType,
			"verified":  claims.Verified,
		},
	})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; clients are expected to discard it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "logged out"})
}

// setSessionCookie mirrors the token lifetime so the cookie and the
// token inside it expire together.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.svc.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// writeAuthError maps service errors onto the API error taxonomy.
func (h *Handler) writeAuthError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrDisabled):
		writeError(w, http.StatusForbidden, "account disabled")
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "email already registered")
	default:
		h.logger.Errorw(op+" failed", "err", err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}
