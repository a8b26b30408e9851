package request

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/khidmajo/khidma-api/internal/auth"
	userentity "github.com/khidmajo/khidma-api/internal/user/entity"
)

// Handler exposes the service-request endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest is the new-request payload.
type CreateRequest struct {
	CategoryID  string `json:"category_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	City        string `json:"city"`
}

// Create opens a new request for the authenticated customer.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	created, err := h.svc.Create(r.Context(), claims.Subject, CreateInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
	})
	if err != nil {
		h.writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "request": created})
}

// ListMine returns the caller's requests: created ones for customers,
// assigned ones for providers.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())

	var err error
	var reqs any
	if claims.UserType == userentity.TypeProvider {
		reqs, err = h.svc.ListByProvider(r.Context(), claims.Subject)
	} else {
		reqs, err = h.svc.ListByCustomer(r.Context(), claims.Subject)
	}
	if err != nil {
		h.logger.Errorw("list requests failed", "user_id", claims.Subject, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "requests": reqs})
}

// ListOpen returns unassigned pending requests, optionally by ?city=.
func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListOpen(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		h.logger.Errorw("list open requests failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "requests": reqs})
}

// Accept assigns the request to the authenticated provider.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())

	updated, err := h.svc.Accept(r.Context(), r.PathValue("id"), claims.Subject, claims.Verified)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "request": updated})
}

// SetStatusRequest is the status transition payload.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus advances or cancels a request on behalf of the caller.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	updated, err := h.svc.SetStatus(r.Context(), r.PathValue("id"), claims.Subject, req.Status)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "request": updated})
}

func (h *Handler) writeRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "request not found")
	case errors.Is(err, ErrNotAllowed):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, ErrProviderNotVerified):
		writeError(w, http.StatusForbidden, "provider is not verified")
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid status transition")
	default:
		h.logger.Errorw("request operation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "request operation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
