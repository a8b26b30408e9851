package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/khidmajo/khidma-api/internal/user/entity"
)

// Handler exposes the admin user-management endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List returns every account for the admin panel.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("list users failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	views := make([]entity.PublicView, 0, len(users))
	for _, u := range users {
		views = append(views, u.Public())
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": views})
}

// SetActiveRequest is the activation toggle payload.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive toggles a user's active flag and reports how many open
// requests the deactivation cascade cancelled.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	cancelled, err := h.svc.SetActive(r.Context(), id, req.Active)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Errorw("set active failed", "user_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	msg := "user activated"
	if !req.Active {
		msg = fmt.Sprintf("user deactivated, %d open request(s) cancelled", cancelled)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
