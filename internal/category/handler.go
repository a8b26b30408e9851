package category

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the category endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List returns active categories for the public browse page.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.List(r.Context(), true)
	if err != nil {
		h.logger.Errorw("list categories failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "categories": cats})
}

// CreateRequest is the admin create-category payload.
type CreateRequest struct {
	Slug   string `json:"slug"`
	NameEn string `json:"name_en"`
	NameAr string `json:"name_ar"`
}

// Create adds a new category (admin only).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	c, err := h.svc.Create(r.Context(), req.Slug, req.NameEn, req.NameAr)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrSlugTaken):
			writeError(w, http.StatusBadRequest, "category slug already exists")
		default:
			h.logger.Errorw("create category failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to create category")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "category": c})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
