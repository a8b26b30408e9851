package verification

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/khidmajo/khidma-api/internal/auth"
)

// Handler exposes the provider document endpoints and the admin review
// endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SubmitDocumentRequest is the provider's document submission payload.
// Only metadata travels here; the upload itself is handled elsewhere.
type SubmitDocumentRequest struct {
	Type string `json:"type"`
}

// SubmitDocument lets the authenticated provider register a document for
// review.
func (h *Handler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())

	var req SubmitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	doc, err := h.svc.SubmitDocument(r.Context(), claims.Subject, req.Type)
	if err != nil {
		if errors.Is(err, ErrInvalidDocType) {
			writeError(w, http.StatusBadRequest, "unknown document type")
			return
		}
		h.logger.Errorw("submit document failed", "provider_id", claims.Subject, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to submit document")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "document": doc})
}

// ListOwnDocuments returns the authenticated provider's documents.
func (h *Handler) ListOwnDocuments(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	docs, err := h.svc.ListDocuments(r.Context(), claims.Subject)
	if err != nil {
		h.logger.Errorw("list documents failed", "provider_id", claims.Subject, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "documents": docs})
}

// ListPending returns the admin review queue.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListPending(r.Context())
	if err != nil {
		h.logger.Errorw("list pending verifications failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list pending providers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "providers": recs})
}

// ReviewRequest is the admin decision payload.
type ReviewRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

// Review applies an admin decision to a provider.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := h.svc.Review(r.Context(), providerID, req.Action, req.Notes); err != nil {
		h.writeReviewError(w, providerID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "provider " + req.Action})
}

// ReviewDocument applies an admin decision to a single document.
func (h *Handler) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	docID := r.PathValue("docID")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if err := h.svc.ReviewDocument(r.Context(), providerID, docID, req.Action, req.Notes); err != nil {
		h.writeReviewError(w, providerID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "document " + req.Action})
}

func (h *Handler) writeReviewError(w http.ResponseWriter, providerID string, err error) {
	switch {
	case errors.Is(err, ErrInvalidAction):
		writeError(w, http.StatusBadRequest, "action must be approved or rejected")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "provider not found")
	case errors.Is(err, ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	default:
		h.logger.Errorw("review failed", "provider_id", providerID, "err", err)
		writeError(w, http.StatusInternalServerError, "review failed")
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
