package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khidmajo/khidma-api/internal/storage"
	"github.com/khidmajo/khidma-api/internal/verification/entity"
)

// Store is the verification persistence surface.
type Store interface {
	EnsurePending(ctx context.Context, providerID string) error
	Get(ctx context.Context, providerID string) (*entity.ProviderVerification, error)
	SetDecision(ctx context.Context, providerID, status, notes string, reviewedAt time.Time) error
	ListPending(ctx context.Context) ([]*entity.ProviderVerification, error)
	AddDocument(ctx context.Context, doc *entity.Document) error
	SetDocumentDecision(ctx context.Context, providerID, docID, status, notes string, reviewedAt time.Time) error
	ListDocuments(ctx context.Context, providerID string) ([]entity.Document, error)
}

// UserVerifier keeps the user-level verified flag in step with review
// decisions.
type UserVerifier interface {
	SetVerified(ctx context.Context, id string, verified bool) error
}

var (
	ErrNotFound         = errors.New("provider verification record not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidAction    = errors.New("action must be approved or rejected")
	ErrInvalidDocType   = errors.New("unknown document type")
)

// Service drives the provider review workflow. Provider-level decisions
// are admin-only and deliberately independent of document sub-statuses:
// an admin may approve a provider whose documents are still pending.
type Service struct {
	store Store
	users UserVerifier

	// now is swapped in tests.
	now func() time.Time
}

func NewService(store Store, users UserVerifier) *Service {
	return &Service{store: store, users: users, now: time.Now}
}

// EnsurePending opens the review record for a newly registered provider.
// Idempotent: an existing record is left untouched.
func (s *Service) EnsurePending(ctx context.Context, providerID string) error {
	return s.store.EnsurePending(ctx, providerID)
}

// Get returns the full verification record including documents.
func (s *Service) Get(ctx context.Context, providerID string) (*entity.ProviderVerification, error) {
	rec, err := s.store.Get(ctx, providerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListPending returns the admin review queue: every record still pending.
func (s *Service) ListPending(ctx context.Context) ([]*entity.ProviderVerification, error) {
	return s.store.ListPending(ctx)
}

// Review applies an admin decision to the provider-level record. The
// record status and the user's verified flag always move together; an
// invalid action or unknown provider mutates nothing.
func (s *Service) Review(ctx context.Context, providerID, action, notes string) error {
	if !entity.ValidDecision(action) {
		return ErrInvalidAction
	}
	prev, err := s.Get(ctx, providerID)
	if err != nil {
		return err
	}
	if err := s.store.SetDecision(ctx, providerID, action, notes, s.now().UTC()); err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	if err := s.users.SetVerified(ctx, providerID, action == entity.StatusApproved); err != nil {
		// revert the decision so the record status and the user flag
		// never diverge
		var prevReviewed time.Time
		if prev.ReviewedAt != nil {
			prevReviewed = *prev.ReviewedAt
		}
		if rbErr := s.store.SetDecision(ctx, providerID, prev.Status, prev.Notes, prevReviewed); rbErr != nil {
			return fmt.Errorf("sync user verified flag: %w (revert decision: %v)", err, rbErr)
		}
		return fmt.Errorf("sync user verified flag: %w", err)
	}
	return nil
}

// SubmitDocument records uploaded document metadata in pending state,
// opening the provider's review record if this is their first submission.
func (s *Service) SubmitDocument(ctx context.Context, providerID, docType string) (*entity.Document, error) {
	if !entity.ValidDocType(docType) {
		return nil, ErrInvalidDocType
	}
	if err := s.store.EnsurePending(ctx, providerID); err != nil {
		return nil, err
	}
	doc := &entity.Document{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		Type:       docType,
		Status:     entity.StatusPending,
		UploadedAt: s.now().UTC(),
	}
	if err := s.store.AddDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReviewDocument applies an admin decision to a single document. It never
// touches the provider-level status.
func (s *Service) ReviewDocument(ctx context.Context, providerID, docID, action, notes string) error {
	if !entity.ValidDecision(action) {
		return ErrInvalidAction
	}
	err := s.store.SetDocumentDecision(ctx, providerID, docID, action, notes, s.now().UTC())
	if errors.Is(err, storage.ErrNotFound) {
		return ErrDocumentNotFound
	}
	return err
}

// ListDocuments returns a provider's submitted documents.
func (s *Service) ListDocuments(ctx context.Context, providerID string) ([]entity.Document, error) {
	return s.store.ListDocuments(ctx, providerID)
}
