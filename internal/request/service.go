package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khidmajo/khidma-api/internal/request/entity"
	"github.com/khidmajo/khidma-api/internal/storage"
	"github.com/khidmajo/khidma-api/pkg/utilities"
)

// Store is the service-request persistence surface.
type Store interface {
	Create(ctx context.Context, req *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	Update(ctx context.Context, req *entity.Request) error
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Request, error)
	ListByProvider(ctx context.Context, providerID string) ([]*entity.Request, error)
	ListOpen(ctx context.Context, city string) ([]*entity.Request, error)
	CancelOpenByProvider(ctx context.Context, providerID string) (int, error)
}

var (
	ErrNotFound            = errors.New("request not found")
	ErrValidation          = errors.New("invalid input")
	ErrNotAllowed          = errors.New("not allowed")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrProviderNotVerified = errors.New("provider is not verified")
)

// Service covers the service-request lifecycle.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput carries the customer's new-request fields.
type CreateInput struct {
	CategoryID  string
	Title       string
	Description string
	City        string
}

// Create opens a new pending request for the customer.
func (s *Service) Create(ctx context.Context, customerID string, in CreateInput) (*entity.Request, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.CategoryID) == "" {
		return nil, fmt.Errorf("%w: title and category are required", ErrValidation)
	}
	now := time.Now().UTC()
	req := &entity.Request{
		ID:          utilities.NewID(utilities.PrefixRequest),
		CustomerID:  customerID,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		City:        strings.TrimSpace(in.City),
		Status:      entity.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListByCustomer returns a customer's own requests.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Request, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// ListByProvider returns the requests assigned to a provider.
func (s *Service) ListByProvider(ctx context.Context, providerID string) ([]*entity.Request, error) {
	return s.store.ListByProvider(ctx, providerID)
}

// ListOpen returns unassigned pending requests for the browse page,
// optionally filtered by city.
func (s *Service) ListOpen(ctx context.Context, city string) ([]*entity.Request, error) {
	return s.store.ListOpen(ctx, city)
}

// Accept assigns a pending request to a verified provider.
func (s *Service) Accept(ctx context.Context, requestID, providerID string, providerVerified bool) (*entity.Request, error) {
	if !providerVerified {
		return nil, ErrProviderNotVerified
	}
	req, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.StatusPending || req.ProviderID != nil {
		return nil, ErrInvalidTransition
	}
	req.ProviderID = &providerID
	req.Status = entity.StatusAccepted
	req.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// SetStatus moves a request along its lifecycle on behalf of actorID.
// The assigned provider advances accepted → in_progress → completed;
// either party may cancel a non-terminal request.
func (s *Service) SetStatus(ctx context.Context, requestID, actorID, status string) (*entity.Request, error) {
	req, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	isCustomer := req.CustomerID == actorID
	isProvider := req.ProviderID != nil && *req.ProviderID == actorID
	if !isCustomer && !isProvider {
		return nil, ErrNotAllowed
	}

	now := time.Now().UTC()
	switch status {
	case entity.StatusInProgress:
		if !isProvider || req.Status != entity.StatusAccepted {
			return nil, ErrInvalidTransition
		}
	case entity.StatusCompleted:
		if !isProvider || req.Status != entity.StatusInProgress {
			return nil, ErrInvalidTransition
		}
		req.CompletedAt = &now
	case entity.StatusCancelled:
		if entity.Terminal(req.Status) {
			return nil, ErrInvalidTransition
		}
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	req.Status = status
	req.UpdatedAt = now
	if err := s.store.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) get(ctx context.Context, id string) (*entity.Request, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}
