package user

import (
	"context"
	"errors"

	"github.com/khidmajo/khidma-api/internal/storage"
	"github.com/khidmajo/khidma-api/internal/user/entity"
)

// Store is the user persistence surface the admin flows need.
type Store interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// RequestCanceller cancels a provider's open service requests; the
// deactivation cascade depends on it.
type RequestCanceller interface {
	CancelOpenByProvider(ctx context.Context, providerID string) (int, error)
}

// SessionRevoker invalidates a user's outstanding session tokens.
type SessionRevoker interface {
	Revoke(userID string)
}

var ErrNotFound = errors.New("user not found")

// Service covers admin-side user management.
type Service struct {
	users    Store
	requests RequestCanceller
	sessions SessionRevoker
}

func NewService(users Store, requests RequestCanceller, sessions SessionRevoker) *Service {
	return &Service{users: users, requests: requests, sessions: sessions}
}

// List returns every account for the admin panel.
func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	return s.users.List(ctx)
}

// Get returns one account by id.
func (s *Service) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// SetActive toggles an account's active flag. Deactivation cascades:
// the user's open service requests are cancelled and unassigned, and the
// user's outstanding sessions are revoked. Reactivation flips the flag
// only and never resurrects cancelled requests.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (cancelled int, err error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if active {
		return 0, nil
	}

	if s.requests != nil {
		cancelled, err = s.requests.CancelOpenByProvider(ctx, id)
		if err != nil {
			return 0, err
		}
	}
	if s.sessions != nil {
		s.sessions.Revoke(id)
	}
	return cancelled, nil
}
