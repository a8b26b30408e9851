package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khidmajo/khidma-api/internal/storage"
	"github.com/khidmajo/khidma-api/internal/user/entity"
	"github.com/khidmajo/khidma-api/pkg/utilities"
)

// UserStore is the slice of user persistence the auth flows need.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
}

// VerificationOpener creates the pending review record when a provider
// registers.
type VerificationOpener interface {
	EnsurePending(ctx context.Context, providerID string) error
}

// sentinel errors for common failure modes
var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrDisabled       = errors.New("account disabled")
	ErrEmailTaken     = errors.New("email already registered")
	ErrValidation     = errors.New("invalid input")
)

// Service orchestrates login and registration.
type Service struct {
	users         UserStore
	verifications VerificationOpener
	hasher        PasswordHasher
	tokens        *TokenService
}

func NewService(users UserStore, verifications VerificationOpener, hasher PasswordHasher, tokens *TokenService) *Service {
	if hasher == nil {
		hasher = PBKDF2Hasher{}
	}
	return &Service{users: users, verifications: verifications, hasher: hasher, tokens: tokens}
}

// Login authenticates by email and password and issues a session token.
// Unknown email and wrong password both map to ErrBadCredentials so the
// response never reveals which one failed.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrBadCredentials
		}
		return nil, "", err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, "", ErrBadCredentials
	}
	if !u.Active {
		return nil, "", ErrDisabled
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// RegisterInput carries the fields common to customer and provider signup.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	City     string
	Password string
}

// Register creates an account of the given user type, hashes the password
// and issues a session token. Providers additionally get a pending
// verification record opened.
func (s *Service) Register(ctx context.Context, in RegisterInput, userType string) (*entity.User, string, error) {
	if userType != entity.TypeCustomer && userType != entity.TypeProvider {
		return nil, "", fmt.Errorf("%w: unsupported user type", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrValidation, errNameRequired)
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := validatePhone(in.Phone); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
	}

	hash, algo, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &entity.User{
		ID:           utilities.NewID(utilities.PrefixUser),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.ReplaceAll(strings.TrimSpace(in.Phone), " ", ""),
		City:         strings.TrimSpace(in.City),
		PasswordHash: hash,
		PasswordAlgo: algo,
		UserType:     userType,
		Verified:     false,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	if userType == entity.TypeProvider && s.verifications != nil {
		if err := s.verifications.EnsurePending(ctx, u.ID); err != nil {
			return nil, "", fmt.Errorf("open verification record: %w", err)
		}
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
