package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khidmajo/khidma-api/internal/user/entity"
	userrepo "github.com/khidmajo/khidma-api/internal/user/repo"
)

type fakeVerifications struct {
	opened []string
}

func (f *fakeVerifications) EnsurePending(_ context.Context, providerID string) error {
	f.opened = append(f.opened, providerID)
	return nil
}

func newTestService(t *testing.T) (*Service, *userrepo.MemoryRepo, *fakeVerifications) {
	t.Helper()
	users := userrepo.NewMemoryRepo()
	verifs := &fakeVerifications{}
	svc := NewService(users, verifs, PBKDF2Hasher{Iterations: 1000}, NewTokenService("secret", DefaultSessionTTL))
	return svc, users, verifs
}

func registerInput() RegisterInput {
	return RegisterInput{
		Name:     "Lina Haddad",
		Email:    "lina@example.com",
		Phone:    "0791234567",
		City:     "Amman",
		Password: "password1",
	}
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc, _, verifs := newTestService(t)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, registerInput(), entity.TypeCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, entity.TypeCustomer, u.UserType)
	assert.True(t, u.Active)
	assert.False(t, u.Verified)
	assert.NotEqual(t, "password1", u.PasswordHash)
	assert.Empty(t, verifs.opened, "customers get no verification record")

	got, token, err := svc.Login(ctx, "lina@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, token)
}

func TestService_RegisterProviderOpensVerification(t *testing.T) {
	svc, _, verifs := newTestService(t)

	u, _, err := svc.Register(context.Background(), registerInput(), entity.TypeProvider)
	require.NoError(t, err)
	require.Len(t, verifs.opened, 1)
	assert.Equal(t, u.ID, verifs.opened[0])
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.Name = " " }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"non-jordanian phone", func(in *RegisterInput) { in.Phone = "0123456789" }},
		{"short password", func(in *RegisterInput) { in.Password = "ab1" }},
		{"password without digit", func(in *RegisterInput) { in.Password = "passwordonly" }},
		{"password without letter", func(in *RegisterInput) { in.Password = "1234567890" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput()
			tt.mutate(&in)
			_, _, err := svc.Register(ctx, in, entity.TypeCustomer)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestService_RegisterAcceptsJordanianPhoneForms(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i, phone := range []string{"0791234567", "791234567", "+962791234567", "962781234567", "079 123 4567"} {
		in := registerInput()
		in.Email = string(rune('a'+i)) + "@example.com"
		in.Phone = phone
		_, _, err := svc.Register(ctx, in, entity.TypeCustomer)
		assert.NoError(t, err, "phone %q", phone)
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerInput(), entity.TypeCustomer)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerInput(), entity.TypeCustomer)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_LoginFailures(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, registerInput(), entity.TypeCustomer)
	require.NoError(t, err)

	// unknown email and wrong password map to the same error
	_, _, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, _, err = svc.Login(ctx, "lina@example.com", "wrongpass1")
	assert.ErrorIs(t, err, ErrBadCredentials)

	// deactivated accounts are refused even with correct credentials
	require.NoError(t, users.SetActive(ctx, u.ID, false))
	_, _, err = svc.Login(ctx, "lina@example.com", "password1")
	assert.ErrorIs(t, err, ErrDisabled)
}
