package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khidmajo/khidma-api/internal/user/entity"
)

func testUser() *entity.User {
	return &entity.User{
		ID:       "usr_2bXkTestUser",
		Email:    "provider@example.com",
		Name:     "أبو خليل للصيانة",
		UserType: entity.TypeProvider,
		Verified: true,
		Active:   true,
	}
}

func TestTokenService_Roundtrip(t *testing.T) {
	svc := NewTokenService("secret", DefaultSessionTTL)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	claims, ok := svc.Parse(token)
	require.True(t, ok)
	assert.Equal(t, "usr_2bXkTestUser", claims.Subject)
	assert.Equal(t, "أبو خليل للصيانة", claims.Name)
	assert.Equal(t, entity.TypeProvider, claims.UserType)
	assert.True(t, claims.Verified)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_FixedLifetime(t *testing.T) {
	svc := NewTokenService("secret", DefaultSessionTTL)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	claims, ok := svc.Parse(token)
	require.True(t, ok)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenService_TamperedPayload(t *testing.T) {
	svc := NewTokenService("secret", DefaultSessionTTL)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// flip a single character in the payload segment
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, ok := svc.Parse(tampered)
	assert.False(t, ok)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", DefaultSessionTTL)
	svc.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	// issued 25h in the past, so the 24h lifetime has elapsed even though
	// the signature is valid
	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, ok := svc.Parse(token)
	assert.False(t, ok)
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", DefaultSessionTTL)
	verifier := NewTokenService("secret-b", DefaultSessionTTL)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, ok := verifier.Parse(token)
	assert.False(t, ok)
}

func TestTokenService_MalformedInput(t *testing.T) {
	svc := NewTokenService("secret", DefaultSessionTTL)

	for _, token := range []string{"", "abc", "a.b", "a.b.c.d", "..", "a.b.c"} {
		_, ok := svc.Parse(token)
		assert.False(t, ok, "token %q must not parse", token)
	}
}
