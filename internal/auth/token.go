package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/khidmajo/khidma-api/internal/user/entity"
)

// SessionClaims is the typed session token payload. Keeping explicit
// fields instead of a claims bag avoids coercion surprises on decode.
type SessionClaims struct {
	jwt.RegisteredClaims
	Name     string `json:"name"`
	UserType string `json:"user_type"`
	Verified bool   `json:"verified"`
}

// TokenService issues and parses self-contained session tokens signed
// with symmetric HMAC. Tokens expire exactly TTL after issuance; there is
// no sliding expiration.
type TokenService struct {
	secret []byte
	ttl    time.Duration

	// now is swapped in tests.
	now func() time.Time
}

// DefaultSessionTTL is the fixed session token lifetime.
const DefaultSessionTTL = 24 * time.Hour

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue creates a signed session token for the user.
func (s *TokenService) Issue(u *entity.User) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name:     u.Name,
		UserType: u.UserType,
		Verified: u.Verified,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns its claims. Any structural,
// signature or expiry failure yields (nil, false); malformed input is
// untrusted and fails closed.
func (s *TokenService) Parse(tokenString string) (*SessionClaims, bool) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, false
	}
	if claims.Subject == "" {
		return nil, false
	}
	return claims, true
}
