package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap
// to argon2 later without touching the auth service).
type PasswordHasher interface {
	Hash(pw string) (hash string, algo string, err error)
	Verify(hash, pw string) bool
}

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 32
	pbkdf2SaltLen    = 16
	pbkdf2Scheme     = "pbkdf2-sha256"
)

// PBKDF2Hasher derives PBKDF2-SHA256 hashes with a per-credential random
// salt. Stored form: "pbkdf2-sha256$<iterations>$<salt b64>$<key b64>".
type PBKDF2Hasher struct {
	Iterations int
}

func (h PBKDF2Hasher) iterations() int {
	if h.Iterations > 0 {
		return h.Iterations
	}
	return pbkdf2Iterations
}

func (h PBKDF2Hasher) Hash(pw string) (string, string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	iter := h.iterations()
	key := pbkdf2.Key([]byte(pw), salt, iter, pbkdf2KeyLen, sha256.New)
	encoded := strings.Join([]string{
		pbkdf2Scheme,
		strconv.Itoa(iter),
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	}, "$")
	return encoded, fmt.Sprintf("%s:%d", pbkdf2Scheme, iter), nil
}

// Verify recomputes the derived key with the salt embedded in the stored
// hash and compares in constant time. Malformed stored hashes verify as
// false, never panic.
func (h PBKDF2Hasher) Verify(hash, pw string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 4 || parts[0] != pbkdf2Scheme {
		return false
	}
	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(pw), salt, iter, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
