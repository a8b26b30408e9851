package auth

import (
	"sync"
	"time"
)

// Revoker tracks per-user session revocation instants. Session tokens are
// self-contained, so deactivating an account cannot recall tokens already
// in the wild; the middleware consults this denylist and rejects tokens
// issued before the user's revocation instant. In-memory only: a process
// restart forgets revocations, which is acceptable because deactivated
// accounts are also refused at login.
type Revoker struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // user id -> revoked-at
}

func NewRevoker() *Revoker {
	return &Revoker{revoked: make(map[string]time.Time)}
}

// Revoke invalidates every session token of the user issued up to now.
func (r *Revoker) Revoke(userID string) {
	r.RevokeAt(userID, time.Now())
}

// RevokeAt invalidates session tokens of the user issued before t.
func (r *Revoker) RevokeAt(userID string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.revoked[userID]; ok && existing.After(t) {
		return
	}
	r.revoked[userID] = t
}

// Valid reports whether claims survive the denylist: true when the user
// has no revocation on record or the token was issued after it.
func (r *Revoker) Valid(claims *SessionClaims) bool {
	if claims == nil || claims.IssuedAt == nil {
		return false
	}
	r.mu.RLock()
	revokedAt, ok := r.revoked[claims.Subject]
	r.mu.RUnlock()
	if !ok {
		return true
	}
	return claims.IssuedAt.Time.After(revokedAt)
}
