package auth

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_WindowBoundary(t *testing.T) {
	l := NewRateLimiter()
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	const max = 3
	window := time.Second

	for i := 0; i < max; i++ {
		assert.True(t, l.Allow("login:10.0.0.1", max, window), "attempt %d", i+1)
	}
	assert.False(t, l.Allow("login:10.0.0.1", max, window), "4th attempt within window")

	now = now.Add(window + time.Millisecond)
	assert.True(t, l.Allow("login:10.0.0.1", max, window), "attempt after window elapsed")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	l := NewRateLimiter()

	assert.True(t, l.Allow("login:10.0.0.1", 1, time.Minute))
	assert.False(t, l.Allow("login:10.0.0.1", 1, time.Minute))
	assert.True(t, l.Allow("login:10.0.0.2", 1, time.Minute))
	assert.True(t, l.Allow("register:customer:10.0.0.1", 1, time.Minute))
}

func TestRateLimiter_SweepBoundsMap(t *testing.T) {
	l := NewRateLimiter()
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	for i := 0; i < sweepThreshold; i++ {
		l.Allow(fmt.Sprintf("login:key-%d", i), 1, time.Second)
	}
	assert.GreaterOrEqual(t, len(l.windows), sweepThreshold)

	// all previous windows are stale by now, so the next call sweeps them
	now = now.Add(time.Minute)
	l.Allow("fresh-key", 1, time.Second)
	assert.Equal(t, 1, len(l.windows))
}

func TestRateLimiter_SweepKeepsLongWindows(t *testing.T) {
	l := NewRateLimiter()
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	// exhaust the stricter provider-registration limit
	const providerKey = "register:provider:203.0.113.9"
	assert.True(t, l.Allow(providerKey, 2, 24*time.Hour))
	assert.True(t, l.Allow(providerKey, 2, 24*time.Hour))
	assert.False(t, l.Allow(providerKey, 2, 24*time.Hour))

	// a flood of cheap short-window keys triggers the sweep
	now = now.Add(2 * time.Minute)
	for i := 0; i <= sweepThreshold; i++ {
		l.Allow(fmt.Sprintf("login:flood-%d", i), 5, time.Minute)
	}

	// the 24h count must survive: each entry is judged by its own window
	assert.False(t, l.Allow(providerKey, 2, 24*time.Hour))

	now = now.Add(25 * time.Hour)
	assert.True(t, l.Allow(providerKey, 2, 24*time.Hour))
}

func TestClientKey(t *testing.T) {
	l := NewRateLimiter()

	r := httptest.NewRequest("POST", "/khidma-api/auth/login", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	assert.Equal(t, "login:203.0.113.9", l.ClientKey("login", r))

	// X-Forwarded-For is spoofable and ignored unless explicitly trusted
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "login:203.0.113.9", l.ClientKey("login", r))

	l.TrustForwardedFor = true
	assert.Equal(t, "login:198.51.100.7", l.ClientKey("login", r))
}
