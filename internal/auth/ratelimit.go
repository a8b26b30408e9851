package auth

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a fixed-window, in-memory limiter for sensitive
// operations (login, registration). It is an advisory deterrent, not a
// hard security control: per-key updates are serialized, but counts are
// process-local and lost on restart.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window

	// TrustForwardedFor makes ClientKey honor the first X-Forwarded-For
	// hop. Enable only when the API sits behind a reverse proxy that
	// strips the header from client requests; a direct client could
	// otherwise pick its own limiter key. Set once at startup.
	TrustForwardedFor bool

	// now is swapped in tests.
	now func() time.Time
}

// window tracks attempts for one key. Each entry carries its own
// duration: keys for different operations share the map but not a
// window length (login 1m vs provider registration 24h).
type window struct {
	count int
	start time.Time
	dur   time.Duration
}

// sweepThreshold bounds the window map: once it holds this many keys,
// stale entries are dropped on the next Allow call.
const sweepThreshold = 10000

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*window), now: time.Now}
}

// Allow records an attempt for key and reports whether it is within the
// limit of max attempts per windowDur. The first attempt after a window
// elapses resets the count.
func (l *RateLimiter) Allow(key string, max int, windowDur time.Duration) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) >= sweepThreshold {
		l.sweepLocked(now)
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > w.dur {
		l.windows[key] = &window{count: 1, start: now, dur: windowDur}
		return true
	}
	w.count++
	return w.count <= max
}

// sweepLocked drops entries whose own window has elapsed. Judging each
// entry by its recorded duration keeps a flood of short-window keys from
// evicting still-active long-window counts. Caller holds mu.
func (l *RateLimiter) sweepLocked(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) > w.dur {
			delete(l.windows, k)
		}
	}
}

// ClientKey builds a limiter key of the form "op:ip" from the request.
// X-Forwarded-For is used only when TrustForwardedFor is set.
func (l *RateLimiter) ClientKey(op string, r *http.Request) string {
	if l.TrustForwardedFor {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			ip, _, _ := strings.Cut(fwd, ",")
			return op + ":" + strings.TrimSpace(ip)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return op + ":" + r.RemoteAddr
	}
	return op + ":" + host
}
