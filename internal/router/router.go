package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/khidmajo/khidma-api/internal/auth"
	"github.com/khidmajo/khidma-api/internal/category"
	"github.com/khidmajo/khidma-api/internal/request"
	"github.com/khidmajo/khidma-api/internal/user"
	"github.com/khidmajo/khidma-api/internal/verification"
	userentity "github.com/khidmajo/khidma-api/internal/user/entity"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level
// using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP
// security headers. It is intentionally simple and conservative.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Handlers bundles the feature handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth         *auth.Handler
	Users        *user.Handler
	Verification *verification.Handler
	Requests     *request.Handler
	Categories   *category.Handler
}

// RegisterRoutes mounts HTTP handlers using the standard library's
// http.ServeMux and wires the session middleware around protected routes.
func RegisterRoutes(logger *zap.SugaredLogger, mw *auth.Middleware, h Handlers) http.Handler {
	mux := http.NewServeMux()

	const admin = userentity.TypeAdmin
	const provider = userentity.TypeProvider
	const customer = userentity.TypeCustomer

	// health
	mux.HandleFunc("GET /khidma-api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// auth
	mux.HandleFunc("POST /khidma-api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /khidma-api/auth/register/customer", h.Auth.RegisterCustomer)
	mux.HandleFunc("POST /khidma-api/auth/register/provider", h.Auth.RegisterProvider)
	mux.Handle("GET /khidma-api/auth/me", mw.RequireSession(http.HandlerFunc(h.Auth.Me)))
	mux.HandleFunc("POST /khidma-api/auth/logout", h.Auth.Logout)

	// public browse
	mux.HandleFunc("GET /khidma-api/categories", h.Categories.List)
	mux.HandleFunc("GET /khidma-api/requests/open", h.Requests.ListOpen)

	// service requests
	mux.Handle("POST /khidma-api/requests", mw.RequireRole(customer, http.HandlerFunc(h.Requests.Create)))
	mux.Handle("GET /khidma-api/requests", mw.RequireSession(http.HandlerFunc(h.Requests.ListMine)))
	mux.Handle("POST /khidma-api/requests/{id}/accept", mw.RequireRole(provider, http.HandlerFunc(h.Requests.Accept)))
	mux.Handle("POST /khidma-api/requests/{id}/status", mw.RequireSession(http.HandlerFunc(h.Requests.SetStatus)))

	// provider documents
	mux.Handle("POST /khidma-api/providers/documents", mw.RequireRole(provider, http.HandlerFunc(h.Verification.SubmitDocument)))
	mux.Handle("GET /khidma-api/providers/documents", mw.RequireRole(provider, http.HandlerFunc(h.Verification.ListOwnDocuments)))

	// admin
	mux.Handle("GET /khidma-api/admin/users", mw.RequireRole(admin, http.HandlerFunc(h.Users.List)))
	mux.Handle("PUT /khidma-api/admin/users/{id}/active", mw.RequireRole(admin, http.HandlerFunc(h.Users.SetActive)))
	mux.Handle("GET /khidma-api/admin/providers/pending", mw.RequireRole(admin, http.HandlerFunc(h.Verification.ListPending)))
	mux.Handle("POST /khidma-api/admin/providers/{id}/verification", mw.RequireRole(admin, http.HandlerFunc(h.Verification.Review)))
	mux.Handle("POST /khidma-api/admin/providers/{id}/documents/{docID}", mw.RequireRole(admin, http.HandlerFunc(h.Verification.ReviewDocument)))
	mux.Handle("POST /khidma-api/admin/categories", mw.RequireRole(admin, http.HandlerFunc(h.Categories.Create)))

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
