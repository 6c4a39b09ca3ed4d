package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated user for the request. Identity is
// established by an upstream gateway and forwarded in X-User-ID; the
// handler chain guarantees it is present past withIdentity.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// withIdentity rejects requests without an X-User-ID header and stores
// the identity in the request context for handlers and logging.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, Envelope{
				Success: false,
				Message: "missing X-User-ID header",
			})
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newMiddlewareChain wires tracing, write rate limiting, and security
// headers around an API handler, outermost first.
func newMiddlewareChain(limiter *ratelimit.Limiter, detector *security.Detector) func(http.Handler) http.Handler {
	traced := trace.NewMiddleware(detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(apiHeadersConfig())

	limited := limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, Envelope{
			Success: false,
			Message: "rate limit exceeded, try again later",
		})
	})

	return func(next http.Handler) http.Handler {
		// Rate limiting applies to writes only; reads are cheap and cached.
		writeGate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if detector.DetectSuspiciousRequest(r) {
				slog.WarnContext(r.Context(), "Suspicious request pattern",
					"method", r.Method,
					"path", r.URL.Path,
					"client_ip", detector.ExtractClientIP(r))
			}
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				limited(next).ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
		return traced.Middleware(headers.Middleware(writeGate))
	}
}

// apiHeadersConfig narrows the default policy for a JSON-only surface:
// nothing is ever rendered, so every fetch directive collapses to none.
func apiHeadersConfig() security.HeadersConfig {
	cfg := security.DefaultHeadersConfig()
	cfg.CSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	return cfg
}
