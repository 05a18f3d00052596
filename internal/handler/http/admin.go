package http

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"ajou-menu/internal/handler/http/requestid"
	"ajou-menu/internal/handler/http/respond"
)

// AdminKeyHeader carries the admin API key.
const AdminKeyHeader = "X-Admin-Key"

var errUnauthorized = errors.New("unauthorized")

// AdminAuth returns middleware that admits a request only if its
// X-Admin-Key header equals key. The comparison is constant-time.
//
// An empty key disables the admin API: every request is rejected, so a
// missing ADMIN_API_KEY never leaves the routes open.
func AdminAuth(key string, logger *slog.Logger) func(http.Handler) http.Handler {
	expected := []byte(key)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := []byte(r.Header.Get(AdminKeyHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(given, expected) != 1 {
				logger.Warn("unauthorized admin access attempt",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
					slog.Bool("key_present", len(given) > 0))
				respond.SafeError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
