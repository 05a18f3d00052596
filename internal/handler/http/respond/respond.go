// Package respond writes JSON responses and turns errors into client-safe
// messages.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ContentTypeJSON is the Content-Type of every JSON response.
const ContentTypeJSON = "application/json; charset=utf-8"

// safeErrorMarkers identify errors whose message is meant for the client,
// such as validation failures. Anything else is replaced by a generic
// message.
var safeErrorMarkers = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"must not",
	"cannot be",
	"too long",
	"unauthorized",
	"not running",
	"already running",
}

// JSON writes a JSON response with the given status code and data.
// Korean menu text is emitted as-is, not as \u escapes.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(code)
	if v == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// Headers are already sent; all that is left is to log.
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes a JSON error response with the given status code and error message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError sanitizes error messages before returning them to users.
// Client errors whose message matches a safe marker are returned as-is.
// Everything else, and every 5xx, is logged with credentials masked and
// answered with "internal server error".
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	if code < 500 && isSafe(msg) {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range safeErrorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
