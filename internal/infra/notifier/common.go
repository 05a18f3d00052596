package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// defaultRetryAfter is reported when a 429 response carries no hint.
const defaultRetryAfter = 5 * time.Second

// RateLimitError represents a 429 rate limit error from a chat service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a chat service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a chat service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// classifyResponse maps a non-2xx response to the error taxonomy.
// It returns nil for 2xx statuses.
func classifyResponse(service string, status int, header http.Header, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    service + " rate limit exceeded",
			RetryAfter: extractRetryAfter(header, body),
		}
	case status >= 400 && status < 500:
		return &ClientError{
			StatusCode: status,
			Message:    fmt.Sprintf("%s API client error (%d): %s", service, status, string(body)),
		}
	case status >= 500:
		return &ServerError{
			StatusCode: status,
			Message:    fmt.Sprintf("%s API server error (%d): %s", service, status, string(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", status, string(body))
}

// extractRetryAfter reads the retry hint of a 429 response.
// It tries the JSON body's retry_after (seconds, Discord style) first, then
// the Retry-After header, and falls back to defaultRetryAfter.
func extractRetryAfter(header http.Header, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}

	if v := header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return defaultRetryAfter
}

// truncateText shortens text to at most maxRunes runes, ending with suffix
// when something was cut.
func truncateText(text string, maxRunes int, suffix string) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	keep := maxRunes - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(text)
	return string(runes[:keep]) + suffix
}

// splitText breaks text into chunks of at most maxRunes runes, cutting at
// line boundaries. A single line longer than maxRunes is truncated.
//
// Example:
//
//	splitText("a\nb\nc", 3) // ["a\nb", "c"]
func splitText(text string, maxRunes int) []string {
	var (
		chunks []string
		cur    strings.Builder
		size   int
	)
	flush := func() {
		if chunk := strings.TrimRight(cur.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
		size = 0
	}

	for _, line := range strings.Split(text, "\n") {
		line = truncateText(line, maxRunes, "…")
		n := utf8.RuneCountInString(line)

		sep := 0
		if cur.Len() > 0 {
			sep = 1
		}
		if size+sep+n > maxRunes {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		size += sep + n
	}
	flush()

	return chunks
}
