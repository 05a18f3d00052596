// Package scraper retrieves and parses the campus dining pages.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"ajou-menu/internal/domain/entity"
	"ajou-menu/internal/usecase/menu"
)

const (
	// maxBodySize caps how much of a page is read.
	maxBodySize = 5 * 1024 * 1024 // 5MB

	defaultUserAgent = "AjouMenuBot/1.0"
)

// articleNumbers maps each source to the board article that publishes its menu.
var articleNumbers = map[entity.MenuSource]string{
	entity.DormitoryCafeteria: "63",
	entity.StaffCafeteria:     "221904",
}

// FetcherConfig configures page retrieval.
type FetcherConfig struct {
	// BaseURL is the dining page endpoint; the source and date are passed as query parameters.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodyBytes limits how much of a response body is read (0 uses 5MB).
	MaxBodyBytes int64
}

// Fetcher retrieves the raw HTML of a dining page. It holds no state
// between calls: every Fetch sends one request, whatever earlier calls
// returned.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	maxBody   int64
}

// NewFetcher creates a Fetcher. client should carry the network timeout.
func NewFetcher(client *http.Client, cfg FetcherConfig) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = maxBodySize
	}

	return &Fetcher{
		client:    client,
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
	}
}

// URLFor returns the page URL for source on date.
func (f *Fetcher) URLFor(source entity.MenuSource, date time.Time) (string, error) {
	articleNo, ok := articleNumbers[source]
	if !ok {
		return "", fmt.Errorf("unknown menu source %q", source)
	}

	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("mode", "view")
	q.Set("articleNo", articleNo)
	q.Set("date", date.Format(entity.DateLayout))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch retrieves the page for source on date with exactly one request.
// Every failure wraps menu.ErrUnreachable.
func (f *Fetcher) Fetch(ctx context.Context, source entity.MenuSource, date time.Time) (string, error) {
	pageURL, err := f.URLFor(source, date)
	if err != nil {
		return "", fmt.Errorf("%w: %v", menu.ErrUnreachable, err)
	}

	start := time.Now()
	body, err := f.fetchPage(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", menu.ErrUnreachable, source, err)
	}

	slog.Debug("menu page fetched",
		slog.String("source", string(source)),
		slog.String("url", pageURL),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)))
	return body, nil
}

// fetchPage performs the request and decodes the body to UTF-8 using the
// charset announced by the response (or sniffed from the markup).
func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
