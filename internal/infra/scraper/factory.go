package scraper

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultBaseURL is the campus dining page that serves both sources.
const DefaultBaseURL = "https://www.ajou.ac.kr/kr/life/food.do"

// NewHTTPClient returns the HTTP client used to fetch dining pages.
// timeout bounds the whole request including reading the body.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}

// NewMenuPipeline creates the fetcher and parser for the dining pages with a
// shared configuration. It is the single place the binaries assemble the
// scraping side of the menu service from.
func NewMenuPipeline(client *http.Client, cfg FetcherConfig) (*Fetcher, *Parser) {
	return NewFetcher(client, cfg), NewParser()
}
