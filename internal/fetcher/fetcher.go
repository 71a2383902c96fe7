// Package fetcher retrieves raw result pages. A fetch failure is always
// scoped to one source: the pipeline records it and moves on.
package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"rental-radar/internal/config"
	"rental-radar/internal/ratelimit"
)

// Sentinel errors for the content heuristics. The page body is still
// returned alongside these so the caller can decide to parse it anyway.
var (
	// ErrSuspectedBlock flags a body that looks like a bot-block page.
	ErrSuspectedBlock = errors.New("suspected bot block")
	// ErrShortBody flags a response too small to be a real result page.
	ErrShortBody = errors.New("suspiciously short response")
)

// StatusError is a non-success transport status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// Client fetches pages over plain HTTP, or through a headless browser for
// sources that only render listings client-side.
type Client struct {
	client    *http.Client
	userAgent string
	headless  bool
	minBody   int
	limiter   *ratelimit.Limiter
}

// New builds a Client from the fetcher configuration.
func New(cfg config.FetcherConfig) *Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Printf("Warning: Failed to create cookie jar: %v", err)
		jar = nil
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
			Jar:     jar,
		},
		userAgent: cfg.UserAgent,
		headless:  cfg.Headless,
		minBody:   cfg.MinBodyBytes,
		limiter:   ratelimit.NewLimiter(cfg.GetMinDelay(), cfg.RequestsPerHour, cfg.RateLimitEnabled),
	}
}

// Fetch retrieves a page. One attempt per call; no retries. When the content
// heuristics fire, the body is returned together with ErrSuspectedBlock or
// ErrShortBody so the caller can still parse a partially useful page.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	log.Printf("[Fetch] GET %s", url)

	var body string
	var err error
	if c.headless {
		body, err = c.fetchHeadless(ctx, url)
	} else {
		body, err = c.fetchHTTP(ctx, url)
	}
	if err != nil {
		return "", err
	}

	// Content heuristics: a block page or a stub body means the source most
	// likely refused us even though transport succeeded.
	lower := strings.ToLower(body)
	if strings.Contains(lower, "captcha") || strings.Contains(lower, "blocked") {
		log.Printf("[Fetch] Possible block detected on %s", url)
		return body, ErrSuspectedBlock
	}
	if len(body) < c.minBody {
		log.Printf("[Fetch] Suspiciously short response (%d bytes) from %s", len(body), url)
		return body, ErrShortBody
	}

	return body, nil
}

func (c *Client) fetchHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.applyBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}

// applyBrowserHeaders sets browser-like headers so the listing sites serve
// the same markup they serve a real visitor.
func (c *Client) applyBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "nl,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
