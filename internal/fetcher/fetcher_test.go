package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rental-radar/internal/config"
)

func testClient() *Client {
	return New(config.FetcherConfig{
		TimeoutSeconds:   5,
		UserAgent:        "test-agent",
		MinBodyBytes:     100,
		RateLimitEnabled: false,
	})
}

func TestFetchSuccess(t *testing.T) {
	page := "<html><body>" + strings.Repeat("<p>woning</p>", 20) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Accept-Language"); !strings.HasPrefix(got, "nl") {
			t.Errorf("Accept-Language = %q", got)
		}
		w.Write([]byte(page))
	}))
	defer srv.Close()

	body, err := testClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != page {
		t.Errorf("body mismatch, got %d bytes", len(body))
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient().Fetch(context.Background(), srv.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusForbidden {
		t.Errorf("Code = %d, want 403", statusErr.Code)
	}
}

func TestFetchSuspectedBlockReturnsBody(t *testing.T) {
	page := "<html><body>Please solve this CAPTCHA to continue " +
		strings.Repeat("x", 200) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	body, err := testClient().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrSuspectedBlock) {
		t.Fatalf("expected ErrSuspectedBlock, got %v", err)
	}
	if body == "" {
		t.Error("body should be returned alongside the block error")
	}
}

func TestFetchShortBodyReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	body, err := testClient().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrShortBody) {
		t.Fatalf("expected ErrShortBody, got %v", err)
	}
	if body != "<html></html>" {
		t.Errorf("body should be returned alongside the error, got %q", body)
	}
}

func TestFetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testClient().Fetch(ctx, srv.URL); err == nil {
		t.Error("expected error for cancelled context")
	}
}
