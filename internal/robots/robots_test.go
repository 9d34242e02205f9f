package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/shogo/internal/robots"
)

const testCacheTTL = time.Hour

func newTestChecker(t *testing.T) *robots.Checker {
	t.Helper()

	return robots.New(robots.Config{
		CacheTTL:  testCacheTTL,
		Timeout:   5 * time.Second,
		UserAgent: "TestBot/1.0",
	}, nil)
}

func TestIsAllowed_URLAllowed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/company/profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected /company/profile to be allowed, got disallowed")
	}
}

func TestIsAllowed_URLDisallowed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/private/secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if allowed {
		t.Error("expected /private/secret to be disallowed, got allowed")
	}
}

func TestIsAllowed_Missing404(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/any/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected allow-all when robots.txt returns 404")
	}
}

func TestIsAllowed_ServerError500(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/any/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected allow-all when robots.txt returns 500 (graceful degradation)")
	}
}

func TestIsAllowed_UnreachableHost(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	serverURL := server.URL
	server.Close() // connection refused from here on

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), serverURL+"/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected allow-all when robots.txt is unreachable")
	}
}

func TestIsAllowed_CacheHit(t *testing.T) {
	t.Parallel()

	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requestCount.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	for range 3 {
		allowed, err := checker.IsAllowed(context.Background(), server.URL+"/page")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Error("expected allowed")
		}
	}

	if got := requestCount.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1 (cache hit)", got)
	}
}

func TestIsAllowed_SpecificAgentBlocked(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: TestBot\nDisallow: /\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if allowed {
		t.Error("expected TestBot to be blocked by agent-specific rule")
	}
}

func TestIsAllowed_InvalidURL(t *testing.T) {
	t.Parallel()

	checker := newTestChecker(t)

	if _, err := checker.IsAllowed(context.Background(), "://bad"); err == nil {
		t.Error("expected error for invalid URL")
	}

	if _, err := checker.IsAllowed(context.Background(), "/relative/only"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestCrawlDelay(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nCrawl-delay: 2\nAllow: /\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	// Populate the cache first.
	if _, err := checker.IsAllowed(context.Background(), server.URL+"/page"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	host := server.Listener.Addr().String()
	if got := checker.CrawlDelay(host); got != 2*time.Second {
		t.Errorf("CrawlDelay = %v, want 2s", got)
	}

	if got := checker.CrawlDelay("unknown.example.com"); got != 0 {
		t.Errorf("CrawlDelay for uncached host = %v, want 0", got)
	}
}
