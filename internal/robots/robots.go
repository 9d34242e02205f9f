// Package robots enforces robots.txt compliance for batch fetching, with
// a per-host TTL cache. Missing, unreachable, or unparseable robots.txt
// degrades to allow-all so that a broken robots endpoint never stalls an
// enrichment run.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/jonesrussell/shogo/internal/logger"
)

// Defaults applied when Config fields are zero.
const (
	DefaultCacheTTL    = time.Hour
	DefaultTimeout     = 10 * time.Second
	DefaultMaxBodySize = 512 * 1024 // 512 KB
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// Config controls the checker.
type Config struct {
	CacheTTL    time.Duration
	Timeout     time.Duration
	MaxBodySize int64
	UserAgent   string
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	return c
}

// Checker checks and caches robots.txt rules per host. Safe for
// concurrent use.
type Checker struct {
	httpClient *http.Client
	cfg        Config
	log        logger.Interface
	mu         sync.RWMutex
	cache      map[string]*cacheEntry // keyed by host
}

type cacheEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
	allowAll  bool // robots.txt missing or errored
}

// New creates a Checker. A nil log is replaced with a no-op.
func New(cfg Config, log logger.Interface) *Checker {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Checker{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log,
		cache:      make(map[string]*cacheEntry),
	}
}

// IsAllowed reports whether the given URL may be fetched under the host's
// robots.txt. robots.txt is fetched and cached per host on first use.
func (c *Checker) IsAllowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, parseErr := url.Parse(rawURL)
	if parseErr != nil {
		return false, fmt.Errorf("robots: parse url: %w", parseErr)
	}

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return false, fmt.Errorf("robots: empty host in url %q", rawURL)
	}

	entry := c.getOrFetchEntry(ctx, host, parsed.Scheme)
	if entry.allowAll {
		return true, nil
	}
	return entry.data.TestAgent(parsed.Path, c.cfg.UserAgent), nil
}

// CrawlDelay returns the crawl-delay robots.txt specifies for our agent on
// the host, or 0 when none is cached or set.
func (c *Checker) CrawlDelay(host string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[strings.ToLower(host)]
	if !ok || entry.allowAll || entry.data == nil {
		return 0
	}

	group := entry.data.FindGroup(c.cfg.UserAgent)
	if group == nil {
		return 0
	}
	return group.CrawlDelay
}

func (c *Checker) getOrFetchEntry(ctx context.Context, host, scheme string) *cacheEntry {
	if entry, ok := c.getCachedEntry(host); ok {
		return entry
	}
	return c.fetchAndCache(ctx, host, scheme)
}

func (c *Checker) getCachedEntry(host string) (*cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[host]
	if !ok {
		return nil, false
	}
	if time.Since(entry.fetchedAt) > c.cfg.CacheTTL {
		return nil, false
	}
	return entry, true
}

func (c *Checker) fetchAndCache(ctx context.Context, host, scheme string) *cacheEntry {
	if scheme == "" {
		scheme = "https"
	}

	body, statusCode, fetchErr := c.doFetch(ctx, scheme+"://"+host+robotsTxtPath)
	if fetchErr != nil {
		c.log.Debug("robots.txt unreachable, allowing all", "host", host, "error", fetchErr.Error())
		return c.store(host, &cacheEntry{fetchedAt: time.Now(), allowAll: true})
	}

	return c.store(host, parseEntry(body, statusCode))
}

func (c *Checker) store(host string, entry *cacheEntry) *cacheEntry {
	c.mu.Lock()
	c.cache[host] = entry
	c.mu.Unlock()
	return entry
}

func (c *Checker) doFetch(ctx context.Context, robotsURL string) (body []byte, statusCode int, err error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if reqErr != nil {
		return nil, 0, fmt.Errorf("robots: create request: %w", reqErr)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, 0, fmt.Errorf("robots: fetch: %w", doErr)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, c.cfg.MaxBodySize)
	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("robots: read body: %w", readErr)
	}
	return body, resp.StatusCode, nil
}

// parseEntry parses a robots.txt response. Only 2xx responses are parsed;
// everything else degrades to allow-all.
func parseEntry(body []byte, statusCode int) *cacheEntry {
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return &cacheEntry{fetchedAt: time.Now(), allowAll: true}
	}

	data, parseErr := robotstxt.FromBytes(body)
	if parseErr != nil {
		return &cacheEntry{fetchedAt: time.Now(), allowAll: true}
	}
	return &cacheEntry{data: data, fetchedAt: time.Now()}
}
