// Package fetch provides the HTTP client used to retrieve pages for
// extraction: bounded reads, retry with backoff on transient failures, and
// legacy charset decoding, since many target sites still serve Shift_JIS
// or EUC-JP.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/jonesrussell/shogo/internal/logger"
)

// Defaults applied when Config fields are zero.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = time.Second
	DefaultMaxBodySize  = 10 * 1024 * 1024 // 10 MB
	DefaultMaxRedirects = 10
	DefaultUserAgent    = "Mozilla/5.0 (compatible; shogo/1.0; +https://github.com/jonesrussell/shogo)"
)

// ErrBadStatus tags responses outside the 2xx range.
var ErrBadStatus = errors.New("unexpected http status")

// StatusError carries the offending status code and unwraps to ErrBadStatus.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrBadStatus
}

// Page is one fetched document, decoded to UTF-8.
type Page struct {
	Content    string
	StatusCode int
	FinalURL   string
}

// Config controls client behavior.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	MaxBodySize  int64
	MaxRedirects int
	UserAgent    string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// Client fetches pages. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        Config
	log        logger.Interface
}

// New creates a Client. A nil log is replaced with a no-op.
func New(cfg Config, log logger.Interface) *Client {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:       cfg.Timeout,
			CheckRedirect: RedirectPolicy(cfg.MaxRedirects),
		},
		cfg: cfg,
		log: log,
	}
}

// FetchPage retrieves one page. Transport errors and retryable statuses
// (429 and 5xx) are retried with linear backoff up to MaxRetries times;
// other non-2xx statuses fail immediately with a StatusError.
func (c *Client) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.cfg.RetryDelay
			c.log.Debug("retrying fetch", "url", rawURL, "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		page, retryable, err := c.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", rawURL, lastErr)
}

// fetchOnce performs a single GET. retryable reports whether the failure
// is worth another attempt.
func (c *Client) fetchOnce(ctx context.Context, rawURL string) (page *Page, retryable bool, err error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if reqErr != nil {
		return nil, false, fmt.Errorf("create request: %w", reqErr)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("http fetch: %w", doErr)
	}
	defer resp.Body.Close()

	if !isSuccessStatus(resp.StatusCode) {
		statusErr := &StatusError{Code: resp.StatusCode}
		return nil, isRetryableStatus(resp.StatusCode), statusErr
	}

	limited := io.LimitReader(resp.Body, c.cfg.MaxBodySize)
	raw, readErr := io.ReadAll(limited)
	if readErr != nil {
		return nil, true, fmt.Errorf("read response body: %w", readErr)
	}

	return &Page{
		Content:    decodeBody(raw, resp.Header.Get("Content-Type")),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, false, nil
}

// decodeBody converts the raw body to UTF-8 using the declared or sniffed
// charset. Legacy Japanese encodings are resolved through the HTML
// encoding index. Decoding failures fall back to the raw bytes; downstream
// normalization handles leftover damage.
func decodeBody(raw []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

const (
	statusSuccessLow   = 200
	statusSuccessHigh  = 300
	statusTooManyReqs  = 429
	statusServerErrLow = 500
)

func isSuccessStatus(code int) bool {
	return code >= statusSuccessLow && code < statusSuccessHigh
}

func isRetryableStatus(code int) bool {
	return code == statusTooManyReqs || code >= statusServerErrLow
}
