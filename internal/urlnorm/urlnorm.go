// Package urlnorm provides URL normalization and hashing. Pages are
// normalized before fetching and storing so that the same page expressed
// differently dedupes to one fetch and one stored row.
package urlnorm

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// trackingParams lists query parameters stripped during normalization.
// Advertising and analytics trackers do not affect page content.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"gclsrc":       {},
	"dclid":        {},
	"msclkid":      {},
}

// defaultPorts maps schemes to their default port strings.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

var (
	errEmptyInput          = errors.New("normalize url: empty input")
	errMissingSchemeOrHost = errors.New("normalize url: missing scheme or host")
	errEmptyHostInput      = errors.New("extract host: empty input")
)

// Normalize applies deterministic transformations to a raw URL so that
// equivalent URLs produce identical strings: lowercasing scheme and host,
// removing default ports, resolving path dot-segments, removing trailing
// slashes, removing fragments, sorting query parameters, and stripping
// tracking parameters. The scheme is preserved: many small-business sites
// are still plain http and must be fetched as such.
func Normalize(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errEmptyInput
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize url: %w", err)
	}

	if validateErr := validateParsedURL(parsed); validateErr != nil {
		return "", validateErr
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = normalizeHost(parsed)
	parsed.Fragment = ""
	parsed.RawQuery = buildCleanQuery(parsed.Query())
	parsed.Path = normalizePath(parsed.Path)

	return parsed.String(), nil
}

// Hash normalizes the given URL and returns its SHA-256 hex digest, used
// as the stable row key for stored extraction results. The returned string
// is always 64 characters long.
func Hash(rawURL string) (string, error) {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return "", fmt.Errorf("url hash: %w", err)
	}

	sum := sha256.Sum256([]byte(normalized))

	return hex.EncodeToString(sum[:]), nil
}

// ExtractHost returns the hostname (without port) from a URL, lowercased.
func ExtractHost(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errEmptyHostInput
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("extract host: %w", err)
	}

	if validateErr := validateParsedURL(parsed); validateErr != nil {
		return "", validateErr
	}

	return strings.ToLower(parsed.Hostname()), nil
}

// validateParsedURL checks that a parsed URL has the minimum required components.
func validateParsedURL(u *url.URL) error {
	if u.Scheme == "" || u.Host == "" {
		return errMissingSchemeOrHost
	}

	return nil
}

// normalizeHost lowercases the hostname and removes the port when it is
// the default for the URL's scheme.
func normalizeHost(u *url.URL) string {
	hostname := strings.ToLower(u.Hostname())
	port := u.Port()

	if port == "" {
		return hostname
	}

	if defaultPort, ok := defaultPorts[strings.ToLower(u.Scheme)]; ok && port == defaultPort {
		return hostname
	}

	return hostname + ":" + port
}

// buildCleanQuery strips tracking parameters, sorts the remaining keys
// alphabetically, and returns the encoded query string. Returns an empty
// string when no parameters remain after filtering.
func buildCleanQuery(values url.Values) string {
	keys := make([]string, 0, len(values))

	for key := range values {
		if _, isTracking := trackingParams[key]; !isTracking {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return ""
	}

	sort.Strings(keys)

	var b strings.Builder

	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}

		vals := values[key]
		for j, val := range vals {
			if j > 0 {
				b.WriteByte('&')
			}

			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}

	return b.String()
}

// normalizePath resolves dot-segments (/../, /./) and removes trailing slashes
// while preserving the root "/".
func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}

	cleaned := path.Clean(p)

	return strings.TrimRight(cleaned, "/")
}
