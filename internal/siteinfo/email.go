package siteinfo

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const emailScanRunes = 20000

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// Obfuscated forms still common on older sites: info[at]example.co.jp,
	// info（アット）example.co.jp.
	obfuscatedAtRe = regexp.MustCompile(`(?i)\s*(?:\[at\]|\(at\)|（アット）|＠)\s*`)

	// Addresses that are not a real contact point.
	emailNoise = []string{"example.", "sentry.", "@2x", ".png", ".jpg", ".gif", "yourname", "your-email"}
)

// ExtractEmail returns the site's contact email address, preferring mailto
// links over addresses found in text. Obfuscated [at] forms are
// de-obfuscated before matching. Empty when none is found.
func ExtractEmail(doc *goquery.Document) string {
	if email := emailFromMailto(doc); email != "" {
		return email
	}

	text := obfuscatedAtRe.ReplaceAllString(pageText(doc, emailScanRunes), "@")
	for _, match := range emailRe.FindAllString(text, -1) {
		if email := cleanEmail(match); email != "" {
			return email
		}
	}
	return ""
}

func emailFromMailto(doc *goquery.Document) string {
	var found string
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		addr := strings.TrimPrefix(href, "mailto:")
		if idx := strings.IndexAny(addr, "?&"); idx >= 0 {
			addr = addr[:idx]
		}
		if email := cleanEmail(addr); email != "" {
			found = email
			return false
		}
		return true
	})
	return found
}

func cleanEmail(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !emailRe.MatchString(addr) {
		return ""
	}
	for _, noise := range emailNoise {
		if strings.Contains(addr, noise) {
			return ""
		}
	}
	return addr
}
