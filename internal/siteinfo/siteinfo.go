// Package siteinfo extracts supplementary company facts from a page:
// contact email, inquiry page URL, and a coarse industry classification.
// These ride along with the entity name in enrichment output.
package siteinfo

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Info is the supplementary profile for one site.
type Info struct {
	Email      string `json:"email,omitempty"`
	InquiryURL string `json:"inquiry_url,omitempty"`
	Industry   string `json:"industry,omitempty"`
}

// Collect runs all extractors over the document. baseURL resolves relative
// inquiry links; it may be empty.
func Collect(doc *goquery.Document, baseURL string) Info {
	return Info{
		Email:      ExtractEmail(doc),
		InquiryURL: FindInquiryPage(doc, baseURL),
		Industry:   DetectIndustry(doc),
	}
}

// pageText flattens the document body, capped to keep scans cheap on huge
// pages.
func pageText(doc *goquery.Document, maxRunes int) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	text := body.Text()
	runes := []rune(text)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return text
}

func containsAnyOf(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
