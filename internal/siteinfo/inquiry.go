package siteinfo

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// inquiryTextHints match anchor text of contact links.
var inquiryTextHints = []string{
	"お問い合わせ",
	"お問合せ",
	"お問合わせ",
	"ご相談",
	"資料請求",
	"コンタクト",
	"contact",
	"inquiry",
}

// inquiryHrefHints match contact link paths.
var inquiryHrefHints = []string{"contact", "inquiry", "toiawase", "otoiawase", "form"}

// FindInquiryPage returns the absolute URL of the site's inquiry page, or
// empty when the page has none. An inquiry form on the page itself wins
// over a contact link. mailto links are skipped; those are the email
// extractor's business.
func FindInquiryPage(doc *goquery.Document, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	if action := findInquiryForm(doc, base); action != "" {
		return action
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
			return true
		}
		if !isInquiryLink(href, a.Text()) {
			return true
		}

		ref, parseErr := url.Parse(href)
		if parseErr != nil {
			return true
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return true
		}
		found = ref.String()
		return false
	})
	return found
}

// findInquiryForm returns the resolved action URL of the first form whose
// action, id, class, name, or visible text carries an inquiry keyword.
func findInquiryForm(doc *goquery.Document, base *url.URL) string {
	var found string
	doc.Find("form[action]").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		action := strings.TrimSpace(form.AttrOr("action", ""))
		if action == "" || strings.HasPrefix(action, "javascript:") {
			return true
		}

		combined := strings.ToLower(strings.Join([]string{
			action,
			form.AttrOr("id", ""),
			form.AttrOr("class", ""),
			form.AttrOr("name", ""),
			form.Text(),
		}, " "))
		if !containsAnyOf(combined, inquiryHrefHints) && !containsAnyOf(combined, inquiryTextHints) {
			return true
		}

		ref, err := url.Parse(action)
		if err != nil {
			return true
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return true
		}
		found = ref.String()
		return false
	})
	return found
}

func isInquiryLink(href, text string) bool {
	lowered := strings.ToLower(href)
	if containsAnyOf(lowered, inquiryHrefHints) {
		return true
	}
	text = strings.ToLower(strings.TrimSpace(text))
	return containsAnyOf(text, inquiryTextHints)
}
