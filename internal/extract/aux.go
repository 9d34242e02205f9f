package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/jptext"
	"github.com/jonesrussell/shogo/internal/urlnorm"
)

// runAuxPagesPhase fetches same-host "about the company" subpages and runs
// the structural collectors over each. Fetching is sequential and stops as
// soon as one page yields a near-certain candidate. Without a fetcher the
// phase is a no-op.
func (e *Engine) runAuxPagesPhase(ctx context.Context, doc *goquery.Document, pageURL string) phaseResult {
	var res phaseResult
	if e.fetcher == nil {
		return res
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return res
	}

	for _, link := range e.discoverAuxLinks(doc, base, pageURL) {
		if ctx.Err() != nil {
			break
		}
		page, err := e.fetcher.FetchPage(ctx, link)
		if err != nil {
			e.emit(ctx, Event{Kind: EventFetch, URL: link, Phase: PhaseAuxPages, Err: err.Error()})
			continue
		}
		e.emit(ctx, Event{
			Kind:  EventFetch,
			URL:   link,
			Phase: PhaseAuxPages,
			Note:  fmt.Sprintf("status %d", page.StatusCode),
		})

		subDoc, err := goquery.NewDocumentFromReader(strings.NewReader(jptext.Normalize(page.Content)))
		if err != nil {
			continue
		}
		found := collectStructured(subDoc, auxSourcePrefix)
		res.candidates = append(res.candidates, found...)
		if hasAuxStop(found) {
			break
		}
	}

	res.exit = hasStructuralExit(res.candidates)
	return res
}

// hasAuxStop reports whether a candidate is strong enough to stop fetching
// further auxiliary pages.
func hasAuxStop(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.Confidence >= structuralStopConfidence {
			return true
		}
	}
	return false
}

// discoverAuxLinks collects candidate subpage URLs: anchors whose href or
// text hints at a company-profile page, then well-known paths when the
// page links to none. Only same-host http(s) URLs are kept, deduplicated
// in normalized form, capped at MaxAuxPages.
func (e *Engine) discoverAuxLinks(doc *goquery.Document, base *url.URL, pageURL string) []string {
	seen := make(map[string]bool)
	if norm, err := urlnorm.Normalize(pageURL); err == nil {
		seen[norm] = true
	}

	var links []string
	add := func(raw string) {
		if len(links) >= e.cfg.MaxAuxPages {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.EqualFold(resolved.Host, base.Host) {
			return
		}
		norm, err := urlnorm.Normalize(resolved.String())
		if err != nil || seen[norm] {
			return
		}
		seen[norm] = true
		links = append(links, norm)
	}

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href := anchor.AttrOr("href", "")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if matchesAuxHint(href, anchor.Text()) {
			add(href)
		}
	})

	if len(links) == 0 {
		for _, path := range auxCommonPaths {
			add((&url.URL{Scheme: base.Scheme, Host: base.Host, Path: path}).String())
		}
	}
	return links
}

func matchesAuxHint(href, text string) bool {
	lowered := strings.ToLower(href)
	for _, hint := range auxHrefHints {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	text = strings.TrimSpace(text)
	for _, hint := range auxTextHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return false
}
