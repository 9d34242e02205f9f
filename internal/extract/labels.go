package extract

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/jptext"
)

// Label strength tiers. Primary labels name the entity outright, secondary
// labels need qualifier screening.
const (
	labelBoostPrimaryExact   = 1.0
	labelBoostPrimaryPartial = 0.95
	labelBoostSecondary      = 0.85
)

// classifyLabel decides whether a dt/th/label cell names the entity and how
// strongly. Matching is done on normalized, space-collapsed, lowercased
// text so spaced variants like 商　号 still hit.
func classifyLabel(label string) (bool, float64) {
	norm := normalizeLabel(label)
	if norm == "" {
		return false, 0
	}

	for _, excluded := range excludedLabels {
		if strings.Contains(norm, normalizeLabel(excluded)) {
			return false, 0
		}
	}

	for _, primary := range primaryLabels {
		if norm == normalizeLabel(primary) {
			return true, labelBoostPrimaryExact
		}
	}
	for _, primary := range primaryLabels {
		if strings.Contains(norm, normalizeLabel(primary)) {
			if hasOverviewQualifier(norm) {
				return false, 0
			}
			return true, labelBoostPrimaryPartial
		}
	}

	for _, secondary := range secondaryLabels {
		if strings.Contains(norm, normalizeLabel(secondary)) {
			if hasOverviewQualifier(norm) {
				return false, 0
			}
			return true, labelBoostSecondary
		}
	}
	return false, 0
}

func normalizeLabel(label string) string {
	s := jptext.Normalize(label)
	s = strings.ReplaceAll(s, "　", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

// hasOverviewQualifier catches labels like 会社概要 or 会社について that
// head a whole section rather than a single field.
func hasOverviewQualifier(norm string) bool {
	for _, q := range overviewQualifiers {
		if strings.Contains(norm, q) {
			return true
		}
	}
	return false
}

// labelText recovers the textual label of a cell. Legacy sites render
// labels as images, so alt text, title text, and the image filename stem
// are consulted when the cell itself is empty.
func labelText(sel *goquery.Selection) string {
	if text := strings.TrimSpace(sel.Text()); text != "" {
		return text
	}

	img := sel.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	if alt, ok := img.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
		return strings.TrimSpace(alt)
	}
	if title, ok := img.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if src, ok := img.Attr("src"); ok {
		stem := path.Base(src)
		if idx := strings.LastIndex(stem, "."); idx > 0 {
			stem = stem[:idx]
		}
		return stem
	}
	return ""
}
