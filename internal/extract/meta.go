package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/jptext"
)

// maxJSONLDDepth bounds recursion into nested JSON-LD graphs.
const maxJSONLDDepth = 4

// runMetadataPhase reads machine-readable page metadata: JSON-LD
// organization blocks first, then OpenGraph tags. A structured-data hit
// that carries a legal marker and no SEO pipe short-circuits the whole
// pipeline.
func (e *Engine) runMetadataPhase(_ context.Context, doc *goquery.Document, _ string) phaseResult {
	var res phaseResult

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		name := organizationName(sel.Text())
		if name == "" {
			return
		}
		value := jptext.NormalizeSpace(jptext.Normalize(name))
		if !acceptableValue(value) {
			return
		}
		res.candidates = append(res.candidates, Candidate{
			Value:          value,
			SourceContext:  SourceStructuredMetadata,
			Confidence:     confidenceStructuredData,
			Method:         MethodStructuredData,
			HasLegalMarker: hasLegalMarker(value),
		})
	})

	if content, ok := metaProperty(doc, "og:site_name"); ok {
		value := jptext.NormalizeSpace(jptext.Normalize(content))
		if acceptableValue(value) {
			res.candidates = append(res.candidates, Candidate{
				Value:          value,
				SourceContext:  SourceMetaTag,
				Confidence:     confidenceSiteName,
				Method:         MethodMetaTag,
				HasLegalMarker: hasLegalMarker(value),
			})
		}
	}

	if content, ok := metaProperty(doc, "og:title"); ok {
		value := cleanHeadingText(content)
		if acceptableValue(value) {
			res.candidates = append(res.candidates, Candidate{
				Value:          value,
				SourceContext:  SourceMetaTag,
				Confidence:     confidenceOGTitle,
				Method:         MethodMetaTag,
				HasLegalMarker: hasLegalMarker(value),
			})
		}
	}

	for i := range res.candidates {
		c := &res.candidates[i]
		if c.Confidence >= metadataExitConfidence &&
			c.HasLegalMarker &&
			!strings.ContainsAny(c.Value, "|｜") {
			res.direct = c
			break
		}
	}
	return res
}

// acceptableValue applies the shared value screens.
func acceptableValue(value string) bool {
	return value != "" &&
		isValidCompanyName(value) &&
		!isGarbage(value) &&
		!looksLikeDate(value)
}

func metaProperty(doc *goquery.Document, property string) (string, bool) {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First()
	if sel.Length() == 0 {
		return "", false
	}
	content := strings.TrimSpace(sel.AttrOr("content", ""))
	return content, content != ""
}

// organizationName pulls the name of the first organization-typed node out
// of a JSON-LD payload, tolerating arrays and @graph nesting.
func organizationName(raw string) string {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return ""
	}
	return findOrganizationName(data, 0)
}

func findOrganizationName(node any, depth int) string {
	if depth > maxJSONLDDepth {
		return ""
	}
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if name := findOrganizationName(item, depth+1); name != "" {
				return name
			}
		}
	case map[string]any:
		if isOrganizationType(v["@type"]) {
			if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
				return strings.TrimSpace(name)
			}
		}
		if graph, ok := v["@graph"]; ok {
			return findOrganizationName(graph, depth+1)
		}
	}
	return ""
}

func isOrganizationType(t any) bool {
	switch v := t.(type) {
	case string:
		return matchesOrganizationType(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && matchesOrganizationType(s) {
				return true
			}
		}
	}
	return false
}

func matchesOrganizationType(t string) bool {
	switch t {
	case "Organization", "Corporation", "LocalBusiness":
		return true
	}
	return strings.HasSuffix(t, "Business") || strings.HasSuffix(t, "Store")
}
