package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/jptext"
)

// runHeadingPhase reads h1/h2 elements and the document title. A heading
// that carries a legal marker is split on its delimiter; one that names a
// recognizable line of business is taken whole. The first such candidate
// ends the pipeline. A bare h1 is kept as a weak fallback without ending
// the pipeline, so the introduction phase can still outbid it.
func (e *Engine) runHeadingPhase(_ context.Context, doc *goquery.Document, _ string) phaseResult {
	var res phaseResult

	doc.Find("h1, h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		cleaned := cleanHeadingText(h.Text())
		if !screenHeadingText(cleaned) {
			return true
		}
		if cand, ok := headingCandidate(cleaned, SourceHeading); ok {
			res.candidates = append(res.candidates, cand)
			res.exit = true
			return false
		}
		return true
	})

	if !res.exit {
		title := strings.TrimSpace(doc.Find("title").First().Text())
		if title != "" {
			cleaned := cleanHeadingText(title)
			if screenHeadingText(cleaned) {
				if cand, ok := headingCandidate(cleaned, SourceTitle); ok {
					res.candidates = append(res.candidates, cand)
					res.exit = true
				}
			}
		}
	}

	if !res.exit {
		if cand, ok := headingFallback(doc); ok {
			res.candidates = append(res.candidates, cand)
		}
	}
	return res
}

func screenHeadingText(cleaned string) bool {
	return cleaned != "" && !isGarbage(cleaned) && !looksLikeDate(cleaned)
}

// headingCandidate classifies one cleaned heading or title text.
func headingCandidate(cleaned, source string) (Candidate, bool) {
	if hasLegalMarker(cleaned) {
		value := cleaned
		if part, ok := splitSmartDelimiter(cleaned); ok {
			value = part
		}
		if isValidCompanyName(value) {
			return Candidate{
				Value:          value,
				SourceContext:  source,
				Confidence:     confidenceHeadingSplit,
				Method:         MethodHeadingSplit,
				HasLegalMarker: true,
			}, true
		}
		return Candidate{}, false
	}

	if hasBusinessKeyword(cleaned) && isValidCompanyName(cleaned) {
		confidence := confidenceHeadingKeyword
		method := MethodHeadingKeyword
		if source == SourceTitle {
			confidence = confidenceTitleKeyword
			method = MethodTitleKeyword
		}
		return Candidate{
			Value:          cleaned,
			SourceContext:  source,
			Confidence:     confidence,
			Method:         method,
			HasLegalMarker: hasLegalMarker(cleaned),
		}, true
	}
	return Candidate{}, false
}

func hasBusinessKeyword(s string) bool {
	for _, keyword := range businessKeywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// headingFallback takes the first h1 verbatim when nothing better exists.
func headingFallback(doc *goquery.Document) (Candidate, bool) {
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return Candidate{}, false
	}
	cleaned := cleanHeadingText(h1.Text())
	if cleaned == "" || !jptext.HasCJK(cleaned) || !isValidCompanyName(cleaned) ||
		isGarbage(cleaned) || looksLikeDate(cleaned) {
		return Candidate{}, false
	}
	return Candidate{
		Value:          cleaned,
		SourceContext:  SourceHeading,
		Confidence:     confidenceHeadingFallback,
		Method:         MethodHeadingFallback,
		HasLegalMarker: hasLegalMarker(cleaned),
	}, true
}

// Introduction patterns, built once from the office-type and introduction
// word tables. Longest alternatives first so ご紹介 is not eaten by 紹介.
var (
	officeIntroPattern = regexp.MustCompile(
		`([^\s、。]{2,40}(?:` + joinLongestFirst(officeTypes) + `))\s*の?\s*(?:` + joinLongestFirst(introductionWords) + `)`,
	)
	selfIntroPattern = regexp.MustCompile(`私たち、?([^\s、。]{2,40}?)(?:は|では)[、，]`)
)

func joinLongestFirst(items []string) string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	escaped := make([]string, len(sorted))
	for i, item := range sorted {
		escaped[i] = regexp.QuoteMeta(item)
	}
	return strings.Join(escaped, "|")
}

// runIntroductionPhase is the last resort: headings that introduce the
// company (「株式会社〇〇のご紹介」), office-type introductions without
// the の particle, and self-introduction sentences (「私たち〇〇は、」).
func (e *Engine) runIntroductionPhase(_ context.Context, doc *goquery.Document, _ string) phaseResult {
	var res phaseResult
	seen := make(map[string]bool)
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			return
		}
		if !isValidCompanyName(value) || isGarbage(value) || looksLikeDate(value) {
			return
		}
		seen[value] = true
		res.candidates = append(res.candidates, Candidate{
			Value:          value,
			SourceContext:  SourceIntroduction,
			Confidence:     confidenceIntroduction,
			Method:         MethodIntroduction,
			HasLegalMarker: hasLegalMarker(value),
		})
	}

	doc.Find("h1, h2, h3, title").Each(func(_ int, h *goquery.Selection) {
		text := jptext.NormalizeSpace(jptext.Normalize(h.Text()))
		if text == "" {
			return
		}
		for _, suffix := range introductionSuffixes {
			if strings.HasSuffix(text, suffix) && utf8Longer(text, suffix) {
				add(strings.TrimSuffix(text, suffix))
				return
			}
		}
		if m := officeIntroPattern.FindStringSubmatch(text); m != nil {
			add(m[1])
		}
	})

	if body := doc.Find("body"); body.Length() > 0 {
		text := jptext.Normalize(body.Text())
		for _, m := range selfIntroPattern.FindAllStringSubmatch(text, -1) {
			if hasLegalMarker(m[1]) || hasOfficeType(m[1]) {
				add(m[1])
			}
		}
	}
	return res
}

func hasOfficeType(s string) bool {
	for _, t := range officeTypes {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func utf8Longer(s, suffix string) bool {
	return len(s) > len(suffix)
}
