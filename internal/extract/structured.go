package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/jptext"
)

// runCurrentPagePhase scans labeled structures on the page itself and
// falls back to bare text patterns when the page has no usable structure.
// A structural hit ends the pipeline; the remaining phases only rescue
// pages without labeled structure.
func (e *Engine) runCurrentPagePhase(_ context.Context, doc *goquery.Document, _ string) phaseResult {
	candidates := collectStructured(doc, "")
	if len(candidates) == 0 {
		candidates = collectTextPattern(doc)
	}
	return phaseResult{
		candidates: candidates,
		exit:       hasStructuralExit(candidates),
	}
}

// hasStructuralExit reports whether a structural candidate is strong
// enough to skip the remaining phases.
func hasStructuralExit(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.Method.IsStructural() && c.Confidence >= structuralExitConfidence {
			return true
		}
	}
	return false
}

// collectStructured gathers candidates from definition lists, labeled list
// items, and tables, in that priority order. sourcePrefix tags candidates
// found on auxiliary pages.
func collectStructured(doc *goquery.Document, sourcePrefix string) []Candidate {
	var out []Candidate
	out = append(out, collectDefinitionLists(doc, sourcePrefix)...)
	out = append(out, collectLists(doc, sourcePrefix)...)
	out = append(out, collectTables(doc, sourcePrefix)...)
	return out
}

// collectDefinitionLists pairs each dt with the dd that follows it before
// the next dt. Unbalanced lists skip the orphaned terms instead of
// misaligning the whole list. HTML5 allows dl > div wrapping, so a missing
// sibling dd is retried inside the wrapping div.
func collectDefinitionLists(doc *goquery.Document, sourcePrefix string) []Candidate {
	var out []Candidate
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			ok, boost := classifyLabel(labelText(dt))
			if !ok {
				return
			}
			dd := dt.NextUntil("dt").Filter("dd").First()
			if dd.Length() == 0 && dt.Parent().Is("div") {
				dd = dt.Parent().Find("dd").First()
			}
			if dd.Length() == 0 {
				return
			}
			value := cellValue(dd)
			if value == "" {
				return
			}
			out = append(out, structuralCandidate(value, boost, MethodDefinitionList, sourcePrefix+SourceDefinitionList))
		})
	})
	return out
}

// collectTables reads th/td and two-column td rows, skipping tables that
// list affiliates or clients rather than the company itself.
func collectTables(doc *goquery.Document, sourcePrefix string) []Candidate {
	var out []Candidate
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if isAffiliateTable(table) {
			return
		}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			labelSel, valueSel := rowCells(row)
			if labelSel == nil || valueSel == nil {
				return
			}
			ok, boost := classifyLabel(labelText(labelSel))
			if !ok {
				return
			}
			value := cellValue(valueSel)
			if value == "" {
				return
			}
			out = append(out, structuralCandidate(value, boost, MethodTable, sourcePrefix+SourceTable))
		})
	})
	return out
}

func rowCells(row *goquery.Selection) (label, value *goquery.Selection) {
	if th := row.Find("th").First(); th.Length() > 0 {
		td := row.Find("td").First()
		if td.Length() == 0 {
			return nil, nil
		}
		return th, td
	}
	cells := row.Find("td")
	if cells.Length() < 2 {
		return nil, nil
	}
	return cells.Eq(0), cells.Eq(1)
}

func isAffiliateTable(table *goquery.Selection) bool {
	surrounding := table.Find("caption").Text()
	if heading := table.PrevAllFiltered("h1, h2, h3, h4").First(); heading.Length() > 0 {
		surrounding += heading.Text()
	}
	for _, keyword := range affiliateTableKeywords {
		if strings.Contains(surrounding, keyword) {
			return true
		}
	}
	return false
}

// collectLists reads direct li rows of each ul in three shapes: children
// identified as label/value by class-name hints, a strong tag treated as
// the label with the remaining row text as the value, and inline
// 「会社名：株式会社〇〇」 items.
func collectLists(doc *goquery.Document, sourcePrefix string) []Candidate {
	var out []Candidate
	doc.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		ul.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			label, rawValue := listRowPair(li)
			if label == "" {
				text := jptext.NormalizeSpace(jptext.Normalize(li.Text()))
				var found bool
				label, rawValue, found = splitInlineLabel(text)
				if !found {
					return
				}
			}
			ok, boost := classifyLabel(label)
			if !ok {
				return
			}
			value := valueFromText(rawValue)
			if value == "" {
				return
			}
			out = append(out, structuralCandidate(value, boost, MethodList, sourcePrefix+SourceList))
		})
	})
	return out
}

// listRowPair extracts a label/value pair from one list row. Class hints
// are tried first; otherwise a strong tag is the label and whatever text
// follows it is the value.
func listRowPair(li *goquery.Selection) (label, value string) {
	labelSel := findByClassHint(li, listLabelClassHints)
	valueSel := findByClassHint(li, listValueClassHints)
	if labelSel != nil && valueSel != nil {
		return labelText(labelSel), valueSel.Text()
	}

	strong := li.Find("strong").First()
	if strong.Length() == 0 {
		return "", ""
	}
	labelTxt := strings.TrimSpace(strong.Text())
	if labelTxt == "" {
		return "", ""
	}
	rest := strings.Replace(li.Text(), strong.Text(), "", 1)
	return labelTxt, strings.TrimSpace(rest)
}

// findByClassHint returns the first descendant whose class attribute
// contains one of the hint substrings.
func findByClassHint(root *goquery.Selection, hints []string) *goquery.Selection {
	var found *goquery.Selection
	root.Find("[class]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		class := strings.ToLower(el.AttrOr("class", ""))
		for _, hint := range hints {
			if strings.Contains(class, hint) {
				found = el
				return false
			}
		}
		return true
	})
	return found
}

// splitInlineLabel splits "label：value" text on the first colon.
func splitInlineLabel(text string) (label, value string, found bool) {
	idx := strings.IndexAny(text, ":：")
	if idx <= 0 {
		return "", "", false
	}
	label = strings.TrimSpace(text[:idx])
	value = strings.TrimSpace(text[idx:])
	value = strings.TrimLeft(value, ":： ")
	if label == "" || value == "" {
		return "", "", false
	}
	return label, value, true
}

// cellValue extracts and screens the text of a value cell.
func cellValue(sel *goquery.Selection) string {
	return valueFromText(sel.Text())
}

// valueFromText normalizes raw text and screens it into a usable value.
// Text that fails validation but starts with a legal marker is segmented
// to strip trailing address or contact runs.
func valueFromText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	value := jptext.NormalizeSpace(jptext.Normalize(raw))
	value = extractComplexFormat(value)
	if value == "" || isGarbage(value) || looksLikeDate(value) {
		return ""
	}
	if isValidCompanyName(value) {
		return value
	}
	if startsWithLegalMarker(value) {
		if seg, ok := segmentMixed(value); ok {
			seg = strings.TrimSpace(seg)
			if isValidCompanyName(seg) && !looksLikeDate(seg) {
				return seg
			}
		}
	}
	return ""
}

func structuralCandidate(value string, boost float64, method Method, source string) Candidate {
	conf, marker := structuralConfidence(value, boost)
	return Candidate{
		Value:          value,
		SourceContext:  source,
		Confidence:     conf,
		Method:         method,
		HasLegalMarker: marker,
	}
}

// textPatternRe matches inline 「会社名：〇〇」 declarations in flattened
// body text. Longer labels come first so 会社名称 is not eaten by 名称.
var textPatternRe = regexp.MustCompile(`(会社名称|会社名|法人名|商号|社名|名称|店名|屋号)\s*[:：]\s*(\S[^\n]{0,58})`)

// collectTextPattern is the unstructured fallback: regex over the page
// text for label-colon-value runs.
func collectTextPattern(doc *goquery.Document) []Candidate {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	text := jptext.Normalize(body.Text())

	var out []Candidate
	seen := make(map[string]bool)
	for _, m := range textPatternRe.FindAllStringSubmatch(text, -1) {
		if ok, _ := classifyLabel(m[1]); !ok {
			continue
		}
		value := valueFromText(m[2])
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, Candidate{
			Value:          value,
			SourceContext:  SourceTextPattern,
			Confidence:     confidenceTextPattern,
			Method:         MethodTextPattern,
			HasLegalMarker: hasLegalMarker(value),
		})
	}
	return out
}
