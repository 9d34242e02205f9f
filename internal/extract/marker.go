package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/jptext"
)

// markerLookahead is how many lines below a label-only marker line the
// value may sit.
const markerLookahead = 2

// runMarkerPhase scans the page text line by line for glyph-marked labels,
// the 「■会社名 株式会社〇〇」 style used by hand-written profile pages.
// The value may follow on the same line, after a colon, or on the next
// line when the marker line carries only the label.
func (e *Engine) runMarkerPhase(_ context.Context, doc *goquery.Document, _ string) phaseResult {
	var res phaseResult
	body := doc.Find("body")
	if body.Length() == 0 {
		return res
	}

	lines := strings.Split(jptext.Normalize(body.Text()), "\n")
	for i, line := range lines {
		idx := strings.Index(line, markerGlyph)
		if idx < 0 {
			continue
		}
		after := strings.TrimSpace(line[idx+len(markerGlyph):])
		if after == "" {
			continue
		}

		if cand, ok := markerInlineCandidate(after); ok {
			res.candidates = append(res.candidates, cand)
			continue
		}
		if cand, ok := markerNextLineCandidate(after, lines, i); ok {
			res.candidates = append(res.candidates, cand)
		}
	}

	res.exit = hasMarkerExit(res.candidates)
	return res
}

// markerInlineCandidate handles 「■会社名：X」 and 「■会社名 X」 forms.
func markerInlineCandidate(after string) (Candidate, bool) {
	if label, rest, found := splitInlineLabel(after); found {
		if ok, boost := classifyLabel(label); ok {
			if value := valueFromText(rest); value != "" {
				return structuralCandidate(value, boost, MethodMarkerLabel, SourceMarker), true
			}
		}
		return Candidate{}, false
	}

	fields := strings.Fields(after)
	if len(fields) < 2 {
		return Candidate{}, false
	}
	ok, boost := classifyLabel(fields[0])
	if !ok {
		return Candidate{}, false
	}
	value := valueFromText(strings.Join(fields[1:], " "))
	if value == "" {
		return Candidate{}, false
	}
	return structuralCandidate(value, boost, MethodMarkerLabel, SourceMarker), true
}

// markerNextLineCandidate handles marker lines that carry only the label,
// with the value on a following line.
func markerNextLineCandidate(after string, lines []string, at int) (Candidate, bool) {
	ok, boost := classifyLabel(after)
	if !ok {
		return Candidate{}, false
	}
	for j := at + 1; j < len(lines) && j <= at+markerLookahead; j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			continue
		}
		if strings.Contains(next, markerGlyph) {
			break
		}
		if value := valueFromText(next); value != "" {
			return structuralCandidate(value, boost, MethodMarkerLabel, SourceMarker), true
		}
		break
	}
	return Candidate{}, false
}

func hasMarkerExit(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.Confidence >= markerExitConfidence {
			return true
		}
	}
	return false
}
