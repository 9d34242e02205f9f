package extract

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// selectBest dedupes, ranks, and picks the final candidate, then applies
// auto-completion against the page text. The returned candidate is a copy:
// entries in the audit trail are never mutated. Nil when the pool is empty.
func selectBest(candidates []Candidate, pageText string) *Candidate {
	if len(candidates) == 0 {
		return nil
	}

	deduped := dedupeByValue(candidates)
	sort.SliceStable(deduped, func(i, j int) bool {
		return candidateRanksHigher(deduped[i], deduped[j])
	})

	winner := autoComplete(deduped[0], pageText)
	return &winner
}

// dedupeByValue keeps one candidate per exact value, preferring the
// highest confidence. First occurrence wins ties, preserving phase order.
func dedupeByValue(candidates []Candidate) []Candidate {
	index := make(map[string]int, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if at, ok := index[c.Value]; ok {
			if c.Confidence > out[at].Confidence {
				out[at] = c
			}
			continue
		}
		index[c.Value] = len(out)
		out = append(out, c)
	}
	return out
}

// candidateRanksHigher orders candidates: structural sources beat
// business-keyword heuristics beat everything else, legal markers beat
// their absence, then confidence, then the shorter value.
func candidateRanksHigher(a, b Candidate) bool {
	if x, y := a.Method.IsStructural(), b.Method.IsStructural(); x != y {
		return x
	}
	if x, y := a.Method.IsBusinessKeyword(), b.Method.IsBusinessKeyword(); x != y {
		return x
	}
	if a.HasLegalMarker != b.HasLegalMarker {
		return a.HasLegalMarker
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return utf8.RuneCountInString(a.Value) < utf8.RuneCountInString(b.Value)
}

// autoComplete attaches a legal marker to a winner that lacks one. The page
// text is searched first: a marker written directly next to the value is
// adopted as the observed form at unchanged confidence. Otherwise the
// marker most frequent on the page, or 株式会社 as the default, is
// prepended at reduced confidence. Brand-style names and values ending in
// a location are left alone. Completion only ever adds a marker.
func autoComplete(winner Candidate, pageText string) Candidate {
	if winner.HasLegalMarker || !completionEligible(winner.Value) {
		return winner
	}

	if completed, ok := adjacentMarkerForm(winner, pageText); ok {
		return completed
	}

	marker := mostFrequentMarker(pageText)
	if marker == "" {
		marker = defaultLegalMarker
	}
	winner.Value = marker + winner.Value
	winner.HasLegalMarker = true
	winner.IsAutoCompleted = true
	if winner.Confidence > confidenceAutoComplete {
		winner.Confidence = confidenceAutoComplete
	}
	return winner
}

// adjacentMarkerForm looks for the winner value written in the page text
// with a legal marker directly before or after it, whitespace allowed,
// and adopts that form.
func adjacentMarkerForm(winner Candidate, pageText string) (Candidate, bool) {
	for _, marker := range legalEntityMarkers {
		if adjoins(pageText, marker, winner.Value) {
			winner.Value = marker + winner.Value
			winner.HasLegalMarker = true
			winner.IsAutoCompleted = true
			return winner, true
		}
		if adjoins(pageText, winner.Value, marker) {
			winner.Value += marker
			winner.HasLegalMarker = true
			winner.IsAutoCompleted = true
			return winner, true
		}
	}
	return winner, false
}

// adjoins reports whether first is followed by second anywhere in the
// text with nothing but whitespace between them.
func adjoins(text, first, second string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], first)
		if idx < 0 {
			return false
		}
		idx += start
		rest := strings.TrimLeft(text[idx+len(first):], " \t\r\n")
		if strings.HasPrefix(rest, second) {
			return true
		}
		start = idx + len(first)
	}
}

// mostFrequentMarker tallies marker occurrences across the page text. Ties
// resolve in marker table order.
func mostFrequentMarker(pageText string) string {
	best := ""
	bestCount := 0
	for _, marker := range legalEntityMarkers {
		if n := strings.Count(pageText, marker); n > bestCount {
			best = marker
			bestCount = n
		}
	}
	return best
}

func completionEligible(value string) bool {
	for _, indicator := range brandIndicators {
		if strings.Contains(value, indicator) {
			return false
		}
	}
	for _, suffix := range locationSuffixes {
		if strings.HasSuffix(value, suffix) {
			return false
		}
	}
	return true
}
