package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/jonesrussell/shogo/internal/jptext"
)

// Name length bounds in runes. Association and NPO names run long, so a
// long-form marker relaxes the bound.
const (
	minNameRunes      = 2
	maxNameRunes      = 30
	maxLongFormRunes  = 80
	maxParticleCount  = 1
	minLatinNameRunes = 4
)

// isValidCompanyName reports whether the text can stand as an entity name.
// Pure and total: no side effects, never fails.
func isValidCompanyName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	for _, marker := range formFieldMarkers {
		if strings.Contains(s, marker) {
			return false
		}
	}

	bound := maxNameRunes
	if hasLongFormMarker(s) {
		bound = maxLongFormRunes
	}
	n := utf8.RuneCountInString(s)
	if n < minNameRunes || n > bound {
		return false
	}

	if strings.ContainsAny(s, "。！？") {
		return false
	}
	for _, ending := range sentenceEndings {
		if strings.HasSuffix(s, ending) {
			return false
		}
	}

	particles := 0
	for _, p := range connectiveParticles {
		if strings.Contains(s, p) {
			particles++
		}
	}
	if particles > maxParticleCount {
		return false
	}

	if !jptext.HasCJK(s) && jptext.CountLatinLetters(s) < minLatinNameRunes {
		return false
	}
	return true
}

// isGarbage reports whether the text contains a navigational or
// descriptive fragment that disqualifies it outright.
func isGarbage(s string) bool {
	for _, phrase := range garbagePhrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

// cleanHeadingText prepares heading and title text for candidacy: keeps the
// first SEO segment, strips license prefixes, introduction suffixes, and
// space-separated SEO suffix tails, and rejects marketing copy.
func cleanHeadingText(s string) string {
	s = jptext.Normalize(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if idx := strings.Index(s, licensePrefix); idx >= 0 {
		s = s[idx+len(licensePrefix):]
	}

	for _, sep := range []string{"｜", "|", "【"} {
		if idx := strings.Index(s, sep); idx > 0 {
			s = s[:idx]
		}
	}
	s = strings.TrimSpace(s)

	for _, suffix := range introductionSuffixes {
		if strings.HasSuffix(s, suffix) && utf8.RuneCountInString(s) > utf8.RuneCountInString(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}

	if containsSkipPhrase(s) {
		s = salvageSegment(s)
		if s == "" {
			return ""
		}
	}

	s = stripSEOSuffixes(s)
	return strings.TrimSpace(s)
}

// containsSkipPhrase reports whether the text carries marketing copy.
func containsSkipPhrase(s string) bool {
	for _, phrase := range seoSkipPhrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

// salvageSegment tries to recover a clean space-separated part from
// marketing text; empty when nothing survives.
func salvageSegment(s string) string {
	for _, part := range strings.Fields(strings.ReplaceAll(s, "　", " ")) {
		if part != "" && !containsSkipPhrase(part) {
			return part
		}
	}
	return ""
}

// stripSEOSuffixes removes space-separated SEO tail words ("〇〇調査 東京").
// Suffixes fused into the name itself are left alone.
func stripSEOSuffixes(s string) string {
	for changed := true; changed; {
		changed = false
		for _, suffix := range seoSuffixes {
			for _, sep := range []string{" ", "　"} {
				tail := sep + suffix
				if strings.HasSuffix(s, tail) {
					s = strings.TrimSuffix(s, tail)
					s = strings.TrimSpace(s)
					changed = true
				}
			}
		}
	}
	return s
}
