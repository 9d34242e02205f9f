package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxUnsegmentedRunes bounds how much leading text is accepted verbatim
// when no separator splits a marker-bearing blob.
const maxUnsegmentedRunes = 50

// segmentMixed isolates the entity name from a run-on text blob that starts
// with a legal marker and continues into addresses, roles, or phone
// numbers. The first separator hit wins; separator order is significant.
func segmentMixed(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}

	for _, sep := range mixedTextSeparators {
		idx := strings.Index(trimmed, sep)
		if idx <= 0 {
			continue
		}
		head := strings.TrimSpace(trimmed[:idx])
		if head != "" {
			return head, true
		}
	}

	if utf8.RuneCountInString(trimmed) <= maxUnsegmentedRunes {
		return trimmed, true
	}
	return "", false
}

// splitSmartDelimiter splits heading text on a full-width space or double
// space and keeps the part that carries a legal marker. Reports false when
// no delimiter is present.
func splitSmartDelimiter(s string) (string, bool) {
	for _, delim := range []string{"　", "  ", " "} {
		if !strings.Contains(s, delim) {
			continue
		}
		for _, part := range strings.Split(s, delim) {
			part = strings.TrimSpace(part)
			if part != "" && hasLegalMarker(part) {
				return part, true
			}
		}
	}
	return "", false
}

var (
	abbreviationParenPattern = regexp.MustCompile(`[（(]\s*(?:略称|略)\s*[:：]?[^）)]*[）)]`)
	labeledParenPattern      = regexp.MustCompile(`[（(]\s*(?:会社名|商号|社名)\s*[:：]\s*([^）)]+)[）)]`)
)

// extractComplexFormat resolves values that embed their own labeling, like
// 「ご挨拶（会社名：株式会社サンプル）」 or a trailing abbreviation note.
func extractComplexFormat(s string) string {
	if m := labeledParenPattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	s = abbreviationParenPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
