// Package jptext provides Unicode normalization and mojibake repair for
// Japanese page text. All functions are pure and never fail; every repair
// strategy falls through to the previous value.
package jptext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// mojibakeSignature is the set of Latin-1-range accented characters that
// show up when UTF-8 bytes are decoded as Latin-1. Plain western text uses
// these too, but never in the dense runs corrupted Japanese produces.
const mojibakeSignature = "ÃãÂåæçèéêäöü‚„…‰"

// Normalize canonicalizes text with NFKC and repairs UTF-8-as-Latin-1
// mojibake. It never fails; undecodable input comes back unchanged apart
// from invalid byte sequences being dropped.
func Normalize(s string) string {
	if s == "" {
		return s
	}

	folded := norm.NFKC.String(s)
	if folded != s {
		// NFKC rewrites some Latin-1-range punctuation (fractions,
		// ligatures), so corrupted text can differ after folding. Repair
		// from the original bytes when the corruption signature is present.
		if hasMojibakeSignature(s) {
			if repaired, ok := repairLatin1(s); ok {
				return norm.NFKC.String(repaired)
			}
		}
		return folded
	}

	if hasMojibakeSignature(s) {
		if repaired, ok := repairLatin1(s); ok {
			return norm.NFKC.String(repaired)
		}
	}

	if !utf8.ValidString(s) {
		return strings.ToValidUTF8(s, "")
	}
	return s
}

// repairLatin1 re-encodes the text as Latin-1 and reinterprets the bytes as
// UTF-8. The repair is accepted only when it decodes cleanly and yields CJK
// text; anything else reports false.
func repairLatin1(s string) (string, bool) {
	encoded, _, err := transform.String(charmap.ISO8859_1.NewEncoder(), s)
	if err != nil {
		return "", false
	}
	repaired := encoded
	if !utf8.ValidString(repaired) || repaired == s {
		return "", false
	}
	if !HasCJK(repaired) {
		return "", false
	}
	return repaired, true
}

func hasMojibakeSignature(s string) bool {
	return strings.ContainsAny(s, mojibakeSignature)
}

// NormalizeSpace collapses all whitespace runs, including ideographic
// spaces, to single ASCII spaces and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// HasCJK reports whether the text contains at least one CJK ideograph,
// hiragana, or katakana rune.
func HasCJK(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

// CountCJK returns the number of CJK ideograph, hiragana, and katakana runes.
func CountCJK(s string) int {
	n := 0
	for _, r := range s {
		if isCJK(r) {
			n++
		}
	}
	return n
}

// CountLatinLetters returns the number of ASCII letters.
func CountLatinLetters(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			n++
		}
	}
	return n
}

func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	}
	return false
}
