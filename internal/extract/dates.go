package extract

import (
	"regexp"
	"strings"
)

// Date shapes that disqualify a value: Japanese calendar dates, era-name
// dates, bare years, and Western numeric dates.
var (
	jpDatePattern      = regexp.MustCompile(`\d{4}年\s*\d{1,2}月(\s*\d{1,2}日)?`)
	jpYearOnlyPattern  = regexp.MustCompile(`^\d{4}年$`)
	eraDatePattern     = regexp.MustCompile(`(令和|平成|昭和|大正|明治)(元|\d{1,2})年`)
	westernDatePattern = regexp.MustCompile(`\d{4}[/.\-]\d{1,2}([/.\-]\d{1,2})?`)
)

// looksLikeDate reports whether the text reads as a date rather than a
// name. Surrounding parentheses are ignored.
func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "()（）")
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return jpDatePattern.MatchString(s) ||
		jpYearOnlyPattern.MatchString(s) ||
		eraDatePattern.MatchString(s) ||
		westernDatePattern.MatchString(s)
}
