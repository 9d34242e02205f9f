package extract

import (
	"strings"
	"unicode/utf8"
)

// Confidence constants per extraction method. Structural confidence is
// derived, everything else is fixed.
const (
	confidenceStructuredData  = 0.96
	confidenceSiteName        = 0.90
	confidenceOGTitle         = 0.88
	confidenceLegalMarker     = 0.99
	confidenceStructuralBase  = 0.95
	confidenceStructuralCap   = 0.99
	confidenceTextPattern     = 0.85
	confidenceHeadingSplit    = 0.95
	confidenceHeadingKeyword  = 0.92
	confidenceTitleKeyword    = 0.85
	confidenceHeadingFallback = 0.72
	confidenceIntroduction    = 0.80
	confidenceAutoComplete    = 0.82

	labelBoostWeight   = 0.04
	completenessWeight = 0.02
)

// Early-exit thresholds for the phase loop.
const (
	metadataExitConfidence   = 0.96
	structuralStopConfidence = 0.98
	structuralExitConfidence = 0.95
	markerExitConfidence     = 0.97
)

// Completeness score weights. A value that names its own abbreviation,
// reading, or English form scores higher.
const (
	segmentBonusFull    = 0.30
	segmentBonusPartial = 0.15
	abbreviationBonus   = 0.30
	parentheticalBonus  = 0.25
	middleDotBonus      = 0.10
	lengthBonusLong     = 0.15
	lengthBonusMedium   = 0.08
	completenessCap     = 1.0

	longValueRunes   = 20
	mediumValueRunes = 15
)

// completenessScore rates how much identifying detail a value carries,
// in [0, 1].
func completenessScore(s string) float64 {
	score := 0.0

	// NFKC folding has already turned ideographic spaces into ASCII ones,
	// so segments are counted on any whitespace.
	segments := len(strings.Fields(s))
	switch {
	case segments >= 3:
		score += segmentBonusFull
	case segments == 2:
		score += segmentBonusPartial
	}

	if hasAbbreviationHint(s) {
		score += abbreviationBonus
	}
	if strings.ContainsAny(s, "（(") && strings.ContainsAny(s, "）)") {
		score += parentheticalBonus
	}
	if strings.Contains(s, "・") {
		score += middleDotBonus
	}

	switch n := utf8.RuneCountInString(s); {
	case n > longValueRunes:
		score += lengthBonusLong
	case n > mediumValueRunes:
		score += lengthBonusMedium
	}

	if score > completenessCap {
		score = completenessCap
	}
	return score
}

func hasAbbreviationHint(s string) bool {
	for _, marker := range abbreviationMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return strings.ContainsAny(s, ":：")
}

// structuralConfidence scores a value pulled from structured HTML. A legal
// marker pins the score; otherwise label strength and completeness nudge
// the base upward.
func structuralConfidence(value string, labelBoost float64) (float64, bool) {
	if hasLegalMarker(value) {
		return confidenceLegalMarker, true
	}
	conf := confidenceStructuralBase +
		labelBoost*labelBoostWeight +
		completenessScore(value)*completenessWeight
	if conf > confidenceStructuralCap {
		conf = confidenceStructuralCap
	}
	return conf, false
}
