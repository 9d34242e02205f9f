package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Test exports for internal functions.

// IsValidCompanyName exports isValidCompanyName for testing.
var IsValidCompanyName = isValidCompanyName

// IsGarbage exports isGarbage for testing.
var IsGarbage = isGarbage

// CleanHeadingText exports cleanHeadingText for testing.
var CleanHeadingText = cleanHeadingText

// LooksLikeDate exports looksLikeDate for testing.
var LooksLikeDate = looksLikeDate

// SegmentMixed exports segmentMixed for testing.
var SegmentMixed = segmentMixed

// SplitSmartDelimiter exports splitSmartDelimiter for testing.
var SplitSmartDelimiter = splitSmartDelimiter

// ExtractComplexFormat exports extractComplexFormat for testing.
var ExtractComplexFormat = extractComplexFormat

// ClassifyLabel exports classifyLabel for testing.
var ClassifyLabel = classifyLabel

// LabelText exports labelText for testing.
var LabelText = labelText

// CompletenessScore exports completenessScore for testing.
var CompletenessScore = completenessScore

// StructuralConfidence exports structuralConfidence for testing.
var StructuralConfidence = structuralConfidence

// SelectBest exports selectBest for testing.
var SelectBest = selectBest

// HasLegalMarker exports hasLegalMarker for testing.
var HasLegalMarker = hasLegalMarker

// SplitInlineLabel exports splitInlineLabel for testing.
var SplitInlineLabel = splitInlineLabel

// ValueFromText exports valueFromText for testing.
var ValueFromText = valueFromText

// OrganizationName exports organizationName for testing.
var OrganizationName = organizationName

// CollectStructured exports collectStructured for testing.
var CollectStructured = collectStructured

// CollectTextPattern exports collectTextPattern for testing.
var CollectTextPattern = collectTextPattern

// DiscoverAuxLinks exports discoverAuxLinks via the engine for testing.
func DiscoverAuxLinks(e *Engine, doc *goquery.Document, base *url.URL, pageURL string) []string {
	return e.discoverAuxLinks(doc, base, pageURL)
}
