package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/jonesrussell/shogo/internal/extract"
)

// defaultSuggestionConfidence is assumed when the model omits a confidence
// number but still names a value.
const defaultSuggestionConfidence = 0.8

// suggestionJSON is the shape the model is instructed to return.
// Confidence is a pointer so an omitted number is distinguishable from 0.
type suggestionJSON struct {
	Value      string   `json:"value"`
	Confidence *float64 `json:"confidence"`
	Reason     string   `json:"reason"`
}

var (
	codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	valueLineRe = regexp.MustCompile(`(?im)^\s*"?value"?\s*[:：]\s*(.+?)\s*,?\s*$`)
)

// refusals are model answers meaning "not found".
var refusals = map[string]bool{
	"null":    true,
	"none":    true,
	"unknown": true,
	"n/a":     true,
	"不明":      true,
	"なし":      true,
	"見つかりません": true,
}

// parseSuggestion turns raw model output into a suggestion. Strict JSON is
// tried first, then repaired JSON, then a loose "value:" line scan.
func parseSuggestion(content string) (*extract.AISuggestion, error) {
	content = stripCodeFence(content)

	if s, ok := unmarshalSuggestion(content); ok {
		return finishSuggestion(s)
	}

	if repaired, err := jsonrepair.JSONRepair(content); err == nil {
		if s, ok := unmarshalSuggestion(repaired); ok {
			return finishSuggestion(s)
		}
	}

	if m := valueLineRe.FindStringSubmatch(content); m != nil {
		return finishSuggestion(suggestionJSON{Value: m[1]})
	}
	return nil, ErrNoSuggestion
}

func unmarshalSuggestion(content string) (suggestionJSON, bool) {
	var s suggestionJSON
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return s, false
	}
	return s, true
}

func finishSuggestion(s suggestionJSON) (*extract.AISuggestion, error) {
	value := cleanValue(s.Value)
	if value == "" {
		return nil, ErrNoSuggestion
	}

	confidence := defaultSuggestionConfidence
	if s.Confidence != nil {
		confidence = *s.Confidence
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &extract.AISuggestion{
		Value:      value,
		Confidence: confidence,
		Reason:     strings.TrimSpace(s.Reason),
	}, nil
}

func stripCodeFence(content string) string {
	if m := codeFenceRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}

// cleanValue strips quoting noise the model tends to add and rejects
// refusal answers.
func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'「」『』`)
	value = strings.TrimSpace(value)
	if value == "" || refusals[strings.ToLower(value)] {
		return ""
	}
	return value
}
