package remote

import (
	"encoding/json"
	"fmt"
	"strings"
)

// enhancementEnvelope is the structured response shape: an object wrapping a
// suggestions array.
type enhancementEnvelope struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ParseResponse parses an enhancement response defensively. Accepted shapes,
// tried in order:
//
//  1. {"suggestions": [{"text": ...}, ...]}
//  2. [{"text": ...}, ...]
//  3. a bare JSON string or raw plain text, treated as a single suggestion
//
// Endpoints tend to wrap JSON in markdown fences or pad it with prose despite
// instructions, so fences are stripped and boundaries located before parsing.
// Suggestions without text are dropped; a response yielding none is an error.
func ParseResponse(raw []byte) ([]Suggestion, error) {
	text := stripFences(string(raw))
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	if body := extractJSON(text, '{', '}'); body != "" {
		var envelope enhancementEnvelope
		if err := json.Unmarshal([]byte(body), &envelope); err == nil {
			return nonEmpty(envelope.Suggestions)
		}
	}

	if body := extractJSON(text, '[', ']'); body != "" {
		var items []Suggestion
		if err := json.Unmarshal([]byte(body), &items); err == nil {
			return nonEmpty(items)
		}
	}

	// Plain text: a bare JSON string or raw prose is one suggestion.
	var quoted string
	if err := json.Unmarshal([]byte(text), &quoted); err == nil {
		text = quoted
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "{}[]") {
		return nil, fmt.Errorf("unrecognized response shape")
	}
	return []Suggestion{{Text: text}}, nil
}

// stripFences removes markdown code block markers endpoints add around JSON.
func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractJSON returns the outermost open..closing span in text, or "" when
// the delimiters are absent or unbalanced.
func extractJSON(text string, open, closing byte) string {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func nonEmpty(items []Suggestion) ([]Suggestion, error) {
	kept := make([]Suggestion, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Text) != "" {
			item.Text = strings.TrimSpace(item.Text)
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no usable suggestions in response")
	}
	return kept, nil
}
