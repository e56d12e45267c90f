package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrParse marks model output that could not be decoded as the requested JSON object.
var ErrParse = errors.New("unparsable model output")

const fence = "```"

// ExtractJSONBlock returns the payload a model wrapped in a markdown code fence. Output that
// is already valid JSON is returned whole, so fences inside string values are left alone.
// Otherwise only the content between the first and last fence is returned (an unclosed
// fence runs to the end of the text), and output without a fence is returned trimmed.
func ExtractJSONBlock(raw string) string {
	s := strings.TrimSpace(raw)
	if json.Valid([]byte(s)) {
		return s
	}
	start := strings.Index(s, fence)
	if start < 0 {
		return s
	}
	rest := s[start+len(fence):]

	// Drop the language tag on the opening line (```json).
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		if isLangTag(strings.TrimSpace(rest[:nl])) {
			rest = rest[nl+1:]
		}
	} else {
		rest = strings.TrimLeftFunc(rest, unicode.IsLetter)
	}

	// The last fence closes the block so fenced snippets inside string values survive.
	if end := strings.LastIndex(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func isLangTag(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// DecodeObject extracts and decodes a JSON object from model output.
func DecodeObject(raw string) (map[string]any, error) {
	block := ExtractJSONBlock(raw)
	if block == "" {
		return nil, fmt.Errorf("%w: empty output", ErrParse)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(block), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: not an object", ErrParse)
	}
	return obj, nil
}

// stringField reads a field the model may have returned as a string, a list, or a number.
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				parts = append(parts, "- "+s)
			}
		}
		return strings.Join(parts, "\n")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// scoreField reads an optional numeric score in the 0-10 range.
func scoreField(obj map[string]any, key string) *float64 {
	var score float64
	switch v := obj[key].(type) {
	case float64:
		score = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		score = parsed
	default:
		return nil
	}
	if score < 0 || score > 10 {
		return nil
	}
	return &score
}
