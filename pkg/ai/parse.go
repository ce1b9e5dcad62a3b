package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFencePattern    = regexp.MustCompile("```json\\n?|\\n?```")
	objectPattern       = regexp.MustCompile(`\{[\s\S]*\}`)
	trailingObjectComma = regexp.MustCompile(`,\s*}`)
	trailingArrayComma  = regexp.MustCompile(`,\s*]`)
	unquotedKeyPattern  = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
)

// ParseLooseJSON extracts a JSON object from model output. Strategies are
// tried in order and the first that yields an object wins:
//
//  1. the text as-is
//  2. the text with ```json fences stripped
//  3. the outermost {...} span inside surrounding prose
//  4. that span after dropping trailing commas and quoting bare keys
func ParseLooseJSON(text string) (map[string]interface{}, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	if obj, ok := decodeObject(text); ok {
		return obj, true
	}

	stripped := strings.TrimSpace(codeFencePattern.ReplaceAllString(text, ""))
	if obj, ok := decodeObject(stripped); ok {
		return obj, true
	}

	if match := objectPattern.FindString(text); match != "" {
		if obj, ok := decodeObject(match); ok {
			return obj, true
		}
	}

	fixed := trailingObjectComma.ReplaceAllString(text, "}")
	fixed = trailingArrayComma.ReplaceAllString(fixed, "]")
	fixed = unquotedKeyPattern.ReplaceAllString(fixed, `${1}"${2}"${3}`)
	if match := objectPattern.FindString(fixed); match != "" {
		if obj, ok := decodeObject(match); ok {
			return obj, true
		}
	}

	return nil, false
}

func decodeObject(text string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
