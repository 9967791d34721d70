package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceTagRe       = regexp.MustCompile("^```[a-zA-Z0-9]*")
	embeddedObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
)

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimSpace(fenceTagRe.ReplaceAllString(text, ""))
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
	}
	return text
}

// DecodeLenient recovers the JSON object from a model reply. Models
// wrap output in code fences, prepend prose, or leave trailing commas;
// each recovery step is tried in turn before giving up.
func DecodeLenient(content string) (map[string]any, error) {
	cleaned := stripCodeFence(content)
	if obj, ok := tryDecode(cleaned); ok {
		return obj, nil
	}
	if match := embeddedObjectRe.FindString(cleaned); match != "" {
		snippet := stripCodeFence(match)
		if obj, ok := tryDecode(snippet); ok {
			return obj, nil
		}
		repaired := trailingCommaRe.ReplaceAllString(snippet, "$1")
		if obj, ok := tryDecode(repaired); ok {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("no JSON object in model output: %s", snippet(cleaned))
}

func tryDecode(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// snippet clips the content for error messages.
func snippet(text string) string {
	clipped := strings.NewReplacer("\n", " ", "\r", " ").Replace(text)
	if len(clipped) > 200 {
		clipped = clipped[:200]
	}
	return clipped
}
