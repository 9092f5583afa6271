package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	bareKey         = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON extracts and parses JSON from model output that may contain:
// - Pure JSON
// - JSON wrapped in a markdown code block
// - JSON with surrounding prose
// - JSON with trailing commas, bare keys or single quotes
func ParseAIJSON(input string, target interface{}) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{input}
	if extracted := extractFromMarkdown(input); extracted != "" {
		candidates = append(candidates, extracted)
	}
	if extracted := extractJSONFromText(input); extracted != "" {
		candidates = append(candidates, extracted)
	}

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), target); err == nil {
			return nil
		}
	}
	for _, c := range candidates {
		if err := json.Unmarshal([]byte(cleanAndFixJSON(c)), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown returns the body of the first fenced block that looks like JSON
func extractFromMarkdown(input string) string {
	m := fencedJSONBlock.FindStringSubmatch(input)
	if len(m) < 2 {
		return ""
	}
	content := strings.TrimSpace(m[1])
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
		return content
	}
	return ""
}

// extractJSONFromText returns the balanced object or array that opens
// first in input, so a list of objects is not cut down to its first element
func extractJSONFromText(input string) string {
	obj := strings.Index(input, "{")
	arr := strings.Index(input, "[")

	if arr >= 0 && (obj < 0 || arr < obj) {
		if extracted := extractBalancedBraces(input[arr:], '[', ']'); extracted != "" {
			return extracted
		}
	}
	if obj >= 0 {
		return extractBalancedBraces(input[obj:], '{', '}')
	}
	return ""
}

// extractBalancedBraces returns the prefix of input up to the bracket that
// closes the first opener, ignoring brackets inside strings
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON repairs the JSON mistakes small models commonly make
func cleanAndFixJSON(input string) string {
	s := strings.TrimPrefix(strings.TrimSpace(input), "\ufeff")
	s = fixSingleQuotes(s)
	s = trailingComma.ReplaceAllString(s, "$1")
	s = bareKey.ReplaceAllString(s, `$1"$2"$3`)
	return controlChars.ReplaceAllString(s, "")
}

// fixSingleQuotes converts single-quoted strings outside double-quoted ones.
// An apostrophe inside a word is left alone.
func fixSingleQuotes(input string) string {
	var b strings.Builder
	inDouble := false
	inSingle := false
	escape := false
	prev := rune(0)

	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if inSingle {
				inSingle = false
				ch = '"'
			} else if strings.ContainsRune(":,[{ \t\n", prev) || prev == 0 {
				inSingle = true
				ch = '"'
			}
		}
		b.WriteRune(ch)
		if ch != ' ' {
			prev = ch
		}
	}

	return b.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ExtractJSONSnippets finds every top-level JSON object or array in text
func ExtractJSONSnippets(input string) []string {
	var snippets []string

	for i := 0; i < len(input); i++ {
		var extracted string
		switch input[i] {
		case '{':
			extracted = extractBalancedBraces(input[i:], '{', '}')
		case '[':
			extracted = extractBalancedBraces(input[i:], '[', ']')
		}
		if extracted != "" {
			snippets = append(snippets, extracted)
			i += len(extracted) - 1
		}
	}

	return snippets
}
