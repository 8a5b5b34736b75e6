package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when a completion contains no decodable JSON object.
var ErrNoJSONObject = errors.New("no JSON object in completion text")

// ExtractJSONObject returns the first decodable JSON object embedded in text.
//
// Model output is often wrapped in prose or markdown fences, so the scan looks
// for an opening brace, follows it to its balanced closing brace (braces
// inside strings don't count) and decodes that span. If the span does not
// decode, scanning resumes at the next opening brace.
func ExtractJSONObject(text string) (map[string]any, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > start {
			var obj map[string]any
			if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
				return obj, nil
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, ErrNoJSONObject
}

// matchingBrace returns the index of the brace closing the one at open, or -1.
func matchingBrace(text string, open int) int {
	depth := 0
	inString := false
	escaped := false

	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
