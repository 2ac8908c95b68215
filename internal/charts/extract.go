package charts

import (
	"encoding/json"
	"strings"
)

// Extraction pulls chart candidates out of raw model text. The model is
// told to answer with JSON only, but in practice it wraps the payload in
// code fences or prose, so the extractor tolerates both: it strips
// fences, then scans for the first balanced JSON value.
//
// Three payload shapes are accepted:
//
//	{"type": "bar", ...}                         a single chart object
//	[{"type": "bar", ...}, ...]                  an array of charts
//	{"explanation": "...", "charts": [...]}      an envelope with prose
type Extraction struct {
	Candidates  []any
	Explanation string
}

// ErrNoJSON is returned through ExtractCandidates' error when the text
// contains no parseable JSON value at all.
var errNoJSON = &extractError{"no JSON value found in model output"}

type extractError struct{ msg string }

func (e *extractError) Error() string { return e.msg }

// ExtractCandidates parses raw model output into untyped chart
// candidates. Candidates are returned in the order they appear; no
// validation happens here.
func ExtractCandidates(raw string) (Extraction, error) {
	text := stripFences(raw)
	if text == "" {
		return Extraction{}, errNoJSON
	}

	value, ok := firstJSONValue(text)
	if !ok {
		return Extraction{}, errNoJSON
	}

	switch v := value.(type) {
	case []any:
		return Extraction{Candidates: v}, nil
	case map[string]any:
		if charts, ok := v["charts"].([]any); ok {
			out := Extraction{Candidates: charts}
			if s, ok := v["explanation"].(string); ok {
				out.Explanation = strings.TrimSpace(s)
			}
			return out, nil
		}
		return Extraction{Candidates: []any{v}}, nil
	default:
		return Extraction{}, errNoJSON
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Strip leading ```lang and trailing ```
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// firstJSONValue finds the first '{' or '[' that opens a balanced JSON
// value and decodes it. The scan is string-aware so braces inside string
// literals do not confuse the balance count.
func firstJSONValue(s string) (any, bool) {
	start := strings.IndexAny(s, "{[")
	for start != -1 {
		if end := balancedEnd(s, start); end != -1 {
			var value any
			if err := json.Unmarshal([]byte(s[start:end+1]), &value); err == nil {
				return value, true
			}
		}
		next := strings.IndexAny(s[start+1:], "{[")
		if next == -1 {
			return nil, false
		}
		start += 1 + next
	}
	return nil, false
}

func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
